package syncx

import "sync"

// Mutex couples a value with the mutex that guards it, so the value is
// only reachable while the lock is held.
type Mutex[T any] struct {
	mu  sync.Mutex
	val T
}

// NewMutex creates a Mutex guarding val
func NewMutex[T any](val T) *Mutex[T] {
	return &Mutex[T]{val: val}
}

// Lock acquires the lock and returns a pointer to the guarded value.
// The pointer must not be retained after Unlock.
func (m *Mutex[T]) Lock() *T {
	m.mu.Lock()
	return &m.val
}

// Unlock releases the lock
func (m *Mutex[T]) Unlock() {
	m.mu.Unlock()
}

// With runs fn on the guarded value while holding the lock
func (m *Mutex[T]) With(fn func(*T)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.val)
}

// Snapshot returns a copy of the guarded value
func (m *Mutex[T]) Snapshot() T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.val
}

// KeyedMutex provides one lock per key so independent resources do not
// contend on a single shared mutex. Lock entries are reference counted
// and removed once the last holder unlocks, keeping the map bounded by
// the number of keys currently in use.
type KeyedMutex[K comparable] struct {
	mu    sync.Mutex
	locks map[K]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex creates an empty KeyedMutex
func NewKeyedMutex[K comparable]() *KeyedMutex[K] {
	return &KeyedMutex[K]{locks: make(map[K]*keyedLock)}
}

// Lock acquires the lock for key, creating it on first use
func (km *KeyedMutex[K]) Lock(key K) {
	km.mu.Lock()
	l, ok := km.locks[key]
	if !ok {
		l = &keyedLock{}
		km.locks[key] = l
	}
	l.refs++
	km.mu.Unlock()

	l.mu.Lock()
}

// Unlock releases the lock for key. Unlocking a key that is not held
// panics, mirroring sync.Mutex semantics.
func (km *KeyedMutex[K]) Unlock(key K) {
	km.mu.Lock()
	l, ok := km.locks[key]
	if !ok {
		km.mu.Unlock()
		panic("syncx: unlock of unheld key")
	}
	l.refs--
	if l.refs == 0 {
		delete(km.locks, key)
	}
	km.mu.Unlock()

	l.mu.Unlock()
}

// Len reports how many keys currently hold or wait for a lock
func (km *KeyedMutex[K]) Len() int {
	km.mu.Lock()
	defer km.mu.Unlock()
	return len(km.locks)
}
