package syncx

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutexGuardsValue(t *testing.T) {
	m := NewMutex(map[string]int{})

	counts := m.Lock()
	(*counts)["a"] = 1
	m.Unlock()

	m.With(func(counts *map[string]int) {
		(*counts)["a"]++
	})

	snapshot := m.Snapshot()
	assert.Equal(t, 2, snapshot["a"])
}

func TestMutexConcurrentIncrement(t *testing.T) {
	const goroutines = 50
	const increments = 100

	m := NewMutex(0)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < increments; j++ {
				m.With(func(n *int) { *n++ })
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines*increments, m.Snapshot())
}

func TestMutexSnapshotCopies(t *testing.T) {
	type stats struct {
		Completed int
	}

	m := NewMutex(stats{Completed: 1})

	snapshot := m.Snapshot()
	snapshot.Completed = 99

	assert.Equal(t, 1, m.Snapshot().Completed)
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	km := NewKeyedMutex[string]()

	km.Lock("alice@example.com")
	// A different key must not block.
	done := make(chan struct{})
	go func() {
		km.Lock("bob@example.com")
		km.Unlock("bob@example.com")
		close(done)
	}()
	<-done
	km.Unlock("alice@example.com")

	assert.Equal(t, 0, km.Len())
}

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	const goroutines = 20

	km := NewKeyedMutex[string]()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock("same")
			defer km.Unlock("same")
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines, counter)
	assert.Equal(t, 0, km.Len(), "entries should be removed when idle")
}

func TestKeyedMutexUnlockUnheldPanics(t *testing.T) {
	km := NewKeyedMutex[int]()
	require.Panics(t, func() { km.Unlock(7) })
}
