package eventbus

import (
	"sync"
	"sync/atomic"
)

// Bus is an in-process publish/subscribe fan-out for a single event
// type. Publishing never blocks: subscribers receive on buffered
// channels and events are dropped, and counted, when a subscriber
// falls behind.
//
// The bus is the only writer into subscriber channels and therefore
// the only place allowed to close them.
type Bus[E any] struct {
	mu          sync.Mutex
	subscribers []chan E
	closed      bool
	bufSize     int

	published atomic.Int64
	dropped   atomic.Int64
}

// Stats is a point-in-time snapshot of bus activity
type Stats struct {
	Subscribers int
	Published   int64
	Dropped     int64
}

// New creates a Bus whose subscriber channels buffer bufSize events
func New[E any](bufSize int) *Bus[E] {
	if bufSize < 1 {
		bufSize = 1
	}
	return &Bus[E]{bufSize: bufSize}
}

// Subscribe registers a new subscriber and returns its channel. After
// Close, or once Unsubscribe is called for it, the channel is closed
// so ranging readers terminate.
func (b *Bus[E]) Subscribe() <-chan E {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan E, b.bufSize)
	if b.closed {
		close(ch)
		return ch
	}
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscriber and closes its channel. Unknown
// channels are ignored.
func (b *Bus[E]) Unsubscribe(ch <-chan E) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subscribers {
		if (<-chan E)(sub) == ch {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// Publish fans the event out to all subscribers without blocking and
// returns the number of deliveries. Publishing on a closed bus is a
// no-op.
func (b *Bus[E]) Publish(event E) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0
	}
	b.published.Add(1)

	delivered := 0
	for _, sub := range b.subscribers {
		select {
		case sub <- event:
			delivered++
		default:
			b.dropped.Add(1)
		}
	}
	return delivered
}

// Close closes every subscriber channel and marks the bus closed.
// Close is idempotent.
func (b *Bus[E]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, sub := range b.subscribers {
		close(sub)
	}
	b.subscribers = nil
}

// Stats returns a snapshot of bus activity
func (b *Bus[E]) Stats() Stats {
	b.mu.Lock()
	subscribers := len(b.subscribers)
	b.mu.Unlock()

	return Stats{
		Subscribers: subscribers,
		Published:   b.published.Load(),
		Dropped:     b.dropped.Load(),
	}
}
