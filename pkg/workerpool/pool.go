package workerpool

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"http-user-service/pkg/syncx"
)

var (
	// ErrQueueFull is returned by Submit when the task queue is at capacity
	ErrQueueFull = errors.New("workerpool: queue full")
	// ErrPoolClosed is returned by Submit after Stop has been called
	ErrPoolClosed = errors.New("workerpool: pool closed")
)

// Task is a unit of background work. The context passed to it is the
// one given to Start, so tasks observe pool shutdown via cancellation.
type Task func(ctx context.Context)

// Stats counts pool activity since creation
type Stats struct {
	Submitted int64
	Completed int64
	Rejected  int64
	Panicked  int64
}

// Pool runs submitted tasks on a fixed set of workers over a bounded
// queue, so background work never spawns unbounded goroutines. The
// submit side owns the queue channel: Stop stops intake, closes the
// queue and waits for the workers to drain it. Canceling the Start
// context abandons queued work instead of draining it.
type Pool struct {
	workers int
	queue   chan Task
	log     *zap.Logger

	mu      sync.Mutex
	started bool
	closed  bool
	wg      sync.WaitGroup

	stats *syncx.Mutex[Stats]
}

// New creates a pool with the given worker count and queue capacity
func New(workers, queueSize int, log *zap.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{
		workers: workers,
		queue:   make(chan Task, queueSize),
		log:     log,
		stats:   syncx.NewMutex(Stats{}),
	}
}

// Start launches the workers. Calling Start twice is a no-op.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started || p.closed {
		return
	}
	p.started = true

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
	p.log.Info("worker pool started",
		zap.Int("workers", p.workers),
		zap.Int("queue_size", cap(p.queue)))
}

// Submit enqueues a task without blocking. It returns ErrQueueFull when
// the queue is at capacity and ErrPoolClosed after Stop.
func (p *Pool) Submit(task Task) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		p.stats.With(func(s *Stats) { s.Rejected++ })
		return ErrPoolClosed
	}

	select {
	case p.queue <- task:
		p.stats.With(func(s *Stats) { s.Submitted++ })
		return nil
	default:
		p.stats.With(func(s *Stats) { s.Rejected++ })
		return ErrQueueFull
	}
}

// Stop closes the queue and waits for the workers to finish draining
// it. Stop is idempotent.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
	p.log.Info("worker pool stopped", zap.Int64("completed", p.Stats().Completed))
}

// Stats returns a snapshot of pool counters
func (p *Pool) Stats() Stats {
	return p.stats.Snapshot()
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			p.log.Debug("worker stopping on canceled context", zap.Int("worker", id))
			return
		case task, ok := <-p.queue:
			if !ok {
				return
			}
			p.runTask(ctx, task)
		}
	}
}

// runTask executes one task, converting a panic into a counted log
// entry so a bad task never kills its worker.
func (p *Pool) runTask(ctx context.Context, task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.stats.With(func(s *Stats) { s.Panicked++ })
			p.log.Error("task panicked", zap.Any("panic", r))
		}
	}()

	task(ctx)
	p.stats.With(func(s *Stats) { s.Completed++ })
}
