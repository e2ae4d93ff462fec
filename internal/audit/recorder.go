package audit

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"http-user-service/pkg/eventbus"
	"http-user-service/pkg/syncx"
	"http-user-service/pkg/workerpool"
)

// Stats is the admin-facing snapshot of the trail: per-action counts
// plus the health of the bus and pool carrying it.
type Stats struct {
	Actions   map[string]int64 `json:"actions"`
	Published int64            `json:"published"`
	Dropped   int64            `json:"dropped"`
	Completed int64            `json:"completed"`
	Rejected  int64            `json:"rejected"`
	Panicked  int64            `json:"panicked"`
}

// Recorder consumes audit entries from the bus and records them on the
// worker pool. It owns neither: the container wires and shuts down
// bus and pool around it.
type Recorder struct {
	bus  *eventbus.Bus[Entry]
	pool *workerpool.Pool
	log  *zap.Logger

	counts *syncx.Mutex[map[string]int64]

	mu      sync.Mutex
	started bool
	sub     <-chan Entry
	wg      sync.WaitGroup
}

// NewRecorder creates a Recorder over the given bus and pool.
func NewRecorder(bus *eventbus.Bus[Entry], pool *workerpool.Pool, log *zap.Logger) *Recorder {
	return &Recorder{
		bus:    bus,
		pool:   pool,
		log:    log,
		counts: syncx.NewMutex(make(map[string]int64)),
	}
}

// Start subscribes to the bus and begins consuming. Calling Start
// twice is a no-op.
func (r *Recorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return
	}
	r.started = true
	r.sub = r.bus.Subscribe()

	r.wg.Add(1)
	go r.consume()
	r.log.Info("audit recorder started")
}

// Stop unsubscribes from the bus and waits for the consumer to drain
// buffered entries. Work already handed to the pool is finished by the
// pool's own Stop.
func (r *Recorder) Stop() {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	sub := r.sub
	r.mu.Unlock()

	r.bus.Unsubscribe(sub)
	r.wg.Wait()
	r.log.Info("audit recorder stopped")
}

// Stats returns a snapshot of trail activity.
func (r *Recorder) Stats() Stats {
	actions := make(map[string]int64)
	r.counts.With(func(m *map[string]int64) {
		for action, n := range *m {
			actions[action] = n
		}
	})

	bus := r.bus.Stats()
	pool := r.pool.Stats()
	return Stats{
		Actions:   actions,
		Published: bus.Published,
		Dropped:   bus.Dropped,
		Completed: pool.Completed,
		Rejected:  pool.Rejected,
		Panicked:  pool.Panicked,
	}
}

func (r *Recorder) consume() {
	defer r.wg.Done()

	for entry := range r.sub {
		e := entry
		err := r.pool.Submit(func(ctx context.Context) {
			r.record(e)
		})
		if err != nil {
			// The entry is lost. Audit is best-effort: better to
			// drop a record than to back-pressure into the bus.
			r.log.Warn("audit entry dropped",
				zap.String("action", e.Action),
				zap.Error(err))
		}
	}
}

func (r *Recorder) record(e Entry) {
	r.counts.With(func(m *map[string]int64) {
		(*m)[e.Action]++
	})
	r.log.Info("audit",
		zap.String("action", e.Action),
		zap.Int64("user_id", e.UserID),
		zap.String("request_id", e.RequestID),
		zap.Time("at", e.At))
}
