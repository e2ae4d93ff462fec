package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	domain "http-user-service/internal/domain/user"
	"http-user-service/pkg/syncx"
)

// sweepInterval bounds how long expired entries linger before the
// background sweep reclaims them. Reads never return expired entries
// regardless.
const sweepInterval = time.Minute

type memoryEntry struct {
	user      domain.User
	expiresAt time.Time
}

// MemoryUserCache implements UserCache with an in-process map. It is
// the fallback when Redis is disabled, and what the tests run against.
type MemoryUserCache struct {
	entries  *syncx.Mutex[map[int64]memoryEntry]
	ttl      time.Duration
	log      *zap.Logger
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewMemoryUserCache creates an in-memory user cache and starts its
// sweep loop. Call Close to stop it.
func NewMemoryUserCache(ttl time.Duration, log *zap.Logger) *MemoryUserCache {
	c := &MemoryUserCache{
		entries: syncx.NewMutex(make(map[int64]memoryEntry)),
		ttl:     ttl,
		log:     log,
		now:     time.Now,
		stop:    make(chan struct{}),
	}

	c.wg.Add(1)
	go c.sweepLoop()

	return c
}

// Get retrieves a user from the cache. Expired entries are treated as
// misses and removed.
func (c *MemoryUserCache) Get(ctx context.Context, id int64) (*domain.User, error) {
	var found *domain.User
	c.entries.With(func(m *map[int64]memoryEntry) {
		e, ok := (*m)[id]
		if !ok {
			return
		}
		if c.now().After(e.expiresAt) {
			delete(*m, id)
			return
		}
		u := e.user
		found = &u
	})

	if found == nil {
		c.log.Debug("cache miss", zap.Int64("user_id", id))
		return nil, nil
	}
	c.log.Debug("cache hit", zap.Int64("user_id", id))
	return found, nil
}

// Set stores a copy of the user with the configured TTL.
func (c *MemoryUserCache) Set(ctx context.Context, user *domain.User) error {
	if user == nil {
		return fmt.Errorf("cannot cache nil user")
	}

	entry := memoryEntry{user: *user, expiresAt: c.now().Add(c.ttl)}
	c.entries.With(func(m *map[int64]memoryEntry) {
		(*m)[user.ID] = entry
	})

	c.log.Debug("cached user", zap.Int64("user_id", user.ID), zap.Duration("ttl", c.ttl))
	return nil
}

// Delete removes a user from the cache.
func (c *MemoryUserCache) Delete(ctx context.Context, id int64) error {
	c.entries.With(func(m *map[int64]memoryEntry) {
		delete(*m, id)
	})

	c.log.Debug("deleted from cache", zap.Int64("user_id", id))
	return nil
}

// DeleteMultiple removes multiple users from the cache.
func (c *MemoryUserCache) DeleteMultiple(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}

	c.entries.With(func(m *map[int64]memoryEntry) {
		for _, id := range ids {
			delete(*m, id)
		}
	})

	c.log.Debug("deleted multiple from cache", zap.Int("count", len(ids)))
	return nil
}

// Len reports the number of live entries, counting expired ones that
// have not been swept yet.
func (c *MemoryUserCache) Len() int {
	var n int
	c.entries.With(func(m *map[int64]memoryEntry) {
		n = len(*m)
	})
	return n
}

// Close stops the sweep loop. Safe to call more than once.
func (c *MemoryUserCache) Close() error {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
	c.wg.Wait()
	return nil
}

func (c *MemoryUserCache) sweepLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *MemoryUserCache) sweep() {
	now := c.now()
	var removed int
	c.entries.With(func(m *map[int64]memoryEntry) {
		for id, e := range *m {
			if now.After(e.expiresAt) {
				delete(*m, id)
				removed++
			}
		}
	})
	if removed > 0 {
		c.log.Debug("swept expired cache entries", zap.Int("removed", removed))
	}
}
