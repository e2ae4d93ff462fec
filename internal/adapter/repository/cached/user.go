package cached

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"http-user-service/internal/adapter/cache"
	domain "http-user-service/internal/domain/user"
	"http-user-service/internal/usecase/user"
)

// CachedUserRepository implements user.Repository with a cache-aside
// read path. Writes go to the persistent repository and invalidate the
// cache afterwards.
type CachedUserRepository struct {
	db    user.Repository
	cache cache.UserCache
	log   *zap.Logger
	group singleflight.Group
}

// NewCachedUserRepository wraps db with the given cache. A nil cache
// degrades to plain pass-through reads.
func NewCachedUserRepository(db user.Repository, cache cache.UserCache, log *zap.Logger) user.Repository {
	return &CachedUserRepository{
		db:    db,
		cache: cache,
		log:   log,
	}
}

func flightKey(id int64) string {
	return fmt.Sprintf("user:%d", id)
}

// Create delegates to the persistent repository.
func (r *CachedUserRepository) Create(ctx context.Context, u *domain.User) (int64, error) {
	return r.db.Create(ctx, u)
}

// GetByID reads through the cache. Concurrent misses for the same ID
// collapse into a single database load.
func (r *CachedUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if r.cache != nil {
		cachedUser, err := r.cache.Get(ctx, id)
		if err != nil {
			r.log.Warn("cache get error, falling back to database", zap.Int64("id", id), zap.Error(err))
		} else if cachedUser != nil {
			return cachedUser, nil
		}
	}

	result, err, _ := r.group.Do(flightKey(id), func() (any, error) {
		// Another request may have populated the cache while this one
		// waited on the flight.
		if r.cache != nil {
			cachedUser, err := r.cache.Get(ctx, id)
			if err == nil && cachedUser != nil {
				return cachedUser, nil
			}
		}

		u, err := r.db.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if r.cache != nil {
			if err := r.cache.Set(ctx, u); err != nil {
				r.log.Warn("failed to cache user", zap.Int64("id", id), zap.Error(err))
			}
		}

		return u, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*domain.User), nil
}

// GetByEmail delegates to the persistent repository. Email lookups
// back uniqueness checks and must not serve stale data.
func (r *CachedUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.db.GetByEmail(ctx, email)
}

// Update writes through and invalidates both the cached entry and any
// in-flight load for the same ID.
func (r *CachedUserRepository) Update(ctx context.Context, u *domain.User) (int64, error) {
	id, err := r.db.Update(ctx, u)
	if err != nil {
		return 0, err
	}

	r.group.Forget(flightKey(u.ID))
	if r.cache != nil {
		if err := r.cache.Delete(ctx, u.ID); err != nil {
			r.log.Warn("failed to invalidate cache after update", zap.Int64("id", u.ID), zap.Error(err))
		}
	}

	return id, nil
}

// Delete removes the row and invalidates the cache.
func (r *CachedUserRepository) Delete(ctx context.Context, id int64) (int64, error) {
	deletedID, err := r.db.Delete(ctx, id)
	if err != nil {
		return 0, err
	}

	r.group.Forget(flightKey(id))
	if r.cache != nil {
		if err := r.cache.Delete(ctx, id); err != nil {
			r.log.Warn("failed to invalidate cache after delete", zap.Int64("id", id), zap.Error(err))
		}
	}

	return deletedID, nil
}

// List delegates to the persistent repository. Search results are not
// cached: the key space is unbounded and hit rates are poor.
func (r *CachedUserRepository) List(ctx context.Context, query string, page, limit int64) ([]domain.User, int64, error) {
	return r.db.List(ctx, query, page, limit)
}
