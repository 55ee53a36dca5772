package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"bizdesk/internal/domain/permission"
	vo "bizdesk/internal/domain/permission/value_objects"
	"bizdesk/internal/shared/logger"
)

const (
	grantsKeyPrefix  = "access:grants:"
	versionKeyPrefix = "access:grants:ver:"
	// versionTTL outlives any fill; it only bounds the key's lifetime.
	versionTTL = 24 * time.Hour
	// fieldEmpty marks a user with no active rows so the miss is not retried.
	fieldEmpty         = "_empty"
	defaultGrantsTTL   = 5 * time.Minute
	grantsTTLJitterDiv = 5

	invalidateAttempts = 3
	invalidateBackoff  = 50 * time.Millisecond
	invalidateTimeout  = 2 * time.Second
)

// ErrStaleFill is returned by SetIfVersion when the user's grants were
// invalidated after the fill read its version.
var ErrStaleFill = errors.New("grants changed during cache fill")

// cachedRow is the hash field value stored per module.
type cachedRow struct {
	ID        string `json:"id"`
	View      bool   `json:"v"`
	Add       bool   `json:"a"`
	Edit      bool   `json:"e"`
	Delete    bool   `json:"d"`
	Blocked   bool   `json:"b"`
	CreatedAt int64  `json:"c"`
	UpdatedAt int64  `json:"u"`
}

// PermissionCache keeps each user's active grant rows in one Redis hash
// keyed by module id.
type PermissionCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Interface
}

func NewPermissionCache(client *redis.Client, ttl time.Duration, logger logger.Interface) *PermissionCache {
	if ttl <= 0 {
		ttl = defaultGrantsTTL
	}
	return &PermissionCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *PermissionCache) key(userID uint) string {
	return grantsKeyPrefix + strconv.FormatUint(uint64(userID), 10)
}

func (c *PermissionCache) versionKey(userID uint) string {
	return versionKeyPrefix + strconv.FormatUint(uint64(userID), 10)
}

// Version returns the invalidation counter of userID; 0 when never
// invalidated.
func (c *PermissionCache) Version(ctx context.Context, userID uint) (int64, error) {
	v, err := c.client.Get(ctx, c.versionKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read grants version: %w", err)
	}
	return v, nil
}

// Get returns the cached active rows of userID; ok is false on a cache miss.
func (c *PermissionCache) Get(ctx context.Context, userID uint) (rows []*permission.Permission, ok bool, err error) {
	result, err := c.client.HGetAll(ctx, c.key(userID)).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get grants from cache: %w", err)
	}
	if len(result) == 0 {
		return nil, false, nil
	}

	rows = make([]*permission.Permission, 0, len(result))
	for moduleID, raw := range result {
		if moduleID == fieldEmpty {
			continue
		}
		var cr cachedRow
		if err := json.Unmarshal([]byte(raw), &cr); err != nil {
			return nil, false, fmt.Errorf("failed to decode cached grant: %w", err)
		}
		row, err := permission.ReconstructPermission(
			cr.ID, userID, moduleID,
			vo.Grants{View: cr.View, Add: cr.Add, Edit: cr.Edit, Delete: cr.Delete},
			cr.Blocked, false,
			time.Unix(cr.CreatedAt, 0).UTC(), time.Unix(cr.UpdatedAt, 0).UTC(),
		)
		if err != nil {
			return nil, false, err
		}
		rows = append(rows, row)
	}
	return rows, true, nil
}

// Set replaces the cached rows of userID unconditionally.
func (c *PermissionCache) Set(ctx context.Context, userID uint, rows []*permission.Permission) error {
	fields, err := encodeRows(rows)
	if err != nil {
		return err
	}
	if _, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		c.queueReplace(ctx, pipe, userID, fields)
		return nil
	}); err != nil {
		return fmt.Errorf("failed to set grants in cache: %w", err)
	}
	c.logger.Debugw("grants cached", "user_id", userID, "rows", len(fields)-1)
	return nil
}

// SetIfVersion stores rows only while the invalidation counter of userID
// still equals version. The counter is watched, so an Invalidate racing the
// write aborts it. Returns ErrStaleFill when the rows are outdated.
func (c *PermissionCache) SetIfVersion(ctx context.Context, userID uint, version int64, rows []*permission.Permission) error {
	fields, err := encodeRows(rows)
	if err != nil {
		return err
	}

	verKey := c.versionKey(userID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, verKey).Int64()
		if errors.Is(err, redis.Nil) {
			current, err = 0, nil
		}
		if err != nil {
			return fmt.Errorf("failed to read grants version: %w", err)
		}
		if current != version {
			return ErrStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			c.queueReplace(ctx, pipe, userID, fields)
			return nil
		})
		return err
	}, verKey)

	switch {
	case err == nil:
		c.logger.Debugw("grants cached", "user_id", userID, "rows", len(fields)-1, "version", version)
		return nil
	case errors.Is(err, ErrStaleFill), errors.Is(err, redis.TxFailedErr):
		return ErrStaleFill
	default:
		return fmt.Errorf("failed to set grants in cache: %w", err)
	}
}

func (c *PermissionCache) queueReplace(ctx context.Context, pipe redis.Pipeliner, userID uint, fields map[string]any) {
	key := c.key(userID)
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, c.ttlWithJitter())
}

func encodeRows(rows []*permission.Permission) (map[string]any, error) {
	fields := map[string]any{fieldEmpty: "1"}
	for _, row := range rows {
		if !row.IsActive() {
			continue
		}
		g := row.Grants()
		raw, err := json.Marshal(cachedRow{
			ID:        row.ID(),
			View:      g.View,
			Add:       g.Add,
			Edit:      g.Edit,
			Delete:    g.Delete,
			Blocked:   row.IsBlocked(),
			CreatedAt: row.CreatedAt().Unix(),
			UpdatedAt: row.UpdatedAt().Unix(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to encode grant: %w", err)
		}
		fields[row.ModuleID()] = raw
	}
	return fields, nil
}

// Invalidate bumps the invalidation counter of userID and drops its cached
// rows in one transaction. In-flight fills that read the old counter are
// then refused by SetIfVersion.
func (c *PermissionCache) Invalidate(ctx context.Context, userID uint) error {
	verKey := c.versionKey(userID)
	if _, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, verKey)
		pipe.Expire(ctx, verKey, versionTTL)
		pipe.Del(ctx, c.key(userID))
		return nil
	}); err != nil {
		return fmt.Errorf("failed to invalidate grants cache: %w", err)
	}
	c.logger.Debugw("grants cache invalidated", "user_id", userID)
	return nil
}

// ttlWithJitter spreads expiry over [ttl, ttl + ttl/5).
func (c *PermissionCache) ttlWithJitter() time.Duration {
	jitter := c.ttl / grantsTTLJitterDiv
	if jitter <= 0 {
		return c.ttl
	}
	return c.ttl + time.Duration(rand.Int64N(int64(jitter)))
}

// CachedPermissionRepository serves active-row reads from PermissionCache and
// falls back to the wrapped repository. Concurrent misses for one user share
// a single database read. Writes go straight to the wrapped repository; the
// caller invalidates once its transaction has committed.
type CachedPermissionRepository struct {
	permission.Repository
	cache  *PermissionCache
	group  singleflight.Group
	logger logger.Interface
}

func NewCachedPermissionRepository(inner permission.Repository, cache *PermissionCache, logger logger.Interface) *CachedPermissionRepository {
	return &CachedPermissionRepository{
		Repository: inner,
		cache:      cache,
		logger:     logger,
	}
}

func (r *CachedPermissionRepository) ListActiveByUser(ctx context.Context, userID uint) ([]*permission.Permission, error) {
	rows, ok, err := r.cache.Get(ctx, userID)
	if err != nil {
		r.logger.Warnw("grants cache read failed, using database", "user_id", userID, "error", err)
	}
	if ok {
		return rows, nil
	}

	version, err := r.cache.Version(ctx, userID)
	if err != nil {
		r.logger.Warnw("grants version read failed, skipping cache fill", "user_id", userID, "error", err)
		return r.Repository.ListActiveByUser(ctx, userID)
	}

	// Keyed by version so a caller arriving after an invalidation never
	// joins a read that started before it.
	key := strconv.FormatUint(uint64(userID), 10) + ":" + strconv.FormatInt(version, 10)
	shared := context.WithoutCancel(ctx)
	v, err, _ := r.group.Do(key, func() (any, error) {
		rows, err := r.Repository.ListActiveByUser(shared, userID)
		if err != nil {
			return nil, err
		}
		switch err := r.cache.SetIfVersion(shared, userID, version, rows); {
		case errors.Is(err, ErrStaleFill):
			r.logger.Debugw("grants changed during read, not caching", "user_id", userID)
		case err != nil:
			r.logger.Warnw("failed to fill grants cache", "user_id", userID, "error", err)
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*permission.Permission), nil
}

func (r *CachedPermissionRepository) GetActiveByUserAndModule(ctx context.Context, userID uint, moduleID string) (*permission.Permission, error) {
	rows, err := r.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.ModuleID() == moduleID {
			return row, nil
		}
	}
	return nil, nil
}

// Invalidate drops the cached rows of userID, retrying transient Redis
// failures. It runs after a committed write, so the caller's cancellation
// does not stop it.
func (r *CachedPermissionRepository) Invalidate(ctx context.Context, userID uint) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), invalidateTimeout)
	defer cancel()

	var err error
	for attempt := 1; attempt <= invalidateAttempts; attempt++ {
		if err = r.cache.Invalidate(ctx, userID); err == nil {
			return nil
		}
		r.logger.Warnw("grants cache invalidation failed", "user_id", userID, "attempt", attempt, "error", err)
		if attempt == invalidateAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(time.Duration(attempt) * invalidateBackoff):
		}
	}
	return err
}
