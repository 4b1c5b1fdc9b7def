package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"job_tracker/internal/observability"

	"github.com/go-redis/redis/v8"
)

const DefaultTTL = 5 * time.Minute

var errStaleGeneration = errors.New("cache generation changed")

const (
	keyTypeJob     = "job"
	keyTypeJobList = "job_list"
)

// JobCache caches owner-scoped job reads. All list results of an owner live
// in one hash so a single DEL drops them.
type JobCache struct {
	client  *redis.Client
	ttl     time.Duration
	metrics *observability.Metrics
}

func NewJobCache(client *redis.Client, ttl time.Duration, metrics *observability.Metrics) *JobCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &JobCache{client: client, ttl: ttl, metrics: metrics}
}

// Build cache key for the hash holding an owner's list results
func OwnerListsKey(ownerID int) string {
	return fmt.Sprintf("jobs:user:%d", ownerID)
}

// Build cache key for the owner's invalidation counter
func OwnerGenerationKey(ownerID int) string {
	return fmt.Sprintf("jobs:user:%d:gen", ownerID)
}

// Build cache key for a single job
func JobKey(ownerID, jobID int) string {
	return fmt.Sprintf("job:user:%d:%d", ownerID, jobID)
}

// GetList decodes the cached result of filter into dest. It reports false
// on a miss.
func (c *JobCache) GetList(ctx context.Context, ownerID int, filter string, dest any) (bool, error) {
	val, err := c.client.HGet(ctx, OwnerListsKey(ownerID), filter).Bytes()
	return c.decode(val, err, keyTypeJobList, dest)
}

// Generation returns the owner's invalidation counter. Read it before
// loading from the store and pass it to SetList or SetJob.
func (c *JobCache) Generation(ctx context.Context, ownerID int) (int64, error) {
	gen, err := c.client.Get(ctx, OwnerGenerationKey(ownerID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// SetList stores value unless the owner was invalidated after gen was read.
func (c *JobCache) SetList(ctx context.Context, ownerID int, gen int64, filter string, value any) error {
	key := OwnerListsKey(ownerID)
	return c.setIfCurrent(ctx, ownerID, gen, keyTypeJobList, value, func(pipe redis.Pipeliner, data []byte) {
		pipe.HSet(ctx, key, filter, data)
		pipe.Expire(ctx, key, c.ttl)
	})
}

func (c *JobCache) GetJob(ctx context.Context, ownerID, jobID int, dest any) (bool, error) {
	val, err := c.client.Get(ctx, JobKey(ownerID, jobID)).Bytes()
	return c.decode(val, err, keyTypeJob, dest)
}

func (c *JobCache) SetJob(ctx context.Context, ownerID, jobID int, gen int64, value any) error {
	key := JobKey(ownerID, jobID)
	return c.setIfCurrent(ctx, ownerID, gen, keyTypeJob, value, func(pipe redis.Pipeliner, data []byte) {
		pipe.Set(ctx, key, data, c.ttl)
	})
}

// setIfCurrent runs write in a transaction watching the owner's generation
// key. A stale gen or a concurrent invalidation skips the write.
func (c *JobCache) setIfCurrent(ctx context.Context, ownerID int, gen int64, keyType string, value any, write func(redis.Pipeliner, []byte)) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	genKey := OwnerGenerationKey(ownerID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleGeneration
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			write(pipe, data)
			return nil
		})
		return err
	}, genKey)

	if errors.Is(err, errStaleGeneration) || errors.Is(err, redis.TxFailedErr) {
		c.metrics.CacheStaleWrite(keyType)
		return nil
	}
	return err
}

// InvalidateOwner drops every cached read of ownerID and bumps its
// generation so reads already in flight do not store what they loaded.
func (c *JobCache) InvalidateOwner(ctx context.Context, ownerID int) error {
	if err := c.client.Incr(ctx, OwnerGenerationKey(ownerID)).Err(); err != nil {
		return err
	}

	keys := []string{OwnerListsKey(ownerID)}

	iter := c.client.Scan(ctx, 0, fmt.Sprintf("job:user:%d:*", ownerID), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	return c.client.Del(ctx, keys...).Err()
}

func (c *JobCache) decode(val []byte, err error, keyType string, dest any) (bool, error) {
	if errors.Is(err, redis.Nil) {
		c.metrics.CacheMiss(keyType)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(val, dest); err != nil {
		c.metrics.CacheMiss(keyType)
		return false, fmt.Errorf("decode cached %s: %w", keyType, err)
	}

	c.metrics.CacheHit(keyType)
	return true, nil
}

// NoopCache is used when Redis is not configured. Every read misses.
type NoopCache struct{}

func (NoopCache) Generation(context.Context, int) (int64, error)          { return 0, nil }
func (NoopCache) GetList(context.Context, int, string, any) (bool, error) { return false, nil }
func (NoopCache) SetList(context.Context, int, int64, string, any) error  { return nil }
func (NoopCache) GetJob(context.Context, int, int, any) (bool, error)     { return false, nil }
func (NoopCache) SetJob(context.Context, int, int, int64, any) error      { return nil }
func (NoopCache) InvalidateOwner(context.Context, int) error              { return nil }
