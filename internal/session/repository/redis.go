package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ninadrathod/my-website/internal/session/domain"
)

// DefaultRedisRetention is how long a record outlives its expiry before Redis evicts it.
// Invalidated records stay readable as "invalidated" for this long.
const DefaultRedisRetention = 7 * 24 * time.Hour

const sessionKeyPrefix = "session:"

// insertScript creates the hash only when the key is absent.
var insertScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('HSET', KEYS[1], 'expires_at', ARGV[1], 'created_at', ARGV[2], 'updated_at', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

// RedisRepository stores each session as a hash at session:<id>.
type RedisRepository struct {
	client    redis.UniversalClient
	retention time.Duration
}

// NewRedisRepository returns a session repository over client. retention <= 0 uses DefaultRedisRetention.
func NewRedisRepository(client redis.UniversalClient, retention time.Duration) *RedisRepository {
	if retention <= 0 {
		retention = DefaultRedisRetention
	}
	return &RedisRepository{client: client, retention: retention}
}

func sessionKey(id string) string { return sessionKeyPrefix + id }

func (r *RedisRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	vals, err := r.client.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	raw, ok := vals["expires_at"]
	if !ok {
		return nil, nil
	}
	expires, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	created, _ := strconv.ParseInt(vals["created_at"], 10, 64)
	updated, _ := strconv.ParseInt(vals["updated_at"], 10, 64)
	return &domain.Session{
		ID:        id,
		ExpiresAt: time.UnixMilli(expires).UTC(),
		CreatedAt: time.UnixMilli(created).UTC(),
		UpdatedAt: time.UnixMilli(updated).UTC(),
	}, nil
}

func (r *RedisRepository) ttl(expiresAt, now time.Time) time.Duration {
	ttl := r.retention
	if live := expiresAt.Sub(now); live > 0 {
		ttl += live
	}
	return ttl
}

// Upsert writes the hash fields and refreshes the key TTL inside one MULTI/EXEC.
func (r *RedisRepository) Upsert(ctx context.Context, id string, expiresAt, now time.Time) error {
	key := sessionKey(id)
	ttl := r.ttl(expiresAt, now)
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSetNX(ctx, key, "created_at", now.UnixMilli())
		p.HSet(ctx, key, "expires_at", expiresAt.UnixMilli(), "updated_at", now.UnixMilli())
		p.PExpire(ctx, key, ttl)
		return nil
	})
	return err
}

func (r *RedisRepository) Insert(ctx context.Context, id string, expiresAt, now time.Time) (bool, error) {
	n, err := insertScript.Run(ctx, r.client, []string{sessionKey(id)},
		expiresAt.UnixMilli(), now.UnixMilli(), r.ttl(expiresAt, now).Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
