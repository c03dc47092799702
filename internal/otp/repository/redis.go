package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ninadrathod/my-website/internal/otp/domain"
)

const codeKeyPrefix = "otp:"

var (
	takeScript = redis.NewScript(`
local v = redis.call('HGETALL', KEYS[1])
if #v > 0 then redis.call('DEL', KEYS[1]) end
return v`)

	deleteIfScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'code_hash') == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0`)
)

// RedisRepository stores each code as a hash at otp:<sessionID> that Redis evicts at ExpiresAt.
type RedisRepository struct {
	client redis.UniversalClient
}

// NewRedisRepository returns a code repository over client.
func NewRedisRepository(client redis.UniversalClient) *RedisRepository {
	return &RedisRepository{client: client}
}

func codeKey(sessionID string) string { return codeKeyPrefix + sessionID }

// Put replaces the hash and sets its expiry inside one MULTI/EXEC.
func (r *RedisRepository) Put(ctx context.Context, c *domain.Code) error {
	key := codeKey(c.SessionID)
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		p.HSet(ctx, key,
			"email", c.Email,
			"code_hash", c.CodeHash,
			"issued_at", c.IssuedAt.UnixMilli(),
			"expires_at", c.ExpiresAt.UnixMilli(),
		)
		p.PExpireAt(ctx, key, c.ExpiresAt)
		return nil
	})
	return err
}

func (r *RedisRepository) Take(ctx context.Context, sessionID string) (*domain.Code, error) {
	res, err := takeScript.Run(ctx, r.client, []string{codeKey(sessionID)}).StringSlice()
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, nil
	}
	fields := make(map[string]string, len(res)/2)
	for i := 0; i+1 < len(res); i += 2 {
		fields[res[i]] = res[i+1]
	}
	issued, err := strconv.ParseInt(fields["issued_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("otp: corrupt issued_at: %w", err)
	}
	expires, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("otp: corrupt expires_at: %w", err)
	}
	return &domain.Code{
		SessionID: sessionID,
		Email:     fields["email"],
		CodeHash:  fields["code_hash"],
		IssuedAt:  time.UnixMilli(issued).UTC(),
		ExpiresAt: time.UnixMilli(expires).UTC(),
	}, nil
}

func (r *RedisRepository) DeleteIf(ctx context.Context, sessionID, codeHash string) (bool, error) {
	n, err := deleteIfScript.Run(ctx, r.client, []string{codeKey(sessionID)}, codeHash).Int64()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
