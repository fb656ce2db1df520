package challenges

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/zkauth/internal/common"
)

const keyPrefix = "zkauth:challenge:"

// consumeScript flips the consumed flag exactly once, atomically on the
// Redis side, preserving the key's remaining TTL.
// Returns 1 when the caller wins, 0 when already consumed, -1 when missing.
var consumeScript = redis.NewScript(`
local v = redis.call("GET", KEYS[1])
if not v then
  return -1
end
local ch = cjson.decode(v)
if ch.consumed then
  return 0
end
ch.consumed = true
local ttl = redis.call("PTTL", KEYS[1])
if ttl > 0 then
  redis.call("SET", KEYS[1], cjson.encode(ch), "PX", ttl)
else
  redis.call("SET", KEYS[1], cjson.encode(ch))
end
return 1
`)

// RedisStore keeps challenges in Redis, sharing them across server
// instances. Key expiry covers TTL plus the retention window, so removal
// needs no sweeper.
type RedisStore struct {
	client    *redis.Client
	retention time.Duration
}

func NewRedisStore(client *redis.Client, retention time.Duration) *RedisStore {
	return &RedisStore{client: client, retention: retention}
}

type redisChallenge struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	CommitmentR string    `json:"commitmentR"`
	Scalar      string    `json:"scalar"`
	IssuedAt    time.Time `json:"issuedAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Consumed    bool      `json:"consumed"`
}

func (s *RedisStore) key(id string) string {
	return keyPrefix + id
}

func (s *RedisStore) Create(ctx context.Context, ch *Challenge) error {
	data, err := json.Marshal(redisChallenge{
		ID:          ch.ID,
		Username:    ch.Username,
		CommitmentR: ch.CommitmentR,
		Scalar:      ch.Scalar,
		IssuedAt:    ch.IssuedAt,
		ExpiresAt:   ch.ExpiresAt,
		Consumed:    ch.Consumed,
	})
	if err != nil {
		return fmt.Errorf("encoding challenge: %w", err)
	}

	ttl := time.Until(ch.ExpiresAt) + s.retention
	if ttl <= 0 {
		ttl = s.retention
	}

	ok, err := s.client.SetNX(ctx, s.key(ch.ID), data, ttl).Result()
	if err != nil {
		return fmt.Errorf("storing challenge: %w", err)
	}
	if !ok {
		return fmt.Errorf("challenge %s already exists", ch.ID)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Challenge, error) {
	data, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("loading challenge: %w", err)
	}

	var rc redisChallenge
	if err := json.Unmarshal([]byte(data), &rc); err != nil {
		return nil, fmt.Errorf("decoding challenge: %w", err)
	}

	return &Challenge{
		ID:          rc.ID,
		Username:    rc.Username,
		CommitmentR: rc.CommitmentR,
		Scalar:      rc.Scalar,
		IssuedAt:    rc.IssuedAt,
		ExpiresAt:   rc.ExpiresAt,
		Consumed:    rc.Consumed,
	}, nil
}

func (s *RedisStore) Consume(ctx context.Context, id string) (ConsumeResult, error) {
	res, err := consumeScript.Run(ctx, s.client, []string{s.key(id)}).Int()
	if err != nil {
		return ConsumeNotFound, fmt.Errorf("consuming challenge: %w", err)
	}
	switch res {
	case 1:
		return ConsumeOK, nil
	case 0:
		return ConsumeAlready, nil
	default:
		return ConsumeNotFound, nil
	}
}

// DeleteExpired is a no-op: Redis key expiry owns removal.
func (s *RedisStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}
