package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStorage keeps one snapshot per workstation. The key expires with the token.
type RedisStorage struct {
	client *redis.Client
	key    string
	now    func() time.Time
}

// NewRedisStorage stores the snapshot under "portal:session:<workstationID>".
func NewRedisStorage(client *redis.Client, workstationID string) *RedisStorage {
	return &RedisStorage{
		client: client,
		key:    "portal:session:" + workstationID,
		now:    time.Now,
	}
}

func (r *RedisStorage) Load(ctx context.Context) (*Snapshot, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &snap, nil
}

// Save writes the snapshot with a TTL equal to the token's remaining lifetime.
// Tokens without a readable expiry are stored without a TTL; Initialize rejects them anyway.
func (r *RedisStorage) Save(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	var ttl time.Duration
	if exp, err := Expiry(snap.Token); err == nil {
		ttl = exp.Sub(r.now())
		if ttl <= 0 {
			return r.Clear(ctx)
		}
	}

	if err := r.client.Set(ctx, r.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (r *RedisStorage) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}
