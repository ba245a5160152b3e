package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// updateScript writes the reading only when its sequence number beats the stored one.
var updateScript = redis.NewScript(`
local cur = tonumber(redis.call('HGET', KEYS[1], 'seq') or '0')
if tonumber(ARGV[1]) <= cur then
	return 0
end
redis.call('HSET', KEYS[1], 'seq', ARGV[1], 'reading', ARGV[2])
redis.call('EXPIRE', KEYS[1], ARGV[3])
return 1
`)

// consumeScript drops the reading only while it is still the one with ARGV[1].
var consumeScript = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'seq')
if cur and tonumber(cur) == tonumber(ARGV[1]) then
	redis.call('HDEL', KEYS[1], 'reading')
	return 1
end
return 0
`)

// seqRetention bounds how long a session's sequence number survives without updates.
const seqRetention = 24 * time.Hour

type RedisLocationCache struct {
	client *redis.Client
	maxAge time.Duration
	now    func() time.Time
}

func NewRedisLocationCache(client *redis.Client, maxAge time.Duration) *RedisLocationCache {
	return &RedisLocationCache{client: client, maxAge: maxAge, now: time.Now}
}

func locationKey(sessionID string) string {
	return "location:" + sessionID
}

func (r *RedisLocationCache) Update(ctx context.Context, sessionID string, reading LocationReading) error {
	data, err := json.Marshal(reading)
	if err != nil {
		return err
	}
	ttl := seqRetention
	if r.maxAge > ttl {
		ttl = r.maxAge
	}

	stored, err := updateScript.Run(ctx, r.client, []string{locationKey(sessionID)},
		reading.Seq, data, int64(ttl/time.Second)).Int()
	if err != nil {
		return fmt.Errorf("redis location update: %w", err)
	}
	if stored == 0 {
		return ErrStaleReading
	}
	return nil
}

func (r *RedisLocationCache) Current(ctx context.Context, sessionID string) (*LocationReading, error) {
	data, err := r.client.HGet(ctx, locationKey(sessionID), "reading").Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis location read: %w", err)
	}

	var reading LocationReading
	if err := json.Unmarshal(data, &reading); err != nil {
		return nil, fmt.Errorf("decode location reading: %w", err)
	}
	if expired(&reading, r.maxAge, r.now()) {
		return nil, nil
	}
	return &reading, nil
}

func (r *RedisLocationCache) Consume(ctx context.Context, sessionID string, seq uint64) error {
	if err := consumeScript.Run(ctx, r.client, []string{locationKey(sessionID)}, seq).Err(); err != nil {
		return fmt.Errorf("redis location consume: %w", err)
	}
	return nil
}
