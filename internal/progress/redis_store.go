package progress

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Redis key pattern:
// - upload:progress:{session_id} - JSON record, TTL bounds retention

const redisKeyPrefix = "upload:progress:"

// RedisStore keeps records in Redis so every worker process sees the same
// state. TTLs enforce the retention windows server-side; Cleanup additionally
// scans for records idle past the inactivity window.
type RedisStore struct {
	client *goredis.Client
}

func NewRedisStore(client *goredis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(id string) string {
	return redisKeyPrefix + id
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Record, error) {
	data, err := s.client.Get(ctx, redisKey(id)).Result()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var r Record
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return nil, err
	}
	if r.Expired(time.Now()) {
		_ = s.client.Del(ctx, redisKey(id)).Err()
		return nil, nil
	}
	return &r, nil
}

func (s *RedisStore) Set(ctx context.Context, r *Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	ttl := InactivityWindow
	if !r.ExpiresAt.IsZero() {
		if remaining := time.Until(r.ExpiresAt); remaining > 0 && remaining < ttl {
			ttl = remaining
		}
	}
	return s.client.Set(ctx, redisKey(r.SessionID), data, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, redisKey(id)).Err()
}

func (s *RedisStore) List(ctx context.Context) ([]Record, error) {
	now := time.Now()
	var out []Record

	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Result()
		if err != nil {
			continue
		}
		var r Record
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			continue
		}
		if r.Expired(now) {
			continue
		}
		out = append(out, r)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RedisStore) Cleanup(ctx context.Context, olderThan time.Duration) (int, error) {
	now := time.Now()
	removed := 0

	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		data, err := s.client.Get(ctx, key).Result()
		if err != nil {
			continue
		}
		var r Record
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			// Unreadable record: drop it rather than let it linger forever.
			if delErr := s.client.Del(ctx, key).Err(); delErr == nil {
				removed++
			}
			continue
		}
		if r.Expired(now) || now.Sub(r.UpdatedAt) > olderThan {
			if delErr := s.client.Del(ctx, key).Err(); delErr == nil {
				removed++
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, err
	}
	return removed, nil
}

// Ping checks Redis availability; used by the health endpoint.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
