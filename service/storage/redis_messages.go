package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the channel history in a single Redis list. Every append
// pushes to the head, trims to capacity and refreshes the retention expiry,
// so the key disappears on its own once the channel goes quiet.
type RedisStore struct {
	rdb       *redis.Client
	key       string
	capacity  int
	retention time.Duration
}

func NewRedisStore(rdb *redis.Client, channel string, capacity int, retention time.Duration) *RedisStore {
	if capacity <= 0 {
		capacity = 100
	}
	return &RedisStore{
		rdb:       rdb,
		key:       "chat:messages:" + channel,
		capacity:  capacity,
		retention: retention,
	}
}

func (s *RedisStore) Append(ctx context.Context, msg ChatMessage) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "marshal message")
	}

	// LPUSH + LTRIM keeps a rolling window of the most recent entries.
	pipe := s.rdb.TxPipeline()
	pipe.LPush(ctx, s.key, b)
	pipe.LTrim(ctx, s.key, 0, int64(s.capacity-1))
	pipe.Expire(ctx, s.key, s.retention)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "append message")
	}
	return nil
}

func (s *RedisStore) Recent(ctx context.Context, n int) ([]ChatMessage, error) {
	if n <= 0 || n > s.capacity {
		n = s.capacity
	}
	// Head of the list is the newest entry.
	vals, err := s.rdb.LRange(ctx, s.key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "read recent messages")
	}

	out := make([]ChatMessage, 0, len(vals))
	for i := len(vals) - 1; i >= 0; i-- {
		var m ChatMessage
		if err := json.Unmarshal([]byte(vals[i]), &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}
