package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"anonrelay/tools/ids"
)

const keyPrefix = "ratelimit:"

// RedisLimiter keeps one sorted set per identifier, scored by admission time
// in unix milliseconds. Each check prunes events older than the window, counts
// what remains, and only then records the new event.
//
// The prune/count and the write are separate round trips. Two relay processes
// sharing one store can both observe spare capacity and both admit, producing
// transient over-admission. Accepted limitation; a Lua script would make the
// sequence atomic without changing this contract.
type RedisLimiter struct {
	rdb   *redis.Client
	clock func() time.Time
}

func NewRedisLimiter(rdb *redis.Client) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, clock: time.Now}
}

func (l *RedisLimiter) Admit(ctx context.Context, id string, max int, window time.Duration) (Decision, error) {
	key := keyPrefix + id
	now := l.clock()
	nowMS := now.UnixMilli()
	windowStart := nowMS - window.Milliseconds()

	pipe := l.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	card := pipe.ZCard(ctx, key)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, errors.Wrap(err, "prune window")
	}

	hits := int(card.Val())
	if hits >= max {
		// Reject without recording an event; resetAt comes from the
		// record's own expiry.
		resetAt := now.Add(window)
		if d, err := ttl.Result(); err == nil && d > 0 {
			resetAt = now.Add(d)
		}
		return Decision{
			Allowed:   false,
			Remaining: 0,
			ResetAt:   resetAt,
			TotalHits: hits,
		}, nil
	}

	add := l.rdb.TxPipeline()
	add.ZAdd(ctx, key, redis.Z{Score: float64(nowMS), Member: ids.GenerateString()})
	add.PExpire(ctx, key, window)
	if _, err := add.Exec(ctx); err != nil {
		return Decision{}, errors.Wrap(err, "record admission")
	}

	hits++
	return Decision{
		Allowed:   true,
		Remaining: max - hits,
		ResetAt:   now.Add(window),
		TotalHits: hits,
	}, nil
}

func (l *RedisLimiter) Reset(ctx context.Context, id string) error {
	if err := l.rdb.Del(ctx, keyPrefix+id).Err(); err != nil {
		return errors.Wrap(err, "reset identifier")
	}
	return nil
}
