package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryConf tunes the in-process backend.
type MemoryConf struct {
	SweepEvery time.Duration    // purge interval for idle identifiers
	IdleAfter  time.Duration    // how long an identifier may sit with no admission
	Clock      func() time.Time // injectable clock for tests; nil => time.Now
}

func (c *MemoryConf) norm() {
	if c.Clock == nil {
		c.Clock = time.Now
	}
	if c.SweepEvery <= 0 {
		c.SweepEvery = 5 * time.Minute
	}
	if c.IdleAfter <= 0 {
		c.IdleAfter = 5 * time.Minute
	}
}

// MemoryLimiter is the in-process fallback backend: identifier -> ordered
// admission timestamps, filtered in place on every check. A background sweep
// drops identifiers with no recent admissions so the map stays bounded.
type MemoryLimiter struct {
	mu     sync.Mutex
	events map[string][]time.Time

	conf     MemoryConf
	stopOnce sync.Once
	stopCh   chan struct{}
}

func NewMemoryLimiter(conf MemoryConf) *MemoryLimiter {
	conf.norm()
	l := &MemoryLimiter{
		events: make(map[string][]time.Time),
		conf:   conf,
		stopCh: make(chan struct{}),
	}
	go l.sweeper()
	return l
}

func (l *MemoryLimiter) Admit(_ context.Context, id string, max int, window time.Duration) (Decision, error) {
	now := l.conf.Clock()
	windowStart := now.Add(-window)

	l.mu.Lock()
	defer l.mu.Unlock()

	events := l.events[id]
	kept := events[:0]
	for _, ts := range events {
		if ts.After(windowStart) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= max {
		resetAt := now.Add(window)
		if len(kept) > 0 {
			resetAt = kept[0].Add(window)
		}
		l.events[id] = kept
		return Decision{
			Allowed:   false,
			Remaining: 0,
			ResetAt:   resetAt,
			TotalHits: len(kept),
		}, nil
	}

	kept = append(kept, now)
	l.events[id] = kept
	return Decision{
		Allowed:   true,
		Remaining: max - len(kept),
		ResetAt:   kept[0].Add(window),
		TotalHits: len(kept),
	}, nil
}

func (l *MemoryLimiter) Reset(_ context.Context, id string) error {
	l.mu.Lock()
	delete(l.events, id)
	l.mu.Unlock()
	return nil
}

// Close stops the background sweep.
func (l *MemoryLimiter) Close() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

func (l *MemoryLimiter) sweeper() {
	ticker := time.NewTicker(l.conf.SweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

func (l *MemoryLimiter) sweep() {
	cutoff := l.conf.Clock().Add(-l.conf.IdleAfter)
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, events := range l.events {
		if len(events) == 0 || events[len(events)-1].Before(cutoff) {
			delete(l.events, id)
		}
	}
}
