package storage

import (
	"context"
	"time"

	"anonrelay/logger"
)

// FallbackStore fronts the shared backend with the in-process one. Every call
// against the shared store carries a bounded timeout; on timeout or
// connectivity failure the local backend answers instead. The switch is
// logged, never surfaced to the caller.
//
// Appends are mirrored into the local backend unconditionally so that history
// survives a mid-flight outage of the shared store.
type FallbackStore struct {
	shared  Store // nil when the relay runs without a shared store
	local   *MemoryStore
	timeout time.Duration
}

func NewFallbackStore(shared Store, local *MemoryStore, timeout time.Duration) *FallbackStore {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &FallbackStore{shared: shared, local: local, timeout: timeout}
}

func (s *FallbackStore) Append(ctx context.Context, msg ChatMessage) error {
	_ = s.local.Append(ctx, msg)

	if s.shared == nil {
		return nil
	}
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.shared.Append(cctx, msg); err != nil {
		logger.Warnf("[storage] shared append failed, local copy retained: %v", err)
	}
	return nil
}

func (s *FallbackStore) Recent(ctx context.Context, n int) ([]ChatMessage, error) {
	if s.shared != nil {
		cctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		msgs, err := s.shared.Recent(cctx, n)
		if err == nil {
			return msgs, nil
		}
		logger.Warnf("[storage] shared recent failed, serving local history: %v", err)
	}
	return s.local.Recent(ctx, n)
}
