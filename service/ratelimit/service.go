package ratelimit

import (
	"context"
	"time"

	"anonrelay/logger"
)

// Service fronts the shared backend with the in-process one. Shared-store
// calls carry a bounded timeout; on timeout or connectivity failure the local
// backend decides instead. The fallback is automatic and logged, never
// surfaced to the caller: Admit always returns a well-formed decision.
type Service struct {
	shared  Limiter // nil when the relay runs without a shared store
	local   *MemoryLimiter
	timeout time.Duration
}

func NewService(shared Limiter, local *MemoryLimiter, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Service{shared: shared, local: local, timeout: timeout}
}

func (s *Service) Admit(ctx context.Context, id string, max int, window time.Duration) Decision {
	if s.shared != nil {
		cctx, cancel := context.WithTimeout(ctx, s.timeout)
		d, err := s.shared.Admit(cctx, id, max, window)
		cancel()
		if err == nil {
			return d
		}
		logger.Warnf("[ratelimit] shared backend failed for %s, using local: %v", id, err)
	}
	d, _ := s.local.Admit(ctx, id, max, window)
	return d
}

// Reset clears all records matching the identifier across both backends; used
// for administrative unblocking.
func (s *Service) Reset(ctx context.Context, id string) error {
	var firstErr error
	if s.shared != nil {
		cctx, cancel := context.WithTimeout(ctx, s.timeout)
		firstErr = s.shared.Reset(cctx, id)
		cancel()
	}
	if err := s.local.Reset(ctx, id); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Close stops the local backend's sweeper.
func (s *Service) Close() {
	s.local.Close()
}
