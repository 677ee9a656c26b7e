package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// downLimiter simulates an unreachable shared backend.
type downLimiter struct {
	admits int
	resets int
}

func (d *downLimiter) Admit(context.Context, string, int, time.Duration) (Decision, error) {
	d.admits++
	return Decision{}, errors.New("connection refused")
}

func (d *downLimiter) Reset(context.Context, string) error {
	d.resets++
	return nil
}

func TestService_FallsBackWhenSharedUnreachable(t *testing.T) {
	req := require.New(t)
	shared := &downLimiter{}
	local := NewMemoryLimiter(MemoryConf{})
	defer local.Close()
	svc := NewService(shared, local, time.Second)

	d := svc.Admit(context.Background(), "msg:1.2.3.4", 2, time.Minute)
	req.True(d.Allowed, "fallback must still yield a well-formed decision")
	req.Equal(1, d.TotalHits)
	req.Equal(1, shared.admits)

	// Budget is enforced by the local backend while the outage lasts.
	svc.Admit(context.Background(), "msg:1.2.3.4", 2, time.Minute)
	d = svc.Admit(context.Background(), "msg:1.2.3.4", 2, time.Minute)
	req.False(d.Allowed)
	req.False(d.ResetAt.IsZero())
}

func TestService_NoSharedBackendConfigured(t *testing.T) {
	req := require.New(t)
	local := NewMemoryLimiter(MemoryConf{})
	defer local.Close()
	svc := NewService(nil, local, time.Second)

	d := svc.Admit(context.Background(), "conn:x", 1, time.Minute)
	req.True(d.Allowed)
	d = svc.Admit(context.Background(), "conn:x", 1, time.Minute)
	req.False(d.Allowed)
}

func TestService_ResetHitsBothBackends(t *testing.T) {
	req := require.New(t)
	shared := &downLimiter{}
	local := NewMemoryLimiter(MemoryConf{})
	defer local.Close()
	svc := NewService(shared, local, time.Second)

	svc.Admit(context.Background(), "msg:a", 1, time.Minute)
	req.NoError(svc.Reset(context.Background(), "msg:a"))
	req.Equal(1, shared.resets)

	d := svc.Admit(context.Background(), "msg:a", 1, time.Minute)
	req.True(d.Allowed)
}
