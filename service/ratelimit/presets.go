package ratelimit

import (
	"context"
	"time"
)

// PresetLimiter binds the admission service to one fixed policy. Identifiers
// are namespaced per policy so a burst of messages never eats into a client's
// connection budget.
type PresetLimiter struct {
	svc       *Service
	namespace string
	max       int
	window    time.Duration
}

func newPreset(svc *Service, namespace string, max int, window time.Duration) *PresetLimiter {
	return &PresetLimiter{svc: svc, namespace: namespace, max: max, window: window}
}

// NewMessageLimiter limits message sends, 20 per 60s.
func NewMessageLimiter(svc *Service) *PresetLimiter {
	return newPreset(svc, "msg", 20, time.Minute)
}

// NewConnectionLimiter limits connection attempts, 5 per 60s.
func NewConnectionLimiter(svc *Service) *PresetLimiter {
	return newPreset(svc, "conn", 5, time.Minute)
}

// NewBurstLimiter limits short spikes, 5 per 10s.
func NewBurstLimiter(svc *Service) *PresetLimiter {
	return newPreset(svc, "burst", 5, 10*time.Second)
}

// NewAPILimiter is the generic request limit, 100 per 60s.
func NewAPILimiter(svc *Service) *PresetLimiter {
	return newPreset(svc, "api", 100, time.Minute)
}

func (p *PresetLimiter) Admit(ctx context.Context, origin string) Decision {
	return p.svc.Admit(ctx, p.namespace+":"+origin, p.max, p.window)
}

func (p *PresetLimiter) Reset(ctx context.Context, origin string) error {
	return p.svc.Reset(ctx, p.namespace+":"+origin)
}

// Limit reports the preset's configured maximum.
func (p *PresetLimiter) Limit() int { return p.max }

// Window reports the preset's trailing interval.
func (p *PresetLimiter) Window() time.Duration { return p.window }

// LoadAware scales a preset's maximum down as the load signal rises:
// below 0.4 the full budget applies, then 75%, 50%, and 25% from 0.8 up.
// The effective maximum never drops below 1.
type LoadAware struct {
	inner *PresetLimiter
	load  func() float64
}

func NewLoadAware(inner *PresetLimiter, load func() float64) *LoadAware {
	return &LoadAware{inner: inner, load: load}
}

func (l *LoadAware) Admit(ctx context.Context, origin string) Decision {
	max := scaleForLoad(l.inner.max, l.load())
	return l.inner.svc.Admit(ctx, l.inner.namespace+":"+origin, max, l.inner.window)
}

func scaleForLoad(max int, load float64) int {
	factor := 1.0
	switch {
	case load >= 0.8:
		factor = 0.25
	case load >= 0.6:
		factor = 0.5
	case load >= 0.4:
		factor = 0.75
	}
	scaled := int(float64(max) * factor)
	if scaled < 1 {
		scaled = 1
	}
	return scaled
}
