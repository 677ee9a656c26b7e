// Package relay orchestrates the per-connection lifecycle: identity
// assignment, registration, admission, validation, retention and fan-out.
package relay

import (
	"context"
	"time"

	"anonrelay/global"
	"anonrelay/logger"
	"anonrelay/service/ratelimit"
	"anonrelay/service/storage"
	"anonrelay/tools/errs"
	"anonrelay/tools/ids"
)

// Server wires the relay components together. All shared mutable state
// (registry, fanout) belongs to the instance; two servers in one process are
// fully independent.
type Server struct {
	cfg       *global.Config
	registry  *Registry
	fanout    *Fanout
	store     storage.Store
	limits    *ratelimit.Service
	msgLimit  *ratelimit.PresetLimiter
	connLimit *ratelimit.LoadAware
	identity  *Allocator
	validator *Validator
	signer    *Signer
	startedAt time.Time

	// maxConnections feeds the load signal; it is a soft ceiling used for
	// scaling admission, not a hard cap.
	maxConnections int
}

func NewServer(cfg *global.Config, store storage.Store, limits *ratelimit.Service) *Server {
	s := &Server{
		cfg:            cfg,
		registry:       NewRegistry(),
		fanout:         NewFanout(4, 256),
		store:          store,
		limits:         limits,
		msgLimit:       ratelimit.NewMessageLimiter(limits),
		identity:       NewAllocator(),
		validator:      NewValidator(cfg.MaxMessageLength),
		signer:         NewSigner(cfg.SigningSecret),
		startedAt:      time.Now(),
		maxConnections: 1024,
	}
	s.connLimit = ratelimit.NewLoadAware(ratelimit.NewConnectionLimiter(limits), s.loadSignal)
	return s
}

// loadSignal approximates server load as registry occupancy; connection
// admission scales down as it rises.
func (s *Server) loadSignal() float64 {
	return float64(s.registry.Count()) / float64(s.maxConnections)
}

// Stats reports the health surface values.
func (s *Server) Stats() (activeConnections int, uptime time.Duration) {
	return s.registry.Count(), time.Since(s.startedAt)
}

// ResetOrigin clears every rate-limit record for an origin across all policy
// namespaces and both backends; administrative unblocking.
func (s *Server) ResetOrigin(ctx context.Context, origin string) error {
	var firstErr error
	for _, ns := range []string{"msg", "conn", "burst", "api"} {
		if err := s.limits.Reset(ctx, ns+":"+origin); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *Server) broadcastUserCount() {
	s.fanout.Broadcast(s.registry.Snapshot(), BuildUserCount(s.registry.Count()), nil)
}

// handleMessage runs the accepted-message path: admit, validate, append,
// fan out. Every broadcast message passed both the limiter and the validator.
func (s *Server) handleMessage(ctx context.Context, c *Client, frame *InboundFrame) {
	now := time.Now()

	d := s.msgLimit.Admit(ctx, c.Remote)
	if !d.Allowed {
		c.enqueue(BuildError("rate limit exceeded", d.RetryAfter(now)))
		return
	}

	sanitized, err := s.validator.Validate(frame)
	if err != nil {
		logger.Infof("[relay] rejected message conn=%s code=%d", c.ConnID, errs.CodeOf(err))
		c.enqueue(BuildError(clientMessage(err), 0))
		return
	}

	if frame.Hash != "" && !VerifyContentHash(frame.Content, frame.Hash) {
		// Mismatches are logged, never dropped.
		logger.Warnf("[relay] integrity hash mismatch conn=%s user=%s", c.ConnID, c.Identity.Label)
	}

	msg := storage.ChatMessage{
		ID:        ids.GenerateString(),
		Content:   sanitized,
		Timestamp: now.UTC(),
		UserID:    c.Identity.Label,
		Color:     c.Identity.Color,
		Encrypted: frame.Encrypted,
		Hash:      frame.Hash,
	}
	if s.signer != nil {
		msg.Sig = s.signer.Sign(msg.ID, msg.Content, msg.Timestamp)
	}

	if err := s.store.Append(ctx, msg); err != nil {
		logger.Errorf("[relay] append failed id=%s err=%v", msg.ID, err)
	}

	var exclude *Client
	if s.cfg.ExcludeSender {
		exclude = c
	}
	s.fanout.Broadcast(s.registry.Snapshot(), BuildNewMessage(msg), exclude)
}

// clientMessage maps a validation error to the wire-safe text; details stay
// in the logs.
func clientMessage(err error) string {
	switch errs.CodeOf(err) {
	case errs.CodeEmptyAfterSanitize:
		return "message empty after sanitization"
	default:
		return "invalid message"
	}
}

// Shutdown closes every live connection and stops the fanout workers.
func (s *Server) Shutdown() {
	for _, c := range s.registry.Snapshot() {
		s.registry.Deregister(c.ConnID)
		c.Close()
	}
	s.fanout.Close()
}
