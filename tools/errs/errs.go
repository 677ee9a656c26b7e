// Package errs defines the relay's error taxonomy. Every error carries a
// stable code so handlers can decide whether to answer the client, log and
// continue, or tear the connection down.
package errs

import (
	"errors"
	"fmt"
)

const (
	CodeProtocol           = 1001 // malformed inbound payload, logged only
	CodeInvalidMessage     = 1002 // shape/length violation, answered with an error event
	CodeEmptyAfterSanitize = 1003 // content sanitized down to nothing
	CodeRateLimited        = 1004 // admission rejected, answered with retryAfter
	CodeBackendUnavailable = 1005 // shared store unreachable, never surfaced to clients
	CodeTransport          = 1006 // socket-level failure, connection deregistered
)

// CodeError is a relay error with a stable code and a client-safe message.
// Detail is for logs only and never sent on the wire.
type CodeError struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
}

func New(code int, msg string) *CodeError {
	return &CodeError{Code: code, Msg: msg}
}

func (e *CodeError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("[%d] %s", e.Code, e.Msg)
	}
	return fmt.Sprintf("[%d] %s: %s", e.Code, e.Msg, e.Detail)
}

// WithDetail returns a copy carrying extra log-side context.
func (e *CodeError) WithDetail(detail string) *CodeError {
	d := detail
	if e.Detail != "" {
		d = e.Detail + ", " + detail
	}
	return &CodeError{Code: e.Code, Msg: e.Msg, Detail: d}
}

func (e *CodeError) Is(target error) bool {
	var ce *CodeError
	if !errors.As(target, &ce) {
		return false
	}
	return e.Code == ce.Code
}

var (
	ErrProtocol           = New(CodeProtocol, "malformed payload")
	ErrInvalidMessage     = New(CodeInvalidMessage, "invalid message")
	ErrEmptyAfterSanitize = New(CodeEmptyAfterSanitize, "message empty after sanitization")
	ErrRateLimited        = New(CodeRateLimited, "rate limit exceeded")
	ErrBackendUnavailable = New(CodeBackendUnavailable, "backend unavailable")
	ErrTransport          = New(CodeTransport, "transport failure")
)

// CodeOf extracts the taxonomy code from err, or 0 if err is not a CodeError.
func CodeOf(err error) int {
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return 0
}
