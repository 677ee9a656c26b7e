// Package storage provides bounded retention of recent chat messages with two
// interchangeable backends: the shared Redis list and an in-process fallback.
package storage

import (
	"context"
	"time"
)

// ChatMessage is immutable once created; the store owns it after Append and
// never mutates it.
type ChatMessage struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"userId"`
	Color     string    `json:"color"`
	Encrypted bool      `json:"encrypted"`
	Hash      string    `json:"hash,omitempty"`
	Sig       string    `json:"sig,omitempty"`
}

// Store retains the most recent messages up to a fixed capacity, evicting
// oldest first. Recent always returns oldest-first regardless of how the
// backend orders entries internally.
type Store interface {
	Append(ctx context.Context, msg ChatMessage) error
	Recent(ctx context.Context, n int) ([]ChatMessage, error)
}
