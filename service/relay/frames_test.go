package relay

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anonrelay/service/storage"
	"anonrelay/tools/errs"
)

func TestParseInbound(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantCode int
		wantType string
	}{
		{"valid message", `{"type":"message","content":"hi","encrypted":true}`, 0, TypeMessage},
		{"valid ping", `{"type":"ping"}`, 0, TypePing},
		{"not json", `{{{`, errs.CodeProtocol, ""},
		{"missing type", `{"content":"hi"}`, errs.CodeInvalidMessage, ""},
		{"non-string type", `{"type":7,"content":"hi"}`, errs.CodeInvalidMessage, ""},
		{"non-string content", `{"type":"message","content":42}`, errs.CodeInvalidMessage, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := ParseInbound([]byte(tt.raw))
			if tt.wantCode == 0 {
				require.NoError(t, err)
				assert.Equal(t, tt.wantType, frame.Type)
			} else {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, errs.CodeOf(err))
			}
		})
	}
}

func TestParseInbound_CarriesFields(t *testing.T) {
	req := require.New(t)
	frame, err := ParseInbound([]byte(`{"type":"message","content":"secret blob","encrypted":true,"hash":"abc"}`))
	req.NoError(err)
	req.Equal("secret blob", frame.Content)
	req.True(frame.Encrypted)
	req.Equal("abc", frame.Hash)
}

func TestBuildInit_EmptyHistoryIsArray(t *testing.T) {
	req := require.New(t)
	b := BuildInit(Identity{Label: "calm-0001", Color: "#008080"}, nil)

	var out map[string]any
	req.NoError(json.Unmarshal(b, &out))
	req.Equal("init", out["type"])
	req.Equal("calm-0001", out["userId"])
	msgs, ok := out["messages"].([]any)
	req.True(ok, "messages must serialize as an array, not null")
	req.Empty(msgs)
}

func TestBuildError_RetryAfterOmittedWhenZero(t *testing.T) {
	req := require.New(t)

	var out map[string]any
	req.NoError(json.Unmarshal(BuildError("invalid message", 0), &out))
	req.NotContains(out, "retryAfter")

	req.NoError(json.Unmarshal(BuildError("rate limit exceeded", 30), &out))
	req.EqualValues(30, out["retryAfter"])
}

func TestBuildNewMessage_WireShape(t *testing.T) {
	req := require.New(t)
	ts := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	b := BuildNewMessage(storage.ChatMessage{
		ID:        "123",
		Content:   "hello",
		Timestamp: ts,
		UserID:    "swift-042",
		Color:     "#e6194b",
		Encrypted: false,
	})

	var out struct {
		Type    string `json:"type"`
		Message struct {
			ID        string `json:"id"`
			Timestamp string `json:"timestamp"`
			UserID    string `json:"userId"`
		} `json:"message"`
	}
	req.NoError(json.Unmarshal(b, &out))
	req.Equal("newMessage", out.Type)
	req.Equal("123", out.Message.ID)
	req.Equal("swift-042", out.Message.UserID)

	parsed, err := time.Parse(time.RFC3339, out.Message.Timestamp)
	req.NoError(err, "timestamp must be ISO-8601")
	req.True(parsed.Equal(ts))
}
