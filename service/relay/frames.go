package relay

import (
	"encoding/json"

	"github.com/mitchellh/mapstructure"

	"anonrelay/service/storage"
	"anonrelay/tools/errs"
)

// Inbound frame types.
const (
	TypeMessage = "message"
	TypePing    = "ping"
)

// InboundFrame is a client event after decoding. Content is the opaque blob
// the relay validates but never interprets; an encrypted payload is just a
// string here.
type InboundFrame struct {
	Type      string `mapstructure:"type"`
	Content   string `mapstructure:"content"`
	Encrypted bool   `mapstructure:"encrypted"`
	Hash      string `mapstructure:"hash"`
}

// ParseInbound decodes one wire frame. The raw JSON goes through a generic
// map first so a declared type can be checked before the strict field decode;
// a non-string content or missing type is a protocol-level rejection.
func ParseInbound(raw []byte) (*InboundFrame, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, errs.ErrProtocol.WithDetail(err.Error())
	}

	t, ok := m["type"].(string)
	if !ok || t == "" {
		return nil, errs.ErrInvalidMessage.WithDetail("missing declared type")
	}

	var frame InboundFrame
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{Result: &frame})
	if err != nil {
		return nil, errs.ErrProtocol.WithDetail(err.Error())
	}
	if err := dec.Decode(m); err != nil {
		return nil, errs.ErrInvalidMessage.WithDetail(err.Error())
	}
	return &frame, nil
}

// ---- server -> client events ----

type initEvent struct {
	Type     string                `json:"type"`
	UserID   string                `json:"userId"`
	Color    string                `json:"color"`
	Messages []storage.ChatMessage `json:"messages"`
}

type newMessageEvent struct {
	Type    string              `json:"type"`
	Message storage.ChatMessage `json:"message"`
}

type userCountEvent struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type pongEvent struct {
	Type string `json:"type"`
}

type errorEvent struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retryAfter,omitempty"`
}

func BuildInit(id Identity, messages []storage.ChatMessage) []byte {
	if messages == nil {
		messages = []storage.ChatMessage{}
	}
	b, _ := json.Marshal(initEvent{Type: "init", UserID: id.Label, Color: id.Color, Messages: messages})
	return b
}

func BuildNewMessage(msg storage.ChatMessage) []byte {
	b, _ := json.Marshal(newMessageEvent{Type: "newMessage", Message: msg})
	return b
}

func BuildUserCount(count int) []byte {
	b, _ := json.Marshal(userCountEvent{Type: "userCount", Count: count})
	return b
}

func BuildPong() []byte {
	b, _ := json.Marshal(pongEvent{Type: "pong"})
	return b
}

func BuildError(message string, retryAfter int) []byte {
	b, _ := json.Marshal(errorEvent{Type: "error", Message: message, RetryAfter: retryAfter})
	return b
}
