// Package global holds process-wide configuration for the relay. Values come
// from the environment; an optional .env file is loaded by main before
// Load runs.
package global

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:""`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisPoolSize int    `envconfig:"REDIS_POOL_SIZE" default:"20"`

	// ChannelName keys the shared message list; one relay deployment, one channel.
	ChannelName      string        `envconfig:"CHANNEL_NAME" default:"chat"`
	HistoryCapacity  int           `envconfig:"HISTORY_CAPACITY" default:"100"`
	HistoryRetention time.Duration `envconfig:"HISTORY_RETENTION" default:"24h"`

	MaxMessageLength int `envconfig:"MAX_MESSAGE_LENGTH" default:"1000"`

	// BackendTimeout bounds every shared-store round trip; on expiry the call
	// falls back to the in-process backend.
	BackendTimeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"2s"`

	// AllowedOrigins is a comma-separated list; empty allows any origin.
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS"`

	// SigningSecret enables HMAC signatures on outbound messages when set.
	SigningSecret string `envconfig:"SIGNING_SECRET" default:""`

	// ExcludeSender drops the sender from newMessage broadcasts. The default
	// keeps symmetric visibility: senders see their own messages echo back.
	ExcludeSender bool `envconfig:"EXCLUDE_SENDER" default:"false"`

	NodeID int64 `envconfig:"NODE_ID" default:"1"`
}

// Load reads the relay configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("RELAY", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
