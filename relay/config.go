package relay

import (
	"fmt"
	"io"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

const (
	DefaultHost       = "127.0.0.1"
	DefaultPort       = 1234
	DefaultFieldCount = 23
	DefaultBufferSize = 1024

	defaultLoopIntervalMs = 5
)

// Config controls a Relay. Zero fields other than Port take the defaults
// above, so an empty Config is usable as-is.
type Config struct {
	Host string

	// Port 0 asks the OS for an ephemeral port; Relay.Addr reports the
	// bound address. DefaultPort is what deployments normally use.
	Port int

	// Backlog is advisory: Go's net.Listen manages the OS accept backlog
	// itself. One-client-at-a-time is enforced by the accept loop.
	Backlog int

	// FieldCount is the fixed width of every outbound line.
	FieldCount int

	// BufferSize bounds a single inbound read.
	BufferSize int

	// LoopIntervalMs caps the send/receive loop frequency. It also caps
	// the effective telemetry rate seen by the client, so keep it shorter
	// than the publisher's period.
	LoopIntervalMs int

	// Newline terminates each outbound line with '\n'. The base protocol
	// relies on one send per client read and has no terminator; enabling
	// this gives the client unambiguous framing if its decoder splits on
	// newlines.
	Newline bool
}

// NewConfigFromReader parses a TOML Config.
func NewConfigFromReader(configReader io.Reader) (*Config, error) {
	configData, err := io.ReadAll(configReader)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read config reader")
	}
	config := Config{}
	if _, err := toml.Decode(string(configData), &config); err != nil {
		return nil, errors.Wrap(err, "unable to load relay configuration")
	}
	return &config, nil
}

func (cfg *Config) withDefaults() *Config {
	out := *cfg
	if out.Host == "" {
		out.Host = DefaultHost
	}
	if out.Backlog == 0 {
		out.Backlog = 1
	}
	if out.FieldCount == 0 {
		out.FieldCount = DefaultFieldCount
	}
	if out.BufferSize == 0 {
		out.BufferSize = DefaultBufferSize
	}
	if out.LoopIntervalMs == 0 {
		out.LoopIntervalMs = defaultLoopIntervalMs
	}
	return &out
}

func (cfg *Config) addr() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

func (cfg *Config) loopInterval() time.Duration {
	return time.Duration(cfg.LoopIntervalMs) * time.Millisecond
}
