package docbridge

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/viant/docbridge/policy"
	"github.com/viant/docbridge/service/channel"
	"github.com/viant/docbridge/service/script"
)

// Config is a serialisable representation of the runtime configuration. The
// zero value of any nested field falls back to its package default.
type Config struct {
	Session  string         `json:"session,omitempty" yaml:"session,omitempty"`
	Channel  ChannelConfig  `json:"channel" yaml:"channel"`
	Script   ScriptConfig   `json:"script" yaml:"script"`
	Pipeline PipelineConfig `json:"pipeline" yaml:"pipeline"`
	Queue    QueueConfig    `json:"queue" yaml:"queue"`
}

type ChannelConfig struct {
	TimeoutMs int `json:"timeoutMs" yaml:"timeoutMs"`
}

// Timeout returns the per-command timeout.
func (c ChannelConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

type ScriptConfig struct {
	MaxOperations int `json:"maxOperations" yaml:"maxOperations"`
}

// PipelineConfig narrows the default pipeline policy when Policy is set.
type PipelineConfig struct {
	Policy *policy.Config `json:"policy,omitempty" yaml:"policy,omitempty"`
}

type QueueConfig struct {
	Buffer int `json:"buffer" yaml:"buffer"`
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() *Config {
	return &Config{
		Channel: ChannelConfig{TimeoutMs: int(channel.DefaultTimeout / time.Millisecond)},
		Script:  ScriptConfig{MaxOperations: script.DefaultMaxOperations},
		Queue:   QueueConfig{Buffer: 100},
	}
}

// Validate returns an error describing the first invalid setting, or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Channel.TimeoutMs <= 0 {
		return fmt.Errorf("channel.timeoutMs must be > 0")
	}
	if c.Script.MaxOperations <= 0 {
		return fmt.Errorf("script.maxOperations must be > 0")
	}
	if c.Queue.Buffer <= 0 {
		return fmt.Errorf("queue.buffer must be > 0")
	}
	if p := c.Pipeline.Policy; p != nil && p.Mode != "" && p.Mode != policy.ModeAuto && p.Mode != policy.ModeDeny {
		return fmt.Errorf("pipeline.policy.mode %q is not supported", p.Mode)
	}
	return nil
}

// LoadConfig decodes YAML (or JSON) over DefaultConfig and validates it.
func LoadConfig(data []byte) (*Config, error) {
	ret := DefaultConfig()
	if err := yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := ret.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}
