package channel

import (
	"time"

	"github.com/viant/docbridge/metrics"
	"github.com/viant/docbridge/service/event"
)

// DefaultTimeout bounds a command when no timeout option is given.
const DefaultTimeout = 30 * time.Second

type Option func(c *Channel)

// WithTimeout sets the fixed per-command timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Channel) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithMetrics sets the prometheus collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Channel) {
		c.metrics = m
	}
}

// WithEvents sets the notification bus.
func WithEvents(events *event.Service) Option {
	return func(c *Channel) {
		c.events = events
	}
}
