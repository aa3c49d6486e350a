package pipeline

import (
	"github.com/viant/docbridge/metrics"
	"github.com/viant/docbridge/policy"
	"github.com/viant/docbridge/service/executor"
)

// Option customises a Service.
type Option func(s *Service)

// WithPolicy further restricts the default operation policy.
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) {
		if p != nil {
			s.policy = p
		}
	}
}

// WithMetrics records step and rollback outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithExecutor supplies the operation executor, e.g. one with a listener.
func WithExecutor(e *executor.Service) Option {
	return func(s *Service) {
		s.executor = e
	}
}
