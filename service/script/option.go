package script

import "github.com/viant/docbridge/metrics"

// Option customises a Service.
type Option func(s *Service)

// WithMaxOperations bounds the number of statements per script.
func WithMaxOperations(max int) Option {
	return func(s *Service) {
		if max > 0 {
			s.maxOperations = max
		}
	}
}

// WithMetrics records per-operation outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}
