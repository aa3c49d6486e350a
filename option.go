package docbridge

import (
	"io"

	"github.com/viant/afs"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/viant/docbridge/metrics"
	"github.com/viant/docbridge/model/types"
	"github.com/viant/docbridge/service/executor"
	"github.com/viant/docbridge/service/host"
	"github.com/viant/docbridge/service/transport"
	"github.com/viant/docbridge/tracing"
)

// Option customises a Service.
type Option func(s *Service)

// WithConfig replaces the default configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) {
		if config != nil {
			s.config = config
		}
	}
}

// WithTransport connects to a remote host instead of an in-process one.
func WithTransport(t transport.Transport) Option {
	return func(s *Service) {
		s.transport = t
	}
}

// WithFontLoader sets the font loader of the in-process host.
func WithFontLoader(loader host.FontLoader) Option {
	return func(s *Service) {
		s.hostOptions = append(s.hostOptions, host.WithFontLoader(loader))
	}
}

// WithFileSystem sets the image store file system of the in-process host.
func WithFileSystem(fs afs.Service) Option {
	return func(s *Service) {
		s.hostOptions = append(s.hostOptions, host.WithFileSystem(fs))
	}
}

// WithMetrics sets the prometheus collectors shared by the channel and the
// batch engines.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithExtensionServices registers additional pipeline operation services.
func WithExtensionServices(services ...types.Service) Option {
	return func(s *Service) {
		s.extensionServices = append(s.extensionServices, services...)
	}
}

// WithExecutorOptions passes options to the pipeline operation executor,
// e.g. executor.WithListener(executor.LogListener).
func WithExecutorOptions(opts ...executor.Option) Option {
	return func(s *Service) {
		s.executorOptions = append(s.executorOptions, opts...)
	}
}

// WithTracing configures OpenTelemetry tracing. If outputFile is empty the
// stdout exporter is used. The first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing with a custom exporter.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}

// WithOutput sets where the printer operation writes (stdout by default).
func WithOutput(w io.Writer) Option {
	return func(s *Service) {
		s.output = w
	}
}
