package docbridge

import (
	"io"
	"log"

	"github.com/viant/docbridge/extension"
	"github.com/viant/docbridge/internal/idgen"
	"github.com/viant/docbridge/metrics"
	"github.com/viant/docbridge/model/types"
	"github.com/viant/docbridge/policy"
	cpaction "github.com/viant/docbridge/service/action/checkpoint"
	"github.com/viant/docbridge/service/action/node"
	"github.com/viant/docbridge/service/action/printer"
	"github.com/viant/docbridge/service/channel"
	"github.com/viant/docbridge/service/checkpoint"
	"github.com/viant/docbridge/service/client"
	"github.com/viant/docbridge/service/event"
	"github.com/viant/docbridge/service/executor"
	"github.com/viant/docbridge/service/host"
	"github.com/viant/docbridge/service/messaging"
	"github.com/viant/docbridge/service/messaging/memory"
	"github.com/viant/docbridge/service/pipeline"
	"github.com/viant/docbridge/service/script"
	"github.com/viant/docbridge/service/transport"
)

// Service assembles a Runtime from options.
type Service struct {
	runtime           *Runtime
	config            *Config
	transport         transport.Transport
	hostOptions       []host.Option
	metrics           *metrics.Metrics
	actions           *extension.Actions
	extensionServices []types.Service
	executorOptions   []executor.Option
	output            io.Writer
}

func (s *Service) init(options []Option) {
	for _, option := range options {
		option(s)
	}
	s.ensureBaseSetup()
	r := s.runtime
	r.config, r.metrics = s.config, s.metrics

	queueConfig := memory.Config{DeadLetter: true, QueueBuffer: s.config.Queue.Buffer}
	events, err := event.New(messaging.VendorMemory, event.WithNewMemoryQueueConfig(func(string) memory.Config { return queueConfig }))
	if err != nil {
		log.Printf("failed to create event service: %v", err)
	}
	r.events = events

	if s.transport == nil {
		var endpoint transport.Endpoint
		s.transport, endpoint = transport.NewPipe(queueConfig)
		r.host = host.New(append([]host.Option{host.WithSession(s.config.Session)}, s.hostOptions...)...)
		r.endpoint = endpoint
	}
	r.channel = channel.New(s.transport,
		channel.WithTimeout(s.config.Channel.Timeout()),
		channel.WithMetrics(s.metrics),
		channel.WithEvents(events))
	r.client = client.New(r.channel)
	r.checkpoints = checkpoint.New(r.client)

	s.actions = extension.NewActions(node.New(r.client), cpaction.New(r.checkpoints), printer.New(r.client, s.output))
	for _, service := range s.extensionServices {
		s.actions.Register(service)
	}
	r.pipeline = pipeline.New(s.actions, r.checkpoints,
		pipeline.WithPolicy(policy.FromConfig(s.config.Pipeline.Policy)),
		pipeline.WithMetrics(s.metrics),
		pipeline.WithExecutor(executor.New(s.actions, s.executorOptions...)))
	r.script = script.New(r.client,
		script.WithMaxOperations(s.config.Script.MaxOperations),
		script.WithMetrics(s.metrics))
}

func (s *Service) ensureBaseSetup() {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	defaults := DefaultConfig()
	if s.config.Channel.TimeoutMs <= 0 {
		s.config.Channel.TimeoutMs = defaults.Channel.TimeoutMs
	}
	if s.config.Script.MaxOperations <= 0 {
		s.config.Script.MaxOperations = defaults.Script.MaxOperations
	}
	if s.config.Queue.Buffer <= 0 {
		s.config.Queue.Buffer = defaults.Queue.Buffer
	}
	if s.config.Session == "" {
		s.config.Session = idgen.New()
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
}

// RegisterExtensionServices adds pipeline operation services.
func (s *Service) RegisterExtensionServices(services ...types.Service) {
	for i := range services {
		s.actions.Register(services[i])
	}
}

// Actions returns the pipeline operation registry.
func (s *Service) Actions() *extension.Actions {
	return s.actions
}

func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// New creates a service; without WithTransport it runs an in-process host.
func New(options ...Option) *Service {
	ret := &Service{runtime: &Runtime{}}
	ret.init(options)
	return ret
}
