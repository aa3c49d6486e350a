package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/viant/docbridge/internal/clock"
	"github.com/viant/docbridge/internal/idgen"
	"github.com/viant/docbridge/metrics"
	"github.com/viant/docbridge/model/command"
	"github.com/viant/docbridge/model/types"
	"github.com/viant/docbridge/runtime/correlation"
	"github.com/viant/docbridge/service/event"
	"github.com/viant/docbridge/service/messaging"
	"github.com/viant/docbridge/service/transport"
	"github.com/viant/docbridge/tracing"
)

// Channel sends commands over a Transport and matches responses by id.
type Channel struct {
	transport  transport.Transport
	store      *correlation.Store
	timeout    time.Duration
	metrics    *metrics.Metrics
	events     *event.Service
	subscribed atomic.Bool

	startOnce sync.Once
	closeOnce sync.Once
	closed    chan struct{}
	readDone  chan struct{}
}

// New creates a channel; call Start to begin reading responses.
func New(t transport.Transport, opts ...Option) *Channel {
	ret := &Channel{
		transport: t,
		store:     correlation.NewStore(),
		timeout:   DefaultTimeout,
		closed:    make(chan struct{}),
		readDone:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.metrics == nil {
		ret.metrics = metrics.New()
	}
	return ret
}

// Start launches the reader loop. A read failure tears the channel down.
func (c *Channel) Start(ctx context.Context) {
	c.startOnce.Do(func() {
		go c.read(ctx)
	})
}

func (c *Channel) read(ctx context.Context) {
	defer close(c.readDone)
	for {
		envelope, err := c.transport.Receive(ctx)
		if err != nil {
			select {
			case <-c.closed:
			default:
				if !errors.Is(err, transport.ErrClosed) {
					log.Printf("channel read failed: %v", err)
				}
				c.teardown()
			}
			return
		}
		if envelope.Response != nil {
			c.OnResponse(envelope.Response)
		}
		if envelope.Notification != nil {
			c.notify(ctx, envelope.Notification)
		}
	}
}

// Send registers and transmits a command, returning immediately.
func (c *Channel) Send(ctx context.Context, kind command.Kind, payload interface{}) (*Future, error) {
	select {
	case <-c.closed:
		return nil, fmt.Errorf("%w: cannot send %v", types.ErrConnectionClosed, kind)
	default:
	}
	cmd := &command.Command{ID: idgen.New(), Kind: kind}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, types.NewValidationError("invalid %v payload: %v", kind, err)
		}
		cmd.Payload = data
	}
	pending := correlation.NewPending(cmd.ID, kind)
	if err := c.store.Register(pending); err != nil {
		return nil, err
	}
	id := cmd.ID
	pending.SetTimer(clock.AfterFunc(c.timeout, func() { c.expire(id) }))
	c.metrics.CommandsSent.WithLabelValues(string(kind)).Inc()
	c.metrics.Pending.Inc()
	select {
	case <-c.closed:
		err := fmt.Errorf("%w: cannot send %v", types.ErrConnectionClosed, kind)
		c.complete(id, nil, err, metrics.OutcomeClosed)
		return nil, err
	default:
	}

	if err := c.transport.Send(ctx, cmd); err != nil {
		if errors.Is(err, transport.ErrClosed) {
			err = fmt.Errorf("%w: %v", types.ErrConnectionClosed, err)
		}
		c.complete(id, nil, err, metrics.OutcomeRejected)
		return nil, err
	}
	return &Future{pending: pending}, nil
}

// Call sends a command and waits for its outcome, decoding the payload into
// output when output is not nil.
func (c *Channel) Call(ctx context.Context, kind command.Kind, payload interface{}, output interface{}) (err error) {
	ctx, span := tracing.StartSpan(ctx, "channel."+string(kind), tracing.KindClient)
	defer func() { tracing.EndSpan(span, err) }()
	future, err := c.Send(ctx, kind, payload)
	if err != nil {
		return err
	}
	span.WithAttributes(map[string]string{"command.id": future.ID()})
	return future.Decode(ctx, output)
}

// OnResponse completes the pending command with the same id. It returns false
// when no command is waiting, in which case the response is dropped.
func (c *Channel) OnResponse(resp *command.Response) bool {
	if resp.OK {
		return c.complete(resp.ID, resp, nil, metrics.OutcomeResolved)
	}
	return c.complete(resp.ID, nil, resp.Err(), metrics.OutcomeRejected)
}

func (c *Channel) expire(id string) {
	err := fmt.Errorf("%w: command %v got no response within %v", types.ErrTimeout, id, c.timeout)
	c.complete(id, nil, err, metrics.OutcomeTimeout)
}

func (c *Channel) complete(id string, resp *command.Response, err error, outcome string) bool {
	pending, ok := c.store.Take(id)
	if !ok {
		if outcome == metrics.OutcomeResolved || outcome == metrics.OutcomeRejected {
			c.metrics.DroppedFrames.Inc()
			log.Printf("dropped response %v: no pending command", id)
		}
		return false
	}
	c.record(pending, outcome)
	pending.Complete(resp, err)
	return true
}

func (c *Channel) record(pending *correlation.Pending, outcome string) {
	c.metrics.Pending.Dec()
	c.metrics.CommandOutcomes.WithLabelValues(string(pending.Kind), outcome).Inc()
	c.metrics.CommandLatency.WithLabelValues(string(pending.Kind)).Observe(clock.Now().Sub(pending.SentAt).Seconds())
}

// Subscribe routes host notifications to handler, replacing any previous
// subscriber.
func (c *Channel) Subscribe(handler func(notification *command.Notification)) error {
	if c.events == nil {
		return fmt.Errorf("channel has no notification bus")
	}
	err := event.SetListenerOf[command.Notification](c.events, func(e *event.Event[command.Notification]) {
		handler(&e.Data)
	})
	if err == nil {
		c.subscribed.Store(true)
	}
	return err
}

func (c *Channel) notify(ctx context.Context, notification *command.Notification) {
	if c.events == nil || !c.subscribed.Load() {
		return
	}
	publisher, err := event.PublisherOf[command.Notification](c.events)
	if err == nil {
		err = publisher.Publish(ctx, event.NewEvent(&event.Context{EventType: notification.Event, Source: "host"}, *notification))
	}
	if err != nil && !errors.Is(err, messaging.ErrClosed) {
		log.Printf("failed to publish %v notification: %v", notification.Event, err)
	}
}

// Pending returns the number of outstanding commands.
func (c *Channel) Pending() int {
	return c.store.Len()
}

// Closed is closed once the channel has been torn down.
func (c *Channel) Closed() <-chan struct{} {
	return c.closed
}

// Close tears the channel down: every outstanding command is rejected with
// ConnectionClosed and the transport is closed.
func (c *Channel) Close() error {
	return c.teardown()
}

func (c *Channel) teardown() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.transport.Close()
		if ids := c.store.IDs(); len(ids) > 0 {
			log.Printf("channel closed with %d pending commands: %v", len(ids), strings.Join(ids, ", "))
		}
		for _, pending := range c.store.Drain() {
			c.record(pending, metrics.OutcomeClosed)
			pending.Complete(nil, fmt.Errorf("%w: command %v (%v) abandoned", types.ErrConnectionClosed, pending.ID, pending.Kind))
		}
	})
	return err
}
