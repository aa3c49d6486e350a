package transport

import (
	"context"
	"errors"
	"sync"

	"github.com/viant/docbridge/model/command"
	"github.com/viant/docbridge/service/messaging"
	"github.com/viant/docbridge/service/messaging/memory"
)

// Pipe is an in-process connection: one queue per direction.
type Pipe struct {
	commands  messaging.Queue[command.Command]
	envelopes messaging.Queue[command.Envelope]
	closeOnce sync.Once
}

// NewPipe returns connected orchestrator and host ends.
func NewPipe(config memory.Config) (Transport, Endpoint) {
	pipe := &Pipe{
		commands:  memory.NewQueue[command.Command](config),
		envelopes: memory.NewQueue[command.Envelope](config),
	}
	return &pipeTransport{pipe}, &pipeEndpoint{pipe}
}

func (p *Pipe) close() error {
	p.closeOnce.Do(func() {
		_ = p.commands.Close()
		_ = p.envelopes.Close()
	})
	return nil
}

func consume[T any](ctx context.Context, queue messaging.Queue[T]) (*T, error) {
	msg, err := queue.Consume(ctx)
	if err != nil {
		if errors.Is(err, messaging.ErrClosed) {
			return nil, ErrClosed
		}
		return nil, err
	}
	if err = msg.Ack(); err != nil {
		return nil, err
	}
	return msg.T(), nil
}

func publishErr(err error) error {
	if errors.Is(err, messaging.ErrClosed) {
		return ErrClosed
	}
	return err
}

type pipeTransport struct{ *Pipe }

func (t *pipeTransport) Send(ctx context.Context, cmd *command.Command) error {
	return publishErr(t.commands.Publish(ctx, cmd))
}

func (t *pipeTransport) Receive(ctx context.Context) (*command.Envelope, error) {
	return consume(ctx, t.envelopes)
}

func (t *pipeTransport) Close() error { return t.close() }

type pipeEndpoint struct{ *Pipe }

func (e *pipeEndpoint) Receive(ctx context.Context) (*command.Command, error) {
	return consume(ctx, e.commands)
}

func (e *pipeEndpoint) Reply(ctx context.Context, envelope *command.Envelope) error {
	return publishErr(e.envelopes.Publish(ctx, envelope))
}

func (e *pipeEndpoint) Close() error { return e.close() }
