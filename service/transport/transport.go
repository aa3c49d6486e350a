package transport

import (
	"context"
	"errors"

	"github.com/viant/docbridge/model/command"
)

// ErrClosed is returned once a transport or endpoint has been closed.
var ErrClosed = errors.New("transport closed")

// Transport is the orchestrator side of a host connection.
type Transport interface {
	Send(ctx context.Context, cmd *command.Command) error
	// Receive blocks for the next inbound frame.
	Receive(ctx context.Context) (*command.Envelope, error)
	Close() error
}

// Endpoint is the host side of a connection.
type Endpoint interface {
	Receive(ctx context.Context) (*command.Command, error)
	Reply(ctx context.Context, envelope *command.Envelope) error
	Close() error
}
