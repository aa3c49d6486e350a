package messaging

import (
	"context"
	"errors"
)

// ErrClosed is returned by queues after Close.
var ErrClosed = errors.New("queue closed")

// Queue represents an abstract message queue for any payload type
type Queue[T any] interface {
	// Publish adds a new message with payload to the queue
	Publish(ctx context.Context, t *T) error

	// Consume retrieves a single message from the queue, blocking until one
	// is available, ctx is done or the queue is closed
	Consume(ctx context.Context) (Message[T], error)

	// Close releases blocked consumers; later calls fail with ErrClosed
	Close() error
}

// Message represents a message retrieved from a queue
type Message[T any] interface {
	// T returns the payload of this message
	T() *T

	// Ack acknowledges successful processing of this message
	Ack() error

	// Nack marks the message as failed; it is never redelivered
	Nack(err error) error
}

// Vendor represents the name of a messaging vendor
type Vendor string

// VendorMemory selects in-process channel-backed queues
const VendorMemory Vendor = "memory"
