package channel

import (
	"context"

	"github.com/viant/docbridge/model/command"
	"github.com/viant/docbridge/runtime/correlation"
)

// Future is the caller's handle on an outstanding command.
type Future struct {
	pending *correlation.Pending
}

func (f *Future) ID() string {
	return f.pending.ID
}

func (f *Future) Kind() command.Kind {
	return f.pending.Kind
}

// Done is closed once the command has a terminal outcome.
func (f *Future) Done() <-chan struct{} {
	return f.pending.Done()
}

// Wait returns the successful response, or the error that rejected the
// command: a rehydrated host error, Timeout, ConnectionClosed or a transmit
// error. Returning on ctx leaves the command outstanding.
func (f *Future) Wait(ctx context.Context) (*command.Response, error) {
	return f.pending.Wait(ctx)
}

// Decode waits and unmarshals the success payload into output.
func (f *Future) Decode(ctx context.Context, output interface{}) error {
	resp, err := f.Wait(ctx)
	if err != nil {
		return err
	}
	return resp.Decode(output)
}
