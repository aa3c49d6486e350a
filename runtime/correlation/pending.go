package correlation

import (
	"context"
	"sync"
	"time"

	"github.com/viant/docbridge/internal/clock"
	"github.com/viant/docbridge/model/command"
)

// Pending represents a command waiting for its terminal outcome. The outcome
// is written once by whoever removed the entry from the Store.
type Pending struct {
	ID     string
	Kind   command.Kind
	SentAt time.Time

	mu       sync.Mutex
	timer    clock.Timer
	done     chan struct{}
	response *command.Response
	err      error
}

// NewPending creates a pending entry for a command.
func NewPending(id string, kind command.Kind) *Pending {
	return &Pending{ID: id, Kind: kind, SentAt: clock.Now(), done: make(chan struct{})}
}

// SetTimer attaches the deadline timer stopped on completion.
func (p *Pending) SetTimer(timer clock.Timer) {
	p.mu.Lock()
	p.timer = timer
	p.mu.Unlock()
}

func (p *Pending) stopTimer() {
	p.mu.Lock()
	if p.timer != nil {
		p.timer.Stop()
	}
	p.mu.Unlock()
}

// Complete records the outcome. Only the Take owner may call it.
func (p *Pending) Complete(response *command.Response, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	select {
	case <-p.done:
		return
	default:
	}
	p.response, p.err = response, err
	close(p.done)
}

// Done is closed once the outcome is known.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Outcome returns the recorded outcome; valid after Done is closed.
func (p *Pending) Outcome() (*command.Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.response, p.err
}

// Wait blocks until the outcome is known or ctx is done. Leaving on ctx does
// not remove the entry: the deadline timer still completes it.
func (p *Pending) Wait(ctx context.Context) (*command.Response, error) {
	select {
	case <-p.done:
		return p.Outcome()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
