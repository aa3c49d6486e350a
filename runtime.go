package docbridge

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/viant/docbridge/metrics"
	"github.com/viant/docbridge/model/command"
	"github.com/viant/docbridge/service/channel"
	"github.com/viant/docbridge/service/checkpoint"
	"github.com/viant/docbridge/service/client"
	"github.com/viant/docbridge/service/event"
	"github.com/viant/docbridge/service/host"
	"github.com/viant/docbridge/service/pipeline"
	"github.com/viant/docbridge/service/script"
	"github.com/viant/docbridge/service/transport"
)

// Runtime is one orchestrator session.
type Runtime struct {
	config      *Config
	host        *host.Executor
	endpoint    transport.Endpoint
	channel     *channel.Channel
	client      *client.Client
	checkpoints *checkpoint.Store
	pipeline    *pipeline.Service
	script      *script.Service
	events      *event.Service
	metrics     *metrics.Metrics
	mux         sync.Mutex
	cancel      context.CancelFunc
}

// Start starts the in-process host, if any, and the channel reader.
func (r *Runtime) Start(ctx context.Context) error {
	r.mux.Lock()
	defer r.mux.Unlock()
	if r.cancel != nil {
		return nil
	}
	ctx, r.cancel = context.WithCancel(ctx)
	if r.host != nil {
		go func() {
			if err := r.host.Serve(ctx, r.endpoint); err != nil {
				log.Printf("host stopped: %v", err)
			}
		}()
	}
	r.channel.Start(ctx)
	return nil
}

// Shutdown closes the channel; outstanding commands fail with
// ConnectionClosed.
func (r *Runtime) Shutdown(ctx context.Context) error {
	err := r.channel.Close()
	if r.events != nil {
		err = errors.Join(err, r.events.Close())
	}
	r.mux.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.mux.Unlock()
	return err
}

// Client returns the typed command client.
func (r *Runtime) Client() *client.Client {
	return r.client
}

// Host returns the in-process host, or nil when connected remotely.
func (r *Runtime) Host() *host.Executor {
	return r.host
}

// Metrics returns the runtime collectors.
func (r *Runtime) Metrics() *metrics.Metrics {
	return r.metrics
}

// Session returns the session id.
func (r *Runtime) Session() string {
	return r.config.Session
}

// Subscribe registers the document change handler.
func (r *Runtime) Subscribe(handler func(notification *command.Notification)) error {
	return r.channel.Subscribe(handler)
}

// RunScript interprets script; it stops at the first failure and keeps
// earlier effects.
func (r *Runtime) RunScript(ctx context.Context, text string) (*script.Result, error) {
	return r.script.Run(ctx, text)
}

// RunScriptWithCheckpoint saves rootID (the page when empty) under label and
// runs script. Restoring on failure is left to the caller.
func (r *Runtime) RunScriptWithCheckpoint(ctx context.Context, rootID, label, text string) (*script.Result, *checkpoint.Checkpoint, error) {
	if rootID == "" {
		ping, err := r.client.Ping(ctx)
		if err != nil {
			return nil, nil, err
		}
		rootID = ping.RootID
	}
	saved, err := r.checkpoints.Save(ctx, rootID, label)
	if err != nil {
		return nil, nil, err
	}
	result, err := r.script.Run(ctx, text)
	return result, saved, err
}

// RunPipeline validates and runs steps, rolling back to the automatic
// checkpoint when a step fails.
func (r *Runtime) RunPipeline(ctx context.Context, steps []*pipeline.Step) (*pipeline.Result, error) {
	return r.pipeline.Run(ctx, steps)
}

// SaveCheckpoint captures the subtree of rootID under label.
func (r *Runtime) SaveCheckpoint(ctx context.Context, rootID, label string) (*checkpoint.Checkpoint, error) {
	return r.checkpoints.Save(ctx, rootID, label)
}

// RestoreCheckpoint replaces the checkpoint root subtree with its snapshot.
func (r *Runtime) RestoreCheckpoint(ctx context.Context, label string) (*checkpoint.Checkpoint, error) {
	ret, err := r.checkpoints.Restore(ctx, label)
	r.metrics.Rollbacks.WithLabelValues("manual", metrics.Result(err)).Inc()
	return ret, err
}

// DiffCheckpoint compares a checkpoint with the live subtree.
func (r *Runtime) DiffCheckpoint(ctx context.Context, label string) (string, checkpoint.DiffStats, error) {
	return r.checkpoints.Diff(ctx, label)
}

// Checkpoints lists the session checkpoints by creation time.
func (r *Runtime) Checkpoints(ctx context.Context) ([]*checkpoint.Checkpoint, error) {
	return r.checkpoints.List(ctx)
}

// EndSession drops every checkpoint and, for an in-process host, resets the
// document.
func (r *Runtime) EndSession(ctx context.Context) error {
	if err := r.checkpoints.Clear(ctx); err != nil {
		return err
	}
	if r.host != nil {
		return r.host.Reset(ctx)
	}
	return nil
}
