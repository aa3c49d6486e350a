package progress

import (
	"context"
	"sync"
	"time"
)

// Delta represents an incremental counter change. Fields are signed.
type Delta struct {
	Total     int
	Completed int
	Skipped   int
	Failed    int
	Running   int
}

// Progress keeps operation counters of one batch run. It is safe for
// concurrent use.
type Progress struct {
	RunID     string
	Engine    string
	StartedAt time.Time

	TotalOperations     int
	CompletedOperations int
	SkippedOperations   int
	FailedOperations    int
	RunningOperations   int

	sync.Mutex
	onChange func(Progress)
}

// Update applies d and invokes the onChange callback, if any, outside the
// lock with a copy of the counters.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}
	p.Lock()
	p.TotalOperations += d.Total
	p.CompletedOperations += d.Completed
	p.SkippedOperations += d.Skipped
	p.FailedOperations += d.Failed
	p.RunningOperations += d.Running
	snapshot := p.copy()
	cb := p.onChange
	p.Unlock()
	if cb != nil {
		cb(snapshot)
	}
}

func (p *Progress) copy() Progress {
	return Progress{
		RunID:               p.RunID,
		Engine:              p.Engine,
		StartedAt:           p.StartedAt,
		TotalOperations:     p.TotalOperations,
		CompletedOperations: p.CompletedOperations,
		SkippedOperations:   p.SkippedOperations,
		FailedOperations:    p.FailedOperations,
		RunningOperations:   p.RunningOperations,
	}
}

// Snapshot returns a copy suitable for read-only inspection.
func (p *Progress) Snapshot() Progress {
	if p == nil {
		return Progress{}
	}
	p.Lock()
	defer p.Unlock()
	return p.copy()
}

// OnChange registers the callback invoked after every Update.
func (p *Progress) OnChange(cb func(Progress)) {
	if p == nil {
		return
	}
	p.Lock()
	p.onChange = cb
	p.Unlock()
}

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithNewTracker creates a tracker and embeds it in a derived context.
func WithNewTracker(ctx context.Context, runID, engine string, onChange func(Progress)) (context.Context, *Progress) {
	if ctx == nil {
		ctx = context.Background()
	}
	tr := &Progress{
		RunID:     runID,
		Engine:    engine,
		StartedAt: time.Now(),
		onChange:  onChange,
	}
	return context.WithValue(ctx, trackerKey, tr), tr
}

// FromContext extracts the tracker from ctx.
func FromContext(ctx context.Context) (*Progress, bool) {
	if ctx == nil {
		return nil, false
	}
	tr, ok := ctx.Value(trackerKey).(*Progress)
	return tr, ok
}

// GetSnapshot combines FromContext and Snapshot.
func GetSnapshot(ctx context.Context) (Progress, bool) {
	if tr, ok := FromContext(ctx); ok {
		return tr.Snapshot(), true
	}
	return Progress{}, false
}

// UpdateCtx applies d to the tracker in ctx, if any.
func UpdateCtx(ctx context.Context, d Delta) {
	if tr, ok := FromContext(ctx); ok {
		tr.Update(d)
	}
}
