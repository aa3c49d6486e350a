package script

import (
	"context"
	"fmt"

	"github.com/viant/docbridge/internal/idgen"
	"github.com/viant/docbridge/metrics"
	"github.com/viant/docbridge/model/tree"
	"github.com/viant/docbridge/model/types"
	"github.com/viant/docbridge/progress"
	"github.com/viant/docbridge/tracing"
)

const engine = "script"

// Client is the set of primitives a script drives.
type Client interface {
	Create(ctx context.Context, kind tree.Kind, parentID string, props map[string]interface{}) (string, error)
	Update(ctx context.Context, id string, props map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	Reparent(ctx context.Context, id, parentID string, index *int) error
}

// OperationResult reports one parsed statement.
type OperationResult struct {
	Line      int    `json:"line"`
	Operation string `json:"operation"`
	Variable  string `json:"variable,omitempty"`
	Attempted bool   `json:"attempted"`
	Success   bool   `json:"success"`
	NodeID    string `json:"nodeId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Failure identifies the statement that stopped the script.
type Failure struct {
	Line      int    `json:"line"`
	Operation string `json:"operation"`
	Error     string `json:"error"`
}

// Result lists every parsed statement, the failure if any and the final
// variable bindings.
type Result struct {
	Operations []*OperationResult `json:"operations"`
	Failure    *Failure           `json:"failure,omitempty"`
	Bindings   map[string]string  `json:"bindings"`
	Err        error              `json:"-"`
}

// Success reports whether every statement succeeded.
func (r *Result) Success() bool {
	return r.Err == nil
}

// Succeeded returns the number of successful statements.
func (r *Result) Succeeded() int {
	count := 0
	for _, op := range r.Operations {
		if op.Success {
			count++
		}
	}
	return count
}

// Service interprets scripts through a Client.
type Service struct {
	client        Client
	maxOperations int
	metrics       *metrics.Metrics
}

// New creates an interpreter.
func New(client Client, opts ...Option) *Service {
	ret := &Service{client: client, maxOperations: DefaultMaxOperations}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Parse parses script with the configured operation limit.
func (s *Service) Parse(script string) ([]*Operation, error) {
	return Parse(script, s.maxOperations)
}

// Run parses script and executes it statement by statement. The returned
// error is the parse error or the first execution failure; in the latter
// case the effects of earlier statements remain applied.
func (s *Service) Run(ctx context.Context, script string) (*Result, error) {
	ret := &Result{Bindings: map[string]string{}}
	operations, err := s.Parse(script)
	if err != nil {
		ret.Err = err
		return ret, err
	}
	ctx, span := tracing.StartSpan(ctx, "script.run", tracing.KindInternal)
	span.WithAttributes(map[string]string{"script.operations": fmt.Sprint(len(operations))})
	tracker, ok := progress.FromContext(ctx)
	if !ok {
		ctx, tracker = progress.WithNewTracker(ctx, idgen.New(), engine, nil)
	}
	tracker.Update(progress.Delta{Total: len(operations)})
	for _, op := range operations {
		ret.Operations = append(ret.Operations, &OperationResult{Line: op.Line, Operation: op.String(), Variable: op.Variable})
	}
	for i, op := range operations {
		result := ret.Operations[i]
		result.Attempted = true
		tracker.Update(progress.Delta{Running: 1})
		nodeID, err := s.execute(ctx, op, ret.Bindings)
		tracker.Update(progress.Delta{Running: -1})
		s.record(err)
		if err != nil {
			err = fmt.Errorf("line %d: %v: %w", op.Line, op.Name, types.AsExecutionFailure(err))
			result.Error = err.Error()
			ret.Failure = &Failure{Line: op.Line, Operation: op.String(), Error: result.Error}
			ret.Err = err
			tracker.Update(progress.Delta{Failed: 1, Skipped: len(operations) - i - 1})
			tracing.EndSpan(span, err)
			return ret, err
		}
		result.Success, result.NodeID = true, nodeID
		tracker.Update(progress.Delta{Completed: 1})
	}
	tracing.EndSpan(span, nil)
	return ret, nil
}

func (s *Service) execute(ctx context.Context, op *Operation, bindings map[string]string) (string, error) {
	target, err := resolve(op.Target, bindings)
	if err != nil {
		return "", err
	}
	switch op.action {
	case actionCreate:
		id, err := s.client.Create(ctx, op.Kind, target, op.Properties)
		if err != nil {
			return "", err
		}
		bindings[op.Variable] = id
		return id, nil
	case actionUpdate:
		return target, s.client.Update(ctx, target, op.Properties)
	case actionDelete:
		return target, s.client.Delete(ctx, target)
	case actionReparent:
		parent, err := resolve(op.Parent, bindings)
		if err != nil {
			return "", err
		}
		return target, s.client.Reparent(ctx, target, parent, op.Index)
	}
	return "", types.NewValidationError("unsupported operation %v", op.Name)
}

func resolve(ref Ref, bindings map[string]string) (string, error) {
	if ref.Variable == "" {
		return ref.ID, nil
	}
	id, ok := bindings[ref.Variable]
	if !ok {
		return "", types.NewUnresolvedReferenceError("$%v is not bound", ref.Variable)
	}
	return id, nil
}

func (s *Service) record(err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.BatchOperations.WithLabelValues(engine, metrics.Result(err)).Inc()
}
