package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/viant/docbridge/extension"
	"github.com/viant/docbridge/internal/idgen"
	"github.com/viant/docbridge/metrics"
	"github.com/viant/docbridge/model/types"
	"github.com/viant/docbridge/policy"
	"github.com/viant/docbridge/progress"
	"github.com/viant/docbridge/service/checkpoint"
	"github.com/viant/docbridge/service/executor"
	"github.com/viant/docbridge/tracing"
)

const engine = "pipeline"

// Checkpoints is the registry subset used for the automatic checkpoint.
type Checkpoints interface {
	Save(ctx context.Context, rootID, label string) (*checkpoint.Checkpoint, error)
	Restore(ctx context.Context, label string) (*checkpoint.Checkpoint, error)
}

// Service executes pipelines against registered operations.
type Service struct {
	actions     *extension.Actions
	checkpoints Checkpoints
	executor    *executor.Service
	policy      *policy.Policy
	metrics     *metrics.Metrics
}

// DefaultPolicy allows the deterministic operations registered in actions and
// blocks checkpoint operations.
func DefaultPolicy(actions *extension.Actions) *policy.Policy {
	return &policy.Policy{
		Mode:      policy.ModeAuto,
		AllowList: actions.Operations(true),
		BlockList: []string{"checkpoint.*"},
	}
}

// New creates a pipeline service. The DefaultPolicy of the operations
// registered at validation time always applies; WithPolicy narrows it.
func New(actions *extension.Actions, checkpoints Checkpoints, opts ...Option) *Service {
	ret := &Service{
		actions:     actions,
		checkpoints: checkpoints,
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.executor == nil {
		ret.executor = executor.New(actions)
	}
	return ret
}

// Validate checks steps without executing anything.
func (s *Service) Validate(ctx context.Context, steps []*Step) error {
	if len(steps) == 0 {
		return types.NewValidationError("pipeline has no steps")
	}
	policies := []*policy.Policy{DefaultPolicy(s.actions), s.policy, policy.FromContext(ctx)}
	seen := map[string]bool{}
	for i, step := range steps {
		if step == nil || step.ID == "" {
			return types.NewValidationError("step %d: id is required", i+1)
		}
		if seen[step.ID] {
			return types.NewValidationError("step %d: duplicate id %q", i+1, step.ID)
		}
		op, err := s.actions.Resolve(step.Operation)
		if err != nil {
			return types.NewValidationError("step %q: %v", step.ID, err)
		}
		if !isAllowed(policies, op.Name) {
			return types.NewValidationError("step %q: operation %v is not permitted in pipelines", step.ID, op.Name)
		}
		var refErr error
		references(step.Args, func(stepID, expr string) {
			if refErr == nil && !seen[stepID] {
				refErr = types.NewValidationError("step %q: %v does not reference an earlier step", step.ID, expr)
			}
		})
		if refErr != nil {
			return refErr
		}
		seen[step.ID] = true
	}
	return nil
}

// Run validates and executes steps in order, stopping at the first failure.
// The returned error is the validation or step failure; the result is always
// non-nil and describes what was applied.
func (s *Service) Run(ctx context.Context, steps []*Step) (*Result, error) {
	ret := &Result{Bindings: map[string]interface{}{}}
	if err := s.Validate(ctx, steps); err != nil {
		ret.Err, ret.Error = err, err.Error()
		return ret, err
	}
	ctx, span := tracing.StartSpan(ctx, "pipeline.run", tracing.KindInternal)
	span.WithAttributes(map[string]string{"pipeline.steps": fmt.Sprint(len(steps))})
	tracker, ok := progress.FromContext(ctx)
	if !ok {
		ctx, tracker = progress.WithNewTracker(ctx, idgen.New(), engine, nil)
	}
	tracker.Update(progress.Delta{Total: len(steps)})

	checkpointed := false
	for i, step := range steps {
		output, op, err := s.runStep(ctx, step, ret.Bindings)
		s.record(err)
		if err != nil {
			err = types.AsExecutionFailure(err)
			tracker.Update(progress.Delta{Failed: 1, Skipped: len(steps) - i - 1})
			ret.fail(step, op, err)
			if checkpointed {
				s.rollback(ctx, ret)
			}
			tracing.EndSpan(span, err)
			return ret, err
		}
		tracker.Update(progress.Delta{Completed: 1})
		ret.Bindings[step.ID] = output
		completed := &StepResult{ID: step.ID, Operation: op, Output: output, Summary: summarize(step, op, output)}
		ret.Completed = append(ret.Completed, completed)
		ret.Summaries = append(ret.Summaries, completed.Summary)
		if i == 0 {
			checkpointed = s.autoCheckpoint(ctx, output, ret)
		}
	}
	tracing.EndSpan(span, nil)
	return ret, nil
}

func isAllowed(policies []*policy.Policy, operation string) bool {
	for _, p := range policies {
		if !p.IsAllowed(operation) {
			return false
		}
	}
	return true
}

func (s *Service) runStep(ctx context.Context, step *Step, bindings map[string]interface{}) (map[string]interface{}, string, error) {
	op, err := s.actions.Resolve(step.Operation)
	if err != nil {
		return nil, step.Operation, err
	}
	progress.UpdateCtx(ctx, progress.Delta{Running: 1})
	defer progress.UpdateCtx(ctx, progress.Delta{Running: -1})
	args, err := ResolveVariables(step.Args, bindings)
	if err != nil {
		return nil, op.Name, err
	}
	output, err := s.executor.Execute(ctx, op.Name, args)
	if err != nil {
		return nil, op.Name, err
	}
	result, err := asMap(output)
	return result, op.Name, err
}

// autoCheckpoint saves the first step's root; failures are recorded only.
func (s *Service) autoCheckpoint(ctx context.Context, output map[string]interface{}, ret *Result) bool {
	rootID, _ := output["rootId"].(string)
	if rootID == "" {
		rootID, _ = output["nodeId"].(string)
	}
	if rootID == "" || s.checkpoints == nil {
		return false
	}
	if _, err := s.checkpoints.Save(ctx, rootID, AutoCheckpoint); err != nil {
		ret.CheckpointError = err.Error()
		return false
	}
	ret.Checkpointed = true
	return true
}

func (s *Service) rollback(ctx context.Context, ret *Result) {
	_, err := s.checkpoints.Restore(ctx, AutoCheckpoint)
	if s.metrics != nil {
		s.metrics.Rollbacks.WithLabelValues(engine, metrics.Result(err)).Inc()
	}
	if err != nil {
		ret.RollbackError = err.Error()
		return
	}
	ret.RolledBack = true
}

func (s *Service) record(err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.BatchOperations.WithLabelValues(engine, metrics.Result(err)).Inc()
}

func asMap(output interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(output)
	if err != nil {
		return nil, types.NewExecutionError("failed to encode result: %v", err)
	}
	ret := map[string]interface{}{}
	if err = json.Unmarshal(data, &ret); err != nil {
		return nil, types.NewExecutionError("failed to decode result: %v", err)
	}
	return ret, nil
}

func summarize(step *Step, operation string, output map[string]interface{}) string {
	var fields []string
	for k, v := range output {
		switch v.(type) {
		case string, float64, bool:
			fields = append(fields, fmt.Sprintf("%v=%v", k, v))
		}
	}
	sort.Strings(fields)
	if len(fields) == 0 {
		return fmt.Sprintf("%v: %v done", step.ID, operation)
	}
	return fmt.Sprintf("%v: %v %v", step.ID, operation, strings.Join(fields, " "))
}
