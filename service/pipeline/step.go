package pipeline

import (
	"gopkg.in/yaml.v3"

	"github.com/viant/docbridge/model/types"
)

// AutoCheckpoint is the reserved label of the checkpoint taken after the
// first step.
const AutoCheckpoint = "__pipeline_auto__"

// Step is one pipeline entry; Args leaf strings may reference earlier results
// as $stepId.field.path.
type Step struct {
	ID        string                 `json:"id" yaml:"id"`
	Operation string                 `json:"operation" yaml:"operation"`
	Args      map[string]interface{} `json:"args,omitempty" yaml:"args,omitempty"`
}

// Pipeline is the file form of a step list.
type Pipeline struct {
	Steps []*Step `json:"steps" yaml:"steps"`
}

// StepResult records one completed step.
type StepResult struct {
	ID        string                 `json:"id"`
	Operation string                 `json:"operation"`
	Output    map[string]interface{} `json:"output,omitempty"`
	Summary   string                 `json:"summary"`
}

// Result reports a pipeline run. Err is set when a step failed; in that case
// FailedStep and Operation identify it and RolledBack tells whether the
// automatic checkpoint was restored.
type Result struct {
	Completed       []*StepResult          `json:"completed"`
	Summaries       []string               `json:"summaries,omitempty"`
	Bindings        map[string]interface{} `json:"bindings,omitempty"`
	Checkpointed    bool                   `json:"checkpointed"`
	CheckpointError string                 `json:"checkpointError,omitempty"`
	FailedStep      string                 `json:"failedStep,omitempty"`
	Operation       string                 `json:"operation,omitempty"`
	Error           string                 `json:"error,omitempty"`
	RolledBack      bool                   `json:"rolledBack"`
	RollbackError   string                 `json:"rollbackError,omitempty"`
	Err             error                  `json:"-"`
}

// Success reports whether every step completed.
func (r *Result) Success() bool {
	return r.Err == nil
}

func (r *Result) fail(step *Step, operation string, err error) {
	r.FailedStep = step.ID
	r.Operation = operation
	r.Err = err
	r.Error = err.Error()
}

// Load decodes a YAML (or JSON) pipeline document; both a bare step list and
// a {steps: [...]} document are accepted.
func Load(data []byte) ([]*Step, error) {
	var steps []*Step
	if err := yaml.Unmarshal(data, &steps); err == nil {
		return steps, nil
	}
	pipeline := &Pipeline{}
	if err := yaml.Unmarshal(data, pipeline); err != nil {
		return nil, types.NewValidationError("invalid pipeline: %v", err)
	}
	return pipeline.Steps, nil
}
