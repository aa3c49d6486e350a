package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/docbridge/extension"
	"github.com/viant/docbridge/model/types"
	"github.com/viant/docbridge/policy"
	cpaction "github.com/viant/docbridge/service/action/checkpoint"
	"github.com/viant/docbridge/service/action/node"
	"github.com/viant/docbridge/service/checkpoint"
	"github.com/viant/docbridge/service/host"
)

type document struct {
	*host.Executor
}

func (d *document) Delete(ctx context.Context, id string) error {
	_, err := d.Executor.Delete(ctx, id)
	return err
}

// faultyCheckpoints fails Save or Restore with the configured error.
type faultyCheckpoints struct {
	Checkpoints
	saveErr    error
	restoreErr error
}

func (f *faultyCheckpoints) Save(ctx context.Context, rootID, label string) (*checkpoint.Checkpoint, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	return f.Checkpoints.Save(ctx, rootID, label)
}

func (f *faultyCheckpoints) Restore(ctx context.Context, label string) (*checkpoint.Checkpoint, error) {
	if f.restoreErr != nil {
		return nil, f.restoreErr
	}
	return f.Checkpoints.Restore(ctx, label)
}

func newFixture(opts ...Option) (*host.Executor, *Service) {
	return newFixtureWith(nil, opts...)
}

func newFixtureWith(fault *faultyCheckpoints, opts ...Option) (*host.Executor, *Service) {
	e := host.New()
	store := checkpoint.New(e)
	actions := extension.NewActions(node.New(&document{e}), cpaction.New(store))
	var checkpoints Checkpoints = store
	if fault != nil {
		fault.Checkpoints = store
		checkpoints = fault
	}
	return e, New(actions, checkpoints, opts...)
}

func failingSteps() []*Step {
	return []*Step{
		{ID: "s1", Operation: "node.createFrame", Args: map[string]interface{}{"properties": map[string]interface{}{"name": "root"}}},
		{ID: "s2", Operation: "node.createRectangle", Args: map[string]interface{}{"parentId": "$s1.nodeId"}},
		{ID: "s3", Operation: "node.update", Args: map[string]interface{}{"nodeId": "404:404", "properties": map[string]interface{}{"name": "x"}}},
	}
}

func pageChildren(t *testing.T, e *host.Executor) int {
	page, err := e.Serialize(context.Background(), "", 1)
	require.NoError(t, err)
	return len(page.Children)
}

func TestService_Rollback(t *testing.T) {
	ctx := context.Background()
	e, srv := newFixture()
	result, err := srv.Run(ctx, failingSteps())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.ErrorIs(t, err, types.ErrExecutionFailure)
	assert.Len(t, result.Completed, 2)
	assert.Equal(t, "s3", result.FailedStep)
	assert.Equal(t, "node.update", result.Operation)
	assert.True(t, result.Checkpointed)
	assert.True(t, result.RolledBack)
	assert.Empty(t, result.RollbackError)

	rootID := result.Bindings["s1"].(map[string]interface{})["nodeId"].(string)
	root, err := e.Serialize(ctx, rootID, -1)
	require.NoError(t, err)
	assert.Equal(t, "root", root.Properties.Name)
	assert.Empty(t, root.Children)
	assert.Equal(t, 1, pageChildren(t, e))
}

func TestService_CheckpointFailures(t *testing.T) {
	var testCases = []struct {
		name          string
		fault         *faultyCheckpoints
		steps         []*Step
		expectErr     bool
		checkpointed  bool
		checkpointErr string
		rollbackErr   string
		rootChildren  int
	}{
		{
			name:          "save fails, pipeline continues",
			fault:         &faultyCheckpoints{saveErr: errors.New("store unavailable")},
			steps:         failingSteps()[:2],
			checkpointErr: "store unavailable",
			rootChildren:  1,
		},
		{
			name:          "save fails, no rollback on later failure",
			fault:         &faultyCheckpoints{saveErr: errors.New("store unavailable")},
			steps:         failingSteps(),
			expectErr:     true,
			checkpointErr: "store unavailable",
			rootChildren:  1,
		},
		{
			name:         "restore fails",
			fault:        &faultyCheckpoints{restoreErr: errors.New("restore refused")},
			steps:        failingSteps(),
			expectErr:    true,
			checkpointed: true,
			rollbackErr:  "restore refused",
			rootChildren: 1,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			e, srv := newFixtureWith(tc.fault)
			result, err := srv.Run(ctx, tc.steps)
			if tc.expectErr {
				assert.ErrorIs(t, err, types.ErrNotFound)
				assert.Equal(t, "s3", result.FailedStep)
			} else {
				require.NoError(t, err)
				assert.Len(t, result.Completed, len(tc.steps))
			}
			assert.Equal(t, tc.checkpointed, result.Checkpointed)
			assert.Equal(t, tc.checkpointErr, result.CheckpointError)
			assert.Equal(t, tc.rollbackErr, result.RollbackError)
			assert.False(t, result.RolledBack)

			rootID := result.Bindings["s1"].(map[string]interface{})["nodeId"].(string)
			root, err := e.Serialize(ctx, rootID, -1)
			require.NoError(t, err)
			assert.Len(t, root.Children, tc.rootChildren)
		})
	}
}

func TestService_HostRejection(t *testing.T) {
	e, srv := newFixture()
	result, err := srv.Run(context.Background(), []*Step{
		{ID: "s1", Operation: "node.createFrame", Args: map[string]interface{}{"properties": map[string]interface{}{"name": "root"}}},
		{ID: "s2", Operation: "node.update", Args: map[string]interface{}{"nodeId": "$s1.nodeId", "properties": map[string]interface{}{"bogus": 1}}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrExecutionFailure)
	assert.NotErrorIs(t, err, types.ErrValidation)
	assert.Equal(t, "s2", result.FailedStep)
	assert.True(t, result.RolledBack)
	assert.Equal(t, 1, pageChildren(t, e))
}

func TestService_PolicyNarrowsDefault(t *testing.T) {
	var testCases = []struct {
		name      string
		policy    *policy.Policy
		operation string
		allowed   bool
	}{
		{name: "auto keeps checkpoint blocked", policy: &policy.Policy{Mode: policy.ModeAuto}, operation: "checkpoint.save"},
		{name: "allow list cannot widen", policy: &policy.Policy{AllowList: []string{"checkpoint.*", "node.*"}}, operation: "checkpoint.restore"},
		{name: "block list narrows", policy: &policy.Policy{BlockList: []string{"node.createFrame"}}, operation: "node.createFrame"},
		{name: "deny mode", policy: &policy.Policy{Mode: policy.ModeDeny}, operation: "node.createFrame"},
		{name: "permitted", policy: &policy.Policy{Mode: policy.ModeAuto}, operation: "node.createFrame", allowed: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e, srv := newFixture(WithPolicy(tc.policy))
			step := &Step{ID: "a", Operation: tc.operation, Args: map[string]interface{}{"label": "x"}}
			if tc.operation == "node.createFrame" {
				step.Args = nil
			}
			err := srv.Validate(context.Background(), []*Step{step})
			if tc.allowed {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, types.ErrValidation)
			assert.Equal(t, 0, pageChildren(t, e))
		})
	}
}

func TestService_FirstStepFails(t *testing.T) {
	e, srv := newFixture()
	result, err := srv.Run(context.Background(), []*Step{
		{ID: "s1", Operation: "node.delete", Args: map[string]interface{}{"nodeId": "404:404"}},
	})
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.False(t, result.Checkpointed)
	assert.False(t, result.RolledBack)
	assert.Empty(t, result.Completed)
	assert.Equal(t, 0, pageChildren(t, e))
}

func TestService_Run(t *testing.T) {
	ctx := context.Background()
	e, srv := newFixture()
	result, err := srv.Run(ctx, []*Step{
		{ID: "frame", Operation: "node.createFrame", Args: map[string]interface{}{"properties": map[string]interface{}{"name": "card"}}},
		{ID: "shape", Operation: "node.createEllipse", Args: map[string]interface{}{"parentId": "$frame.nodeId"}},
		{ID: "look", Operation: "node.inspect", Args: map[string]interface{}{"nodeId": "$frame.nodeId"}},
	})
	require.NoError(t, err)
	require.True(t, result.Success())
	assert.Len(t, result.Completed, 3)
	assert.Len(t, result.Summaries, 3)
	assert.Contains(t, result.Summaries[0], "frame: node.createFrame")

	frameID := result.Bindings["frame"].(map[string]interface{})["nodeId"]
	frame, err := e.Serialize(ctx, frameID.(string), -1)
	require.NoError(t, err)
	require.Len(t, frame.Children, 1)
	assert.Equal(t, result.Bindings["shape"].(map[string]interface{})["nodeId"], frame.Children[0].ID)
}

func TestService_Validate(t *testing.T) {
	var testCases = []struct {
		name        string
		description string
		steps       []*Step
	}{
		{name: "empty", description: "no steps", steps: nil},
		{name: "missing id", steps: []*Step{{Operation: "node.createFrame"}}},
		{name: "duplicate id", steps: []*Step{
			{ID: "a", Operation: "node.createFrame"},
			{ID: "a", Operation: "node.createFrame"},
		}},
		{name: "unknown operation", steps: []*Step{{ID: "a", Operation: "node.explode"}}},
		{name: "malformed operation", steps: []*Step{{ID: "a", Operation: "createFrame"}}},
		{name: "checkpoint blocked", steps: []*Step{{ID: "a", Operation: "checkpoint.save", Args: map[string]interface{}{"label": "x"}}}},
		{name: "checkpoint list blocked", steps: []*Step{{ID: "a", Operation: "checkpoint.list"}}},
		{name: "forward reference", steps: []*Step{
			{ID: "a", Operation: "node.createFrame", Args: map[string]interface{}{"parentId": "$b.nodeId"}},
			{ID: "b", Operation: "node.createFrame"},
		}},
		{name: "self reference", description: "a step cannot use its own result", steps: []*Step{
			{ID: "a", Operation: "node.createFrame"},
			{ID: "b", Operation: "node.update", Args: map[string]interface{}{"nodeId": "$b.nodeId"}},
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e, srv := newFixture()
			result, err := srv.Run(context.Background(), tc.steps)
			assert.ErrorIs(t, err, types.ErrValidation, tc.description)
			assert.Empty(t, result.Completed)
			assert.Equal(t, 0, pageChildren(t, e), "validation must not mutate")
		})
	}
}

func TestResolveVariables(t *testing.T) {
	bindings := map[string]interface{}{
		"step1": map[string]interface{}{
			"frameId": "1:2",
			"size":    map[string]interface{}{"w": 10.0},
		},
	}
	var testCases = []struct {
		name   string
		args   map[string]interface{}
		expect map[string]interface{}
		err    error
	}{
		{
			name:   "leaf",
			args:   map[string]interface{}{"parentId": "$step1.frameId"},
			expect: map[string]interface{}{"parentId": "1:2"},
		},
		{
			name:   "nested path",
			args:   map[string]interface{}{"properties": map[string]interface{}{"width": "$step1.size.w", "name": "card"}},
			expect: map[string]interface{}{"properties": map[string]interface{}{"width": 10.0, "name": "card"}},
		},
		{
			name:   "list",
			args:   map[string]interface{}{"ids": []interface{}{"$step1.frameId", "literal"}},
			expect: map[string]interface{}{"ids": []interface{}{"1:2", "literal"}},
		},
		{
			name:   "not a reference",
			args:   map[string]interface{}{"characters": "$ 5.00", "name": "$"},
			expect: map[string]interface{}{"characters": "$ 5.00", "name": "$"},
		},
		{
			name: "unknown step",
			args: map[string]interface{}{"parentId": "$step9.frameId"},
			err:  types.ErrUnresolvedReference,
		},
		{
			name: "missing field",
			args: map[string]interface{}{"parentId": "$step1.missing.field"},
			err:  types.ErrUnresolvedReference,
		},
		{
			name: "path through scalar",
			args: map[string]interface{}{"parentId": "$step1.frameId.x"},
			err:  types.ErrUnresolvedReference,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := ResolveVariables(tc.args, bindings)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				assert.Nil(t, actual)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expect, actual)
		})
	}
}

func TestLoad(t *testing.T) {
	var testCases = []struct {
		name string
		data string
	}{
		{name: "document", data: "steps:\n  - id: a\n    operation: node.createFrame\n    args:\n      properties:\n        name: x\n"},
		{name: "list", data: "- id: a\n  operation: node.createFrame\n  args:\n    properties:\n      name: x\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			steps, err := Load([]byte(tc.data))
			require.NoError(t, err)
			require.Len(t, steps, 1)
			assert.Equal(t, "node.createFrame", steps[0].Operation)
			assert.Equal(t, map[string]interface{}{"name": "x"}, steps[0].Args["properties"])
		})
	}
}
