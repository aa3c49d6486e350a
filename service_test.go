package docbridge_test

import (
	"context"
	"embed"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "github.com/viant/afs/embed"

	"github.com/viant/docbridge"
	"github.com/viant/docbridge/model/tree"
	"github.com/viant/docbridge/model/types"
	"github.com/viant/docbridge/policy"
	"github.com/viant/docbridge/service/meta"
	"github.com/viant/docbridge/service/pipeline"
)

//go:embed testdata/*
var embedFS embed.FS

func load(t *testing.T, name string) []byte {
	data, err := meta.New(nil, "embed:///testdata", &embedFS).Download(context.Background(), name)
	require.NoError(t, err)
	return data
}

func newRuntime(t *testing.T, options ...docbridge.Option) *docbridge.Runtime {
	ctx := context.Background()
	rt := docbridge.New(options...).Runtime()
	require.NoError(t, rt.Start(ctx))
	t.Cleanup(func() { _ = rt.Shutdown(ctx) })
	return rt
}

func TestRuntime_RunScript(t *testing.T) {
	ctx := context.Background()
	rt := newRuntime(t)
	result, err := rt.RunScript(ctx, string(load(t, "card.dbs")))
	require.NoError(t, err)
	assert.Equal(t, 5, result.Succeeded())

	card, err := rt.Client().Serialize(ctx, result.Bindings["card"], -1)
	require.NoError(t, err)
	assert.Equal(t, "Card", card.Properties.Name)
	require.Len(t, card.Children, 2)
	assert.Equal(t, tree.KindEllipse, card.Children[0].Kind)
	assert.Equal(t, "Title", card.Children[1].Properties.Name)

	assert.Equal(t, 5.0, testutil.ToFloat64(rt.Metrics().BatchOperations.WithLabelValues("script", "ok")))
}

func TestRuntime_RunScriptWithCheckpoint(t *testing.T) {
	ctx := context.Background()
	rt := newRuntime(t)
	frameID, err := rt.Client().Create(ctx, tree.KindFrame, "", map[string]interface{}{"name": "root"})
	require.NoError(t, err)

	result, saved, err := rt.RunScriptWithCheckpoint(ctx, frameID, "before", `kept = RECTANGLE("`+frameID+`", {name: "kept"})
UPDATE("404:404", {name: "x"})`)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.ErrorIs(t, err, types.ErrExecutionFailure)
	require.NotNil(t, saved)
	assert.Equal(t, 1, result.Succeeded())

	frame, err := rt.Client().Serialize(ctx, frameID, -1)
	require.NoError(t, err)
	assert.Len(t, frame.Children, 1, "scripts keep applied effects")

	_, err = rt.RestoreCheckpoint(ctx, "before")
	require.NoError(t, err)
	frame, err = rt.Client().Serialize(ctx, frameID, -1)
	require.NoError(t, err)
	assert.Empty(t, frame.Children)
}

func TestRuntime_RunPipeline(t *testing.T) {
	ctx := context.Background()
	rt := newRuntime(t)
	steps, err := pipeline.Load(load(t, "card.yaml"))
	require.NoError(t, err)

	result, err := rt.RunPipeline(ctx, steps)
	require.NoError(t, err)
	assert.Len(t, result.Completed, 3)
	assert.True(t, result.Checkpointed)

	cardID := result.Bindings["card"].(map[string]interface{})["nodeId"].(string)
	card, err := rt.Client().Serialize(ctx, cardID, -1)
	require.NoError(t, err)
	require.Len(t, card.Children, 1)
	assert.Equal(t, "Title", card.Children[0].Properties.Name)

	labels := []string{}
	checkpoints, err := rt.Checkpoints(ctx)
	require.NoError(t, err)
	for _, c := range checkpoints {
		labels = append(labels, c.Label)
	}
	assert.Equal(t, []string{pipeline.AutoCheckpoint}, labels)
}

func TestRuntime_EndSession(t *testing.T) {
	ctx := context.Background()
	rt := newRuntime(t)
	ping, err := rt.Client().Ping(ctx)
	require.NoError(t, err)
	assert.Equal(t, rt.Session(), ping.Session)

	_, err = rt.Client().Create(ctx, tree.KindFrame, "", nil)
	require.NoError(t, err)
	_, err = rt.SaveCheckpoint(ctx, ping.RootID, "page")
	require.NoError(t, err)

	require.NoError(t, rt.EndSession(ctx))
	checkpoints, err := rt.Checkpoints(ctx)
	require.NoError(t, err)
	assert.Empty(t, checkpoints)
	_, err = rt.RestoreCheckpoint(ctx, "page")
	assert.ErrorIs(t, err, types.ErrNotFound)

	page, err := rt.Client().Serialize(ctx, "", -1)
	require.NoError(t, err)
	assert.Empty(t, page.Children)
}

func TestRuntime_Shutdown(t *testing.T) {
	ctx := context.Background()
	rt := docbridge.New().Runtime()
	require.NoError(t, rt.Start(ctx))
	require.NoError(t, rt.Shutdown(ctx))
	_, err := rt.Client().Ping(ctx)
	assert.ErrorIs(t, err, types.ErrConnectionClosed)
}

func TestLoadConfig(t *testing.T) {
	var testCases = []struct {
		name        string
		description string
		data        string
		expectErr   bool
		check       func(t *testing.T, c *docbridge.Config)
	}{
		{
			name: "defaults",
			data: "",
			check: func(t *testing.T, c *docbridge.Config) {
				assert.Equal(t, 30000, c.Channel.TimeoutMs)
				assert.Equal(t, 50, c.Script.MaxOperations)
			},
		},
		{
			name: "overrides",
			data: "channel:\n  timeoutMs: 500\nscript:\n  maxOperations: 5\npipeline:\n  policy:\n    block: [node.delete]\n",
			check: func(t *testing.T, c *docbridge.Config) {
				assert.Equal(t, 500, c.Channel.TimeoutMs)
				assert.Equal(t, 5, c.Script.MaxOperations)
				assert.Equal(t, []string{"node.delete"}, c.Pipeline.Policy.BlockList)
			},
		},
		{name: "invalid timeout", data: "channel:\n  timeoutMs: -1\n", expectErr: true},
		{name: "invalid mode", data: "pipeline:\n  policy:\n    mode: ask\n", expectErr: true},
		{name: "malformed", description: "not yaml", data: "channel: [", expectErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config, err := docbridge.LoadConfig([]byte(tc.data))
			if tc.expectErr {
				assert.Error(t, err, tc.description)
				return
			}
			require.NoError(t, err)
			tc.check(t, config)
		})
	}
}

func TestRuntime_PipelinePolicy(t *testing.T) {
	ctx := context.Background()
	config := docbridge.DefaultConfig()
	config.Pipeline.Policy = nil
	rt := newRuntime(t, docbridge.WithConfig(config))
	_, err := rt.RunPipeline(ctx, []*pipeline.Step{{ID: "a", Operation: "checkpoint.save", Args: map[string]interface{}{"label": "x"}}})
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestRuntime_ConfiguredPipelinePolicy(t *testing.T) {
	ctx := context.Background()
	config := docbridge.DefaultConfig()
	config.Pipeline.Policy = &policy.Config{Mode: policy.ModeAuto}
	rt := newRuntime(t, docbridge.WithConfig(config))

	result, err := rt.RunPipeline(ctx, []*pipeline.Step{{ID: "a", Operation: "checkpoint.save", Args: map[string]interface{}{"label": "x"}}})
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.Empty(t, result.Completed)
	labels, err := rt.Checkpoints(ctx)
	require.NoError(t, err)
	assert.Empty(t, labels)

	config.Pipeline.Policy = &policy.Config{BlockList: []string{"node.createFrame"}}
	rt = newRuntime(t, docbridge.WithConfig(config))
	_, err = rt.RunPipeline(ctx, []*pipeline.Step{{ID: "a", Operation: "node.createFrame"}})
	assert.ErrorIs(t, err, types.ErrValidation)
}
