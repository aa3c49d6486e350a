package snapshot_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/docbridge/model/tree"
	"github.com/viant/docbridge/model/types"
	"github.com/viant/docbridge/service/host"
	"github.com/viant/docbridge/service/snapshot"
)

// buildTree creates every creatable kind across four levels under the page.
func buildTree(t *testing.T, e *host.Executor) string {
	ctx := context.Background()
	create := func(kind tree.Kind, parent string, props map[string]interface{}) string {
		id, err := e.Create(ctx, kind, parent, props)
		require.NoError(t, err)
		return id
	}
	frame := create(tree.KindFrame, "", map[string]interface{}{
		"name": "Card", "x": 10, "y": 20, "w": 320, "h": 200, "cornerRadius": 12,
		"layoutMode": "VERTICAL", "itemSpacing": 8, "padding": map[string]interface{}{"top": 16, "right": 16, "bottom": 16, "left": 16},
		"primaryAxisAlign": "CENTER",
	})
	group := create(tree.KindGroup, frame, map[string]interface{}{"name": "Body", "rotation": 15, "locked": true})
	create(tree.KindRectangle, group, map[string]interface{}{
		"name": "Cover", "opacity": 0.5,
		"fills":   []interface{}{map[string]interface{}{"type": "IMAGE", "imageBytes": []byte("cover"), "scaleMode": "FIT"}},
		"strokes": []interface{}{map[string]interface{}{"type": "SOLID", "color": "#111111", "opacity": 1}},
		"strokeWeight": 2,
	})
	create(tree.KindText, group, map[string]interface{}{
		"characters": "Title", "fontFamily": "Roboto", "fontStyle": "Bold", "fontSize": 18, "lineHeight": 24, "textAlign": "LEFT",
	})
	inner := create(tree.KindFrame, group, map[string]interface{}{"name": "Inner", "visible": false})
	create(tree.KindEllipse, inner, map[string]interface{}{"w": 5, "h": 5, "fill": "#00FF00"})
	create(tree.KindLine, frame, map[string]interface{}{"w": 300, "strokeWeight": 3})
	return frame
}

func TestRestore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	e := host.New()
	defer e.Reset(ctx)
	frame := buildTree(t, e)

	before, err := e.Serialize(ctx, frame, snapshot.Unbounded)
	require.NoError(t, err)
	assert.Equal(t, 7, before.Count())

	require.NoError(t, e.Update(ctx, frame, map[string]interface{}{"name": "Changed", "layoutMode": "HORIZONTAL"}))
	_, err = e.Create(ctx, tree.KindRectangle, frame, nil)
	require.NoError(t, err)
	_, err = e.Delete(ctx, before.Children[0].ID)
	require.NoError(t, err)

	created, err := e.ReplaceSubtree(ctx, frame, before)
	require.NoError(t, err)
	assert.Equal(t, 6, created)

	after, err := e.Serialize(ctx, frame, snapshot.Unbounded)
	require.NoError(t, err)
	assert.Equal(t, before.Anonymous(), after.Anonymous())
	assert.Equal(t, frame, after.ID)
	assert.NotEqual(t, before.Children[0].ID, after.Children[0].ID)
}

func TestRestore_RoundTripOverWire(t *testing.T) {
	ctx := context.Background()
	e := host.New()
	defer e.Reset(ctx)
	frame := buildTree(t, e)

	before, err := e.Serialize(ctx, e.RootID(), snapshot.Unbounded)
	require.NoError(t, err)
	data, err := json.Marshal(before)
	require.NoError(t, err)
	decoded := &tree.SerializedNode{}
	require.NoError(t, json.Unmarshal(data, decoded))

	_, err = e.Delete(ctx, frame)
	require.NoError(t, err)
	_, err = e.ReplaceSubtree(ctx, e.RootID(), decoded)
	require.NoError(t, err)

	after, err := e.Serialize(ctx, e.RootID(), snapshot.Unbounded)
	require.NoError(t, err)
	afterData, err := json.Marshal(after.Anonymous())
	require.NoError(t, err)
	beforeData, err := json.Marshal(before.Anonymous())
	require.NoError(t, err)
	assert.JSONEq(t, string(beforeData), string(afterData))
}

func TestSerialize_Depth(t *testing.T) {
	var testCases = []struct {
		name          string
		depth         int
		expectCount   int
		expectTrimmed bool
	}{
		{name: "node only", depth: 0, expectCount: 1, expectTrimmed: true},
		{name: "one level", depth: 1, expectCount: 3, expectTrimmed: false},
		{name: "unbounded", depth: snapshot.Unbounded, expectCount: 7},
	}
	ctx := context.Background()
	e := host.New()
	defer e.Reset(ctx)
	frame := buildTree(t, e)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			node, err := e.Serialize(ctx, frame, tc.depth)
			require.NoError(t, err)
			assert.Equal(t, tc.expectCount, node.Count())
			assert.Equal(t, tc.expectTrimmed, node.Truncated)
		})
	}
	node, err := e.Serialize(ctx, frame, 1)
	require.NoError(t, err)
	assert.True(t, node.Children[0].Truncated)
	assert.False(t, node.Children[1].Truncated)
}

func TestRestore_Invalid(t *testing.T) {
	ctx := context.Background()
	e := host.New()
	defer e.Reset(ctx)
	frame := buildTree(t, e)
	truncated, err := e.Serialize(ctx, frame, 0)
	require.NoError(t, err)

	var testCases = []struct {
		name      string
		target    string
		snapshot  *tree.SerializedNode
		expectErr error
	}{
		{name: "kind mismatch", target: e.RootID(), snapshot: &tree.SerializedNode{Kind: tree.KindFrame}, expectErr: types.ErrValidation},
		{name: "truncated", target: frame, snapshot: truncated, expectErr: types.ErrValidation},
		{name: "missing target", target: "n:missing", snapshot: truncated, expectErr: types.ErrNotFound},
		{name: "leaf with children", target: frame, snapshot: &tree.SerializedNode{Kind: tree.KindFrame, Children: []*tree.SerializedNode{
			{Kind: tree.KindLine, Children: []*tree.SerializedNode{{Kind: tree.KindText}}},
		}}, expectErr: types.ErrValidation},
		{name: "foreign image", target: frame, snapshot: &tree.SerializedNode{Kind: tree.KindFrame, Children: []*tree.SerializedNode{
			{Kind: tree.KindRectangle, Properties: tree.Properties{Fills: []tree.Paint{{Type: tree.PaintImage, ImageHash: "feed"}}}},
		}}, expectErr: types.ErrNotFound},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			before, err := e.Serialize(ctx, frame, snapshot.Unbounded)
			require.NoError(t, err)
			_, err = e.ReplaceSubtree(ctx, tc.target, tc.snapshot)
			assert.ErrorIs(t, err, tc.expectErr)
			after, err := e.Serialize(ctx, frame, snapshot.Unbounded)
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}
