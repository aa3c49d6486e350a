package script

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/docbridge/model/tree"
	"github.com/viant/docbridge/model/types"
)

func TestParse(t *testing.T) {
	script := `
// header comment
card = FRAME(none, {name: "Card // not a comment", w: 320, fills: [{type: "SOLID", color: "#ffffff"}]})
# full line hash comment
title=TEXT($card, {characters: "Hi, there", fontSize: 18}) // trailing
shape = CREATE($card, {kind: "ellipse", name: "dot"});
UPDATE($title, {"name": "Title"})
REPARENT($shape, "1:2", 0)
DELETE(12:7)
free = create(none)
`
	ops, err := Parse(script, 0)
	require.NoError(t, err)
	require.Len(t, ops, 7)

	assert.Equal(t, 3, ops[0].Line)
	assert.Equal(t, "card", ops[0].Variable)
	assert.Equal(t, tree.KindFrame, ops[0].Kind)
	assert.True(t, ops[0].Target.IsNone())
	assert.Equal(t, "Card // not a comment", ops[0].Properties["name"])
	assert.EqualValues(t, 320, ops[0].Properties["w"])
	assert.Equal(t, []interface{}{map[string]interface{}{"type": "SOLID", "color": "#ffffff"}}, ops[0].Properties["fills"])

	assert.Equal(t, 5, ops[1].Line)
	assert.Equal(t, tree.KindText, ops[1].Kind)
	assert.Equal(t, Ref{Variable: "card"}, ops[1].Target)
	assert.Equal(t, "Hi, there", ops[1].Properties["characters"])

	assert.Equal(t, tree.KindEllipse, ops[2].Kind)
	assert.NotContains(t, ops[2].Properties, "kind")

	assert.Equal(t, "UPDATE", ops[3].Name)
	assert.Equal(t, "Title", ops[3].Properties["name"])

	assert.Equal(t, Ref{Variable: "shape"}, ops[4].Target)
	assert.Equal(t, Ref{ID: "1:2"}, ops[4].Parent)
	require.NotNil(t, ops[4].Index)
	assert.Equal(t, 0, *ops[4].Index)

	assert.Equal(t, Ref{ID: "12:7"}, ops[5].Target)
	assert.Equal(t, "DELETE(12:7)", ops[5].String())

	assert.Equal(t, tree.KindFrame, ops[6].Kind)
	assert.Nil(t, ops[6].Properties)
}

func TestParse_Errors(t *testing.T) {
	var testCases = []struct {
		name        string
		description string
		script      string
		line        int
	}{
		{name: "empty", script: "// nothing here\n", line: 0},
		{name: "unknown operation", script: "a = FRAME(none)\nb = POLYGON(none)", line: 2},
		{name: "unbalanced block", script: "a = FRAME(none, {name: \"x\"}", line: 1},
		{name: "missing parent", script: "\n\nf = FRAME()", line: 3},
		{name: "update without properties", script: "UPDATE($a)", line: 1},
		{name: "update none", script: "UPDATE(none, {name: \"x\"})", line: 1},
		{name: "delete with properties", script: "DELETE($a, {name: \"x\"})", line: 1},
		{name: "variable on delete", script: "x = DELETE($a)", line: 1},
		{name: "bad kind", script: "s = CREATE(none, {kind: \"STAR\"})", line: 1},
		{name: "bad index", script: "REPARENT($a, $b, first)", line: 1},
		{name: "negative index", script: "REPARENT($a, $b, -1)", line: 1},
		{name: "bad variable", script: "f = FRAME($1a)", line: 1},
		{name: "invalid properties", script: "f = FRAME(none, {name: })", line: 1},
		{name: "garbage", description: "statement must start with an identifier", script: "f = FRAME(none)\n42", line: 2},
		{name: "missing operation", script: "a = (none)", line: 1},
		{name: "unbound create", script: "a = FRAME(none)\nFRAME(none, {w: 10})", line: 2},
		{name: "unbound generic create", script: "CREATE(none, {kind: \"FRAME\"})", line: 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ops, err := Parse(tc.script, 0)
			require.Error(t, err, tc.description)
			assert.ErrorIs(t, err, types.ErrValidation)
			assert.Nil(t, ops)
			if tc.line > 0 {
				assert.Contains(t, err.Error(), fmt.Sprintf("line %d", tc.line))
			}
		})
	}
}

func TestParse_MaxOperations(t *testing.T) {
	script := strings.Repeat("f = FRAME(none)\n", 4)
	_, err := Parse(script, 3)
	assert.ErrorIs(t, err, types.ErrValidation)

	ops, err := Parse(script, 4)
	require.NoError(t, err)
	assert.Len(t, ops, 4)

	_, err = Parse(strings.Repeat("f = FRAME(none);", DefaultMaxOperations+1), 0)
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestNormalizeKeys(t *testing.T) {
	var testCases = []struct {
		input  string
		expect string
	}{
		{input: `{name: "a"}`, expect: `{"name": "a"}`},
		{input: `{ w: 1, h : 2 }`, expect: `{ "w": 1, "h" : 2 }`},
		{input: `{"name": "a, b: c"}`, expect: `{"name": "a, b: c"}`},
		{input: `{fill: {type: "SOLID"}, tags: [true, null]}`, expect: `{"fill": {"type": "SOLID"}, "tags": [true, null]}`},
		{input: `{name: "say \"x: y\""}`, expect: `{"name": "say \"x: y\""}`},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expect, normalizeKeys(tc.input))
		})
	}
}
