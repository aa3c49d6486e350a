package command

import "github.com/viant/docbridge/model/tree"

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

type CreateInput struct {
	Kind       tree.Kind              `json:"kind"`
	ParentID   string                 `json:"parentId,omitempty"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

type CreateOutput struct {
	NodeID string `json:"nodeId"`
}

type UpdateInput struct {
	NodeID     string                 `json:"nodeId"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

type DeleteInput struct {
	NodeID string `json:"nodeId"`
}

// ReparentInput moves NodeID under ParentID; a nil Index appends.
type ReparentInput struct {
	NodeID   string `json:"nodeId"`
	ParentID string `json:"parentId,omitempty"`
	Index    *int   `json:"index,omitempty"`
}

type ExportInput struct {
	NodeID string `json:"nodeId"`
	Format string `json:"format,omitempty"`
}

type ExportOutput struct {
	Format string `json:"format"`
	Data   []byte `json:"data"`
}

// SerializeInput requests a snapshot; a negative Depth is unbounded.
type SerializeInput struct {
	NodeID string `json:"nodeId"`
	Depth  int    `json:"depth"`
}

type ReplaceSubtreeInput struct {
	NodeID   string               `json:"nodeId"`
	Snapshot *tree.SerializedNode `json:"snapshot"`
}

// ReplaceSubtreeOutput reports the node count rebuilt under NodeID.
type ReplaceSubtreeOutput struct {
	NodeID  string `json:"nodeId"`
	Created int    `json:"created"`
}

// PingOutput reports the host root.
type PingOutput struct {
	RootID  string `json:"rootId"`
	Session string `json:"session"`
}
