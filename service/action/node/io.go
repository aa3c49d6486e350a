package node

import "github.com/viant/docbridge/model/tree"

type CreateInput struct {
	ParentID   string                 `json:"parentId,omitempty"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

type CreateOutput struct {
	NodeID string    `json:"nodeId"`
	Kind   tree.Kind `json:"kind"`
}

type UpdateInput struct {
	NodeID     string                 `json:"nodeId"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

type UpdateOutput struct {
	NodeID string `json:"nodeId"`
}

type DeleteInput struct {
	NodeID string `json:"nodeId"`
}

type DeleteOutput struct {
	NodeID  string `json:"nodeId"`
	Deleted bool   `json:"deleted"`
}

type ReparentInput struct {
	NodeID   string `json:"nodeId"`
	ParentID string `json:"parentId,omitempty"`
	Index    *int   `json:"index,omitempty"`
}

type ReparentOutput struct {
	NodeID   string `json:"nodeId"`
	ParentID string `json:"parentId"`
}

// InspectInput reads a subtree; a nil Depth is unbounded.
type InspectInput struct {
	NodeID string `json:"nodeId"`
	Depth  *int   `json:"depth,omitempty"`
}

type InspectOutput struct {
	NodeID string               `json:"nodeId"`
	Node   *tree.SerializedNode `json:"node"`
}
