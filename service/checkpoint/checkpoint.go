package checkpoint

import (
	"context"
	"time"

	"github.com/viant/docbridge/model/tree"
)

// Checkpoint is a labeled snapshot of the subtree rooted at RootID.
type Checkpoint struct {
	Label     string               `json:"label" yaml:"label"`
	RootID    string               `json:"rootId" yaml:"rootId"`
	Snapshot  *tree.SerializedNode `json:"snapshot" yaml:"snapshot"`
	CreatedAt time.Time            `json:"createdAt" yaml:"createdAt"`
}

// Tree is the document access a store needs.
type Tree interface {
	Serialize(ctx context.Context, id string, depth int) (*tree.SerializedNode, error)
	ReplaceSubtree(ctx context.Context, id string, snapshot *tree.SerializedNode) (int, error)
}
