package tree

// SerializedNode is a portable snapshot of a node and its descendants.
// ID is informational only: restore never reuses it.
type SerializedNode struct {
	ID         string            `json:"id,omitempty" yaml:"id,omitempty"`
	Kind       Kind              `json:"kind" yaml:"kind"`
	Properties Properties        `json:"properties" yaml:"properties"`
	Children   []*SerializedNode `json:"children,omitempty" yaml:"children,omitempty"`
	// Truncated is set when depth bounding omitted the node's children.
	Truncated bool `json:"truncated,omitempty" yaml:"truncated,omitempty"`
}

// Count returns the number of nodes in the snapshot.
func (n *SerializedNode) Count() int {
	if n == nil {
		return 0
	}
	ret := 1
	for _, child := range n.Children {
		ret += child.Count()
	}
	return ret
}

// ImageHashes returns every image hash referenced by the snapshot.
func (n *SerializedNode) ImageHashes() []string {
	if n == nil {
		return nil
	}
	var ret []string
	for _, paints := range [][]Paint{n.Properties.Fills, n.Properties.Strokes} {
		for _, paint := range paints {
			if paint.ImageHash != "" {
				ret = append(ret, paint.ImageHash)
			}
		}
	}
	for _, child := range n.Children {
		ret = append(ret, child.ImageHashes()...)
	}
	return ret
}

// Anonymous returns a copy without node ids, used to compare trees by content.
func (n *SerializedNode) Anonymous() *SerializedNode {
	if n == nil {
		return nil
	}
	ret := &SerializedNode{Kind: n.Kind, Properties: n.Properties.Clone(), Truncated: n.Truncated}
	for _, child := range n.Children {
		ret.Children = append(ret.Children, child.Anonymous())
	}
	return ret
}
