package host

import (
	"github.com/viant/docbridge/internal/idgen"
	"github.com/viant/docbridge/model/tree"
	"github.com/viant/docbridge/model/types"
)

// Node is an arena entry. Nodes only reference their children.
type Node struct {
	ID       string
	Kind     tree.Kind
	Props    tree.Properties
	Children []string
}

// Arena holds nodes addressed by stable ids.
type Arena struct {
	rootID string
	nodes  map[string]*Node
}

// NewArena creates an arena holding a single page root.
func NewArena(pageName string) *Arena {
	root := &Node{ID: idgen.NewNodeID(), Kind: tree.KindPage, Props: tree.DefaultProperties(tree.KindPage)}
	root.Props.Name = pageName
	return &Arena{rootID: root.ID, nodes: map[string]*Node{root.ID: root}}
}

func (a *Arena) RootID() string {
	return a.rootID
}

func (a *Arena) Len() int {
	return len(a.nodes)
}

// Get returns a node or NotFound.
func (a *Arena) Get(id string) (*Node, error) {
	node, ok := a.nodes[id]
	if !ok {
		return nil, types.NewNotFoundError("node %v", id)
	}
	return node, nil
}

// ParentOf scans the arena for the node holding id.
func (a *Arena) ParentOf(id string) (*Node, int) {
	for _, node := range a.nodes {
		for i, child := range node.Children {
			if child == id {
				return node, i
			}
		}
	}
	return nil, -1
}

// Contains returns true when id is ancestor or the node itself.
func (a *Arena) Contains(ancestorID, id string) bool {
	if ancestorID == id {
		return true
	}
	node, ok := a.nodes[ancestorID]
	if !ok {
		return false
	}
	for _, child := range node.Children {
		if a.Contains(child, id) {
			return true
		}
	}
	return false
}

// Insert adds node under parent at index; index < 0 or past the end appends.
func (a *Arena) Insert(node *Node, parent *Node, index int) {
	a.nodes[node.ID] = node
	a.attach(node.ID, parent, index)
}

func (a *Arena) attach(id string, parent *Node, index int) {
	if index < 0 || index >= len(parent.Children) {
		parent.Children = append(parent.Children, id)
		return
	}
	parent.Children = append(parent.Children, "")
	copy(parent.Children[index+1:], parent.Children[index:])
	parent.Children[index] = id
}

func (a *Arena) detach(id string) {
	parent, i := a.ParentOf(id)
	if parent == nil {
		return
	}
	parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
}

// Move detaches id and attaches it under parent at index.
func (a *Arena) Move(id string, parent *Node, index int) {
	a.detach(id)
	a.attach(id, parent, index)
}

// Remove deletes the node and all its descendants, returning the count.
func (a *Arena) Remove(id string) int {
	a.detach(id)
	return a.drop(id)
}

func (a *Arena) drop(id string) int {
	node, ok := a.nodes[id]
	if !ok {
		return 0
	}
	count := 1
	for _, child := range node.Children {
		count += a.drop(child)
	}
	delete(a.nodes, id)
	return count
}
