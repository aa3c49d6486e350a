package snapshot

import (
	"context"

	"github.com/viant/docbridge/model/tree"
	"github.com/viant/docbridge/model/types"
)

// Source exposes read access to a tree.
type Source interface {
	Node(id string) (kind tree.Kind, props tree.Properties, children []string, err error)
}

// Target exposes the primitives restore needs.
type Target interface {
	Kind(id string) (tree.Kind, error)
	Children(id string) ([]string, error)
	Remove(ctx context.Context, id string) error
	Apply(ctx context.Context, id string, patch *tree.Patch) error
	Create(ctx context.Context, kind tree.Kind, parentID string, patch *tree.Patch) (string, error)
}

// Unbounded captures the whole subtree.
const Unbounded = -1

// Serialize captures id and its descendants. A negative depth is unbounded;
// otherwise nodes at depth have their children omitted and are marked
// truncated.
func Serialize(source Source, id string, depth int) (*tree.SerializedNode, error) {
	kind, props, children, err := source.Node(id)
	if err != nil {
		return nil, err
	}
	ret := &tree.SerializedNode{ID: id, Kind: kind, Properties: props.Clone()}
	if depth == 0 {
		ret.Truncated = len(children) > 0
		return ret, nil
	}
	next := depth - 1
	if depth < 0 {
		next = Unbounded
	}
	for _, childID := range children {
		child, err := Serialize(source, childID, next)
		if err != nil {
			return nil, err
		}
		ret.Children = append(ret.Children, child)
	}
	return ret, nil
}

// Validate checks that a snapshot can be restored onto a node of kind.
func Validate(kind tree.Kind, snapshot *tree.SerializedNode) error {
	if snapshot == nil {
		return types.NewValidationError("snapshot is empty")
	}
	if snapshot.Kind != kind {
		return types.NewValidationError("snapshot kind %v does not match target kind %v", snapshot.Kind, kind)
	}
	return validateNode(snapshot)
}

func validateNode(node *tree.SerializedNode) error {
	if node.Truncated {
		return types.NewValidationError("snapshot of %v is truncated and cannot be restored", node.Kind)
	}
	if len(node.Children) > 0 && !node.Kind.IsContainer() {
		return types.NewValidationError("%v cannot hold children", node.Kind)
	}
	for _, child := range node.Children {
		if child == nil {
			return types.NewValidationError("snapshot has an empty child")
		}
		if _, ok := tree.ParseKind(string(child.Kind)); !ok {
			return types.NewValidationError("snapshot child kind %q is not creatable", child.Kind)
		}
		if err := validateNode(child); err != nil {
			return err
		}
	}
	return nil
}

// Restore replaces the subtree at id with snapshot: current children are
// deleted, the snapshot's own properties replace the target's, then every
// child is created anew and filled recursively. It returns the number of
// nodes created.
func Restore(ctx context.Context, target Target, id string, snapshot *tree.SerializedNode) (int, error) {
	kind, err := target.Kind(id)
	if err != nil {
		return 0, err
	}
	if err = Validate(kind, snapshot); err != nil {
		return 0, err
	}
	children, err := target.Children(id)
	if err != nil {
		return 0, err
	}
	for _, childID := range children {
		if err = target.Remove(ctx, childID); err != nil {
			return 0, err
		}
	}
	if err = target.Apply(ctx, id, tree.PatchOf(kind, snapshot.Properties)); err != nil {
		return 0, err
	}
	return restoreChildren(ctx, target, id, snapshot.Children)
}

func restoreChildren(ctx context.Context, target Target, parentID string, children []*tree.SerializedNode) (int, error) {
	created := 0
	for _, child := range children {
		childID, err := target.Create(ctx, child.Kind, parentID, tree.PatchOf(child.Kind, child.Properties))
		if err != nil {
			return created, err
		}
		created++
		count, err := restoreChildren(ctx, target, childID, child.Children)
		created += count
		if err != nil {
			return created, err
		}
	}
	return created, nil
}
