package host

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/docbridge/internal/idgen"
	"github.com/viant/docbridge/model/command"
	"github.com/viant/docbridge/model/tree"
	"github.com/viant/docbridge/model/types"
	"github.com/viant/docbridge/service/snapshot"
	"gopkg.in/yaml.v3"
)

// Executor owns the document. Every primitive runs under one lock, so
// commands are serviced one at a time; a primitive waiting on resource
// preparation holds the next command back.
type Executor struct {
	mu         sync.Mutex
	session    string
	pageName   string
	arena      *Arena
	fs         afs.Service
	fontLoader FontLoader
	fonts      *FontCache
	images     *ImageStore
	appliers   map[tree.Kind]Applier
}

// New creates an executor holding an empty page.
func New(opts ...Option) *Executor {
	ret := &Executor{pageName: "Page 1"}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.session == "" {
		ret.session = idgen.New()
	}
	if ret.fs == nil {
		ret.fs = afs.New()
	}
	if ret.fontLoader == nil {
		ret.fontLoader = &StaticFontLoader{}
	}
	ret.fonts = NewFontCache(ret.fontLoader)
	ret.images = NewImageStore(ret.fs, ret.session)
	ret.appliers = newAppliers(ret.images, ret.fonts)
	ret.arena = NewArena(ret.pageName)
	return ret
}

func (e *Executor) Session() string {
	return e.session
}

func (e *Executor) RootID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.arena.RootID()
}

// Images returns the session image store.
func (e *Executor) Images() *ImageStore {
	return e.images
}

// Reset ends the session: the tree, prepared fonts and stored images are
// dropped. Snapshots taken before Reset can no longer reference images.
func (e *Executor) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.arena = NewArena(e.pageName)
	e.fonts.Reset()
	return e.images.Reset(ctx)
}

// Create adds a node of kind under parentID; an empty parent or "none" means
// the page root. Properties are validated against the kind schema.
func (e *Executor) Create(ctx context.Context, kind tree.Kind, parentID string, props map[string]interface{}) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	creatable, ok := tree.ParseKind(string(kind))
	if !ok {
		return "", types.NewValidationError("cannot create node of kind %q", kind)
	}
	patch, err := tree.DecodePatch(creatable, props)
	if err != nil {
		return "", err
	}
	return e.create(ctx, creatable, parentID, patch)
}

func (e *Executor) parent(parentID string) (*Node, error) {
	if parentID == "" || strings.EqualFold(parentID, "none") {
		parentID = e.arena.RootID()
	}
	parent, err := e.arena.Get(parentID)
	if err != nil {
		return nil, err
	}
	if !parent.Kind.IsContainer() {
		return nil, types.NewValidationError("%v %v cannot hold children", parent.Kind, parent.ID)
	}
	return parent, nil
}

func (e *Executor) create(ctx context.Context, kind tree.Kind, parentID string, patch *tree.Patch) (string, error) {
	parent, err := e.parent(parentID)
	if err != nil {
		return "", err
	}
	node := &Node{ID: idgen.NewNodeID(), Kind: kind, Props: tree.DefaultProperties(kind)}
	if err = e.apply(ctx, node, patch); err != nil {
		return "", err
	}
	e.arena.Insert(node, parent, -1)
	return node.ID, nil
}

// apply runs both phases on a scratch copy so a failure leaves node intact.
func (e *Executor) apply(ctx context.Context, node *Node, patch *tree.Patch) error {
	applier := e.appliers[node.Kind]
	if err := applier.Prepare(ctx, node, patch); err != nil {
		return err
	}
	scratch := *node
	scratch.Props = node.Props.Clone()
	if err := applier.Apply(&scratch, patch); err != nil {
		return err
	}
	node.Props = scratch.Props
	return nil
}

// Update applies props to an existing node.
func (e *Executor) Update(ctx context.Context, id string, props map[string]interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	node, err := e.arena.Get(id)
	if err != nil {
		return err
	}
	patch, err := tree.DecodePatch(node.Kind, props)
	if err != nil {
		return err
	}
	return e.apply(ctx, node, patch)
}

// Delete removes a node and its descendants.
func (e *Executor) Delete(_ context.Context, id string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	node, err := e.arena.Get(id)
	if err != nil {
		return 0, err
	}
	if node.Kind == tree.KindPage {
		return 0, types.NewValidationError("page %v cannot be deleted", id)
	}
	return e.arena.Remove(id), nil
}

// Reparent moves id under parentID at index (nil appends).
func (e *Executor) Reparent(_ context.Context, id, parentID string, index *int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	node, err := e.arena.Get(id)
	if err != nil {
		return err
	}
	if node.Kind == tree.KindPage {
		return types.NewValidationError("page %v cannot be moved", id)
	}
	parent, err := e.parent(parentID)
	if err != nil {
		return err
	}
	if e.arena.Contains(id, parent.ID) {
		return types.NewValidationError("cannot move %v under its own subtree %v", id, parent.ID)
	}
	position := -1
	if index != nil {
		if *index < 0 {
			return types.NewValidationError("reparent index %v must be >= 0", *index)
		}
		position = *index
	}
	e.arena.Move(id, parent, position)
	return nil
}

// Serialize captures id; a negative depth is unbounded.
func (e *Executor) Serialize(_ context.Context, id string, depth int) (*tree.SerializedNode, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if id == "" {
		id = e.arena.RootID()
	}
	return snapshot.Serialize(e, id, depth)
}

// Export renders the full subtree of id as json or yaml.
func (e *Executor) Export(ctx context.Context, id, format string) ([]byte, error) {
	node, err := e.Serialize(ctx, id, snapshot.Unbounded)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(format) {
	case "", command.FormatJSON:
		return json.MarshalIndent(node, "", "  ")
	case command.FormatYAML:
		return yaml.Marshal(node)
	}
	return nil, types.NewValidationError("unsupported export format %q", format)
}

// ReplaceSubtree restores snap onto id, returning the number of nodes created.
func (e *Executor) ReplaceSubtree(ctx context.Context, id string, snap *tree.SerializedNode) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if snap == nil {
		return 0, types.NewValidationError("snapshot is empty")
	}
	for _, hash := range snap.ImageHashes() {
		if ok, _ := e.images.Has(ctx, hash); !ok {
			return 0, types.NewNotFoundError("image %v is unknown to session %v", hash, e.session)
		}
	}
	return snapshot.Restore(ctx, &target{e}, id, snap)
}

// Node implements snapshot.Source; callers hold the lock.
func (e *Executor) Node(id string) (tree.Kind, tree.Properties, []string, error) {
	node, err := e.arena.Get(id)
	if err != nil {
		return "", tree.Properties{}, nil, err
	}
	return node.Kind, node.Props, append([]string(nil), node.Children...), nil
}

// target exposes lock-free primitives to snapshot.Restore.
type target struct {
	e *Executor
}

func (t *target) Kind(id string) (tree.Kind, error) {
	node, err := t.e.arena.Get(id)
	if err != nil {
		return "", err
	}
	return node.Kind, nil
}

func (t *target) Children(id string) ([]string, error) {
	node, err := t.e.arena.Get(id)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), node.Children...), nil
}

func (t *target) Remove(_ context.Context, id string) error {
	t.e.arena.Remove(id)
	return nil
}

func (t *target) Apply(ctx context.Context, id string, patch *tree.Patch) error {
	node, err := t.e.arena.Get(id)
	if err != nil {
		return err
	}
	return t.e.apply(ctx, node, patch)
}

func (t *target) Create(ctx context.Context, kind tree.Kind, parentID string, patch *tree.Patch) (string, error) {
	return t.e.create(ctx, kind, parentID, patch)
}
