package checkpoint

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/viant/docbridge/internal/clock"
	"github.com/viant/docbridge/model/types"
	"github.com/viant/docbridge/service/dao"
	"github.com/viant/docbridge/service/dao/criteria"
	"github.com/viant/docbridge/service/dao/store"
	"github.com/viant/docbridge/service/snapshot"
)

// Store is the checkpoint registry of one session.
type Store struct {
	tree    Tree
	records *store.MemoryStore[string, Checkpoint]
}

// New creates an empty registry over tree.
func New(tree Tree) *Store {
	records := store.NewMemoryStore[string, Checkpoint](func(c *Checkpoint) string { return c.Label }).
		WithMatcher(func(c *Checkpoint, parameters []*dao.Parameter) bool {
			return criteria.Match(map[string]string{"Label": c.Label, "RootID": c.RootID}, parameters)
		})
	return &Store{tree: tree, records: records}
}

// Save captures the full subtree of rootID under label, overwriting any
// checkpoint with the same label.
func (s *Store) Save(ctx context.Context, rootID, label string) (*Checkpoint, error) {
	if label == "" {
		return nil, types.NewValidationError("checkpoint label is required")
	}
	if rootID == "" {
		return nil, types.NewValidationError("checkpoint %q requires a root id", label)
	}
	node, err := s.tree.Serialize(ctx, rootID, snapshot.Unbounded)
	if err != nil {
		return nil, err
	}
	ret := &Checkpoint{Label: label, RootID: rootID, Snapshot: node, CreatedAt: clock.Now()}
	if err = s.records.Save(ctx, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// Load returns the checkpoint or NotFound listing known labels.
func (s *Store) Load(ctx context.Context, label string) (*Checkpoint, error) {
	ret, err := s.records.Load(ctx, label)
	if errors.Is(err, dao.ErrNotFound) {
		labels, _ := s.Labels(ctx)
		return nil, types.NewNotFoundError("checkpoint %q, known labels: [%v]", label, strings.Join(labels, ", "))
	}
	return ret, err
}

// Restore replaces the checkpoint root's subtree with the stored snapshot.
// The checkpoint stays stored, so restoring twice yields the same tree.
func (s *Store) Restore(ctx context.Context, label string) (*Checkpoint, error) {
	ret, err := s.Load(ctx, label)
	if err != nil {
		return nil, err
	}
	if _, err = s.tree.ReplaceSubtree(ctx, ret.RootID, ret.Snapshot); err != nil {
		return nil, err
	}
	return ret, nil
}

// List returns checkpoints ordered by creation time, optionally filtered by
// Label or RootID parameters.
func (s *Store) List(ctx context.Context, parameters ...*dao.Parameter) ([]*Checkpoint, error) {
	ret, err := s.records.List(ctx, parameters...)
	if err != nil {
		return nil, err
	}
	sort.Slice(ret, func(i, j int) bool {
		if ret[i].CreatedAt.Equal(ret[j].CreatedAt) {
			return ret[i].Label < ret[j].Label
		}
		return ret[i].CreatedAt.Before(ret[j].CreatedAt)
	})
	return ret, nil
}

// Labels returns the stored labels, sorted.
func (s *Store) Labels(_ context.Context) ([]string, error) {
	ret := s.records.Keys()
	sort.Strings(ret)
	return ret, nil
}

// Delete removes one checkpoint.
func (s *Store) Delete(ctx context.Context, label string) error {
	err := s.records.Delete(ctx, label)
	if errors.Is(err, dao.ErrNotFound) {
		return types.NewNotFoundError("checkpoint %q", label)
	}
	return err
}

// Clear drops every checkpoint; call it at session boundaries.
func (s *Store) Clear(ctx context.Context) error {
	return s.records.Clear(ctx)
}
