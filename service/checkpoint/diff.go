package checkpoint

import (
	"context"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/viant/docbridge/model/tree"
	"github.com/viant/docbridge/service/snapshot"
	"gopkg.in/yaml.v3"
)

// DiffStats captures basic statistics about a unified diff.
type DiffStats struct {
	Added   int
	Removed int
}

// Diff renders a unified diff between the stored snapshot and the live
// subtree, both as YAML with node ids removed. An empty diff means restoring
// the checkpoint would not change any captured property.
func (s *Store) Diff(ctx context.Context, label string) (string, DiffStats, error) {
	stored, err := s.Load(ctx, label)
	if err != nil {
		return "", DiffStats{}, err
	}
	live, err := s.tree.Serialize(ctx, stored.RootID, snapshot.Unbounded)
	if err != nil {
		return "", DiffStats{}, err
	}
	return diffNodes(stored.Snapshot, live, label)
}

func diffNodes(from, to *tree.SerializedNode, label string) (string, DiffStats, error) {
	fromData, err := yaml.Marshal(from.Anonymous())
	if err != nil {
		return "", DiffStats{}, err
	}
	toData, err := yaml.Marshal(to.Anonymous())
	if err != nil {
		return "", DiffStats{}, err
	}
	if string(fromData) == string(toData) {
		return "", DiffStats{}, nil
	}
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(fromData)),
		B:        difflib.SplitLines(string(toData)),
		FromFile: label + " (checkpoint)",
		ToFile:   label + " (live)",
		Context:  3,
	}
	patch, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", DiffStats{}, err
	}
	var stats DiffStats
	for _, line := range strings.Split(patch, "\n") {
		switch {
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			stats.Added++
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			stats.Removed++
		}
	}
	return patch, stats, nil
}
