package idgen

import (
	"strings"

	"github.com/google/uuid"
)

// NewFunc returns a new globally unique identifier. Override in tests for
// deterministic command ids.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new globally unique identifier as string.
func New() string { return NewFunc() }

// NewNodeID returns a short node handle. Handles are never reused, a restored
// subtree always receives fresh ones.
func NewNodeID() string {
	id := strings.ReplaceAll(NewFunc(), "-", "")
	if len(id) > 12 {
		id = id[:12]
	}
	return "n:" + id
}
