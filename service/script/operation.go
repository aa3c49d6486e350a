package script

import (
	"strings"

	"github.com/viant/docbridge/model/tree"
)

type action int

const (
	actionCreate action = iota
	actionUpdate
	actionDelete
	actionReparent
)

type verb struct {
	action action
	kind   tree.Kind
}

// vocabulary maps upper-cased operation names to primitives.
var vocabulary = map[string]verb{
	"CREATE":    {action: actionCreate, kind: tree.KindFrame},
	"FRAME":     {action: actionCreate, kind: tree.KindFrame},
	"TEXT":      {action: actionCreate, kind: tree.KindText},
	"RECTANGLE": {action: actionCreate, kind: tree.KindRectangle},
	"ELLIPSE":   {action: actionCreate, kind: tree.KindEllipse},
	"LINE":      {action: actionCreate, kind: tree.KindLine},
	"GROUP":     {action: actionCreate, kind: tree.KindGroup},
	"UPDATE":    {action: actionUpdate},
	"DELETE":    {action: actionDelete},
	"REPARENT":  {action: actionReparent},
}

// Ref is a node reference: none (page), a script variable or a literal id.
type Ref struct {
	Variable string
	ID       string
}

// IsNone reports a "none" reference.
func (r Ref) IsNone() bool {
	return r.Variable == "" && r.ID == ""
}

func (r Ref) String() string {
	switch {
	case r.Variable != "":
		return "$" + r.Variable
	case r.ID != "":
		return r.ID
	}
	return "none"
}

// Operation is one parsed statement.
type Operation struct {
	Line       int
	Source     string
	Variable   string
	Name       string
	Kind       tree.Kind
	Target     Ref
	Parent     Ref
	Index      *int
	Properties map[string]interface{}
	action     action
}

func (o *Operation) String() string {
	return strings.TrimSpace(o.Source)
}
