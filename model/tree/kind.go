package tree

import "strings"

// Kind identifies a document node kind.
type Kind string

const (
	KindPage      Kind = "PAGE"
	KindFrame     Kind = "FRAME"
	KindGroup     Kind = "GROUP"
	KindRectangle Kind = "RECTANGLE"
	KindEllipse   Kind = "ELLIPSE"
	KindLine      Kind = "LINE"
	KindText      Kind = "TEXT"
)

// Kinds lists every creatable kind.
var Kinds = []Kind{KindFrame, KindGroup, KindRectangle, KindEllipse, KindLine, KindText}

// ParseKind returns a creatable kind by name (case-insensitive).
func ParseKind(name string) (Kind, bool) {
	for _, k := range Kinds {
		if strings.EqualFold(string(k), name) {
			return k, true
		}
	}
	if strings.EqualFold(name, "rect") {
		return KindRectangle, true
	}
	return "", false
}

// IsContainer returns true when nodes of the kind may hold children.
func (k Kind) IsContainer() bool {
	switch k {
	case KindPage, KindFrame, KindGroup:
		return true
	}
	return false
}
