package tree

import (
	"sort"
	"strings"
)

var aliases = map[string]string{
	"w":      "width",
	"h":      "height",
	"text":   "characters",
	"layout": "layoutMode",
	"gap":    "itemSpacing",
	"radius": "cornerRadius",
}

var (
	commonKeys = []string{"name", "visible", "locked", "opacity", "x", "y", "width", "height", "rotation"}
	paintKeys  = []string{"fills", "strokes", "strokeWeight"}
	layoutKeys = []string{"layoutMode", "itemSpacing", "padding", "primaryAxisAlign", "counterAxisAlign"}
	textKeys   = []string{"characters", "fontFamily", "fontStyle", "fontSize", "lineHeight", "textAlign"}
)

// Schema lists the property keys accepted per kind.
var Schema = map[Kind]map[string]bool{
	KindPage:      keySet([]string{"name"}),
	KindFrame:     keySet(commonKeys, paintKeys, layoutKeys, []string{"cornerRadius"}),
	KindGroup:     keySet(commonKeys),
	KindRectangle: keySet(commonKeys, paintKeys, []string{"cornerRadius"}),
	KindEllipse:   keySet(commonKeys, paintKeys),
	KindLine:      keySet(commonKeys, paintKeys),
	KindText:      keySet(commonKeys, paintKeys, textKeys),
}

func keySet(groups ...[]string) map[string]bool {
	ret := map[string]bool{}
	for _, group := range groups {
		for _, key := range group {
			ret[key] = true
		}
	}
	return ret
}

// CanonicalKey resolves aliases and case differences against the kind schema.
func CanonicalKey(kind Kind, key string) (string, bool) {
	if alias, ok := aliases[key]; ok {
		key = alias
	}
	allowed := Schema[kind]
	if allowed[key] {
		return key, true
	}
	for candidate := range allowed {
		if strings.EqualFold(candidate, key) {
			return candidate, true
		}
	}
	return key, false
}

// AllowedKeys returns sorted keys accepted by kind.
func AllowedKeys(kind Kind) []string {
	var ret []string
	for key := range Schema[kind] {
		ret = append(ret, key)
	}
	sort.Strings(ret)
	return ret
}
