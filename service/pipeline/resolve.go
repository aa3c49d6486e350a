package pipeline

import (
	"regexp"
	"strings"

	"github.com/viant/docbridge/model/types"
)

var referenceExpr = regexp.MustCompile(`^\$([A-Za-z_][\w-]*)((\.[\w-]+)*)$`)

// reference parses a $stepId.field.path leaf.
func reference(value string) (stepID string, path []string, ok bool) {
	match := referenceExpr.FindStringSubmatch(value)
	if match == nil {
		return "", nil, false
	}
	if match[2] != "" {
		path = strings.Split(match[2][1:], ".")
	}
	return match[1], path, true
}

// ResolveVariables returns a copy of args with every reference leaf replaced
// by the value it names in bindings. An unknown step or a missing segment is
// an UnresolvedReference; a reference never resolves to nil silently.
func ResolveVariables(args map[string]interface{}, bindings map[string]interface{}) (map[string]interface{}, error) {
	if args == nil {
		return nil, nil
	}
	ret, err := resolve(args, bindings)
	if err != nil {
		return nil, err
	}
	return ret.(map[string]interface{}), nil
}

func resolve(value interface{}, bindings map[string]interface{}) (interface{}, error) {
	switch actual := value.(type) {
	case string:
		stepID, path, ok := reference(actual)
		if !ok {
			return actual, nil
		}
		return lookup(actual, stepID, path, bindings)
	case map[string]interface{}:
		ret := make(map[string]interface{}, len(actual))
		for k, v := range actual {
			resolved, err := resolve(v, bindings)
			if err != nil {
				return nil, err
			}
			ret[k] = resolved
		}
		return ret, nil
	case []interface{}:
		ret := make([]interface{}, len(actual))
		for i, v := range actual {
			resolved, err := resolve(v, bindings)
			if err != nil {
				return nil, err
			}
			ret[i] = resolved
		}
		return ret, nil
	}
	return value, nil
}

func lookup(expr, stepID string, path []string, bindings map[string]interface{}) (interface{}, error) {
	current, ok := bindings[stepID]
	if !ok {
		return nil, types.NewUnresolvedReferenceError("%v: no result for step %q", expr, stepID)
	}
	for i, segment := range path {
		holder, isMap := current.(map[string]interface{})
		if !isMap {
			return nil, types.NewUnresolvedReferenceError("%v: %v is not an object", expr, strings.Join(append([]string{stepID}, path[:i]...), "."))
		}
		if current, ok = holder[segment]; !ok || current == nil {
			return nil, types.NewUnresolvedReferenceError("%v: missing field %q", expr, segment)
		}
	}
	if current == nil {
		return nil, types.NewUnresolvedReferenceError("%v: empty result", expr)
	}
	return current, nil
}

// references lists step ids referenced anywhere in value.
func references(value interface{}, fn func(stepID, expr string)) {
	switch actual := value.(type) {
	case string:
		if stepID, _, ok := reference(actual); ok {
			fn(stepID, actual)
		}
	case map[string]interface{}:
		for _, v := range actual {
			references(v, fn)
		}
	case []interface{}:
		for _, v := range actual {
			references(v, fn)
		}
	}
}
