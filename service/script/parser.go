package script

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/viant/parsly"

	"github.com/viant/docbridge/model/tree"
	"github.com/viant/docbridge/model/types"
)

// DefaultMaxOperations bounds a script when no limit is configured.
const DefaultMaxOperations = 50

// Parse parses script into operations. Any error aborts the whole script;
// nothing is returned partially.
func Parse(script string, maxOperations int) ([]*Operation, error) {
	if maxOperations <= 0 {
		maxOperations = DefaultMaxOperations
	}
	input := []byte(stripComments(script))
	cursor := parsly.NewCursor("script", input, 0)
	var ret []*Operation
	for {
		cursor.MatchOne(whitespaceToken)
		start := cursor.Pos
		matched := cursor.MatchAny(identifierToken, terminatorToken)
		switch matched.Code {
		case parsly.EOF:
			if len(ret) == 0 {
				return nil, types.NewValidationError("script has no operations")
			}
			return ret, nil
		case terminatorCode:
			continue
		case identifierCode:
		default:
			if !cursor.HasMore() {
				if len(ret) == 0 {
					return nil, types.NewValidationError("script has no operations")
				}
				return ret, nil
			}
			return nil, parseError(input, start, cursor.NewError(identifierToken))
		}
		variable, name := "", matched.Text(cursor)
		matched = cursor.MatchAfterOptional(whitespaceToken, assignToken, blockToken)
		switch matched.Code {
		case assignCode:
			variable = name
			matched = cursor.MatchAfterOptional(whitespaceToken, identifierToken)
			if matched.Code != identifierCode {
				return nil, parseError(input, start, cursor.NewError(identifierToken))
			}
			name = matched.Text(cursor)
			matched = cursor.MatchAfterOptional(whitespaceToken, blockToken)
			if matched.Code != blockCode {
				return nil, parseError(input, start, cursor.NewError(blockToken))
			}
		case blockCode:
		default:
			return nil, parseError(input, start, cursor.NewError(assignToken, blockToken))
		}
		block := matched.Text(cursor)
		line := lineOf(input, start)
		op, err := newOperation(line, variable, name, block)
		if err != nil {
			return nil, err
		}
		op.Source = string(input[start:cursor.Pos])
		if ret = append(ret, op); len(ret) > maxOperations {
			return nil, types.NewValidationError("script exceeds %d operations", maxOperations)
		}
	}
}

func parseError(input []byte, pos int, err error) error {
	return types.NewValidationError("line %d: %v", lineOf(input, pos), err)
}

func lineOf(input []byte, pos int) int {
	if pos > len(input) {
		pos = len(input)
	}
	return bytes.Count(input[:pos], []byte{'\n'}) + 1
}

func newOperation(line int, variable, name, block string) (*Operation, error) {
	upper := strings.ToUpper(name)
	verb, ok := vocabulary[upper]
	if !ok {
		return nil, types.NewValidationError("line %d: unknown operation %v", line, name)
	}
	op := &Operation{Line: line, Variable: variable, Name: upper, Kind: verb.kind, action: verb.action}
	if variable != "" && verb.action != actionCreate {
		return nil, types.NewValidationError("line %d: %v does not produce a node for %v", line, upper, variable)
	}
	if variable == "" && verb.action == actionCreate {
		return nil, types.NewValidationError("line %d: %v must bind a variable, e.g. x = %v(...)", line, upper, upper)
	}
	args, err := splitArgs(block[1 : len(block)-1])
	if err != nil {
		return nil, types.NewValidationError("line %d: %v", line, err)
	}
	if n := len(args); n > 0 && strings.HasPrefix(args[n-1], "{") {
		if op.Properties, err = decodeProperties(args[n-1]); err != nil {
			return nil, types.NewValidationError("line %d: %v", line, err)
		}
		args = args[:n-1]
	}
	if err = op.init(args); err != nil {
		return nil, types.NewValidationError("line %d: %v: %v", line, upper, err)
	}
	return op, nil
}

func (o *Operation) init(args []string) error {
	var err error
	switch o.action {
	case actionCreate:
		if len(args) != 1 {
			return fmt.Errorf("expected a parent reference (use none for the page) and optional properties")
		}
		if kind, ok := o.Properties["kind"]; ok && o.Name == "CREATE" {
			text, _ := kind.(string)
			if o.Kind, ok = tree.ParseKind(text); !ok {
				return fmt.Errorf("unsupported kind %v", kind)
			}
			delete(o.Properties, "kind")
		}
		o.Target, err = parseRef(args[0])
	case actionUpdate:
		if len(args) != 1 || len(o.Properties) == 0 {
			return fmt.Errorf("expected a target reference and properties")
		}
		if o.Target, err = parseRef(args[0]); err == nil && o.Target.IsNone() {
			err = fmt.Errorf("target cannot be none")
		}
	case actionDelete:
		if len(args) != 1 || o.Properties != nil {
			return fmt.Errorf("expected a single target reference")
		}
		if o.Target, err = parseRef(args[0]); err == nil && o.Target.IsNone() {
			err = fmt.Errorf("target cannot be none")
		}
	case actionReparent:
		if len(args) < 2 || len(args) > 3 || o.Properties != nil {
			return fmt.Errorf("expected target, new parent and optional index")
		}
		if o.Target, err = parseRef(args[0]); err != nil {
			return err
		}
		if o.Target.IsNone() {
			return fmt.Errorf("target cannot be none")
		}
		if o.Parent, err = parseRef(args[1]); err != nil {
			return err
		}
		if len(args) == 3 {
			index, convErr := strconv.Atoi(args[2])
			if convErr != nil || index < 0 {
				return fmt.Errorf("invalid index %v", args[2])
			}
			o.Index = &index
		}
	}
	return err
}

func parseRef(arg string) (Ref, error) {
	switch {
	case arg == "":
		return Ref{}, fmt.Errorf("missing reference")
	case strings.EqualFold(arg, "none"):
		return Ref{}, nil
	case arg[0] == '$':
		name := arg[1:]
		if name == "" || !isIdentifier(name) {
			return Ref{}, fmt.Errorf("invalid variable %v", arg)
		}
		return Ref{Variable: name}, nil
	case arg[0] == '"':
		id, err := strconv.Unquote(arg)
		if err != nil || id == "" {
			return Ref{}, fmt.Errorf("invalid reference %v", arg)
		}
		return Ref{ID: id}, nil
	case strings.ContainsAny(arg, " \t\n{}[]()\","):
		return Ref{}, fmt.Errorf("invalid reference %v", arg)
	}
	return Ref{ID: arg}, nil
}

func isIdentifier(text string) bool {
	for i := 0; i < len(text); i++ {
		c := text[i]
		if isLetter(c) || c == '_' || (i > 0 && isDigit(c)) {
			continue
		}
		return false
	}
	return true
}

// splitArgs splits on top-level commas outside quotes and nested blocks.
func splitArgs(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	var ret []string
	depth, start, inQuote := 0, 0, false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inQuote {
			switch c {
			case '\\':
				i++
			case '"':
				inQuote = false
			}
			continue
		}
		switch c {
		case '"':
			inQuote = true
		case '{', '[', '(':
			depth++
		case '}', ']', ')':
			depth--
		case ',':
			if depth == 0 {
				ret = append(ret, strings.TrimSpace(text[start:i]))
				start = i + 1
			}
		}
	}
	if inQuote || depth != 0 {
		return nil, fmt.Errorf("unbalanced arguments %v", text)
	}
	return append(ret, strings.TrimSpace(text[start:])), nil
}

func decodeProperties(text string) (map[string]interface{}, error) {
	ret := map[string]interface{}{}
	if err := json.Unmarshal([]byte(normalizeKeys(text)), &ret); err != nil {
		return nil, fmt.Errorf("invalid properties %v: %v", text, err)
	}
	return ret, nil
}

// normalizeKeys quotes bare object keys so the text decodes as JSON.
func normalizeKeys(text string) string {
	var out strings.Builder
	inQuote := false
	last := byte(0)
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inQuote {
			out.WriteByte(c)
			switch c {
			case '\\':
				if i+1 < len(text) {
					i++
					out.WriteByte(text[i])
				}
			case '"':
				inQuote = false
				last = c
			}
			continue
		}
		if (last == '{' || last == ',') && (isLetter(c) || c == '_') {
			end := i
			for end < len(text) && (isLetter(text[end]) || isDigit(text[end]) || text[end] == '_' || text[end] == '-') {
				end++
			}
			next := end
			for next < len(text) && (text[next] == ' ' || text[next] == '\t' || text[next] == '\n') {
				next++
			}
			if next < len(text) && text[next] == ':' {
				out.WriteString(strconv.Quote(text[i:end]))
				i = end - 1
				last = '"'
				continue
			}
		}
		out.WriteByte(c)
		switch c {
		case ' ', '\t', '\n', '\r':
		case '"':
			inQuote = true
			last = c
		default:
			last = c
		}
	}
	return out.String()
}

// stripComments removes // and # comments outside double quotes, keeping
// line breaks so positions map to the same lines.
func stripComments(script string) string {
	lines := strings.Split(script, "\n")
	for i, line := range lines {
		lines[i] = stripLineComment(line)
	}
	return strings.Join(lines, "\n")
}

func stripLineComment(line string) string {
	inQuote := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		if inQuote {
			switch c {
			case '\\':
				i++
			case '"':
				inQuote = false
			}
			continue
		}
		switch {
		case c == '"':
			inQuote = true
		case c == '#':
			return line[:i]
		case c == '/' && i+1 < len(line) && line[i+1] == '/':
			return line[:i]
		}
	}
	return line
}
