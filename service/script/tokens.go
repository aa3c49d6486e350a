package script

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

// Token codes start at 1 to stay clear of parsly.EOF.
const (
	whitespaceCode = iota + 1
	identifierCode
	assignCode
	blockCode
	terminatorCode
)

var (
	whitespaceToken = parsly.NewToken(whitespaceCode, "Whitespace", matcher.NewWhiteSpace())
	identifierToken = parsly.NewToken(identifierCode, "Identifier", &identifierMatcher{})
	assignToken     = parsly.NewToken(assignCode, "=", matcher.NewByte('='))
	blockToken      = parsly.NewToken(blockCode, "( ... )", &blockMatcher{open: '(', close: ')'})
	terminatorToken = parsly.NewToken(terminatorCode, ";", matcher.NewByte(';'))
)

// identifierMatcher matches variable and operation names.
type identifierMatcher struct{}

func (m *identifierMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	if pos >= cursor.InputSize {
		return 0
	}
	if !isLetter(input[pos]) && input[pos] != '_' {
		return 0
	}
	matched := 1
	for i := pos + 1; i < cursor.InputSize; i++ {
		if isLetter(input[i]) || isDigit(input[i]) || input[i] == '_' {
			matched++
			continue
		}
		break
	}
	return matched
}

// blockMatcher matches a balanced block including its delimiters. Nested
// blocks and delimiters inside double-quoted strings are skipped.
type blockMatcher struct {
	open  byte
	close byte
}

func (m *blockMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	if pos >= cursor.InputSize || input[pos] != m.open {
		return 0
	}
	depth := 0
	inQuote := false
	for i := pos; i < cursor.InputSize; i++ {
		c := input[i]
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
		case m.open:
			depth++
		case m.close:
			depth--
			if depth == 0 {
				return i - pos + 1
			}
		}
	}
	return 0
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
