package sqlsafe

import (
	"strings"
	"unicode"
)

// tokenKind classifies the tokens the table-reference scanner cares about.
// Everything it does not care about (operators, numbers) is lumped into
// tokSymbol so the scan can step over it.
type tokenKind int

const (
	tokIdent tokenKind = iota
	tokKeyword
	tokString
	tokSymbol
)

type token struct {
	kind tokenKind
	text string // keywords uppercased, identifiers as written
	pos  int    // byte offset in the input
}

// scanKeywords are the only words the reference scanner treats specially.
// FROM and JOIN arm the "expecting a table" state; AS marks an alias.
var scanKeywords = map[string]tokenKind{
	"FROM": tokKeyword,
	"JOIN": tokKeyword,
	"AS":   tokKeyword,
}

// scanTokens produces a flat token stream for the table-reference walk.
// String literals and comments are consumed whole so keywords inside them
// never arm the state machine. Quoted identifiers lose their quotes;
// unquoted identifiers keep embedded dots so schema-qualified names arrive
// as a single token.
func scanTokens(input string) []token {
	var tokens []token
	i := 0
	n := len(input)

	for i < n {
		ch := input[i]

		if unicode.IsSpace(rune(ch)) {
			i++
			continue
		}

		// Line comment: -- to end of line.
		if ch == '-' && i+1 < n && input[i+1] == '-' {
			for i < n && input[i] != '\n' {
				i++
			}
			continue
		}

		// Block comment: /* ... */.
		if ch == '/' && i+1 < n && input[i+1] == '*' {
			i += 2
			for i+1 < n && !(input[i] == '*' && input[i+1] == '/') {
				i++
			}
			i += 2
			continue
		}

		// Single-quoted string literal, with '' escaping.
		if ch == '\'' {
			start := i
			i++
			for i < n {
				if input[i] == '\'' {
					if i+1 < n && input[i+1] == '\'' {
						i += 2
						continue
					}
					i++
					break
				}
				i++
			}
			tokens = append(tokens, token{kind: tokString, text: input[start:i], pos: start})
			continue
		}

		// Quoted identifiers: "name" or `name`. The quotes are dropped so
		// the scanner sees the bare name.
		if ch == '"' || ch == '`' {
			quote := ch
			start := i
			i++
			var sb strings.Builder
			for i < n && input[i] != quote {
				sb.WriteByte(input[i])
				i++
			}
			if i < n {
				i++ // closing quote
			}
			tokens = append(tokens, token{kind: tokIdent, text: sb.String(), pos: start})
			continue
		}

		// Bare identifier or keyword. Dots are kept so schema.table scans
		// as one token.
		if ch == '_' || isLetter(ch) {
			start := i
			for i < n && (input[i] == '_' || input[i] == '.' || input[i] == '$' || isLetter(input[i]) || isDigit(input[i])) {
				i++
			}
			word := input[start:i]
			upper := strings.ToUpper(word)
			if kind, ok := scanKeywords[upper]; ok {
				tokens = append(tokens, token{kind: kind, text: upper, pos: start})
			} else {
				tokens = append(tokens, token{kind: tokIdent, text: word, pos: start})
			}
			continue
		}

		tokens = append(tokens, token{kind: tokSymbol, text: string(ch), pos: i})
		i++
	}

	return tokens
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
