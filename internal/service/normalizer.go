package service

import (
	"regexp"
	"strings"
)

// sqlKeywords are upper-cased during normalization. Function names are
// deliberately absent so identifier casing survives into the rewrite step.
var sqlKeywords = map[string]bool{
	"SELECT": true, "FROM": true, "WHERE": true, "AND": true, "OR": true,
	"NOT": true, "IN": true, "IS": true, "NULL": true, "LIKE": true,
	"BETWEEN": true, "EXISTS": true, "JOIN": true, "INNER": true,
	"LEFT": true, "RIGHT": true, "FULL": true, "CROSS": true, "OUTER": true,
	"ON": true, "AS": true, "ORDER": true, "GROUP": true, "BY": true,
	"HAVING": true, "DISTINCT": true, "TOP": true, "LIMIT": true,
	"OFFSET": true, "UNION": true, "ALL": true, "CASE": true, "WHEN": true,
	"THEN": true, "ELSE": true, "END": true, "INSERT": true, "INTO": true,
	"VALUES": true, "UPDATE": true, "SET": true, "DELETE": true,
	"ASC": true, "DESC": true, "WITH": true, "NOLOCK": true,
}

// clauseKeywords start a new line in the normalized text.
var clauseKeywords = map[string]bool{
	"FROM": true, "WHERE": true, "GROUP": true, "ORDER": true,
	"HAVING": true, "UNION": true, "LIMIT": true, "OFFSET": true,
	"INNER": true, "LEFT": true, "RIGHT": true, "FULL": true, "CROSS": true,
	"JOIN": true, "VALUES": true,
}

// joinModifiers precede JOIN; JOIN itself stays on their line.
var joinModifiers = map[string]bool{
	"INNER": true, "LEFT": true, "RIGHT": true, "FULL": true,
	"CROSS": true, "OUTER": true,
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeSQL reformats a query with upper-cased keywords and one clause per
// line. It never fails: anything the tokenizer cannot handle (unterminated
// quote, empty input) comes back unchanged.
func NormalizeSQL(raw string) string {
	tokens, ok := tokenizeSQL(raw)
	if !ok || len(tokens) == 0 {
		return raw
	}
	return renderTokens(tokens)
}

// Flatten collapses all whitespace to single spaces and upper-cases the text.
// Detectors and the index builder match against this view.
func Flatten(s string) string {
	return strings.ToUpper(strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " ")))
}

func tokenizeSQL(s string) ([]string, bool) {
	var tokens []string
	i := 0
	n := len(s)
	for i < n {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '\'' || (c == 'N' || c == 'n') && i+1 < n && s[i+1] == '\'':
			start := i
			if c != '\'' {
				i++ // N prefix
			}
			i++ // opening quote
			for {
				if i >= n {
					return nil, false // unterminated string literal
				}
				if s[i] == '\'' {
					if i+1 < n && s[i+1] == '\'' { // escaped quote
						i += 2
						continue
					}
					i++
					break
				}
				i++
			}
			tokens = append(tokens, s[start:i])
		case c == '"' || c == '[':
			closer := byte('"')
			if c == '[' {
				closer = ']'
			}
			start := i
			i++
			for i < n && s[i] != closer {
				i++
			}
			if i >= n {
				return nil, false // unterminated quoted identifier
			}
			i++
			tokens = append(tokens, s[start:i])
		case c == '-' && i+1 < n && s[i+1] == '-':
			start := i
			for i < n && s[i] != '\n' {
				i++
			}
			tokens = append(tokens, s[start:i])
		case c == '/' && i+1 < n && s[i+1] == '*':
			start := i
			i += 2
			for i+1 < n && !(s[i] == '*' && s[i+1] == '/') {
				i++
			}
			if i+1 >= n {
				return nil, false // unterminated block comment
			}
			i += 2
			tokens = append(tokens, s[start:i])
		case isWordStart(c):
			start := i
			for i < n && isWordChar(s[i]) {
				i++
			}
			tokens = append(tokens, s[start:i])
		default:
			if i+1 < n {
				two := s[i : i+2]
				if two == "<=" || two == ">=" || two == "<>" || two == "!=" || two == "||" {
					tokens = append(tokens, two)
					i += 2
					continue
				}
			}
			tokens = append(tokens, string(c))
			i++
		}
	}
	return tokens, true
}

func isWordStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c == '_' || c == '@' || c == '#' || c == ':' || c == '$'
}

func isWordChar(c byte) bool {
	return isWordStart(c) || c == '.'
}

func renderTokens(tokens []string) string {
	var b strings.Builder
	prev := ""
	prevUpper := ""
	for _, tok := range tokens {
		up := strings.ToUpper(tok)
		if sqlKeywords[up] {
			tok = up
		}
		switch {
		case prev == "":
			// first token
		case startsClause(up, prevUpper):
			b.WriteByte('\n')
		case tok == "," || tok == ")" || tok == ";":
			// attach to previous token
		case prev == "(":
			// attach to opening paren
		case tok == "(" && isPlainWord(prev) && !sqlKeywords[prevUpper]:
			// function call, no space before the paren
		default:
			b.WriteByte(' ')
		}
		b.WriteString(tok)
		prev = tok
		prevUpper = up
	}
	return b.String()
}

func startsClause(up, prevUpper string) bool {
	if !clauseKeywords[up] {
		return false
	}
	if up == "JOIN" && joinModifiers[prevUpper] {
		return false
	}
	return true
}

func isPlainWord(tok string) bool {
	if tok == "" {
		return false
	}
	c := tok[0]
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' || c == '[' || c == '"'
}
