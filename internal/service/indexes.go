package service

import (
	"fmt"
	"regexp"
	"strings"
)

// Equality predicates of the shape `identifier = literal-or-placeholder`.
// A column compared against another column (join conditions) does not match
// because the right-hand side must be a literal or bind placeholder.
var (
	reEqualityPredicate = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_.]*)\s*=\s*(@[A-Za-z0-9_]+|:[A-Za-z0-9_]+|\$\d+|\?|N?'[^']*'|\d+(?:\.\d+)?\b)`)
	reFromTable         = regexp.MustCompile(`\bFROM\s+\[?([A-Za-z_][A-Za-z0-9_.]*)`)
	reJoinTable         = regexp.MustCompile(`\bJOIN\s+\[?([A-Za-z_][A-Za-z0-9_.]*)`)
)

const (
	maxIndexColumns  = 3
	fallbackTableTag = "target_table"
)

// BuildIndexCandidates scans the flattened query text for equality predicates
// and emits at most one composite-index suggestion covering the first few
// distinct columns, keyed by the first column. Empty when no equality
// predicate is present.
func BuildIndexCandidates(flat string) []string {
	var columns []string
	seen := map[string]bool{}
	for _, m := range reEqualityPredicate.FindAllStringSubmatch(flat, -1) {
		col := lastSegment(m[1])
		if col == "" || seen[col] {
			continue
		}
		seen[col] = true
		columns = append(columns, col)
		if len(columns) == maxIndexColumns {
			break
		}
	}
	if len(columns) == 0 {
		return nil
	}

	table := fallbackTableTag
	if m := reFromTable.FindStringSubmatch(flat); m != nil {
		table = lastSegment(m[1])
	} else if m := reJoinTable.FindStringSubmatch(flat); m != nil {
		table = lastSegment(m[1])
	}

	suggestion := fmt.Sprintf("CREATE INDEX ix_%s_%s ON %s (%s);",
		table, columns[0], table, strings.Join(columns, ", "))
	return []string{suggestion}
}

// lastSegment lower-cases the final dot-qualified part of an identifier.
func lastSegment(identifier string) string {
	identifier = strings.Trim(identifier, ".")
	if idx := strings.LastIndex(identifier, "."); idx >= 0 {
		identifier = identifier[idx+1:]
	}
	return strings.ToLower(identifier)
}
