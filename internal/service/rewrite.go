package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"sqladvisor-go/internal/model"
)

// Date-part-equality patterns, one per recognized spelling. Submatch 1 is the
// column, submatch 2 the literal year.
var (
	reYearEquality     = regexp.MustCompile(`(?i)\bYEAR\s*\(\s*([A-Za-z_][A-Za-z0-9_.]*)\s*\)\s*=\s*(\d{4})\b`)
	reDatePartEquality = regexp.MustCompile(`(?i)\bDATEPART\s*\(\s*(?:YEAR|YYYY|YY)\s*,\s*([A-Za-z_][A-Za-z0-9_.]*)\s*\)\s*=\s*(\d{4})\b`)
	reExtractEquality  = regexp.MustCompile(`(?i)\bEXTRACT\s*\(\s*YEAR\s+FROM\s+([A-Za-z_][A-Za-z0-9_.]*)\s*\)\s*=\s*(\d{4})\b`)
	reDatePartPg       = regexp.MustCompile(`(?i)\bDATE_PART\s*\(\s*'year'\s*,\s*([A-Za-z_][A-Za-z0-9_.]*)\s*\)\s*=\s*(\d{4})\b`)
)

// rewritePatterns lists, per dialect, the recognized date-function spellings
// in declared order. Only the first occurrence of the first matching pattern
// is rewritten; later occurrences keep their guidance-comment treatment.
var rewritePatterns = map[string][]*regexp.Regexp{
	model.DBMSSQLServer: {reYearEquality, reDatePartEquality},
	model.DBMSMySQL:     {reYearEquality},
	model.DBMSPostgres:  {reExtractEquality, reDatePartPg},
}

// RewriteDateEquality rewrites `FUNC(column) = year` in the normalized text
// to a half-open range on the raw column. Reports whether a rewrite fired.
func RewriteDateEquality(normalized, dialect string) (string, bool) {
	patterns, ok := rewritePatterns[dialect]
	if !ok {
		patterns = rewritePatterns[model.DBMSSQLServer]
	}
	for _, re := range patterns {
		loc := re.FindStringSubmatchIndex(normalized)
		if loc == nil {
			continue
		}
		column := normalized[loc[2]:loc[3]]
		year, err := strconv.Atoi(normalized[loc[4]:loc[5]])
		if err != nil {
			continue
		}
		replacement := fmt.Sprintf("%s >= '%04d-01-01' AND %s < '%04d-01-01'",
			column, year, column, year+1)
		return normalized[:loc[0]] + replacement + normalized[loc[1]:], true
	}
	return "", false
}

// GuidanceRewrite renders collected guidance lines as a non-executable
// advisory rewrite, one comment per line. Empty when no guidance exists.
func GuidanceRewrite(guidance []string) string {
	if len(guidance) == 0 {
		return ""
	}
	lines := make([]string, len(guidance))
	for i, g := range guidance {
		lines[i] = "-- " + g
	}
	return strings.Join(lines, "\n")
}
