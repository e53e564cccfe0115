package service

import (
	"regexp"
	"strings"
)

// Detection accumulates everything the rule set contributed for one query.
type Detection struct {
	Findings []string
	Risks    []string
	Guidance []string
}

// detectorRule inspects the flattened (whitespace-collapsed, upper-cased)
// query text. Rules are pure and run unconditionally in declared order, so
// output ordering is stable for identical input.
type detectorRule struct {
	id       string
	match    func(flat string) bool
	finding  string
	risk     string
	guidance string
}

var (
	reLeadingWildcard = regexp.MustCompile(`LIKE\s+N?['"]%`)
	reWhereFuncCall   = regexp.MustCompile(`\b(YEAR|MONTH|DAY|DATEPART|DATE_PART|DATEADD|DATEDIFF|EXTRACT|SUBSTRING|SUBSTR|UPPER|LOWER|LTRIM|RTRIM|TRIM|CAST|CONVERT|ISNULL|COALESCE)\s*\([^)]*\)\s*(=|<>|!=|<=|>=|<|>|LIKE|IN)`)
)

var detectorRules = []detectorRule{
	{
		id:       "select-star",
		match:    func(flat string) bool { return strings.Contains(flat, "SELECT *") },
		finding:  "avoid unbounded projection; select only required columns",
		risk:     "wider rows reduce cache efficiency",
		guidance: "replace `*` with explicit columns",
	},
	{
		id:       "leading-wildcard-like",
		match:    func(flat string) bool { return reLeadingWildcard.MatchString(flat) },
		finding:  "leading-wildcard pattern match defeats index seeks",
		risk:     "full scan risk on large tables",
		guidance: "consider full-text/trigram search",
	},
	{
		id:       "non-sargable-predicate",
		match:    func(flat string) bool { return reWhereFuncCall.MatchString(whereSegment(flat)) },
		finding:  findingNonSargable,
		guidance: "rewrite to a range predicate on the raw column",
	},
	{
		id: "disjunctive-where",
		match: func(flat string) bool {
			return strings.Contains(whereSegment(flat), " OR ")
		},
		finding: "disjunctive predicates may prevent index usage",
	},
	{
		id: "unindexed-order-by",
		match: func(flat string) bool {
			return strings.Contains(flat, "ORDER BY") && !strings.Contains(flat, "JOIN")
		},
		finding: "ensure an index supports the ORDER BY key(s)",
	},
	{
		id: "unfiltered-join",
		match: func(flat string) bool {
			return strings.Contains(flat, "JOIN") && !strings.Contains(flat, "WHERE")
		},
		finding: "unfiltered join may multiply row counts",
	},
}

// findingNonSargable is shared with the rewrite synthesizer, which guarantees
// it is present whenever a structural rewrite fires.
const findingNonSargable = "non-sargable predicate blocks index seeks"

// RunDetectors evaluates every rule against the flattened query text.
func RunDetectors(flat string) *Detection {
	det := &Detection{}
	for _, r := range detectorRules {
		if !r.match(flat) {
			continue
		}
		det.Findings = append(det.Findings, r.finding)
		if r.risk != "" {
			det.Risks = append(det.Risks, r.risk)
		}
		if r.guidance != "" {
			det.Guidance = append(det.Guidance, r.guidance)
		}
	}
	return det
}

// whereSegment returns the flattened text from the first WHERE onwards,
// or "" when the query has no WHERE clause.
func whereSegment(flat string) string {
	idx := strings.Index(flat, "WHERE ")
	if idx < 0 {
		return ""
	}
	return flat[idx:]
}
