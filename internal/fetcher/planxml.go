package fetcher

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MaxPlanPromptBytes caps how much execution-plan text goes into the
// augmentation prompt.
const MaxPlanPromptBytes = 20000

const maxDigestOperators = 24

// PlanDigest is the structured view harvested from execution-plan markup.
type PlanDigest struct {
	Operators []string // "Clustered Index Scan (est. 1500 rows)"
	Findings  []string
	Indexes   []string
}

// SummarizePlan extracts operator names, scan warnings, and missing-index
// column groups from showplan XML. Returns nil when the markup yields nothing
// recognizable; callers treat that as "no plan insight", never as a failure.
func SummarizePlan(planXML string) *PlanDigest {
	planXML = strings.TrimSpace(planXML)
	if planXML == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(planXML))
	if err != nil {
		return nil
	}

	digest := &PlanDigest{}

	// The html parser lower-cases element and attribute names, so showplan's
	// RelOp/PhysicalOp arrive as relop/physicalop.
	doc.Find("relop").Each(func(i int, s *goquery.Selection) {
		op := s.AttrOr("physicalop", "")
		if op == "" {
			return
		}
		line := op
		if rows := s.AttrOr("estimaterows", ""); rows != "" {
			line = fmt.Sprintf("%s (est. %s rows)", op, rows)
		}
		if len(digest.Operators) < maxDigestOperators {
			digest.Operators = append(digest.Operators, line)
		}
		if op == "Table Scan" || op == "Clustered Index Scan" {
			finding := fmt.Sprintf("execution plan reports a %s; verify an index can serve this access path", strings.ToLower(op))
			if obj := trimBrackets(s.Find("object").First().AttrOr("table", "")); obj != "" {
				finding = fmt.Sprintf("execution plan reports a %s on %s; verify an index can serve this access path", strings.ToLower(op), strings.ToLower(obj))
			}
			digest.Findings = append(digest.Findings, finding)
		}
	})

	doc.Find("missingindex").Each(func(i int, s *goquery.Selection) {
		table := strings.ToLower(trimBrackets(s.AttrOr("table", "")))
		if table == "" {
			return
		}
		var columns []string
		s.Find("columngroup").Each(func(j int, cg *goquery.Selection) {
			if !strings.EqualFold(cg.AttrOr("usage", ""), "EQUALITY") {
				return
			}
			cg.Find("column").Each(func(k int, col *goquery.Selection) {
				if name := strings.ToLower(trimBrackets(col.AttrOr("name", ""))); name != "" {
					columns = append(columns, name)
				}
			})
		})
		if len(columns) == 0 {
			return
		}
		digest.Indexes = append(digest.Indexes,
			fmt.Sprintf("CREATE INDEX ix_%s_%s ON %s (%s);", table, columns[0], table, strings.Join(columns, ", ")))
	})

	if len(digest.Operators) == 0 && len(digest.Findings) == 0 && len(digest.Indexes) == 0 {
		return nil
	}
	return digest
}

// PlanPromptFragment returns the plan text to embed in the augmentation
// prompt: a compact operator digest when the plan parses, the raw markup
// otherwise, truncated to MaxPlanPromptBytes either way.
func PlanPromptFragment(planXML string) string {
	planXML = strings.TrimSpace(planXML)
	if planXML == "" {
		return ""
	}
	fragment := planXML
	if digest := SummarizePlan(planXML); digest != nil && len(digest.Operators) > 0 {
		fragment = "Plan operators:\n" + strings.Join(digest.Operators, "\n")
	}
	if len(fragment) > MaxPlanPromptBytes {
		fragment = fragment[:MaxPlanPromptBytes]
	}
	return fragment
}

func trimBrackets(s string) string {
	return strings.Trim(s, "[]")
}
