package service

import (
	"strings"

	"sqladvisor-go/internal/model"
)

// Canonical fallback texts. Exact wording is part of the contract with the UI.
const (
	RewriteSentinel = "no query rewrite suggestions were identified"

	summaryAugmentAbsent = "static analysis completed (augmentation not configured)"
	summaryAugmentFailed = "static analysis completed (augmentation unavailable)"
	summaryAugmentRan    = "static analysis completed (augmentation merged)"
)

// DefaultTestSteps is the canonical validation checklist used when no source
// supplies one.
func DefaultTestSteps() []string {
	return []string{
		"capture the current execution plan and runtime metrics as a baseline",
		"apply one change at a time",
		"compare estimated vs. actual plans after each change",
		"benchmark against representative data volumes",
	}
}

// DedupeStrings removes exact duplicates, first occurrence keeping its
// position. Running it twice yields the same sequence as running it once.
func DedupeStrings(in []string) []string {
	if len(in) == 0 {
		return in
	}
	seen := make(map[string]bool, len(in))
	out := in[:0:0]
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// EquivalentSQL reports whether two texts are the same query modulo
// whitespace and case. Used to suppress rewrites that merely echo the input.
func EquivalentSQL(a, b string) bool {
	return Flatten(a) == Flatten(b)
}

// augmentOutcome records how the optional augmentation pass ended.
type augmentOutcome int

const (
	augmentAbsent augmentOutcome = iota
	augmentSucceeded
	augmentFailed
)

// mergeResults reconciles the static pass with the optional augmented pass.
// Static entries always precede augmented ones before dedupe; that ordering
// is part of the contract, not an accident of execution order.
func mergeResults(static *model.AnalysisResult, aug *model.AdvisoryResult, normalizedSQL string, outcome augmentOutcome) *model.AnalysisResult {
	out := &model.AnalysisResult{}

	if aug == nil {
		aug = &model.AdvisoryResult{}
	}
	out.Findings = DedupeStrings(append(append([]string{}, static.Findings...), aug.Findings...))
	out.IndexRecommendations = DedupeStrings(append(append([]string{}, static.IndexRecommendations...), aug.IndexRecommendations...))
	out.Risks = DedupeStrings(append(append([]string{}, static.Risks...), aug.Risks...))

	out.RewriteSQL = strings.TrimSpace(aug.RewriteSQL)
	if out.RewriteSQL != "" && EquivalentSQL(out.RewriteSQL, normalizedSQL) {
		out.RewriteSQL = "" // echo of the input, discard
	}
	if out.RewriteSQL == "" {
		out.RewriteSQL = strings.TrimSpace(static.RewriteSQL)
	}
	if out.RewriteSQL != "" && EquivalentSQL(out.RewriteSQL, normalizedSQL) {
		out.RewriteSQL = ""
	}
	if out.RewriteSQL == "" {
		out.RewriteSQL = RewriteSentinel
	}

	out.Summary = strings.TrimSpace(aug.Summary)
	if out.Summary == "" {
		switch outcome {
		case augmentSucceeded:
			out.Summary = summaryAugmentRan
		case augmentFailed:
			out.Summary = summaryAugmentFailed
		default:
			out.Summary = summaryAugmentAbsent
		}
	}

	out.TestSteps = aug.TestSteps
	if len(out.TestSteps) == 0 {
		out.TestSteps = DefaultTestSteps()
	}

	return out
}
