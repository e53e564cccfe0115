package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"sqladvisor-go/internal/fetcher"
	"sqladvisor-go/internal/history"
	"sqladvisor-go/internal/model"
)

// Augmenter is the optional generative enrichment pass. A nil Augmenter means
// the capability is absent and the static pass stands alone.
type Augmenter interface {
	GenerateAdvisory(ctx context.Context, req *model.AnalysisRequest, normalizedSQL, planFragment string) (*model.AdvisoryResult, error)
}

// Advisor runs the static pass, the optional augmentation, and the merge.
type Advisor struct {
	augmenter Augmenter
	history   history.Store
	timeout   time.Duration
}

// NewAdvisor creates the advisory engine. augmenter and store may be nil.
func NewAdvisor(augmenter Augmenter, store history.Store, timeout time.Duration) *Advisor {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Advisor{augmenter: augmenter, history: store, timeout: timeout}
}

// StaticAnalyze is the deterministic pass: normalize, detect, rewrite, build
// index candidates, harvest the plan. It never fails; unrecognizable input
// degrades to an empty result. Also returns the normalized query text.
func StaticAnalyze(req *model.AnalysisRequest) (*model.AnalysisResult, string) {
	normalized := NormalizeSQL(req.SQLText)
	flat := Flatten(normalized)

	det := RunDetectors(flat)
	findings := det.Findings
	risks := det.Risks

	rewrite, fired := RewriteDateEquality(normalized, req.Dialect())
	if fired {
		// A structural rewrite implies the non-sargable finding.
		if !containsString(findings, findingNonSargable) {
			findings = append(findings, findingNonSargable)
		}
	} else {
		rewrite = GuidanceRewrite(det.Guidance)
	}
	if rewrite != "" && EquivalentSQL(rewrite, normalized) {
		rewrite = "" // never echo the input back as a rewrite
	}

	indexes := BuildIndexCandidates(flat)

	if req.PlanXML != "" {
		if digest := fetcher.SummarizePlan(req.PlanXML); digest != nil {
			findings = append(findings, digest.Findings...)
			indexes = append(indexes, digest.Indexes...)
		}
	}

	return &model.AnalysisResult{
		Findings:             DedupeStrings(findings),
		RewriteSQL:           rewrite,
		IndexRecommendations: DedupeStrings(indexes),
		Risks:                DedupeStrings(risks),
	}, normalized
}

// Analyze produces the final advisory response for one request. Augmentation
// failure is a degraded mode, never an error: the static result is returned
// with one diagnostic finding appended.
func (a *Advisor) Analyze(ctx context.Context, req *model.AnalysisRequest) *model.AnalysisResult {
	static, normalized := StaticAnalyze(req)

	var aug *model.AdvisoryResult
	outcome := augmentAbsent
	if a.augmenter != nil {
		callCtx, cancel := context.WithTimeout(ctx, a.timeout)
		res, err := a.augmenter.GenerateAdvisory(callCtx, req, normalized, fetcher.PlanPromptFragment(req.PlanXML))
		cancel()
		if err != nil {
			// one attempt only, no retry
			outcome = augmentFailed
			log.Printf("advisory augmentation failed: %v", err)
			static.Findings = append(static.Findings,
				fmt.Sprintf("advisory augmentation unavailable: %s", shortReason(err)))
		} else {
			outcome = augmentSucceeded
			aug = res
		}
	}

	result := mergeResults(static, aug, normalized, outcome)
	a.record(ctx, req, result, outcome == augmentSucceeded)
	return result
}

// record writes the completed analysis to the history store, best effort.
// History is write-behind only; it never feeds back into analysis output.
func (a *Advisor) record(ctx context.Context, req *model.AnalysisRequest, result *model.AnalysisResult, augmented bool) {
	if a.history == nil {
		return
	}
	rec := &model.HistoryRecord{
		DBMS:      req.Dialect(),
		SQLText:   req.SQLText,
		Summary:   result.Summary,
		Findings:  len(result.Findings),
		Augmented: augmented,
		CreatedAt: time.Now(),
	}
	if err := a.history.Save(ctx, rec); err != nil {
		log.Printf("history save failed: %v", err)
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func shortReason(err error) string {
	msg := err.Error()
	if len(msg) > 120 {
		msg = msg[:120]
	}
	return msg
}
