package model

import "time"

// Supported dbms values. Anything else falls back to DBMSSQLServer.
const (
	DBMSSQLServer = "sqlserver"
	DBMSPostgres  = "postgres"
	DBMSMySQL     = "mysql"
)

// AnalysisRequest is one query submitted for review. Immutable once decoded.
type AnalysisRequest struct {
	DBMS    string `json:"dbms,omitempty"`    // sqlserver | postgres | mysql
	SQLText string `json:"sql_text"`          // required
	PlanXML string `json:"plan_xml,omitempty"` // execution-plan markup
	Context string `json:"context,omitempty"` // known indexes, row counts, symptoms
	Version string `json:"version,omitempty"` // engine version hint
}

// Dialect returns the effective dbms, defaulting to sqlserver.
func (r *AnalysisRequest) Dialect() string {
	switch r.DBMS {
	case DBMSPostgres, DBMSMySQL:
		return r.DBMS
	default:
		return DBMSSQLServer
	}
}

// AnalysisResult is the advisory response for one request.
// An empty RewriteSQL never reaches the caller; the orchestrator substitutes
// a sentinel, and TestSteps is always non-empty.
type AnalysisResult struct {
	Summary              string   `json:"summary"`
	Findings             []string `json:"findings"`
	RewriteSQL           string   `json:"rewrite_sql"`
	IndexRecommendations []string `json:"index_recommendations"`
	Risks                []string `json:"risks"`
	TestSteps            []string `json:"test_steps"`
}

// AdvisoryResult is what the external augmentation pass proposes. Same field
// set as AnalysisResult; kept separate so the merge step is explicit about
// which side each value came from.
type AdvisoryResult struct {
	Summary              string   `json:"summary"`
	Findings             []string `json:"findings"`
	RewriteSQL           string   `json:"rewrite_sql"`
	IndexRecommendations []string `json:"index_recommendations"`
	Risks                []string `json:"risks"`
	TestSteps            []string `json:"test_steps"`
}

// HistoryRecord is one completed analysis as recorded in the history store.
type HistoryRecord struct {
	DBMS      string    `json:"dbms"`
	SQLText   string    `json:"sql_text"`
	Summary   string    `json:"summary"`
	Findings  int       `json:"findings"`
	Augmented bool      `json:"augmented"`
	CreatedAt time.Time `json:"created_at"`
}
