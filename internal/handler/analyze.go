package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"sqladvisor-go/internal/model"
	"sqladvisor-go/internal/service"
)

// AnalyzeHandler is the HTTP surface of the advisory engine.
type AnalyzeHandler struct {
	advisor *service.Advisor
}

// NewAnalyzeHandler creates the handler.
func NewAnalyzeHandler(advisor *service.Advisor) *AnalyzeHandler {
	return &AnalyzeHandler{advisor: advisor}
}

// Analyze handles POST /analyze.
// Body: AnalysisRequest JSON. Responds 200 with an AnalysisResult whether or
// not augmentation succeeded; degradation lives in the payload, not the
// status code. Missing sql_text is the only client error.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req model.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.SQLText) == "" {
		http.Error(w, "sql_text is required", http.StatusBadRequest)
		return
	}

	log.Printf("Starting analysis (dbms=%s, %d bytes)", req.Dialect(), len(req.SQLText))

	result := h.advisor.Analyze(r.Context(), &req)
	writeJSON(w, http.StatusOK, result)

	log.Printf("Analysis completed (%d findings)", len(result.Findings))
}

// Health handles GET /health.
func (h *AnalyzeHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
