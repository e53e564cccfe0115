package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sqladvisor-go/internal/history"
	"sqladvisor-go/internal/model"
	"sqladvisor-go/internal/service"
)

func newTestHandler() (*AnalyzeHandler, *history.MemoryStore) {
	store := history.NewMemoryStore()
	advisor := service.NewAdvisor(nil, store, time.Second)
	return NewAnalyzeHandler(advisor), store
}

func TestAnalyzeHandler(t *testing.T) {
	h, store := newTestHandler()

	body := `{"sql_text": "SELECT * FROM Orders WHERE CustomerId = @id"}`
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Analyze(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var result model.AnalysisResult
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if result.Summary == "" {
		t.Error("summary must always be present")
	}
	if len(result.Findings) == 0 {
		t.Errorf("expected findings for SELECT *: %v", result.Findings)
	}
	if len(result.TestSteps) == 0 {
		t.Error("test_steps must never be empty")
	}

	records, _ := store.Recent(req.Context(), 10)
	if len(records) != 1 {
		t.Errorf("expected 1 history record, got %d", len(records))
	}
}

func TestAnalyzeHandlerValidation(t *testing.T) {
	h, _ := newTestHandler()

	testCases := []struct {
		name string
		body string
		want int
	}{
		{"empty sql_text", `{"sql_text": ""}`, http.StatusBadRequest},
		{"whitespace sql_text", `{"sql_text": "   "}`, http.StatusBadRequest},
		{"missing sql_text", `{"dbms": "postgres"}`, http.StatusBadRequest},
		{"malformed body", `{not json`, http.StatusBadRequest},
		{"valid", `{"sql_text": "SELECT 1"}`, http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(tc.body))
			w := httptest.NewRecorder()
			h.Analyze(w, req)
			if w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestAnalyzeHandlerMethod(t *testing.T) {
	h, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/analyze", nil)
	w := httptest.NewRecorder()
	h.Analyze(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	h, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.Health(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "OK" {
		t.Errorf("body = %q, want OK", w.Body.String())
	}
}

func TestHistoryHandler(t *testing.T) {
	store := history.NewMemoryStore()
	advisor := service.NewAdvisor(nil, store, time.Second)
	analyze := NewAnalyzeHandler(advisor)
	hist := NewHistoryHandler(store)

	for i := 0; i < 3; i++ {
		body := `{"sql_text": "SELECT * FROM T"}`
		req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(body))
		analyze.Analyze(httptest.NewRecorder(), req)
	}

	req := httptest.NewRequest(http.MethodGet, "/history?limit=2", nil)
	w := httptest.NewRecorder()
	hist.Recent(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var records []*model.HistoryRecord
	if err := json.NewDecoder(w.Body).Decode(&records); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("got %d records, want 2", len(records))
	}
}
