package handler

import (
	"net/http"
	"strconv"

	"sqladvisor-go/internal/history"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// HistoryHandler serves the recorded-analyses endpoint.
type HistoryHandler struct {
	store history.Store
}

// NewHistoryHandler creates the handler.
func NewHistoryHandler(store history.Store) *HistoryHandler {
	return &HistoryHandler{store: store}
}

// Recent handles GET /history?limit=N.
func (h *HistoryHandler) Recent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	records, err := h.store.Recent(r.Context(), limit)
	if err != nil {
		http.Error(w, "failed to read history", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, records)
}
