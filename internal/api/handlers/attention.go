package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cogpy/probreacog/internal/domain"
	"github.com/cogpy/probreacog/internal/orchestrator"
)

type AttentionHandler struct {
	orch *orchestrator.Orchestrator
}

func NewAttentionHandler(orch *orchestrator.Orchestrator) *AttentionHandler {
	return &AttentionHandler{orch: orch}
}

type biasAttentionRequest struct {
	Atoms     []string `json:"atoms"`
	Intensity float64  `json:"intensity,omitempty"`
}

// Bias stimulates named atoms so they dominate upcoming scheduling rounds.
func (h *AttentionHandler) Bias(w http.ResponseWriter, r *http.Request) {
	var req biasAttentionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Atoms) == 0 {
		writeError(w, http.StatusBadRequest, "atoms is required")
		return
	}
	if req.Intensity <= 0 {
		req.Intensity = 50
	}

	h.orch.BiasAttention(req.Atoms, req.Intensity)

	writeJSON(w, http.StatusOK, h.orch.Status())
}

// Top lists the most important atoms, optionally filtered by type.
func (h *AttentionHandler) Top(w http.ResponseWriter, r *http.Request) {
	n := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		n = parsed
	}
	atomType := domain.AtomType(r.URL.Query().Get("type"))

	writeJSON(w, http.StatusOK, map[string]any{
		"atoms": h.orch.TopAtoms(n, atomType),
	})
}
