package handlers

import (
	"net/http"

	"github.com/cogpy/probreacog/internal/orchestrator"
	"github.com/go-chi/chi/v5"
)

type ReasoningHandler struct {
	orch *orchestrator.Orchestrator
}

func NewReasoningHandler(orch *orchestrator.Orchestrator) *ReasoningHandler {
	return &ReasoningHandler{orch: orch}
}

// Goal reports the posterior reachability estimate for a named goal.
func (h *ReasoningHandler) Goal(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	reasoning, err := h.orch.ReasonAboutGoal(name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reasoning)
}
