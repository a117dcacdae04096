package handlers

import (
	"net/http"

	"github.com/cogpy/probreacog/internal/orchestrator"
)

type StatusHandler struct {
	orch *orchestrator.Orchestrator
}

func NewStatusHandler(orch *orchestrator.Orchestrator) *StatusHandler {
	return &StatusHandler{orch: orch}
}

func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.orch.Status())
}
