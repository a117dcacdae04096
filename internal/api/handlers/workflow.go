package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cogpy/probreacog/internal/orchestrator"
	"github.com/go-chi/chi/v5"
)

type WorkflowHandler struct {
	orch *orchestrator.Orchestrator
}

func NewWorkflowHandler(orch *orchestrator.Orchestrator) *WorkflowHandler {
	return &WorkflowHandler{orch: orch}
}

type createWorkflowRequest struct {
	Model string `json:"model"`
	Name  string `json:"name,omitempty"`
}

// Create builds the standard analysis pipeline for a loaded model.
func (h *WorkflowHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Model == "" {
		writeError(w, http.StatusBadRequest, "model is required")
		return
	}
	if req.Name == "" {
		req.Name = "analysis"
	}

	id, err := h.orch.CreateAnalysisWorkflow(req.Model, req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"workflow_id": id})
}

// Execute runs a workflow to completion and returns the full report.
func (h *WorkflowHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	report, err := h.orch.ExecuteWorkflow(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
