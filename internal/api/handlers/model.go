package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cogpy/probreacog/internal/domain"
	"github.com/cogpy/probreacog/internal/orchestrator"
)

type ModelHandler struct {
	orch *orchestrator.Orchestrator
}

func NewModelHandler(orch *orchestrator.Orchestrator) *ModelHandler {
	return &ModelHandler{orch: orch}
}

// Load ingests a model descriptor into the knowledge graph.
func (h *ModelHandler) Load(w http.ResponseWriter, r *http.Request) {
	var desc domain.ModelDescriptor
	if err := json.NewDecoder(r.Body).Decode(&desc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if desc.Name == "" {
		writeError(w, http.StatusBadRequest, "model name is required")
		return
	}

	atom, err := h.orch.LoadModel(desc)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"model":       atom.Name,
		"atoms":       h.orch.Space().Len(),
		"truth_value": atom.Truth,
	})
}
