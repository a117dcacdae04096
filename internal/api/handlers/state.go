package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cogpy/probreacog/internal/domain"
	"github.com/cogpy/probreacog/internal/orchestrator"
)

type StateHandler struct {
	orch *orchestrator.Orchestrator
}

func NewStateHandler(orch *orchestrator.Orchestrator) *StateHandler {
	return &StateHandler{orch: orch}
}

// Export returns the whole session as a portable snapshot document.
func (h *StateHandler) Export(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.orch.ExportState())
}

// Import replaces the session with the posted snapshot document.
func (h *StateHandler) Import(w http.ResponseWriter, r *http.Request) {
	var snap domain.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.orch.ImportState(&snap); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.orch.Status())
}

type saveSnapshotRequest struct {
	Name string `json:"name"`
}

// Save persists the current session under a name.
func (h *StateHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req saveSnapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	rec, err := h.orch.SaveSnapshot(r.Context(), req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}

// Restore loads the latest persisted snapshot with the given name.
func (h *StateHandler) Restore(w http.ResponseWriter, r *http.Request) {
	var req saveSnapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := h.orch.LoadSnapshot(r.Context(), req.Name); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.orch.Status())
}

// List lists persisted snapshots, newest first.
func (h *StateHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	recs, err := h.orch.ListSnapshots(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"snapshots": recs})
}
