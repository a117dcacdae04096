package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cogpy/probreacog/internal/atomspace"
	"github.com/cogpy/probreacog/internal/domain"
	"github.com/cogpy/probreacog/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps engine error kinds onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrCycle),
		errors.Is(err, domain.ErrDependency):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, atomspace.ErrNotFound), errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
