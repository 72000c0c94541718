package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"rievent_server/services"
)

// respondJSON writes payload with the right content type.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError maps the service error taxonomy to HTTP statuses.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, map[string]string{"error": err.Error()})
}
