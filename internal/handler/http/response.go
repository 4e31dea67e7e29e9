package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"shorturl/internal/domain"
)

// Response helpers for consistent API responses

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	// Headers are already sent; nothing useful to do on failure
	_ = json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, statusCode int, code, message string) {
	respondJSON(w, statusCode, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// respondServiceError maps a domain error kind to a status code
// Anything unrecognized is a server-side failure and its details stay in the logs
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		respondError(w, http.StatusUnprocessableEntity, "INVALID_URL", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "URL not found")
	case errors.Is(err, domain.ErrIDSpaceExhausted):
		respondError(w, http.StatusInternalServerError, "ID_SPACE_EXHAUSTED", "Could not allocate a short id")
	case errors.Is(err, domain.ErrStorage):
		respondError(w, http.StatusInternalServerError, "STORAGE_ERROR", "A storage error occurred")
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal server error occurred")
	}
}
