package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"shorturl/pkg/logger"

	"github.com/go-chi/chi/v5"
)

// maxBodyBytes caps the size of a shorten request body
const maxBodyBytes = 1 << 20

// URLService interface defines the service methods needed by the handler
// Using an interface instead of concrete type allows for easy mocking in tests
type URLService interface {
	Shorten(ctx context.Context, longURL string) (string, error)
	Resolve(ctx context.Context, id string) (string, error)
	Ready(ctx context.Context) error
}

// Handler holds dependencies for HTTP handlers
// This is DEPENDENCY INJECTION - we pass dependencies through the constructor
// instead of using global variables or creating them inside handlers
type Handler struct {
	urlService URLService
	logger     *logger.Logger
	baseURL    string // Base URL for generating short URLs (e.g., "http://127.0.0.1:8080")
}

// NewHandler creates a new HTTP handler
func NewHandler(urlService URLService, log *logger.Logger, baseURL string) *Handler {
	return &Handler{
		urlService: urlService,
		logger:     log,
		baseURL:    baseURL,
	}
}

// CreateURLRequest is the body of POST /
type CreateURLRequest struct {
	URL string `json:"url"`
}

// CreateURLResponse carries the full short URL
type CreateURLResponse struct {
	URL string `json:"url"`
}

// CreateURL handles POST /
func (h *Handler) CreateURL(w http.ResponseWriter, r *http.Request) {
	var req CreateURLRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "INVALID_JSON", "Invalid JSON body")
		return
	}

	id, err := h.urlService.Shorten(r.Context(), req.URL)
	if err != nil {
		h.logger.WithContext(r.Context()).Warn("Failed to shorten URL", "url", req.URL, "error", err)
		respondServiceError(w, err)
		return
	}

	h.logger.WithContext(r.Context()).Info("Shortened URL", "id", id, "url", req.URL)
	respondJSON(w, http.StatusCreated, CreateURLResponse{URL: h.baseURL + "/" + id})
}

// RedirectURL handles GET /{id}
func (h *Handler) RedirectURL(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	longURL, err := h.urlService.Resolve(r.Context(), id)
	if err != nil {
		h.logger.WithContext(r.Context()).Warn("Failed to resolve short id", "id", id, "error", err)
		respondServiceError(w, err)
		return
	}

	// 308 keeps the method and tells clients the mapping is permanent
	http.Redirect(w, r, longURL, http.StatusPermanentRedirect)
}

// HealthCheck handles GET /health/live
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// ReadyCheck handles GET /health/ready
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.urlService.Ready(r.Context()); err != nil {
		h.logger.WithContext(r.Context()).Error("Readiness check failed", "error", err)
		respondError(w, http.StatusServiceUnavailable, "NOT_READY", "Mapping store unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
