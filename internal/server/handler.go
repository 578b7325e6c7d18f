// Package server exposes the command dispatcher over HTTP as JSON.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/at-ishikawa/revisit/internal/dispatch"
	"github.com/at-ishikawa/revisit/internal/review"
)

// Service is the part of dispatch.Dispatcher the handler needs.
type Service interface {
	Dispatch(ctx context.Context, cmd dispatch.Command) (review.State, error)
	State() review.State
	Replace(ctx context.Context, base, state review.State) (review.State, error)
	Schedule(id string) (dispatch.Schedule, error)
}

type ReviewHandler struct {
	service Service
	logger  *slog.Logger
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewReviewHandler(service Service, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		logger:  logger.With("component", "server"),
	}
}

// Routes returns the router with every endpoint and the common middleware.
func (h *ReviewHandler) Routes(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(CORS(allowedOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.GetState)
		r.Put("/state", h.PutState)
		r.Post("/commands", h.PostCommand)
		r.Get("/items/{id}/schedule", h.GetSchedule)
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			h.logger.Error("failed to write health check response", "error", err)
		}
	})
	return r
}

func (h *ReviewHandler) GetState(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, h.service.State())
}

// PutState replaces the whole state, which is how an import reaches a running server.
// It answers 409 when the state changed after Base was read.
func (h *ReviewHandler) PutState(w http.ResponseWriter, r *http.Request) {
	var request dispatch.ReplaceRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.respondWithError(w, r, fmt.Errorf("%w: %s", review.ErrInvalidCommand, err))
		return
	}

	got, err := h.service.Replace(r.Context(), request.Base, request.State)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, got)
}

func (h *ReviewHandler) PostCommand(w http.ResponseWriter, r *http.Request) {
	cmd, err := dispatch.DecodeCommand(r.Body)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	state, err := h.service.Dispatch(r.Context(), cmd)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, state)
}

func (h *ReviewHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Schedule(chi.URLParam(r, "id"))
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, result)
}

// StatusCode maps domain errors to HTTP status codes.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, review.ErrInvalidCommand):
		return http.StatusBadRequest
	case errors.Is(err, review.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, review.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *ReviewHandler) respondWithJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", "error", err)
	}
}

func (h *ReviewHandler) respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusCode(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "method", r.Method, "error", err)
		message = "internal error"
	} else {
		h.logger.Debug("request rejected", "path", r.URL.Path, "method", r.Method, "status", status, "error", err)
	}
	h.respondWithJSON(w, status, ErrorResponse{Error: message})
}
