package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	apiErrors "github.com/dtroode/filegate-session/internal/api/errors"
	"github.com/dtroode/filegate-session/internal/api/http/respond"
	"github.com/dtroode/filegate-session/internal/logger"
	"github.com/dtroode/filegate-session/internal/model"
	"github.com/dtroode/filegate-session/internal/service"
)

// ApplicationService provisions sessions on behalf of registered applications.
type ApplicationService interface {
	CreateSession(ctx context.Context, app model.Application, req service.ApplicationSessionRequest) (uuid.UUID, error)
	UpdateSession(ctx context.Context, app model.Application, sessionID uuid.UUID, params service.BackendParams) error
}

// Application handles application-provisioned sessions.
type Application struct {
	service        ApplicationService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewApplication creates a new Application handler.
func NewApplication(service ApplicationService, contextManager model.ContextManager, logger *logger.Logger) *Application {
	return &Application{service: service, contextManager: contextManager, logger: logger}
}

type applicationSessionResponse struct {
	SessionID uuid.UUID `json:"sessionId"`
}

// CreateSession creates a session owned by the calling application.
// POST /session/application
func (h *Application) CreateSession(w http.ResponseWriter, r *http.Request) {
	app, ok := h.contextManager.GetApplicationFromContext(r.Context())
	if !ok {
		handleError(w, h.logger, apiErrors.NewErrUnauthorized(""))
		return
	}

	var req service.ApplicationSessionRequest
	if err := decodeBody(r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	id, err := h.service.CreateSession(r.Context(), app, req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	h.logger.Info("Application handler: session created",
		"application", app.Name,
		"session_id", id)

	respond.JSON(w, http.StatusOK, applicationSessionResponse{SessionID: id})
}

// UpdateSession merges backend credentials into a session the application created.
// PUT /session/application/{sessionId}
func (h *Application) UpdateSession(w http.ResponseWriter, r *http.Request) {
	app, ok := h.contextManager.GetApplicationFromContext(r.Context())
	if !ok {
		handleError(w, h.logger, apiErrors.NewErrUnauthorized(""))
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "sessionId"))
	if err != nil {
		handleError(w, h.logger, apiErrors.NewErrForbidden())
		return
	}

	var req struct {
		Session service.BackendParams `json:"session"`
	}
	if err := decodeBody(r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	if err := h.service.UpdateSession(r.Context(), app, id, req.Session); err != nil {
		handleError(w, h.logger, err)
		return
	}

	respond.Empty(w)
}
