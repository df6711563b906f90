package service

import (
	"context"

	"github.com/google/uuid"

	apiErrors "github.com/dtroode/filegate-session/internal/api/errors"
	"github.com/dtroode/filegate-session/internal/credential"
	"github.com/dtroode/filegate-session/internal/logger"
	"github.com/dtroode/filegate-session/internal/metrics"
	"github.com/dtroode/filegate-session/internal/model"
)

// BackendParams carries at most one backend record; Owncloud wins when both are set.
type BackendParams struct {
	Owncloud credential.Params `json:"owncloud,omitempty"`
	S3       credential.Params `json:"s3,omitempty"`
}

func (p BackendParams) selected() (model.BackendKind, credential.Params, bool) {
	switch {
	case p.Owncloud != nil:
		return model.BackendOwncloud, p.Owncloud, true
	case p.S3 != nil:
		return model.BackendS3, p.S3, true
	}
	return "", nil, false
}

// ApplicationSessionRequest asks for a session on behalf of a user.
type ApplicationSessionRequest struct {
	Email   string        `json:"email"`
	Name    string        `json:"name"`
	Session BackendParams `json:"session"`
}

// Application provisions and updates sessions for registered applications.
// Only the application that created a session may change it.
type Application struct {
	registry  ConfigSource
	users     model.UserStore
	sessions  model.SessionStore
	validator *credential.Validator
	merger    *Merger
	metrics   metrics.MetricsCollector
	logger    *logger.Logger
}

func NewApplication(
	registry ConfigSource,
	users model.UserStore,
	sessions model.SessionStore,
	validator *credential.Validator,
	merger *Merger,
	metrics metrics.MetricsCollector,
	logger *logger.Logger,
) *Application {
	return &Application{
		registry:  registry,
		users:     users,
		sessions:  sessions,
		validator: validator,
		merger:    merger,
		metrics:   metrics,
		logger:    logger,
	}
}

// ResolveApplication maps a bearer secret to its registered application.
func (s *Application) ResolveApplication(secret string) (model.Application, error) {
	app, ok := s.registry.Current().ApplicationBySecret(secret)
	if !ok {
		return model.Application{}, apiErrors.NewErrUnauthorized("unknown application")
	}
	return app, nil
}

// CreateSession creates a session owned by app for the requested user.
// Failures after the input check are reported as Forbidden.
func (s *Application) CreateSession(ctx context.Context, app model.Application, req ApplicationSessionRequest) (uuid.UUID, error) {
	if req.Email == "" || req.Name == "" {
		s.logger.Error("Application service: email or name not provided",
			"application", app.Name)
		return uuid.Nil, apiErrors.NewErrBadRequest("email and name are required")
	}

	if _, err := s.users.FindOrCreate(ctx, req.Email, req.Name); err != nil {
		return uuid.Nil, s.forbidden("create session", app, err)
	}

	data := model.SessionData{}
	if kind, params, ok := req.Session.selected(); ok {
		record, err := s.validator.Assemble(kind, params)
		if err != nil {
			return uuid.Nil, s.forbidden("create session", app, err)
		}
		merged, err := s.merger.Compose(string(kind), record.Fields())
		if err != nil {
			return uuid.Nil, s.forbidden("create session", app, err)
		}
		data = data.WithService(string(kind), merged)
	}

	email, creator := req.Email, app.Name
	session, err := s.sessions.Create(ctx, model.Session{
		Email:   &email,
		Creator: &creator,
		Data:    data,
	})
	if err != nil {
		return uuid.Nil, s.forbidden("create session", app, err)
	}

	s.metrics.RecordSessionIssued("application")
	s.logger.Info("Application service: session created",
		"application", app.Name,
		"session_id", session.ID.String())

	return session.ID, nil
}

// UpdateSession merges a backend record into a session app created.
// Every failure, including an ownership mismatch, is reported as Forbidden.
func (s *Application) UpdateSession(ctx context.Context, app model.Application, sessionID uuid.UUID, params BackendParams) error {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return s.forbidden("update session", app, err)
	}

	if session.Creator == nil || *session.Creator != app.Name {
		s.logger.Warn("Application service: session owned by another application",
			"application", app.Name,
			"session_id", sessionID.String())
		return apiErrors.NewErrForbidden()
	}

	kind, raw, ok := params.selected()
	if !ok {
		return nil
	}

	record, err := s.validator.Assemble(kind, raw)
	if err != nil {
		return s.forbidden("update session", app, err)
	}

	if err := s.merger.merge(ctx, session, string(kind), record.Fields()); err != nil {
		return s.forbidden("update session", app, err)
	}

	return nil
}

func (s *Application) forbidden(op string, app model.Application, cause error) error {
	s.logger.Error("Application service: failed to "+op,
		"application", app.Name,
		"error", cause.Error())
	return apiErrors.NewErrForbidden()
}
