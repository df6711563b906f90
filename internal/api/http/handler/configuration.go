package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	apiErrors "github.com/dtroode/filegate-session/internal/api/errors"
	"github.com/dtroode/filegate-session/internal/api/http/respond"
	"github.com/dtroode/filegate-session/internal/credential"
	"github.com/dtroode/filegate-session/internal/logger"
	"github.com/dtroode/filegate-session/internal/model"
)

// ConfigurationService manages backend credentials of the authenticated session.
type ConfigurationService interface {
	SaveServiceConfiguration(ctx context.Context, session model.Session, serviceName string, params credential.Params) error
	PublicServiceConfiguration(serviceName string) ([]model.RegistryEntry, error)
	VerifyServiceConfiguration(ctx context.Context, serviceName string, params credential.Params) error
	ExchangeOAuthCode(ctx context.Context, session model.Session, serviceName, host, code string) error
}

// Configuration handles backend service configuration endpoints.
type Configuration struct {
	service        ConfigurationService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewConfiguration creates a new Configuration handler.
func NewConfiguration(service ConfigurationService, contextManager model.ContextManager, logger *logger.Logger) *Configuration {
	return &Configuration{service: service, contextManager: contextManager, logger: logger}
}

type publicConfigurationResponse struct {
	Configuration []model.RegistryEntry `json:"configuration"`
}

type oauthCodeRequest struct {
	Host string `json:"host"`
	Code string `json:"code"`
}

// GetServiceConfiguration returns the public registry entries of a service.
// GET /session/configuration/{serviceName}
func (h *Configuration) GetServiceConfiguration(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.PublicServiceConfiguration(chi.URLParam(r, "serviceName"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, publicConfigurationResponse{Configuration: entries})
}

// SaveServiceConfiguration stores backend credentials in the session.
// POST /session/configuration/{serviceName}
func (h *Configuration) SaveServiceConfiguration(w http.ResponseWriter, r *http.Request) {
	session, ok := h.contextManager.GetSessionFromContext(r.Context())
	if !ok {
		handleError(w, h.logger, apiErrors.NewErrUnauthorized(""))
		return
	}

	params := credential.Params{}
	if err := decodeBody(r, &params); err != nil {
		handleError(w, h.logger, err)
		return
	}

	serviceName := chi.URLParam(r, "serviceName")
	if err := h.service.SaveServiceConfiguration(r.Context(), session, serviceName, params); err != nil {
		h.logger.Error("Configuration handler: failed to save service configuration",
			"session_id", session.ID,
			"service", serviceName,
			"error", err.Error())
		handleError(w, h.logger, err)
		return
	}

	respond.Empty(w)
}

// VerifyServiceConfiguration checks backend credentials without storing them.
// POST /session/configuration/{serviceName}/verify
func (h *Configuration) VerifyServiceConfiguration(w http.ResponseWriter, r *http.Request) {
	params := credential.Params{}
	if err := decodeBody(r, &params); err != nil {
		handleError(w, h.logger, err)
		return
	}

	if err := h.service.VerifyServiceConfiguration(r.Context(), chi.URLParam(r, "serviceName"), params); err != nil {
		handleError(w, h.logger, err)
		return
	}

	respond.Empty(w)
}

// ExchangeOAuthCode trades an OAuth authorization code for backend credentials.
// POST /session/get-oauth-token/{serviceName}
func (h *Configuration) ExchangeOAuthCode(w http.ResponseWriter, r *http.Request) {
	session, ok := h.contextManager.GetSessionFromContext(r.Context())
	if !ok {
		handleError(w, h.logger, apiErrors.NewErrUnauthorized(""))
		return
	}

	var req oauthCodeRequest
	if err := decodeBody(r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	serviceName := chi.URLParam(r, "serviceName")
	if err := h.service.ExchangeOAuthCode(r.Context(), session, serviceName, req.Host, req.Code); err != nil {
		h.logger.Error("Configuration handler: oauth code exchange failed",
			"session_id", session.ID,
			"service", serviceName,
			"error", err.Error())
		handleError(w, h.logger, err)
		return
	}

	respond.Empty(w)
}
