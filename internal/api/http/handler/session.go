package handler

import (
	"context"
	"net/http"

	apiErrors "github.com/dtroode/filegate-session/internal/api/errors"
	"github.com/dtroode/filegate-session/internal/api/http/respond"
	"github.com/dtroode/filegate-session/internal/identity"
	"github.com/dtroode/filegate-session/internal/logger"
	"github.com/dtroode/filegate-session/internal/metrics"
	"github.com/dtroode/filegate-session/internal/model"
	"github.com/dtroode/filegate-session/internal/service"
)

// IdentityVerifier verifies an identity assertion for a provider.
type IdentityVerifier interface {
	Verify(ctx context.Context, provider identity.Provider, assertion identity.Assertion) (model.Identity, error)
}

// SessionIssuer issues a new session for a verified identity.
type SessionIssuer interface {
	IssueSession(ctx context.Context, provider string, identity model.Identity) (model.IssuedToken, error)
}

// Session handles session issuance and the session view.
type Session struct {
	verifier       IdentityVerifier
	issuer         SessionIssuer
	contextManager model.ContextManager
	metrics        metrics.MetricsCollector
	logger         *logger.Logger
}

// NewSession creates a new Session handler.
func NewSession(
	verifier IdentityVerifier,
	issuer SessionIssuer,
	contextManager model.ContextManager,
	metrics metrics.MetricsCollector,
	logger *logger.Logger,
) *Session {
	return &Session{
		verifier:       verifier,
		issuer:         issuer,
		contextManager: contextManager,
		metrics:        metrics,
		logger:         logger,
	}
}

type createSessionRequest struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Gateway string `json:"gateway"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// GetSession returns the privacy-filtered data of the authenticated session.
// GET /session
func (h *Session) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.contextManager.GetSessionFromContext(r.Context())
	if !ok {
		handleError(w, h.logger, apiErrors.NewErrUnauthorized(""))
		return
	}

	view := service.ViewSession(session)
	if view == nil {
		respond.Empty(w)
		return
	}
	respond.JSON(w, http.StatusOK, view)
}

// CreateOktaSession issues a session for an Okta access token.
// POST /session/okta
func (h *Session) CreateOktaSession(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, identity.ProviderOkta)
}

// CreateRevaSession issues a session for a Reva token.
// POST /session/reva
func (h *Session) CreateRevaSession(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, identity.ProviderReva)
}

func (h *Session) create(w http.ResponseWriter, r *http.Request, provider identity.Provider) {
	token, err := identity.BearerToken(r.Header.Get("Authorization"))
	if err != nil {
		h.metrics.RecordVerificationFailure(string(provider))
		handleError(w, h.logger, err)
		return
	}

	var req createSessionRequest
	if err := decodeBody(r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	verified, err := h.verifier.Verify(r.Context(), provider, identity.Assertion{
		Token:   token,
		Gateway: req.Gateway,
		Email:   req.Email,
		Name:    req.Name,
	})
	if err != nil {
		if apiErrors.HasCode(err, apiErrors.CodeUnauthorized) {
			h.metrics.RecordVerificationFailure(string(provider))
		}
		handleError(w, h.logger, err)
		return
	}

	issued, err := h.issuer.IssueSession(r.Context(), string(provider), verified)
	if err != nil {
		h.logger.Error("Session handler: failed to issue session",
			"provider", provider,
			"error", err.Error())
		handleError(w, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, tokenResponse{Token: issued.Token})
}
