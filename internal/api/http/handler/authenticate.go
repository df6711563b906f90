package handler

import (
	"context"
	"net/http"

	"github.com/dtroode/filegate-session/internal/api/http/respond"
	"github.com/dtroode/filegate-session/internal/logger"
	"github.com/dtroode/filegate-session/internal/service"
)

// RevaLoginService exchanges Reva credentials for a Reva token.
type RevaLoginService interface {
	AuthenticateReva(ctx context.Context, gateway, username, password string) (service.RevaLoginResult, error)
}

// Authenticate proxies direct logins to identity providers.
type Authenticate struct {
	reva   RevaLoginService
	logger *logger.Logger
}

// NewAuthenticate creates a new Authenticate handler.
func NewAuthenticate(reva RevaLoginService, logger *logger.Logger) *Authenticate {
	return &Authenticate{reva: reva, logger: logger}
}

type revaLoginRequest struct {
	Gateway  string `json:"gateway"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthenticateReva logs in to a Reva gateway with username and password.
// POST /authenticate/reva
func (h *Authenticate) AuthenticateReva(w http.ResponseWriter, r *http.Request) {
	var req revaLoginRequest
	if err := decodeBody(r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	h.logger.Debug("Authenticate handler: processing reva login",
		"gateway", req.Gateway,
		"username", req.Username)

	result, err := h.reva.AuthenticateReva(r.Context(), req.Gateway, req.Username, req.Password)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, result)
}
