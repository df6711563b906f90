package service

import (
	"context"
	"errors"
	"fmt"

	apiErrors "github.com/dtroode/filegate-session/internal/api/errors"
	"github.com/dtroode/filegate-session/internal/logger"
	"github.com/dtroode/filegate-session/internal/reva"
)

// RevaAuthenticator exchanges Reva basic credentials for a Reva token.
type RevaAuthenticator interface {
	Authenticate(ctx context.Context, gateway, username, password string) (string, *reva.User, error)
}

// RevaLoginResult is the Reva token and the user it belongs to.
type RevaLoginResult struct {
	Token string     `json:"token"`
	User  *reva.User `json:"user"`
}

// RevaLogin proxies username/password logins to a Reva gateway.
type RevaLogin struct {
	client   RevaAuthenticator
	registry ConfigSource
	logger   *logger.Logger
}

func NewRevaLogin(client RevaAuthenticator, registry ConfigSource, logger *logger.Logger) *RevaLogin {
	return &RevaLogin{client: client, registry: registry, logger: logger}
}

func (s *RevaLogin) AuthenticateReva(ctx context.Context, gateway, username, password string) (RevaLoginResult, error) {
	if gateway == "" || username == "" || password == "" {
		return RevaLoginResult{}, apiErrors.NewErrBadRequest("gateway, username and password are required")
	}

	if !s.registry.Current().IdentityProviders.Reva.GatewayAllowed(gateway) {
		s.logger.Error("Reva login service: gateway not allowed",
			"gateway", gateway)
		return RevaLoginResult{}, apiErrors.NewErrUnauthorized("Reva authentication failed")
	}

	token, user, err := s.client.Authenticate(ctx, gateway, username, password)
	if errors.Is(err, reva.ErrUnauthenticated) {
		s.logger.Error("Reva login service: credentials rejected",
			"gateway", gateway,
			"username", username)
		return RevaLoginResult{}, apiErrors.NewErrUnauthorized("Reva authentication failed")
	}
	if err != nil {
		return RevaLoginResult{}, fmt.Errorf("failed to authenticate to reva: %w", err)
	}

	return RevaLoginResult{Token: token, User: user}, nil
}
