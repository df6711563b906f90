package identity

import (
	"context"
	"fmt"

	apiErrors "github.com/dtroode/filegate-session/internal/api/errors"
	"github.com/dtroode/filegate-session/internal/logger"
	"github.com/dtroode/filegate-session/internal/model"
	"github.com/dtroode/filegate-session/internal/reva"
)

// WhoAmIClient resolves a Reva token to its user.
type WhoAmIClient interface {
	WhoAmI(ctx context.Context, gateway, token string) (*reva.User, error)
}

// Reva verifies tokens by asking the caller-named CS3 gateway who they belong to.
type Reva struct {
	client WhoAmIClient
	source ConfigSource
	logger *logger.Logger
}

func NewReva(client WhoAmIClient, source ConfigSource, logger *logger.Logger) *Reva {
	return &Reva{client: client, source: source, logger: logger}
}

func (r *Reva) Verify(ctx context.Context, assertion Assertion) (model.Identity, error) {
	if !r.source.Current().IdentityProviders.Reva.GatewayAllowed(assertion.Gateway) {
		r.logger.Error("Reva verifier: gateway not allowed",
			"gateway", assertion.Gateway)
		return model.Identity{}, apiErrors.NewErrUnauthorized("Reva token verification failed")
	}

	user, err := r.client.WhoAmI(ctx, assertion.Gateway, assertion.Token)
	if err != nil {
		r.logger.Error("Reva verifier: whoami failed",
			"gateway", assertion.Gateway,
			"error", err.Error())
		return model.Identity{}, fmt.Errorf("failed to resolve reva user: %w", err)
	}
	if user == nil {
		return model.Identity{}, apiErrors.NewErrUnauthorized("Reva token verification failed")
	}

	identity, err := identityFromBody(assertion.Email, assertion.Name)
	if err != nil {
		r.logger.Error("Reva verifier: email or name not provided",
			"gateway", assertion.Gateway)
		return model.Identity{}, err
	}

	return identity, nil
}
