package identity

import (
	"context"
	"strings"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"

	apiErrors "github.com/dtroode/filegate-session/internal/api/errors"
	"github.com/dtroode/filegate-session/internal/logger"
	"github.com/dtroode/filegate-session/internal/model"
	"github.com/dtroode/filegate-session/internal/registry"
)

// Okta verifies Okta access tokens against the configured authorization server.
type Okta struct {
	source ConfigSource
	keySet func(issuer string) oidc.KeySet
	logger *logger.Logger

	mu        sync.Mutex
	verifiers map[registry.OktaConfig]*oidc.IDTokenVerifier
}

// NewOkta creates an Okta verifier fetching signing keys from {issuer}/v1/keys.
func NewOkta(source ConfigSource, logger *logger.Logger) *Okta {
	return newOktaWithKeySet(source, logger, func(issuer string) oidc.KeySet {
		return oidc.NewRemoteKeySet(context.Background(), strings.TrimSuffix(issuer, "/")+"/v1/keys")
	})
}

func newOktaWithKeySet(source ConfigSource, logger *logger.Logger, keySet func(issuer string) oidc.KeySet) *Okta {
	return &Okta{
		source:    source,
		keySet:    keySet,
		logger:    logger,
		verifiers: make(map[registry.OktaConfig]*oidc.IDTokenVerifier),
	}
}

type oktaAccessClaims struct {
	ClientID string `json:"cid"`
}

// Verify checks the token signature, issuer, audience, expiry and cid claim.
// Email and name are taken from the assertion, not from the token.
func (o *Okta) Verify(ctx context.Context, assertion Assertion) (model.Identity, error) {
	cfg := o.source.Current().IdentityProviders.Okta
	if cfg.Issuer == "" || cfg.ClientID == "" {
		o.logger.Error("Okta verifier: okta is not configured")
		return model.Identity{}, apiErrors.NewErrUnauthorized("Okta token verification failed")
	}

	token, err := o.verifier(cfg).Verify(ctx, assertion.Token)
	if err != nil {
		o.logger.Error("Okta verifier: token verification failure",
			"error", err.Error())
		return model.Identity{}, apiErrors.NewErrUnauthorized("Okta token verification failed")
	}

	var claims oktaAccessClaims
	if err := token.Claims(&claims); err != nil || claims.ClientID != cfg.ClientID {
		o.logger.Error("Okta verifier: cid claim mismatch",
			"cid", claims.ClientID)
		return model.Identity{}, apiErrors.NewErrUnauthorized("Okta token verification failed")
	}

	identity, err := identityFromBody(assertion.Email, assertion.Name)
	if err != nil {
		o.logger.Error("Okta verifier: email or name not provided")
		return model.Identity{}, err
	}

	return identity, nil
}

func (o *Okta) verifier(cfg registry.OktaConfig) *oidc.IDTokenVerifier {
	o.mu.Lock()
	defer o.mu.Unlock()

	if v, ok := o.verifiers[cfg]; ok {
		return v
	}

	v := oidc.NewVerifier(cfg.Issuer, o.keySet(cfg.Issuer), &oidc.Config{ClientID: cfg.Audience})
	o.verifiers[cfg] = v
	return v
}
