// Package identity verifies external identity assertions.
package identity

import (
	"context"
	"fmt"
	"strings"

	apiErrors "github.com/dtroode/filegate-session/internal/api/errors"
	"github.com/dtroode/filegate-session/internal/model"
	"github.com/dtroode/filegate-session/internal/registry"
)

// Provider tags the closed set of supported identity providers.
type Provider string

const (
	ProviderOkta Provider = "okta"
	ProviderReva Provider = "reva"
)

const bearerPrefix = "Bearer "

// Assertion is what a caller presents to prove its identity.
type Assertion struct {
	Token string
	// Gateway is the CS3 gateway address; only Reva uses it.
	Gateway string
	Email   string
	Name    string
}

// Verifier turns an assertion into a verified identity.
type Verifier interface {
	Verify(ctx context.Context, assertion Assertion) (model.Identity, error)
}

// ConfigSource provides the current operator configuration.
type ConfigSource interface {
	Current() *registry.Configuration
}

var (
	_ Verifier = (*Okta)(nil)
	_ Verifier = (*Reva)(nil)
)

// Dispatcher routes assertions to the verifier registered for a provider.
type Dispatcher struct {
	verifiers map[Provider]Verifier
}

func NewDispatcher(okta, reva Verifier) *Dispatcher {
	return &Dispatcher{verifiers: map[Provider]Verifier{
		ProviderOkta: okta,
		ProviderReva: reva,
	}}
}

// Verify dispatches on provider. Unregistered providers are an error.
func (d *Dispatcher) Verify(ctx context.Context, provider Provider, assertion Assertion) (model.Identity, error) {
	v, ok := d.verifiers[provider]
	if !ok || v == nil {
		return model.Identity{}, fmt.Errorf("identity provider %q is not registered", provider)
	}
	return v.Verify(ctx, assertion)
}

// BearerToken strips the "Bearer " prefix from an Authorization header value.
func BearerToken(header string) (string, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", apiErrors.NewErrMissingAuthorizationToken()
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return "", apiErrors.NewErrMissingAuthorizationToken()
	}
	return token, nil
}

// identityFromBody checks the caller-supplied email and display name.
func identityFromBody(email, name string) (model.Identity, error) {
	if email == "" || name == "" {
		return model.Identity{}, apiErrors.NewErrBadRequest("email and name are required")
	}
	return model.Identity{Email: email, Name: name}, nil
}
