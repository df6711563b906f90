package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apiErrors "github.com/dtroode/filegate-session/internal/api/errors"
	httpctx "github.com/dtroode/filegate-session/internal/api/http/context"
	"github.com/dtroode/filegate-session/internal/api/http/middleware"
	"github.com/dtroode/filegate-session/internal/credential"
	"github.com/dtroode/filegate-session/internal/identity"
	"github.com/dtroode/filegate-session/internal/metrics"
	"github.com/dtroode/filegate-session/internal/mocks"
	"github.com/dtroode/filegate-session/internal/model"
	"github.com/dtroode/filegate-session/internal/service"
	"github.com/dtroode/filegate-session/internal/testutil"
)

type stubServices struct{}

func (stubServices) Verify(_ context.Context, _ identity.Provider, a identity.Assertion) (model.Identity, error) {
	if a.Token != "good" {
		return model.Identity{}, apiErrors.NewErrUnauthorized("")
	}
	return model.Identity{Email: a.Email, Name: a.Name}, nil
}

func (stubServices) IssueSession(context.Context, string, model.Identity) (model.IssuedToken, error) {
	return model.IssuedToken{Token: "issued", Expiry: time.Now().Add(time.Hour)}, nil
}

func (stubServices) CreateSession(context.Context, model.Application, service.ApplicationSessionRequest) (uuid.UUID, error) {
	return uuid.New(), nil
}

func (stubServices) UpdateSession(context.Context, model.Application, uuid.UUID, service.BackendParams) error {
	return nil
}

func (stubServices) ResolveApplication(secret string) (model.Application, error) {
	if secret != "app-secret" {
		return model.Application{}, apiErrors.NewErrUnauthorized("")
	}
	return model.Application{Name: "AppA"}, nil
}

func (stubServices) SaveServiceConfiguration(context.Context, model.Session, string, credential.Params) error {
	return nil
}

func (stubServices) PublicServiceConfiguration(string) ([]model.RegistryEntry, error) {
	return []model.RegistryEntry{{"url": "https://oc"}}, nil
}

func (stubServices) VerifyServiceConfiguration(context.Context, string, credential.Params) error {
	return nil
}

func (stubServices) ExchangeOAuthCode(context.Context, model.Session, string, string, string) error {
	return nil
}

func (stubServices) AuthenticateReva(context.Context, string, string, string) (service.RevaLoginResult, error) {
	return service.RevaLoginResult{Token: "reva"}, nil
}

func newTestRouter(t *testing.T, tokens *mocks.TokenManager, sessions *mocks.SessionStore, limiter *middleware.RateLimiter) http.Handler {
	t.Helper()

	stub := stubServices{}
	reg := prometheus.NewRegistry()
	r := New(Services{
		Verifier:      stub,
		Issuer:        stub,
		Application:   stub,
		Applications:  stub,
		Configuration: stub,
		RevaLogin:     stub,
	}, tokens, sessions, httpctx.NewManager(), metrics.NewCollector(reg), reg, limiter, testutil.MakeNoopLogger())

	return r.Register()
}

func TestRouter_Routes(t *testing.T) {
	tokens := mocks.NewTokenManager(t)
	sessions := mocks.NewSessionStore(t)

	email := "a@b.com"
	expiry := time.Now().Add(time.Hour)
	tokens.On("ParseSessionToken", "session-jwt").Return(email, nil)
	sessions.On("GetByToken", mock.Anything, "session-jwt").
		Return(model.Session{ID: uuid.New(), Email: &email, Expiry: &expiry, Data: model.SessionData{}}, nil)

	h := newTestRouter(t, tokens, sessions, nil)

	tests := []struct {
		name       string
		method     string
		path       string
		auth       string
		body       string
		wantStatus int
	}{
		{name: "okta session", method: http.MethodPost, path: "/session/okta", auth: "Bearer good", body: `{"email":"a@b.com","name":"A"}`, wantStatus: http.StatusOK},
		{name: "okta rejected", method: http.MethodPost, path: "/session/okta", auth: "Bearer bad", wantStatus: http.StatusUnauthorized},
		{name: "reva session", method: http.MethodPost, path: "/session/reva", auth: "Bearer good", body: `{"email":"a@b.com","name":"A"}`, wantStatus: http.StatusOK},
		{name: "get session", method: http.MethodGet, path: "/session", auth: "Bearer session-jwt", wantStatus: http.StatusOK},
		{name: "get session unauthenticated", method: http.MethodGet, path: "/session", wantStatus: http.StatusUnauthorized},
		{name: "public configuration", method: http.MethodGet, path: "/session/configuration/owncloud", auth: "Bearer session-jwt", wantStatus: http.StatusOK},
		{name: "save configuration", method: http.MethodPost, path: "/session/configuration/s3", auth: "Bearer session-jwt", body: `{}`, wantStatus: http.StatusOK},
		{name: "verify configuration", method: http.MethodPost, path: "/session/configuration/s3/verify", auth: "Bearer session-jwt", body: `{}`, wantStatus: http.StatusOK},
		{name: "oauth exchange", method: http.MethodPost, path: "/session/get-oauth-token/owncloud", auth: "Bearer session-jwt", body: `{"host":"h","code":"c"}`, wantStatus: http.StatusOK},
		{name: "application create", method: http.MethodPost, path: "/session/application", auth: "Bearer app-secret", body: `{}`, wantStatus: http.StatusOK},
		{name: "application update", method: http.MethodPut, path: "/session/application/" + uuid.NewString(), auth: "Bearer app-secret", body: `{}`, wantStatus: http.StatusOK},
		{name: "application unknown", method: http.MethodPost, path: "/session/application", auth: "Bearer other", wantStatus: http.StatusUnauthorized},
		{name: "reva login", method: http.MethodPost, path: "/authenticate/reva", body: `{}`, wantStatus: http.StatusOK},
		{name: "metrics", method: http.MethodGet, path: "/metrics", wantStatus: http.StatusOK},
		{name: "unknown route", method: http.MethodGet, path: "/nope", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestRouter_RateLimitsIdentityEndpoints(t *testing.T) {
	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{Rate: 0.001, Burst: 1}, testutil.MakeNoopLogger())
	defer limiter.Stop()

	h := newTestRouter(t, mocks.NewTokenManager(t), mocks.NewSessionStore(t), limiter)

	do := func() int {
		req := httptest.NewRequest(http.MethodPost, "/session/okta", strings.NewReader(`{"email":"a@b.com","name":"A"}`))
		req.Header.Set("Authorization", "Bearer good")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	require.Equal(t, http.StatusOK, do())
	assert.Equal(t, http.StatusTooManyRequests, do())
}
