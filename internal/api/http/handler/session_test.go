package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiErrors "github.com/dtroode/filegate-session/internal/api/errors"
	httpctx "github.com/dtroode/filegate-session/internal/api/http/context"
	"github.com/dtroode/filegate-session/internal/identity"
	"github.com/dtroode/filegate-session/internal/model"
	"github.com/dtroode/filegate-session/internal/testutil"
)

type verifierStub struct {
	got      identity.Assertion
	provider identity.Provider
	err      error
}

func (v *verifierStub) Verify(_ context.Context, provider identity.Provider, assertion identity.Assertion) (model.Identity, error) {
	v.provider = provider
	v.got = assertion
	if v.err != nil {
		return model.Identity{}, v.err
	}
	return model.Identity{Email: assertion.Email, Name: assertion.Name}, nil
}

type issuerStub struct {
	issued []model.Identity
	err    error
}

func (i *issuerStub) IssueSession(_ context.Context, _ string, id model.Identity) (model.IssuedToken, error) {
	if i.err != nil {
		return model.IssuedToken{}, i.err
	}
	i.issued = append(i.issued, id)
	return model.IssuedToken{Token: "session-token", Expiry: time.Now().Add(time.Hour)}, nil
}

func TestSession_CreateOktaSession(t *testing.T) {
	t.Parallel()

	verifier := &verifierStub{}
	issuer := &issuerStub{}
	h := NewSession(verifier, issuer, httpctx.NewManager(), newSpyMetrics(), testutil.MakeNoopLogger())

	r := newRequest(context.Background(), http.MethodPost, "/session/okta", `{"email":"a@b.com","name":"A"}`)
	r.Header.Set("Authorization", "Bearer okta-access")
	w := httptest.NewRecorder()
	h.CreateOktaSession(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"token":"session-token"}`, w.Body.String())
	assert.Equal(t, identity.ProviderOkta, verifier.provider)
	assert.Equal(t, "okta-access", verifier.got.Token)
	assert.Equal(t, []model.Identity{{Email: "a@b.com", Name: "A"}}, issuer.issued)
}

func TestSession_CreateRevaSession_PassesGateway(t *testing.T) {
	t.Parallel()

	verifier := &verifierStub{}
	h := NewSession(verifier, &issuerStub{}, httpctx.NewManager(), newSpyMetrics(), testutil.MakeNoopLogger())

	r := newRequest(context.Background(), http.MethodPost, "/session/reva", `{"email":"a@b.com","name":"A","gateway":"reva:19000"}`)
	r.Header.Set("Authorization", "Bearer reva-token")
	w := httptest.NewRecorder()
	h.CreateRevaSession(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, identity.ProviderReva, verifier.provider)
	assert.Equal(t, "reva:19000", verifier.got.Gateway)
}

func TestSession_Create_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		header      string
		verifyErr   error
		issueErr    error
		wantStatus  int
		wantFailure int
	}{
		{name: "missing header", wantStatus: http.StatusUnauthorized, wantFailure: 1},
		{name: "verification rejected", header: "Bearer t", verifyErr: apiErrors.NewErrUnauthorized("no"), wantStatus: http.StatusUnauthorized, wantFailure: 1},
		{name: "missing name", header: "Bearer t", verifyErr: apiErrors.NewErrBadRequest("email and name are required"), wantStatus: http.StatusBadRequest},
		{name: "store failure", header: "Bearer t", issueErr: errors.New("db down"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			spy := newSpyMetrics()
			h := NewSession(&verifierStub{err: tt.verifyErr}, &issuerStub{err: tt.issueErr}, httpctx.NewManager(), spy, testutil.MakeNoopLogger())

			r := newRequest(context.Background(), http.MethodPost, "/session/okta", `{"email":"a@b.com","name":"A"}`)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.CreateOktaSession(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantFailure, spy.failures["okta"])
		})
	}
}

func TestSession_GetSession(t *testing.T) {
	t.Parallel()

	ctxMgr := httpctx.NewManager()
	h := NewSession(&verifierStub{}, &issuerStub{}, ctxMgr, newSpyMetrics(), testutil.MakeNoopLogger())

	t.Run("filters secrets", func(t *testing.T) {
		session := model.Session{
			ID: uuid.New(),
			Data: model.SessionData{"service": map[string]any{
				"owncloud": map[string]any{"url": "https://oc", "access_token": "secret"},
			}},
		}
		ctx := ctxMgr.SetSessionToContext(context.Background(), session)
		w := httptest.NewRecorder()
		h.GetSession(w, newRequest(ctx, http.MethodGet, "/session", ""))

		require.Equal(t, http.StatusOK, w.Code)
		var got map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, false, got["embeddedSession"])
		assert.NotContains(t, w.Body.String(), "secret")
		assert.Contains(t, w.Body.String(), "https://oc")
	})

	t.Run("no data", func(t *testing.T) {
		ctx := ctxMgr.SetSessionToContext(context.Background(), model.Session{ID: uuid.New()})
		w := httptest.NewRecorder()
		h.GetSession(w, newRequest(ctx, http.MethodGet, "/session", ""))

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{}`, w.Body.String())
	})

	t.Run("unauthenticated", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.GetSession(w, newRequest(context.Background(), http.MethodGet, "/session", ""))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
