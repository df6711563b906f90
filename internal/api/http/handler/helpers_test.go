package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/filegate-session/internal/api/http/respond"
)

type spyMetrics struct {
	failures map[string]int
}

func newSpyMetrics() *spyMetrics {
	return &spyMetrics{failures: map[string]int{}}
}

func (s *spyMetrics) RecordSessionIssued(string) {}
func (s *spyMetrics) RecordVerificationFailure(provider string) {
	s.failures[provider]++
}
func (s *spyMetrics) RecordServiceMerge(string)                            {}
func (s *spyMetrics) RecordHTTPRequest(string, string, int, time.Duration) {}

func newRequest(ctx context.Context, method, target, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	return httptest.NewRequest(method, target, reader).WithContext(ctx)
}

// withURLParams attaches chi route params to r.
func withURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) respond.ErrorBody {
	t.Helper()
	var body respond.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
