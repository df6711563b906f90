package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSessionIssued("okta")
	c.RecordSessionIssued("okta")
	c.RecordSessionIssued("reva")
	c.RecordVerificationFailure("okta")
	c.RecordServiceMerge("owncloud")
	c.RecordHTTPRequest(http.MethodPost, "/session/okta", http.StatusOK, 10*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.sessionsIssued.WithLabelValues("okta")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.sessionsIssued.WithLabelValues("reva")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.verificationFailures.WithLabelValues("okta")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.serviceMerges.WithLabelValues("owncloud")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequests.WithLabelValues(http.MethodPost, "/session/okta", "200")))
}

func TestNewCollector_DoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = NewCollector(reg)

	assert.Panics(t, func() { _ = NewCollector(reg) })
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordServiceMerge("s3")

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	resp := w.Result()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `filegate_service_merges_total{backend="s3"} 1`)
}
