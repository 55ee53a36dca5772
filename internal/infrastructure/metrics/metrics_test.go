package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_RecordDecision(t *testing.T) {
	m := NewMetrics()

	m.RecordDecision("explicit_grant", true, "route", time.Millisecond)
	m.RecordDecision("explicit_grant", true, "route", time.Millisecond)
	m.RecordDecision("block", false, "module", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AuthzDecisionsTotal.WithLabelValues("explicit_grant", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthzDecisionsTotal.WithLabelValues("block", "false")))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest(http.MethodGet, "", http.StatusNotFound)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `bizdesk_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
}
