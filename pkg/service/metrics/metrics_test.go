package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/intake/pkg/service/metrics"
)

func scrape(t *testing.T) string {
	t.Helper()

	srv := httptest.NewServer(metrics.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	gt.NoError(t, err)
	defer resp.Body.Close()
	gt.Equal(t, resp.StatusCode, http.StatusOK)

	body, err := io.ReadAll(resp.Body)
	gt.NoError(t, err)
	return string(body)
}

func TestHandlerExposesCounters(t *testing.T) {
	metrics.RecordSubmission("text", metrics.ResultSaved)
	metrics.RecordSubmission("row", metrics.ResultIncomplete)
	metrics.RecordRepairs(2)
	metrics.RecordRepairs(0)
	metrics.RecordCodeFallback()
	metrics.RecordPrefill("ok")
	metrics.ObserveHTTP(http.MethodPost, "/api/incidents", http.StatusCreated, 15*time.Millisecond)

	out := scrape(t)
	gt.S(t, out).Contains(`intake_submissions_total{result="saved",source="text"}`)
	gt.S(t, out).Contains(`intake_submissions_total{result="incomplete",source="row"}`)
	gt.S(t, out).Contains("intake_repair_advisories_total")
	gt.S(t, out).Contains("intake_code_fallbacks_total")
	gt.S(t, out).Contains(`intake_llm_prefill_total{result="ok"}`)
	gt.S(t, out).Contains(`intake_http_requests_total{method="POST",path="/api/incidents",status="201"}`)
	gt.S(t, out).Contains("intake_http_request_duration_seconds_bucket")
}
