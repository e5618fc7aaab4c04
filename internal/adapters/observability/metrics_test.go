package observability_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hr_reviews/internal/adapters/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record samples so every family is exported
	observability.ObserveHTTP("/test", "GET", 200, 12*time.Millisecond)
	observability.ObserveStatement("reviews", "insert", nil, 3*time.Millisecond)
	observability.ObserveStatement("reviews", "select", errors.New("boom"), time.Millisecond)
	observability.ObserveIdentityMap("reviews", 3)

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	for _, want := range []string{
		"hr_http_requests_total",
		`hr_db_statements_total{op="insert",status="ok",table="reviews"}`,
		`hr_db_statements_total{op="select",status="error",table="reviews"}`,
		`hr_identity_map_entries{table="reviews"} 3`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in output", want)
		}
	}
}

func TestLabelStatus(t *testing.T) {
	if got := observability.LabelStatus(nil); got != "ok" {
		t.Fatalf("nil error label = %q", got)
	}
	if got := observability.LabelStatus(errors.New("x")); got != "error" {
		t.Fatalf("error label = %q", got)
	}
}
