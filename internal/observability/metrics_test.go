package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	return rr.Body.String()
}

func TestMetricsHandlerExposesReportMetrics(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveReport("company", 20*time.Millisecond, 2, nil)
	metrics.ObserveReport("client", time.Millisecond, 0, errors.New("boom"))

	body := scrape(t, metrics)

	for _, want := range []string{
		`dispatch_reports_total{outcome="ok",report="company"} 1`,
		`dispatch_reports_total{outcome="error",report="client"} 1`,
		`dispatch_report_skipped_orders_total{report="company"} 2`,
		`dispatch_report_duration_seconds_bucket{report="company"`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected body to contain %s, got: %s", want, body)
		}
	}
	if strings.Contains(body, `dispatch_report_skipped_orders_total{report="client"}`) {
		t.Fatalf("client report skipped nothing, got: %s", body)
	}
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/api/reports/orders")

	req := httptest.NewRequest(http.MethodGet, "/api/reports/orders", nil)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}

	body := scrape(t, metrics)
	if !strings.Contains(body, `dispatch_http_requests_total{code="418",route="/api/reports/orders"} 1`) {
		t.Fatalf("expected metrics to record request, got: %s", body)
	}
	if !strings.Contains(body, `dispatch_http_request_duration_seconds_bucket{route="/api/reports/orders"`) {
		t.Fatalf("expected duration histogram to be present, got: %s", body)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *Metrics
	metrics.ObserveReport("orders", time.Second, 1, nil)

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}
