package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jvoss/taskpilot/internal/instrumentation"
)

func TestNewMetricsServer_RequiresEnabledProvider(t *testing.T) {
	if _, err := NewMetricsServer("", nil); err == nil {
		t.Error("expected error for nil provider")
	}

	disabled, err := instrumentation.NewProvider(context.Background(), instrumentation.Config{Enabled: false})
	if err != nil {
		t.Fatalf("failed to create disabled provider: %v", err)
	}
	if _, err := NewMetricsServer("", disabled); err == nil {
		t.Error("expected error for disabled provider")
	}
}

func TestMetricsServer_ServesScrapeAndHealth(t *testing.T) {
	ctx := context.Background()
	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
		ServiceName:     "taskpilot-test",
		Enabled:         true,
		MetricsExporter: instrumentation.ExporterPrometheus,
		TracingExporter: instrumentation.ExporterNone,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	ms, err := NewMetricsServer("", provider)
	if err != nil {
		t.Fatalf("failed to create metrics server: %v", err)
	}
	if ms.Addr() != DefaultMetricsAddr {
		t.Errorf("expected default addr %q, got %q", DefaultMetricsAddr, ms.Addr())
	}

	handler := ms.httpServer.Handler

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("healthz: expected %d, got %d", http.StatusOK, rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("healthz: expected body %q, got %q", "ok", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("metrics: expected %d, got %d", http.StatusOK, rec.Code)
	}
}
