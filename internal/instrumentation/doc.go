// Package instrumentation provides OpenTelemetry instrumentation for the
// taskpilot server.
//
// This package enables production-grade observability through:
//   - OpenTelemetry metrics for routed tasks, LLM calls, OAuth operations, and Google API calls
//   - Distributed tracing for request flows and outbound calls
//   - Prometheus metrics export via /metrics endpoint on a dedicated port
//   - OTLP export support for modern observability platforms
//
// # Metrics
//
// Task routing metrics:
//   - task_requests_total: Counter of routed tasks by action and envelope status
//   - task_request_duration_seconds: Histogram of end-to-end routing durations
//
// LLM metrics:
//   - llm_requests_total: Counter of intent-extraction calls by model and status
//   - llm_request_duration_seconds: Histogram of extraction call durations
//
// Google API metrics:
//   - google_api_operations_total: Counter of Google API operations by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of Google API operation durations
//
// OAuth metrics:
//   - oauth_auth_total: Counter of OAuth authentication events by result
//   - oauth_token_refresh_total: Counter of token refresh attempts by result
//
// HTTP metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// # Configuration
//
// Instrumentation is configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: taskpilot)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
//		ServiceName:    "taskpilot",
//		ServiceVersion: "0.1.0",
//		Enabled:        true,
//	})
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordTaskRequest(ctx, "schedule_call", "scheduled", time.Since(start))
//	recorder.RecordGoogleAPIOperation(ctx, "calendar", "create", "success", time.Since(start))
package instrumentation
