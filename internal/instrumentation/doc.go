// Package instrumentation provides comprehensive OpenTelemetry instrumentation
// for the mailbrief MCP server and briefing pipeline.
//
// This package enables production-grade observability through:
//   - OpenTelemetry metrics for HTTP requests, Gmail operations, AI calls, and TTS synthesis
//   - Distributed tracing for request flows and upstream API calls
//   - Prometheus metrics export via /metrics endpoint on dedicated port
//   - OTLP export support for modern observability platforms
//
// # Metrics
//
// The package exposes the following metric categories:
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// Gmail API Metrics:
//   - gmail_api_operations_total: Counter of Gmail API operations by operation, status
//   - gmail_api_operation_duration_seconds: Histogram of Gmail API operation durations
//   - emails_fetched_total: Counter of emails fetched from Gmail
//
// AI Provider Metrics:
//   - ai_provider_calls_total: Counter of AI completion calls by provider, operation, status
//   - ai_provider_call_duration_seconds: Histogram of AI call durations
//   - tts_generations_total: Counter of TTS synthesis attempts by status
//   - tts_audio_bytes_total: Counter of synthesized audio bytes
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// # Tracing
//
// Distributed tracing spans are created for:
//   - HTTP request handling
//   - MCP tool invocations (tool.<name>)
//   - Upstream API calls (<service>.<operation>, e.g. gmail.search, openai.summarize)
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: mailbrief)
//
// # Example Usage
//
//	// Initialize instrumentation
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
//		ServiceName:    "mailbrief",
//		ServiceVersion: "0.1.0",
//		Enabled:        true,
//	})
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	// Get metrics recorder
//	recorder := provider.Metrics()
//
//	// Record an HTTP request
//	recorder.RecordHTTPRequest(ctx, "POST", "/mcp", 200, time.Since(start))
//
//	// Record a Gmail API operation
//	recorder.RecordGmailOperation(ctx, "search", "success", time.Since(start))
//
//	// Record an MCP tool invocation
//	recorder.RecordToolInvocation(ctx, "search_by_query", "success", time.Since(start))
package instrumentation
