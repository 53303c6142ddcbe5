package instrumentation

import (
	"context"
	"testing"
	"time"
)

func newTestProvider(t *testing.T, ctx context.Context, detailed bool) *Provider {
	t.Helper()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: "prometheus",
		TracingExporter: "none",
		DetailedLabels:  detailed,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	return provider
}

func TestMetrics_RecordHTTPRequest(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx, false).Metrics()
	if metrics == nil {
		t.Fatal("expected metrics to be non-nil")
	}

	// Should not panic
	metrics.RecordHTTPRequest(ctx, "GET", "/mcp", 200, 100*time.Millisecond)
	metrics.RecordHTTPRequest(ctx, "POST", "/mcp", 500, 50*time.Millisecond)
}

func TestMetrics_RecordGmailOperation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx, false).Metrics()

	// Should not panic
	metrics.RecordGmailOperation(ctx, OperationList, StatusSuccess, 200*time.Millisecond)
	metrics.RecordGmailOperation(ctx, OperationGet, StatusError, 500*time.Millisecond)
	metrics.RecordGmailOperation(ctx, OperationSearch, StatusSuccess, 100*time.Millisecond)
}

func TestMetrics_RecordEmailsFetched(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx, false).Metrics()

	// Should not panic; query label is dropped without detailed labels
	metrics.RecordEmailsFetched(ctx, 10, "is:unread is:important")
	metrics.RecordEmailsFetched(ctx, 0, "from:billing@example.com")
}

func TestMetrics_RecordEmailsFetched_DetailedLabels(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx, true).Metrics()

	// Should not panic; query label is included
	metrics.RecordEmailsFetched(ctx, 10, "is:unread is:important")
}

func TestMetrics_RecordAICall(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx, false).Metrics()

	// Should not panic
	metrics.RecordAICall(ctx, ServiceOpenAI, OperationSummarize, StatusSuccess, 2*time.Second)
	metrics.RecordAICall(ctx, ServiceAnthropic, OperationTranscript, StatusError, 500*time.Millisecond)
}

func TestMetrics_RecordTTSGeneration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx, false).Metrics()

	// Should not panic
	metrics.RecordTTSGeneration(ctx, StatusSuccess, 128*1024)
	metrics.RecordTTSGeneration(ctx, StatusError, 0)
}

func TestMetrics_RecordToolInvocation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx, false).Metrics()

	// Should not panic
	metrics.RecordToolInvocation(ctx, "search_by_query", StatusSuccess, 100*time.Millisecond)
	metrics.RecordToolInvocation(ctx, "test_ai", StatusError, 500*time.Millisecond)
}

func TestMetrics_RecordToolInvocationWithModel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx, false).Metrics()

	// Should not panic; model label is dropped without detailed labels
	metrics.RecordToolInvocationWithModel(ctx, "test_ai", StatusSuccess, "gpt-3.5-turbo", 100*time.Millisecond)
}

func TestMetrics_RecordToolInvocationWithModel_DetailedLabels(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx, true).Metrics()

	// Should not panic; model label is included
	metrics.RecordToolInvocationWithModel(ctx, "test_ai", StatusSuccess, "gpt-3.5-turbo", 100*time.Millisecond)
}

func TestMetrics_NoOp_WhenDisabled(t *testing.T) {
	ctx := context.Background()

	provider, err := NewProvider(ctx, Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Enabled:        false,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	metrics := provider.Metrics()
	if metrics == nil {
		t.Fatal("expected metrics to be non-nil even when disabled")
	}

	// All these should not panic even with nil underlying metrics
	metrics.RecordHTTPRequest(ctx, "GET", "/mcp", 200, 100*time.Millisecond)
	metrics.RecordGmailOperation(ctx, OperationList, StatusSuccess, 200*time.Millisecond)
	metrics.RecordEmailsFetched(ctx, 5, "is:unread")
	metrics.RecordAICall(ctx, ServiceOpenAI, OperationSummarize, StatusSuccess, time.Second)
	metrics.RecordTTSGeneration(ctx, StatusSuccess, 1024)
	metrics.RecordToolInvocation(ctx, "test_tool", StatusSuccess, 100*time.Millisecond)
	metrics.RecordToolInvocationWithModel(ctx, "test_tool", StatusSuccess, "gpt-3.5-turbo", 100*time.Millisecond)
}
