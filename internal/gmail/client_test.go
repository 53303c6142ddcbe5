package gmail

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/teemow/mailbrief/internal/instrumentation"
	"github.com/teemow/mailbrief/internal/logging"
)

// fakeGmailHandler serves the two message endpoints FetchWithQuery hits.
func fakeGmailHandler(t *testing.T, messages map[string]*gmail.Message) http.Handler {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/gmail/v1/users/me/messages", func(w http.ResponseWriter, r *http.Request) {
		list := &gmail.ListMessagesResponse{}
		for id := range messages {
			list.Messages = append(list.Messages, &gmail.Message{Id: id})
		}
		writeJSON(t, w, list)
	})
	mux.HandleFunc("/gmail/v1/users/me/messages/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/gmail/v1/users/me/messages/")
		msg, ok := messages[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeJSON(t, w, msg)
	})

	return mux
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := gmail.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL),
	)
	require.NoError(t, err)

	return &Client{
		svc:    svc.Users,
		logger: logging.WithService(slog.Default(), "gmail"),
	}
}

func TestFetchWithQuery(t *testing.T) {
	c := testClient(t, fakeGmailHandler(t, map[string]*gmail.Message{
		"m1": textMessage("Budget review", "alice@example.com", "Numbers changed."),
	}))

	emails, err := c.FetchWithQuery(context.Background(), "is:unread", 10)
	require.NoError(t, err)
	require.Len(t, emails, 1)
	assert.Equal(t, "Budget review", emails[0].Subject)
	assert.Equal(t, "Numbers changed.", emails[0].Body)
}

func TestFetchWithQueryRecordsEmailCount(t *testing.T) {
	c := testClient(t, fakeGmailHandler(t, map[string]*gmail.Message{
		"m1": textMessage("One", "a@example.com", "first"),
		"m2": textMessage("Two", "b@example.com", "second"),
	}))

	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
	metrics, err := instrumentation.NewMetrics(meter, false)
	require.NoError(t, err)
	c.SetMetrics(metrics)

	emails, err := c.FetchWithQuery(context.Background(), "is:unread", 10)
	require.NoError(t, err)
	require.Len(t, emails, 2)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	assert.EqualValues(t, 2, counterValue(t, rm, "emails_fetched_total"))
}

// counterValue sums all data points of a named int64 counter.
func counterValue(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	t.Fatalf("metric %s not recorded", name)
	return 0
}
