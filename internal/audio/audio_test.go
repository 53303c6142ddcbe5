package audio

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/teemow/mailbrief/internal/config"
	"github.com/teemow/mailbrief/internal/instrumentation"
)

var day = time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		OpenAIAPIKey:         "sk-test",
		AudioOutputDirectory: t.TempDir(),
		TTSVoice:             "alloy",
		TTSSpeed:             1.0,
	}
}

// withServer points the generator's client at a local test server.
func withServer(t *testing.T, g *Generator, handler http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := openai.NewClient(
		option.WithAPIKey("sk-test"),
		option.WithBaseURL(srv.URL),
		option.WithMaxRetries(0),
	)
	g.client = &client
}

func TestNewGeneratorValidation(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*config.Config)
		errContains string
	}{
		{
			name:   "valid",
			mutate: func(c *config.Config) {},
		},
		{
			name:        "missing api key",
			mutate:      func(c *config.Config) { c.OpenAIAPIKey = "" },
			errContains: "OPENAI_API_KEY is required",
		},
		{
			name:        "empty directory",
			mutate:      func(c *config.Config) { c.AudioOutputDirectory = " " },
			errContains: "AUDIO_OUTPUT_DIRECTORY",
		},
		{
			name:        "speed out of range",
			mutate:      func(c *config.Config) { c.TTSSpeed = 9 },
			errContains: "TTS_SPEED",
		},
		{
			name:        "bad voice",
			mutate:      func(c *config.Config) { c.TTSVoice = "robot" },
			errContains: "invalid TTS_VOICE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(cfg)
			g, err := NewGenerator(cfg)
			if tt.errContains == "" {
				require.NoError(t, err)
				assert.NotNil(t, g)
				assert.DirExists(t, cfg.AudioOutputDirectory)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
			}
		})
	}
}

func TestGenerateWritesAudio(t *testing.T) {
	cfg := testConfig(t)
	g, err := NewGenerator(cfg)
	require.NoError(t, err)

	withServer(t, g, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/speech", r.URL.Path)
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("mp3-bytes"))
	})

	path, err := g.GenerateDaily(context.Background(), day, "Good morning!")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-24.mp3", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "mp3-bytes", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	assert.True(t, g.Exists(day))
	assert.EqualValues(t, len(data), g.Size(day))

	require.NoError(t, g.Delete(day))
	assert.False(t, g.Exists(day))
}

func TestGenerateRetriesServerErrors(t *testing.T) {
	cfg := testConfig(t)
	g, err := NewGenerator(cfg)
	require.NoError(t, err)

	var calls atomic.Int32
	withServer(t, g, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("mp3-bytes"))
	})

	require.NoError(t, g.Generate(context.Background(), "Hello", g.Path(day)))
	assert.EqualValues(t, 2, calls.Load())
}

func TestGenerateDoesNotRetryAuthErrors(t *testing.T) {
	cfg := testConfig(t)
	g, err := NewGenerator(cfg)
	require.NoError(t, err)

	var calls atomic.Int32
	withServer(t, g, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":{"message":"bad key"}}`, http.StatusUnauthorized)
	})

	err = g.Generate(context.Background(), "Hello", g.Path(day))
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
}

func TestGenerateRejectsEmptyText(t *testing.T) {
	cfg := testConfig(t)
	g, err := NewGenerator(cfg)
	require.NoError(t, err)

	err = g.Generate(context.Background(), "   ", g.Path(day))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be empty")
}

func TestGenerateTruncatesLongText(t *testing.T) {
	cfg := testConfig(t)
	g, err := NewGenerator(cfg)
	require.NoError(t, err)

	var gotInput string
	withServer(t, g, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Input string `json:"input"`
		}
		require.NoError(t, decodeJSON(r, &body))
		gotInput = body.Input
		_, _ = w.Write([]byte("mp3-bytes"))
	})

	// Multi-byte runes near the limit must not be split mid-sequence.
	long := strings.Repeat("a", maxInputLength-1) + "éé"

	require.NoError(t, g.Generate(context.Background(), long, g.Path(day)))
	assert.True(t, utf8.ValidString(gotInput), "truncated input must be valid UTF-8")
	assert.Equal(t, maxInputLength, utf8.RuneCountInString(gotInput))
	assert.True(t, strings.HasSuffix(gotInput, "é"))
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func TestGenerateRecordsMetrics(t *testing.T) {
	cfg := testConfig(t)
	g, err := NewGenerator(cfg)
	require.NoError(t, err)

	withServer(t, g, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("mp3-bytes"))
	})

	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
	metrics, err := instrumentation.NewMetrics(meter, false)
	require.NoError(t, err)
	g.SetMetrics(metrics)

	require.NoError(t, g.Generate(context.Background(), "Good morning!", g.Path(day)))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	assert.EqualValues(t, 1, counterValue(t, rm, "tts_generations_total"))
	assert.EqualValues(t, len("mp3-bytes"), counterValue(t, rm, "tts_audio_bytes_total"))
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
