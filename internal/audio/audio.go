// Package audio renders briefing transcripts to speech through the OpenAI
// text-to-speech API.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/teemow/mailbrief/internal/config"
	"github.com/teemow/mailbrief/internal/instrumentation"
	"github.com/teemow/mailbrief/internal/logging"
	"github.com/teemow/mailbrief/internal/retry"
)

// maxInputLength is the character limit of the speech API. Longer
// transcripts are truncated rather than rejected.
const maxInputLength = 4096

// Generator renders text to MP3 files via the OpenAI speech endpoint.
type Generator struct {
	client  *openai.Client
	voice   string
	speed   float64
	dir     string
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

// SetMetrics attaches a metrics recorder. Generations are not recorded
// until one is set.
func (g *Generator) SetMetrics(m *instrumentation.Metrics) {
	g.metrics = m
}

// NewGenerator validates the audio settings and creates a Generator. The
// output directory is created if missing.
func NewGenerator(cfg *config.Config) (*Generator, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required for audio generation")
	}
	if strings.TrimSpace(cfg.AudioOutputDirectory) == "" {
		return nil, fmt.Errorf("AUDIO_OUTPUT_DIRECTORY must not be empty")
	}
	if cfg.TTSSpeed < 0.25 || cfg.TTSSpeed > 4.0 {
		return nil, fmt.Errorf("TTS_SPEED must be between 0.25 and 4.0, got %g", cfg.TTSSpeed)
	}
	if !validVoice(cfg.TTSVoice) {
		return nil, fmt.Errorf("invalid TTS_VOICE %q", cfg.TTSVoice)
	}
	if err := os.MkdirAll(cfg.AudioOutputDirectory, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audio directory %s: %w", cfg.AudioOutputDirectory, err)
	}

	client := openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey))
	return &Generator{
		client: &client,
		voice:  cfg.TTSVoice,
		speed:  cfg.TTSSpeed,
		dir:    cfg.AudioOutputDirectory,
		logger: logging.WithService(slog.Default(), "audio"),
	}, nil
}

func validVoice(voice string) bool {
	switch voice {
	case "alloy", "echo", "fable", "onyx", "nova", "shimmer":
		return true
	}
	return false
}

// Path returns the audio file path for a date.
func (g *Generator) Path(date time.Time) string {
	return filepath.Join(g.dir, date.Format("2006-01-02")+".mp3")
}

// Generate renders text to speech and writes the MP3 to path. Text above
// the API limit is truncated with a warning. The call is retried on rate
// limits and server errors.
func (g *Generator) Generate(ctx context.Context, text, path string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("text must not be empty")
	}
	// The API limit counts characters, so truncate by runes to keep the
	// input valid UTF-8.
	if runes := []rune(text); len(runes) > maxInputLength {
		g.logger.Warn("transcript exceeds TTS input limit, truncating",
			slog.Int("length", len(runes)), slog.Int("limit", maxInputLength))
		text = string(runes[:maxInputLength])
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	params := openai.AudioSpeechNewParams{
		Model: openai.SpeechModelTTS1,
		Voice: openai.AudioSpeechNewParamsVoice(g.voice),
		Input: text,
		Speed: openai.Float(g.speed),
	}

	data, err := retry.Do(ctx, retry.AIPolicy(), func() ([]byte, error) {
		resp, err := g.client.Audio.Speech.New(ctx, params)
		if err != nil {
			return nil, classifySpeechError(err)
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, retry.ClassifyError(err)
		}
		return body, nil
	})
	if err != nil {
		if g.metrics != nil {
			g.metrics.RecordTTSGeneration(ctx, instrumentation.StatusError, 0)
		}
		return fmt.Errorf("speech synthesis failed: %w", err)
	}
	if g.metrics != nil {
		g.metrics.RecordTTSGeneration(ctx, instrumentation.StatusSuccess, int64(len(data)))
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write audio file %s: %w", path, err)
	}

	g.logger.Info("audio generated", logging.Path(path),
		slog.Int("bytes", len(data)), slog.String("voice", g.voice))
	return nil
}

// GenerateDaily renders the transcript to the standard dated path and
// returns it.
func (g *Generator) GenerateDaily(ctx context.Context, date time.Time, transcript string) (string, error) {
	path := g.Path(date)
	if err := g.Generate(ctx, transcript, path); err != nil {
		return "", err
	}
	return path, nil
}

// Exists reports whether an audio file exists for the date.
func (g *Generator) Exists(date time.Time) bool {
	_, err := os.Stat(g.Path(date))
	return err == nil
}

// Size returns the audio file size in bytes, or 0 when absent.
func (g *Generator) Size(date time.Time) int64 {
	info, err := os.Stat(g.Path(date))
	if err != nil {
		return 0
	}
	return info.Size()
}

// Delete removes the audio file for a date.
func (g *Generator) Delete(date time.Time) error {
	if err := os.Remove(g.Path(date)); err != nil {
		return fmt.Errorf("failed to delete audio for %s: %w", date.Format("2006-01-02"), err)
	}
	return nil
}

// classifySpeechError maps speech API errors onto the retry classification.
func classifySpeechError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == 429 && apiErr.Response != nil {
			if d := retry.ParseRetryAfter(apiErr.Response.Header.Get("Retry-After")); d > 0 {
				return retry.After(err, d)
			}
		}
		return retry.ClassifyHTTP(apiErr.StatusCode, err)
	}
	return retry.ClassifyError(err)
}
