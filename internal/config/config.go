package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Supported AI providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// validTTSVoices are the voices accepted by the OpenAI speech API.
var validTTSVoices = map[string]bool{
	"alloy":   true,
	"echo":    true,
	"fable":   true,
	"onyx":    true,
	"nova":    true,
	"shimmer": true,
}

// Config holds all runtime settings, loaded from environment variables.
type Config struct {
	// Gmail API
	CredentialsFile string `env:"GMAIL_CREDENTIALS_FILE" envDefault:"credentials.json"`
	TokenFile       string `env:"GMAIL_TOKEN_FILE" envDefault:"token.json"`

	// AI provider
	AIProvider   string `env:"AI_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	ClaudeAPIKey string `env:"CLAUDE_API_KEY"`
	OpenAIModel  string `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo"`
	ClaudeModel  string `env:"CLAUDE_MODEL" envDefault:"claude-3-haiku-20240307"`

	// Summarization
	MaxEmailsPerRun int     `env:"MAX_EMAILS_PER_RUN" envDefault:"10"`
	MaxTokens       int     `env:"MAX_TOKENS" envDefault:"500"`
	Temperature     float64 `env:"TEMPERATURE" envDefault:"0.3"`

	// Search
	DefaultSearchQuery     string `env:"DEFAULT_SEARCH_QUERY" envDefault:"is:unread is:important"`
	SearchConfigsFile      string `env:"SEARCH_CONFIGS_FILE" envDefault:"search_configs.json"`
	MaxSearchResults       int    `env:"MAX_SEARCH_RESULTS" envDefault:"50"`
	EnableSearchValidation bool   `env:"ENABLE_SEARCH_VALIDATION" envDefault:"true"`

	// Output
	OutputDirectory string `env:"OUTPUT_DIRECTORY" envDefault:"email_summaries"`

	// Transcript generation
	EnableTranscriptGeneration bool    `env:"ENABLE_TRANSCRIPT_GENERATION" envDefault:"true"`
	TranscriptOutputDirectory  string  `env:"TRANSCRIPT_OUTPUT_DIRECTORY" envDefault:"transcripts"`
	TranscriptMaxTokens        int     `env:"TRANSCRIPT_MAX_TOKENS" envDefault:"1000"`
	TranscriptTemperature      float64 `env:"TRANSCRIPT_TEMPERATURE" envDefault:"0.7"`

	// Audio generation
	EnableAudioGeneration bool    `env:"ENABLE_AUDIO_GENERATION" envDefault:"true"`
	AudioOutputDirectory  string  `env:"AUDIO_OUTPUT_DIRECTORY" envDefault:"audio_summaries"`
	TTSVoice              string  `env:"TTS_VOICE" envDefault:"alloy"`
	TTSSpeed              float64 `env:"TTS_SPEED" envDefault:"1.0"`
}

// Load reads configuration from the environment, applying values from a .env
// file first when one exists. The returned config is validated.
func Load() (*Config, error) {
	// Missing .env is fine; the environment may carry everything.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that all settings are internally consistent and within range.
func (c *Config) Validate() error {
	provider := strings.ToLower(strings.TrimSpace(c.AIProvider))
	switch provider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER is %q", ProviderOpenAI)
		}
	case ProviderAnthropic:
		if c.ClaudeAPIKey == "" {
			return fmt.Errorf("CLAUDE_API_KEY is required when AI_PROVIDER is %q", ProviderAnthropic)
		}
	default:
		return fmt.Errorf("invalid AI_PROVIDER %q: must be %q or %q", c.AIProvider, ProviderOpenAI, ProviderAnthropic)
	}
	c.AIProvider = provider

	if c.MaxEmailsPerRun <= 0 {
		return fmt.Errorf("MAX_EMAILS_PER_RUN must be positive, got %d", c.MaxEmailsPerRun)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("MAX_TOKENS must be positive, got %d", c.MaxTokens)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("TEMPERATURE must be between 0 and 2, got %g", c.Temperature)
	}
	if c.MaxSearchResults <= 0 {
		return fmt.Errorf("MAX_SEARCH_RESULTS must be positive, got %d", c.MaxSearchResults)
	}
	if c.TranscriptMaxTokens <= 0 {
		return fmt.Errorf("TRANSCRIPT_MAX_TOKENS must be positive, got %d", c.TranscriptMaxTokens)
	}
	if c.TranscriptTemperature < 0 || c.TranscriptTemperature > 2 {
		return fmt.Errorf("TRANSCRIPT_TEMPERATURE must be between 0 and 2, got %g", c.TranscriptTemperature)
	}
	if !validTTSVoices[c.TTSVoice] {
		return fmt.Errorf("invalid TTS_VOICE %q: must be one of alloy, echo, fable, onyx, nova, shimmer", c.TTSVoice)
	}
	if c.TTSSpeed < 0.25 || c.TTSSpeed > 4.0 {
		return fmt.Errorf("TTS_SPEED must be between 0.25 and 4.0, got %g", c.TTSSpeed)
	}

	if strings.TrimSpace(c.DefaultSearchQuery) == "" {
		return fmt.Errorf("DEFAULT_SEARCH_QUERY must not be empty")
	}
	for name, val := range map[string]string{
		"OUTPUT_DIRECTORY":            c.OutputDirectory,
		"TRANSCRIPT_OUTPUT_DIRECTORY": c.TranscriptOutputDirectory,
		"AUDIO_OUTPUT_DIRECTORY":      c.AudioOutputDirectory,
		"SEARCH_CONFIGS_FILE":         c.SearchConfigsFile,
		"GMAIL_CREDENTIALS_FILE":      c.CredentialsFile,
		"GMAIL_TOKEN_FILE":            c.TokenFile,
	} {
		if strings.TrimSpace(val) == "" {
			return fmt.Errorf("%s must not be empty", name)
		}
	}

	return nil
}

// APIKey returns the API key for the configured provider.
func (c *Config) APIKey() string {
	if c.AIProvider == ProviderAnthropic {
		return c.ClaudeAPIKey
	}
	return c.OpenAIAPIKey
}

// ModelName returns the model name for the configured provider.
func (c *Config) ModelName() string {
	if c.AIProvider == ProviderAnthropic {
		return c.ClaudeModel
	}
	return c.OpenAIModel
}

// EnsureDirectories creates all configured output directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.OutputDirectory}
	if c.EnableTranscriptGeneration {
		dirs = append(dirs, c.TranscriptOutputDirectory)
	}
	if c.EnableAudioGeneration {
		dirs = append(dirs, c.AudioOutputDirectory)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
