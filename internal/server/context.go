package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/teemow/mailbrief/internal/audio"
	"github.com/teemow/mailbrief/internal/config"
	"github.com/teemow/mailbrief/internal/gmail"
	"github.com/teemow/mailbrief/internal/google"
	"github.com/teemow/mailbrief/internal/instrumentation"
	"github.com/teemow/mailbrief/internal/searchcfg"
	"github.com/teemow/mailbrief/internal/storage"
	"github.com/teemow/mailbrief/internal/summary"
	"github.com/teemow/mailbrief/internal/transcript"
)

// ServerContext holds the shared dependencies for the MCP server.
// Upstream clients are created lazily: the server can start before
// Gmail authorization has happened or API keys are configured, and
// individual tools report the missing piece when first used.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	cfg *config.Config

	gmailClient *gmail.Client
	summarizer  *summary.Summarizer
	audioGen    *audio.Generator

	searchManager *searchcfg.Manager

	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context.
func NewServerContext(ctx context.Context, cfg *config.Config) (*ServerContext, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	shutdownCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:    shutdownCtx,
		cancel: cancel,
		cfg:    cfg,
	}

	// Eagerly connect Gmail when a token is already on disk so the first
	// tool call doesn't pay the setup cost. Missing tokens are fine here.
	if google.HasToken(cfg.TokenFile) {
		client, err := gmail.NewClient(shutdownCtx, cfg.CredentialsFile, cfg.TokenFile)
		if err != nil {
			fmt.Printf("Warning: failed to create Gmail client: %v\n", err)
		} else {
			sc.gmailClient = client
		}
	}

	return sc, nil
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Config returns the application configuration.
func (sc *ServerContext) Config() *config.Config {
	return sc.cfg
}

// GmailClient returns the Gmail client, creating it on first use.
// Returns an error if no OAuth token has been saved yet.
func (sc *ServerContext) GmailClient() (*gmail.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.gmailClient != nil {
		return sc.gmailClient, nil
	}

	if !google.HasToken(sc.cfg.TokenFile) {
		return nil, fmt.Errorf("no Gmail token found at %s, run 'mailbrief auth' first", sc.cfg.TokenFile)
	}

	client, err := gmail.NewClient(sc.ctx, sc.cfg.CredentialsFile, sc.cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail client: %w", err)
	}

	client.SetMetrics(sc.metrics)
	sc.gmailClient = client
	return client, nil
}

// SetGmailClient sets the Gmail client. Used by tests and after auth.
func (sc *ServerContext) SetGmailClient(client *gmail.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.gmailClient = client
}

// Summarizer returns the AI summarizer, creating it on first use.
func (sc *ServerContext) Summarizer() (*summary.Summarizer, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.summarizer != nil {
		return sc.summarizer, nil
	}

	provider, err := summary.NewProvider(sc.cfg)
	if err != nil {
		return nil, err
	}

	sc.summarizer = summary.NewSummarizer(provider, sc.cfg.MaxTokens, sc.cfg.Temperature)
	return sc.summarizer, nil
}

// SetSummarizer sets the summarizer. Used by tests.
func (sc *ServerContext) SetSummarizer(s *summary.Summarizer) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.summarizer = s
}

// TranscriptGenerator returns a transcript generator backed by the
// configured AI provider.
func (sc *ServerContext) TranscriptGenerator() (*transcript.Generator, error) {
	provider, err := summary.NewProvider(sc.cfg)
	if err != nil {
		return nil, err
	}
	return transcript.NewGenerator(provider, sc.cfg.TranscriptMaxTokens, sc.cfg.TranscriptTemperature), nil
}

// AudioGenerator returns the TTS audio generator, creating it on first use.
// Returns an error when audio generation is disabled or misconfigured.
func (sc *ServerContext) AudioGenerator() (*audio.Generator, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.audioGen != nil {
		return sc.audioGen, nil
	}

	if !sc.cfg.EnableAudioGeneration {
		return nil, fmt.Errorf("audio generation is disabled, set ENABLE_AUDIO_GENERATION=true")
	}

	gen, err := audio.NewGenerator(sc.cfg)
	if err != nil {
		return nil, err
	}

	gen.SetMetrics(sc.metrics)
	sc.audioGen = gen
	return gen, nil
}

// SummaryStore returns a store for daily summary files.
func (sc *ServerContext) SummaryStore() (*storage.SummaryStore, error) {
	return storage.NewSummaryStore(sc.cfg.OutputDirectory)
}

// TranscriptStore returns a store for transcript files.
func (sc *ServerContext) TranscriptStore() (*storage.TranscriptStore, error) {
	return storage.NewTranscriptStore(sc.cfg.TranscriptOutputDirectory)
}

// SearchManager returns the search configuration manager, creating it
// on first use.
func (sc *ServerContext) SearchManager() (*searchcfg.Manager, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.searchManager != nil {
		return sc.searchManager, nil
	}

	mgr, err := searchcfg.NewManager(sc.cfg.SearchConfigsFile, sc.cfg.EnableSearchValidation)
	if err != nil {
		return nil, err
	}

	sc.searchManager = mgr
	return mgr, nil
}

// Metrics returns the metrics recorder, or nil when instrumentation
// is not configured.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetMetrics sets the metrics recorder and propagates it to clients that
// were created before instrumentation came up.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
	if sc.gmailClient != nil {
		sc.gmailClient.SetMetrics(m)
	}
	if sc.audioGen != nil {
		sc.audioGen.SetMetrics(m)
	}
}

// AuditLogger returns the audit logger, or nil when not configured.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// SetAuditLogger sets the audit logger.
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = al
}

// IsShutdown returns whether the server has been shutdown.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
