package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/mailbrief/internal/config"
	"github.com/teemow/mailbrief/internal/searchcfg"
	"github.com/teemow/mailbrief/internal/server"
	"github.com/teemow/mailbrief/internal/summary"
)

func newRunCmd() *cobra.Command {
	var (
		query          string
		searchName     string
		maxEmails      int
		outputDir      string
		skipTranscript bool
		skipAudio      bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch emails, summarize them and write the daily briefing",
		Long: `Fetch emails from Gmail, generate AI summaries and write them to a daily
YAML file. When enabled in the configuration, a spoken-style transcript and
an MP3 audio briefing are generated as well.

Transcript and audio generation failures do not fail the run; the summaries
are always written first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			if query != "" && searchName != "" {
				return fmt.Errorf("--query and --search-config are mutually exclusive")
			}

			if searchName != "" {
				mgr, err := searchcfg.NewManager(cfg.SearchConfigsFile, cfg.EnableSearchValidation)
				if err != nil {
					return err
				}
				saved, err := mgr.Get(searchName)
				if err != nil {
					return err
				}
				cfg.DefaultSearchQuery = saved.Query
				if saved.MaxResults > 0 {
					cfg.MaxEmailsPerRun = saved.MaxResults
				}
				_ = mgr.RecordUsage(searchName)
			}

			if query != "" {
				cfg.DefaultSearchQuery = query
			}
			if maxEmails > 0 {
				cfg.MaxEmailsPerRun = maxEmails
			}
			if outputDir != "" {
				cfg.OutputDirectory = outputDir
			}
			if skipTranscript {
				cfg.EnableTranscriptGeneration = false
			}
			if skipAudio {
				cfg.EnableAudioGeneration = false
			}

			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			return runBriefing(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "Gmail search query (default: DEFAULT_SEARCH_QUERY from the environment)")
	cmd.Flags().StringVar(&searchName, "search-config", "", "Name of a saved search configuration to run")
	cmd.Flags().IntVar(&maxEmails, "max-emails", 0, "Maximum number of emails to process (default: MAX_EMAILS_PER_RUN from the environment)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for daily summary files (default: OUTPUT_DIRECTORY from the environment)")
	cmd.Flags().BoolVar(&skipTranscript, "skip-transcript", false, "Skip transcript generation for this run")
	cmd.Flags().BoolVar(&skipAudio, "skip-audio", false, "Skip audio generation for this run")

	return cmd
}

func runBriefing(ctx context.Context, cfg *config.Config) error {
	sc, err := server.NewServerContext(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer func() { _ = sc.Shutdown() }()

	client, err := sc.GmailClient()
	if err != nil {
		return err
	}

	date := time.Now()

	log.Printf("Fetching up to %d emails matching %q", cfg.MaxEmailsPerRun, cfg.DefaultSearchQuery)
	emails, err := client.FetchWithQuery(ctx, cfg.DefaultSearchQuery, int64(cfg.MaxEmailsPerRun))
	if err != nil {
		return fmt.Errorf("failed to fetch emails: %w", err)
	}

	store, err := sc.SummaryStore()
	if err != nil {
		return err
	}

	if len(emails) == 0 {
		path, err := store.WriteEmpty(date)
		if err != nil {
			return fmt.Errorf("failed to write summary file: %w", err)
		}
		log.Printf("No emails found, wrote empty summary file %s", path)
		return writeTranscriptAndAudio(ctx, sc, date, nil)
	}

	summarizer, err := sc.Summarizer()
	if err != nil {
		return err
	}

	log.Printf("Summarizing %d emails with %s", len(emails), summarizer.Provider().Name())
	summaries := summarizer.SummarizeBatch(ctx, emails)

	fallbacks := 0
	for _, s := range summaries {
		if s.Fallback {
			fallbacks++
		}
	}
	if fallbacks > 0 {
		log.Printf("Warning: %d of %d summaries fell back to heuristics", fallbacks, len(summaries))
	}

	path, err := store.Write(date, summaries)
	if err != nil {
		return fmt.Errorf("failed to write summary file: %w", err)
	}
	log.Printf("Wrote %d summaries to %s", len(summaries), path)

	return writeTranscriptAndAudio(ctx, sc, date, summaries)
}

// writeTranscriptAndAudio produces the optional briefing artifacts. Errors
// are logged rather than returned so a TTS outage never loses summaries.
func writeTranscriptAndAudio(ctx context.Context, sc *server.ServerContext, date time.Time, summaries []*summary.EmailSummary) error {
	cfg := sc.Config()

	if !cfg.EnableTranscriptGeneration {
		return nil
	}

	gen, err := sc.TranscriptGenerator()
	if err != nil {
		log.Printf("Warning: transcript generation skipped: %v", err)
		return nil
	}

	text := gen.Generate(ctx, date, summaries)

	transcriptStore, err := sc.TranscriptStore()
	if err != nil {
		log.Printf("Warning: transcript not written: %v", err)
		return nil
	}
	path, err := transcriptStore.Write(date, text)
	if err != nil {
		log.Printf("Warning: failed to write transcript: %v", err)
		return nil
	}
	log.Printf("Wrote transcript to %s", path)

	if !cfg.EnableAudioGeneration {
		return nil
	}

	audioGen, err := sc.AudioGenerator()
	if err != nil {
		log.Printf("Warning: audio generation skipped: %v", err)
		return nil
	}
	audioPath, err := audioGen.GenerateDaily(ctx, date, text)
	if err != nil {
		log.Printf("Warning: failed to generate audio briefing: %v", err)
		return nil
	}
	log.Printf("Wrote audio briefing to %s", audioPath)

	return nil
}
