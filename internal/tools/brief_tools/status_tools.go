package brief_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/mailbrief/internal/google"
	"github.com/teemow/mailbrief/internal/instrumentation"
	"github.com/teemow/mailbrief/internal/server"
	"github.com/teemow/mailbrief/internal/tools/common"
)

// RegisterStatusTools registers diagnostics tools for checking upstream
// connectivity and server configuration.
func RegisterStatusTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	testAITool := mcp.NewTool("test_ai",
		mcp.WithDescription("Test connectivity to the configured AI provider and report the active model"),
	)

	s.AddTool(testAITool, common.InstrumentedToolHandlerWithService(
		"test_ai", sc.Config().AIProvider, instrumentation.OperationSummarize, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleTestAI(ctx, request, sc)
		}))

	statusTool := mcp.NewTool("get_status",
		mcp.WithDescription("Report server configuration, Gmail authorization state and stored artifacts"),
	)

	s.AddTool(statusTool, common.InstrumentedToolHandler("get_status", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetStatus(ctx, request, sc)
		}))

	return nil
}

func handleTestAI(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	summarizer, err := sc.Summarizer()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("AI provider is not configured: %v", err)), nil
	}

	provider := summarizer.Provider()

	testCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	start := time.Now()
	if err := summarizer.TestConnection(testCtx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("AI provider %s (model %s) is unreachable: %v",
			provider.Name(), provider.Model(), err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("AI provider %s is reachable (model %s, responded in %s)",
		provider.Name(), provider.Model(), time.Since(start).Round(time.Millisecond))), nil
}

func handleGetStatus(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	cfg := sc.Config()

	var sb strings.Builder
	sb.WriteString("mailbrief status:\n\n")

	fmt.Fprintf(&sb, "AI provider: %s (model %s)\n", cfg.AIProvider, cfg.ModelName())
	fmt.Fprintf(&sb, "Max emails per run: %d\n", cfg.MaxEmailsPerRun)
	fmt.Fprintf(&sb, "Default search query: %q\n", cfg.DefaultSearchQuery)

	if google.HasToken(cfg.TokenFile) {
		sb.WriteString("Gmail: authorized\n")
	} else {
		fmt.Fprintf(&sb, "Gmail: not authorized (no token at %s, run 'mailbrief auth')\n", cfg.TokenFile)
	}

	fmt.Fprintf(&sb, "Summaries directory: %s\n", cfg.OutputDirectory)
	if store, err := sc.SummaryStore(); err == nil {
		if dates, err := store.List(); err == nil {
			fmt.Fprintf(&sb, "Stored summary days: %d\n", len(dates))
		}
	}

	if cfg.EnableTranscriptGeneration {
		fmt.Fprintf(&sb, "Transcripts: enabled (directory %s)\n", cfg.TranscriptOutputDirectory)
	} else {
		sb.WriteString("Transcripts: disabled\n")
	}

	if cfg.EnableAudioGeneration {
		fmt.Fprintf(&sb, "Audio briefings: enabled (directory %s, voice %s, speed %.2f)\n",
			cfg.AudioOutputDirectory, cfg.TTSVoice, cfg.TTSSpeed)
	} else {
		sb.WriteString("Audio briefings: disabled\n")
	}

	if mgr, err := sc.SearchManager(); err == nil {
		if stats, err := mgr.Stats(); err == nil {
			fmt.Fprintf(&sb, "Saved searches: %d\n", stats.Total)
		}
	}

	return mcp.NewToolResultText(strings.TrimRight(sb.String(), "\n")), nil
}
