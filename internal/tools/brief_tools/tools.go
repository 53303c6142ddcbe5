package brief_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/mailbrief/internal/gmail"
	"github.com/teemow/mailbrief/internal/instrumentation"
	"github.com/teemow/mailbrief/internal/server"
	"github.com/teemow/mailbrief/internal/summary"
	"github.com/teemow/mailbrief/internal/tools/common"
)

// RegisterBriefTools registers all briefing-related tools with the MCP server.
func RegisterBriefTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Register search configuration tools
	if err := RegisterConfigTools(s, sc); err != nil {
		return fmt.Errorf("failed to register config tools: %w", err)
	}

	// Register status and diagnostics tools
	if err := RegisterStatusTools(s, sc); err != nil {
		return fmt.Errorf("failed to register status tools: %w", err)
	}

	// Search by query tool
	searchByQueryTool := mcp.NewTool("search_by_query",
		mcp.WithDescription("Search Gmail with a query and return AI-generated summaries of the matching emails"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Gmail search query (e.g., 'is:unread', 'from:user@example.com newer_than:7d')"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of emails to process (default: 10)"),
		),
		mcp.WithBoolean("summarize",
			mcp.Description("Generate AI summaries for the results (default: true)"),
		),
	)

	s.AddTool(searchByQueryTool, common.InstrumentedToolHandlerWithService(
		"search_by_query", instrumentation.ServiceGmail, instrumentation.OperationSearch, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearchByQuery(ctx, request, sc)
		}))

	// Search by saved config tool
	searchByConfigTool := mcp.NewTool("search_by_config",
		mcp.WithDescription("Run a saved search configuration and return AI-generated summaries of the matching emails"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the saved search configuration"),
		),
		mcp.WithBoolean("summarize",
			mcp.Description("Generate AI summaries for the results (default: true)"),
		),
	)

	s.AddTool(searchByConfigTool, common.InstrumentedToolHandlerWithService(
		"search_by_config", instrumentation.ServiceGmail, instrumentation.OperationSearch, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearchByConfig(ctx, request, sc)
		}))

	return nil
}

// gmailClient returns the Gmail client, translating a missing token into
// an actionable message for the calling agent.
func gmailClient(sc *server.ServerContext) (*gmail.Client, *mcp.CallToolResult) {
	client, err := sc.GmailClient()
	if err != nil {
		errorMsg := fmt.Sprintf(`Gmail access is not available: %v

To authorize access:

1. Run 'mailbrief auth' on the host running this server
2. Visit the printed URL in your browser and sign in
3. Paste the authorization code back into the command

You only need to authorize once. The token is refreshed automatically.`, err)
		return nil, mcp.NewToolResultError(errorMsg)
	}
	return client, nil
}

func handleSearchByQuery(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	cfg := sc.Config()

	if cfg.EnableSearchValidation {
		if err := gmail.ValidateQuery(query); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid Gmail query: %v", err)), nil
		}
	}

	maxResults := int64(10)
	if maxResultsVal, ok := args["maxResults"]; ok {
		if maxResultsFloat, ok := maxResultsVal.(float64); ok && maxResultsFloat > 0 {
			maxResults = int64(maxResultsFloat)
		}
	}
	if cfg.MaxSearchResults > 0 && maxResults > int64(cfg.MaxSearchResults) {
		maxResults = int64(cfg.MaxSearchResults)
	}

	summarize := true
	if summarizeVal, ok := args["summarize"].(bool); ok {
		summarize = summarizeVal
	}

	client, errResult := gmailClient(sc)
	if errResult != nil {
		return errResult, nil
	}

	emails, err := client.FetchWithQuery(ctx, query, maxResults)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search emails: %v", err)), nil
	}

	if len(emails) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No emails found for query %q", query)), nil
	}

	if !summarize {
		return mcp.NewToolResultText(formatEmails(query, emails)), nil
	}

	summarizer, err := sc.Summarizer()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("AI summarization is not available: %v", err)), nil
	}

	summaries := summarizer.SummarizeBatch(ctx, emails)
	return mcp.NewToolResultText(formatSummaries(query, summaries)), nil
}

func handleSearchByConfig(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, ok := args["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	mgr, err := sc.SearchManager()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load search configurations: %v", err)), nil
	}

	searchCfg, err := mgr.Get(name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Unknown search configuration %q: %v", name, err)), nil
	}

	summarize := true
	if summarizeVal, ok := args["summarize"].(bool); ok {
		summarize = summarizeVal
	}

	client, errResult := gmailClient(sc)
	if errResult != nil {
		return errResult, nil
	}

	maxResults := int64(searchCfg.MaxResults)
	if maxResults <= 0 {
		maxResults = int64(sc.Config().MaxSearchResults)
	}
	if maxResults <= 0 {
		maxResults = 10
	}

	emails, err := client.FetchWithQuery(ctx, searchCfg.Query, maxResults)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search emails: %v", err)), nil
	}

	// Usage tracking is best effort, a failed write should not fail the search.
	_ = mgr.RecordUsage(name)

	if len(emails) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No emails found for search %q (query %q)", name, searchCfg.Query)), nil
	}

	if !summarize {
		return mcp.NewToolResultText(formatEmails(searchCfg.Query, emails)), nil
	}

	summarizer, err := sc.Summarizer()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("AI summarization is not available: %v", err)), nil
	}

	summaries := summarizer.SummarizeBatch(ctx, emails)
	return mcp.NewToolResultText(formatSummaries(searchCfg.Query, summaries)), nil
}

// formatEmails renders plain email metadata without AI summaries.
func formatEmails(query string, emails []*gmail.Email) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d emails for query %q:\n\n", len(emails), query)
	for i, email := range emails {
		fmt.Fprintf(&sb, "%d. %s\n   From: %s\n   Date: %s\n", i+1, email.Subject, email.Sender, email.Date)
		if email.Snippet != "" {
			fmt.Fprintf(&sb, "   %s\n", email.Snippet)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// formatSummaries renders AI summaries in a readable plain-text layout.
func formatSummaries(query string, summaries []*summary.EmailSummary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Summarized %d emails for query %q:\n\n", len(summaries), query)
	for i, s := range summaries {
		fmt.Fprintf(&sb, "%d. [%s] %s\n   From: %s\n", i+1, s.Priority, s.Subject, s.Sender)
		fmt.Fprintf(&sb, "   Summary: %s\n", s.Summary)
		for _, point := range s.KeyPoints {
			fmt.Fprintf(&sb, "   - %s\n", point)
		}
		if len(s.ActionItems) > 0 {
			sb.WriteString("   Action items:\n")
			for _, item := range s.ActionItems {
				fmt.Fprintf(&sb, "   * %s\n", item)
			}
		}
		if s.Fallback {
			sb.WriteString("   (heuristic summary, AI provider unavailable)\n")
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
