package brief_tools

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/mailbrief/internal/config"
	"github.com/teemow/mailbrief/internal/gmail"
	"github.com/teemow/mailbrief/internal/server"
	"github.com/teemow/mailbrief/internal/summary"
)

func testServerContext(t *testing.T) *server.ServerContext {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		CredentialsFile:        filepath.Join(dir, "credentials.json"),
		TokenFile:              filepath.Join(dir, "token.json"),
		AIProvider:             config.ProviderOpenAI,
		OpenAIModel:            "gpt-3.5-turbo",
		MaxEmailsPerRun:        10,
		MaxSearchResults:       50,
		DefaultSearchQuery:     "is:important is:unread",
		SearchConfigsFile:      filepath.Join(dir, "searches.json"),
		EnableSearchValidation: true,
		OutputDirectory:        filepath.Join(dir, "summaries"),
	}

	sc, err := server.NewServerContext(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to create server context: %v", err)
	}
	t.Cleanup(func() { _ = sc.Shutdown() })

	return sc
}

func requestWithArgs(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()

	if result == nil || len(result.Content) == 0 {
		t.Fatal("expected result content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return text.Text
}

func TestHandleSearchByQuery_MissingQuery(t *testing.T) {
	sc := testServerContext(t)

	result, err := handleSearchByQuery(context.Background(), requestWithArgs(map[string]interface{}{}), sc)
	if err != nil {
		t.Fatalf("expected no transport error, got %v", err)
	}
	if !result.IsError {
		t.Error("expected error result for missing query")
	}
}

func TestHandleSearchByQuery_InvalidQuery(t *testing.T) {
	sc := testServerContext(t)

	result, err := handleSearchByQuery(context.Background(), requestWithArgs(map[string]interface{}{
		"query": "is:unrad",
	}), sc)
	if err != nil {
		t.Fatalf("expected no transport error, got %v", err)
	}
	if !result.IsError {
		t.Error("expected error result for invalid query")
	}
}

func TestHandleSearchByQuery_NoToken(t *testing.T) {
	sc := testServerContext(t)

	result, err := handleSearchByQuery(context.Background(), requestWithArgs(map[string]interface{}{
		"query": "is:unread",
	}), sc)
	if err != nil {
		t.Fatalf("expected no transport error, got %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result without a Gmail token")
	}
	if text := resultText(t, result); !strings.Contains(text, "mailbrief auth") {
		t.Errorf("expected auth instructions in result, got %q", text)
	}
}

func TestHandleSearchByConfig_UnknownName(t *testing.T) {
	sc := testServerContext(t)

	result, err := handleSearchByConfig(context.Background(), requestWithArgs(map[string]interface{}{
		"name": "does-not-exist",
	}), sc)
	if err != nil {
		t.Fatalf("expected no transport error, got %v", err)
	}
	if !result.IsError {
		t.Error("expected error result for unknown search config")
	}
}

func TestSearchConfigLifecycle(t *testing.T) {
	sc := testServerContext(t)
	ctx := context.Background()

	// Save
	result, err := handleSaveSearchConfig(ctx, requestWithArgs(map[string]interface{}{
		"name":        "daily",
		"query":       "is:important newer_than:1d",
		"description": "morning briefing",
		"maxResults":  float64(25),
	}), sc)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("save returned error result: %s", resultText(t, result))
	}

	// Duplicate save without overwrite is rejected
	result, err = handleSaveSearchConfig(ctx, requestWithArgs(map[string]interface{}{
		"name":  "daily",
		"query": "is:unread",
	}), sc)
	if err != nil {
		t.Fatalf("duplicate save failed: %v", err)
	}
	if !result.IsError {
		t.Error("expected error result for duplicate name")
	}

	// Overwrite updates in place
	result, err = handleSaveSearchConfig(ctx, requestWithArgs(map[string]interface{}{
		"name":      "daily",
		"query":     "is:unread",
		"overwrite": true,
	}), sc)
	if err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("overwrite returned error result: %s", resultText(t, result))
	}

	// List shows the saved config
	result, err = handleListSearchConfigs(ctx, requestWithArgs(nil), sc)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "daily") || !strings.Contains(text, "is:unread") {
		t.Errorf("expected listing to contain updated config, got %q", text)
	}

	// Delete
	result, err = handleDeleteSearchConfig(ctx, requestWithArgs(map[string]interface{}{
		"name": "daily",
	}), sc)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("delete returned error result: %s", resultText(t, result))
	}

	// Empty listing afterwards
	result, err = handleListSearchConfigs(ctx, requestWithArgs(nil), sc)
	if err != nil {
		t.Fatalf("list after delete failed: %v", err)
	}
	if text := resultText(t, result); !strings.Contains(text, "No saved search configurations") {
		t.Errorf("expected empty listing, got %q", text)
	}
}

func TestHandleSaveSearchConfig_MissingArgs(t *testing.T) {
	sc := testServerContext(t)

	result, err := handleSaveSearchConfig(context.Background(), requestWithArgs(map[string]interface{}{
		"name": "incomplete",
	}), sc)
	if err != nil {
		t.Fatalf("expected no transport error, got %v", err)
	}
	if !result.IsError {
		t.Error("expected error result for missing query")
	}
}

func TestHandleGetStatus(t *testing.T) {
	sc := testServerContext(t)

	result, err := handleGetStatus(context.Background(), requestWithArgs(nil), sc)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("status returned error result: %s", resultText(t, result))
	}

	text := resultText(t, result)
	for _, want := range []string{
		"AI provider: openai",
		"Gmail: not authorized",
		"Transcripts: disabled",
		"Audio briefings: disabled",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("expected status to contain %q, got:\n%s", want, text)
		}
	}
}

func TestFormatSummaries(t *testing.T) {
	summaries := []*summary.EmailSummary{
		{
			EmailID:  "msg-1",
			Subject:  "Quarterly report",
			Sender:   "Alice <alice@example.com>",
			Priority: summary.PriorityHigh,
			Summary:  "The Q3 numbers are ready for review.",
			KeyPoints: []string{
				"Revenue up 12%",
			},
			ActionItems: []string{
				"Review the attached spreadsheet",
			},
		},
		{
			EmailID:  "msg-2",
			Subject:  "Lunch?",
			Sender:   "Bob <bob@example.com>",
			Priority: summary.PriorityLow,
			Summary:  "Bob is asking about lunch plans.",
			Fallback: true,
		},
	}

	text := formatSummaries("is:unread", summaries)

	for _, want := range []string{
		"Summarized 2 emails",
		"[High] Quarterly report",
		"Revenue up 12%",
		"Action items:",
		"Review the attached spreadsheet",
		"[Low] Lunch?",
		"heuristic summary",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, text)
		}
	}
}

func TestFormatEmails(t *testing.T) {
	emails := []*gmail.Email{
		{ID: "msg-1", Subject: "Hello", Sender: "alice@example.com", Date: "Mon, 25 Aug 2026 09:00:00 +0000", Snippet: "Just checking in"},
	}

	text := formatEmails("from:alice@example.com", emails)

	for _, want := range []string{"Found 1 emails", "Hello", "alice@example.com", "Just checking in"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, text)
		}
	}
}
