package cmd

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/mailbrief/internal/config"
	"github.com/teemow/mailbrief/internal/server"
)

func testCmdServerContext(t *testing.T) *server.ServerContext {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		CredentialsFile:   filepath.Join(dir, "credentials.json"),
		TokenFile:         filepath.Join(dir, "token.json"),
		AIProvider:        config.ProviderOpenAI,
		SearchConfigsFile: filepath.Join(dir, "searches.json"),
		OutputDirectory:   filepath.Join(dir, "summaries"),
	}

	sc, err := server.NewServerContext(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to create server context: %v", err)
	}
	t.Cleanup(func() { _ = sc.Shutdown() })

	return sc
}

func TestRegisterAllTools(t *testing.T) {
	sc := testCmdServerContext(t)

	mcpSrv := mcpserver.NewMCPServer("mailbrief", "test",
		mcpserver.WithToolCapabilities(true),
	)

	if err := registerAllTools(mcpSrv, sc); err != nil {
		t.Fatalf("registerAllTools failed: %v", err)
	}

	registered := make(map[string]bool)
	for _, st := range mcpSrv.ListTools() {
		registered[st.Tool.Name] = true
	}

	want := []string{
		"search_by_query",
		"search_by_config",
		"save_search_config",
		"list_search_configs",
		"delete_search_config",
		"test_ai",
		"get_status",
	}
	for _, name := range want {
		if !registered[name] {
			t.Errorf("expected tool %q to be registered", name)
		}
	}
}

func TestGenerateToolsMarkdown(t *testing.T) {
	sc := testCmdServerContext(t)

	mcpSrv := mcpserver.NewMCPServer("mailbrief", "test",
		mcpserver.WithToolCapabilities(true),
	)
	if err := registerAllTools(mcpSrv, sc); err != nil {
		t.Fatalf("registerAllTools failed: %v", err)
	}

	serverTools := mcpSrv.ListTools()
	tools := make([]mcp.Tool, 0, len(serverTools))
	for _, st := range serverTools {
		tools = append(tools, st.Tool)
	}

	markdown := generateToolsMarkdown(tools)

	for _, want := range []string{
		"# MCP Tools Reference",
		"## Search and Summarization",
		"### search_by_query",
		"## Saved Search Management",
		"## Diagnostics",
	} {
		if !strings.Contains(markdown, want) {
			t.Errorf("expected markdown to contain %q", want)
		}
	}
}

func TestGetCategoryFromToolName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"search_by_query", "Search and Summarization"},
		{"search_by_config", "Search and Summarization"},
		{"save_search_config", "Saved Search Management"},
		{"list_search_configs", "Saved Search Management"},
		{"delete_search_config", "Saved Search Management"},
		{"test_ai", "Diagnostics"},
		{"get_status", "Diagnostics"},
		{"something_else", "Other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getCategoryFromToolName(tt.name); got != tt.want {
				t.Errorf("getCategoryFromToolName(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}
