package brief_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/mailbrief/internal/searchcfg"
	"github.com/teemow/mailbrief/internal/server"
	"github.com/teemow/mailbrief/internal/tools/common"
)

// RegisterConfigTools registers the saved-search management tools.
func RegisterConfigTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	saveTool := mcp.NewTool("save_search_config",
		mcp.WithDescription("Save a named Gmail search configuration for reuse with search_by_config"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Unique name for the search configuration"),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Gmail search query to save"),
		),
		mcp.WithString("description",
			mcp.Description("Optional description of what this search is for"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of emails this search should return"),
		),
		mcp.WithBoolean("overwrite",
			mcp.Description("Overwrite an existing configuration with the same name (default: false)"),
		),
	)

	s.AddTool(saveTool, common.InstrumentedToolHandler("save_search_config", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSaveSearchConfig(ctx, request, sc)
		}))

	listTool := mcp.NewTool("list_search_configs",
		mcp.WithDescription("List all saved Gmail search configurations with usage statistics"),
	)

	s.AddTool(listTool, common.InstrumentedToolHandler("list_search_configs", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListSearchConfigs(ctx, request, sc)
		}))

	deleteTool := mcp.NewTool("delete_search_config",
		mcp.WithDescription("Delete a saved Gmail search configuration"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the search configuration to delete"),
		),
	)

	s.AddTool(deleteTool, common.InstrumentedToolHandler("delete_search_config", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteSearchConfig(ctx, request, sc)
		}))

	return nil
}

func handleSaveSearchConfig(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, ok := args["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	description := ""
	if descVal, ok := args["description"].(string); ok {
		description = descVal
	}

	maxResults := 0
	if maxResultsVal, ok := args["maxResults"]; ok {
		if maxResultsFloat, ok := maxResultsVal.(float64); ok && maxResultsFloat > 0 {
			maxResults = int(maxResultsFloat)
		}
	}

	overwrite := false
	if overwriteVal, ok := args["overwrite"].(bool); ok {
		overwrite = overwriteVal
	}

	mgr, err := sc.SearchManager()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load search configurations: %v", err)), nil
	}

	cfg := &searchcfg.SearchConfig{
		Name:        name,
		Query:       query,
		Description: description,
		MaxResults:  maxResults,
	}

	if overwrite {
		err = mgr.Update(cfg)
	} else {
		err = mgr.Save(cfg)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to save search config: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Saved search configuration %q with query %q", name, query)), nil
}

func handleListSearchConfigs(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	mgr, err := sc.SearchManager()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load search configurations: %v", err)), nil
	}

	configs, err := mgr.List()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list search configs: %v", err)), nil
	}

	if len(configs) == 0 {
		return mcp.NewToolResultText("No saved search configurations. Use save_search_config to create one."), nil
	}

	stats, err := mgr.Stats()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read search config stats: %v", err)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Saved search configurations (%d):\n\n", stats.Total)
	for _, cfg := range configs {
		fmt.Fprintf(&sb, "- %s: %q", cfg.Name, cfg.Query)
		if cfg.Description != "" {
			fmt.Fprintf(&sb, " (%s)", cfg.Description)
		}
		sb.WriteString("\n")
		if cfg.MaxResults > 0 {
			fmt.Fprintf(&sb, "  Max results: %d\n", cfg.MaxResults)
		}
		fmt.Fprintf(&sb, "  Used %d times", cfg.UsageCount)
		if cfg.LastUsed != nil {
			fmt.Fprintf(&sb, ", last on %s", cfg.LastUsed.Format("2006-01-02"))
		}
		sb.WriteString("\n")
	}
	if stats.MostUsed != "" {
		fmt.Fprintf(&sb, "\nMost used: %s", stats.MostUsed)
	}
	if stats.RecentlyUsed != "" {
		fmt.Fprintf(&sb, "\nRecently used: %s", stats.RecentlyUsed)
	}

	return mcp.NewToolResultText(strings.TrimRight(sb.String(), "\n")), nil
}

func handleDeleteSearchConfig(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, ok := args["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	mgr, err := sc.SearchManager()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load search configurations: %v", err)), nil
	}

	if err := mgr.Delete(name); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete search config: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Deleted search configuration %q", name)), nil
}
