// Package brief_tools provides MCP (Model Context Protocol) tools for
// searching Gmail and producing AI-generated email summaries.
//
// This package exposes the briefing pipeline through MCP tools that can be
// called by AI agents or other MCP clients:
//
// Search and Summarization:
//   - search_by_query: Search Gmail with an ad-hoc query and summarize results
//   - search_by_config: Run a saved search configuration and summarize results
//
// Saved Search Management:
//   - save_search_config: Save a named Gmail search for reuse
//   - list_search_configs: List saved searches with usage statistics
//   - delete_search_config: Remove a saved search
//
// Diagnostics:
//   - test_ai: Check connectivity to the configured AI provider
//   - get_status: Report configuration, Gmail authorization and stored artifacts
//
// The search tools require an authorized Gmail client, provided lazily through
// the server context. A server started without a Gmail token still serves the
// management and diagnostics tools; the search tools return instructions for
// running 'mailbrief auth'.
//
// All handlers are wrapped with the instrumentation middleware from
// tools/common, which records metrics, traces and audit logs per invocation.
package brief_tools
