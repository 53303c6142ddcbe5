// Package cmd implements the command-line interface for mailbrief.
//
// This package provides the following commands:
//   - run: Fetch emails, summarize them and write the daily briefing
//   - auth: Run the Google OAuth flow and store a Gmail token
//   - check: Verify Gmail and AI provider connectivity
//   - searches: Manage saved Gmail search configurations
//   - serve: Start the MCP server to provide tools for AI assistants
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The run command is the default command when no subcommand is specified.
package cmd
