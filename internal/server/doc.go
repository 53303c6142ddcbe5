// Package server provides the MCP server context, health checks, and
// metrics endpoint for the mailbrief application.
//
// # Key Components
//
// ServerContext manages the shared dependencies of the MCP server with
// lazy initialization and caching: the Gmail client, the AI summarizer
// and transcript generator, the TTS audio generator, the artifact
// stores, and the search configuration manager. Upstream clients are
// created on first use so the server can start before Gmail
// authorization has happened or API keys are configured.
//
// HealthChecker provides Kubernetes-style liveness and readiness
// probes (/healthz, /readyz, /healthz/detailed).
//
// HTTPServer serves the MCP protocol over streamable HTTP on /mcp with
// the health endpoints on the same mux and optional per-request metrics.
//
// MetricsServer serves Prometheus metrics on a dedicated port,
// isolating operational metrics from the main application traffic.
package server
