// Package server holds the long-lived state behind the MCP serve command:
// the per-account Calendar clients, the meeting log store, and the optional
// metrics endpoint that exposes the Prometheus registry on its own port.
package server
