// Package cmd implements the command-line interface for schedbot.
//
// This package provides the following commands:
//   - chat: Start an interactive scheduling conversation (default)
//   - serve: Start the MCP server exposing the scheduling tools
//   - auth: Authenticate with Google Calendar
//   - version: Display version information
//
// The chat command is the default command when no subcommand is specified.
package cmd
