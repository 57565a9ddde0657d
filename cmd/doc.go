// Package cmd implements the command-line interface for taskpilot.
//
// This package provides the following commands:
//   - serve: Start the HTTP API server with the Google OAuth flow
//   - route: Route a single natural-language task and print the result
//   - mcp: Start the MCP server on stdio for AI assistants
//   - version: Display version information
package cmd
