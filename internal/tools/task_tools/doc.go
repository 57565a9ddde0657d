// Package task_tools exposes the task router over MCP (Model Context
// Protocol), so AI assistants can hand off natural-language Calendar and
// Gmail tasks and receive the same JSON result envelope the HTTP API
// returns.
package task_tools
