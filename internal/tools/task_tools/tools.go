package task_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/jvoss/taskpilot/internal/router"
	"github.com/jvoss/taskpilot/internal/server"
)

// RegisterTaskTools registers the task routing tools with the MCP server.
func RegisterTaskTools(s *mcpserver.MCPServer, sc *server.ServerContext, rt server.TaskRouter) error {
	routeTaskTool := mcp.NewTool("route_task",
		mcp.WithDescription("Route a natural-language task to Google Calendar or Gmail. "+
			"Handles scheduling calls, adding events, checking schedule and availability, "+
			"summarizing, searching, listing unread, and sending emails. "+
			"Returns a JSON result envelope describing the outcome."),
		mcp.WithString("task",
			mcp.Required(),
			mcp.Description("The task in plain language, e.g. 'schedule a call with Sam tomorrow at 3pm'"),
		),
	)

	s.AddTool(routeTaskTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleRouteTask(ctx, request, sc, rt)
	})

	authStatusTool := mcp.NewTool("auth_status",
		mcp.WithDescription("Check whether a Google credential is stored. Tasks can only be executed once authorized."),
	)

	s.AddTool(authStatusTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleAuthStatus(ctx, request, sc)
	})

	return nil
}

func handleRouteTask(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, rt server.TaskRouter) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	task, ok := args["task"].(string)
	if !ok || strings.TrimSpace(task) == "" {
		return mcp.NewToolResultError("task is required"), nil
	}

	var env router.Envelope
	if !sc.Authorized() {
		env = router.AuthRequired()
	} else {
		env = rt.Route(ctx, task)
	}

	return envelopeResult(env)
}

func handleAuthStatus(_ context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if sc.Authorized() {
		return mcp.NewToolResultText("Authorized: a Google credential is stored."), nil
	}
	return mcp.NewToolResultText("Not authorized: no Google credential is stored. Start the server and visit /authorize to grant access."), nil
}

// envelopeResult renders an envelope as the tool's JSON text payload.
func envelopeResult(env router.Envelope) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
