package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/jvoss/taskpilot/internal/tools/task_tools"
)

func newMCPCmd() *cobra.Command {
	var cfg appConfig

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server on stdio",
		Long: `Start a Model Context Protocol (MCP) server on standard input/output,
exposing the task router to AI assistants.

Tools:
  route_task   Route a natural-language task; returns the JSON result envelope
  auth_status  Check whether a Google credential is stored

Logs go to stderr so stdout stays clean for the MCP transport. A stored
Google credential is required for task execution; run "taskpilot serve" and
visit /authorize first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP(cfg)
		},
	}

	cfg.addFlags(cmd)
	return cmd
}

func runMCP(cfg appConfig) error {
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app, err := buildApp(shutdownCtx, cfg)
	if err != nil {
		return err
	}
	defer app.shutdown(context.Background())

	mcpSrv := mcpserver.NewMCPServer("taskpilot", version,
		mcpserver.WithToolCapabilities(true),
	)

	if err := task_tools.RegisterTaskTools(mcpSrv, app.sc, app.router); err != nil {
		return fmt.Errorf("failed to register task tools: %w", err)
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	select {
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	case <-shutdownCtx.Done():
		return nil
	}
}
