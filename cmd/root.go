package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the taskpilot application
var rootCmd = &cobra.Command{
	Use:   "taskpilot",
	Short: "Routes natural-language tasks to Google Calendar and Gmail",
	Long: `taskpilot turns free-text tasks like "schedule a call with Sam tomorrow
at 3pm" or "summarize my emails from today" into Google Calendar and Gmail
operations, using an LLM to classify the task and extract its parameters.

It can run as:
  - An HTTP API server (serve)
  - A one-shot CLI that routes a single task (route)
  - An MCP (Model Context Protocol) server for AI assistants (mcp)`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "taskpilot version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Local configuration may live in a .env file; absence is fine.
	_ = godotenv.Load()

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newRouteCmd())
	rootCmd.AddCommand(newMCPCmd())
	rootCmd.AddCommand(newVersionCmd())
}
