package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jvoss/taskpilot/internal/router"
)

func newRouteCmd() *cobra.Command {
	var cfg appConfig

	cmd := &cobra.Command{
		Use:   "route <task>",
		Short: "Route a single task and print the result envelope",
		Long: `Route one natural-language task and print the JSON result envelope to
stdout. The task may be given as multiple arguments, which are joined with
spaces:

  taskpilot route schedule a call with Sam tomorrow at 3pm

A stored Google credential is required; run "taskpilot serve" and visit
/authorize first. Without one the command prints an auth_required envelope
and exits non-zero.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoute(cfg, strings.Join(args, " "))
		},
	}

	cfg.addFlags(cmd)
	return cmd
}

func runRoute(cfg appConfig, task string) error {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.shutdown(context.Background())

	var env router.Envelope
	if !app.sc.Authorized() {
		env = router.AuthRequired()
	} else {
		env = app.router.Route(ctx, task)
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Println(string(data))

	if env.Status == router.StatusAuthRequired {
		return fmt.Errorf("no google credential stored (token path: %s)", app.store.Path())
	}
	return nil
}
