package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jvoss/taskpilot/internal/google"
	"github.com/jvoss/taskpilot/internal/instrumentation"
	"github.com/jvoss/taskpilot/internal/intent"
	"github.com/jvoss/taskpilot/internal/llm"
	"github.com/jvoss/taskpilot/internal/logging"
	"github.com/jvoss/taskpilot/internal/router"
	"github.com/jvoss/taskpilot/internal/server"
)

// appConfig holds the flags shared by the serve, route and mcp commands.
type appConfig struct {
	debug     bool
	logFormat string
	timezone  string

	geminiAPIKey string
	geminiModel  string

	googleClientID     string
	googleClientSecret string
	redirectURL        string
	tokenPath          string
}

func (c *appConfig) addFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&c.debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&c.logFormat, "log-format", logging.FormatText, "Log format: text or json")
	cmd.Flags().StringVar(&c.timezone, "timezone", "", "IANA timezone for interpreting task times (default: system timezone). Can also use TASKPILOT_TIMEZONE env var.")
	cmd.Flags().StringVar(&c.geminiAPIKey, "gemini-api-key", "", "Gemini API key. Can also use GEMINI_API_KEY env var.")
	cmd.Flags().StringVar(&c.geminiModel, "gemini-model", llm.DefaultModel, "Gemini model used for intent extraction")
	cmd.Flags().StringVar(&c.googleClientID, "google-client-id", "", "Google OAuth client ID. Can also use GOOGLE_CLIENT_ID env var.")
	cmd.Flags().StringVar(&c.googleClientSecret, "google-client-secret", "", "Google OAuth client secret. Can also use GOOGLE_CLIENT_SECRET env var.")
	cmd.Flags().StringVar(&c.redirectURL, "redirect-url", "http://localhost:8080/oauth2callback", "OAuth redirect URL registered with the Google client")
	cmd.Flags().StringVar(&c.tokenPath, "token-path", "", "Path to the stored Google token (default: user cache directory)")
}

// app bundles the wired application: credential store, instrumentation,
// server context and router.
type app struct {
	logger   *slog.Logger
	location *time.Location
	store    *google.FileTokenProvider
	provider *instrumentation.Provider
	sc       *server.ServerContext
	router   *router.Router
}

// buildApp wires the full application from config. Everything that can be
// misconfigured fails here, before any server starts or task is routed.
func buildApp(ctx context.Context, cfg appConfig) (*app, error) {
	logger := logging.Setup(logging.Options{Debug: cfg.debug, Format: cfg.logFormat})

	location := time.Local
	tz := cfg.timezone
	if tz == "" {
		tz = os.Getenv("TASKPILOT_TIMEZONE")
	}
	if tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
		}
		location = loc
	}

	oauthConf, err := google.OAuthSettings{
		ClientID:     cfg.googleClientID,
		ClientSecret: cfg.googleClientSecret,
		RedirectURL:  cfg.redirectURL,
	}.Config()
	if err != nil {
		return nil, err
	}

	tokenPath := cfg.tokenPath
	if tokenPath == "" {
		tokenPath, err = google.DefaultTokenPath()
		if err != nil {
			return nil, fmt.Errorf("failed to determine token path: %w", err)
		}
	}
	store, err := google.NewFileTokenProvider(oauthConf, tokenPath)
	if err != nil {
		return nil, err
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}

	metrics := provider.Metrics()
	store.OnRefresh = func(refreshed bool, refreshErr error) {
		result := instrumentation.OAuthResultSuccess
		if refreshErr != nil {
			result = instrumentation.OAuthResultFailure
		}
		if refreshed || refreshErr != nil {
			metrics.RecordOAuthTokenRefresh(context.Background(), result)
		}
	}

	sc := server.NewServerContext(ctx, store, server.NewOAuthFlow(oauthConf), metrics)

	apiKey := cfg.geminiAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	llmClient, err := llm.NewClient(llm.Config{APIKey: apiKey, Model: cfg.geminiModel})
	if err != nil {
		return nil, err
	}

	rt := router.New(router.Config{
		Calendar:  sc,
		Mail:      sc,
		Extractor: &instrumentedExtractor{client: llmClient, metrics: metrics},
		Parser:    intent.Parser{Repair: true},
		Location:  location,
		Logger:    logger,
		Metrics:   metrics,
	})

	return &app{
		logger:   logger,
		location: location,
		store:    store,
		provider: provider,
		sc:       sc,
		router:   rt,
	}, nil
}

// shutdown releases everything buildApp created.
func (a *app) shutdown(ctx context.Context) {
	_ = a.sc.Shutdown()
	_ = a.provider.Shutdown(ctx)
}

// instrumentedExtractor wraps the Gemini client with a span and a metric per
// extraction call.
type instrumentedExtractor struct {
	client  *llm.Client
	metrics *instrumentation.Metrics
}

func (e *instrumentedExtractor) Extract(ctx context.Context, task string, today time.Time) (string, error) {
	ctx, span := instrumentation.StartLLMSpan(ctx, e.client.Model())
	defer span.End()

	start := time.Now()
	raw, err := e.client.Extract(ctx, task, today)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	e.metrics.RecordLLMRequest(ctx, e.client.Model(), status, time.Since(start))

	return raw, err
}
