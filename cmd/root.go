package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/timvw/agent-studio/internal/config"
	"github.com/timvw/agent-studio/internal/logging"
	telem "github.com/timvw/agent-studio/internal/otel"
	"github.com/timvw/agent-studio/internal/studio"
)

var (
	// Global flags. Empty values keep the configured setting.
	flagProvider  string
	flagModel     string
	flagBaseURL   string
	flagAPIKey    string
	flagMaxTokens int64
	flagTheme     string
	flagCatalog   string
	flagLatency   string
)

var rootCmd = &cobra.Command{
	Use:   "agent-studio",
	Short: "Terminal dashboard for AI agents, prompts and models",
	Long: `agent-studio browses the agents, prompts, LLMs, knowledge bases,
features and guardrails of an AI platform from the terminal.

Data comes from an in-memory mock API seeded from a built-in catalog, or
from the YAML file named by --catalog (reloaded when it changes).

Configuration is loaded from .agent-studio.yaml, ~/.config/agent-studio/config.yaml
and AGENT_STUDIO_* environment variables.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", "", "playground provider: mock, anthropic, openai, gemini")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "playground model name (default depends on provider)")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "override LLM API base URL")
	rootCmd.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "override LLM API key")
	rootCmd.PersistentFlags().Int64Var(&flagMaxTokens, "max-tokens", 0, "max completion tokens (default: 1024)")
	rootCmd.PersistentFlags().StringVar(&flagTheme, "theme", "", "color theme: dark, light")
	rootCmd.PersistentFlags().StringVar(&flagCatalog, "catalog", "", "YAML catalog replacing the built-in seed data")
	rootCmd.PersistentFlags().StringVar(&flagLatency, "latency", "", "mock API latency, e.g. 400ms (0 disables)")
}

// app is what every subcommand needs: configuration, a logger, telemetry
// and the mock API client.
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	tel    *telem.Telemetry
	client *studio.Client
}

// setup loads configuration (defaults -> config file -> env vars -> flags)
// and builds the shared services.
func setup(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := applyFlags(cfg); err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	if cfg.ConfigFile != "" {
		log.Info("config loaded", zap.String("path", cfg.ConfigFile))
	}

	// Wire build version into OTEL service metadata
	telem.Version = Version
	tel, err := telem.Init(ctx, telem.OTELConfig{
		Endpoint: cfg.OTELEndpoint,
		Headers:  cfg.OTELHeaders,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: otel init failed: %v\n", err)
		tel = telem.Noop()
	}

	opts := []studio.Option{
		studio.WithLatency(cfg.LatencyDuration),
		studio.WithCacheTTL(cfg.CacheTTLDuration),
		studio.WithMetrics(tel.Metrics),
		studio.WithTracer(tel.Tracer),
		studio.WithLogger(log),
	}
	if cfg.CatalogFile != "" {
		cat, err := studio.LoadCatalogFile(cfg.CatalogFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, studio.WithCatalog(cat))
	}
	client, err := studio.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("mock API: %w", err)
	}
	return &app{cfg: cfg, log: log, tel: tel, client: client}, nil
}

func (a *app) close(ctx context.Context) {
	a.tel.Shutdown(ctx)
	_ = a.log.Sync()
}

// applyFlags overrides configuration with the global flags that were set.
func applyFlags(cfg *config.Config) error {
	if flagProvider != "" {
		cfg.Provider = flagProvider
	}
	if flagModel != "" {
		cfg.Model = flagModel
	}
	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
	}
	if flagAPIKey != "" {
		cfg.APIKey = flagAPIKey
	}
	if flagMaxTokens > 0 {
		cfg.MaxTokens = flagMaxTokens
	}
	if flagTheme != "" {
		cfg.Theme = flagTheme
	}
	if flagCatalog != "" {
		cfg.CatalogFile = flagCatalog
	}
	if flagLatency != "" {
		cfg.Latency = flagLatency
	}
	return cfg.Resolve()
}
