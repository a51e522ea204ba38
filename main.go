package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/olehluchkiv/codesage/internal/analyzer"
	"github.com/olehluchkiv/codesage/internal/config"
	"github.com/olehluchkiv/codesage/internal/enricher"
	"github.com/olehluchkiv/codesage/internal/enricher/llm"
	"github.com/olehluchkiv/codesage/internal/logging"
	"github.com/olehluchkiv/codesage/internal/service"
	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "1.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app holds state shared by every command: loaded config and the logger.
type app struct {
	configPath string
	logLevel   string

	cfg     *config.Config
	logger  *slog.Logger
	cleanup func()
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "codesage",
		Short:         "Heuristic multi-language code analyzer with optional AI review",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ./"+config.DefaultFile+" when present)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(
		newAnalyzeCmd(a),
		newServeCmd(a),
		newExtensionsCmd(a),
		newQuestionCmd(a),
		newDocsCmd(a),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger, cleanup, err := logging.Setup(logging.Options{Level: level, Format: cfg.Log.Format, File: cfg.Log.File})
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	a.cfg, a.logger, a.cleanup = cfg, logger, cleanup
	logger.Debug("configuration loaded", "llm", cfg.LLM, "workers", cfg.Analysis.Workers)
	return nil
}

func (a *app) close() {
	if a.cleanup != nil {
		a.cleanup()
	}
}

// newService builds the analysis service. enr may be nil to skip AI review
// of file analyses.
func (a *app) newService(enr enricher.Enricher) *service.Service {
	return service.New(analyzer.DefaultRegistry(), enr, service.Options{
		MaxFileSize:       a.cfg.Upload.MaxFileSize,
		AllowedExtensions: a.cfg.Upload.AllowedExtensions,
		Workers:           a.cfg.Analysis.Workers,
		PreviewChars:      a.cfg.Analysis.PreviewChars,
		IgnoreDirs:        a.cfg.Analysis.IgnoreDirs,
	}, a.logger)
}

var errNoProvider = errors.New("no LLM provider configured: set MISTRAL_API_KEY (or CODESAGE_LLM_API_KEY) or llm.provider")

// buildEnricher returns an LLM-backed enricher for the configured provider,
// or the placeholder enricher when no provider is usable.
func buildEnricher(cfg config.LLMConfig, logger *slog.Logger) (enricher.Enricher, error) {
	if !cfg.Available() {
		logger.Info("AI enrichment unavailable", "provider", cfg.Provider)
		return enricher.NewDefaultEnricher(), nil
	}

	clientCfg := llm.Config{
		Endpoint: cfg.Endpoint,
		APIKey:   cfg.APIKey,
		Model:    cfg.Model,
		Timeout:  cfg.Timeout,
	}
	var client llm.Completer
	switch cfg.Provider {
	case config.ProviderOllama:
		c, err := llm.NewOllamaClient(clientCfg, logger)
		if err != nil {
			return nil, err
		}
		client = c
	case config.ProviderOpenAI:
		if clientCfg.Endpoint == "" {
			clientCfg.Endpoint = llm.OpenAIEndpoint
		}
		client = llm.NewClient(clientCfg, logger)
	default:
		client = llm.NewClient(clientCfg, logger)
	}
	logger.Info("AI enrichment enabled", "llm", cfg)
	return enricher.NewLLMEnricher(client, logger), nil
}
