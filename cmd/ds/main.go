package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bkyoung/diffscope/internal/adapter/agent"
	"github.com/bkyoung/diffscope/internal/adapter/cli"
	gitadapter "github.com/bkyoung/diffscope/internal/adapter/git"
	"github.com/bkyoung/diffscope/internal/adapter/llm"
	"github.com/bkyoung/diffscope/internal/adapter/llm/anthropic"
	llmhttp "github.com/bkyoung/diffscope/internal/adapter/llm/http"
	"github.com/bkyoung/diffscope/internal/adapter/observability"
	"github.com/bkyoung/diffscope/internal/adapter/render"
	"github.com/bkyoung/diffscope/internal/adapter/repository"
	"github.com/bkyoung/diffscope/internal/adapter/store/sqlite"
	"github.com/bkyoung/diffscope/internal/config"
	"github.com/bkyoung/diffscope/internal/redaction"
	"github.com/bkyoung/diffscope/internal/usecase/review"
	"github.com/bkyoung/diffscope/internal/usecase/skill"
)

// version is injected at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return
		}
		log.Println(llmhttp.RedactURLSecrets(err.Error()))
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "ds",
		EnvPrefix:   "DS",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config invalid: %w", err)
	}

	repoDir := cfg.Git.RepositoryDir
	if repoDir == "" {
		repoDir = "."
	}

	logFormat := llmhttp.LogFormatHuman
	if cfg.Observability.Logging.Format == "json" {
		logFormat = llmhttp.LogFormatJSON
	}

	client := buildClient(cfg, logFormat)
	analyst := agent.New(client, repository.NewLocalRepository(repoDir))

	var runLogger skill.Logger
	if cfg.Observability.Logging.Enabled {
		runLogger = observability.NewRunLogger(logFormat)
	}

	runner, err := skill.NewRunner(skill.RunnerOptions{
		Model:           cfg.Provider.Model,
		ReformatModel:   cfg.Provider.ReformatModel,
		MaxTurns:        cfg.Runner.MaxTurns,
		FileConcurrency: cfg.Runner.FileConcurrency,
		ContextLines:    cfg.Runner.ContextLines,
		TokenBudget:     cfg.Runner.TokenBudget,
	}, skill.RunnerDeps{
		Client:    analyst,
		Files:     repository.NewLocalRepository(repoDir),
		Listener:  render.NewConsoleListener(os.Stderr),
		Logger:    runLogger,
		Estimator: llm.Estimator{},
		Redactor:  redaction.NewEngine(),
	})
	if err != nil {
		return err
	}

	serviceDeps := review.Deps{
		Diffs:  gitadapter.NewEngine(repoDir),
		Runner: runner,
		Logger: runLogger,
	}

	if cfg.Store.Enabled {
		if st := openStore(cfg.Store.Path); st != nil {
			defer st.Close()
			serviceDeps.Store = st
		}
	}

	service, err := review.NewService(serviceDeps)
	if err != nil {
		return err
	}

	lineTolerance := 0
	if cfg.Reconcile.Enabled {
		lineTolerance = cfg.Reconcile.LineTolerance
	}

	root := cli.NewRootCommand(cli.Dependencies{
		Reviewer: service,
		Defaults: cli.Defaults{
			Model:         cfg.Provider.Model,
			RepoDir:       repoDir,
			FailOn:        cfg.FailOn,
			LineTolerance: lineTolerance,
		},
		Version: version,
	})

	return root.ExecuteContext(ctx)
}

func buildClient(cfg config.Config, logFormat llmhttp.LogFormat) *anthropic.Client {
	opts := []anthropic.Option{
		anthropic.WithRetryConfig(retryConfig(cfg.HTTP)),
	}
	if cfg.Provider.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.Provider.BaseURL))
	}
	if timeout, err := time.ParseDuration(cfg.HTTP.Timeout); err == nil && timeout > 0 {
		opts = append(opts, anthropic.WithTimeout(timeout))
	}
	if cfg.Observability.Logging.Enabled {
		level := llmhttp.LogLevelInfo
		if cfg.Observability.Logging.Level == "debug" {
			level = llmhttp.LogLevelDebug
		} else if cfg.Observability.Logging.Level == "error" {
			level = llmhttp.LogLevelError
		}
		opts = append(opts, anthropic.WithLogger(llmhttp.NewDefaultLogger(level, logFormat)))
	}
	return anthropic.NewClient(cfg.Provider.APIKey, opts...)
}

func retryConfig(httpCfg config.HTTPConfig) llmhttp.RetryConfig {
	cfg := llmhttp.DefaultRetryConfig()
	if httpCfg.MaxRetries > 0 {
		cfg.MaxRetries = httpCfg.MaxRetries
	}
	if d, err := time.ParseDuration(httpCfg.InitialBackoff); err == nil && d > 0 {
		cfg.InitialBackoff = d
	}
	if d, err := time.ParseDuration(httpCfg.MaxBackoff); err == nil && d > 0 {
		cfg.MaxBackoff = d
	}
	if httpCfg.BackoffMultiplier > 0 {
		cfg.Multiplier = httpCfg.BackoffMultiplier
	}
	return cfg
}

// openStore initializes run-history persistence. Store problems are
// warnings; a broken database never blocks a review.
func openStore(path string) *sqlite.Store {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Printf("warning: failed to create store directory: %v", err)
		return nil
	}
	st, err := sqlite.NewStore(path)
	if err != nil {
		log.Printf("warning: failed to initialize store: %v", err)
		return nil
	}
	return st
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "ds"))
	}
	return paths
}
