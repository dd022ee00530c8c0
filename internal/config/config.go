package config

import (
	"fmt"

	"github.com/bkyoung/diffscope/internal/domain"
)

// Config represents the full application configuration.
type Config struct {
	Provider      ProviderConfig      `yaml:"provider"`
	HTTP          HTTPConfig          `yaml:"http"`
	Runner        RunnerConfig        `yaml:"runner"`
	Git           GitConfig           `yaml:"git"`
	Apply         ApplyConfig         `yaml:"apply"`
	Reconcile     ReconcileConfig     `yaml:"reconcile"`
	Store         StoreConfig         `yaml:"store"`
	Observability ObservabilityConfig `yaml:"observability"`
	FailOn        string              `yaml:"failOn"`
}

// ProviderConfig configures the analysis model provider.
type ProviderConfig struct {
	Model   string `yaml:"model"`
	APIKey  string `yaml:"apiKey"`
	BaseURL string `yaml:"baseURL"`

	// ReformatModel re-emits malformed reports as strict JSON.
	// Empty disables the secondary pass.
	ReformatModel string `yaml:"reformatModel"`
}

// HTTPConfig holds global HTTP client settings.
type HTTPConfig struct {
	Timeout           string  `yaml:"timeout"`
	MaxRetries        int     `yaml:"maxRetries"`
	InitialBackoff    string  `yaml:"initialBackoff"`
	MaxBackoff        string  `yaml:"maxBackoff"`
	BackoffMultiplier float64 `yaml:"backoffMultiplier"`
}

// RunnerConfig configures how skills are executed over a diff.
type RunnerConfig struct {
	FileConcurrency int `yaml:"fileConcurrency"`
	MaxTurns        int `yaml:"maxTurns"`
	ContextLines    int `yaml:"contextLines"`

	// TokenBudget skips hunks whose prompt estimate exceeds it.
	// Zero disables budgeting.
	TokenBudget int `yaml:"tokenBudget"`
}

type GitConfig struct {
	RepositoryDir string `yaml:"repositoryDir"`
}

// ApplyConfig configures fix application.
type ApplyConfig struct {
	Interactive bool `yaml:"interactive"`
}

// ReconcileConfig configures stale-comment reconciliation.
type ReconcileConfig struct {
	Enabled bool `yaml:"enabled"`

	// LineTolerance is how far a comment may drift from a finding's
	// line and still count as the same issue.
	LineTolerance int `yaml:"lineTolerance"`
}

// StoreConfig configures run-history persistence.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ObservabilityConfig configures logging.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures request/response logging.
type LoggingConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Level         string `yaml:"level"`  // debug, info, error
	Format        string `yaml:"format"` // json, human
	RedactAPIKeys bool   `yaml:"redactAPIKeys"`
}

// Validate reports the first configuration problem found.
func (c Config) Validate() error {
	if c.Provider.Model == "" {
		return fmt.Errorf("provider.model is required")
	}
	if c.Runner.FileConcurrency < 0 {
		return fmt.Errorf("runner.fileConcurrency must not be negative")
	}
	if c.Runner.MaxTurns < 0 {
		return fmt.Errorf("runner.maxTurns must not be negative")
	}
	if c.Runner.ContextLines < 0 {
		return fmt.Errorf("runner.contextLines must not be negative")
	}
	if c.Reconcile.LineTolerance < 0 {
		return fmt.Errorf("reconcile.lineTolerance must not be negative")
	}
	if c.FailOn != "" {
		if _, err := domain.ParseSeverity(c.FailOn); err != nil {
			return fmt.Errorf("failOn: %w", err)
		}
	}
	switch c.Observability.Logging.Format {
	case "", "json", "human":
	default:
		return fmt.Errorf("observability.logging.format: must be json or human, got %q", c.Observability.Logging.Format)
	}
	return nil
}

// Merge combines multiple configuration instances, prioritising the latter ones.
func Merge(configs ...Config) Config {
	result := Config{}
	for _, cfg := range configs {
		result = merge(result, cfg)
	}
	return result
}

func merge(base, overlay Config) Config {
	result := base

	result.Provider = chooseProvider(base.Provider, overlay.Provider)
	result.HTTP = chooseHTTP(base.HTTP, overlay.HTTP)
	result.Runner = chooseRunner(base.Runner, overlay.Runner)
	result.Git = chooseGit(base.Git, overlay.Git)
	result.Apply = chooseApply(base.Apply, overlay.Apply)
	result.Reconcile = chooseReconcile(base.Reconcile, overlay.Reconcile)
	result.Store = chooseStore(base.Store, overlay.Store)
	result.Observability = chooseObservability(base.Observability, overlay.Observability)
	if overlay.FailOn != "" {
		result.FailOn = overlay.FailOn
	}

	return result
}

func chooseProvider(base, overlay ProviderConfig) ProviderConfig {
	result := base
	if overlay.Model != "" {
		result.Model = overlay.Model
	}
	if overlay.APIKey != "" {
		result.APIKey = overlay.APIKey
	}
	if overlay.BaseURL != "" {
		result.BaseURL = overlay.BaseURL
	}
	if overlay.ReformatModel != "" {
		result.ReformatModel = overlay.ReformatModel
	}
	return result
}

func chooseHTTP(base, overlay HTTPConfig) HTTPConfig {
	if overlay.Timeout != "" || overlay.MaxRetries != 0 || overlay.InitialBackoff != "" || overlay.MaxBackoff != "" || overlay.BackoffMultiplier != 0 {
		return overlay
	}
	return base
}

func chooseRunner(base, overlay RunnerConfig) RunnerConfig {
	result := base
	if overlay.FileConcurrency != 0 {
		result.FileConcurrency = overlay.FileConcurrency
	}
	if overlay.MaxTurns != 0 {
		result.MaxTurns = overlay.MaxTurns
	}
	if overlay.ContextLines != 0 {
		result.ContextLines = overlay.ContextLines
	}
	if overlay.TokenBudget != 0 {
		result.TokenBudget = overlay.TokenBudget
	}
	return result
}

func chooseGit(base, overlay GitConfig) GitConfig {
	if overlay.RepositoryDir != "" {
		return overlay
	}
	return base
}

func chooseApply(base, overlay ApplyConfig) ApplyConfig {
	if overlay.Interactive {
		return overlay
	}
	return base
}

func chooseReconcile(base, overlay ReconcileConfig) ReconcileConfig {
	if overlay.Enabled || overlay.LineTolerance != 0 {
		return overlay
	}
	return base
}

func chooseStore(base, overlay StoreConfig) StoreConfig {
	if overlay.Enabled || overlay.Path != "" {
		return overlay
	}
	return base
}

func chooseObservability(base, overlay ObservabilityConfig) ObservabilityConfig {
	result := base
	if overlay.Logging.Enabled || overlay.Logging.Level != "" || overlay.Logging.Format != "" {
		result.Logging = overlay.Logging
	}
	return result
}
