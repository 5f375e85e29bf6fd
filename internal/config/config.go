// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() builds a Config with defaults; Load layers .env, YAML and env vars on top.
// - Validate reports the first invalid field wrapped in ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderNone      = "none"
	ProviderGemini    = "gemini"
	ProviderVertex    = "vertex"
	ProviderAnthropic = "anthropic"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogJSON switches the logger to the JSON encoder.
	LogJSON bool `koanf:"log_json"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory evaluation request queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of evaluation workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the request-id deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// DatabaseURL is a PostgreSQL DSN. Empty selects the in-memory store.
	DatabaseURL string `koanf:"database_url"`

	// Provider selects the model backend: none, gemini, vertex, anthropic.
	Provider string `koanf:"provider"`

	// ProviderTimeoutMS bounds one provider call per layer.
	ProviderTimeoutMS int `koanf:"provider_timeout_ms"`

	GeminiAPIKey string `koanf:"gemini_api_key"`
	GeminiModel  string `koanf:"gemini_model"`

	VertexProject  string `koanf:"vertex_project"`
	VertexLocation string `koanf:"vertex_location"`
	VertexModel    string `koanf:"vertex_model"`

	AnthropicAPIKey string `koanf:"anthropic_api_key"`
	AnthropicModel  string `koanf:"anthropic_model"`

	// ProviderUnitCosts maps a provider name to the estimated cost of one call.
	ProviderUnitCosts map[string]float64 `koanf:"provider_unit_costs"`

	// AutoRank re-ranks a job after each stored evaluation.
	AutoRank bool `koanf:"auto_rank"`

	// TrainingInterval is the scheduler period for weight adaptation. Zero disables it.
	TrainingInterval time.Duration `koanf:"training_interval"`

	// MinTrainingFeedback is the unconsumed feedback count a scheduled run needs.
	MinTrainingFeedback int `koanf:"min_training_feedback"`

	// RollupInterval is the scheduler period for the daily rollup. Zero disables it.
	RollupInterval time.Duration `koanf:"rollup_interval"`

	// RankingConcurrency bounds per-candidate component lookups in one ranking run.
	RankingConcurrency int `koanf:"ranking_concurrency"`

	// MaxLeaderboardLimit caps GET /jobs/:id/leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		QueueSize:         10_000,
		WorkerCount:       runtime.NumCPU() * 2,
		DedupeSize:        100_000,
		Provider:          ProviderNone,
		ProviderTimeoutMS: 30_000,
		GeminiModel:       "gemini-2.5-flash",
		VertexLocation:    "us-central1",
		VertexModel:       "gemini-2.5-flash",
		AnthropicModel:    "claude-sonnet-4-20250514",
		ProviderUnitCosts: map[string]float64{
			ProviderGemini:    0.002,
			ProviderVertex:    0.002,
			ProviderAnthropic: 0.003,
		},
		AutoRank:            true,
		TrainingInterval:    24 * time.Hour,
		MinTrainingFeedback: 10,
		RollupInterval:      time.Hour,
		RankingConcurrency:  8,
		MaxLeaderboardLimit: 100,
	}
}

// ProviderTimeout returns ProviderTimeoutMS as a duration.
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.ProviderTimeoutMS) * time.Millisecond
}

// Validate checks the fields the service cannot start without.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.DedupeSize < 0:
		return fmt.Errorf("%w: dedupe_size must not be negative", ErrInvalidConfig)
	case c.ProviderTimeoutMS <= 0:
		return fmt.Errorf("%w: provider_timeout_ms must be positive", ErrInvalidConfig)
	case c.MinTrainingFeedback < 1:
		return fmt.Errorf("%w: min_training_feedback must be at least 1", ErrInvalidConfig)
	case c.TrainingInterval < 0 || c.RollupInterval < 0:
		return fmt.Errorf("%w: scheduler intervals must not be negative", ErrInvalidConfig)
	case c.MaxLeaderboardLimit <= 0:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	}

	switch c.Provider {
	case ProviderNone:
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("%w: gemini_api_key is required for provider gemini", ErrInvalidConfig)
		}
	case ProviderVertex:
		if c.VertexProject == "" || c.VertexLocation == "" {
			return fmt.Errorf("%w: vertex_project and vertex_location are required for provider vertex", ErrInvalidConfig)
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("%w: anthropic_api_key is required for provider anthropic", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, c.Provider)
	}

	return nil
}

// UnitCost returns the configured cost of one call to provider.
func (c *Config) UnitCost(provider string) float64 {
	return c.ProviderUnitCosts[provider]
}
