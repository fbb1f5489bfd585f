package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ahrav/go-scoresheet/internal/domain"
	"github.com/ahrav/go-scoresheet/internal/ports"
)

// EngineConfig defines the complete runtime configuration of the contest
// engine and serves as the primary configuration entry point for the system.
// Use EngineConfig when wiring an Engine from a YAML file so that storage,
// outlier detection, draw order and observability are selected without code
// changes.
type EngineConfig struct {
	// Version specifies the configuration schema version using semantic
	// versioning to ensure compatibility across system updates.
	Version string `yaml:"version" validate:"required,semver"`
	// Store selects the persistence backend that holds the contest object
	// graph between transitions.
	Store StoreConfig `yaml:"store" validate:"required"`
	// Outliers configures the Dixon Q test run when a performance finishes.
	Outliers OutlierConfig `yaml:"outliers"`
	// Draw configures how the first-round order of appearance is drawn.
	Draw DrawConfig `yaml:"draw"`
	// Notifications configures delivery of the optional transition notices.
	Notifications NotificationConfig `yaml:"notifications"`
	// Metrics configures the Prometheus collector.
	Metrics MetricsConfig `yaml:"metrics"`
	// Logging configures the structured logger handed to the engine.
	Logging LoggingConfig `yaml:"logging"`
	// Concurrency bounds the fan-out used when an award computes its
	// competitor tallies. Zero leaves the fan-out unbounded.
	Concurrency int `yaml:"concurrency" validate:"gte=0,lte=64"`
}

// StoreConfig selects the persistence backend.
// The memory driver needs no DSN; sqlite and postgres require one.
type StoreConfig struct {
	// Driver names the backend: memory, sqlite or postgres.
	Driver string `yaml:"driver" validate:"required,storedriver"`
	// DSN is the data source name handed to database/sql.
	DSN string `yaml:"dsn" validate:"required_unless=Driver memory"`
}

// OutlierConfig controls outlier detection over the official scores of a
// finished performance.
// Use OutlierConfig to pick one of the built-in confidence levels or to
// supply a custom table of critical values keyed by sample size.
type OutlierConfig struct {
	// Enabled turns detection on. When off every entered score is
	// validated without review.
	Enabled bool `yaml:"enabled"`
	// Confidence selects a built-in critical value table: 90, 95 or 99.
	Confidence int `yaml:"confidence" validate:"omitempty,confidence"`
	// CriticalValues overrides the built-in table. Keys are sample sizes
	// of at least three; values are Q critical values in (0, 1).
	CriticalValues map[int]float64 `yaml:"critical_values" validate:"omitempty,dive,keys,min=3,endkeys,gt=0,lt=1"`
}

// DrawConfig controls the draw of the first-round order of appearance.
type DrawConfig struct {
	// Seed makes the draw reproducible. When nil the draw is random.
	Seed *uint64 `yaml:"seed"`
}

// NotificationConfig controls delivery of transition notices.
type NotificationConfig struct {
	// Enabled turns notice delivery on.
	Enabled bool `yaml:"enabled"`
	// RatePerSecond caps sustained delivery. Zero disables the limit.
	RatePerSecond float64 `yaml:"rate_per_second" validate:"gte=0"`
	// Burst is the number of notices that may be delivered at once.
	Burst int `yaml:"burst" validate:"gte=0"`
}

// MetricsConfig controls the Prometheus collector.
type MetricsConfig struct {
	// Enabled registers the collector with the default registry.
	Enabled bool `yaml:"enabled"`
	// Namespace prefixes every metric name.
	Namespace string `yaml:"namespace" validate:"omitempty,max=64,metricname"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	// Format is text or json.
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// DefaultConfig returns the configuration used when no file is supplied:
// an in-memory store, Dixon detection at 95% confidence, a random draw and
// text logging at info level.
func DefaultConfig() *EngineConfig {
	return &EngineConfig{
		Version: "1.0.0",
		Store:   StoreConfig{Driver: "memory"},
		Outliers: OutlierConfig{
			Enabled:    true,
			Confidence: 95,
		},
		Notifications: NotificationConfig{RatePerSecond: 10, Burst: 10},
		Metrics:       MetricsConfig{Namespace: "scoresheet"},
		Logging:       LoggingConfig{Level: "info", Format: "text"},
	}
}

// OutlierPolicy builds the domain policy described by the configuration.
// It returns an error if the confidence level has no built-in
// table.
func (c *EngineConfig) OutlierPolicy() (domain.OutlierPolicy, error) {
	if !c.Outliers.Enabled {
		return domain.OutlierPolicy{}, nil
	}
	if len(c.Outliers.CriticalValues) > 0 {
		critical := make(map[int]float64, len(c.Outliers.CriticalValues))
		for n, q := range c.Outliers.CriticalValues {
			critical[n] = q
		}
		return domain.OutlierPolicy{Critical: critical}, nil
	}
	confidence := c.Outliers.Confidence
	if confidence == 0 {
		confidence = 95
	}
	return domain.DixonPolicy(confidence)
}

// Shuffler builds the draw strategy described by the configuration.
func (c *EngineConfig) Shuffler() domain.Shuffler {
	if c.Draw.Seed != nil {
		return domain.SeededShuffler{Seed: *c.Draw.Seed}
	}
	return domain.RandomShuffler{}
}

// NewLogger builds a slog logger writing to w according to the logging
// section.
func (c *EngineConfig) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Validate runs struct validation over the configuration.
// It returns an error describing every failing field.
func (c *EngineConfig) Validate() error {
	v, err := newValidator()
	if err != nil {
		return err
	}
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("struct validation failed: %w", err)
	}
	return nil
}

// FileConfigLoader implements ports.ConfigLoader over a YAML file.
// Unknown fields are rejected so that typos never silently fall back to
// defaults.
type FileConfigLoader struct {
	// Path is the location of the YAML file.
	Path string
}

// Load decodes the file into config, which must be a pointer to a struct.
// Fields absent from the file keep the values config already holds, so a
// config pre-populated with DefaultConfig gets defaults for free.
// It returns a ports.ConfigError wrapping ports.ErrConfigNotFound when the
// file does not exist.
func (l FileConfigLoader) Load(ctx context.Context, config any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// Clean the path to prevent directory traversal attacks.
	data, err := os.ReadFile(filepath.Clean(l.Path))
	if err != nil {
		if os.IsNotExist(err) {
			return ports.NewConfigError(l.Path, ports.ErrConfigNotFound)
		}
		return ports.NewConfigError(l.Path, err)
	}
	if err := decodeStrict(data, config); err != nil {
		return ports.NewConfigError(l.Path, err)
	}
	return nil
}

// LoadConfig loads an EngineConfig through loader on top of DefaultConfig
// and validates the result.
// It returns an error if loading or validation fails.
func LoadConfig(ctx context.Context, loader ports.ConfigLoader) (*EngineConfig, error) {
	cfg := DefaultConfig()
	if err := loader.Load(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidConfiguration, err)
	}
	return cfg, nil
}

// newValidator creates a validator with the engine's custom rules
// registered.
func newValidator() (*validator.Validate, error) {
	v := validator.New()
	if err := registerCustomValidators(v); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}
	return v, nil
}
