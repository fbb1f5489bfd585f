package application

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-scoresheet/internal/domain"
	"github.com/ahrav/go-scoresheet/internal/ports"
)

// writeConfig writes content to a config file in a temporary directory and
// returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scoresheet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// TestDefaultConfig verifies that the default configuration is valid and
// selects the in-memory store with Dixon detection at 95% confidence.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.True(t, cfg.Outliers.Enabled)

	policy, err := cfg.OutlierPolicy()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultOutlierPolicy(), policy)
	assert.Equal(t, domain.RandomShuffler{}, cfg.Shuffler())
}

// TestEngineConfig_Validate tests struct validation of the configuration,
// including the custom semver, storedriver, confidence and metricname rules.
func TestEngineConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *EngineConfig)
		wantErr string
	}{
		{name: "defaults", mutate: func(*EngineConfig) {}},
		{
			name:    "missing version",
			mutate:  func(c *EngineConfig) { c.Version = "" },
			wantErr: "version",
		},
		{
			name:    "malformed version",
			mutate:  func(c *EngineConfig) { c.Version = "v1" },
			wantErr: "semver",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *EngineConfig) { c.Store.Driver = "mongo" },
			wantErr: "storedriver",
		},
		{
			name:    "sqlite without dsn",
			mutate:  func(c *EngineConfig) { c.Store.Driver = "sqlite" },
			wantErr: "dsn",
		},
		{
			name: "sqlite with dsn",
			mutate: func(c *EngineConfig) {
				c.Store = StoreConfig{Driver: "sqlite", DSN: "file:contest.db"}
			},
		},
		{
			name:    "unsupported confidence",
			mutate:  func(c *EngineConfig) { c.Outliers.Confidence = 80 },
			wantErr: "confidence",
		},
		{
			name: "critical value out of range",
			mutate: func(c *EngineConfig) {
				c.Outliers.CriticalValues = map[int]float64{4: 1.5}
			},
			wantErr: "critical_values",
		},
		{
			name: "critical value sample too small",
			mutate: func(c *EngineConfig) {
				c.Outliers.CriticalValues = map[int]float64{2: 0.9}
			},
			wantErr: "critical_values",
		},
		{
			name:    "invalid metric namespace",
			mutate:  func(c *EngineConfig) { c.Metrics.Namespace = "score-sheet" },
			wantErr: "metricname",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *EngineConfig) { c.Logging.Level = "trace" },
			wantErr: "level",
		},
		{
			name:    "negative burst",
			mutate:  func(c *EngineConfig) { c.Notifications.Burst = -1 },
			wantErr: "burst",
		},
		{
			name:    "concurrency too high",
			mutate:  func(c *EngineConfig) { c.Concurrency = 100 },
			wantErr: "concurrency",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// TestEngineConfig_OutlierPolicy tests how the outlier section maps onto a
// domain policy.
func TestEngineConfig_OutlierPolicy(t *testing.T) {
	tests := []struct {
		name     string
		outliers OutlierConfig
		want     domain.OutlierPolicy
	}{
		{
			name:     "disabled",
			outliers: OutlierConfig{Enabled: false, Confidence: 99},
			want:     domain.OutlierPolicy{},
		},
		{
			name:     "built-in 90",
			outliers: OutlierConfig{Enabled: true, Confidence: 90},
			want:     domain.OutlierPolicy{Critical: domain.DixonCritical90},
		},
		{
			name:     "built-in default",
			outliers: OutlierConfig{Enabled: true},
			want:     domain.OutlierPolicy{Critical: domain.DixonCritical95},
		},
		{
			name:     "custom table",
			outliers: OutlierConfig{Enabled: true, CriticalValues: map[int]float64{3: 0.9, 4: 0.8}},
			want:     domain.OutlierPolicy{Critical: map[int]float64{3: 0.9, 4: 0.8}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Outliers = tt.outliers

			got, err := cfg.OutlierPolicy()

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestEngineConfig_Shuffler verifies that a configured seed yields a
// reproducible draw.
func TestEngineConfig_Shuffler(t *testing.T) {
	seed := uint64(42)
	cfg := DefaultConfig()
	cfg.Draw.Seed = &seed

	assert.Equal(t, domain.SeededShuffler{Seed: 42}, cfg.Shuffler())
}

// TestEngineConfig_NewLogger verifies the level and format selection.
func TestEngineConfig_NewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Logging = LoggingConfig{Level: "warn", Format: "json"}

	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "contest", "c1")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"contest":"c1"`)
}

// TestLoadConfig tests loading configuration files on top of the defaults.
func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
		errMsg  string
		verify  func(t *testing.T, cfg *EngineConfig)
	}{
		{
			name: "partial file keeps defaults",
			content: `
version: "1.2.0"
store:
  driver: sqlite
  dsn: "file:contest.db"
draw:
  seed: 7
`,
			verify: func(t *testing.T, cfg *EngineConfig) {
				assert.Equal(t, "1.2.0", cfg.Version)
				assert.Equal(t, "sqlite", cfg.Store.Driver)
				require.NotNil(t, cfg.Draw.Seed)
				assert.Equal(t, uint64(7), *cfg.Draw.Seed)
				assert.True(t, cfg.Outliers.Enabled)
				assert.Equal(t, "scoresheet", cfg.Metrics.Namespace)
			},
		},
		{
			name: "full file",
			content: `
version: "1.0.0"
store:
  driver: postgres
  dsn: "postgres://localhost/contests?sslmode=disable"
outliers:
  enabled: true
  confidence: 99
notifications:
  enabled: true
  rate_per_second: 2.5
  burst: 5
metrics:
  enabled: true
  namespace: bhs
logging:
  level: debug
  format: json
concurrency: 4
`,
			verify: func(t *testing.T, cfg *EngineConfig) {
				assert.Equal(t, "postgres", cfg.Store.Driver)
				assert.Equal(t, 99, cfg.Outliers.Confidence)
				assert.True(t, cfg.Notifications.Enabled)
				assert.InDelta(t, 2.5, cfg.Notifications.RatePerSecond, 1e-9)
				assert.Equal(t, "bhs", cfg.Metrics.Namespace)
				assert.Equal(t, 4, cfg.Concurrency)
			},
		},
		{
			name:    "empty file is the default",
			content: "",
			verify: func(t *testing.T, cfg *EngineConfig) {
				assert.Equal(t, DefaultConfig(), cfg)
			},
		},
		{
			name: "unknown field rejected",
			content: `
version: "1.0.0"
stor:
  driver: memory
`,
			errMsg: "stor",
		},
		{
			name: "invalid values",
			content: `
store:
  driver: redis
`,
			wantErr: domain.ErrInvalidConfiguration,
		},
		{
			name:    "malformed yaml",
			content: "version: [unclosed",
			errMsg:  "failed to load config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := FileConfigLoader{Path: writeConfig(t, tt.content)}

			cfg, err := LoadConfig(context.Background(), loader)

			if tt.wantErr != nil || tt.errMsg != "" {
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
				return
			}
			require.NoError(t, err)
			tt.verify(t, cfg)
		})
	}
}

// TestFileConfigLoader_NotFound verifies that a missing file is reported as
// ErrConfigNotFound inside a ConfigError.
func TestFileConfigLoader_NotFound(t *testing.T) {
	loader := FileConfigLoader{Path: filepath.Join(t.TempDir(), "missing.yaml")}

	err := loader.Load(context.Background(), DefaultConfig())

	var cerr *ports.ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.ErrorIs(t, err, ports.ErrConfigNotFound)
}

// TestFileConfigLoader_CancelledContext verifies that loading honors the
// context.
func TestFileConfigLoader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := FileConfigLoader{Path: writeConfig(t, "version: 1.0.0")}.Load(ctx, DefaultConfig())

	assert.ErrorIs(t, err, context.Canceled)
}
