package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioPath = "../../internal/application/testdata/international.yaml"

// runApp runs the command line with args and returns stdout and stderr.
func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := newApp(&stdout, &stderr).Run(append([]string{"scoresheet"}, args...))
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// TestRun verifies the standings table printed for a scenario.
func TestRun(t *testing.T) {
	out, _, err := runApp(t, "run", "--seed", "3", scenarioPath)
	require.NoError(t, err)

	assert.Contains(t, out, "BHS International 2024 Quartet\n")
	assert.Contains(t, out, "BHS International Quartet Championship 2024")
	assert.Contains(t, out, "BHS International 2024 Quartet Finals")
	assert.Regexp(t, `1\s+Crossroads\s+329\s+332\s+332\s+993`, out)
	assert.Regexp(t, `3\s+Main Street\s+.*450`, out)
	assert.NotContains(t, out, "Forefront")
	assert.NotContains(t, out, "flagged")
}

// TestRun_JSON verifies the JSON report and that the seeded draw is
// reproducible.
func TestRun_JSON(t *testing.T) {
	var reports [2]struct {
		Hash     string `json:"hash"`
		Flagged  int    `json:"flagged"`
		Sessions []struct {
			Results []struct {
				Draw  string `json:"draw"`
				Group string `json:"group"`
			} `json:"results"`
		} `json:"sessions"`
	}
	for i := range reports {
		out, _, err := runApp(t, "run", "--json", "--seed", "11", scenarioPath)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal([]byte(out), &reports[i]))
	}

	assert.Len(t, reports[0].Hash, 64)
	assert.Zero(t, reports[0].Flagged)
	require.Len(t, reports[0].Sessions, 2)
	assert.Len(t, reports[0].Sessions[0].Results, 3)
	assert.Equal(t, reports[0], reports[1])
}

// TestRun_Observability verifies that a configuration enabling metrics and
// notifications writes a metrics file and logs notices.
func TestRun_Observability(t *testing.T) {
	cfg := writeFile(t, "engine.yaml", `
version: "1.0.0"
store:
  driver: memory
notifications:
  enabled: true
  rate_per_second: 0
  burst: 0
metrics:
  enabled: true
  namespace: bhs
logging:
  level: info
  format: json
`)
	metricsPath := filepath.Join(t.TempDir(), "scoresheet.prom")

	_, logs, err := runApp(t, "--config", cfg, "run", "--metrics-file", metricsPath, scenarioPath)
	require.NoError(t, err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	metrics := string(data)
	assert.Contains(t, metrics, "bhs_transitions_total")
	assert.Contains(t, metrics, `bhs_notices_total{entity="contestant"`)
	assert.Contains(t, metrics, "bhs_entities_created_total")

	assert.Contains(t, logs, `"component":"notify"`)
	assert.Contains(t, logs, `"transition":"qualify"`)
}

// TestCommands tests argument and configuration errors across commands.
func TestCommands(t *testing.T) {
	badConfig := writeFile(t, "bad.yaml", "store:\n  driver: redis\n")
	sqliteConfig := writeFile(t, "sqlite.yaml", "store:\n  driver: sqlite\n  dsn: \"file:contest.db\"\n")

	tests := []struct {
		name    string
		args    []string
		wantOut string
		wantErr string
	}{
		{
			name:    "check scenario",
			args:    []string{"check", scenarioPath},
			wantOut: "scenario ok: 4 contestants, 2 rounds, hash ",
		},
		{
			name:    "check without file",
			args:    []string{"check"},
			wantErr: "expected one scenario file, got 0 arguments",
		},
		{
			name:    "run missing file",
			args:    []string{"run", "missing.yaml"},
			wantErr: "failed to read file",
		},
		{
			name:    "metrics file in missing directory",
			args:    []string{"run", "--metrics-file", filepath.Join(t.TempDir(), "no", "such", "dir", "m.prom"), scenarioPath},
			wantErr: "metrics error: operation=WriteToTextfile",
		},
		{
			name:    "default config",
			args:    []string{"validate-config"},
			wantOut: "config ok: store=memory outliers=true notifications=false metrics=false",
		},
		{
			name:    "sqlite config",
			args:    []string{"--config", sqliteConfig, "validate-config"},
			wantOut: "config ok: store=sqlite",
		},
		{
			name:    "invalid config",
			args:    []string{"--config", badConfig, "validate-config"},
			wantErr: "invalid configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runApp(t, tt.args...)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out, tt.wantOut)
		})
	}
}
