// Command scoresheet replays barbershop contests described in scenario files
// and prints their results.
//
// Usage:
//
//	scoresheet [--config engine.yaml] run [--json] [--metrics-file out.prom] scenario.yaml
//	scoresheet [--config engine.yaml] check scenario.yaml
//	scoresheet [--config engine.yaml] validate-config
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"

	"github.com/ahrav/go-scoresheet/infrastructure/middleware"
	"github.com/ahrav/go-scoresheet/infrastructure/notify"
	"github.com/ahrav/go-scoresheet/infrastructure/store"
	"github.com/ahrav/go-scoresheet/internal/application"
	"github.com/ahrav/go-scoresheet/internal/ports"
)

const (
	configFlag      = "config"
	jsonFlag        = "json"
	metricsFileFlag = "metrics-file"
	seedFlag        = "seed"

	notifyTimeout = 2 * time.Second
)

var build string
var semanticVersion = "v0.1.0-dev" + build

func main() {
	// A .env file next to the binary may set SCORESHEET_CONFIG.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "scoresheet: failed to load .env: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp(os.Stdout, os.Stderr).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "scoresheet: %v\n", err)
		os.Exit(1)
	}
}

// newApp builds the command tree writing results to stdout and logs to
// stderr.
func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "scoresheet",
		Usage:     "Score and rank barbershop contests from scenario files",
		Version:   semanticVersion,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    configFlag,
				Aliases: []string{"c"},
				Usage:   "Path to the engine configuration file",
				EnvVars: []string{"SCORESHEET_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "Run a scenario through the full contest lifecycle and print the standings",
				ArgsUsage: "<scenario.yaml>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: jsonFlag, Usage: "Print the full report as JSON"},
					&cli.StringFlag{Name: metricsFileFlag, Usage: "Write Prometheus metrics in text format to this file"},
					&cli.Uint64Flag{Name: seedFlag, Usage: "Seed the first-round draw"},
				},
				Action: runScenario,
			},
			{
				Name:      "check",
				Usage:     "Validate a scenario file and print its hash",
				ArgsUsage: "<scenario.yaml>",
				Action:    checkScenario,
			},
			{
				Name:   "validate-config",
				Usage:  "Validate the engine configuration",
				Action: validateConfig,
			},
		},
	}
}

// loadConfig returns the configuration named by --config, or the defaults.
func loadConfig(cCtx *cli.Context) (*application.EngineConfig, error) {
	path := cCtx.String(configFlag)
	if path == "" {
		return application.DefaultConfig(), nil
	}
	return application.LoadConfig(cCtx.Context, application.FileConfigLoader{Path: path})
}

func scenarioArg(cCtx *cli.Context) (*application.Scenario, error) {
	if cCtx.NArg() != 1 {
		return nil, fmt.Errorf("expected one scenario file, got %d arguments", cCtx.NArg())
	}
	return application.LoadScenarioFile(cCtx.Args().First())
}

func runScenario(cCtx *cli.Context) error {
	cfg, err := loadConfig(cCtx)
	if err != nil {
		return err
	}
	if cCtx.IsSet(seedFlag) {
		seed := cCtx.Uint64(seedFlag)
		cfg.Draw.Seed = &seed
	}
	sc, err := scenarioArg(cCtx)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	engine, err := newEngine(cCtx.Context, cfg, reg, cCtx.App.ErrWriter)
	if err != nil {
		return err
	}
	defer engine.Close()

	rep, err := engine.RunScenario(cCtx.Context, sc)
	if err != nil {
		return err
	}
	if path := cCtx.String(metricsFileFlag); path != "" {
		if err := prometheus.WriteToTextfile(path, reg); err != nil {
			return ports.NewMetricsError(path, "WriteToTextfile", err)
		}
	}

	out := cCtx.App.Writer
	if cCtx.Bool(jsonFlag) {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	return printReport(out, rep)
}

func checkScenario(cCtx *cli.Context) error {
	sc, err := scenarioArg(cCtx)
	if err != nil {
		return err
	}
	hash, err := sc.Hash()
	if err != nil {
		return err
	}
	fmt.Fprintf(cCtx.App.Writer, "scenario ok: %d contestants, %d rounds, hash %s\n",
		len(sc.Contestants), len(sc.Rounds), hash)
	return nil
}

func validateConfig(cCtx *cli.Context) error {
	cfg, err := loadConfig(cCtx)
	if err != nil {
		return err
	}
	if _, err := cfg.OutlierPolicy(); err != nil {
		return err
	}
	fmt.Fprintf(cCtx.App.Writer, "config ok: store=%s outliers=%t notifications=%t metrics=%t\n",
		cfg.Store.Driver, cfg.Outliers.Enabled, cfg.Notifications.Enabled, cfg.Metrics.Enabled)
	return nil
}

// newEngine wires the store, metrics, tracing and notifications selected
// by cfg into an Engine. Metrics register with reg.
func newEngine(
	ctx context.Context,
	cfg *application.EngineConfig,
	reg prometheus.Registerer,
	logs io.Writer,
) (*application.Engine, error) {
	logger := cfg.NewLogger(logs)

	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return nil, err
	}

	var metrics ports.MetricsCollector
	if cfg.Metrics.Enabled {
		metrics = middleware.NewPrometheusMetrics(reg, cfg.Metrics.Namespace)
	}

	deps := application.Dependencies{
		Logger:   logger,
		Metrics:  metrics,
		Observer: middleware.NewOTelTransitionObserver(nil, metrics),
	}
	if cfg.Notifications.Enabled {
		deps.Notifier = notify.Chain(
			notify.NewSlogNotifier(logger.With("component", "notify")),
			notify.MetricsMiddleware(metrics),
			notify.RateLimitMiddleware(notifyLimit(cfg.Notifications), cfg.Notifications.Burst),
			notify.TimeoutMiddleware(notifyTimeout),
		)
	}

	engine, err := application.NewEngine(st, cfg, deps)
	if err != nil {
		return nil, errors.Join(err, st.Close())
	}
	logger.Debug("engine ready", slog.String("store", cfg.Store.Driver))
	return engine, nil
}

func notifyLimit(cfg application.NotificationConfig) rate.Limit {
	if cfg.RatePerSecond == 0 {
		return rate.Inf
	}
	return rate.Limit(cfg.RatePerSecond)
}

// printReport writes one table per award followed by the results of each
// round.
func printReport(w io.Writer, rep *application.ScenarioReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\n", rep.Contest.Name)
	for _, a := range rep.Awards {
		fmt.Fprintf(tw, "\n%s\n", a.Award.Name)
		fmt.Fprintln(tw, "PLACE\tGROUP\tMUS\tPRS\tSNG\tTOTAL\tSCORE")
		for _, st := range a.Standings {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				intOrDash(st.Place), st.Group,
				intOrDash(st.MusPoints), intOrDash(st.PrsPoints), intOrDash(st.SngPoints),
				intOrDash(st.TotalPoints), score(st.TotalScore))
		}
	}
	for _, ss := range rep.Sessions {
		fmt.Fprintf(tw, "\n%s\n", ss.Session.Name)
		fmt.Fprintln(tw, "PLACE\tDRAW\tGROUP\tTOTAL\tSCORE\tSTATUS")
		for _, r := range ss.Results {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				intOrDash(r.Place), r.Draw, r.Group, intOrDash(r.TotalPoints), score(r.TotalScore), r.Status)
		}
	}
	if rep.Flagged > 0 {
		fmt.Fprintf(tw, "\n%d scores flagged for review\n", rep.Flagged)
	}
	return tw.Flush()
}

func intOrDash(p *int) string {
	if p == nil {
		return "-"
	}
	return strconv.Itoa(*p)
}

func score(s *float64) string {
	if s == nil {
		return "-"
	}
	return strconv.FormatFloat(*s, 'f', 1, 64)
}
