package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/nearby-events/internal/browser"
	"github.com/pfrederiksen/nearby-events/internal/config"
	"github.com/pfrederiksen/nearby-events/internal/event"
	"github.com/pfrederiksen/nearby-events/internal/filter"
	"github.com/pfrederiksen/nearby-events/internal/logger"
	"github.com/pfrederiksen/nearby-events/internal/metrics"
	"github.com/pfrederiksen/nearby-events/internal/route"
	"github.com/pfrederiksen/nearby-events/internal/scraper"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// discoveryTimeout bounds DevTools endpoint discovery for remote browsers
const discoveryTimeout = 10 * time.Second

// launcherFactory builds the browser launcher for a run
type launcherFactory func(cfg *config.Config, log *logger.Logger, m *metrics.Metrics) scraper.Launcher

type app struct {
	newLauncher launcherFactory

	flagConfig      string
	flagLogLevel    string
	flagMetricsFile string
	flagTimeout     time.Duration
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{newLauncher: browserLauncher})
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nearby-events LAT LON RADIUS_KM",
		Short: "List upcoming events near a location as JSON",
		Long: `Scrapes the events site through a headless browser and prints the events
within RADIUS_KM of LAT,LON as a single JSON array on stdout.
Any failure prints an empty array.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.runSearch,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.flagConfig, "config", "", "Path to a YAML config file")
	flags.StringVar(&a.flagLogLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.StringVar(&a.flagMetricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the run")
	flags.DurationVar(&a.flagTimeout, "timeout", 0, "Overall run deadline (default 2m)")

	cmd.AddCommand(newRouteCmd(a))

	return cmd
}

func newRouteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "route LAT LON RADIUS_KM",
		Short: "Print the events page a search would load",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			q, ok := route.ParseQuery(args)
			if !ok {
				return scraper.ErrInvalidInput
			}
			target := route.NewResolver(cfg.BaseURL).Resolve(q)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", target.Region, target.URL)
			return nil
		},
	}
}

// loadConfig layers flags over the file and environment configuration
func (a *app) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(a.flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if a.flagLogLevel != "" {
		cfg.LogLevel = a.flagLogLevel
	}
	if a.flagMetricsFile != "" {
		cfg.MetricsFile = a.flagMetricsFile
	}
	if a.flagTimeout != 0 {
		cfg.RunTimeout = a.flagTimeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

// runSearch is the main command logic. It prints exactly one JSON line on every
// path and only returns an error for configuration mistakes.
func (a *app) runSearch(cmd *cobra.Command, args []string) (err error) {
	out := newEmitter(cmd.OutOrStdout())
	defer func() {
		if emitErr := out.Emit(nil); emitErr != nil && err == nil {
			err = fmt.Errorf("writing output: %w", emitErr)
		}
	}()

	log := logger.Default()
	var m *metrics.Metrics
	defer func() {
		if r := recover(); r != nil {
			log.Error("Recovered from panic", logger.Fields{"panic": fmt.Sprint(r)}, nil)
			m.IncRun(scraper.KindOther)
			err = nil
		}
	}()

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	level, _ := logger.ParseLevel(cfg.LogLevel)
	log = logger.New(level, cmd.ErrOrStderr()).With(logger.Fields{"run_id": uuid.NewString()})
	logger.SetDefault(log)
	out.log = log

	m = metrics.New()
	defer writeMetrics(cfg.MetricsFile, m, log)

	q, ok := route.ParseQuery(args)
	if !ok {
		log.Warn("Expected numeric LAT LON RADIUS_KM", logger.Fields{"args": len(args)})
		m.IncRun(scraper.KindInput)
		return nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RunTimeout)
	defer cancel()

	events, err := a.search(ctx, cfg, q, log, m)
	if err != nil {
		kind := scraper.ErrorKind(err)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			kind = scraper.KindTimeout
		}
		log.Error("Search failed", logger.Fields{"kind": kind}, err)
		m.IncRun(kind)
		return nil
	}

	m.IncRun(metrics.OutcomeSuccess)
	m.AddRecords(metrics.StageEmitted, len(events))
	log.Info("Search complete", logger.Fields{"events": len(events)})
	return out.Emit(events)
}

// search resolves the page for q, scrapes it and keeps the events within the radius
func (a *app) search(ctx context.Context, cfg *config.Config, q route.Query, log *logger.Logger, m *metrics.Metrics) ([]*event.Event, error) {
	target := route.NewResolver(cfg.BaseURL).Resolve(q)
	log.Info("Resolved events page", logger.Fields{
		"region":    target.Region,
		"url":       target.URL,
		"radius_km": q.RadiusKM,
	})

	s := scraper.New(a.newLauncher(cfg, log, m), scraper.Options{
		BaseURL:           cfg.BaseURL,
		NavigationTimeout: cfg.NavigationTimeout,
		SelectorTimeout:   cfg.SelectorTimeout,
		ContentTimeout:    cfg.ContentTimeout,
		SettleDelay:       cfg.SettleDelay,
		MinContentLength:  cfg.MinContentLength,
		Logger:            log,
		Metrics:           m,
	})

	events, err := s.FetchEvents(ctx, target)
	if err != nil {
		return nil, err
	}

	nearby := filter.NewRadius(q.Origin(), q.RadiusKM).Apply(events)
	m.AddRecords(metrics.StageOutOfRadius, len(events)-len(nearby))
	log.Debug("Filtered events by distance", logger.Fields{
		"extracted": len(events),
		"nearby":    len(nearby),
	})
	return nearby, nil
}

func writeMetrics(path string, m *metrics.Metrics, log *logger.Logger) {
	if path == "" {
		return
	}
	if err := m.WriteTextfile(path); err != nil {
		log.Warn("Failed to write metrics", logger.Fields{"path": path, "error": err.Error()})
	}
}

// browserLauncher launches Chrome through the configured launch configurations,
// trying a remote browser first when one is configured.
func browserLauncher(cfg *config.Config, log *logger.Logger, m *metrics.Metrics) scraper.Launcher {
	configs := browser.DefaultLaunchConfigs()
	if cfg.ChromeRemoteURL != "" {
		configs = append([]browser.LaunchConfig{browser.RemoteLaunchConfig(cfg.ChromeRemoteURL)}, configs...)
	}

	manager := browser.NewManager(browser.Options{
		LaunchTimeout:  cfg.LaunchTimeout,
		UserAgent:      cfg.UserAgent,
		AcceptLanguage: cfg.AcceptLanguage,
		ChromePath:     cfg.ChromePath,
		HTTPClient:     &http.Client{Timeout: discoveryTimeout},
		Logger:         log,
		Metrics:        m,
	}, configs)

	return scraper.LauncherFunc(func(ctx context.Context) (scraper.Page, error) {
		page, err := manager.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		return page, nil
	})
}

// Execute runs the CLI
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	return runApp(&app{newLauncher: browserLauncher}, args, stdout, stderr)
}

func runApp(a *app, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(a)
	root.InitDefaultHelpCmd()
	root.InitDefaultHelpFlag()
	root.SetArgs(normalizeArgs(root, args))
	out := &trackingWriter{w: stdout}
	root.SetOut(out)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		logger.New(logger.LevelError, stderr).Error("Command failed", nil, err)
		if !out.wrote {
			WriteEvents(stdout, nil)
		}
		return ExitError
	}
	return ExitSuccess
}

// trackingWriter records whether the command wrote anything to stdout
type trackingWriter struct {
	w     io.Writer
	wrote bool
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	if len(p) > 0 {
		t.wrote = true
	}
	return t.w.Write(p)
}
