package browser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/pfrederiksen/nearby-events/internal/logger"
	"github.com/pfrederiksen/nearby-events/internal/metrics"
)

// ErrLaunchTimeout is returned for a launch attempt that did not finish in time
var ErrLaunchTimeout = errors.New("browser launch timed out")

// AttemptError records why one launch configuration failed
type AttemptError struct {
	Config string
	Err    error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("%s: %v", e.Config, e.Err)
}

func (e *AttemptError) Unwrap() error {
	return e.Err
}

// LaunchError is returned when every launch configuration failed
type LaunchError struct {
	Attempts []*AttemptError
}

func (e *LaunchError) Error() string {
	if len(e.Attempts) == 0 {
		return "no browser launch configurations"
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, a.Error())
	}
	return fmt.Sprintf("all %d browser launch attempts failed: %s", len(e.Attempts), strings.Join(parts, "; "))
}

func (e *LaunchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		errs = append(errs, a)
	}
	return errs
}

// Options configures a Manager
type Options struct {
	LaunchTimeout  time.Duration
	UserAgent      string
	AcceptLanguage string
	// ChromePath overrides the Chrome executable for local configurations.
	ChromePath string
	// HTTPClient is used for DevTools endpoint discovery.
	HTTPClient *http.Client
	Logger     *logger.Logger
	Metrics    *metrics.Metrics
}

type launchFunc func(ctx context.Context, cfg LaunchConfig) (*Page, error)

// Manager acquires browser pages by trying launch configurations in order
type Manager struct {
	opts    Options
	configs []LaunchConfig
	log     *logger.Logger
	launch  launchFunc
}

// NewManager creates a Manager that tries configs in order
func NewManager(opts Options, configs []LaunchConfig) *Manager {
	if opts.LaunchTimeout <= 0 {
		opts.LaunchTimeout = 60 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}
	m := &Manager{
		opts:    opts,
		configs: configs,
		log:     log,
	}
	m.launch = m.launchChrome
	return m
}

// Configs returns the launch configurations in the order they are tried
func (m *Manager) Configs() []LaunchConfig {
	return m.configs
}

// Acquire launches a browser and returns a patched page. The caller must Close it.
// A *LaunchError is returned if no configuration starts.
func (m *Manager) Acquire(ctx context.Context) (*Page, error) {
	launchErr := &LaunchError{}

	for i, cfg := range m.configs {
		fields := logger.Fields{
			"attempt": i + 1,
			"of":      len(m.configs),
			"config":  cfg.Name,
		}
		m.log.Info("Launching browser", fields)

		start := time.Now()
		page, err := m.attempt(ctx, cfg)
		m.opts.Metrics.ObserveStep("launch", time.Since(start))

		if err == nil {
			m.opts.Metrics.IncLaunch(cfg.Name, metrics.OutcomeSuccess)
			m.log.Info("Browser launched", fields)
			return page, nil
		}

		outcome := metrics.OutcomeFailure
		if errors.Is(err, ErrLaunchTimeout) {
			outcome = metrics.OutcomeTimeout
		}
		m.opts.Metrics.IncLaunch(cfg.Name, outcome)
		m.log.Warn("Browser launch failed", logger.Fields{
			"attempt": i + 1,
			"config":  cfg.Name,
			"error":   err.Error(),
		})
		launchErr.Attempts = append(launchErr.Attempts, &AttemptError{Config: cfg.Name, Err: err})

		// The run itself is over; further attempts would fail the same way.
		if ctx.Err() != nil {
			break
		}
	}

	return nil, launchErr
}

// attempt runs one launch bounded by the launch timeout. chromedp starts the
// browser on the first Run and ties the process to that call's context, so the
// timeout is enforced with a timer rather than a context deadline.
func (m *Manager) attempt(ctx context.Context, cfg LaunchConfig) (*Page, error) {
	attemptCtx, cancel := context.WithCancel(ctx)

	type result struct {
		page *Page
		err  error
	}
	done := make(chan result, 1)
	go func() {
		page, err := m.launch(attemptCtx, cfg)
		done <- result{page: page, err: err}
	}()

	timer := time.NewTimer(m.opts.LaunchTimeout)
	defer timer.Stop()

	var stopErr error
	select {
	case r := <-done:
		if r.err != nil {
			cancel()
			return nil, r.err
		}
		r.page.cleanups = append(r.page.cleanups, cancel)
		return r.page, nil
	case <-timer.C:
		stopErr = fmt.Errorf("after %s: %w", m.opts.LaunchTimeout, ErrLaunchTimeout)
	case <-ctx.Done():
		stopErr = ctx.Err()
	}

	// Wait for the abandoned launch so nothing outlives the attempt.
	cancel()
	if r := <-done; r.page != nil {
		r.page.Close()
	}
	return nil, stopErr
}

func (m *Manager) launchChrome(ctx context.Context, cfg LaunchConfig) (*Page, error) {
	var (
		allocCtx    context.Context
		cancelAlloc context.CancelFunc
	)
	if cfg.Remote() {
		wsURL, err := ResolveWebSocketURL(ctx, m.opts.HTTPClient, cfg.RemoteURL)
		if err != nil {
			return nil, err
		}
		allocCtx, cancelAlloc = chromedp.NewRemoteAllocator(ctx, wsURL)
	} else {
		allocCtx, cancelAlloc = chromedp.NewExecAllocator(ctx, m.allocatorOptions(cfg)...)
	}

	chromeLog := func(format string, args ...interface{}) {
		m.log.Debug(fmt.Sprintf(format, args...), logger.Fields{"source": "chromedp"})
	}
	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(chromeLog),
		chromedp.WithErrorf(chromeLog),
	)

	page := newPage(tabCtx, cancelTab, cancelAlloc)

	// The first Run starts the browser and opens the tab.
	if err := chromedp.Run(tabCtx, stealthTasks(m.opts.UserAgent, m.opts.AcceptLanguage)); err != nil {
		page.Close()
		return nil, err
	}
	return page, nil
}

func (m *Manager) allocatorOptions(cfg LaunchConfig) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if m.opts.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(m.opts.UserAgent))
	}
	for name, value := range cfg.Flags {
		opts = append(opts, chromedp.Flag(name, value))
	}
	if m.opts.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(m.opts.ChromePath))
	}
	return opts
}
