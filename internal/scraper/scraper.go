package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/nearby-events/internal/event"
	"github.com/pfrederiksen/nearby-events/internal/logger"
	"github.com/pfrederiksen/nearby-events/internal/metrics"
	"github.com/pfrederiksen/nearby-events/internal/route"
)

const (
	NavigationTimeout = 60 * time.Second
	SelectorTimeout   = 10 * time.Second
	ContentTimeout    = 10 * time.Second
	SettleDelay       = 3 * time.Second
)

// Page is a loaded browser tab
type Page interface {
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	WaitReady(ctx context.Context, selector string, timeout time.Duration) error
	Content(ctx context.Context, timeout time.Duration) (string, error)
	Close() error
}

// Launcher hands out a fresh page per fetch
type Launcher interface {
	Acquire(ctx context.Context) (Page, error)
}

// LauncherFunc adapts a function to Launcher
type LauncherFunc func(ctx context.Context) (Page, error)

// Acquire calls f(ctx)
func (f LauncherFunc) Acquire(ctx context.Context) (Page, error) {
	return f(ctx)
}

// State is a step of a page fetch
type State int

const (
	StateIdle State = iota
	StateNavigating
	StateLoaded
	StateValidated
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateNavigating:
		return "navigating"
	case StateLoaded:
		return "loaded"
	case StateValidated:
		return "validated"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options configures a Scraper. Zero durations fall back to the package defaults,
// except SettleDelay which may be zero.
type Options struct {
	BaseURL           string
	NavigationTimeout time.Duration
	SelectorTimeout   time.Duration
	ContentTimeout    time.Duration
	SettleDelay       time.Duration
	MinContentLength  int
	Logger            *logger.Logger
	Metrics           *metrics.Metrics
}

// DefaultOptions returns the production timings
func DefaultOptions() Options {
	return Options{
		BaseURL:           route.DefaultBaseURL,
		NavigationTimeout: NavigationTimeout,
		SelectorTimeout:   SelectorTimeout,
		ContentTimeout:    ContentTimeout,
		SettleDelay:       SettleDelay,
		MinContentLength:  DefaultMinContentLength,
	}
}

// Scraper fetches event listing pages through a browser and parses them
type Scraper struct {
	launcher Launcher
	opts     Options
	log      *logger.Logger
	metrics  *metrics.Metrics
}

// New creates a new Scraper instance
func New(launcher Launcher, opts Options) *Scraper {
	if opts.BaseURL == "" {
		opts.BaseURL = route.DefaultBaseURL
	}
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = NavigationTimeout
	}
	if opts.SelectorTimeout <= 0 {
		opts.SelectorTimeout = SelectorTimeout
	}
	if opts.ContentTimeout <= 0 {
		opts.ContentTimeout = ContentTimeout
	}
	if opts.MinContentLength <= 0 {
		opts.MinContentLength = DefaultMinContentLength
	}
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}
	return &Scraper{launcher: launcher, opts: opts, log: log, metrics: opts.Metrics}
}

// FetchEvents loads the target page and extracts every listing with coordinates
func (s *Scraper) FetchEvents(ctx context.Context, target route.Target) ([]*event.Event, error) {
	html, err := s.FetchPage(ctx, target.URL)
	if err != nil {
		return nil, err
	}
	return s.ParseEvents(html)
}

// FetchPage drives a page through navigation and validation and returns its markup.
// The page is closed on every path.
func (s *Scraper) FetchPage(ctx context.Context, url string) (html string, err error) {
	log := s.log.With(logger.Fields{"url": url})
	state := StateIdle
	transition := func(next State, fields logger.Fields) {
		if fields == nil {
			fields = logger.Fields{}
		}
		fields["from"] = state.String()
		fields["to"] = next.String()
		log.Debug("Fetch state changed", fields)
		state = next
	}
	defer func() {
		if err != nil {
			transition(StateFailed, logger.Fields{"kind": ErrorKind(err)})
		}
	}()

	page, err := s.launcher.Acquire(ctx)
	if err != nil {
		return "", fmt.Errorf("acquiring browser: %w", err)
	}
	defer func() {
		if closeErr := page.Close(); closeErr != nil {
			log.Warn("Failed to close browser", logger.Fields{"error": closeErr.Error()})
		}
	}()

	transition(StateNavigating, nil)
	start := time.Now()
	err = page.Navigate(ctx, url, s.opts.NavigationTimeout)
	s.metrics.ObserveStep("navigate", time.Since(start))
	if err != nil {
		return "", &NavigationError{Op: "navigate", URL: url, Err: err}
	}
	transition(StateLoaded, nil)

	if err := sleep(ctx, s.opts.SettleDelay); err != nil {
		return "", fmt.Errorf("settling page: %w", err)
	}
	s.waitForListings(ctx, page, log)

	start = time.Now()
	html, err = page.Content(ctx, s.opts.ContentTimeout)
	s.metrics.ObserveStep("content", time.Since(start))
	if err != nil {
		return "", &NavigationError{Op: "content", URL: url, Err: err}
	}
	s.metrics.SetPageBytes(len(html))

	check, err := ValidatePage(html, s.opts.MinContentLength)
	if err != nil {
		return "", err
	}
	if len(check.Suspicious) > 0 {
		log.Warn("Page mentions bot detection", logger.Fields{"indicators": check.Suspicious})
	}
	transition(StateValidated, logger.Fields{"bytes": check.Length})

	return html, nil
}

// waitForListings gives client-side rendering a chance to produce listings. It
// stops at the first selector that appears. Missing selectors are expected and
// never fail the fetch.
func (s *Scraper) waitForListings(ctx context.Context, page Page, log *logger.Logger) {
	start := time.Now()
	defer func() { s.metrics.ObserveStep("wait_listings", time.Since(start)) }()

	for _, selector := range WaitSelectors {
		if ctx.Err() != nil {
			return
		}
		if err := page.WaitReady(ctx, selector, s.opts.SelectorTimeout); err != nil {
			log.Debug("Listing selector not found", logger.Fields{"selector": selector, "error": err.Error()})
			continue
		}
		log.Debug("Listing selector found", logger.Fields{"selector": selector})
		return
	}
}

// ParseEvents runs the selector cascade and extractor over page markup
func (s *Scraper) ParseEvents(html string) ([]*event.Event, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	match := FindListings(doc)
	if match.Empty() {
		s.log.Info("No listing elements found", nil)
		return []*event.Event{}, nil
	}
	s.log.Info("Found listing elements", logger.Fields{
		"selector": match.Candidate,
		"count":    len(match.Elements),
		"fallback": match.Fallback,
	})
	s.metrics.AddRecords(metrics.StageListed, len(match.Elements))

	result := NewExtractor(s.opts.BaseURL, s.log).ExtractAll(match.Elements)
	s.metrics.AddRecords(metrics.StageExtracted, len(result.Events))
	s.metrics.AddRecords(metrics.StageNoCoordinates, result.NoCoordinates)
	s.metrics.AddRecords(metrics.StageExtractErrors, result.Failed)

	return result.Events, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
