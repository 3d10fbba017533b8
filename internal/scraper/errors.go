package scraper

import (
	"context"
	"errors"
	"fmt"

	"github.com/pfrederiksen/nearby-events/internal/browser"
)

// ErrInvalidInput indicates the run was started without a usable query
var ErrInvalidInput = errors.New("invalid query: expected LAT LON RADIUS_KM")

// NavigationError indicates the page could not be loaded or read.
type NavigationError struct {
	Op  string // "navigate" or "content"
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// Validation failure reasons
const (
	ReasonTooSmall = "too_small"
	ReasonBlocked  = "blocked"
)

// ValidationError indicates the loaded page is a block page or not a real listing page.
type ValidationError struct {
	Reason    string
	Indicator string // matched block indicator, if any
	Length    int
}

func (e *ValidationError) Error() string {
	if e.Reason == ReasonBlocked {
		return fmt.Sprintf("page blocked: contains %q", e.Indicator)
	}
	return fmt.Sprintf("page too small: %d characters", e.Length)
}

// Error kinds reported by ErrorKind
const (
	KindInput      = "input"
	KindLaunch     = "launch"
	KindNavigation = "navigation"
	KindValidation = "validation"
	KindTimeout    = "timeout"
	KindOther      = "other"
)

// ErrorKind classifies a fetch error for logs and metrics.
func ErrorKind(err error) string {
	if errors.Is(err, ErrInvalidInput) {
		return KindInput
	}
	var launchErr *browser.LaunchError
	if errors.As(err, &launchErr) {
		return KindLaunch
	}
	var navErr *NavigationError
	if errors.As(err, &navErr) {
		return KindNavigation
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return KindValidation
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTimeout
	}
	return KindOther
}
