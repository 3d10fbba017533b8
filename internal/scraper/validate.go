package scraper

import "strings"

// DefaultMinContentLength is the smallest markup accepted as a real page
const DefaultMinContentLength = 1000

// BlockIndicators mark a block or challenge page. Matching is case-insensitive.
var BlockIndicators = []string{"captcha", "access denied", "forbidden", "blocked"}

// SuspicionIndicators are logged but never reject a page.
var SuspicionIndicators = []string{"robot", "bot"}

// PageCheck is the outcome of validating page markup
type PageCheck struct {
	Length     int
	Suspicious []string
}

// ValidatePage rejects markup that is shorter than minLength or contains a block
// indicator. It returns a *ValidationError on rejection.
func ValidatePage(html string, minLength int) (PageCheck, error) {
	check := PageCheck{Length: len(html)}

	if check.Length < minLength {
		return check, &ValidationError{Reason: ReasonTooSmall, Length: check.Length}
	}

	lower := strings.ToLower(html)
	for _, indicator := range BlockIndicators {
		if strings.Contains(lower, indicator) {
			return check, &ValidationError{Reason: ReasonBlocked, Indicator: indicator, Length: check.Length}
		}
	}

	for _, indicator := range SuspicionIndicators {
		if strings.Contains(lower, indicator) {
			check.Suspicious = append(check.Suspicious, indicator)
		}
	}

	return check, nil
}
