// Package cli implements the nearby-events command.
//
// The root command takes LAT LON RADIUS_KM, resolves the events page for that
// location, scrapes it through a headless browser and prints the events within the
// radius as a single JSON array on standard output. Every documented failure,
// including bad arguments, launch failures, block pages, timeouts and recovered
// panics, still prints exactly one line: an empty array.
//
// Logs are JSON lines on standard error. The route subcommand prints the resolved
// page URL without starting a browser.
package cli
