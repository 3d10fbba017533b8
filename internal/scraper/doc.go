// Package scraper loads an events page in a headless browser and extracts event
// records from it.
//
// A fetch moves through Idle, Navigating, Loaded and Validated (or Failed): the page
// is loaded up to DOMContentLoaded, given a short settle delay, checked for block
// pages, and its markup handed to goquery. Listing elements are located with an
// ordered selector cascade that falls back to any element whose class mentions
// "event", and each element is parsed independently so one malformed listing never
// costs the rest of the page.
package scraper
