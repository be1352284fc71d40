// Package scraper extracts tournament data from FencingTimeLive markup.
// Every extraction is a pure function over an HTML string; fetching and
// rendering happen elsewhere, so the parsers test against fixture markup.
package scraper
