package ftl

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// URL path constants for the FencingTimeLive page types this tool reads.
const (
	// SchedulePathPrefix is the path prefix of tournament schedule pages.
	// The tournament ID follows it.
	SchedulePathPrefix = "/tournaments/eventSchedule/"

	// PoolScoresPathPrefix is the path prefix of pool round pages linked
	// from event pages. The round ID is the last path segment.
	PoolScoresPathPrefix = "/pools/scores/"

	// TableauScoresPathPrefix is the path prefix of direct elimination
	// pages linked from event pages. The round ID is the last path segment.
	TableauScoresPathPrefix = "/tableaus/scores/"
)

// tournamentPathPattern matches the path of a tournament schedule URL.
// IDs are opaque alphanumeric tokens assigned by the site.
var tournamentPathPattern = regexp.MustCompile(`^/tournaments/eventSchedule/[A-Za-z0-9]+/?$`)

// ParseTournamentURL validates a tournament schedule URL and returns the
// tournament ID. The URL must be absolute, use http or https, and point at
// an eventSchedule page.
func ParseTournamentURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidTournamentURL, raw)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: scheme must be http or https: %s", ErrInvalidTournamentURL, raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host: %s", ErrInvalidTournamentURL, raw)
	}
	if !tournamentPathPattern.MatchString(u.Path) {
		return "", fmt.Errorf("%w: not an eventSchedule page: %s", ErrInvalidTournamentURL, raw)
	}

	return LastPathSegment(u.Path), nil
}

// LastPathSegment returns the final path segment of a URL or path,
// ignoring any trailing slash, query string, or fragment. Event IDs, round
// IDs, and tournament IDs all live in this position.
func LastPathSegment(raw string) string {
	if u, err := url.Parse(raw); err == nil {
		raw = u.Path
	}
	raw = strings.TrimRight(raw, "/")
	if idx := strings.LastIndex(raw, "/"); idx != -1 {
		return raw[idx+1:]
	}
	return raw
}

// Resolve resolves a possibly relative href against a base URL. Schedule
// rows carry relative event links in data-href attributes.
func Resolve(base, href string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("failed to parse base URL %q: %w", base, err)
	}
	h, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("failed to parse href %q: %w", href, err)
	}
	return b.ResolveReference(h).String(), nil
}

// PoolDetailsURL builds the URL of one pool's detail fragment.
func PoolDetailsURL(base, eventID, roundID, poolGUID string) string {
	return fmt.Sprintf("%s/pools/details/%s/%s/%s", strings.TrimRight(base, "/"), eventID, roundID, poolGUID)
}

// TreesURL builds the URL of the tableau tree listing for a round. The
// endpoint returns JSON naming each bracket tree and its table count.
func TreesURL(base, eventID, roundID string) string {
	return fmt.Sprintf("%s/tableaus/scores/%s/%s/trees", strings.TrimRight(base, "/"), eventID, roundID)
}

// TreeTablesURL builds the URL of the rendered bracket HTML for one tree,
// spanning tables 0 through numTables as reported by the trees endpoint.
func TreeTablesURL(base, eventID, roundID, treeGUID string, numTables int) string {
	return fmt.Sprintf("%s/tableaus/scores/%s/%s/trees/%s/tables/0/%d?refs=0",
		strings.TrimRight(base, "/"), eventID, roundID, treeGUID, numTables)
}
