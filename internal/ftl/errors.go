package ftl

import "errors"

// Errors returned by URL validation and the HTTP client.
// These are package-level sentinels so callers can match them with
// errors.Is() while still getting a readable message.
var (
	// ErrInvalidTournamentURL is returned when the given URL is not a
	// FencingTimeLive tournament schedule URL.
	ErrInvalidTournamentURL = errors.New("invalid tournament URL: expected https://<host>/tournaments/eventSchedule/<id>")

	// ErrUnexpectedStatus is returned when the site answers with a status
	// code that retrying will not fix.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrRetriesExhausted is returned when a fetch kept failing through
	// all configured retry attempts.
	ErrRetriesExhausted = errors.New("retries exhausted")
)
