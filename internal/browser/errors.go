package browser

import "errors"

// Browser session errors.
var (
	// ErrBrowserClosed is returned when a fetch is attempted after Close,
	// or after the browser process died.
	ErrBrowserClosed = errors.New("browser is closed")

	// ErrPollTimeout is returned when a polled JavaScript expression never
	// produced a value within the configured attempts.
	ErrPollTimeout = errors.New("polling timed out")
)
