package scraper

import "errors"

// ErrNoTableauTable is returned when bracket markup contains no
// elimination table. The tree endpoints always render one, so its absence
// means the markup or the configured selector changed.
var ErrNoTableauTable = errors.New("no elimination table found")
