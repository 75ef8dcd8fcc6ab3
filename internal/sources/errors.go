package sources

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrSourceFetch marks a source whose raw data could not be retrieved,
	// parsed or validated. It is fatal to the refresh.
	ErrSourceFetch = errors.New("source fetch failed")
)
