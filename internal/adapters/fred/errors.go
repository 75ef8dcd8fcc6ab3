package fred

import "errors"

// Sentinel error kinds for this package.
var (
	ErrHTTPStatus = errors.New("unexpected HTTP status")
	ErrParse      = errors.New("unparseable response")
	ErrNoAPIKey   = errors.New("FRED API key is not set")
)
