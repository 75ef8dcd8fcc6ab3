package features

import "errors"

// Sentinel error kinds for this package.
var (
	ErrLengthMismatch = errors.New("series lengths differ")
)
