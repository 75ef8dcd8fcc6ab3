package series

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrMalformedObservation = errors.New("malformed observation")
	ErrGaps                 = errors.New("series has unknown values")
)
