package recession

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrEmptyCalendar      = errors.New("recession calendar has no intervals")
	ErrInvalidInterval    = errors.New("recession interval ends before it starts")
	ErrUnorderedIntervals = errors.New("recession intervals overlap or are out of order")
)
