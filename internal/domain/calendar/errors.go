package calendar

import "errors"

// Sentinel error kinds for this package.
var (
	ErrNotMonthStart = errors.New("date is not the first day of a month")
)
