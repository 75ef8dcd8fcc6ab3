package fusion

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrJoinCoverageGap   = errors.New("required sources share no dates")
	ErrNoRequiredSources = errors.New("no required sources to join")
	ErrDuplicateColumn   = errors.New("duplicate column")
	ErrShapeMismatch     = errors.New("column length does not match dates")
	ErrUnsortedDates     = errors.New("dates are not strictly ascending")
)
