package service

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNoAdapters      = errors.New("pipeline has no source adapters")
	ErrEmptyAxis       = errors.New("monthly calendar is empty")
	ErrStartOffAxis    = errors.New("analysis start lies outside the monthly calendar")
	ErrNoTable         = errors.New("no table has been produced yet")
	ErrInvalidSchedule = errors.New("invalid refresh schedule")
)
