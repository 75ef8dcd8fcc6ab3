package model

import "errors"

// Sentinel error kinds for this package.
var (
	ErrUnknownColumn = errors.New("column not in table")
	ErrEmptyDataset  = errors.New("dataset has no rows")
	ErrNoProbability = errors.New("predictor does not expose probabilities")
)
