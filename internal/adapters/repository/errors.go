package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound   = errors.New("no fused table stored")
	ErrNilTable   = errors.New("snapshot has no table")
	ErrCorruptRow = errors.New("stored table is inconsistent")
)
