package exporter

import "errors"

// ErrUnsupportedFormat is returned for paths that are neither .csv nor .xlsx.
var ErrUnsupportedFormat = errors.New("unsupported export format")
