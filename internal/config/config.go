// Package config defines process configuration and its loading hooks.
package config

import (
	"fmt"
	"time"

	"github.com/okian/recessionwatch/internal/domain/calendar"
	"github.com/okian/recessionwatch/internal/domain/recession"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr" validate:"required"`

	// FredAPIKey authenticates against the FRED series API.
	FredAPIKey string `koanf:"fred_api_key"`

	FredBaseURL  string `koanf:"fred_base_url" validate:"required,url"`
	FredGraphURL string `koanf:"fredgraph_url" validate:"required,url"`
	MultplURL    string `koanf:"multpl_url" validate:"required,url"`

	// Epoch is the first month of the calendar axis (YYYY-MM-01).
	Epoch string `koanf:"epoch" validate:"required,monthstart"`

	// AnalysisStart is the first month kept in the fused table.
	AnalysisStart string `koanf:"analysis_start" validate:"required,monthstart"`

	HTTPTimeoutSeconds int     `koanf:"http_timeout_seconds" validate:"gt=0"`
	FetchRatePerSecond float64 `koanf:"fetch_rate_per_second" validate:"gte=0"`

	// RefreshCron schedules background refreshes in serve mode. Empty disables.
	RefreshCron string `koanf:"refresh_cron"`

	// DatabaseURL selects the Postgres store. Empty keeps tables in memory.
	DatabaseURL string `koanf:"database_url"`

	// ExportDir is where refresh writes exports given as bare file names.
	ExportDir string `koanf:"export_dir"`

	// Recessions overrides the built-in NBER table when non-empty.
	Recessions []Recession `koanf:"recessions" validate:"dive"`
}

// Recession is one configured recession interval, both ends inclusive.
type Recession struct {
	Start string `koanf:"start" validate:"required,datetime=2006-01-02"`
	End   string `koanf:"end" validate:"required,datetime=2006-01-02"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		FredBaseURL:        "https://api.stlouisfed.org",
		FredGraphURL:       "https://fred.stlouisfed.org/graph/fredgraph.csv",
		MultplURL:          "https://www.multpl.com/s-p-500-historical-prices/table/by-month",
		Epoch:              "1965-01-01",
		AnalysisStart:      "1968-01-01",
		HTTPTimeoutSeconds: 30,
		FetchRatePerSecond: 2,
		RefreshCron:        "0 6 * * *",
		ExportDir:          ".",
	}
}

// EpochDate returns Epoch as a calendar month.
func (c *Config) EpochDate() (calendar.Date, error) {
	return calendar.Parse(c.Epoch)
}

// AnalysisStartDate returns AnalysisStart as a calendar month.
func (c *Config) AnalysisStartDate() (calendar.Date, error) {
	return calendar.Parse(c.AnalysisStart)
}

// HTTPTimeout returns the outbound request timeout.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// RecessionCalendar builds the calendar from Recessions, or the default
// table when none are configured.
func (c *Config) RecessionCalendar(opts ...recession.Option) (*recession.Calendar, error) {
	if len(c.Recessions) == 0 {
		return recession.Default(opts...), nil
	}
	intervals := make([]recession.Interval, len(c.Recessions))
	for i, r := range c.Recessions {
		start, err := time.Parse(calendar.ISOLayout, r.Start)
		if err != nil {
			return nil, fmt.Errorf("%w: recession %d start: %w", ErrInvalidConfig, i, err)
		}
		end, err := time.Parse(calendar.ISOLayout, r.End)
		if err != nil {
			return nil, fmt.Errorf("%w: recession %d end: %w", ErrInvalidConfig, i, err)
		}
		intervals[i] = recession.Interval{Start: start, End: end}
	}
	cal, err := recession.New(intervals, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cal, nil
}
