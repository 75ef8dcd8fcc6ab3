package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/recessionwatch/internal/domain/calendar"
)

const (
	envPrefix = "RECESSIONWATCH_"

	// EnvConfigFile names a YAML file layered over the defaults.
	EnvConfigFile = envPrefix + "CONFIG"

	// legacyAPIKeyEnv is read when no FRED key is configured.
	legacyAPIKeyEnv = "FREDapiKey"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if RECESSIONWATCH_CONFIG is set
//  3. env (prefix RECESSIONWATCH_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// RECESSIONWATCH_FRED_API_KEY -> fred_api_key (flat keys)
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if cfg.FredAPIKey == "" {
		cfg.FredAPIKey = os.Getenv(legacyAPIKeyEnv)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and cross-field rules.
func Validate(cfg *Config) error {
	v := validator.New()
	if err := v.RegisterValidation("monthstart", isMonthStart); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	epoch, _ := cfg.EpochDate()
	start, _ := cfg.AnalysisStartDate()
	if start.Before(epoch) {
		return fmt.Errorf("%w: analysis_start %s precedes epoch %s", ErrInvalidConfig, start, epoch)
	}
	if _, err := cfg.RecessionCalendar(); err != nil {
		return err
	}
	return nil
}

func isMonthStart(fl validator.FieldLevel) bool {
	_, err := calendar.Parse(fl.Field().String())
	return err == nil
}
