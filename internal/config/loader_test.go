package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/recessionwatch/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
				convey.So(cfg.RefreshCron, convey.ShouldEqual, "0 6 * * *")
				convey.So(cfg.DatabaseURL, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("RECESSIONWATCH_ADDR", ":8080")
			_ = os.Setenv("RECESSIONWATCH_FRED_API_KEY", "abc123")
			_ = os.Setenv("RECESSIONWATCH_HTTP_TIMEOUT_SECONDS", "5")
			_ = os.Setenv("RECESSIONWATCH_FETCH_RATE_PER_SECOND", "0.5")
			_ = os.Setenv("RECESSIONWATCH_LOG_FORMAT", "json")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.FredAPIKey, convey.ShouldEqual, "abc123")
				convey.So(cfg.HTTPTimeoutSeconds, convey.ShouldEqual, 5)
				convey.So(cfg.FetchRatePerSecond, convey.ShouldEqual, 0.5)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			})
		})

		convey.Convey("When only the legacy FRED key variable is set", func() {
			_ = os.Setenv("FREDapiKey", "legacy")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should be picked up", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.FredAPIKey, convey.ShouldEqual, "legacy")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
epoch: "1970-01-01"
analysis_start: "1975-01-01"
refresh_cron: ""
recessions:
  - start: "1980-01-01"
    end: "1980-07-01"
  - start: "1981-07-01"
    end: "1982-11-01"
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("RECESSIONWATCH_CONFIG", tmpFile)
			_ = os.Setenv("RECESSIONWATCH_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Epoch, convey.ShouldEqual, "1970-01-01")
				convey.So(cfg.AnalysisStart, convey.ShouldEqual, "1975-01-01")
				convey.So(cfg.RefreshCron, convey.ShouldBeEmpty)
				convey.So(cfg.Recessions, convey.ShouldHaveLength, 2)
				convey.So(cfg.Recessions[1].End, convey.ShouldEqual, "1982-11-01")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("RECESSIONWATCH_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("RECESSIONWATCH_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("RECESSIONWATCH_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "Addr")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the epoch is not the first of a month", func() {
			_ = os.Setenv("RECESSIONWATCH_EPOCH", "1965-01-15")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the analysis start precedes the epoch", func() {
			_ = os.Setenv("RECESSIONWATCH_ANALYSIS_START", "1960-01-01")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the log format is unknown", func() {
			_ = os.Setenv("RECESSIONWATCH_LOG_FORMAT", "xml")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When loading config with an invalid numeric variable", func() {
			_ = os.Setenv("RECESSIONWATCH_HTTP_TIMEOUT_SECONDS", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"RECESSIONWATCH_CONFIG",
		"RECESSIONWATCH_ADDR",
		"RECESSIONWATCH_FRED_API_KEY",
		"RECESSIONWATCH_HTTP_TIMEOUT_SECONDS",
		"RECESSIONWATCH_FETCH_RATE_PER_SECOND",
		"RECESSIONWATCH_LOG_FORMAT",
		"RECESSIONWATCH_EPOCH",
		"RECESSIONWATCH_ANALYSIS_START",
		"FREDapiKey",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "recessionwatch-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
