// Package main provides the recessionwatch CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/okian/recessionwatch/internal/config"
	"github.com/okian/recessionwatch/pkg/logger"
)

var version = "0.1.0"

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// runtimeEnv carries what the persistent pre-run resolved for subcommands.
type runtimeEnv struct {
	cfg *config.Config
	log logger.Logger
}

// newRootCmd creates the root command for the recessionwatch CLI.
func newRootCmd() *cobra.Command {
	env := &runtimeEnv{}

	rootCmd := &cobra.Command{
		Use:           "recessionwatch",
		Short:         "Fuse monthly economic indicators and label them against recessions",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// A missing .env is fine; the FRED key may come from the environment.
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load .env: %w", err)
			}

			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			if err := logger.Init(
				logger.WithFormat(cfg.LogFormat),
				logger.WithLevel(cfg.LogLevel),
				logger.WithWriter(cmd.ErrOrStderr()),
			); err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}
			env.cfg = cfg
			env.log = logger.Get()
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = logger.Sync()
		},
	}

	rootCmd.SetVersionTemplate("recessionwatch version {{.Version}}\n")

	rootCmd.AddCommand(newRefreshCmd(env))
	rootCmd.AddCommand(newServeCmd(env))
	rootCmd.AddCommand(newRecessionsCmd(env))
	rootCmd.AddCommand(newLabelsCmd(env))

	return rootCmd
}
