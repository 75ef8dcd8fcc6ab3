package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/recessionwatch/internal/adapters/exporter"
	"github.com/okian/recessionwatch/internal/domain/calendar"
	"github.com/okian/recessionwatch/internal/domain/labels"
	"github.com/okian/recessionwatch/pkg/logger"
)

// newRefreshCmd creates the refresh subcommand.
func newRefreshCmd(env *runtimeEnv) *cobra.Command {
	var csvPath, xlsxPath string

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Fetch every source once and build the labeled table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, err := newService(ctx, env)
			if err != nil {
				return err
			}
			if err := svc.Start(ctx); err != nil {
				return err
			}
			defer svc.Stop()

			snap, err := svc.Refresh(ctx)
			if err != nil {
				return err
			}

			for _, path := range []string{csvPath, xlsxPath} {
				if path == "" {
					continue
				}
				if !filepath.IsAbs(path) && filepath.Dir(path) == "." {
					path = filepath.Join(env.cfg.ExportDir, path)
				}
				if err := exporter.WriteFile(path, snap.Table); err != nil {
					return fmt.Errorf("export %s: %w", path, err)
				}
				env.log.Info(ctx, "table exported", logger.String("path", path))
			}

			first, _ := snap.Table.First()
			last, _ := snap.Table.Last()
			fmt.Fprintf(cmd.OutOrStdout(), "refresh %s: %d rows x %d columns, %s to %s\n",
				snap.ID, snap.Table.Len(), len(snap.Table.Columns()), first, last)
			for _, name := range labels.Columns() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s unknown: %d\n", name, labels.Counts(snap.Table)[name])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "write the table as CSV to this path")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write the table as XLSX to this path")

	return cmd
}

// newServeCmd creates the serve subcommand.
func newServeCmd(env *runtimeEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the labeled table over HTTP and refresh it on a schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), env)
		},
	}
}

// newRecessionsCmd creates the recessions subcommand.
func newRecessionsCmd(env *runtimeEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "recessions",
		Short: "List the recession intervals used for labeling",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cal, err := env.cfg.RecessionCalendar()
			if err != nil {
				return err
			}
			for _, iv := range cal.Intervals() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n",
					iv.Start.Format(calendar.ISOLayout), iv.End.Format(calendar.ISOLayout))
			}
			return nil
		},
	}
}

// labelsOutput is the JSON shape printed by the labels subcommand.
type labelsOutput struct {
	Date string `json:"date"`
	labels.Set
}

// newLabelsCmd creates the labels subcommand.
func newLabelsCmd(env *runtimeEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "labels <YYYY-MM-DD>",
		Short: "Print the recession labels for a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := time.Parse(calendar.ISOLayout, args[0])
			if err != nil {
				return fmt.Errorf("invalid date %q: want YYYY-MM-DD", args[0])
			}
			cal, err := env.cfg.RecessionCalendar()
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(labelsOutput{Date: args[0], Set: labels.At(cal, d)})
		},
	}
}
