package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/hireloop/internal/domain/analytics"
)

func newRankCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "rank <job-id>",
		Short: "Recompute and print the leaderboard of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := c.openService(ctx)
			if err != nil {
				return err
			}
			defer svc.Stop()

			res, err := svc.RankJob(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func newAdaptCmd(c *cli) *cobra.Command {
	var trigger string
	cmd := &cobra.Command{
		Use:   "adapt",
		Short: "Run one weight adaptation pass over unused feedback",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, err := c.openService(ctx)
			if err != nil {
				return err
			}
			defer svc.Stop()

			res, err := svc.Adapt(ctx, trigger)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&trigger, "trigger", "manual", "trigger recorded in the training log")
	return cmd
}

func newRollupCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "rollup [YYYY-MM-DD]",
		Short: "Recompute the daily metric row of a day (default today, UTC)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			day := time.Now().UTC()
			if len(args) == 1 {
				d, err := analytics.ParseDate(args[0])
				if err != nil {
					return err
				}
				day = d
			}
			svc, err := c.openService(ctx)
			if err != nil {
				return err
			}
			defer svc.Stop()

			m, err := svc.RollupDaily(ctx, day)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), m)
		},
	}
}

func newSummaryCmd(c *cli) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize daily metrics over a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			end := time.Now().UTC()
			if to != "" {
				d, err := analytics.ParseDate(to)
				if err != nil {
					return err
				}
				end = d
			}
			start := end.AddDate(0, 0, -6)
			if from != "" {
				d, err := analytics.ParseDate(from)
				if err != nil {
					return err
				}
				start = d
			}
			svc, err := c.openService(ctx)
			if err != nil {
				return err
			}
			defer svc.Stop()

			sum, err := svc.Summarize(ctx, start, end)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), sum)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD (default six days before --to)")
	cmd.Flags().StringVar(&to, "to", "", "last day, YYYY-MM-DD (default today)")
	return cmd
}

func newExportCmd(c *cli) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export <job-id>",
		Short: "Write the persisted leaderboard of a job as an xlsx workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()
			svc, err := c.openService(ctx)
			if err != nil {
				return err
			}
			defer svc.Stop()

			path := out
			if path == "" {
				path = "leaderboard-" + args[0] + ".xlsx"
			}
			var w io.Writer = cmd.OutOrStdout()
			if path != "-" {
				f, ferr := os.Create(path)
				if ferr != nil {
					return fmt.Errorf("create %s: %w", path, ferr)
				}
				defer func() {
					if cerr := f.Close(); cerr != nil && err == nil {
						err = cerr
					}
				}()
				w = f
			}
			if err := svc.ExportLeaderboard(ctx, args[0], w); err != nil {
				return err
			}
			if path != "-" {
				_, err = fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", path)
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", `output file, "-" for stdout (default leaderboard-<job-id>.xlsx)`)
	return cmd
}
