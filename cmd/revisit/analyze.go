package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/revisit/internal/cli"
	"github.com/at-ishikawa/revisit/internal/config"
	"github.com/at-ishikawa/revisit/internal/statistics"
)

func newAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze the review workload",
	}
	cmd.AddCommand(newAnalyzeReportCommand())
	return cmd
}

func newAnalyzeReportCommand() *cobra.Command {
	var year, month int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the workload per subject and the items last reviewed per month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if month != 0 && year == 0 {
				return fmt.Errorf("--month requires --year to be specified")
			}
			if month < 0 || month > 12 {
				return fmt.Errorf("--month must be between 1 and 12")
			}

			ctx := cmd.Context()
			return withBackend(ctx, func(b backend, _ *config.Config) error {
				state, err := b.State(ctx)
				if err != nil {
					return fmt.Errorf("State() > %w", err)
				}
				result := statistics.CalculateStatistics(state, b.Today(), year, month)
				return cli.NewPrinter(cmd.OutOrStdout()).PrintStatistics(result)
			})
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Filter by year (e.g., 2025)")
	cmd.Flags().IntVar(&month, "month", 0, "Filter by month (1-12), requires --year")

	return cmd
}
