package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/revisit/internal/config"
	"github.com/at-ishikawa/revisit/internal/report"
)

func newReportCommand() *cobra.Command {
	var generatePDF bool
	var horizonDays int

	command := &cobra.Command{
		Use:   "report",
		Short: "Write the review agenda as Markdown, and optionally PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if horizonDays < 0 {
				return fmt.Errorf("--horizon must be 0 or greater")
			}

			ctx := cmd.Context()
			return withBackend(ctx, func(b backend, cfg *config.Config) error {
				state, err := b.State(ctx)
				if err != nil {
					return fmt.Errorf("State() > %w", err)
				}

				paths, err := report.WriteAgenda(cfg.Outputs.ReportDirectory, state, b.Today(), report.Options{
					HorizonDays:  horizonDays,
					TemplatePath: cfg.Templates.AgendaTemplate,
					PDF:          generatePDF,
				})
				if err != nil {
					return fmt.Errorf("report.WriteAgenda() > %w", err)
				}
				for _, path := range paths {
					fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
				}
				return nil
			})
		},
	}
	command.Flags().BoolVar(&generatePDF, "pdf", false, "Also convert the agenda to PDF")
	command.Flags().IntVar(&horizonDays, "horizon", 14, "Only list upcoming items due within this many days. 0 lists all")
	return command
}
