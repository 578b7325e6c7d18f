package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/revisit/internal/config"
	"github.com/at-ishikawa/revisit/internal/datasync"
	"github.com/at-ishikawa/revisit/internal/review"
)

// FormatFlag is the snapshot format of an export.
type FormatFlag string

// Set implements pflag.Value.
func (f *FormatFlag) Set(v string) error {
	switch v {
	case string(FormatYAML), string(FormatJSON):
		*f = FormatFlag(v)
	default:
		return fmt.Errorf("invalid value %q, valid values are %q or %q", v, FormatYAML, FormatJSON)
	}
	return nil
}

// String implements pflag.Value.
func (f *FormatFlag) String() string {
	if f == nil {
		return ""
	}
	return string(*f)
}

// Type implements pflag.Value.
func (f *FormatFlag) Type() string {
	return "FormatFlag"
}

var (
	_ pflag.Value = (*FormatFlag)(nil)
)

const (
	FormatYAML FormatFlag = config.FormatYAML
	FormatJSON FormatFlag = config.FormatJSON
)

func newSyncCommand() *cobra.Command {
	syncCommand := &cobra.Command{
		Use:   "sync",
		Short: "Export and import snapshot files",
	}
	syncCommand.AddCommand(
		newSyncExportCommand(),
		newSyncImportCommand(),
	)
	return syncCommand
}

func newSyncExportCommand() *cobra.Command {
	format := FormatYAML

	command := &cobra.Command{
		Use:   "export",
		Short: "Write the whole state into the export directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exporter, err := datasync.NewExporter(string(format))
			if err != nil {
				return fmt.Errorf("datasync.NewExporter() > %w", err)
			}

			ctx := cmd.Context()
			return withBackend(ctx, func(b backend, cfg *config.Config) error {
				state, err := b.State(ctx)
				if err != nil {
					return fmt.Errorf("State() > %w", err)
				}
				path, err := exporter.ExportFile(cfg.Outputs.ExportDirectory, state, b.Today())
				if err != nil {
					return fmt.Errorf("exporter.ExportFile() > %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d subject(s) and %d item(s) to %s\n", len(state.Subjects), len(state.Items), path)
				return nil
			})
		},
	}
	command.Flags().Var(&format, "format", "Snapshot format. Options: yaml, json")
	return command
}

func newSyncImportCommand() *cobra.Command {
	var dryRun bool
	var updateExisting bool

	command := &cobra.Command{
		Use:   "import <snapshot file>",
		Short: "Merge a snapshot file into the state by id",
		Long: "Merge a snapshot file into the state by id. The merge is based on the state read\n" +
			"when the import starts; if a command changes the state before the merged state is\n" +
			"written, nothing is imported and the import has to be run again.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			incoming, err := datasync.ReadSnapshot(args[0])
			if err != nil {
				return fmt.Errorf("datasync.ReadSnapshot() > %w", err)
			}

			ctx := cmd.Context()
			return withBackend(ctx, func(b backend, _ *config.Config) error {
				current, err := b.State(ctx)
				if err != nil {
					return fmt.Errorf("State() > %w", err)
				}

				out := cmd.OutOrStdout()
				importer := datasync.NewImporter(b, out)
				opts := datasync.ImportOptions{
					DryRun:         dryRun,
					UpdateExisting: updateExisting,
				}
				result, err := importer.Import(ctx, current, incoming, opts)
				if errors.Is(err, review.ErrConflict) {
					return fmt.Errorf("the state changed during the import, run it again > %w", err)
				}
				if err != nil {
					return fmt.Errorf("importer.Import() > %w", err)
				}

				fmt.Fprintln(out, "\nImport Summary:")
				if opts.DryRun {
					fmt.Fprintln(out, "  (dry-run mode, no changes made)")
				}
				fmt.Fprintf(out, "  Categories: %d new, %d skipped, %d updated\n", result.CategoriesNew, result.CategoriesSkipped, result.CategoriesUpdated)
				fmt.Fprintf(out, "  Subjects:   %d new, %d skipped, %d updated\n", result.SubjectsNew, result.SubjectsSkipped, result.SubjectsUpdated)
				fmt.Fprintf(out, "  Items:      %d new, %d skipped, %d updated\n", result.ItemsNew, result.ItemsSkipped, result.ItemsUpdated)
				return nil
			})
		},
	}
	command.Flags().BoolVar(&dryRun, "dry-run", false, "Preview changes without modifying the state")
	command.Flags().BoolVar(&updateExisting, "update-existing", false, "Overwrite entities whose id already exists")
	return command
}
