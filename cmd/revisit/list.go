package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/revisit/internal/cli"
	"github.com/at-ishikawa/revisit/internal/config"
	"github.com/at-ishikawa/revisit/internal/dispatch"
	"github.com/at-ishikawa/revisit/internal/review"
	"github.com/at-ishikawa/revisit/internal/schedule"
)

type SortFlag string

// Set implements pflag.Value.
func (s *SortFlag) Set(v string) error {
	switch v {
	case string(SortDescending):
		*s = SortDescending
	case string(SortAscending):
		*s = SortAscending
	default:
		return fmt.Errorf("invalid value %q, valid values are %q or %q", v, SortDescending, SortAscending)
	}
	return nil
}

// String implements pflag.Value.
func (s *SortFlag) String() string {
	if s == nil {
		return ""
	}
	return string(*s)
}

// Type implements pflag.Value.
func (s *SortFlag) Type() string {
	return "SortFlag"
}

var (
	_ pflag.Value = (*SortFlag)(nil)
)

const (
	SortDescending SortFlag = "desc"
	SortAscending  SortFlag = "asc"
)

func newListCommand() *cobra.Command {
	sortFlag := SortAscending
	var dueOnly bool

	command := &cobra.Command{
		Use:   "list",
		Short: "Show subjects and items with the time left until each is due",
		Long: "Show subjects and their items in stored order. With --sort or --due, items are\n" +
			"listed flat, ordered by the days left until they are due.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withBackend(ctx, func(b backend, _ *config.Config) error {
				state, err := b.State(ctx)
				if err != nil {
					return fmt.Errorf("State() > %w", err)
				}
				today := b.Today()
				printer := cli.NewPrinter(cmd.OutOrStdout())

				if !cmd.Flags().Changed("sort") && !dueOnly {
					return printer.PrintTree(state, today)
				}
				return printer.PrintList(dueItems(state, today, sortFlag, dueOnly), today)
			})
		},
	}
	command.Flags().Var(&sortFlag, "sort", "Sort items by days left. Options: asc, desc")
	command.Flags().BoolVar(&dueOnly, "due", false, "Show only items that are due today or overdue")
	return command
}

func dueItems(state review.State, today review.Date, sortFlag SortFlag, dueOnly bool) []review.Item {
	items := make([]review.Item, 0, len(state.Items))
	for _, item := range state.Items {
		if dueOnly && !schedule.IsDue(item, today) {
			continue
		}
		items = append(items, item)
	}
	schedule.SortByDue(items, today, sortFlag != SortDescending)
	return items
}

func newRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an item, or a subject together with its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withBackend(ctx, func(b backend, _ *config.Config) error {
				if _, err := b.Dispatch(ctx, dispatch.Command{Type: dispatch.TypeRemove, ID: args[0]}); err != nil {
					return fmt.Errorf("remove %s > %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
				return nil
			})
		},
	}
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check ids, references and repetition records for consistency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withBackend(ctx, func(b backend, _ *config.Config) error {
				state, err := b.State(ctx)
				if err != nil {
					return fmt.Errorf("State() > %w", err)
				}

				result := state.Validate(b.Today())
				if err := cli.NewPrinter(cmd.OutOrStdout()).PrintValidationResults(result); err != nil {
					return err
				}
				if result.HasErrors() {
					return fmt.Errorf("validation failed with %d error(s)", len(result.Errors))
				}
				return nil
			})
		},
	}
}
