package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/revisit/internal/cli"
	"github.com/at-ishikawa/revisit/internal/config"
	"github.com/at-ishikawa/revisit/internal/dispatch"
	"github.com/at-ishikawa/revisit/internal/review"
)

// ChoiceFlag picks one of the three next-interval candidates.
type ChoiceFlag string

// Set implements pflag.Value.
func (c *ChoiceFlag) Set(v string) error {
	switch v {
	case string(ChoiceSooner), string(ChoiceFormula), string(ChoiceLater):
		*c = ChoiceFlag(v)
	default:
		return fmt.Errorf("invalid value %q, valid values are %q, %q or %q", v, ChoiceSooner, ChoiceFormula, ChoiceLater)
	}
	return nil
}

// String implements pflag.Value.
func (c *ChoiceFlag) String() string {
	if c == nil {
		return ""
	}
	return string(*c)
}

// Type implements pflag.Value.
func (c *ChoiceFlag) Type() string {
	return "ChoiceFlag"
}

// index is the position of the choice in dispatch.Schedule.NextIntervals.
func (c ChoiceFlag) index() int {
	switch c {
	case ChoiceSooner:
		return 0
	case ChoiceLater:
		return 2
	default:
		return 1
	}
}

var (
	_ pflag.Value = (*ChoiceFlag)(nil)
)

const (
	ChoiceSooner  ChoiceFlag = "sooner"
	ChoiceFormula ChoiceFlag = "formula"
	ChoiceLater   ChoiceFlag = "later"
)

func newItemsCommand() *cobra.Command {
	itemsCommand := &cobra.Command{
		Use:   "items",
		Short: "Manage items and their reviews",
	}
	itemsCommand.AddCommand(
		newItemsAddCommand(),
		newItemsUpdateCommand(),
		newItemsMoveCommand(),
		newItemsCompleteCommand(),
		newItemsScheduleCommand(),
	)
	return itemsCommand
}

type itemFlags struct {
	label       string
	description string
	visible     bool
	subjectID   string
}

func (f *itemFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.label, "label", "", "label of the item")
	flags.StringVar(&f.description, "description", "", "description of the item")
	flags.BoolVar(&f.visible, "visible", true, "show the description in listings")
	flags.StringVar(&f.subjectID, "subject", "", "id of the subject. An empty value leaves the item unassigned")
}

// patch holds only the flags given on the command line, or nil if there are none.
func (f *itemFlags) patch(cmd *cobra.Command) *review.ItemPatch {
	var patch review.ItemPatch
	changed := false
	if cmd.Flags().Changed("label") {
		patch.Label = &f.label
		changed = true
	}
	if cmd.Flags().Changed("description") {
		patch.Description = &f.description
		changed = true
	}
	if cmd.Flags().Changed("visible") {
		patch.Visible = &f.visible
		changed = true
	}
	if cmd.Flags().Changed("subject") {
		patch.SubjectID = &f.subjectID
		changed = true
	}
	if !changed {
		return nil
	}
	return &patch
}

func newItemsAddCommand() *cobra.Command {
	var flags itemFlags

	command := &cobra.Command{
		Use:   "add",
		Short: "Add an item at the end",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withBackend(ctx, func(b backend, _ *config.Config) error {
				state, err := b.Dispatch(ctx, dispatch.Command{Type: dispatch.TypeAdd, SubjectID: flags.subjectID})
				if err != nil {
					return fmt.Errorf("add item > %w", err)
				}
				id := state.Items[len(state.Items)-1].ID

				patch := flags.patch(cmd)
				if patch != nil {
					// the subject was set by the add command already
					patch.SubjectID = nil
				}
				if patch != nil && (patch.Label != nil || patch.Description != nil || patch.Visible != nil) {
					if _, err := b.Dispatch(ctx, dispatch.Command{Type: dispatch.TypeUpdate, ID: id, Item: patch}); err != nil {
						return fmt.Errorf("update item %s > %w", id, err)
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added item %s\n", id)
				return nil
			})
		},
	}
	flags.register(command.Flags())
	return command
}

func newItemsUpdateCommand() *cobra.Command {
	var flags itemFlags

	command := &cobra.Command{
		Use:   "update <item id>",
		Short: "Change fields of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := flags.patch(cmd)
			if patch == nil {
				return fmt.Errorf("nothing to update: pass --label, --description, --visible or --subject")
			}

			ctx := cmd.Context()
			return withBackend(ctx, func(b backend, _ *config.Config) error {
				if _, err := b.Dispatch(ctx, dispatch.Command{Type: dispatch.TypeUpdate, ID: args[0], Item: patch}); err != nil {
					return fmt.Errorf("update item %s > %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated item %s\n", args[0])
				return nil
			})
		},
	}
	flags.register(command.Flags())
	return command
}

func newItemsMoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move <item id> <index>",
		Short: "Move an item to a position, counted from 0",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", args[1], err)
			}

			ctx := cmd.Context()
			return withBackend(ctx, func(b backend, _ *config.Config) error {
				if _, err := b.Dispatch(ctx, dispatch.Command{Type: dispatch.TypeMove, ID: args[0], Index: &index}); err != nil {
					return fmt.Errorf("move item %s > %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Moved item %s to %d\n", args[0], index)
				return nil
			})
		},
	}
}

func newItemsCompleteCommand() *cobra.Command {
	choice := ChoiceFormula

	command := &cobra.Command{
		Use:   "complete <item id> [interval days]",
		Short: "Record a review today and schedule the next one",
		Long: "Record a review today. The next interval is one of the scheduler's choices\n" +
			"(--choice sooner|formula|later), or the number of days given as the second argument.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			interval := 0
			if len(args) == 2 {
				var err error
				interval, err = strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid interval %q: %w", args[1], err)
				}
			}

			ctx := cmd.Context()
			return withBackend(ctx, func(b backend, _ *config.Config) error {
				if len(args) == 1 {
					result, err := b.Schedule(ctx, id)
					if err != nil {
						return fmt.Errorf("schedule of %s > %w", id, err)
					}
					interval = result.NextIntervals[choice.index()]
				}

				if _, err := b.Dispatch(ctx, dispatch.Command{Type: dispatch.TypeComplete, ID: id, NextInterval: interval}); err != nil {
					return fmt.Errorf("complete item %s > %w", id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Completed item %s, next review in %d day(s)\n", id, interval)
				return nil
			})
		},
	}
	command.Flags().Var(&choice, "choice", "Which interval to pick when none is given. Options: sooner, formula, later")
	return command
}

func newItemsScheduleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule <item id>",
		Short: "Show when an item is due and the intervals to choose from",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withBackend(ctx, func(b backend, _ *config.Config) error {
				item, err := findItem(ctx, b, args[0])
				if err != nil {
					return fmt.Errorf("find item %s > %w", args[0], err)
				}
				return cli.NewPrinter(cmd.OutOrStdout()).PrintSchedule(item, b.Today())
			})
		},
	}
}
