package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/revisit/internal/config"
	"github.com/at-ishikawa/revisit/internal/dispatch"
	"github.com/at-ishikawa/revisit/internal/review"
)

func newSubjectsCommand() *cobra.Command {
	subjectsCommand := &cobra.Command{
		Use:   "subjects",
		Short: "Manage subjects",
	}
	subjectsCommand.AddCommand(
		newSubjectsAddCommand(),
		newSubjectsUpdateCommand(),
		newSubjectsMoveCommand(),
	)
	return subjectsCommand
}

func newSubjectsAddCommand() *cobra.Command {
	var label, categoryID string

	command := &cobra.Command{
		Use:   "add",
		Short: "Add a subject at the end",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withBackend(ctx, func(b backend, _ *config.Config) error {
				state, err := b.Dispatch(ctx, dispatch.Command{Type: dispatch.TypeAddSubject})
				if err != nil {
					return fmt.Errorf("add subject > %w", err)
				}
				id := state.Subjects[len(state.Subjects)-1].ID

				if patch := subjectPatch(cmd, label, categoryID); patch != nil {
					if _, err := b.Dispatch(ctx, dispatch.Command{Type: dispatch.TypeUpdateSubject, ID: id, Subject: patch}); err != nil {
						return fmt.Errorf("update subject %s > %w", id, err)
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added subject %s\n", id)
				return nil
			})
		},
	}
	command.Flags().StringVar(&label, "label", "", "label of the subject")
	command.Flags().StringVar(&categoryID, "category", "", "id of the category")
	return command
}

func newSubjectsUpdateCommand() *cobra.Command {
	var label, categoryID string

	command := &cobra.Command{
		Use:   "update <subject id>",
		Short: "Change the label or category of a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := subjectPatch(cmd, label, categoryID)
			if patch == nil {
				return fmt.Errorf("nothing to update: pass --label or --category")
			}

			ctx := cmd.Context()
			return withBackend(ctx, func(b backend, _ *config.Config) error {
				if _, err := b.Dispatch(ctx, dispatch.Command{Type: dispatch.TypeUpdateSubject, ID: args[0], Subject: patch}); err != nil {
					return fmt.Errorf("update subject %s > %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated subject %s\n", args[0])
				return nil
			})
		},
	}
	command.Flags().StringVar(&label, "label", "", "new label")
	command.Flags().StringVar(&categoryID, "category", "", "new category id. An empty value removes the category")
	return command
}

func newSubjectsMoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move <subject id> <index>",
		Short: "Move a subject to a position, counted from 0",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", args[1], err)
			}

			ctx := cmd.Context()
			return withBackend(ctx, func(b backend, _ *config.Config) error {
				if _, err := b.Dispatch(ctx, dispatch.Command{Type: dispatch.TypeMoveSubject, ID: args[0], Index: &index}); err != nil {
					return fmt.Errorf("move subject %s > %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Moved subject %s to %d\n", args[0], index)
				return nil
			})
		},
	}
}

// subjectPatch holds only the flags given on the command line, or nil if there are none.
func subjectPatch(cmd *cobra.Command, label, categoryID string) *review.SubjectPatch {
	var patch review.SubjectPatch
	changed := false
	if cmd.Flags().Changed("label") {
		patch.Label = &label
		changed = true
	}
	if cmd.Flags().Changed("category") {
		patch.CategoryID = &categoryID
		changed = true
	}
	if !changed {
		return nil
	}
	return &patch
}
