// Package cli renders the review state for the terminal.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/at-ishikawa/revisit/internal/review"
	"github.com/at-ishikawa/revisit/internal/schedule"
	"github.com/at-ishikawa/revisit/internal/statistics"
)

// UnassignedLabel heads the items without an existing subject.
const UnassignedLabel = "(no subject)"

type Printer struct {
	writer io.Writer
	bold   *color.Color
	faint  *color.Color
	due    *color.Color
	soon   *color.Color
	later  *color.Color
}

func NewPrinter(writer io.Writer) *Printer {
	return &Printer{
		writer: writer,
		bold:   color.New(color.Bold),
		faint:  color.New(color.Faint),
		due:    color.New(color.FgRed),
		soon:   color.New(color.FgYellow),
		later:  color.New(color.FgGreen),
	}
}

func (p *Printer) remaining(remaining schedule.Remaining) string {
	text := FormatRemainingTime(remaining)
	switch {
	case !remaining.Scheduled:
		return p.faint.Sprint("-")
	case remaining.Days <= 0:
		return p.due.Sprint(text)
	case remaining.Days <= 3:
		return p.soon.Sprint(text)
	default:
		return p.later.Sprint(text)
	}
}

func (p *Printer) item(item review.Item, today review.Date) error {
	if _, err := fmt.Fprintf(p.writer, "  %-6s %s %s\n",
		p.remaining(schedule.RemainingTime(item, today)),
		item.Label,
		p.faint.Sprintf("[%s]", item.ID),
	); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	if item.Visible && item.Description != "" {
		for _, line := range strings.Split(item.Description, "\n") {
			if _, err := fmt.Fprintf(p.writer, "         %s\n", line); err != nil {
				return fmt.Errorf("failed to write to stdout: %w", err)
			}
		}
	}
	return nil
}

// PrintTree prints subjects in their stored order with their items, followed by items without a subject.
func (p *Printer) PrintTree(state review.State, today review.Date) error {
	if len(state.Subjects) == 0 && len(state.Items) == 0 {
		_, err := fmt.Fprintln(p.writer, "Nothing to review yet.")
		return err
	}

	for _, subject := range state.Subjects {
		if _, err := fmt.Fprintf(p.writer, "%s %s\n", p.bold.Sprint(subject.Label), p.faint.Sprintf("[%s]", subject.ID)); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
		for _, item := range state.ItemsOf(subject.ID) {
			if err := p.item(item, today); err != nil {
				return err
			}
		}
	}

	unassigned := state.ItemsOf("")
	if len(unassigned) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(p.writer, p.bold.Sprint(UnassignedLabel)); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	for _, item := range unassigned {
		if err := p.item(item, today); err != nil {
			return err
		}
	}
	return nil
}

// PrintList prints items in the given order, one per line.
func (p *Printer) PrintList(items []review.Item, today review.Date) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(p.writer, "No items.")
		return err
	}
	for _, item := range items {
		if err := p.item(item, today); err != nil {
			return err
		}
	}
	return nil
}

// PrintSchedule prints when an item is due and the three interval choices for completing it now.
func (p *Printer) PrintSchedule(item review.Item, today review.Date) error {
	remaining := schedule.RemainingTime(item, today)
	next := schedule.NextIntervals(item, today)

	status := "never reviewed"
	if remaining.Scheduled {
		switch {
		case remaining.Days < 0:
			status = fmt.Sprintf("overdue by %d day(s)", -remaining.Days)
		case remaining.Days == 0:
			status = "due today"
		default:
			status = fmt.Sprintf("due in %d day(s) (%s)", remaining.Days, FormatRemainingTime(remaining))
		}
	}

	if _, err := fmt.Fprintf(p.writer, "%s: %s\n", p.bold.Sprint(item.Label), status); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	if _, err := fmt.Fprintf(p.writer, "  sooner: %dd  formula: %dd  later: %dd\n", next[0], next[1], next[2]); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	return nil
}

// PrintValidationResults prints the audit and a summary line.
func (p *Printer) PrintValidationResults(result *review.ValidationResult) error {
	var b strings.Builder
	b.WriteString("=== Validation Results ===\n")
	if len(result.Errors) > 0 {
		b.WriteString(p.due.Sprintf("✗ Errors (%d):", len(result.Errors)))
		b.WriteString("\n")
		for _, e := range result.Errors {
			fmt.Fprintf(&b, "  - %s\n", e.Error())
		}
	}
	if len(result.Warnings) > 0 {
		b.WriteString(p.soon.Sprintf("⚠ Warnings (%d):", len(result.Warnings)))
		b.WriteString("\n")
		for _, w := range result.Warnings {
			fmt.Fprintf(&b, "  - %s\n", w.Error())
		}
	}
	if len(result.Errors) == 0 && len(result.Warnings) == 0 {
		b.WriteString(p.later.Sprint("✓ All validations passed!"))
		b.WriteString("\n")
	}

	if _, err := io.WriteString(p.writer, b.String()); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	return nil
}

// PrintStatistics prints the workload per subject and the number of items last reviewed in each month.
func (p *Printer) PrintStatistics(result statistics.StatisticsResult) error {
	var b strings.Builder
	b.WriteString("Review Statistics Report\n")
	b.WriteString("========================\n\n")
	fmt.Fprintf(&b, "%-20s  %5s  %5s  %8s  %5s  %12s\n", "Subject", "Items", "Due", "Upcoming", "New", "Avg Interval")
	fmt.Fprintf(&b, "%-20s  %5s  %5s  %8s  %5s  %12s\n", "-------", "-----", "---", "--------", "---", "------------")

	row := func(label string, s statistics.SubjectStatistics) {
		average := "-"
		if s.Due+s.Upcoming > 0 {
			average = fmt.Sprintf("%.1fd", s.AverageInterval)
		}
		fmt.Fprintf(&b, "%-20s  %5d  %5d  %8d  %5d  %12s\n", label, s.Items, s.Due, s.Upcoming, s.NeverReviewed, average)
	}
	for _, s := range result.Subjects {
		label := s.Label
		if s.SubjectID == "" {
			label = UnassignedLabel
		}
		row(label, s)
	}
	b.WriteString("\n")
	row("Totals:", result.Total)

	b.WriteString("\nLast reviewed\n")
	if len(result.Periods) == 0 {
		b.WriteString("  No reviews found for the specified period.\n")
	}
	for _, period := range result.Periods {
		fmt.Fprintf(&b, "  %-10s %d item(s)\n", period.Period, period.Reviewed)
	}

	if _, err := io.WriteString(p.writer, b.String()); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	return nil
}
