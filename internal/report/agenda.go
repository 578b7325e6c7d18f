// Package report builds the review agenda and writes it as Markdown or PDF.
package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/at-ishikawa/revisit/internal/assets"
	"github.com/at-ishikawa/revisit/internal/cli"
	"github.com/at-ishikawa/revisit/internal/pdf"
	"github.com/at-ishikawa/revisit/internal/review"
	"github.com/at-ishikawa/revisit/internal/schedule"
)

type Options struct {
	// HorizonDays limits upcoming items to those due within this many days. Zero lists all of them.
	HorizonDays  int
	TemplatePath string
	PDF          bool
}

// BuildAgenda splits items into due, upcoming and never reviewed ones.
// Due and upcoming items are ordered by remaining days; never reviewed items keep their stored order.
func BuildAgenda(state review.State, today review.Date, horizonDays int) assets.AgendaTemplate {
	subjects := make(map[string]string, len(state.Subjects))
	for _, subject := range state.Subjects {
		subjects[subject.ID] = subject.Label
	}

	items := make([]review.Item, len(state.Items))
	copy(items, state.Items)
	schedule.SortByDue(items, today, true)

	agenda := assets.AgendaTemplate{Date: today.String()}
	for _, item := range items {
		remaining := schedule.RemainingTime(item, today)
		entry := assets.AgendaEntry{
			ID:          item.ID,
			Label:       item.Label,
			Subject:     subjects[item.SubjectID],
			Description: item.Description,
			Status:      status(remaining),
			Remaining:   cli.FormatRemainingTime(remaining),
		}
		for _, days := range schedule.NextIntervals(item, today) {
			entry.Choices = append(entry.Choices, fmt.Sprintf("%dd", days))
		}

		switch {
		case !remaining.Scheduled:
			agenda.Unscheduled = append(agenda.Unscheduled, entry)
		case remaining.Days <= 0:
			agenda.Due = append(agenda.Due, entry)
		case horizonDays == 0 || remaining.Days <= horizonDays:
			agenda.Upcoming = append(agenda.Upcoming, entry)
		}
	}
	return agenda
}

func status(remaining schedule.Remaining) string {
	switch {
	case !remaining.Scheduled:
		return "never reviewed"
	case remaining.Days < 0:
		return fmt.Sprintf("overdue by %d day(s)", -remaining.Days)
	case remaining.Days == 0:
		return "due today"
	default:
		return fmt.Sprintf("due in %d day(s)", remaining.Days)
	}
}

// WriteAgenda writes agenda-<date>.md into outputDirectory and, if asked, a PDF next to it.
// It returns the paths of the written files.
func WriteAgenda(outputDirectory string, state review.State, today review.Date, opts Options) ([]string, error) {
	var buf bytes.Buffer
	if err := assets.WriteAgenda(&buf, opts.TemplatePath, BuildAgenda(state, today, opts.HorizonDays)); err != nil {
		return nil, fmt.Errorf("assets.WriteAgenda() > %w", err)
	}

	if err := os.MkdirAll(outputDirectory, 0755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll(%s) > %w", outputDirectory, err)
	}
	markdownPath := filepath.Join(outputDirectory, fmt.Sprintf("agenda-%s.md", today))
	if err := os.WriteFile(markdownPath, buf.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("os.WriteFile(%s) > %w", markdownPath, err)
	}
	paths := []string{markdownPath}

	if opts.PDF {
		pdfPath, err := pdf.ConvertMarkdownToPDF(markdownPath, pdf.Options{})
		if err != nil {
			return paths, fmt.Errorf("pdf.ConvertMarkdownToPDF() > %w", err)
		}
		paths = append(paths, pdfPath)
	}
	return paths, nil
}
