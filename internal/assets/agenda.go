package assets

import (
	_ "embed"
	"fmt"
	"io"
)

const agendaTemplateName = "agenda.md.go.tmpl"

//go:embed templates/agenda.md.go.tmpl
var fallbackAgendaTemplate string

// AgendaTemplate is the data passed to the agenda template.
type AgendaTemplate struct {
	Date        string
	Due         []AgendaEntry
	Upcoming    []AgendaEntry
	Unscheduled []AgendaEntry
}

type AgendaEntry struct {
	ID          string
	Label       string
	Subject     string
	Description string
	// Status is a sentence such as "due today" or "overdue by 3 day(s)"
	Status    string
	Remaining string
	Choices   []string
}

func WriteAgenda(output io.Writer, templatePath string, templateData AgendaTemplate) error {
	tmpl, err := parseTemplateWithFallback(templatePath, agendaTemplateName, fallbackAgendaTemplate)
	if err != nil {
		return fmt.Errorf("parseTemplateWithFallback() > %w", err)
	}
	if err := tmpl.Execute(output, templateData); err != nil {
		return fmt.Errorf("tmpl.Execute() > %w", err)
	}
	return nil
}
