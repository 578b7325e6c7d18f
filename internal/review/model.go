// Package review provides the review tracking domain: categories, subjects and items
// kept in user-controlled order, and the mutations applied to them.
package review

import "github.com/google/uuid"

const (
	DefaultItemLabel    = "new item"
	DefaultSubjectLabel = "new subject"
)

// Category groups subjects for display. Nothing depends on it yet.
type Category struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// Subject is a user-orderable container of items.
// An empty CategoryID means the subject has no category.
type Subject struct {
	ID         string `json:"id" yaml:"id"`
	CategoryID string `json:"categoryId,omitempty" yaml:"category_id,omitempty"`
	Label      string `json:"label" yaml:"label"`
}

// Item is a reviewable unit of content.
// An empty SubjectID means the item has no subject, and a nil RepInfo means it was never reviewed.
type Item struct {
	ID          string            `json:"id" yaml:"id"`
	Label       string            `json:"label" yaml:"label"`
	Description string            `json:"description" yaml:"description"`
	Visible     bool              `json:"visible" yaml:"visible"`
	SubjectID   string            `json:"subjectId,omitempty" yaml:"subject_id,omitempty"`
	RepInfo     *RepetitionRecord `json:"repInfo,omitempty" yaml:"rep_info,omitempty"`
}

// RepetitionRecord is the single stored schedule of an item.
type RepetitionRecord struct {
	Interval       int  `json:"interval" yaml:"interval" validate:"gte=1"`
	LastCompletion Date `json:"lastCompletion" yaml:"last_completion"`
}

// ItemPatch holds the fields to merge into an item. Nil fields are left untouched.
type ItemPatch struct {
	Label       *string           `json:"label,omitempty" validate:"omitempty,max=200"`
	Description *string           `json:"description,omitempty" validate:"omitempty,max=10000"`
	Visible     *bool             `json:"visible,omitempty"`
	SubjectID   *string           `json:"subjectId,omitempty"`
	RepInfo     *RepetitionRecord `json:"repInfo,omitempty"`
}

// SubjectPatch holds the fields to merge into a subject. Nil fields are left untouched.
type SubjectPatch struct {
	Label      *string `json:"label,omitempty" validate:"omitempty,max=200"`
	CategoryID *string `json:"categoryId,omitempty"`
}

// IDGenerator returns a fresh id, unique across every entity kind.
type IDGenerator func() string

// NewID generates ids with random UUIDs.
func NewID() string {
	return uuid.NewString()
}

func (item Item) clone() Item {
	if item.RepInfo != nil {
		rep := *item.RepInfo
		item.RepInfo = &rep
	}
	return item
}

func (patch ItemPatch) apply(item *Item) {
	if patch.Label != nil {
		item.Label = *patch.Label
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Visible != nil {
		item.Visible = *patch.Visible
	}
	if patch.SubjectID != nil {
		item.SubjectID = *patch.SubjectID
	}
	if patch.RepInfo != nil {
		rep := *patch.RepInfo
		item.RepInfo = &rep
	}
}

func (patch SubjectPatch) apply(subject *Subject) {
	if patch.Label != nil {
		subject.Label = *patch.Label
	}
	if patch.CategoryID != nil {
		subject.CategoryID = *patch.CategoryID
	}
}
