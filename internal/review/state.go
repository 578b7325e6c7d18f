package review

import (
	"fmt"
	"slices"
)

// State is the full snapshot of categories, subjects and items in their stored order.
// Mutation methods never modify the receiver; they return the next State.
type State struct {
	Categories []Category `json:"categories" yaml:"categories"`
	Subjects   []Subject  `json:"subjects" yaml:"subjects"`
	Items      []Item     `json:"items" yaml:"items"`
}

// NewState returns the empty initial state.
func NewState() State {
	return State{
		Categories: []Category{},
		Subjects:   []Subject{},
		Items:      []Item{},
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	next := State{
		Categories: slices.Clone(s.Categories),
		Subjects:   slices.Clone(s.Subjects),
	}
	if s.Items != nil {
		next.Items = make([]Item, len(s.Items))
		for i, item := range s.Items {
			next.Items[i] = item.clone()
		}
	}
	return next
}

// AddItem appends a new item with the given id to the end of the item sequence.
// subjectID is not checked against the existing subjects.
func (s State) AddItem(id, subjectID string) State {
	next := s.Clone()
	next.Items = append(next.Items, Item{
		ID:          id,
		Label:       DefaultItemLabel,
		Description: "",
		Visible:     true,
		SubjectID:   subjectID,
	})
	return next
}

// AddSubject appends a new subject with the given id to the end of the subject sequence.
func (s State) AddSubject(id string) State {
	next := s.Clone()
	next.Subjects = append(next.Subjects, Subject{
		ID:    id,
		Label: DefaultSubjectLabel,
	})
	return next
}

// Remove deletes the item or the subject with the given id.
// Removing a subject also removes every item that belongs to it.
// An unknown id leaves the state unchanged.
func (s State) Remove(id string) State {
	next := s.Clone()
	if idx := s.itemIndex(id); idx != -1 {
		next.Items = slices.Delete(next.Items, idx, idx+1)
	}
	if idx := s.subjectIndex(id); idx != -1 {
		next.Subjects = slices.Delete(next.Subjects, idx, idx+1)
		survivors := make([]Item, 0, len(next.Items))
		for _, item := range next.Items {
			if item.SubjectID != id {
				survivors = append(survivors, item)
			}
		}
		next.Items = survivors
	}
	return next
}

// UpdateItem merges patch into the item with the given id.
func (s State) UpdateItem(id string, patch ItemPatch) (State, error) {
	idx := s.itemIndex(id)
	if idx == -1 {
		return s, fmt.Errorf("update item %s > %w", id, ErrItemNotFound)
	}
	next := s.Clone()
	patch.apply(&next.Items[idx])
	return next, nil
}

// UpdateSubject merges patch into the subject with the given id.
func (s State) UpdateSubject(id string, patch SubjectPatch) (State, error) {
	idx := s.subjectIndex(id)
	if idx == -1 {
		return s, fmt.Errorf("update subject %s > %w", id, ErrSubjectNotFound)
	}
	next := s.Clone()
	patch.apply(&next.Subjects[idx])
	return next, nil
}

// MoveItem relocates the item with the given id to index.
// The item is looked up by id every time, so a stale index from an earlier move event
// only affects where it lands.
func (s State) MoveItem(id string, index int) (State, error) {
	idx := s.itemIndex(id)
	if idx == -1 {
		return s, fmt.Errorf("move item %s > %w", id, ErrItemNotFound)
	}
	next := s.Clone()
	next.Items = move(next.Items, idx, index)
	return next, nil
}

// MoveSubject relocates the subject with the given id to index.
func (s State) MoveSubject(id string, index int) (State, error) {
	idx := s.subjectIndex(id)
	if idx == -1 {
		return s, fmt.Errorf("move subject %s > %w", id, ErrSubjectNotFound)
	}
	next := s.Clone()
	next.Subjects = move(next.Subjects, idx, index)
	return next, nil
}

// Complete records a completion on today and schedules the next review nextInterval days later.
func (s State) Complete(id string, nextInterval int, today Date) (State, error) {
	if nextInterval < 1 {
		return s, fmt.Errorf("next interval must be positive, got %d > %w", nextInterval, ErrInvalidCommand)
	}
	idx := s.itemIndex(id)
	if idx == -1 {
		return s, fmt.Errorf("complete item %s > %w", id, ErrItemNotFound)
	}
	next := s.Clone()
	next.Items[idx].RepInfo = &RepetitionRecord{
		Interval:       nextInterval,
		LastCompletion: today,
	}
	return next, nil
}

// FindItem returns the item with the given id.
func (s State) FindItem(id string) (Item, error) {
	idx := s.itemIndex(id)
	if idx == -1 {
		return Item{}, fmt.Errorf("find item %s > %w", id, ErrItemNotFound)
	}
	return s.Items[idx].clone(), nil
}

// FindSubject returns the subject with the given id.
func (s State) FindSubject(id string) (Subject, error) {
	idx := s.subjectIndex(id)
	if idx == -1 {
		return Subject{}, fmt.Errorf("find subject %s > %w", id, ErrSubjectNotFound)
	}
	return s.Subjects[idx], nil
}

// ItemsOf returns the items of a subject in stored order.
// Items whose subject does not exist are returned for an empty subjectID.
func (s State) ItemsOf(subjectID string) []Item {
	subjects := make(map[string]struct{}, len(s.Subjects))
	for _, subject := range s.Subjects {
		subjects[subject.ID] = struct{}{}
	}

	var items []Item
	for _, item := range s.Items {
		owner := item.SubjectID
		if _, ok := subjects[owner]; !ok {
			owner = ""
		}
		if owner == subjectID {
			items = append(items, item.clone())
		}
	}
	return items
}

func (s State) itemIndex(id string) int {
	return slices.IndexFunc(s.Items, func(item Item) bool {
		return item.ID == id
	})
}

func (s State) subjectIndex(id string) int {
	return slices.IndexFunc(s.Subjects, func(subject Subject) bool {
		return subject.ID == id
	})
}

// move removes list[from] and reinserts it at to, clamped to the bounds of the shortened list.
func move[T any](list []T, from, to int) []T {
	moved := list[from]
	list = slices.Delete(list, from, from+1)
	to = max(0, min(to, len(list)))
	return slices.Insert(list, to, moved)
}
