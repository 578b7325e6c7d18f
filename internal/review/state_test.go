package review

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func itemIDs(s State) []string {
	ids := make([]string, len(s.Items))
	for i, item := range s.Items {
		ids[i] = item.ID
	}
	return ids
}

func subjectIDs(s State) []string {
	ids := make([]string, len(s.Subjects))
	for i, subject := range s.Subjects {
		ids[i] = subject.ID
	}
	return ids
}

func exampleState() State {
	return State{
		Categories: []Category{{ID: "c1", Label: "some category"}},
		Subjects: []Subject{
			{ID: "s1", Label: "subject1"},
			{ID: "s2", Label: "subject2"},
		},
		Items: []Item{
			{ID: "i1", Label: "item1", Visible: true, SubjectID: "s1"},
			{ID: "i2", Label: "item2", Visible: true, SubjectID: "s2"},
			{ID: "i3", Label: "item3", Visible: true, SubjectID: "s1"},
		},
	}
}

func TestState_AddItem(t *testing.T) {
	original := exampleState()

	got := original.AddItem("i4", "s2")

	require.Len(t, got.Items, 4)
	assert.Equal(t, Item{
		ID:          "i4",
		Label:       DefaultItemLabel,
		Description: "",
		Visible:     true,
		SubjectID:   "s2",
	}, got.Items[3])
	assert.Equal(t, []string{"i1", "i2", "i3", "i4"}, itemIDs(got))
	assert.Len(t, original.Items, 3, "receiver must not change")
}

func TestState_AddSubject(t *testing.T) {
	got := NewState().AddSubject("s1").AddSubject("s2")

	assert.Equal(t, []Subject{
		{ID: "s1", Label: DefaultSubjectLabel},
		{ID: "s2", Label: DefaultSubjectLabel},
	}, got.Subjects)
}

func TestState_Remove(t *testing.T) {
	tests := []struct {
		name         string
		id           string
		wantItems    []string
		wantSubjects []string
	}{
		{
			name:         "item keeps the order of the others",
			id:           "i2",
			wantItems:    []string{"i1", "i3"},
			wantSubjects: []string{"s1", "s2"},
		},
		{
			name:         "subject cascades to its items",
			id:           "s1",
			wantItems:    []string{"i2"},
			wantSubjects: []string{"s2"},
		},
		{
			name:         "unknown id is a no-op",
			id:           "missing",
			wantItems:    []string{"i1", "i2", "i3"},
			wantSubjects: []string{"s1", "s2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := exampleState().Remove(tt.id)
			assert.Equal(t, tt.wantItems, itemIDs(got))
			assert.Equal(t, tt.wantSubjects, subjectIDs(got))
		})
	}
}

func TestState_Remove_CascadeLeavesOtherSubjectsUntouched(t *testing.T) {
	s := State{
		Subjects: []Subject{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		Items: []Item{
			{ID: "1", SubjectID: "b"},
			{ID: "2", SubjectID: "a"},
			{ID: "3", SubjectID: "b"},
			{ID: "4", SubjectID: "c"},
			{ID: "5", SubjectID: "a"},
			{ID: "6", SubjectID: ""},
		},
	}

	got := s.Remove("a")

	assert.Equal(t, []string{"1", "3", "4", "6"}, itemIDs(got))
	assert.Equal(t, []string{"b", "c"}, subjectIDs(got))
}

func TestState_UpdateItem(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		patch   ItemPatch
		want    Item
		wantErr error
	}{
		{
			name:  "label only",
			id:    "i1",
			patch: ItemPatch{Label: ptr("renamed")},
			want:  Item{ID: "i1", Label: "renamed", Visible: true, SubjectID: "s1"},
		},
		{
			name: "every field",
			id:   "i3",
			patch: ItemPatch{
				Label:       ptr("x"),
				Description: ptr("details"),
				Visible:     ptr(false),
				SubjectID:   ptr("s2"),
				RepInfo:     &RepetitionRecord{Interval: 4, LastCompletion: NewDate(2025, 1, 2)},
			},
			want: Item{
				ID:          "i3",
				Label:       "x",
				Description: "details",
				Visible:     false,
				SubjectID:   "s2",
				RepInfo:     &RepetitionRecord{Interval: 4, LastCompletion: NewDate(2025, 1, 2)},
			},
		},
		{
			name:    "missing item",
			id:      "nope",
			patch:   ItemPatch{Label: ptr("x")},
			wantErr: ErrNotFound,
		},
		{
			name:    "subject id is not an item",
			id:      "s1",
			patch:   ItemPatch{Label: ptr("x")},
			wantErr: ErrItemNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := exampleState()
			got, err := original.UpdateItem(tt.id, tt.patch)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, exampleState(), got)
				return
			}
			require.NoError(t, err)

			item, err := got.FindItem(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, item)
			assert.Equal(t, itemIDs(original), itemIDs(got))
			assert.Equal(t, exampleState(), original)
		})
	}
}

func TestState_UpdateSubject(t *testing.T) {
	got, err := exampleState().UpdateSubject("s2", SubjectPatch{Label: ptr("math"), CategoryID: ptr("c1")})
	require.NoError(t, err)
	assert.Equal(t, Subject{ID: "s2", CategoryID: "c1", Label: "math"}, got.Subjects[1])

	_, err = exampleState().UpdateSubject("i1", SubjectPatch{Label: ptr("x")})
	assert.ErrorIs(t, err, ErrSubjectNotFound)
}

func TestState_MoveItem(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		index   int
		want    []string
		wantErr bool
	}{
		{name: "to front", id: "i3", index: 0, want: []string{"i3", "i1", "i2"}},
		{name: "to end", id: "i1", index: 2, want: []string{"i2", "i3", "i1"}},
		{name: "same position", id: "i2", index: 1, want: []string{"i1", "i2", "i3"}},
		{name: "index past the end is clamped", id: "i1", index: 10, want: []string{"i2", "i3", "i1"}},
		{name: "negative index is clamped", id: "i3", index: -4, want: []string{"i3", "i1", "i2"}},
		{name: "missing item", id: "nope", index: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := exampleState().MoveItem(tt.id, tt.index)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrItemNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, itemIDs(got))
		})
	}
}

func TestState_MoveSubject(t *testing.T) {
	got, err := exampleState().MoveSubject("s2", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"s2", "s1"}, subjectIDs(got))
	assert.Equal(t, []string{"i1", "i2", "i3"}, itemIDs(got), "items keep their order")

	_, err = exampleState().MoveSubject("i1", 0)
	assert.ErrorIs(t, err, ErrSubjectNotFound)
}

func TestState_MoveItem_StaleIndex(t *testing.T) {
	s := exampleState()

	// Two hover events computed against the original positions arrive back to back.
	first, err := s.MoveItem("i1", 2)
	require.NoError(t, err)
	second, err := first.MoveItem("i1", 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"i2", "i1", "i3"}, itemIDs(second))
	assert.ElementsMatch(t, itemIDs(s), itemIDs(second))
}

func TestState_Move_IsPermutation(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))

	for round := 0; round < 50; round++ {
		n := 1 + r.IntN(12)
		s := NewState()
		for i := 0; i < n; i++ {
			s = s.AddItem(string(rune('a'+i)), "")
			s = s.AddSubject(string(rune('A' + i)))
		}
		wantItems := slices.Sorted(slices.Values(itemIDs(s)))
		wantSubjects := slices.Sorted(slices.Values(subjectIDs(s)))

		for step := 0; step < 30; step++ {
			var err error
			target := r.IntN(n+4) - 2
			if r.IntN(2) == 0 {
				s, err = s.MoveItem(s.Items[r.IntN(n)].ID, target)
			} else {
				s, err = s.MoveSubject(s.Subjects[r.IntN(n)].ID, target)
			}
			require.NoError(t, err)
		}

		assert.Equal(t, wantItems, slices.Sorted(slices.Values(itemIDs(s))))
		assert.Equal(t, wantSubjects, slices.Sorted(slices.Values(subjectIDs(s))))
	}
}

func TestState_Complete(t *testing.T) {
	today := NewDate(2025, 3, 10)

	got, err := exampleState().Complete("i2", 5, today)
	require.NoError(t, err)
	assert.Equal(t, &RepetitionRecord{Interval: 5, LastCompletion: today}, got.Items[1].RepInfo)

	got, err = got.Complete("i2", 12, today.AddDays(4))
	require.NoError(t, err)
	assert.Equal(t, &RepetitionRecord{Interval: 12, LastCompletion: today.AddDays(4)}, got.Items[1].RepInfo)

	_, err = exampleState().Complete("i2", 0, today)
	assert.ErrorIs(t, err, ErrInvalidCommand)

	_, err = exampleState().Complete("missing", 3, today)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestState_Clone(t *testing.T) {
	s := exampleState()
	s.Items[0].RepInfo = &RepetitionRecord{Interval: 3, LastCompletion: NewDate(2025, 1, 1)}

	c := s.Clone()
	c.Items[0].RepInfo.Interval = 99
	c.Subjects[0].Label = "changed"

	assert.Equal(t, 3, s.Items[0].RepInfo.Interval)
	assert.Equal(t, "subject1", s.Subjects[0].Label)
}

func TestState_ItemsOf(t *testing.T) {
	s := exampleState()
	s.Items = append(s.Items,
		Item{ID: "i4", SubjectID: "gone"},
		Item{ID: "i5"},
	)

	assert.Equal(t, []string{"i1", "i3"}, itemIDs(State{Items: s.ItemsOf("s1")}))
	assert.Equal(t, []string{"i4", "i5"}, itemIDs(State{Items: s.ItemsOf("")}))
	assert.Empty(t, s.ItemsOf("gone"))
}
