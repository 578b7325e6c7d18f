package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_Validate(t *testing.T) {
	today := NewDate(2025, 5, 1)

	tests := []struct {
		name         string
		state        State
		wantErrors   []string
		wantWarnings []string
	}{
		{
			name:  "valid state",
			state: exampleState(),
		},
		{
			name: "dangling references are warnings",
			state: State{
				Subjects: []Subject{{ID: "s1", CategoryID: "missing-category"}},
				Items:    []Item{{ID: "i1", SubjectID: "missing-subject"}},
			},
			wantWarnings: []string{
				"subjects[0]: category missing-category does not exist",
				"items[0]: subject missing-subject does not exist",
			},
		},
		{
			name: "duplicate ids across kinds",
			state: State{
				Subjects: []Subject{{ID: "x"}},
				Items:    []Item{{ID: "x", SubjectID: "x"}},
			},
			wantErrors: []string{"items[0]: id x is already used by subjects[0]"},
		},
		{
			name: "invalid repetition records",
			state: State{
				Items: []Item{
					{ID: "i1", RepInfo: &RepetitionRecord{Interval: 0, LastCompletion: today}},
					{ID: "i2", RepInfo: &RepetitionRecord{Interval: 3, LastCompletion: today.AddDays(1)}},
				},
			},
			wantErrors: []string{
				"items[0]: interval must be positive, got 0",
				"items[1]: last completion 2025-05-02 is after today 2025-05-01",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.state.Validate(today)

			var gotErrors, gotWarnings []string
			for _, e := range got.Errors {
				gotErrors = append(gotErrors, e.Error())
			}
			for _, w := range got.Warnings {
				gotWarnings = append(gotWarnings, w.Error())
			}
			assert.Equal(t, tt.wantErrors, gotErrors)
			assert.Equal(t, tt.wantWarnings, gotWarnings)
			assert.Equal(t, len(tt.wantErrors) > 0, got.HasErrors())
		})
	}
}
