package dispatch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_dispatch "github.com/at-ishikawa/revisit/internal/mocks/dispatch"
	"github.com/at-ishikawa/revisit/internal/review"
	"github.com/at-ishikawa/revisit/internal/schedule"
)

func ptr[T any](v T) *T {
	return &v
}

func sequentialIDs(prefix string) review.IDGenerator {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

func initialState() review.State {
	return review.State{
		Categories: []review.Category{},
		Subjects:   []review.Subject{{ID: "s1", Label: "subject1"}, {ID: "s2", Label: "subject2"}},
		Items: []review.Item{
			{ID: "i1", Label: "item1", Visible: true, SubjectID: "s1"},
			{ID: "i2", Label: "item2", Visible: true, SubjectID: "s2"},
		},
	}
}

var today = review.NewDate(2025, 6, 10)

func newDispatcher(t *testing.T, notifier Notifier) *Dispatcher {
	t.Helper()
	d, err := New(initialState(), notifier,
		WithClock(schedule.FixedClock(today)),
		WithIDGenerator(sequentialIDs("n")))
	require.NoError(t, err)
	return d
}

func TestDispatcher_Dispatch(t *testing.T) {
	tests := []struct {
		name    string
		cmd     Command
		check   func(t *testing.T, got review.State)
		wantErr error
	}{
		{
			name: "add under a subject",
			cmd:  Command{Type: TypeAdd, SubjectID: "s2"},
			check: func(t *testing.T, got review.State) {
				require.Len(t, got.Items, 3)
				assert.Equal(t, review.Item{ID: "n1", Label: review.DefaultItemLabel, Visible: true, SubjectID: "s2"}, got.Items[2])
			},
		},
		{
			name: "add subject",
			cmd:  Command{Type: TypeAddSubject},
			check: func(t *testing.T, got review.State) {
				require.Len(t, got.Subjects, 3)
				assert.Equal(t, review.Subject{ID: "n1", Label: review.DefaultSubjectLabel}, got.Subjects[2])
			},
		},
		{
			name: "remove subject cascades",
			cmd:  Command{Type: TypeRemove, ID: "s1"},
			check: func(t *testing.T, got review.State) {
				assert.Len(t, got.Subjects, 1)
				require.Len(t, got.Items, 1)
				assert.Equal(t, "i2", got.Items[0].ID)
			},
		},
		{
			name: "update item",
			cmd:  Command{Type: TypeUpdate, ID: "i2", Item: &review.ItemPatch{Label: ptr("renamed"), Visible: ptr(false)}},
			check: func(t *testing.T, got review.State) {
				assert.Equal(t, "renamed", got.Items[1].Label)
				assert.False(t, got.Items[1].Visible)
			},
		},
		{
			name: "update subject",
			cmd:  Command{Type: TypeUpdateSubject, ID: "s2", Subject: &review.SubjectPatch{Label: ptr("math")}},
			check: func(t *testing.T, got review.State) {
				assert.Equal(t, "math", got.Subjects[1].Label)
			},
		},
		{
			name: "move item",
			cmd:  Command{Type: TypeMove, ID: "i2", Index: ptr(0)},
			check: func(t *testing.T, got review.State) {
				assert.Equal(t, "i2", got.Items[0].ID)
			},
		},
		{
			name: "move subject",
			cmd:  Command{Type: TypeMoveSubject, ID: "s1", Index: ptr(5)},
			check: func(t *testing.T, got review.State) {
				assert.Equal(t, "s1", got.Subjects[1].ID)
			},
		},
		{
			name: "complete uses today",
			cmd:  Command{Type: TypeComplete, ID: "i1", NextInterval: 5},
			check: func(t *testing.T, got review.State) {
				assert.Equal(t, &review.RepetitionRecord{Interval: 5, LastCompletion: today}, got.Items[0].RepInfo)
			},
		},
		{
			name:    "unknown type",
			cmd:     Command{Type: "rename"},
			wantErr: review.ErrInvalidCommand,
		},
		{
			name:    "remove without id",
			cmd:     Command{Type: TypeRemove},
			wantErr: review.ErrInvalidCommand,
		},
		{
			name:    "update without patch",
			cmd:     Command{Type: TypeUpdate, ID: "i1"},
			wantErr: review.ErrInvalidCommand,
		},
		{
			name:    "move without index",
			cmd:     Command{Type: TypeMove, ID: "i1"},
			wantErr: review.ErrInvalidCommand,
		},
		{
			name:    "complete with zero interval",
			cmd:     Command{Type: TypeComplete, ID: "i1"},
			wantErr: review.ErrInvalidCommand,
		},
		{
			name:    "patch with invalid repetition record",
			cmd:     Command{Type: TypeUpdate, ID: "i1", Item: &review.ItemPatch{RepInfo: &review.RepetitionRecord{Interval: 0, LastCompletion: today}}},
			wantErr: review.ErrInvalidCommand,
		},
		{
			name:    "patch with a completion after today",
			cmd:     Command{Type: TypeUpdate, ID: "i1", Item: &review.ItemPatch{RepInfo: &review.RepetitionRecord{Interval: 5, LastCompletion: today.AddDays(30)}}},
			wantErr: review.ErrInvalidCommand,
		},
		{
			name: "patch with a completion on today",
			cmd:  Command{Type: TypeUpdate, ID: "i1", Item: &review.ItemPatch{RepInfo: &review.RepetitionRecord{Interval: 5, LastCompletion: today}}},
			check: func(t *testing.T, got review.State) {
				assert.Equal(t, &review.RepetitionRecord{Interval: 5, LastCompletion: today}, got.Items[0].RepInfo)
				assert.False(t, got.Validate(today).HasErrors())
			},
		},
		{
			name:    "update missing item",
			cmd:     Command{Type: TypeUpdate, ID: "nope", Item: &review.ItemPatch{Label: ptr("x")}},
			wantErr: review.ErrNotFound,
		},
		{
			name:    "complete a subject",
			cmd:     Command{Type: TypeComplete, ID: "s1", NextInterval: 3},
			wantErr: review.ErrItemNotFound,
		},
		{
			name:    "move missing subject",
			cmd:     Command{Type: TypeMoveSubject, ID: "i1", Index: ptr(0)},
			wantErr: review.ErrSubjectNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			notifier := mock_dispatch.NewMockNotifier(ctrl)
			d := newDispatcher(t, notifier)

			if tt.wantErr != nil {
				_, err := d.Dispatch(context.Background(), tt.cmd)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, initialState(), d.State(), "a rejected command leaves the state untouched")
				return
			}

			var notified review.State
			notifier.EXPECT().Notify(gomock.Any()).Do(func(state review.State) {
				notified = state
			}).Times(1)

			got, err := d.Dispatch(context.Background(), tt.cmd)
			require.NoError(t, err)
			tt.check(t, got)
			assert.Equal(t, got, d.State())
			assert.Equal(t, got, notified)
		})
	}
}

func TestDispatcher_RemoveMissingIsNoOp(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := mock_dispatch.NewMockNotifier(ctrl)
	notifier.EXPECT().Notify(initialState())

	d := newDispatcher(t, notifier)
	got, err := d.Dispatch(context.Background(), Command{Type: TypeRemove, ID: "missing"})
	require.NoError(t, err)
	assert.Equal(t, initialState(), got)
}

func TestDispatcher_InvalidCommandMessage(t *testing.T) {
	d := newDispatcher(t, nil)

	_, err := d.Dispatch(context.Background(), Command{Type: TypeComplete, ID: "i1", NextInterval: -2})
	require.Error(t, err)
	assert.Equal(t, "invalid command: complete: nextInterval must be 1 or greater", err.Error())
}

func TestDispatcher_ReturnedStateIsACopy(t *testing.T) {
	d := newDispatcher(t, nil)

	got, err := d.Dispatch(context.Background(), Command{Type: TypeComplete, ID: "i1", NextInterval: 2})
	require.NoError(t, err)
	got.Items[0].RepInfo.Interval = 99
	got.Items[1].Label = "changed"

	state := d.State()
	assert.Equal(t, 2, state.Items[0].RepInfo.Interval)
	assert.Equal(t, "item2", state.Items[1].Label)
}

func TestDispatcher_CanceledContext(t *testing.T) {
	d := newDispatcher(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Dispatch(ctx, Command{Type: TypeAddSubject})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, d.State().Subjects, 2)
}

func TestDispatcher_ConcurrentCommands(t *testing.T) {
	d, err := New(review.NewState(), nil, WithIDGenerator(sequentialIDs("x")))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := d.Dispatch(context.Background(), Command{Type: TypeAdd})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	ids := make(map[string]struct{})
	for _, item := range d.State().Items {
		ids[item.ID] = struct{}{}
	}
	assert.Len(t, ids, 50)
}

func TestDispatcher_Schedule(t *testing.T) {
	d := newDispatcher(t, nil)

	got, err := d.Schedule("i1")
	require.NoError(t, err)
	assert.Equal(t, Schedule{Remaining: nil, NextIntervals: [3]int{1, 3, 5}}, got)

	_, err = d.Dispatch(context.Background(), Command{Type: TypeComplete, ID: "i1", NextInterval: 10})
	require.NoError(t, err)

	got, err = d.Schedule("i1")
	require.NoError(t, err)
	assert.Equal(t, Schedule{Remaining: ptr(10), NextIntervals: [3]int{7, 10, 12}}, got)

	remaining, err := d.RemainingTime("i1")
	require.NoError(t, err)
	assert.Equal(t, schedule.Remaining{Days: 10, Scheduled: true}, remaining)

	next, err := d.NextIntervals("i1")
	require.NoError(t, err)
	assert.Equal(t, [3]int{7, 10, 12}, next)

	_, err = d.Schedule("s1")
	assert.ErrorIs(t, err, review.ErrNotFound)
	_, err = d.RemainingTime("nope")
	assert.ErrorIs(t, err, review.ErrNotFound)
	_, err = d.NextIntervals("nope")
	assert.ErrorIs(t, err, review.ErrNotFound)
}

func TestDispatcher_Replace(t *testing.T) {
	replacement := review.State{
		Categories: []review.Category{},
		Subjects:   []review.Subject{{ID: "s9", Label: "imported"}},
		Items:      []review.Item{{ID: "i9", Label: "x", SubjectID: "s9"}},
	}

	ctrl := gomock.NewController(t)
	notifier := mock_dispatch.NewMockNotifier(ctrl)
	notifier.EXPECT().Notify(replacement)

	d := newDispatcher(t, notifier)
	got, err := d.Replace(context.Background(), initialState(), replacement)
	require.NoError(t, err)
	assert.Equal(t, replacement, got)
	assert.Equal(t, replacement, d.State())

	invalid := review.State{Items: []review.Item{{ID: "dup"}, {ID: "dup"}}}
	_, err = d.Replace(context.Background(), replacement, invalid)
	assert.ErrorIs(t, err, review.ErrInvalidCommand)
	assert.Equal(t, replacement, d.State(), "a rejected state is not applied")
}

func TestDispatcher_Replace_StaleBase(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := mock_dispatch.NewMockNotifier(ctrl)
	notifier.EXPECT().Notify(gomock.Any()).Times(1)

	d := newDispatcher(t, notifier)
	base := d.State()

	// a command lands between reading the state and replacing it
	afterCommand, err := d.Dispatch(context.Background(), Command{Type: TypeAdd, SubjectID: "s1"})
	require.NoError(t, err)

	merged := base.AddSubject("s9")
	_, err = d.Replace(context.Background(), base, merged)
	assert.ErrorIs(t, err, review.ErrConflict)
	assert.Equal(t, afterCommand, d.State(), "the dispatched command is kept")
}

func TestDispatcher_Replace_NilAndEmptyListsAreEqual(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := mock_dispatch.NewMockNotifier(ctrl)
	notifier.EXPECT().Notify(gomock.Any()).Times(1)

	d, err := New(review.NewState(), notifier, WithClock(schedule.FixedClock(today)))
	require.NoError(t, err)

	_, err = d.Replace(context.Background(), review.State{}, review.NewState().AddSubject("s1"))
	assert.NoError(t, err)
}

func TestDecodeCommand(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    Command
		wantErr bool
	}{
		{
			name: "move",
			body: `{"type":"move","id":"i1","index":0}`,
			want: Command{Type: TypeMove, ID: "i1", Index: ptr(0)},
		},
		{
			name: "update with patch",
			body: `{"type":"update","id":"i1","item":{"label":"x","repInfo":{"interval":3,"lastCompletion":"2025-01-02"}}}`,
			want: Command{Type: TypeUpdate, ID: "i1", Item: &review.ItemPatch{
				Label:   ptr("x"),
				RepInfo: &review.RepetitionRecord{Interval: 3, LastCompletion: review.NewDate(2025, 1, 2)},
			}},
		},
		{
			name:    "unknown field",
			body:    `{"type":"add","color":"red"}`,
			wantErr: true,
		},
		{
			name:    "not json",
			body:    `type=add`,
			wantErr: true,
		},
		{
			name:    "empty",
			body:    ``,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeCommand(strings.NewReader(tt.body))
			if tt.wantErr {
				assert.ErrorIs(t, err, review.ErrInvalidCommand)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
