package client

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/revisit/internal/dispatch"
	"github.com/at-ishikawa/revisit/internal/review"
	"github.com/at-ishikawa/revisit/internal/schedule"
	"github.com/at-ishikawa/revisit/internal/server"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	initial := review.NewState().AddSubject("s1").AddItem("i1", "s1")
	d, err := dispatch.New(initial, nil,
		dispatch.WithClock(schedule.FixedClock(review.NewDate(2025, 6, 10))),
		dispatch.WithIDGenerator(func() string { return "generated" }))
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ts := httptest.NewServer(server.NewReviewHandler(d, logger).Routes(nil))
	t.Cleanup(ts.Close)
	return ts
}

func TestClient(t *testing.T) {
	ts := newTestServer(t)
	client := NewClient(ts.URL)
	defer client.Close()
	ctx := context.Background()

	state, err := client.State(ctx)
	require.NoError(t, err)
	require.Len(t, state.Items, 1)

	state, err = client.Dispatch(ctx, dispatch.Command{Type: dispatch.TypeAdd, SubjectID: "s1"})
	require.NoError(t, err)
	require.Len(t, state.Items, 2)
	assert.Equal(t, "generated", state.Items[1].ID)

	state, err = client.Dispatch(ctx, dispatch.Command{Type: dispatch.TypeComplete, ID: "i1", NextInterval: 10})
	require.NoError(t, err)
	assert.Equal(t, &review.RepetitionRecord{Interval: 10, LastCompletion: review.NewDate(2025, 6, 10)}, state.Items[0].RepInfo)

	got, err := client.Schedule(ctx, "i1")
	require.NoError(t, err)
	require.NotNil(t, got.Remaining)
	assert.Equal(t, 10, *got.Remaining)
	assert.Equal(t, [3]int{7, 10, 12}, got.NextIntervals)

	replacement := review.State{
		Categories: []review.Category{},
		Subjects:   []review.Subject{{ID: "s2", Label: "imported"}},
		Items:      []review.Item{{ID: "i2", Label: "imported item", Visible: true, SubjectID: "s2"}},
	}
	base, err := client.State(ctx)
	require.NoError(t, err)
	state, err = client.Replace(ctx, base, replacement)
	require.NoError(t, err)
	assert.Equal(t, replacement, state)

	_, err = client.Replace(ctx, replacement, review.State{Items: []review.Item{{ID: ""}}})
	assert.ErrorIs(t, err, review.ErrInvalidCommand)

	_, err = client.Replace(ctx, base, review.NewState())
	assert.ErrorIs(t, err, review.ErrConflict)
}

func TestClient_Errors(t *testing.T) {
	ts := newTestServer(t)
	client := NewClient(ts.URL)
	defer client.Close()
	ctx := context.Background()

	_, err := client.Dispatch(ctx, dispatch.Command{Type: dispatch.TypeComplete, ID: "i1"})
	assert.ErrorIs(t, err, review.ErrInvalidCommand)
	assert.ErrorContains(t, err, "nextInterval must be 1 or greater")

	_, err = client.Dispatch(ctx, dispatch.Command{Type: dispatch.TypeRemove})
	assert.ErrorIs(t, err, review.ErrInvalidCommand)

	_, err = client.Schedule(ctx, "missing")
	assert.ErrorIs(t, err, review.ErrNotFound)

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer broken.Close()
	_, err = NewClient(broken.URL).State(ctx)
	assert.ErrorContains(t, err, "response error 502")
}
