// Package dispatch applies commands to the review state and answers schedule queries.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/at-ishikawa/revisit/internal/review"
	"github.com/at-ishikawa/revisit/internal/schedule"
)

//go:generate mockgen -source=dispatcher.go -destination=../mocks/dispatch/mock_notifier.go -package=mock_dispatch

// Notifier is told about every new state. persistence.Gateway implements it.
type Notifier interface {
	Notify(state review.State)
}

// Dispatcher owns the current state. Commands are applied one at a time.
type Dispatcher struct {
	mu       sync.Mutex
	state    review.State
	notifier Notifier
	clock    schedule.Clock
	newID    review.IDGenerator
	checker  *commandValidator
	logger   *slog.Logger
}

type Option func(*Dispatcher)

func WithClock(clock schedule.Clock) Option {
	return func(d *Dispatcher) {
		d.clock = clock
	}
}

func WithIDGenerator(newID review.IDGenerator) Option {
	return func(d *Dispatcher) {
		d.newID = newID
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// New returns a dispatcher starting from initial. notifier may be nil.
func New(initial review.State, notifier Notifier, opts ...Option) (*Dispatcher, error) {
	checker, err := newCommandValidator()
	if err != nil {
		return nil, err
	}
	d := &Dispatcher{
		state:    initial.Clone(),
		notifier: notifier,
		clock:    schedule.SystemClock{},
		newID:    review.NewID,
		checker:  checker,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With("component", "dispatch")
	return d, nil
}

// Dispatch validates and applies cmd. On success the new state is handed to the notifier
// and a copy of it is returned. On failure the state is unchanged.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) (review.State, error) {
	if err := ctx.Err(); err != nil {
		return review.State{}, err
	}
	if err := d.checker.check(cmd); err != nil {
		return review.State{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	next, err := d.apply(cmd)
	if err != nil {
		d.logger.Debug("command rejected", "type", cmd.Type, "id", cmd.ID, "error", err)
		return review.State{}, err
	}
	d.state = next
	d.logger.Debug("command applied", "type", cmd.Type, "id", cmd.ID)

	if d.notifier != nil {
		d.notifier.Notify(next.Clone())
	}
	return next.Clone(), nil
}

func (d *Dispatcher) apply(cmd Command) (review.State, error) {
	switch cmd.Type {
	case TypeAdd:
		return d.state.AddItem(d.newID(), cmd.SubjectID), nil
	case TypeAddSubject:
		return d.state.AddSubject(d.newID()), nil
	case TypeRemove:
		return d.state.Remove(cmd.ID), nil
	case TypeUpdate:
		if rep := cmd.Item.RepInfo; rep != nil && rep.LastCompletion.After(d.clock.Today()) {
			return review.State{}, fmt.Errorf("%w: last completion %s is after today %s",
				review.ErrInvalidCommand, rep.LastCompletion, d.clock.Today())
		}
		return d.state.UpdateItem(cmd.ID, *cmd.Item)
	case TypeUpdateSubject:
		return d.state.UpdateSubject(cmd.ID, *cmd.Subject)
	case TypeMove:
		return d.state.MoveItem(cmd.ID, *cmd.Index)
	case TypeMoveSubject:
		return d.state.MoveSubject(cmd.ID, *cmd.Index)
	case TypeComplete:
		return d.state.Complete(cmd.ID, cmd.NextInterval, d.clock.Today())
	default:
		return review.State{}, fmt.Errorf("%w: unknown command type %q", review.ErrInvalidCommand, cmd.Type)
	}
}

// State returns a copy of the current state.
func (d *Dispatcher) State() review.State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.Clone()
}

// Today returns the day used for completions and schedule queries.
func (d *Dispatcher) Today() review.Date {
	return d.clock.Today()
}

func (d *Dispatcher) findItem(id string) (review.Item, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.FindItem(id)
}

func (d *Dispatcher) RemainingTime(id string) (schedule.Remaining, error) {
	item, err := d.findItem(id)
	if err != nil {
		return schedule.Remaining{}, err
	}
	return schedule.RemainingTime(item, d.clock.Today()), nil
}

func (d *Dispatcher) NextIntervals(id string) ([3]int, error) {
	item, err := d.findItem(id)
	if err != nil {
		return [3]int{}, err
	}
	return schedule.NextIntervals(item, d.clock.Today()), nil
}

// Schedule is the answer to a schedule query. Remaining is nil when the item was never reviewed.
type Schedule struct {
	Remaining     *int   `json:"remaining"`
	NextIntervals [3]int `json:"nextIntervals"`
}

func (d *Dispatcher) Schedule(id string) (Schedule, error) {
	item, err := d.findItem(id)
	if err != nil {
		return Schedule{}, err
	}
	today := d.clock.Today()
	result := Schedule{NextIntervals: schedule.NextIntervals(item, today)}
	if remaining := schedule.RemainingTime(item, today); remaining.Scheduled {
		days := remaining.Days
		result.Remaining = &days
	}
	return result, nil
}

// Replace swaps in a whole state, such as one merged from an import, as long as the current
// state still equals base, the state it was prepared from. Otherwise it fails with
// review.ErrConflict. A state with validation errors is rejected. In both cases the current
// state is kept.
func (d *Dispatcher) Replace(ctx context.Context, base, state review.State) (review.State, error) {
	if err := ctx.Err(); err != nil {
		return review.State{}, err
	}
	if result := state.Validate(d.clock.Today()); result.HasErrors() {
		return review.State{}, fmt.Errorf("%w: %s", review.ErrInvalidCommand, result.Errors[0])
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if !cmp.Equal(d.state, base, cmpopts.EquateEmpty()) {
		d.logger.Debug("state replacement rejected", "reason", "changed since read")
		return review.State{}, fmt.Errorf("%w: the state changed after it was read", review.ErrConflict)
	}
	d.state = state.Clone()
	d.logger.Debug("state replaced", "items", len(state.Items), "subjects", len(state.Subjects))
	if d.notifier != nil {
		d.notifier.Notify(state.Clone())
	}
	return state.Clone(), nil
}
