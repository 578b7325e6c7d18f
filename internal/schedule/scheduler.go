// Package schedule derives due dates and next-interval choices from an item's repetition record.
package schedule

import (
	"math"
	"sort"

	"github.com/at-ishikawa/revisit/internal/review"
)

const (
	// OverdueGrowth is the interval multiplier for an item reviewed once it is fully due.
	OverdueGrowth = 2.5

	SoonerFactor  = 0.7
	FormulaFactor = 1.0
	LaterFactor   = 1.2
)

// BootstrapIntervals are offered for an item that was never reviewed.
var BootstrapIntervals = [3]int{1, 3, 5}

// Remaining is the number of days until an item is due.
// Scheduled is false for an item that was never reviewed; Days is meaningless then.
type Remaining struct {
	Days      int
	Scheduled bool
}

// RemainingTime returns interval minus the days elapsed since the last completion.
// The result is negative for an overdue item.
func RemainingTime(item review.Item, today review.Date) Remaining {
	if item.RepInfo == nil {
		return Remaining{}
	}
	elapsed := today.DaysSince(item.RepInfo.LastCompletion)
	return Remaining{
		Days:      item.RepInfo.Interval - elapsed,
		Scheduled: true,
	}
}

// Progress is the fraction of the interval elapsed since the last completion, clamped to [0, 1].
func Progress(rec review.RepetitionRecord, today review.Date) float64 {
	if rec.Interval <= 0 {
		return 1
	}
	elapsed := float64(today.DaysSince(rec.LastCompletion))
	return math.Max(0, math.Min(elapsed/float64(rec.Interval), 1))
}

// NextIntervals returns the sooner, on-formula and later choices for the next interval.
// The growth multiplier moves linearly from 1 for an early review to OverdueGrowth for a
// review at or past the due day.
func NextIntervals(item review.Item, today review.Date) [3]int {
	if item.RepInfo == nil {
		return BootstrapIntervals
	}
	progress := Progress(*item.RepInfo, today)
	nextBase := float64(item.RepInfo.Interval) * (1 - progress + progress*OverdueGrowth)

	return [3]int{
		ceilDays(nextBase * SoonerFactor),
		ceilDays(nextBase * FormulaFactor),
		ceilDays(nextBase * LaterFactor),
	}
}

// IsDue reports whether a scheduled item has no days left.
func IsDue(item review.Item, today review.Date) bool {
	remaining := RemainingTime(item, today)
	return remaining.Scheduled && remaining.Days <= 0
}

// SortByDue orders items by remaining days. Unscheduled items go last either way,
// and ties keep the stored order.
func SortByDue(items []review.Item, today review.Date, ascending bool) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := RemainingTime(items[i], today), RemainingTime(items[j], today)
		if a.Scheduled != b.Scheduled {
			return a.Scheduled
		}
		if ascending {
			return a.Days < b.Days
		}
		return a.Days > b.Days
	})
}

// ceilDays rounds up, ignoring float noise such as 30.000000000000004, and never goes below one day.
func ceilDays(v float64) int {
	return max(1, int(math.Ceil(v-1e-9)))
}
