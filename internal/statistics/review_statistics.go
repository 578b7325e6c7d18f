// Package statistics summarizes the review workload per subject and the reviews per month.
package statistics

import (
	"fmt"
	"sort"

	"github.com/at-ishikawa/revisit/internal/review"
	"github.com/at-ishikawa/revisit/internal/schedule"
)

// SubjectStatistics is the workload of one subject. An empty SubjectID stands for the
// items without an existing subject.
type SubjectStatistics struct {
	SubjectID     string
	Label         string
	Items         int
	Due           int
	Upcoming      int
	NeverReviewed int
	// AverageInterval is the mean interval of the reviewed items, in days
	AverageInterval float64
}

// PeriodStatistics counts the items last reviewed in a month ("2025-01").
type PeriodStatistics struct {
	Period   string
	Reviewed int
}

// StatisticsResult holds per-subject workload, totals and per-month reviews, newest month first.
type StatisticsResult struct {
	Subjects []SubjectStatistics
	Total    SubjectStatistics
	Periods  []PeriodStatistics
}

type accumulator struct {
	stats         SubjectStatistics
	intervalTotal int
}

func (a *accumulator) add(item review.Item, today review.Date) {
	a.stats.Items++
	remaining := schedule.RemainingTime(item, today)
	switch {
	case !remaining.Scheduled:
		a.stats.NeverReviewed++
		return
	case remaining.Days <= 0:
		a.stats.Due++
	default:
		a.stats.Upcoming++
	}
	a.intervalTotal += item.RepInfo.Interval
}

func (a *accumulator) result() SubjectStatistics {
	if reviewed := a.stats.Due + a.stats.Upcoming; reviewed > 0 {
		a.stats.AverageInterval = float64(a.intervalTotal) / float64(reviewed)
	}
	return a.stats
}

// CalculateStatistics summarizes state as of today.
// year and month filter the per-month reviews only; 0 means no filter.
func CalculateStatistics(state review.State, today review.Date, year, month int) StatisticsResult {
	bySubject := make(map[string]*accumulator, len(state.Subjects))
	order := make([]*accumulator, 0, len(state.Subjects)+1)
	for _, subject := range state.Subjects {
		acc := &accumulator{stats: SubjectStatistics{SubjectID: subject.ID, Label: subject.Label}}
		bySubject[subject.ID] = acc
		order = append(order, acc)
	}
	unassigned := &accumulator{}
	total := &accumulator{}
	periods := make(map[string]int)

	for _, item := range state.Items {
		acc, ok := bySubject[item.SubjectID]
		if !ok {
			acc = unassigned
		}
		acc.add(item, today)
		total.add(item, today)

		if item.RepInfo == nil {
			continue
		}
		completed := item.RepInfo.LastCompletion
		if !matchesFilter(completed.Year(), int(completed.Month()), year, month) {
			continue
		}
		periods[fmt.Sprintf("%d-%02d", completed.Year(), int(completed.Month()))]++
	}
	if unassigned.stats.Items > 0 {
		order = append(order, unassigned)
	}

	result := StatisticsResult{
		Subjects: make([]SubjectStatistics, 0, len(order)),
		Total:    total.result(),
		Periods:  make([]PeriodStatistics, 0, len(periods)),
	}
	for _, acc := range order {
		result.Subjects = append(result.Subjects, acc.result())
	}
	for period, count := range periods {
		result.Periods = append(result.Periods, PeriodStatistics{Period: period, Reviewed: count})
	}
	sort.Slice(result.Periods, func(i, j int) bool {
		return result.Periods[i].Period > result.Periods[j].Period
	})
	return result
}

func matchesFilter(logYear, logMonth, filterYear, filterMonth int) bool {
	if filterYear == 0 {
		return true
	}
	if logYear != filterYear {
		return false
	}
	if filterMonth == 0 {
		return true
	}
	return logMonth == filterMonth
}
