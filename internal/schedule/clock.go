package schedule

import (
	"time"

	"github.com/at-ishikawa/revisit/internal/review"
)

// Clock supplies the current calendar day.
type Clock interface {
	Today() review.Date
}

// SystemClock reads the wall clock in Location, or in the local time zone when it is nil.
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Today() review.Date {
	now := time.Now()
	if c.Location != nil {
		now = now.In(c.Location)
	}
	return review.DateOf(now)
}

// FixedClock always returns the same day.
type FixedClock review.Date

func (c FixedClock) Today() review.Date {
	return review.Date(c)
}
