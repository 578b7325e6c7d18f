package cli

import (
	"fmt"
	"math"

	"github.com/at-ishikawa/revisit/internal/schedule"
)

// FormatRemainingTime renders days until due in the largest fitting unit: 3d, 2w, 5m or 1y.
// An item that was never reviewed renders as an empty string.
func FormatRemainingTime(remaining schedule.Remaining) string {
	if !remaining.Scheduled {
		return ""
	}
	days := remaining.Days
	switch {
	case days >= 300:
		return fmt.Sprintf("%dy", int(math.Round(float64(days)/365)))
	case days >= 30:
		return fmt.Sprintf("%dm", days/30)
	case days >= 7:
		return fmt.Sprintf("%dw", days/7)
	default:
		return fmt.Sprintf("%dd", days)
	}
}
