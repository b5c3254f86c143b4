// Package aggregate derives the counts and time fields shown on list badges
// and filter chips.
//
// Everything here is a pure function of its inputs. Time-derived helpers
// take the current instant as a parameter so tests inject a fixed "now"
// instead of depending on the wall clock.
package aggregate

import (
	"fmt"
	"time"

	"skillbridge/exchange-service/internal/lifecycle"
	"skillbridge/exchange-service/internal/model"
)

// CountByStatus tallies responses per status for filter-chip labels. Every
// member of the set appears in the result, zero or not, plus a synthetic
// "all" key holding the total.
func CountByStatus(responses []model.Response, set lifecycle.StatusSet) map[string]int {
	counts := make(map[string]int, len(set.Members())+1)
	for _, st := range set.Members() {
		counts[string(st)] = 0
	}
	for _, r := range responses {
		counts[string(r.Status)]++
	}
	counts["all"] = len(responses)
	return counts
}

// DaysUntilDeadline returns the number of whole or partial days remaining
// until the deadline at the given instant, nil when no deadline is set.
// The result is negative once the deadline has passed.
func DaysUntilDeadline(deadline *time.Time, now time.Time) *int {
	if deadline == nil {
		return nil
	}
	remaining := deadline.Sub(now)
	days := int(remaining / (24 * time.Hour))
	if remaining > 0 && remaining%(24*time.Hour) != 0 {
		days++ // 1h left still reads "1 day"
	}
	return &days
}

// TimeAgo renders a stored instant as the relative label used on cards
// ("just now", "5 minutes ago", "2 days ago").
func TimeAgo(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute")
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour")
	case d < 7*24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day")
	case d < 30*24*time.Hour:
		return plural(int(d/(7*24*time.Hour)), "week")
	case d < 365*24*time.Hour:
		return plural(int(d/(30*24*time.Hour)), "month")
	default:
		return plural(int(d/(365*24*time.Hour)), "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
