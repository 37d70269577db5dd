package habit

import (
	"math"
	"sort"
)

// Design constants for the strength score: completion rate and streak
// momentum blend 70/30, with streaks capped at 21 days so a long streak
// alone cannot saturate the score.
const (
	streakCap    = 21
	rateWeight   = 0.7
	streakWeight = 0.3
)

// UpTo filters instances to those dated on or before the given day.
// Derived metrics use it so pre-materialized future instances cannot
// break a streak or dilute the completion rate.
func UpTo(instances []Instance, today string) []Instance {
	var out []Instance
	for _, in := range instances {
		if in.Date <= today {
			out = append(out, in)
		}
	}
	return out
}

// CurrentStreak counts consecutive completed days walking backward from
// the newest instance. An incomplete instance dated today is skipped
// rather than breaking the streak: an outstanding instance for today
// must not zero out yesterday's run.
func CurrentStreak(instances []Instance, today string) int {
	sorted := make([]Instance, len(instances))
	copy(sorted, instances)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date > sorted[j].Date
	})

	streak := 0
	for _, in := range sorted {
		if in.Completed {
			streak++
			continue
		}
		if in.Date == today {
			continue
		}
		break
	}
	return streak
}

// StrengthScore blends historical completion rate with capped streak
// momentum into a 0-100 score. An empty history scores 0.
func StrengthScore(instances []Instance, today string) int {
	total := len(instances)
	if total == 0 {
		return 0
	}

	completed := 0
	for _, in := range instances {
		if in.Completed {
			completed++
		}
	}
	rate := 100 * float64(completed) / float64(total)

	streak := CurrentStreak(instances, today)
	if streak > streakCap {
		streak = streakCap
	}
	bonus := 100 * float64(streak) / streakCap

	return int(math.Round(rate*rateWeight + bonus*streakWeight))
}
