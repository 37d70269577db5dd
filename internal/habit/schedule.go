package habit

import (
	"math/rand"
	"time"
)

// backfillCompletionRate is the chance a seeded past instance is marked
// completed when a RNG is supplied to SeedHistory.
const backfillCompletionRate = 0.7

// DueOn filters habits to those whose schedule matches the date's
// weekday classification.
func DueOn(date time.Time, habits []Habit) []Habit {
	var due []Habit
	for _, h := range habits {
		if dueOn(h, date) {
			due = append(due, h)
		}
	}
	return due
}

func dueOn(h Habit, date time.Time) bool {
	switch h.Schedule {
	case ScheduleDaily:
		return true
	case ScheduleWeekdays:
		return !IsWeekend(date)
	case ScheduleWeekends:
		return IsWeekend(date)
	default:
		// CUSTOM and anything unrecognized fail open.
		return true
	}
}

// EnsureInstances returns the instances missing from existing for every
// (date, due habit) pair. Re-invoking with a partially populated
// existing set yields exactly the missing subset, so callers can retry
// freely and persist only deltas.
func EnsureInstances(dates []string, habits []Habit, existing []Instance) []Instance {
	seen := make(map[string]struct{}, len(existing))
	for _, in := range existing {
		seen[in.ID] = struct{}{}
	}

	var created []Instance
	for _, d := range dates {
		date, err := ParseDate(d)
		if err != nil {
			continue
		}
		for _, h := range DueOn(date, habits) {
			id := InstanceID(d, h.ID)
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			created = append(created, Instance{
				ID:      id,
				HabitID: h.ID,
				UserID:  h.UserID,
				Date:    d,
				// Completed stays false, no timestamp until toggled.
			})
		}
	}
	return created
}

// SeedHistory materializes instances for the inclusive window
// [today+fromOffset, today+toOffset], skipping pairs already present in
// existing. When rng is non-nil, past instances are stochastically
// marked completed to give a realistic backfill; with a nil rng the
// result is fully deterministic and every instance starts incomplete.
func SeedHistory(habits []Habit, existing []Instance, fromOffset, toOffset int, today time.Time, rng *rand.Rand) []Instance {
	dates := OffsetDates(today, fromOffset, toOffset)
	created := EnsureInstances(dates, habits, existing)
	if rng == nil {
		return created
	}

	todayStr := FormatDate(today)
	for i := range created {
		if created[i].Date >= todayStr {
			continue
		}
		if rng.Float64() < backfillCompletionRate {
			date, err := ParseDate(created[i].Date)
			if err != nil {
				continue
			}
			at := date.Add(12 * time.Hour)
			created[i].Completed = true
			created[i].CompletedAt = &at
		}
	}
	return created
}
