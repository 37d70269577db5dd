package habit

import (
	"math/rand"
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

func TestDueOn_Saturday(t *testing.T) {
	habits := []Habit{
		{ID: "h1", UserID: "u1", Schedule: ScheduleDaily},
		{ID: "h2", UserID: "u1", Schedule: ScheduleWeekdays},
	}
	sat := mustDate(t, "2025-01-04") // Saturday

	due := DueOn(sat, habits)
	if len(due) != 1 || due[0].ID != "h1" {
		t.Fatalf("expected only the daily habit due on Saturday, got %+v", due)
	}
}

func TestDueOn_Rules(t *testing.T) {
	mon := mustDate(t, "2025-01-06")
	sun := mustDate(t, "2025-01-05")

	cases := []struct {
		schedule Schedule
		date     time.Time
		due      bool
	}{
		{ScheduleDaily, mon, true},
		{ScheduleDaily, sun, true},
		{ScheduleWeekdays, mon, true},
		{ScheduleWeekdays, sun, false},
		{ScheduleWeekends, mon, false},
		{ScheduleWeekends, sun, true},
		{ScheduleCustom, mon, true},
		{Schedule("SOMETHING_NEW"), sun, true}, // unrecognized rules fail open
	}
	for _, tc := range cases {
		h := Habit{ID: "h", Schedule: tc.schedule}
		got := len(DueOn(tc.date, []Habit{h})) == 1
		if got != tc.due {
			t.Errorf("schedule %s on %s: due=%v, want %v", tc.schedule, FormatDate(tc.date), got, tc.due)
		}
	}
}

func TestEnsureInstances_CreatesMissing(t *testing.T) {
	habits := []Habit{
		{ID: "h1", UserID: "u1", Schedule: ScheduleDaily},
		{ID: "h2", UserID: "u1", Schedule: ScheduleWeekdays},
	}
	dates := []string{"2025-01-03", "2025-01-04"} // Friday, Saturday

	created := EnsureInstances(dates, habits, nil)
	if len(created) != 3 {
		t.Fatalf("expected 3 instances (2 Friday + 1 Saturday), got %d", len(created))
	}
	for _, in := range created {
		if in.Completed || in.CompletedAt != nil {
			t.Errorf("new instance %s must start incomplete without timestamp", in.ID)
		}
		if in.ID != InstanceID(in.Date, in.HabitID) {
			t.Errorf("instance id %q not derived from (date, habit)", in.ID)
		}
	}
}

func TestEnsureInstances_Idempotent(t *testing.T) {
	habits := []Habit{{ID: "h1", UserID: "u1", Schedule: ScheduleDaily}}
	dates := []string{"2025-01-01", "2025-01-02", "2025-01-03"}

	first := EnsureInstances(dates, habits, nil)
	if len(first) != 3 {
		t.Fatalf("expected 3 created, got %d", len(first))
	}

	second := EnsureInstances(dates, habits, first)
	if len(second) != 0 {
		t.Fatalf("re-invocation with the previous output as existing must create nothing, got %d", len(second))
	}

	// Partially populated existing set: exactly the gap is filled.
	third := EnsureInstances(dates, habits, first[:1])
	if len(third) != 2 {
		t.Fatalf("expected exactly the missing 2 instances, got %d", len(third))
	}
}

func TestEnsureInstances_SkipsBadDates(t *testing.T) {
	habits := []Habit{{ID: "h1", Schedule: ScheduleDaily}}
	created := EnsureInstances([]string{"not-a-date", "2025-01-02"}, habits, nil)
	if len(created) != 1 || created[0].Date != "2025-01-02" {
		t.Fatalf("malformed dates should be skipped, got %+v", created)
	}
}

func TestSeedHistory_DeterministicWithoutRNG(t *testing.T) {
	habits := []Habit{{ID: "h1", UserID: "u1", Schedule: ScheduleDaily}}
	today := mustDate(t, "2025-06-10")

	seeded := SeedHistory(habits, nil, -14, 3, today, nil)
	if len(seeded) != 18 {
		t.Fatalf("expected 18 instances for the [-14, +3] window, got %d", len(seeded))
	}
	for _, in := range seeded {
		if in.Completed {
			t.Fatalf("nil RNG must seed every instance incomplete, %s was completed", in.ID)
		}
	}
	if seeded[0].Date != "2025-05-27" || seeded[len(seeded)-1].Date != "2025-06-13" {
		t.Fatalf("unexpected window bounds: %s .. %s", seeded[0].Date, seeded[len(seeded)-1].Date)
	}
}

func TestSeedHistory_SkipsExisting(t *testing.T) {
	habits := []Habit{{ID: "h1", UserID: "u1", Schedule: ScheduleDaily}}
	today := mustDate(t, "2025-06-10")

	first := SeedHistory(habits, nil, -2, 0, today, nil)
	again := SeedHistory(habits, first, -2, 0, today, nil)
	if len(again) != 0 {
		t.Fatalf("dates that already have instances must be skipped, got %d new", len(again))
	}
}

func TestSeedHistory_BackfillOnlyPastDates(t *testing.T) {
	habits := []Habit{{ID: "h1", UserID: "u1", Schedule: ScheduleDaily}}
	today := mustDate(t, "2025-06-10")
	rng := rand.New(rand.NewSource(1))

	seeded := SeedHistory(habits, nil, -14, 3, today, rng)

	todayStr := FormatDate(today)
	sawCompleted := false
	for _, in := range seeded {
		if in.Date >= todayStr && in.Completed {
			t.Fatalf("backfill must never complete today or future dates, %s was completed", in.ID)
		}
		if in.Completed {
			sawCompleted = true
			if in.CompletedAt == nil {
				t.Fatalf("completed backfill %s missing timestamp", in.ID)
			}
		}
	}
	if !sawCompleted {
		t.Fatal("seeded RNG should have completed at least one past instance")
	}
}

func TestSeedHistory_Reproducible(t *testing.T) {
	habits := []Habit{{ID: "h1", UserID: "u1", Schedule: ScheduleDaily}}
	today := mustDate(t, "2025-06-10")

	a := SeedHistory(habits, nil, -14, 0, today, rand.New(rand.NewSource(42)))
	b := SeedHistory(habits, nil, -14, 0, today, rand.New(rand.NewSource(42)))
	if len(a) != len(b) {
		t.Fatalf("length mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Completed != b[i].Completed {
			t.Fatalf("same seed must reproduce the same backfill, diverged at %s", a[i].ID)
		}
	}
}
