package habit

import (
	"testing"
	"time"
)

func inst(date string, completed bool) Instance {
	in := Instance{
		ID:        InstanceID(date, "h1"),
		HabitID:   "h1",
		UserID:    "u1",
		Date:      date,
		Completed: completed,
	}
	if completed {
		at := time.Now()
		in.CompletedAt = &at
	}
	return in
}

func TestCurrentStreak_Empty(t *testing.T) {
	if got := CurrentStreak(nil, "2025-06-10"); got != 0 {
		t.Fatalf("expected 0 streak for empty history, got %d", got)
	}
}

func TestCurrentStreak_FiveCompletedThenMiss(t *testing.T) {
	// Five consecutive completed days, the sixth (oldest) missed.
	instances := []Instance{
		inst("2025-06-04", false),
		inst("2025-06-05", true),
		inst("2025-06-06", true),
		inst("2025-06-07", true),
		inst("2025-06-08", true),
		inst("2025-06-09", true),
	}
	if got := CurrentStreak(instances, "2025-06-09"); got != 5 {
		t.Fatalf("expected streak 5, got %d", got)
	}
}

func TestCurrentStreak_NewestIncompleteNotToday(t *testing.T) {
	instances := []Instance{
		inst("2025-06-07", true),
		inst("2025-06-08", false),
	}
	if got := CurrentStreak(instances, "2025-06-10"); got != 0 {
		t.Fatalf("incomplete newest day in the past should break the streak, got %d", got)
	}
}

func TestCurrentStreak_TodayExempt(t *testing.T) {
	base := []Instance{
		inst("2025-06-08", true),
		inst("2025-06-09", true),
	}
	want := CurrentStreak(base, "2025-06-10")

	withToday := append(append([]Instance{}, base...), inst("2025-06-10", false))
	got := CurrentStreak(withToday, "2025-06-10")
	if got != want {
		t.Fatalf("an open instance for today must not affect the streak: got %d, want %d", got, want)
	}
	if got != 2 {
		t.Fatalf("expected streak 2, got %d", got)
	}
}

func TestCurrentStreak_TodayCompletedCounts(t *testing.T) {
	instances := []Instance{
		inst("2025-06-09", true),
		inst("2025-06-10", true),
	}
	if got := CurrentStreak(instances, "2025-06-10"); got != 2 {
		t.Fatalf("expected streak 2, got %d", got)
	}
}

func TestCurrentStreak_InputOrderIrrelevant(t *testing.T) {
	instances := []Instance{
		inst("2025-06-09", true),
		inst("2025-06-07", true),
		inst("2025-06-08", true),
		inst("2025-06-06", false),
	}
	if got := CurrentStreak(instances, "2025-06-09"); got != 3 {
		t.Fatalf("expected streak 3 regardless of input order, got %d", got)
	}
}

func TestStrengthScore_Empty(t *testing.T) {
	if got := StrengthScore(nil, "2025-06-10"); got != 0 {
		t.Fatalf("expected 0 for empty history, got %d", got)
	}
}

func TestStrengthScore_AllIncomplete(t *testing.T) {
	instances := []Instance{
		inst("2025-06-08", false),
		inst("2025-06-09", false),
	}
	if got := StrengthScore(instances, "2025-06-10"); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestStrengthScore_SaturatedStreak(t *testing.T) {
	// 25 consecutive completed days: completion rate 100, streak capped
	// at 21 so the bonus term is also 100.
	var instances []Instance
	day, _ := ParseDate("2025-05-16")
	for i := 0; i < 25; i++ {
		instances = append(instances, inst(FormatDate(day.AddDate(0, 0, i)), true))
	}
	if got := StrengthScore(instances, "2025-06-09"); got != 100 {
		t.Fatalf("expected saturated score 100, got %d", got)
	}
}

func TestStrengthScore_Blend(t *testing.T) {
	// 7 of 10 completed, current streak 7: rate 70, bonus 100*7/21.
	instances := []Instance{
		inst("2025-05-31", false),
		inst("2025-06-01", false),
		inst("2025-06-02", false),
		inst("2025-06-03", true),
		inst("2025-06-04", true),
		inst("2025-06-05", true),
		inst("2025-06-06", true),
		inst("2025-06-07", true),
		inst("2025-06-08", true),
		inst("2025-06-09", true),
	}
	// 70*0.7 + (100*7/21)*0.3 = 49 + 10 = 59
	if got := StrengthScore(instances, "2025-06-09"); got != 59 {
		t.Fatalf("expected 59, got %d", got)
	}
}
