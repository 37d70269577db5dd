package habit

import (
	"testing"
	"time"
)

func TestWeekDates_SundayFirst(t *testing.T) {
	wed := mustDate(t, "2025-01-08") // Wednesday
	week := WeekDates(wed)
	if len(week) != 7 {
		t.Fatalf("expected 7 dates, got %d", len(week))
	}
	if week[0] != "2025-01-05" || week[6] != "2025-01-11" {
		t.Fatalf("expected Sunday..Saturday window, got %s .. %s", week[0], week[6])
	}

	// Anchoring on the Sunday itself returns the same window.
	sun := mustDate(t, "2025-01-05")
	if got := WeekDates(sun); got[0] != week[0] || got[6] != week[6] {
		t.Fatalf("window should be stable across the week, got %v", got)
	}
}

func TestIsWeekend(t *testing.T) {
	cases := map[string]bool{
		"2025-01-04": true,  // Saturday
		"2025-01-05": true,  // Sunday
		"2025-01-06": false, // Monday
		"2025-01-10": false, // Friday
	}
	for date, want := range cases {
		if got := IsWeekend(mustDate(t, date)); got != want {
			t.Errorf("IsWeekend(%s) = %v, want %v", date, got, want)
		}
	}
}

func TestOffsetDates(t *testing.T) {
	today := mustDate(t, "2025-06-10")
	dates := OffsetDates(today, -2, 1)
	want := []string{"2025-06-08", "2025-06-09", "2025-06-10", "2025-06-11"}
	if len(dates) != len(want) {
		t.Fatalf("expected %d dates, got %d", len(want), len(dates))
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Fatalf("dates[%d] = %s, want %s", i, dates[i], want[i])
		}
	}

	if got := OffsetDates(today, 1, -1); got != nil {
		t.Fatalf("inverted range should be empty, got %v", got)
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	d := time.Date(2025, 6, 10, 15, 4, 5, 0, time.UTC)
	s := FormatDate(d)
	if s != "2025-06-10" {
		t.Fatalf("unexpected format %q", s)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	if FormatDate(parsed) != s {
		t.Fatalf("round trip changed the date: %s", FormatDate(parsed))
	}
}
