package habit

import "time"

const DateFormat = "2006-01-02"

func FormatDate(t time.Time) string {
	return t.Format(DateFormat)
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateFormat, s)
}

// WeekDates returns the seven dates of the calendar week containing
// anchor, Sunday first.
func WeekDates(anchor time.Time) []string {
	sunday := anchor.AddDate(0, 0, -int(anchor.Weekday()))
	dates := make([]string, 7)
	for i := range dates {
		dates[i] = FormatDate(sunday.AddDate(0, 0, i))
	}
	return dates
}

// OffsetDates returns the inclusive date range [today+from, today+to].
func OffsetDates(today time.Time, from, to int) []string {
	if to < from {
		return nil
	}
	dates := make([]string, 0, to-from+1)
	for d := from; d <= to; d++ {
		dates = append(dates, FormatDate(today.AddDate(0, 0, d)))
	}
	return dates
}

// IsWeekend reports whether the date falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func DayName(t time.Time) string {
	return t.Weekday().String()
}
