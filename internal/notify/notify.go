package notify

import (
	"context"
	"fmt"
	"log"

	"mycore/internal/habit"
)

// Notifier is the delivery collaborator. Callers treat every method as
// best-effort: a failed notification must never block or fail the data
// write that triggered it.
type Notifier interface {
	Send(ctx context.Context, title, body string) error
	ReminderForHabits(ctx context.Context, habits []habit.Habit, todays []habit.Instance) error
	StreakCongratulation(ctx context.Context, name string, streak int) error
	CompletionCongratulation(ctx context.Context) error
}

// Log writes notifications to the process log. Stands in for a real
// push/web-push channel.
type Log struct{}

func (Log) Send(_ context.Context, title, body string) error {
	log.Printf("[NOTIFY] %s: %s\n", title, body)
	return nil
}

func (l Log) ReminderForHabits(ctx context.Context, habits []habit.Habit, todays []habit.Instance) error {
	done := make(map[string]bool, len(todays))
	for _, in := range todays {
		if in.Completed {
			done[in.HabitID] = true
		}
	}
	pending := 0
	for _, h := range habits {
		if !done[h.ID] {
			pending++
		}
	}
	if pending == 0 {
		return nil
	}
	return l.Send(ctx, "Habit reminder", fmt.Sprintf("%d habit(s) still open today", pending))
}

func (l Log) StreakCongratulation(ctx context.Context, name string, streak int) error {
	return l.Send(ctx, "Streak!", fmt.Sprintf("%s, you're on a %d-day streak. Keep it up!", name, streak))
}

func (l Log) CompletionCongratulation(ctx context.Context) error {
	return l.Send(ctx, "All done", "Every habit for today is complete")
}
