package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"mycore/internal/notify"
	"mycore/internal/store"
)

// Reminder polls for due task reminders and dispatches them through
// the notifier. Dispatch failures are logged and retried on the next
// tick; a reminder is marked sent only after delivery succeeded.
type Reminder struct {
	Store    *store.Store
	Notifier notify.Notifier
	Interval time.Duration
}

func (w *Reminder) Run(ctx context.Context) {
	interval := w.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *Reminder) tick(ctx context.Context) {
	due, err := w.Store.DueReminders(ctx, time.Now())
	if err != nil {
		log.Printf("reminder scan error: %v\n", err)
		return
	}

	for _, t := range due {
		body := t.Title
		if t.DueAt != nil {
			body = fmt.Sprintf("%s (due %s)", t.Title, t.DueAt.Format("Jan 2 15:04"))
		}
		if err := w.Notifier.Send(ctx, "Task reminder", body); err != nil {
			log.Printf("reminder dispatch error: %v\n", err)
			continue
		}
		if err := w.Store.MarkReminderSent(ctx, t.UserID, t.ID); err != nil {
			log.Printf("reminder mark error: %v\n", err)
		}
	}
}
