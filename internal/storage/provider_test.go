package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"mycore/internal/habit"
)

// Both local backends must satisfy the same contract; Postgres shares
// the code path shape but needs a running server, so it is exercised
// in deployment, not here.
func testProviders(t *testing.T) map[string]Provider {
	t.Helper()

	sqlite, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]Provider{
		"memory": NewMemory(),
		"sqlite": sqlite,
	}
}

func TestProviderContract(t *testing.T) {
	for name, p := range testProviders(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

			u := habit.User{
				ID:        "u1",
				Email:     "ada@example.com",
				Name:      "Ada",
				Interests: []string{habit.CategoryHealth},
				CreatedAt: now,
			}
			u.PasswordHash = "hash"
			if err := p.PutUser(ctx, u); err != nil {
				t.Fatal(err)
			}

			byEmail, err := p.UserByEmail(ctx, "ada@example.com")
			if err != nil {
				t.Fatal(err)
			}
			if byEmail.ID != "u1" || len(byEmail.Interests) != 1 {
				t.Fatalf("unexpected user %+v", byEmail)
			}

			if _, err := p.UserByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("missing user must be ErrNotFound, got %v", err)
			}

			// Upsert: same id, changed fields.
			u.Onboarded = true
			if err := p.PutUser(ctx, u); err != nil {
				t.Fatal(err)
			}
			byID, _ := p.UserByID(ctx, "u1")
			if !byID.Onboarded {
				t.Fatal("user upsert did not apply")
			}

			h := habit.Habit{ID: "h1", UserID: "u1", Name: "Read", Schedule: habit.ScheduleDaily, CreatedAt: now}
			if err := p.PutHabit(ctx, h); err != nil {
				t.Fatal(err)
			}
			habits, err := p.HabitsByUser(ctx, "u1")
			if err != nil {
				t.Fatal(err)
			}
			if len(habits) != 1 || habits[0].Name != "Read" {
				t.Fatalf("unexpected habits %+v", habits)
			}

			// Instance upsert through the composite id: writing the same
			// pair twice must not duplicate.
			in := habit.Instance{
				ID: habit.InstanceID("2025-06-09", "h1"), HabitID: "h1", UserID: "u1", Date: "2025-06-09",
			}
			if err := p.PutInstances(ctx, []habit.Instance{in}); err != nil {
				t.Fatal(err)
			}
			completedAt := now
			in.Completed = true
			in.CompletedAt = &completedAt
			if err := p.PutInstances(ctx, []habit.Instance{in}); err != nil {
				t.Fatal(err)
			}
			all, err := p.InstancesByHabit(ctx, "u1", "h1")
			if err != nil {
				t.Fatal(err)
			}
			if len(all) != 1 || !all[0].Completed || all[0].CompletedAt == nil {
				t.Fatalf("expected single completed instance, got %+v", all)
			}

			more := habit.Instance{
				ID: habit.InstanceID("2025-06-10", "h1"), HabitID: "h1", UserID: "u1", Date: "2025-06-10",
			}
			if err := p.PutInstances(ctx, []habit.Instance{more}); err != nil {
				t.Fatal(err)
			}
			window, err := p.InstancesForDates(ctx, "u1", []string{"2025-06-09", "2025-06-11"})
			if err != nil {
				t.Fatal(err)
			}
			if len(window) != 1 || window[0].Date != "2025-06-09" {
				t.Fatalf("date-set query returned %+v", window)
			}

			remindAt := now.Add(-time.Minute)
			task := habit.Task{
				ID: "t1", UserID: "u1", Title: "call", Priority: habit.PriorityHigh,
				RemindAt: &remindAt, CreatedAt: now, UpdatedAt: now,
			}
			if err := p.PutTask(ctx, task); err != nil {
				t.Fatal(err)
			}
			due, err := p.DueReminders(ctx, now)
			if err != nil {
				t.Fatal(err)
			}
			if len(due) != 1 || due[0].ID != "t1" {
				t.Fatalf("expected due reminder, got %+v", due)
			}

			proj := habit.Project{ID: "p1", UserID: "u1", Name: "Launch", Status: habit.ProjectActive, CreatedAt: now}
			if err := p.PutProject(ctx, proj); err != nil {
				t.Fatal(err)
			}
			pid := "p1"
			task.ProjectID = &pid
			task.Completed = true
			if err := p.PutTask(ctx, task); err != nil {
				t.Fatal(err)
			}
			byProject, err := p.TasksByProject(ctx, "u1", "p1")
			if err != nil {
				t.Fatal(err)
			}
			if len(byProject) != 1 || !byProject[0].Completed {
				t.Fatalf("project query returned %+v", byProject)
			}

			if err := p.DeleteTask(ctx, "u1", "t1"); err != nil {
				t.Fatal(err)
			}
			if err := p.DeleteTask(ctx, "u1", "t1"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("second delete must be ErrNotFound, got %v", err)
			}

			if err := p.Wipe(ctx, "u1"); err != nil {
				t.Fatal(err)
			}
			if _, err := p.UserByID(ctx, "u1"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("wipe must remove the user, got %v", err)
			}
			if left, _ := p.InstancesByUser(ctx, "u1"); len(left) != 0 {
				t.Fatalf("wipe left %d instances", len(left))
			}
		})
	}
}
