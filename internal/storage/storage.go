package storage

import (
	"context"
	"errors"
	"time"

	"mycore/internal/habit"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrNotConfigured means the selected backend is missing required
	// connection settings. Surfaced at startup, never as a silent no-op
	// write path.
	ErrNotConfigured = errors.New("storage not configured")
)

// Provider is the persistence contract the core is written against:
// point lookup and upsert by id, query by secondary field, and date-set
// membership queries. Implementations need no transactions; uniqueness
// comes from deterministic identifiers and upsert semantics.
type Provider interface {
	// Users
	UserByID(ctx context.Context, id string) (habit.User, error)
	UserByEmail(ctx context.Context, email string) (habit.User, error)
	PutUser(ctx context.Context, u habit.User) error

	// Habits
	HabitsByUser(ctx context.Context, userID string) ([]habit.Habit, error)
	PutHabit(ctx context.Context, h habit.Habit) error

	// Instances
	InstanceByID(ctx context.Context, userID, id string) (habit.Instance, error)
	InstancesByUser(ctx context.Context, userID string) ([]habit.Instance, error)
	InstancesByHabit(ctx context.Context, userID, habitID string) ([]habit.Instance, error)
	InstancesForDates(ctx context.Context, userID string, dates []string) ([]habit.Instance, error)
	PutInstances(ctx context.Context, instances []habit.Instance) error

	// Tasks
	TaskByID(ctx context.Context, userID, id string) (habit.Task, error)
	TasksByUser(ctx context.Context, userID string) ([]habit.Task, error)
	TasksByProject(ctx context.Context, userID, projectID string) ([]habit.Task, error)
	PutTask(ctx context.Context, t habit.Task) error
	DeleteTask(ctx context.Context, userID, id string) error

	// DueReminders returns incomplete tasks across all users whose
	// reminder is due and not yet dispatched.
	DueReminders(ctx context.Context, now time.Time) ([]habit.Task, error)

	// Projects
	ProjectByID(ctx context.Context, userID, id string) (habit.Project, error)
	ProjectsByUser(ctx context.Context, userID string) ([]habit.Project, error)
	PutProject(ctx context.Context, p habit.Project) error

	// Wipe removes every entity owned by the user. Local reports
	// whether the backend holds local-only data; reset wipes local
	// backends by default and leaves networked ones alone.
	Wipe(ctx context.Context, userID string) error
	Local() bool

	Close() error
}
