package store

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"mycore/internal/habit"
	"mycore/internal/notify"
	"mycore/internal/storage"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	// ErrAlreadyOnboarded guards the one-way onboarding transition:
	// re-entry would duplicate the chosen habit set.
	ErrAlreadyOnboarded = errors.New("user already onboarded")

	ErrNotFound = errors.New("not found")
)

// ResetPolicy decides whether Reset wipes durable data or only drops
// session state.
type ResetPolicy string

const (
	// ResetAuto wipes local backends and leaves networked ones alone.
	ResetAuto   ResetPolicy = "auto"
	ResetAlways ResetPolicy = "always"
	ResetNever  ResetPolicy = "never"
)

// SeedOptions configures history seeding at onboarding. RNG nil means
// deterministic seeding: every generated instance starts incomplete.
type SeedOptions struct {
	FromOffset int
	ToOffset   int
	RNG        *rand.Rand
}

func DefaultSeedOptions() SeedOptions {
	return SeedOptions{FromOffset: -14, ToOffset: 3}
}

// Store is the single data-access surface: scheduling, streak
// recomputation, suggestion and CRUD logic written once against the
// storage provider, whatever backend is plugged in.
type Store struct {
	provider storage.Provider
	notifier notify.Notifier
	seed     SeedOptions
	reset    ResetPolicy
	now      func() time.Time

	// session-scoped profile cache, invalidated on reset
	mu    sync.RWMutex
	users map[string]habit.User
}

func New(provider storage.Provider, notifier notify.Notifier, seed SeedOptions, reset ResetPolicy) *Store {
	return &Store{
		provider: provider,
		notifier: notifier,
		seed:     seed,
		reset:    reset,
		now:      time.Now,
		users:    map[string]habit.User{},
	}
}

func (s *Store) today() string { return habit.FormatDate(s.now()) }

// User returns the profile, preferring the session cache.
func (s *Store) User(ctx context.Context, userID string) (habit.User, error) {
	s.mu.RLock()
	u, ok := s.users[userID]
	s.mu.RUnlock()
	if ok {
		return u, nil
	}

	u, err := s.provider.UserByID(ctx, userID)
	if err != nil {
		return habit.User{}, mapErr(err)
	}
	s.cacheUser(u)
	return u, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (habit.User, error) {
	u, err := s.provider.UserByEmail(ctx, strings.ToLower(email))
	return u, mapErr(err)
}

// InitUser is idempotent: an existing profile for the email is returned
// as-is, otherwise a fresh not-yet-onboarded one is created with every
// setting off.
func (s *Store) InitUser(ctx context.Context, email, name, passwordHash string) (habit.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if u, err := s.provider.UserByEmail(ctx, email); err == nil {
		return u, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return habit.User{}, err
	}

	u := habit.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    s.now(),
	}
	if err := s.provider.PutUser(ctx, u); err != nil {
		return habit.User{}, err
	}
	s.cacheUser(u)
	return u, nil
}

// CompleteOnboarding is a one-way transition: it marks the user
// onboarded, stores interests and permission-derived settings, persists
// the chosen habits and seeds their history. A second call for an
// onboarded user is rejected rather than duplicating habit rows.
func (s *Store) CompleteOnboarding(ctx context.Context, userID string, interests []string, habits []habit.Habit, perms habit.Settings) error {
	u, err := s.User(ctx, userID)
	if err != nil {
		return err
	}
	if u.Onboarded {
		return ErrAlreadyOnboarded
	}

	u.Onboarded = true
	u.Interests = pq.StringArray(interests)
	u.Settings = perms
	if err := s.provider.PutUser(ctx, u); err != nil {
		return err
	}
	s.cacheUser(u)

	owned := make([]habit.Habit, 0, len(habits))
	for _, h := range habits {
		if h.ID == "" {
			h.ID = uuid.NewString()
		}
		h.UserID = userID
		h.CreatedAt = s.now()
		if err := s.provider.PutHabit(ctx, h); err != nil {
			return err
		}
		owned = append(owned, h)
	}

	existing, err := s.provider.InstancesByUser(ctx, userID)
	if err != nil {
		return err
	}
	seeded := habit.SeedHistory(owned, existing, s.seed.FromOffset, s.seed.ToOffset, s.now(), s.seed.RNG)
	return s.provider.PutInstances(ctx, seeded)
}

// AddHabit persists a new habit for the user, e.g. an accepted
// suggestion after onboarding.
func (s *Store) AddHabit(ctx context.Context, userID string, h habit.Habit) (habit.Habit, error) {
	h.ID = uuid.NewString()
	h.UserID = userID
	h.Streak = 0
	h.CreatedAt = s.now()
	if err := s.provider.PutHabit(ctx, h); err != nil {
		return habit.Habit{}, err
	}
	return h, nil
}

// Habits returns the user's habits with streaks recomputed from the
// instance history at call time. The persisted streak is only a cache.
func (s *Store) Habits(ctx context.Context, userID string) ([]habit.Habit, error) {
	habits, err := s.provider.HabitsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := s.today()
	for i := range habits {
		instances, err := s.provider.InstancesByHabit(ctx, userID, habits[i].ID)
		if err != nil {
			return nil, err
		}
		streak := habit.CurrentStreak(habit.UpTo(instances, today), today)
		if streak != habits[i].Streak {
			habits[i].Streak = streak
			if err := s.provider.PutHabit(ctx, habits[i]); err != nil {
				return nil, err
			}
		}
	}
	return habits, nil
}

// WeekInstances lazily materializes instances for the given dates,
// persists only the missing subset and returns the full range. Safe to
// call repeatedly.
func (s *Store) WeekInstances(ctx context.Context, userID string, dates []string) ([]habit.Instance, error) {
	habits, err := s.provider.HabitsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	existing, err := s.provider.InstancesForDates(ctx, userID, dates)
	if err != nil {
		return nil, err
	}

	created := habit.EnsureInstances(dates, habits, existing)
	if len(created) > 0 {
		if err := s.provider.PutInstances(ctx, created); err != nil {
			return nil, err
		}
	}

	all := append(existing, created...)
	sort.Slice(all, func(i, j int) bool {
		if all[i].Date != all[j].Date {
			return all[i].Date < all[j].Date
		}
		return all[i].HabitID < all[j].HabitID
	})
	return all, nil
}

// UpdateInstanceStatus flips the completed flag, stamping or clearing
// the completion timestamp and optionally recording a value. Missing
// instances are a no-op. Streaks are recomputed lazily on the next
// Habits read; notifications are fired best-effort and never surface
// an error into the write path.
func (s *Store) UpdateInstanceStatus(ctx context.Context, userID, id string, completed bool, value *float64) error {
	in, err := s.provider.InstanceByID(ctx, userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	in.Completed = completed
	if completed {
		now := s.now()
		in.CompletedAt = &now
	} else {
		in.CompletedAt = nil
	}
	if value != nil {
		in.Value = value
	}
	if err := s.provider.PutInstances(ctx, []habit.Instance{in}); err != nil {
		return err
	}

	if completed {
		s.congratulate(ctx, userID, in.HabitID)
	}
	return nil
}

// streak milestones worth celebrating
func streakMilestone(streak int) bool {
	return streak > 0 && streak%7 == 0
}

func (s *Store) congratulate(ctx context.Context, userID, habitID string) {
	instances, err := s.provider.InstancesByHabit(ctx, userID, habitID)
	if err != nil {
		return
	}
	today := s.today()
	if streak := habit.CurrentStreak(habit.UpTo(instances, today), today); streakMilestone(streak) {
		name := ""
		if u, err := s.User(ctx, userID); err == nil {
			name = u.Name
		}
		_ = s.notifier.StreakCongratulation(ctx, name, streak)
	}

	todays, err := s.provider.InstancesForDates(ctx, userID, []string{today})
	if err != nil || len(todays) == 0 {
		return
	}
	for _, in := range todays {
		if !in.Completed {
			return
		}
	}
	_ = s.notifier.CompletionCongratulation(ctx)
}

func (s *Store) Tasks(ctx context.Context, userID string) ([]habit.Task, error) {
	return s.provider.TasksByUser(ctx, userID)
}

func (s *Store) AddTask(ctx context.Context, userID string, t habit.Task) (habit.Task, error) {
	t.ID = uuid.NewString()
	t.UserID = userID
	t.ReminderSent = false
	t.CreatedAt = s.now()
	t.UpdatedAt = t.CreatedAt
	if err := s.provider.PutTask(ctx, t); err != nil {
		return habit.Task{}, err
	}
	if err := s.recomputeProjectOf(ctx, userID, t.ProjectID); err != nil {
		return habit.Task{}, err
	}
	return t, nil
}

// UpdateTask overwrites mutable fields of an existing task. Updating a
// missing task is a no-op. Project progress is recomputed for both the
// old and the new project before returning.
func (s *Store) UpdateTask(ctx context.Context, userID string, t habit.Task) (habit.Task, error) {
	old, err := s.provider.TaskByID(ctx, userID, t.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return habit.Task{}, nil
	}
	if err != nil {
		return habit.Task{}, err
	}

	t.UserID = userID
	t.CreatedAt = old.CreatedAt
	t.UpdatedAt = s.now()
	if t.RemindAt == nil || old.RemindAt == nil || !t.RemindAt.Equal(*old.RemindAt) {
		t.ReminderSent = false
	} else {
		t.ReminderSent = old.ReminderSent
	}
	if err := s.provider.PutTask(ctx, t); err != nil {
		return habit.Task{}, err
	}

	if err := s.recomputeProjectOf(ctx, userID, old.ProjectID); err != nil {
		return habit.Task{}, err
	}
	if !sameProject(old.ProjectID, t.ProjectID) {
		if err := s.recomputeProjectOf(ctx, userID, t.ProjectID); err != nil {
			return habit.Task{}, err
		}
	}
	return t, nil
}

// DeleteTask removes a task; deleting a missing one is a no-op.
func (s *Store) DeleteTask(ctx context.Context, userID, id string) error {
	old, err := s.provider.TaskByID(ctx, userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.provider.DeleteTask(ctx, userID, id); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return s.recomputeProjectOf(ctx, userID, old.ProjectID)
}

func (s *Store) Projects(ctx context.Context, userID string) ([]habit.Project, error) {
	return s.provider.ProjectsByUser(ctx, userID)
}

func (s *Store) AddProject(ctx context.Context, userID string, p habit.Project) (habit.Project, error) {
	p.ID = uuid.NewString()
	p.UserID = userID
	p.Progress = 0
	p.Status = habit.ProjectActive
	p.CreatedAt = s.now()
	if err := s.provider.PutProject(ctx, p); err != nil {
		return habit.Project{}, err
	}
	return p, nil
}

func (s *Store) recomputeProjectOf(ctx context.Context, userID string, projectID *string) error {
	if projectID == nil {
		return nil
	}
	p, err := s.provider.ProjectByID(ctx, userID, *projectID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	tasks, err := s.provider.TasksByProject(ctx, userID, *projectID)
	if err != nil {
		return err
	}
	p.Recompute(tasks)
	return s.provider.PutProject(ctx, p)
}

func sameProject(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Suggestions filters the template catalog by the given interests,
// falling back to the user's stored interests when none are passed.
func (s *Store) Suggestions(ctx context.Context, userID string, interests []string) ([]habit.Habit, error) {
	if len(interests) == 0 {
		u, err := s.User(ctx, userID)
		if err != nil {
			return nil, err
		}
		interests = u.Interests
	}
	return habit.Suggest(interests, habit.Catalog(), habit.DefaultSuggestionCount), nil
}

// HabitStat is the analytics read model for one habit.
type HabitStat struct {
	HabitID        string `json:"habit_id"`
	Name           string `json:"name"`
	Streak         int    `json:"streak"`
	Strength       int    `json:"strength"`
	CompletionRate int    `json:"completion_rate"`
}

type Stats struct {
	Habits         []HabitStat `json:"habits"`
	TasksTotal     int         `json:"tasks_total"`
	TasksCompleted int         `json:"tasks_completed"`
	Projects       int         `json:"projects"`
}

func (s *Store) Stats(ctx context.Context, userID string) (Stats, error) {
	var out Stats

	habits, err := s.provider.HabitsByUser(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	today := s.today()
	for _, h := range habits {
		instances, err := s.provider.InstancesByHabit(ctx, userID, h.ID)
		if err != nil {
			return Stats{}, err
		}
		instances = habit.UpTo(instances, today)
		stat := HabitStat{
			HabitID:  h.ID,
			Name:     h.Name,
			Streak:   habit.CurrentStreak(instances, today),
			Strength: habit.StrengthScore(instances, today),
		}
		if len(instances) > 0 {
			done := 0
			for _, in := range instances {
				if in.Completed {
					done++
				}
			}
			stat.CompletionRate = 100 * done / len(instances)
		}
		out.Habits = append(out.Habits, stat)
	}

	tasks, err := s.provider.TasksByUser(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	out.TasksTotal = len(tasks)
	for _, t := range tasks {
		if t.Completed {
			out.TasksCompleted++
		}
	}

	projects, err := s.provider.ProjectsByUser(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	out.Projects = len(projects)
	return out, nil
}

// Reset drops the session cache and, depending on policy and backend
// locality, wipes the user's persisted data. Networked backends keep
// durable data unless the policy forces a wipe.
func (s *Store) Reset(ctx context.Context, userID string) error {
	s.mu.Lock()
	delete(s.users, userID)
	s.mu.Unlock()

	wipe := false
	switch s.reset {
	case ResetAlways:
		wipe = true
	case ResetNever:
	default:
		wipe = s.provider.Local()
	}
	if !wipe {
		return nil
	}
	if err := s.provider.Wipe(ctx, userID); err != nil {
		return fmt.Errorf("wipe user data: %w", err)
	}
	return nil
}

// Invalidate drops a user's cached profile, e.g. on logout.
func (s *Store) Invalidate(userID string) {
	s.mu.Lock()
	delete(s.users, userID)
	s.mu.Unlock()
}

func (s *Store) cacheUser(u habit.User) {
	s.mu.Lock()
	s.users[u.ID] = u
	s.mu.Unlock()
}

// MarkReminderSent flags a task's reminder as dispatched. Used by the
// reminder worker.
func (s *Store) MarkReminderSent(ctx context.Context, userID, taskID string) error {
	t, err := s.provider.TaskByID(ctx, userID, taskID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	t.ReminderSent = true
	t.UpdatedAt = s.now()
	return s.provider.PutTask(ctx, t)
}

// DueReminders proxies the provider query for the reminder worker.
func (s *Store) DueReminders(ctx context.Context, now time.Time) ([]habit.Task, error) {
	return s.provider.DueReminders(ctx, now)
}

// WithClock overrides the store clock. Test hook.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func mapErr(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
