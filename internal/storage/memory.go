package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"mycore/internal/habit"
)

// Memory is the session-scoped backend: everything lives in process
// memory behind a RWMutex and vanishes on restart. Used for demos and
// as the test double for the store service.
type Memory struct {
	mu        sync.RWMutex
	users     map[string]habit.User
	emails    map[string]string // lowercased email -> user id
	habits    map[string]habit.Habit
	instances map[string]habit.Instance
	tasks     map[string]habit.Task
	projects  map[string]habit.Project
}

func NewMemory() *Memory {
	return &Memory{
		users:     map[string]habit.User{},
		emails:    map[string]string{},
		habits:    map[string]habit.Habit{},
		instances: map[string]habit.Instance{},
		tasks:     map[string]habit.Task{},
		projects:  map[string]habit.Project{},
	}
}

func (m *Memory) UserByID(_ context.Context, id string) (habit.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return habit.User{}, ErrNotFound
	}
	return u, nil
}

func (m *Memory) UserByEmail(_ context.Context, email string) (habit.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.emails[strings.ToLower(email)]
	if !ok {
		return habit.User{}, ErrNotFound
	}
	return m.users[id], nil
}

func (m *Memory) PutUser(_ context.Context, u habit.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	m.emails[strings.ToLower(u.Email)] = u.ID
	return nil
}

func (m *Memory) HabitsByUser(_ context.Context, userID string) ([]habit.Habit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []habit.Habit
	for _, h := range m.habits {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) PutHabit(_ context.Context, h habit.Habit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.habits[h.ID] = h
	return nil
}

func (m *Memory) InstanceByID(_ context.Context, userID, id string) (habit.Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	in, ok := m.instances[id]
	if !ok || in.UserID != userID {
		return habit.Instance{}, ErrNotFound
	}
	return in, nil
}

func (m *Memory) InstancesByUser(_ context.Context, userID string) ([]habit.Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []habit.Instance
	for _, in := range m.instances {
		if in.UserID == userID {
			out = append(out, in)
		}
	}
	sortInstances(out)
	return out, nil
}

func (m *Memory) InstancesByHabit(_ context.Context, userID, habitID string) ([]habit.Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []habit.Instance
	for _, in := range m.instances {
		if in.UserID == userID && in.HabitID == habitID {
			out = append(out, in)
		}
	}
	sortInstances(out)
	return out, nil
}

func (m *Memory) InstancesForDates(_ context.Context, userID string, dates []string) ([]habit.Instance, error) {
	want := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		want[d] = struct{}{}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []habit.Instance
	for _, in := range m.instances {
		if in.UserID != userID {
			continue
		}
		if _, ok := want[in.Date]; ok {
			out = append(out, in)
		}
	}
	sortInstances(out)
	return out, nil
}

func (m *Memory) PutInstances(_ context.Context, instances []habit.Instance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, in := range instances {
		m.instances[in.ID] = in
	}
	return nil
}

func (m *Memory) TaskByID(_ context.Context, userID, id string) (habit.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tasks[id]
	if !ok || t.UserID != userID {
		return habit.Task{}, ErrNotFound
	}
	return t, nil
}

func (m *Memory) TasksByUser(_ context.Context, userID string) ([]habit.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []habit.Task
	for _, t := range m.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) TasksByProject(_ context.Context, userID, projectID string) ([]habit.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []habit.Task
	for _, t := range m.tasks {
		if t.UserID == userID && t.ProjectID != nil && *t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) PutTask(_ context.Context, t habit.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[t.ID] = t
	return nil
}

func (m *Memory) DeleteTask(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok || t.UserID != userID {
		return ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *Memory) DueReminders(_ context.Context, now time.Time) ([]habit.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []habit.Task
	for _, t := range m.tasks {
		if t.RemindAt != nil && !t.ReminderSent && !t.Completed && !t.RemindAt.After(now) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RemindAt.Before(*out[j].RemindAt) })
	return out, nil
}

func (m *Memory) ProjectByID(_ context.Context, userID, id string) (habit.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[id]
	if !ok || p.UserID != userID {
		return habit.Project{}, ErrNotFound
	}
	return p, nil
}

func (m *Memory) ProjectsByUser(_ context.Context, userID string) ([]habit.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []habit.Project
	for _, p := range m.projects {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) PutProject(_ context.Context, p habit.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID] = p
	return nil
}

func (m *Memory) Wipe(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, h := range m.habits {
		if h.UserID == userID {
			delete(m.habits, id)
		}
	}
	for id, in := range m.instances {
		if in.UserID == userID {
			delete(m.instances, id)
		}
	}
	for id, t := range m.tasks {
		if t.UserID == userID {
			delete(m.tasks, id)
		}
	}
	for id, p := range m.projects {
		if p.UserID == userID {
			delete(m.projects, id)
		}
	}
	if u, ok := m.users[userID]; ok {
		delete(m.emails, strings.ToLower(u.Email))
		delete(m.users, userID)
	}
	return nil
}

func (m *Memory) Local() bool { return true }

func (m *Memory) Close() error { return nil }

func sortInstances(in []habit.Instance) {
	sort.Slice(in, func(i, j int) bool {
		if in[i].Date != in[j].Date {
			return in[i].Date < in[j].Date
		}
		return in[i].HabitID < in[j].HabitID
	})
}
