package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mycore/internal/habit"

	"github.com/lib/pq"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

// SQLite is the local durable backend: a single-file database opened
// with modernc's pure-Go driver, schema applied on open.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: %w: path is required", ErrNotConfigured)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("read schema: %w", err)
	}
	if _, err := db.ExecContext(context.Background(), string(schemaSQL)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) UserByID(ctx context.Context, id string) (habit.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
SELECT id, email, name, password_hash, onboarded, interests,
       setting_location, setting_notifications, setting_screen_time, created_at
FROM users WHERE id = ?`, id))
}

func (s *SQLite) UserByEmail(ctx context.Context, email string) (habit.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
SELECT id, email, name, password_hash, onboarded, interests,
       setting_location, setting_notifications, setting_screen_time, created_at
FROM users WHERE email = ?`, strings.ToLower(email)))
}

func (s *SQLite) scanUser(row *sql.Row) (habit.User, error) {
	var u habit.User
	var interests string
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Onboarded, &interests,
		&u.Settings.Location, &u.Settings.Notifications, &u.Settings.ScreenTime, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return habit.User{}, ErrNotFound
	}
	if err != nil {
		return habit.User{}, err
	}
	if err := json.Unmarshal([]byte(interests), &u.Interests); err != nil {
		return habit.User{}, fmt.Errorf("decode interests: %w", err)
	}
	return u, nil
}

func (s *SQLite) PutUser(ctx context.Context, u habit.User) error {
	interests, err := json.Marshal(sliceOrEmpty(u.Interests))
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO users (id, email, name, password_hash, onboarded, interests,
                   setting_location, setting_notifications, setting_screen_time, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    email = excluded.email,
    name = excluded.name,
    password_hash = excluded.password_hash,
    onboarded = excluded.onboarded,
    interests = excluded.interests,
    setting_location = excluded.setting_location,
    setting_notifications = excluded.setting_notifications,
    setting_screen_time = excluded.setting_screen_time`,
		u.ID, strings.ToLower(u.Email), u.Name, u.PasswordHash, u.Onboarded, string(interests),
		u.Settings.Location, u.Settings.Notifications, u.Settings.ScreenTime, u.CreatedAt)
	return err
}

func (s *SQLite) HabitsByUser(ctx context.Context, userID string) ([]habit.Habit, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, user_id, name, icon, category, schedule, trigger_type, trigger_config, streak, created_at
FROM habits WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []habit.Habit
	for rows.Next() {
		var h habit.Habit
		var cfg string
		if err := rows.Scan(&h.ID, &h.UserID, &h.Name, &h.Icon, &h.Category,
			&h.Schedule, &h.Trigger, &cfg, &h.Streak, &h.CreatedAt); err != nil {
			return nil, err
		}
		h.TriggerConfig = json.RawMessage(cfg)
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *SQLite) PutHabit(ctx context.Context, h habit.Habit) error {
	cfg := string(h.TriggerConfig)
	if cfg == "" {
		cfg = "{}"
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO habits (id, user_id, name, icon, category, schedule, trigger_type, trigger_config, streak, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    icon = excluded.icon,
    category = excluded.category,
    schedule = excluded.schedule,
    trigger_type = excluded.trigger_type,
    trigger_config = excluded.trigger_config,
    streak = excluded.streak`,
		h.ID, h.UserID, h.Name, h.Icon, h.Category, h.Schedule, h.Trigger, cfg, h.Streak, h.CreatedAt)
	return err
}

const instanceCols = `id, habit_id, user_id, date, completed, completed_at, value`

func (s *SQLite) InstanceByID(ctx context.Context, userID, id string) (habit.Instance, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+instanceCols+` FROM habit_instances WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return habit.Instance{}, err
	}
	defer rows.Close()
	list, err := scanInstances(rows)
	if err != nil {
		return habit.Instance{}, err
	}
	if len(list) == 0 {
		return habit.Instance{}, ErrNotFound
	}
	return list[0], nil
}

func (s *SQLite) InstancesByUser(ctx context.Context, userID string) ([]habit.Instance, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+instanceCols+` FROM habit_instances WHERE user_id = ? ORDER BY date, habit_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInstances(rows)
}

func (s *SQLite) InstancesByHabit(ctx context.Context, userID, habitID string) ([]habit.Instance, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+instanceCols+` FROM habit_instances WHERE user_id = ? AND habit_id = ? ORDER BY date`,
		userID, habitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInstances(rows)
}

func (s *SQLite) InstancesForDates(ctx context.Context, userID string, dates []string) ([]habit.Instance, error) {
	if len(dates) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(dates)), ",")
	args := make([]any, 0, len(dates)+1)
	args = append(args, userID)
	for _, d := range dates {
		args = append(args, d)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+instanceCols+` FROM habit_instances WHERE user_id = ? AND date IN (`+placeholders+`) ORDER BY date, habit_id`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInstances(rows)
}

func scanInstances(rows *sql.Rows) ([]habit.Instance, error) {
	var out []habit.Instance
	for rows.Next() {
		var in habit.Instance
		var completedAt sql.NullTime
		var value sql.NullFloat64
		if err := rows.Scan(&in.ID, &in.HabitID, &in.UserID, &in.Date,
			&in.Completed, &completedAt, &value); err != nil {
			return nil, err
		}
		if completedAt.Valid {
			t := completedAt.Time
			in.CompletedAt = &t
		}
		if value.Valid {
			v := value.Float64
			in.Value = &v
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (s *SQLite) PutInstances(ctx context.Context, instances []habit.Instance) error {
	if len(instances) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO habit_instances (id, habit_id, user_id, date, completed, completed_at, value)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    completed = excluded.completed,
    completed_at = excluded.completed_at,
    value = excluded.value`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, in := range instances {
		var completedAt sql.NullTime
		if in.CompletedAt != nil {
			completedAt = sql.NullTime{Time: *in.CompletedAt, Valid: true}
		}
		var value sql.NullFloat64
		if in.Value != nil {
			value = sql.NullFloat64{Float64: *in.Value, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, in.ID, in.HabitID, in.UserID, in.Date,
			in.Completed, completedAt, value); err != nil {
			return err
		}
	}
	return tx.Commit()
}

const taskCols = `id, user_id, title, description, due_at, priority, category, project_id,
       completed, remind_at, reminder_sent, created_at, updated_at`

func (s *SQLite) TaskByID(ctx context.Context, userID, id string) (habit.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskCols+` FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return habit.Task{}, err
	}
	defer rows.Close()
	list, err := scanTasks(rows)
	if err != nil {
		return habit.Task{}, err
	}
	if len(list) == 0 {
		return habit.Task{}, ErrNotFound
	}
	return list[0], nil
}

func (s *SQLite) TasksByUser(ctx context.Context, userID string) ([]habit.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskCols+` FROM tasks WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (s *SQLite) TasksByProject(ctx context.Context, userID, projectID string) ([]habit.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskCols+` FROM tasks WHERE user_id = ? AND project_id = ? ORDER BY created_at`,
		userID, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (s *SQLite) DueReminders(ctx context.Context, now time.Time) ([]habit.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskCols+` FROM tasks
WHERE reminder_sent = 0 AND completed = 0 AND remind_at IS NOT NULL AND remind_at <= ?
ORDER BY remind_at`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func scanTasks(rows *sql.Rows) ([]habit.Task, error) {
	var out []habit.Task
	for rows.Next() {
		var t habit.Task
		var dueAt, remindAt sql.NullTime
		var projectID sql.NullString
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &dueAt,
			&t.Priority, &t.Category, &projectID, &t.Completed, &remindAt,
			&t.ReminderSent, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		if dueAt.Valid {
			v := dueAt.Time
			t.DueAt = &v
		}
		if remindAt.Valid {
			v := remindAt.Time
			t.RemindAt = &v
		}
		if projectID.Valid {
			v := projectID.String
			t.ProjectID = &v
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLite) PutTask(ctx context.Context, t habit.Task) error {
	var dueAt, remindAt sql.NullTime
	if t.DueAt != nil {
		dueAt = sql.NullTime{Time: *t.DueAt, Valid: true}
	}
	if t.RemindAt != nil {
		remindAt = sql.NullTime{Time: *t.RemindAt, Valid: true}
	}
	var projectID sql.NullString
	if t.ProjectID != nil {
		projectID = sql.NullString{String: *t.ProjectID, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO tasks (id, user_id, title, description, due_at, priority, category, project_id,
                   completed, remind_at, reminder_sent, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    title = excluded.title,
    description = excluded.description,
    due_at = excluded.due_at,
    priority = excluded.priority,
    category = excluded.category,
    project_id = excluded.project_id,
    completed = excluded.completed,
    remind_at = excluded.remind_at,
    reminder_sent = excluded.reminder_sent,
    updated_at = excluded.updated_at`,
		t.ID, t.UserID, t.Title, t.Description, dueAt, t.Priority, t.Category, projectID,
		t.Completed, remindAt, t.ReminderSent, t.CreatedAt, t.UpdatedAt)
	return err
}

func (s *SQLite) DeleteTask(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) ProjectByID(ctx context.Context, userID, id string) (habit.Project, error) {
	var p habit.Project
	err := s.db.QueryRowContext(ctx, `
SELECT id, user_id, name, description, progress, status, created_at
FROM projects WHERE id = ? AND user_id = ?`, id, userID).
		Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.Progress, &p.Status, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return habit.Project{}, ErrNotFound
	}
	return p, err
}

func (s *SQLite) ProjectsByUser(ctx context.Context, userID string) ([]habit.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, user_id, name, description, progress, status, created_at
FROM projects WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []habit.Project
	for rows.Next() {
		var p habit.Project
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Description,
			&p.Progress, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLite) PutProject(ctx context.Context, p habit.Project) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO projects (id, user_id, name, description, progress, status, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    description = excluded.description,
    progress = excluded.progress,
    status = excluded.status`,
		p.ID, p.UserID, p.Name, p.Description, p.Progress, p.Status, p.CreatedAt)
	return err
}

func (s *SQLite) Wipe(ctx context.Context, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM habit_instances WHERE user_id = ?`,
		`DELETE FROM habits WHERE user_id = ?`,
		`DELETE FROM tasks WHERE user_id = ?`,
		`DELETE FROM projects WHERE user_id = ?`,
		`DELETE FROM users WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, userID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLite) Local() bool { return true }

func (s *SQLite) Close() error { return s.db.Close() }

func sliceOrEmpty(in pq.StringArray) []string {
	if in == nil {
		return []string{}
	}
	return in
}
