package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mycore/internal/habit"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Postgres is the networked durable backend. Reset never wipes it: a
// user's durable data outlives any single session.
type Postgres struct {
	db *gorm.DB
}

func OpenPostgres(dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres: %w: DATABASE_URL is required", ErrNotConfigured)
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := migrate(gdb); err != nil {
		return nil, err
	}
	return &Postgres{db: gdb}, nil
}

func migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&habit.User{},
		&habit.Habit{},
		&habit.Instance{},
		&habit.Task{},
		&habit.Project{},
	); err != nil {
		return err
	}

	// One instance per (habit, date); the composite id already encodes
	// this, the index backs date-window queries and belt-and-braces it.
	stmts := []string{
		`create unique index if not exists uq_instances_habit_date on instances(habit_id, date);`,
		`create index if not exists idx_instances_user_date on instances(user_id, date);`,
		`create index if not exists idx_tasks_user_project on tasks(user_id, project_id);`,
		`create index if not exists idx_tasks_remind on tasks(reminder_sent, remind_at);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}
	return nil
}

func (p *Postgres) UserByID(ctx context.Context, id string) (habit.User, error) {
	var u habit.User
	err := p.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	return u, mapErr(err)
}

func (p *Postgres) UserByEmail(ctx context.Context, email string) (habit.User, error) {
	var u habit.User
	err := p.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	return u, mapErr(err)
}

func (p *Postgres) PutUser(ctx context.Context, u habit.User) error {
	return p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&u).Error
}

func (p *Postgres) HabitsByUser(ctx context.Context, userID string) ([]habit.Habit, error) {
	var out []habit.Habit
	err := p.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&out).Error
	return out, err
}

func (p *Postgres) PutHabit(ctx context.Context, h habit.Habit) error {
	if len(h.TriggerConfig) == 0 {
		h.TriggerConfig = []byte("{}")
	}
	return p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&h).Error
}

func (p *Postgres) InstanceByID(ctx context.Context, userID, id string) (habit.Instance, error) {
	var in habit.Instance
	err := p.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&in).Error
	return in, mapErr(err)
}

func (p *Postgres) InstancesByUser(ctx context.Context, userID string) ([]habit.Instance, error) {
	var out []habit.Instance
	err := p.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("date, habit_id").Find(&out).Error
	return out, err
}

func (p *Postgres) InstancesByHabit(ctx context.Context, userID, habitID string) ([]habit.Instance, error) {
	var out []habit.Instance
	err := p.db.WithContext(ctx).Where("user_id = ? AND habit_id = ?", userID, habitID).
		Order("date").Find(&out).Error
	return out, err
}

func (p *Postgres) InstancesForDates(ctx context.Context, userID string, dates []string) ([]habit.Instance, error) {
	if len(dates) == 0 {
		return nil, nil
	}
	var out []habit.Instance
	err := p.db.WithContext(ctx).Where("user_id = ? AND date IN ?", userID, dates).
		Order("date, habit_id").Find(&out).Error
	return out, err
}

func (p *Postgres) PutInstances(ctx context.Context, instances []habit.Instance) error {
	if len(instances) == 0 {
		return nil
	}
	return p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&instances).Error
}

func (p *Postgres) TaskByID(ctx context.Context, userID, id string) (habit.Task, error) {
	var t habit.Task
	err := p.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&t).Error
	return t, mapErr(err)
}

func (p *Postgres) TasksByUser(ctx context.Context, userID string) ([]habit.Task, error) {
	var out []habit.Task
	err := p.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&out).Error
	return out, err
}

func (p *Postgres) TasksByProject(ctx context.Context, userID, projectID string) ([]habit.Task, error) {
	var out []habit.Task
	err := p.db.WithContext(ctx).Where("user_id = ? AND project_id = ?", userID, projectID).
		Order("created_at").Find(&out).Error
	return out, err
}

func (p *Postgres) DueReminders(ctx context.Context, now time.Time) ([]habit.Task, error) {
	var out []habit.Task
	err := p.db.WithContext(ctx).
		Where("reminder_sent = false AND completed = false AND remind_at IS NOT NULL AND remind_at <= ?", now).
		Order("remind_at").Find(&out).Error
	return out, err
}

func (p *Postgres) PutTask(ctx context.Context, t habit.Task) error {
	return p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&t).Error
}

func (p *Postgres) DeleteTask(ctx context.Context, userID, id string) error {
	res := p.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&habit.Task{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) ProjectByID(ctx context.Context, userID, id string) (habit.Project, error) {
	var pr habit.Project
	err := p.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&pr).Error
	return pr, mapErr(err)
}

func (p *Postgres) ProjectsByUser(ctx context.Context, userID string) ([]habit.Project, error) {
	var out []habit.Project
	err := p.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&out).Error
	return out, err
}

func (p *Postgres) PutProject(ctx context.Context, pr habit.Project) error {
	return p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&pr).Error
}

// Wipe deletes the user's entities. Only reachable when the reset
// policy explicitly forces a wipe on a networked backend.
func (p *Postgres) Wipe(ctx context.Context, userID string) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&habit.Instance{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&habit.Habit{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&habit.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&habit.Project{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", userID).Delete(&habit.User{}).Error
	})
}

func (p *Postgres) Local() bool { return false }

func (p *Postgres) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func mapErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
