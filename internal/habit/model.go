package habit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Schedule is the weekly recurrence rule of a habit.
type Schedule string

const (
	ScheduleDaily    Schedule = "DAILY"
	ScheduleWeekdays Schedule = "WEEKDAYS"
	ScheduleWeekends Schedule = "WEEKENDS"
	ScheduleCustom   Schedule = "CUSTOM"
)

// TriggerType is the mechanism that conceptually completes an instance.
// Non-manual triggers carry an opaque config blob; the core never
// interprets it.
type TriggerType string

const (
	TriggerManual     TriggerType = "MANUAL"
	TriggerLocation   TriggerType = "LOCATION"
	TriggerAppOpen    TriggerType = "APP_OPEN"
	TriggerScreenTime TriggerType = "SCREEN_TIME"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
)

// User is the account profile. Interests drive suggestions; Settings
// mirror the permission toggles chosen during onboarding.
type User struct {
	ID           string         `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	Name         string         `gorm:"not null;default:''" json:"name"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Onboarded    bool           `gorm:"not null;default:false" json:"onboarded"`
	Interests    pq.StringArray `gorm:"type:text[]" json:"interests"`
	Settings     Settings       `gorm:"embedded;embeddedPrefix:setting_" json:"settings"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

type Settings struct {
	Location      bool `json:"location"`
	Notifications bool `json:"notifications"`
	ScreenTime    bool `json:"screen_time"`
}

// Habit is a recurring intention. Streak is a derived cache; the source
// of truth is the instance history, recomputed on every read.
type Habit struct {
	ID            string          `gorm:"primaryKey" json:"id"`
	UserID        string          `gorm:"index;not null" json:"user_id"`
	Name          string          `gorm:"not null" json:"name"`
	Icon          string          `gorm:"not null;default:''" json:"icon"`
	Category      string          `gorm:"index;not null;default:''" json:"category"`
	Schedule      Schedule        `gorm:"not null;default:'DAILY'" json:"schedule"`
	Trigger       TriggerType     `gorm:"column:trigger_type;not null;default:'MANUAL'" json:"trigger"`
	TriggerConfig json.RawMessage `gorm:"type:jsonb;not null;default:'{}'::jsonb" json:"trigger_config,omitempty"`
	Streak        int             `gorm:"not null;default:0" json:"streak"`
	CreatedAt     time.Time       `gorm:"not null;default:now()" json:"created_at"`
}

// Instance is the materialized occurrence of a habit on one calendar
// date. Its identifier is derived from (date, habit) so the same pair
// can never exist twice; writes are upserts keyed on it.
type Instance struct {
	ID          string     `gorm:"primaryKey" json:"id"`
	HabitID     string     `gorm:"index;not null" json:"habit_id"`
	UserID      string     `gorm:"index;not null" json:"user_id"`
	Date        string     `gorm:"index;not null" json:"date"` // YYYY-MM-DD
	Completed   bool       `gorm:"not null;default:false" json:"completed"`
	CompletedAt *time.Time `gorm:"type:timestamptz" json:"completed_at,omitempty"`
	Value       *float64   `json:"value,omitempty"`
}

// InstanceID derives the composite identifier for a habit occurrence.
func InstanceID(date, habitID string) string {
	return fmt.Sprintf("%s_%s", date, habitID)
}

// Task is a one-off todo, optionally grouped under a project and
// optionally carrying a reminder.
type Task struct {
	ID           string     `gorm:"primaryKey" json:"id"`
	UserID       string     `gorm:"index;not null" json:"user_id"`
	Title        string     `gorm:"not null" json:"title"`
	Description  string     `gorm:"not null;default:''" json:"description"`
	DueAt        *time.Time `gorm:"type:timestamptz" json:"due_at,omitempty"`
	Priority     Priority   `gorm:"not null;default:'MEDIUM'" json:"priority"`
	Category     string     `gorm:"not null;default:''" json:"category"`
	ProjectID    *string    `gorm:"index" json:"project_id,omitempty"`
	Completed    bool       `gorm:"not null;default:false" json:"completed"`
	RemindAt     *time.Time `gorm:"index;type:timestamptz" json:"remind_at,omitempty"`
	ReminderSent bool       `gorm:"not null;default:false" json:"reminder_sent"`
	CreatedAt    time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

// Project groups tasks. Progress and Status are pure functions of the
// current task set, recomputed after every task mutation that touches
// membership or completion.
type Project struct {
	ID          string        `gorm:"primaryKey" json:"id"`
	UserID      string        `gorm:"index;not null" json:"user_id"`
	Name        string        `gorm:"not null" json:"name"`
	Description string        `gorm:"not null;default:''" json:"description"`
	Progress    int           `gorm:"not null;default:0" json:"progress"`
	Status      ProjectStatus `gorm:"not null;default:'active'" json:"status"`
	CreatedAt   time.Time     `gorm:"not null;default:now()" json:"created_at"`
}

// Recompute refreshes the derived progress/status of a project from its
// current task set.
func (p *Project) Recompute(tasks []Task) {
	if len(tasks) == 0 {
		p.Progress = 0
		p.Status = ProjectActive
		return
	}
	done := 0
	for _, t := range tasks {
		if t.Completed {
			done++
		}
	}
	p.Progress = 100 * done / len(tasks)
	if p.Progress == 100 {
		p.Status = ProjectCompleted
	} else {
		p.Status = ProjectActive
	}
}
