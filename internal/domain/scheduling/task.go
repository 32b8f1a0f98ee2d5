package scheduling

import (
	"context"
	"strings"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
)

// ScheduleTask is a persisted background job definition
type ScheduleTask struct {
	shared.BaseEntity
	Name          string `gorm:"type:varchar(200);not null"`
	Type          string `gorm:"type:varchar(200);not null;uniqueIndex"`
	Seconds       int    `gorm:"not null"`
	Enabled       bool   `gorm:"not null;default:true"`
	StopOnError   bool   `gorm:"not null;default:false"`
	LastStartAt   *time.Time
	LastEndAt     *time.Time
	LastSuccessAt *time.Time
	LastError     string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ScheduleTask) TableName() string {
	return "schedule_tasks"
}

// NewScheduleTask creates an enabled task running every seconds
func NewScheduleTask(name, taskType string, seconds int, stopOnError bool) (*ScheduleTask, error) {
	name = strings.TrimSpace(name)
	taskType = strings.TrimSpace(taskType)
	if name == "" || taskType == "" {
		return nil, shared.NewDomainError("INVALID_TASK", "Task name and type are required")
	}
	if seconds <= 0 {
		return nil, shared.NewDomainError("INVALID_TASK_INTERVAL", "Task interval must be positive")
	}
	return &ScheduleTask{
		BaseEntity:  shared.NewBaseEntity(),
		Name:        name,
		Type:        taskType,
		Seconds:     seconds,
		Enabled:     true,
		StopOnError: stopOnError,
	}, nil
}

// Interval returns the run period
func (t *ScheduleTask) Interval() time.Duration {
	return time.Duration(t.Seconds) * time.Second
}

// IsDue reports whether an enabled task should run at now
func (t *ScheduleTask) IsDue(now time.Time) bool {
	if !t.Enabled {
		return false
	}
	if t.LastStartAt == nil {
		return true
	}
	return !t.LastStartAt.Add(t.Interval()).After(now)
}

// MarkStarted records the start of a run
func (t *ScheduleTask) MarkStarted(now time.Time) {
	t.LastStartAt = &now
	t.Touch()
}

// MarkFinished records the outcome of a run; a failing StopOnError task is disabled
func (t *ScheduleTask) MarkFinished(now time.Time, runErr error) {
	t.LastEndAt = &now
	if runErr == nil {
		t.LastSuccessAt = &now
		t.LastError = ""
	} else {
		t.LastError = runErr.Error()
		if t.StopOnError {
			t.Enabled = false
		}
	}
	t.Touch()
}

// Repository persists schedule tasks
type Repository interface {
	FindByType(ctx context.Context, taskType string) (*ScheduleTask, error)
	FindAll(ctx context.Context, showHidden bool) ([]ScheduleTask, error)
	Save(ctx context.Context, t *ScheduleTask) error
}
