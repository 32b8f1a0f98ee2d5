package tasks

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/scheduling"
	"github.com/storefront/backend/internal/domain/shared"
)

// Runner executes a task type on demand
type Runner interface {
	RunNow(ctx context.Context, taskType string) error
}

// DefaultTasks are seeded when missing
var DefaultTasks = []struct {
	Name    string
	Type    string
	Seconds int
}{
	{"Clear cache", TypeClearCache, 600},
	{"Delete guests", TypeDeleteGuests, 600},
	{"Update currency exchange rates", TypeUpdateExchangeRates, 3600},
}

// UpdateTaskRequest changes a task's schedule
type UpdateTaskRequest struct {
	Seconds     int   `json:"seconds" binding:"required,min=1"`
	Enabled     *bool `json:"enabled"`
	StopOnError *bool `json:"stop_on_error"`
}

// TaskService administers persisted schedule tasks
type TaskService struct {
	repo   scheduling.Repository
	runner Runner
	logger *zap.Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(repo scheduling.Repository, runner Runner, logger *zap.Logger) *TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{repo: repo, runner: runner, logger: logger}
}

// EnsureDefaultTasks inserts the built-in tasks that do not exist yet
func (s *TaskService) EnsureDefaultTasks(ctx context.Context) error {
	for _, def := range DefaultTasks {
		_, err := s.repo.FindByType(ctx, def.Type)
		if err == nil {
			continue
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		task, err := scheduling.NewScheduleTask(def.Name, def.Type, def.Seconds, false)
		if err != nil {
			return err
		}
		if err := s.repo.Save(ctx, task); err != nil {
			return fmt.Errorf("seed task %s: %w", def.Type, err)
		}
		s.logger.Info("Schedule task created", zap.String("task_type", def.Type))
	}
	return nil
}

// GetAllTasks lists tasks, including disabled ones
func (s *TaskService) GetAllTasks(ctx context.Context) ([]scheduling.ScheduleTask, error) {
	return s.repo.FindAll(ctx, true)
}

// UpdateTask changes the interval and flags of a task
func (s *TaskService) UpdateTask(ctx context.Context, taskType string, req UpdateTaskRequest) (*scheduling.ScheduleTask, error) {
	if req.Seconds <= 0 {
		return nil, shared.NewDomainError("INVALID_TASK_INTERVAL", "Task interval must be positive")
	}
	task, err := s.repo.FindByType(ctx, taskType)
	if err != nil {
		return nil, err
	}
	task.Seconds = req.Seconds
	if req.Enabled != nil {
		task.Enabled = *req.Enabled
	}
	if req.StopOnError != nil {
		task.StopOnError = *req.StopOnError
	}
	task.Touch()
	if err := s.repo.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// RunNow executes a task immediately and returns its refreshed row
func (s *TaskService) RunNow(ctx context.Context, taskType string) (*scheduling.ScheduleTask, error) {
	if _, err := s.repo.FindByType(ctx, taskType); err != nil {
		return nil, err
	}
	if err := s.runner.RunNow(ctx, taskType); err != nil {
		return nil, err
	}
	return s.repo.FindByType(ctx, taskType)
}
