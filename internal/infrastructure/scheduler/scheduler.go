package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/scheduling"
)

// Task is the work behind a schedule task type
type Task interface {
	Execute(ctx context.Context) error
}

// TaskFunc adapts a function to Task
type TaskFunc func(ctx context.Context) error

// Execute calls f
func (f TaskFunc) Execute(ctx context.Context) error {
	return f(ctx)
}

// Config holds task manager configuration
type Config struct {
	Enabled           bool
	TickInterval      time.Duration
	MaxConcurrentJobs int
	JobTimeout        time.Duration
}

// DefaultConfig returns default task manager configuration
func DefaultConfig() Config {
	return Config{
		Enabled:           true,
		TickInterval:      30 * time.Second,
		MaxConcurrentJobs: 3,
		JobTimeout:        10 * time.Minute,
	}
}

// TaskManager runs persisted schedule tasks. A ticker finds due tasks and
// hands their types to a pool of workers; a type is never queued twice.
type TaskManager struct {
	config Config
	repo   scheduling.Repository
	logger *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	tasks     map[string]Task
	inFlight  map[string]bool
	jobs      chan string
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
}

// NewTaskManager creates a task manager
func NewTaskManager(config Config, repo scheduling.Repository, logger *zap.Logger) *TaskManager {
	if config.MaxConcurrentJobs <= 0 {
		config.MaxConcurrentJobs = 1
	}
	if config.TickInterval <= 0 {
		config.TickInterval = DefaultConfig().TickInterval
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = DefaultConfig().JobTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskManager{
		config:   config,
		repo:     repo,
		logger:   logger,
		now:      time.Now,
		tasks:    make(map[string]Task),
		inFlight: make(map[string]bool),
	}
}

// Register binds a task type to its implementation
func (m *TaskManager) Register(taskType string, task Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[taskType] = task
}

// RegisteredTypes lists bound task types in order
func (m *TaskManager) RegisteredTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, 0, len(m.tasks))
	for t := range m.tasks {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Start launches the workers and the tick loop
func (m *TaskManager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.isRunning {
		m.mu.Unlock()
		return nil
	}
	if !m.config.Enabled {
		m.mu.Unlock()
		m.logger.Info("Task manager disabled")
		return nil
	}
	m.isRunning = true
	m.dropQueuedLocked()
	m.jobs = make(chan string, 100)
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.mu.Unlock()

	for i := 0; i < m.config.MaxConcurrentJobs; i++ {
		m.wg.Add(1)
		go m.worker(ctx, i)
	}
	m.wg.Add(1)
	go m.tickLoop(ctx)

	m.logger.Info("Task manager started",
		zap.Int("workers", m.config.MaxConcurrentJobs),
		zap.Duration("tick_interval", m.config.TickInterval),
		zap.Duration("job_timeout", m.config.JobTimeout),
	)
	return nil
}

// Stop cancels the loop and waits for running tasks until ctx expires
func (m *TaskManager) Stop(ctx context.Context) error {
	m.mu.Lock()
	if !m.isRunning {
		m.mu.Unlock()
		return nil
	}
	m.isRunning = false
	m.mu.Unlock()

	if m.cancel != nil {
		m.cancel()
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.mu.Lock()
		m.dropQueuedLocked()
		m.mu.Unlock()
		m.logger.Info("Task manager stopped gracefully")
		return nil
	case <-ctx.Done():
		m.logger.Warn("Task manager stop timed out")
		return ctx.Err()
	}
}

// dropQueuedLocked discards jobs no worker picked up and releases their types
func (m *TaskManager) dropQueuedLocked() {
	if m.jobs == nil {
		return
	}
	for {
		select {
		case taskType := <-m.jobs:
			delete(m.inFlight, taskType)
		default:
			return
		}
	}
}

// IsRunning reports whether the loop is active
func (m *TaskManager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isRunning
}

func (m *TaskManager) tickLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.TickInterval)
	defer ticker.Stop()

	m.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Tick(ctx)
		}
	}
}

// Tick queues every enabled task that is due and returns how many were queued
func (m *TaskManager) Tick(ctx context.Context) int {
	tasks, err := m.repo.FindAll(ctx, false)
	if err != nil {
		m.logger.Error("Failed to load schedule tasks", zap.Error(err))
		return 0
	}

	now := m.now()
	queued := 0
	for i := range tasks {
		t := &tasks[i]
		if !t.IsDue(now) {
			continue
		}
		if err := m.submit(t.Type); err != nil {
			if !errors.Is(err, ErrTaskAlreadyRunning) {
				m.logger.Warn("Failed to queue task", zap.String("task_type", t.Type), zap.Error(err))
			}
			continue
		}
		queued++
	}
	return queued
}

func (m *TaskManager) submit(taskType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.isRunning {
		return ErrSchedulerNotRunning
	}
	if _, ok := m.tasks[taskType]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTaskType, taskType)
	}
	if m.inFlight[taskType] {
		return ErrTaskAlreadyRunning
	}
	select {
	case m.jobs <- taskType:
		m.inFlight[taskType] = true
		return nil
	default:
		return ErrJobQueueFull
	}
}

func (m *TaskManager) worker(ctx context.Context, workerID int) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case taskType := <-m.jobs:
			if err := m.run(ctx, taskType); err != nil {
				m.logger.Error("Task failed",
					zap.Int("worker_id", workerID),
					zap.String("task_type", taskType),
					zap.Error(err),
				)
			}
			m.mu.Lock()
			delete(m.inFlight, taskType)
			m.mu.Unlock()
		}
	}
}

// RunNow executes a task immediately in the caller's goroutine, whether or
// not it is enabled or due, and returns its error
func (m *TaskManager) RunNow(ctx context.Context, taskType string) error {
	m.mu.Lock()
	if m.inFlight[taskType] {
		m.mu.Unlock()
		return ErrTaskAlreadyRunning
	}
	m.inFlight[taskType] = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.inFlight, taskType)
		m.mu.Unlock()
	}()
	return m.run(ctx, taskType)
}

// run executes one task and records start, end and outcome on its row
func (m *TaskManager) run(ctx context.Context, taskType string) (runErr error) {
	m.mu.Lock()
	task, ok := m.tasks[taskType]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTaskType, taskType)
	}

	record, err := m.repo.FindByType(ctx, taskType)
	if err != nil {
		return fmt.Errorf("load task %s: %w", taskType, err)
	}

	record.MarkStarted(m.now())
	if err := m.repo.Save(ctx, record); err != nil {
		return fmt.Errorf("save task %s: %w", taskType, err)
	}

	m.logger.Info("Running task", zap.String("task_type", taskType), zap.String("task", record.Name))

	jobCtx, cancel := context.WithTimeout(ctx, m.config.JobTimeout)
	defer cancel()

	func() {
		defer func() {
			if r := recover(); r != nil {
				runErr = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
			}
		}()
		runErr = task.Execute(jobCtx)
	}()

	// record the outcome even when the run context expired
	saveCtx, saveCancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer saveCancel()

	record.MarkFinished(m.now(), runErr)
	if err := m.repo.Save(saveCtx, record); err != nil {
		m.logger.Error("Failed to save task result", zap.String("task_type", taskType), zap.Error(err))
	}

	if runErr != nil {
		if !record.Enabled {
			m.logger.Warn("Task disabled after failure", zap.String("task_type", taskType))
		}
		return runErr
	}
	m.logger.Info("Task completed", zap.String("task_type", taskType))
	return nil
}
