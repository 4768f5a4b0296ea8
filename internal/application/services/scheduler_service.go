package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/omnihive/backend/internal/application/registry"
	"github.com/omnihive/backend/internal/domain/models"
	"github.com/omnihive/backend/internal/domain/ports"
	"github.com/omnihive/backend/pkg/constants"
	apperrors "github.com/omnihive/backend/pkg/errors"
)

// cronParser accepts five-field expressions and the @every/@daily descriptors
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// RunTask executes a task worker once with the given arguments
func RunTask(ctx context.Context, reg *registry.Registry, name string, args map[string]any) (any, error) {
	task, ok := registry.ResolveAs[ports.TaskWorker](reg, constants.WorkerKindTask, name)
	if !ok {
		return nil, apperrors.NewTaskWorkerRequiredError(name)
	}
	if args == nil {
		args = map[string]any{}
	}
	return task.Execute(ctx, args)
}

// NextRun returns the next time a cron expression fires after now
func NextRun(expr string, now time.Time) (time.Time, error) {
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cron expression: %w", err)
	}
	return schedule.Next(now), nil
}

// SchedulerService runs the task workers listed in settings on their cron
// schedules. A task still running when its next slot arrives is skipped.
type SchedulerService struct {
	logger  logrus.FieldLogger
	timeout time.Duration

	mu      sync.Mutex
	cron    *cron.Cron
	running map[string]bool
	wg      sync.WaitGroup
}

// NewSchedulerService creates an idle scheduler
func NewSchedulerService(logger logrus.FieldLogger) *SchedulerService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &SchedulerService{
		logger:  logger,
		timeout: time.Duration(constants.TaskMaxRuntimeMins) * time.Minute,
		running: make(map[string]bool),
	}
}

// Reload replaces every scheduled entry with the tasks of settings, bound to
// the workers of reg. Invalid entries are logged and skipped.
func (s *SchedulerService) Reload(reg *registry.Registry, settings *models.ServerSettings) int {
	next := cron.New(cron.WithParser(cronParser))
	scheduled := 0
	if settings != nil {
		for _, t := range settings.Tasks {
			task, ok := registry.ResolveAs[ports.TaskWorker](reg, constants.WorkerKindTask, t.Worker)
			if !ok {
				s.logger.WithField("task", t.Worker).Warn("⚠️ Scheduled task has no worker")
				continue
			}
			if _, err := next.AddFunc(t.Schedule, s.job(t, task)); err != nil {
				s.logger.WithField("task", t.Worker).WithError(err).Warn("⚠️ Invalid task schedule")
				continue
			}
			scheduled++
		}
	}

	s.mu.Lock()
	prev := s.cron
	s.cron = next
	s.mu.Unlock()

	if prev != nil {
		prev.Stop()
	}
	next.Start()
	if scheduled > 0 {
		s.logger.WithField("tasks", scheduled).Info("⏰ Task schedule loaded")
	}
	return scheduled
}

func (s *SchedulerService) job(t models.TaskSchedule, task ports.TaskWorker) func() {
	return func() {
		if !s.acquire(t.Worker) {
			s.logger.WithField("task", t.Worker).Info("⏭️ Task already running, skipping")
			return
		}
		s.wg.Add(1)
		defer func() {
			if r := recover(); r != nil {
				s.logger.WithField("task", t.Worker).Errorf("🔥 Panic in scheduled task: %v", r)
			}
			s.release(t.Worker)
			s.wg.Done()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		args := t.Args
		if args == nil {
			args = map[string]any{}
		}
		started := time.Now()
		if _, err := task.Execute(ctx, args); err != nil {
			s.logger.WithField("task", t.Worker).WithError(err).Errorf("❌ Scheduled task failed after %v", time.Since(started))
			return
		}
		s.logger.WithField("task", t.Worker).Infof("✅ Scheduled task completed in %v", time.Since(started))
	}
}

func (s *SchedulerService) acquire(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[name] {
		return false
	}
	s.running[name] = true
	return true
}

func (s *SchedulerService) release(name string) {
	s.mu.Lock()
	delete(s.running, name)
	s.mu.Unlock()
}

// Entries returns the number of scheduled entries
func (s *SchedulerService) Entries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron == nil {
		return 0
	}
	return len(s.cron.Entries())
}

// Stop halts scheduling and waits for running tasks
func (s *SchedulerService) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
	s.wg.Wait()
}
