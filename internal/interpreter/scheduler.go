package interpreter

import (
	"context"
	"fmt"
	"time"

	"github.com/labeeb-ai/labeeb/internal/store"
	"github.com/rs/zerolog"
)

// Messenger delivers scheduled-run output back to the user.
type Messenger interface {
	Send(chatID string, text string) error
}

// TaskStore is the surface the scheduler needs from the history store.
type TaskStore interface {
	GetPendingTasks() ([]store.Task, error)
	UpdateTaskLastRun(id int) error
	DeleteTask(chatID string, taskID int) error
}

// Scheduler polls for due tasks and runs their commands through the
// processor, pushing each run's summary out via the gateway.
type Scheduler struct {
	Processor *Processor
	Store     TaskStore
	Gateway   Messenger
	Logger    zerolog.Logger
	Interval  time.Duration
}

func NewScheduler(processor *Processor, taskStore TaskStore, gateway Messenger, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		Processor: processor,
		Store:     taskStore,
		Gateway:   gateway,
		Logger:    logger,
		Interval:  30 * time.Second,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Logger.Info().Msg("task scheduler started")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pollAndExecute(ctx)
		}
	}
}

func (s *Scheduler) pollAndExecute(ctx context.Context) {
	tasks, err := s.Store.GetPendingTasks()
	if err != nil {
		s.Logger.Error().Err(err).Msg("error polling tasks")
		return
	}

	for _, t := range tasks {
		s.Logger.Info().Int("task", t.ID).Str("command", t.Command).Msg("executing scheduled task")

		result, err := s.Processor.Run(ctx, t.Command)
		if err != nil {
			s.Logger.Error().Int("task", t.ID).Err(err).Msg("scheduled task failed")
			continue
		}

		if err := s.Store.UpdateTaskLastRun(t.ID); err != nil {
			s.Logger.Error().Int("task", t.ID).Err(err).Msg("error updating last run")
		}

		// One-time tasks (interval 0) are removed after their run.
		if t.IntervalSeconds == 0 {
			if err := s.Store.DeleteTask(t.ChatID, t.ID); err != nil {
				s.Logger.Error().Int("task", t.ID).Err(err).Msg("error deleting one-time task")
			}
		}

		if s.Gateway != nil {
			text := result.Summary
			if text == "" {
				text = result.Response
			}
			if err := s.Gateway.Send(t.ChatID, fmt.Sprintf("Scheduled task output:\n\n%s", text)); err != nil {
				s.Logger.Error().Int("task", t.ID).Err(err).Msg("error notifying user")
			}
		}
	}
}
