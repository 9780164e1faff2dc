package ops

import (
	"context"
	"fmt"
)

// TaskStore is the surface the scheduling operations need from the
// history store.
type TaskStore interface {
	AddTask(chatID, command string, intervalSeconds int) error
	ClearTasks(chatID string) error
}

// Tasks provides task.schedule and task.clear: recurring commands the
// scheduler replays through the pipeline.
type Tasks struct {
	Store TaskStore
}

func NewTasks(store TaskStore) *Tasks {
	return &Tasks{Store: store}
}

func (t *Tasks) Register(r *Registry) {
	r.Register(Func{"task.schedule", "Schedule a command to run on an interval (0 for one-shot).", t.schedule})
	r.Register(Func{"task.clear", "Clear all scheduled tasks for a chat.", t.clear})
}

func (t *Tasks) schedule(ctx context.Context, params map[string]any) (any, error) {
	command, err := stringParam(params, "command")
	if err != nil {
		return nil, err
	}
	chatID := optStringParam(params, "chat_id", "local")
	interval := intParam(params, "interval_seconds", 0)

	if err := t.Store.AddTask(chatID, command, interval); err != nil {
		return nil, fmt.Errorf("failed to schedule task: %w", err)
	}
	return fmt.Sprintf("Scheduled task: %s (every %ds)", command, interval), nil
}

func (t *Tasks) clear(ctx context.Context, params map[string]any) (any, error) {
	chatID := optStringParam(params, "chat_id", "local")
	if err := t.Store.ClearTasks(chatID); err != nil {
		return nil, fmt.Errorf("failed to clear tasks: %w", err)
	}
	return "Cleared all scheduled tasks", nil
}
