package ops

import "context"

// RegisterEcho wires the echo fallback operation: it returns the text
// parameter unchanged. The planner emits it when no better operation
// matches a command.
func RegisterEcho(r *Registry) {
	r.Register(Func{"echo", "Echo the given text back unchanged.", func(ctx context.Context, params map[string]any) (any, error) {
		return params["text"], nil
	}})
}
