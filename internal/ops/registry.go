package ops

import (
	"context"
	"sort"
	"sync"
)

// Handler is a single named operation the executor can invoke. Handlers
// receive the step's parameter map verbatim and return an arbitrary
// payload. Returning an error (or panicking) marks the step as failed
// without aborting the rest of the plan.
type Handler interface {
	Name() string
	Description() string
	Execute(ctx context.Context, params map[string]any) (any, error)
}

// Func adapts a plain function into a Handler.
type Func struct {
	OpName string
	Desc   string
	Fn     func(ctx context.Context, params map[string]any) (any, error)
}

func (f Func) Name() string        { return f.OpName }
func (f Func) Description() string { return f.Desc }
func (f Func) Execute(ctx context.Context, params map[string]any) (any, error) {
	return f.Fn(ctx, params)
}

// Registry maps operation names to handlers. Names are matched exactly;
// the dotted "tool.method" style is a naming convention, not a rule the
// registry parses. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

func (r *Registry) Register(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[h.Name()] = h
}

// Resolve looks up a handler by operation name. A missing name is not
// an error here; the executor records unknown_operation for the step.
func (r *Registry) Resolve(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns the registered operation names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns name/description pairs for prompt construction.
func (r *Registry) Describe() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.handlers))
	for name, h := range r.handlers {
		out[name] = h.Description()
	}
	return out
}
