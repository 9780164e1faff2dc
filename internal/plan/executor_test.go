package plan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/labeeb-ai/labeeb/internal/governance"
	"github.com/labeeb-ai/labeeb/internal/ops"
	"github.com/rs/zerolog"
)

func newTestExecutor(registry *ops.Registry) *Executor {
	return NewExecutor(registry, nil, zerolog.Nop())
}

func step(id int, desc, operation string, params map[string]any) Step {
	if params == nil {
		params = map[string]any{}
	}
	return Step{Step: id, Description: desc, Operation: operation, Parameters: params}
}

func TestExecute_PartialFailureIsolation(t *testing.T) {
	registry := ops.NewRegistry()
	var calls []string
	registry.Register(ops.Func{OpName: "good", Fn: func(ctx context.Context, params map[string]any) (any, error) {
		calls = append(calls, "good")
		return "ok", nil
	}})
	registry.Register(ops.Func{OpName: "bad", Fn: func(ctx context.Context, params map[string]any) (any, error) {
		calls = append(calls, "bad")
		return nil, errors.New("disk on fire")
	}})

	p := &Plan{Steps: []Step{
		step(1, "first", "good", nil),
		step(2, "second", "bad", nil),
		step(3, "third", "good", nil),
	}}

	results := newTestExecutor(registry).Execute(context.Background(), p)

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if results[0].Status != StatusSuccess {
		t.Errorf("Step 1 status = %s, want success", results[0].Status)
	}
	if results[1].Status != StatusError {
		t.Errorf("Step 2 status = %s, want error", results[1].Status)
	}
	if results[1].Error != "disk on fire" {
		t.Errorf("Step 2 error = %q", results[1].Error)
	}
	if results[2].Status != StatusSuccess {
		t.Errorf("Step 3 status = %s, want success", results[2].Status)
	}
	if len(calls) != 3 {
		t.Errorf("Expected all 3 handlers invoked, got %d", len(calls))
	}
	if AllSucceeded(results) {
		t.Error("AllSucceeded should be false for a run with an error")
	}
}

func TestExecute_UnknownOperation(t *testing.T) {
	registry := ops.NewRegistry()
	registry.Register(ops.Func{OpName: "known", Fn: func(ctx context.Context, params map[string]any) (any, error) {
		return "ok", nil
	}})

	p := &Plan{Steps: []Step{
		step(1, "run something missing", "nope.nothing", nil),
		step(2, "run something known", "known", nil),
	}}

	results := newTestExecutor(registry).Execute(context.Background(), p)

	if results[0].Status != StatusUnknownOperation {
		t.Errorf("Step 1 status = %s, want unknown_operation", results[0].Status)
	}
	if results[0].Output != "Unknown operation: nope.nothing" {
		t.Errorf("Step 1 output = %v", results[0].Output)
	}
	if results[1].Status != StatusSuccess {
		t.Errorf("Step 2 status = %s, want success", results[1].Status)
	}
}

func TestExecute_PanicContainment(t *testing.T) {
	registry := ops.NewRegistry()
	registry.Register(ops.Func{OpName: "boom", Fn: func(ctx context.Context, params map[string]any) (any, error) {
		panic("unexpected nil")
	}})

	p := &Plan{Steps: []Step{step(1, "explode", "boom", nil)}}
	results := newTestExecutor(registry).Execute(context.Background(), p)

	if results[0].Status != StatusError {
		t.Fatalf("Status = %s, want error", results[0].Status)
	}
	if results[0].Error != "operation panicked: unexpected nil" {
		t.Errorf("Error = %q", results[0].Error)
	}
}

func TestExecute_ConditionsInertByDefault(t *testing.T) {
	// Without a caller-supplied condition hook, condition expressions
	// and the on_success/on_failure hints have no effect: every step
	// runs in sequence.
	registry := ops.NewRegistry()
	count := 0
	registry.Register(ops.Func{OpName: "counter", Fn: func(ctx context.Context, params map[string]any) (any, error) {
		count++
		return count, nil
	}})

	p := &Plan{Steps: []Step{
		{Step: 1, Description: "a", Operation: "counter", Parameters: map[string]any{}, Condition: "some_condition"},
		{Step: 2, Description: "b", Operation: "counter", Parameters: map[string]any{}, OnFailure: []any{1}},
	}}

	results := newTestExecutor(registry).Execute(context.Background(), p)
	if count != 2 {
		t.Errorf("Expected both steps to run, got %d invocations", count)
	}
	for i, res := range results {
		if res.Status != StatusSuccess {
			t.Errorf("Step %d status = %s, want success", i+1, res.Status)
		}
	}
}

func TestExecute_ConditionHookSkips(t *testing.T) {
	registry := ops.NewRegistry()
	invoked := false
	registry.Register(ops.Func{OpName: "guarded", Fn: func(ctx context.Context, params map[string]any) (any, error) {
		invoked = true
		return "ran", nil
	}})

	e := newTestExecutor(registry)
	e.Condition = func(condition string, prior []StepResult) bool { return false }

	p := &Plan{Steps: []Step{
		{Step: 1, Description: "guarded step", Operation: "guarded", Parameters: map[string]any{}, Condition: "never"},
	}}

	results := e.Execute(context.Background(), p)
	if invoked {
		t.Error("Handler should not run when condition evaluates false")
	}
	if results[0].Status != StatusSkipped {
		t.Errorf("Status = %s, want skipped", results[0].Status)
	}
}

func TestExecute_PolicyDenial(t *testing.T) {
	registry := ops.NewRegistry()
	invoked := false
	registry.Register(ops.Func{OpName: "system.command", Fn: func(ctx context.Context, params map[string]any) (any, error) {
		invoked = true
		return "ran", nil
	}})

	gov := governance.NewDefaultPolicyEngine()
	if err := gov.DenyParameters(`rm\s+-rf`); err != nil {
		t.Fatal(err)
	}

	e := NewExecutor(registry, gov, zerolog.Nop())
	p := &Plan{Steps: []Step{
		step(1, "wipe disk", "system.command", map[string]any{"command": "rm -rf /"}),
	}}

	results := e.Execute(context.Background(), p)
	if invoked {
		t.Error("Denied handler should not run")
	}
	if results[0].Status != StatusError {
		t.Errorf("Status = %s, want error", results[0].Status)
	}
}

func TestExecute_ContextCancellation(t *testing.T) {
	registry := ops.NewRegistry()
	var calls int
	ctx, cancel := context.WithCancel(context.Background())
	registry.Register(ops.Func{OpName: "slow", Fn: func(ctx context.Context, params map[string]any) (any, error) {
		calls++
		cancel()
		return "done", nil
	}})

	p := &Plan{Steps: []Step{
		step(1, "first", "slow", nil),
		step(2, "second", "slow", nil),
	}}

	results := newTestExecutor(registry).Execute(ctx, p)
	if calls != 1 {
		t.Errorf("Expected only the first handler to run, got %d", calls)
	}
	if results[0].Status != StatusSuccess {
		t.Errorf("Step 1 status = %s, want success", results[0].Status)
	}
	if results[1].Status != StatusError {
		t.Errorf("Step 2 status = %s, want error", results[1].Status)
	}
	if results[1].Error != context.Canceled.Error() {
		t.Errorf("Step 2 error = %q", results[1].Error)
	}
}

func TestExecute_CreateThenReadFile(t *testing.T) {
	dir := t.TempDir()
	registry := ops.NewRegistry()
	files := ops.NewFiles(dir)
	files.Register(registry)

	p := &Plan{Steps: []Step{
		step(1, "Create a file named test.txt", "file.create",
			map[string]any{"filename": "test.txt", "content": "hello"}),
		step(2, "Read the file test.txt", "file.read",
			map[string]any{"filename": "test.txt"}),
	}}

	results := newTestExecutor(registry).Execute(context.Background(), p)

	if data, err := os.ReadFile(filepath.Join(dir, "test.txt")); err != nil || string(data) != "hello" {
		t.Fatalf("file.create side effect missing: %v %q", err, data)
	}
	if results[1].Output != "hello" {
		t.Errorf("file.read output = %v, want hello", results[1].Output)
	}

	want := "Step 1: Create a file named test.txt - success\nStep 2: Read the file test.txt - success"
	if got := Summary(results); got != want {
		t.Errorf("Summary = %q, want %q", got, want)
	}
}

func TestSummary_IncludesErrorLine(t *testing.T) {
	results := []StepResult{
		{Step: 1, Description: "good step", Status: StatusSuccess},
		{Step: 2, Description: "bad step", Status: StatusError, Error: "boom"},
	}
	want := "Step 1: good step - success\nStep 2: bad step - error\n  Error: boom"
	if got := Summary(results); got != want {
		t.Errorf("Summary = %q, want %q", got, want)
	}
}

func TestExecute_EmptyRegistry(t *testing.T) {
	p := &Plan{Steps: []Step{step(1, "anything", "file.create", nil)}}
	results := newTestExecutor(ops.NewRegistry()).Execute(context.Background(), p)
	if results[0].Status != StatusUnknownOperation {
		t.Errorf("Status = %s, want unknown_operation", results[0].Status)
	}
	if fmt.Sprint(results[0].Output) != "Unknown operation: file.create" {
		t.Errorf("Output = %v", results[0].Output)
	}
}
