package ops

import (
	"context"
	"reflect"
	"testing"
)

func TestRegistry_RegisterAndResolve(t *testing.T) {
	r := NewRegistry()
	r.Register(Func{OpName: "echo", Desc: "Echo text back.", Fn: func(ctx context.Context, params map[string]any) (any, error) {
		return params["text"], nil
	}})

	h, ok := r.Resolve("echo")
	if !ok {
		t.Fatal("Expected echo to resolve")
	}
	if h.Name() != "echo" {
		t.Errorf("Name = %q", h.Name())
	}

	out, err := h.Execute(context.Background(), map[string]any{"text": "hi"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if out != "hi" {
		t.Errorf("Output = %v, want hi", out)
	}

	if _, ok := r.Resolve("missing"); ok {
		t.Error("Unregistered name should not resolve")
	}
}

func TestRegistry_RegisterOverwrites(t *testing.T) {
	r := NewRegistry()
	fn := func(ctx context.Context, params map[string]any) (any, error) { return nil, nil }
	r.Register(Func{OpName: "op", Desc: "old", Fn: fn})
	r.Register(Func{OpName: "op", Desc: "new", Fn: fn})

	h, _ := r.Resolve("op")
	if h.Description() != "new" {
		t.Errorf("Description = %q, want new", h.Description())
	}
	if len(r.Names()) != 1 {
		t.Errorf("Names = %v", r.Names())
	}
}

func TestRegistry_NamesSorted(t *testing.T) {
	r := NewRegistry()
	fn := func(ctx context.Context, params map[string]any) (any, error) { return nil, nil }
	for _, name := range []string{"system.command", "file.create", "echo"} {
		r.Register(Func{OpName: name, Fn: fn})
	}

	want := []string{"echo", "file.create", "system.command"}
	if got := r.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names = %v, want %v", got, want)
	}
}

func TestRegistry_Describe(t *testing.T) {
	r := NewRegistry()
	fn := func(ctx context.Context, params map[string]any) (any, error) { return nil, nil }
	r.Register(Func{OpName: "file.read", Desc: "Read a file.", Fn: fn})
	r.Register(Func{OpName: "file.create", Desc: "Create a file.", Fn: fn})

	want := map[string]string{
		"file.read":   "Read a file.",
		"file.create": "Create a file.",
	}
	if got := r.Describe(); !reflect.DeepEqual(got, want) {
		t.Errorf("Describe = %v, want %v", got, want)
	}
}

func TestStringParam(t *testing.T) {
	params := map[string]any{"filename": "a.txt", "count": 3}

	if v, err := stringParam(params, "filename"); err != nil || v != "a.txt" {
		t.Errorf("stringParam = %q, %v", v, err)
	}
	if _, err := stringParam(params, "missing"); err == nil {
		t.Error("Expected error for missing parameter")
	}
	if _, err := stringParam(params, "count"); err == nil {
		t.Error("Expected error for wrong type")
	}
}

func TestOptStringParam(t *testing.T) {
	params := map[string]any{"directory": "docs", "count": 3}

	if v := optStringParam(params, "directory", "."); v != "docs" {
		t.Errorf("optStringParam = %q", v)
	}
	if v := optStringParam(params, "missing", "."); v != "." {
		t.Errorf("optStringParam fallback = %q", v)
	}
	if v := optStringParam(params, "count", "."); v != "." {
		t.Errorf("optStringParam wrong type = %q", v)
	}
}

func TestIntParam(t *testing.T) {
	// JSON decoding yields float64 for numbers.
	params := map[string]any{"x": float64(42), "y": 7, "s": "nope"}

	if v := intParam(params, "x", 0); v != 42 {
		t.Errorf("intParam float64 = %d", v)
	}
	if v := intParam(params, "y", 0); v != 7 {
		t.Errorf("intParam int = %d", v)
	}
	if v := intParam(params, "s", 9); v != 9 {
		t.Errorf("intParam fallback = %d", v)
	}
	if v := intParam(params, "missing", 9); v != 9 {
		t.Errorf("intParam missing = %d", v)
	}
}

func TestFiles_RejectsPathEscape(t *testing.T) {
	dir := t.TempDir()
	f := NewFiles(dir)

	_, err := f.read(context.Background(), map[string]any{"filename": "../outside.txt"})
	if err == nil {
		t.Fatal("Expected error for path escaping the workspace")
	}
	if err.Error() != "unsafe path attempt: ../outside.txt" {
		t.Errorf("Error = %q", err)
	}
}

func TestFiles_AppendAndList(t *testing.T) {
	dir := t.TempDir()
	f := NewFiles(dir)
	ctx := context.Background()

	if _, err := f.create(ctx, map[string]any{"filename": "log.txt", "content": "a"}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.appendTo(ctx, map[string]any{"filename": "log.txt", "content": "b"}); err != nil {
		t.Fatal(err)
	}

	out, err := f.read(ctx, map[string]any{"filename": "log.txt"})
	if err != nil {
		t.Fatal(err)
	}
	if out != "ab" {
		t.Errorf("Content = %v, want ab", out)
	}

	listing, err := f.list(ctx, map[string]any{})
	if err != nil {
		t.Fatal(err)
	}
	if listing != "[file] log.txt\n" {
		t.Errorf("Listing = %q", listing)
	}
}
