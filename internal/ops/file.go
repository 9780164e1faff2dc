package ops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Files provides the file.* operations, all rooted at a workspace
// directory. Paths that resolve outside the workspace are rejected.
type Files struct {
	Root string
}

func NewFiles(root string) *Files {
	absRoot, _ := filepath.Abs(root)
	return &Files{Root: absRoot}
}

// Register wires the file operations into the registry.
func (f *Files) Register(r *Registry) {
	r.Register(Func{"file.create", "Create a file with the given content in the workspace.", f.create})
	r.Register(Func{"file.read", "Read a file from the workspace and return its content.", f.read})
	r.Register(Func{"file.append", "Append content to an existing workspace file.", f.appendTo})
	r.Register(Func{"file.delete", "Delete a file from the workspace.", f.delete})
	r.Register(Func{"file.list", "List the entries of a workspace directory.", f.list})
	r.Register(Func{"file.mkdir", "Create a directory inside the workspace.", f.mkdir})
}

func (f *Files) resolve(name string) (string, error) {
	target := filepath.Join(f.Root, name)
	rel, err := filepath.Rel(f.Root, target)
	if err != nil || (len(rel) >= 2 && rel[:2] == "..") {
		return "", fmt.Errorf("unsafe path attempt: %s", name)
	}
	return target, nil
}

func (f *Files) create(ctx context.Context, params map[string]any) (any, error) {
	filename, err := stringParam(params, "filename")
	if err != nil {
		return nil, err
	}
	content := optStringParam(params, "content", "")
	target, err := f.resolve(filename)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(target, []byte(content), 0644); err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	return fmt.Sprintf("Successfully wrote to %s", filename), nil
}

func (f *Files) read(ctx context.Context, params map[string]any) (any, error) {
	filename, err := stringParam(params, "filename")
	if err != nil {
		return nil, err
	}
	target, err := f.resolve(filename)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return string(data), nil
}

func (f *Files) appendTo(ctx context.Context, params map[string]any) (any, error) {
	filename, err := stringParam(params, "filename")
	if err != nil {
		return nil, err
	}
	content, err := stringParam(params, "content")
	if err != nil {
		return nil, err
	}
	target, err := f.resolve(filename)
	if err != nil {
		return nil, err
	}
	fh, err := os.OpenFile(target, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer fh.Close()
	if _, err := fh.WriteString(content); err != nil {
		return nil, fmt.Errorf("failed to append to file: %w", err)
	}
	return fmt.Sprintf("Successfully appended to %s", filename), nil
}

func (f *Files) delete(ctx context.Context, params map[string]any) (any, error) {
	filename, err := stringParam(params, "filename")
	if err != nil {
		return nil, err
	}
	target, err := f.resolve(filename)
	if err != nil {
		return nil, err
	}
	if err := os.Remove(target); err != nil {
		return nil, fmt.Errorf("failed to delete: %w", err)
	}
	return fmt.Sprintf("Successfully deleted %s", filename), nil
}

func (f *Files) list(ctx context.Context, params map[string]any) (any, error) {
	dir := optStringParam(params, "directory", ".")
	target, err := f.resolve(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(target)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory: %w", err)
	}
	var output string
	for _, entry := range entries {
		typeStr := "file"
		if entry.IsDir() {
			typeStr = "dir"
		}
		output += fmt.Sprintf("[%s] %s\n", typeStr, entry.Name())
	}
	if output == "" {
		return "Directory is empty", nil
	}
	return output, nil
}

func (f *Files) mkdir(ctx context.Context, params map[string]any) (any, error) {
	dir, err := stringParam(params, "directory")
	if err != nil {
		return nil, err
	}
	target, err := f.resolve(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(target, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	return fmt.Sprintf("Successfully created directory %s", dir), nil
}
