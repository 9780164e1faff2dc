package model

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildPlannerPrompt_ListsOperationsSorted(t *testing.T) {
	p := NewPrompts("")
	operations := map[string]string{
		"system.command": "Run a shell command.",
		"file.create":    "Create a file.",
		"echo":           "Echo text back.",
	}

	prompt := p.BuildPlannerPrompt("open firefox", operations, "")

	echoIdx := strings.Index(prompt, "- echo:")
	fileIdx := strings.Index(prompt, "- file.create:")
	sysIdx := strings.Index(prompt, "- system.command:")
	if echoIdx < 0 || fileIdx < 0 || sysIdx < 0 {
		t.Fatalf("Prompt missing operation lines:\n%s", prompt)
	}
	if !(echoIdx < fileIdx && fileIdx < sysIdx) {
		t.Error("Operations should be listed in sorted order")
	}
	if !strings.HasSuffix(prompt, "User Command: open firefox") {
		t.Errorf("Prompt should end with the user command, got:\n%s", prompt)
	}
}

func TestBuildPlannerPrompt_VisualContext(t *testing.T) {
	p := NewPrompts("")
	prompt := p.BuildPlannerPrompt("click the button", map[string]string{}, "a settings dialog is open")

	if !strings.Contains(prompt, "[Visual Context]: a settings dialog is open\nclick the button") {
		t.Errorf("Visual context not prepended to command:\n%s", prompt)
	}
}

func TestBuildPlannerPrompt_DirectoryOverride(t *testing.T) {
	dir := t.TempDir()
	custom := "Custom planner.\nOps:\n%s\nOS: %s"
	if err := os.WriteFile(filepath.Join(dir, "planner.md"), []byte(custom), 0644); err != nil {
		t.Fatal(err)
	}

	p := NewPrompts(dir)
	prompt := p.BuildPlannerPrompt("open firefox", map[string]string{"echo": "Echo."}, "")

	if !strings.HasPrefix(prompt, "Custom planner.") {
		t.Errorf("Override template not used:\n%s", prompt)
	}
	if !strings.Contains(prompt, "- echo: Echo.") {
		t.Errorf("Operations missing from override:\n%s", prompt)
	}
}

func TestBuildPlannerPrompt_MissingOverrideFallsBack(t *testing.T) {
	p := NewPrompts(t.TempDir())
	prompt := p.BuildPlannerPrompt("open firefox", map[string]string{}, "")

	if !strings.Contains(prompt, "Respond with the JSON plan only") {
		t.Errorf("Built-in template not used:\n%s", prompt)
	}
}
