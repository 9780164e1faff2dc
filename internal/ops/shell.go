package ops

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Shell provides the system.command operation: run a shell command and
// return its combined output.
type Shell struct{}

func NewShell() *Shell {
	return &Shell{}
}

func (s *Shell) Register(r *Registry) {
	r.Register(Func{"system.command", "Execute a shell command and return its output.", s.run})
}

func (s *Shell) run(ctx context.Context, params map[string]any) (any, error) {
	command, err := stringParam(params, "command")
	if err != nil {
		return nil, err
	}
	if command == "" {
		return nil, fmt.Errorf("empty command")
	}

	cmd := exec.CommandContext(ctx, "bash", "-c", command)
	output, err := cmd.CombinedOutput()

	result := strings.TrimSpace(string(output))
	if result == "" {
		result = "(no output)"
	}
	if err != nil {
		return nil, fmt.Errorf("command failed: %v\noutput: %s", err, result)
	}
	return result, nil
}
