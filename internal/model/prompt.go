package model

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

const defaultPlannerTemplate = `You are Labeeb, an AI assistant that helps users automate their desktop. Follow these guidelines:

1. Command Processing:
   - Focus on executing commands, not providing feedback
   - Break down complex commands into clear, sequential steps
   - Each step should have a clear description and one operation

2. Response Format:
   Always respond with JSON in this exact shape:
   {
     "plan": [
       {
         "step": 1,
         "description": "Clear description of what this step does",
         "operation": "file.create",
         "parameters": {"filename": "test.txt", "content": "hello"},
         "confidence": 0.98
       }
     ]
   }

3. Available Operations:
%s

4. System Information:
   Current system: %s

Remember:
- Respond with the JSON plan only, no surrounding prose
- Include a confidence score between 0.0 and 1.0 for every step
- Break down complex commands into multiple steps
- Only use the operations listed above`

// Prompts builds the planner prompt sent to the model. A prompt
// directory may override the built-in template with a planner.md file,
// mirroring how operators customize the agent's instructions.
type Prompts struct {
	Directory string
}

func NewPrompts(dir string) *Prompts {
	return &Prompts{Directory: dir}
}

// plannerTemplate returns the override from planner.md when present,
// otherwise the built-in template.
func (p *Prompts) plannerTemplate() string {
	if p.Directory == "" {
		return defaultPlannerTemplate
	}
	data, err := os.ReadFile(filepath.Join(p.Directory, "planner.md"))
	if err != nil {
		return defaultPlannerTemplate
	}
	return string(data)
}

// BuildPlannerPrompt renders the full prompt for one command.
// operations maps operation names to their descriptions; extraContext,
// when non-empty, is prepended to the command as visual context.
func (p *Prompts) BuildPlannerPrompt(command string, operations map[string]string, extraContext string) string {
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	sort.Strings(names)

	var opsList strings.Builder
	for _, name := range names {
		fmt.Fprintf(&opsList, "   - %s: %s\n", name, operations[name])
	}

	prompt := fmt.Sprintf(p.plannerTemplate(), strings.TrimRight(opsList.String(), "\n"), runtime.GOOS)

	if extraContext != "" {
		command = fmt.Sprintf("[Visual Context]: %s\n%s", extraContext, command)
	}
	return fmt.Sprintf("%s\n\nUser Command: %s", prompt, command)
}
