package plan

import "fmt"

// Step statuses recorded by the executor. A step starts out pending and
// ends in exactly one of the terminal states.
const (
	StatusSuccess          = "success"
	StatusError            = "error"
	StatusSkipped          = "skipped"
	StatusUnknownOperation = "unknown_operation"
)

// Step is one executable unit within a Plan. The step number and
// description are diagnostic only; the executor runs steps in the order
// they appear in the plan, not by number.
type Step struct {
	Step        any            `json:"step"`
	Description string         `json:"description"`
	Operation   string         `json:"operation"`
	Parameters  map[string]any `json:"parameters"`
	Confidence  float64        `json:"confidence"`

	// Condition and the on_success/on_failure hints are carried from the
	// model output but the executor does not branch on them. A caller may
	// supply a condition hook; without one every step runs.
	Condition string `json:"condition,omitempty"`
	OnSuccess []any  `json:"on_success,omitempty"`
	OnFailure []any  `json:"on_failure,omitempty"`
}

// Plan is the ordered sequence of steps the model produced for one
// command. Never mutated after extraction.
type Plan struct {
	Steps []Step `json:"plan"`
}

// Interpreted wraps a Plan with interpretation-level metadata.
// Alternatives hold rejected lower-ranked plans, kept for audit only.
type Interpreted struct {
	Plan              *Plan
	OverallConfidence float64
	Alternatives      []map[string]any
	Language          string
}

// StepResult records the outcome of executing one step. Output is the
// handler's return payload when the step succeeded; Error carries the
// failure text when it did not.
type StepResult struct {
	Step        any    `json:"step"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Output      any    `json:"output,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Summary renders results in the user-facing per-step format:
// "Step N: description - status" with an indented error line when the
// step failed.
func Summary(results []StepResult) string {
	out := ""
	for i, res := range results {
		if i > 0 {
			out += "\n"
		}
		out += fmt.Sprintf("Step %v: %s - %s", res.Step, res.Description, res.Status)
		if res.Error != "" {
			out += fmt.Sprintf("\n  Error: %s", res.Error)
		}
	}
	return out
}

// AllSucceeded reports whether every step in the run ended in success.
// The executor itself does not enforce this; overall-success policy
// belongs to the caller.
func AllSucceeded(results []StepResult) bool {
	for _, res := range results {
		if res.Status != StatusSuccess {
			return false
		}
	}
	return true
}
