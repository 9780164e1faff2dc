package plan

import (
	"encoding/json"
	"fmt"
)

// Metadata describes one extraction attempt. The raw model response is
// always echoed back so callers can log what the model actually said.
type Metadata struct {
	Steps        int    `json:"steps,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	Response     string `json:"response"`
}

// Extractor parses raw AI model output into a validated Plan. Model
// output is untrusted: it may be prose, partial JSON, or JSON of the
// wrong shape. Extraction failure is returned as data, never as a panic
// or an error value, so the caller's control flow stays flat.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// requiredStepFields are checked in order; the first one missing on any
// step fails the whole extraction. No partial-plan acceptance.
var requiredStepFields = []string{"step", "description", "operation", "parameters"}

// Extract validates raw text against the expected wire shape:
//
//	{"plan": [{"step": 1, "description": "...", "operation": "file.create",
//	           "parameters": {...}, "confidence": 0.98}]}
//
// On success ok is true, the plan is non-nil and metadata carries the
// step count. On failure ok is false and metadata names what was wrong.
func (e *Extractor) Extract(raw string) (bool, *Plan, Metadata) {
	var top map[string]any
	if err := json.Unmarshal([]byte(raw), &top); err != nil {
		return false, nil, Metadata{
			ErrorMessage: "Failed to parse response as JSON",
			Response:     raw,
		}
	}

	rawPlan, ok := top["plan"]
	if !ok {
		return false, nil, Metadata{
			ErrorMessage: "Invalid response format: missing plan",
			Response:     raw,
		}
	}

	list, ok := rawPlan.([]any)
	if !ok {
		return false, nil, Metadata{
			ErrorMessage: "Invalid plan format: not a list",
			Response:     raw,
		}
	}

	for _, entry := range list {
		step, ok := entry.(map[string]any)
		if !ok {
			return false, nil, Metadata{
				ErrorMessage: "Invalid step format: not an object",
				Response:     raw,
			}
		}
		for _, field := range requiredStepFields {
			if _, ok := step[field]; !ok {
				return false, nil, Metadata{
					ErrorMessage: fmt.Sprintf("Invalid step format: missing %s", field),
					Response:     raw,
				}
			}
		}
	}

	// Shape is valid; decode into typed steps. The round trip cannot
	// fail for values that survived the checks above.
	encoded, err := json.Marshal(list)
	if err != nil {
		return false, nil, Metadata{
			ErrorMessage: fmt.Sprintf("Error extracting command: %v", err),
			Response:     raw,
		}
	}
	var steps []Step
	if err := json.Unmarshal(encoded, &steps); err != nil {
		return false, nil, Metadata{
			ErrorMessage: fmt.Sprintf("Error extracting command: %v", err),
			Response:     raw,
		}
	}

	return true, &Plan{Steps: steps}, Metadata{Steps: len(steps), Response: raw}
}
