package governance

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
)

// Effect defines the result of a policy evaluation.
type Effect string

const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
)

// Request contains the context of a plan step to be evaluated before it
// executes.
type Request struct {
	Operation  string
	Parameters map[string]any
}

// Result contains the outcome of a policy evaluation.
type Result struct {
	Effect Effect
	Reason string
}

// PolicyEngine evaluates plan steps against a set of rules.
type PolicyEngine interface {
	Evaluate(ctx context.Context, req Request) (Result, error)
}

// DefaultPolicyEngine is a basic implementation of PolicyEngine: an
// operation deny list plus deny regexes matched against the serialized
// parameters.
type DefaultPolicyEngine struct {
	DeniedOps   map[string]bool
	DeniedRegex []*regexp.Regexp
}

func NewDefaultPolicyEngine() *DefaultPolicyEngine {
	return &DefaultPolicyEngine{
		DeniedOps:   make(map[string]bool),
		DeniedRegex: make([]*regexp.Regexp, 0),
	}
}

func (e *DefaultPolicyEngine) DenyOperation(name string) {
	e.DeniedOps[name] = true
}

func (e *DefaultPolicyEngine) DenyParameters(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	e.DeniedRegex = append(e.DeniedRegex, re)
	return nil
}

func (e *DefaultPolicyEngine) Evaluate(ctx context.Context, req Request) (Result, error) {
	if e.DeniedOps[req.Operation] {
		return Result{
			Effect: EffectDeny,
			Reason: fmt.Sprintf("Operation '%s' is restricted by system policy", req.Operation),
		}, nil
	}

	serialized, err := json.Marshal(req.Parameters)
	if err != nil {
		return Result{}, fmt.Errorf("failed to serialize parameters: %w", err)
	}

	for _, re := range e.DeniedRegex {
		if re.Match(serialized) {
			return Result{
				Effect: EffectDeny,
				Reason: fmt.Sprintf("Parameters match restricted pattern: %s", re.String()),
			}, nil
		}
	}

	return Result{
		Effect: EffectAllow,
		Reason: "Approved by default policy",
	}, nil
}
