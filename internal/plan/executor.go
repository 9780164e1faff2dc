package plan

import (
	"context"
	"fmt"

	"github.com/labeeb-ai/labeeb/internal/governance"
	"github.com/labeeb-ai/labeeb/internal/ops"
	"github.com/rs/zerolog"
)

// ConditionFunc decides whether a step with a non-empty condition
// expression should run, given the results of the steps before it.
type ConditionFunc func(condition string, prior []StepResult) bool

// Executor runs a plan's steps strictly in sequence against the
// operation registry. One step's failure never aborts the run; later
// steps may depend on earlier side effects, so there is no parallelism
// and no reordering.
type Executor struct {
	Registry *ops.Registry
	Policy   governance.PolicyEngine
	Logger   zerolog.Logger

	// Condition is the caller-supplied condition hook. When nil,
	// condition expressions are ignored and every step runs.
	Condition ConditionFunc
}

func NewExecutor(registry *ops.Registry, policy governance.PolicyEngine, logger zerolog.Logger) *Executor {
	return &Executor{
		Registry: registry,
		Policy:   policy,
		Logger:   logger,
	}
}

// Execute runs every step of the plan and returns one StepResult per
// step, in plan order. Results never come back short: steps that could
// not run (cancellation, denial, unknown operation) still get a result.
func (e *Executor) Execute(ctx context.Context, p *Plan) []StepResult {
	results := make([]StepResult, 0, len(p.Steps))

	for _, step := range p.Steps {
		res := StepResult{Step: step.Step, Description: step.Description}

		if err := ctx.Err(); err != nil {
			res.Status = StatusError
			res.Error = err.Error()
			results = append(results, res)
			continue
		}

		if step.Condition != "" && e.Condition != nil && !e.Condition(step.Condition, results) {
			res.Status = StatusSkipped
			results = append(results, res)
			continue
		}

		handler, ok := e.Registry.Resolve(step.Operation)
		if !ok {
			res.Status = StatusUnknownOperation
			res.Output = fmt.Sprintf("Unknown operation: %s", step.Operation)
			e.Logger.Warn().Str("operation", step.Operation).Msg("unknown operation in plan")
			results = append(results, res)
			continue
		}

		if e.Policy != nil {
			verdict, err := e.Policy.Evaluate(ctx, governance.Request{
				Operation:  step.Operation,
				Parameters: step.Parameters,
			})
			if err != nil {
				res.Status = StatusError
				res.Error = fmt.Sprintf("policy evaluation failed: %v", err)
				results = append(results, res)
				continue
			}
			if verdict.Effect == governance.EffectDeny {
				res.Status = StatusError
				res.Error = verdict.Reason
				e.Logger.Warn().Str("operation", step.Operation).Str("reason", verdict.Reason).Msg("step denied by policy")
				results = append(results, res)
				continue
			}
		}

		e.Logger.Debug().Str("operation", step.Operation).Interface("step", step.Step).Msg("executing step")

		output, err := invoke(ctx, handler, step.Parameters)
		if err != nil {
			res.Status = StatusError
			res.Error = err.Error()
			e.Logger.Warn().Str("operation", step.Operation).Err(err).Msg("step failed")
		} else {
			res.Status = StatusSuccess
			res.Output = output
		}
		results = append(results, res)
	}

	return results
}

// invoke calls the handler with panic containment: a panicking handler
// is recorded as a failed step, not a crashed run.
func invoke(ctx context.Context, handler ops.Handler, params map[string]any) (output any, err error) {
	defer func() {
		if r := recover(); r != nil {
			output = nil
			err = fmt.Errorf("operation panicked: %v", r)
		}
	}()
	return handler.Execute(ctx, params)
}
