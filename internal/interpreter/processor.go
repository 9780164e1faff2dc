package interpreter

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/labeeb-ai/labeeb/internal/cache"
	"github.com/labeeb-ai/labeeb/internal/model"
	"github.com/labeeb-ai/labeeb/internal/observability"
	"github.com/labeeb-ai/labeeb/internal/plan"
	"github.com/rs/zerolog"
)

// History is the narrow surface the processor needs from the store.
type History interface {
	AddCommand(command, language string) error
	AddInteraction(command, response string) error
}

// Processor is the orchestrating façade over the command pipeline:
// cache lookup, model call, plan extraction, execution, history.
//
// Contract: Process extracts and caches but does not execute; Run is
// the full command-to-effect pipeline. Both cache the raw model
// response keyed by the command text, so a second identical command
// inside the TTL returns the previous raw response verbatim without
// calling the model or replaying any step's side effects.
type Processor struct {
	Model     model.Client
	Extractor *plan.Extractor
	Executor  *plan.Executor
	Cache     *cache.ResponseCache
	History   History
	Prompts   *model.Prompts
	Logger    zerolog.Logger

	// Transcript, when set, records every raw model exchange.
	Transcript *observability.Transcript

	// MinConfidence rejects plans whose overall confidence falls below
	// the threshold before any step runs. Zero disables the check; the
	// executor itself never enforces confidence.
	MinConfidence float64
}

// RunResult is the aggregate outcome of one Run call.
type RunResult struct {
	RunID      string            `json:"run_id"`
	Command    string            `json:"command"`
	Language   string            `json:"language"`
	Confidence float64           `json:"confidence"`
	Response   string            `json:"response"`
	Results    []plan.StepResult `json:"results,omitempty"`
	Summary    string            `json:"summary,omitempty"`
	Cached     bool              `json:"cached"`
}

func NewProcessor(m model.Client, executor *plan.Executor, c *cache.ResponseCache, history History, prompts *model.Prompts, logger zerolog.Logger) *Processor {
	return &Processor{
		Model:     m,
		Extractor: plan.NewExtractor(),
		Executor:  executor,
		Cache:     c,
		History:   history,
		Prompts:   prompts,
		Logger:    logger,
	}
}

// interpret obtains a validated plan for a command: cache lookup,
// model call, extraction, cache write and history append. When the
// response came from the cache, the returned Interpreted is nil and
// cached is true; nothing is re-extracted on a hit.
func (p *Processor) interpret(ctx context.Context, command, extraContext string) (raw string, in *plan.Interpreted, cached bool, err error) {
	language := DetectLanguage(command)
	key := cache.Key(command)

	if hit, ok := p.Cache.Get(key); ok {
		p.Logger.Debug().Str("command", command).Msg("cache hit")
		return hit, nil, true, nil
	}

	prompt := p.Prompts.BuildPlannerPrompt(command, p.Executor.Registry.Describe(), extraContext)
	raw, err = p.Model.Generate(ctx, prompt)
	if err != nil {
		return "", nil, false, fmt.Errorf("failed to process command: %w", err)
	}
	if p.Transcript != nil {
		p.Transcript.Record(command, prompt, raw)
	}

	ok, pl, meta := p.Extractor.Extract(raw)
	if !ok {
		p.Logger.Warn().Str("error", meta.ErrorMessage).Msg("command extraction failed")
		return "", nil, false, fmt.Errorf("failed to extract command: %s", meta.ErrorMessage)
	}
	p.Logger.Debug().Int("steps", meta.Steps).Msg("plan extracted")

	p.Cache.Set(key, raw)
	if err := p.History.AddCommand(command, language); err != nil {
		p.Logger.Warn().Err(err).Msg("failed to record command history")
	}
	if err := p.History.AddInteraction(command, raw); err != nil {
		p.Logger.Warn().Err(err).Msg("failed to record interaction")
	}

	return raw, &plan.Interpreted{
		Plan:              pl,
		OverallConfidence: overallConfidence(pl),
		Language:          language,
	}, false, nil
}

// Process validates and caches the model's plan for a command and
// returns the raw response. It does not execute any step.
func (p *Processor) Process(ctx context.Context, command string) (string, error) {
	raw, _, _, err := p.interpret(ctx, command, "")
	return raw, err
}

// Run is the full pipeline: interpret the command, execute the plan,
// and aggregate per-step results. On a cache hit the previously cached
// raw response is returned as-is and no step is executed again.
func (p *Processor) Run(ctx context.Context, command string) (*RunResult, error) {
	return p.RunWithContext(ctx, command, "")
}

// RunWithContext is Run with extra context (e.g. a screen description)
// prepended to the planner prompt.
func (p *Processor) RunWithContext(ctx context.Context, command, extraContext string) (*RunResult, error) {
	result := &RunResult{
		RunID:    uuid.NewString(),
		Command:  command,
		Language: DetectLanguage(command),
	}

	observability.SetStatus(observability.PhasePlanning, command)
	defer observability.SetStatus(observability.PhaseIdle, "")

	raw, in, cached, err := p.interpret(ctx, command, extraContext)
	if err != nil {
		return nil, err
	}
	result.Response = raw
	result.Cached = cached
	if cached {
		return result, nil
	}

	result.Confidence = in.OverallConfidence
	if p.MinConfidence > 0 && in.OverallConfidence < p.MinConfidence {
		return nil, fmt.Errorf("plan confidence %.2f below threshold %.2f", in.OverallConfidence, p.MinConfidence)
	}

	observability.SetStatus(observability.PhaseExecuting, command)
	result.Results = p.Executor.Execute(ctx, in.Plan)
	result.Summary = plan.Summary(result.Results)
	return result, nil
}

// overallConfidence is the mean step confidence; 0 for an empty plan.
func overallConfidence(pl *plan.Plan) float64 {
	if len(pl.Steps) == 0 {
		return 0
	}
	var sum float64
	for _, s := range pl.Steps {
		sum += s.Confidence
	}
	return sum / float64(len(pl.Steps))
}
