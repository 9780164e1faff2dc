package model

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Options are the sampling settings passed on every generation call.
type Options struct {
	Temperature float64
	TopP        float64
	TopK        int
	MaxTokens   int
}

// DefaultOptions match the planner's conservative defaults: low
// temperature, bounded output.
func DefaultOptions() Options {
	return Options{Temperature: 0.1, TopP: 0.95, TopK: 40, MaxTokens: 1024}
}

// Client is the narrow surface the command processor needs from an AI
// model: one prompt in, raw text out. Failures propagate as errors and
// abort the command at the processor level.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// LLMClient adapts a langchaingo model to the Client interface.
type LLMClient struct {
	model llms.Model
	opts  Options
}

func NewLLMClient(m llms.Model, opts Options) *LLMClient {
	return &LLMClient{model: m, opts: opts}
}

func (c *LLMClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt,
		llms.WithTemperature(c.opts.Temperature),
		llms.WithTopP(c.opts.TopP),
		llms.WithTopK(c.opts.TopK),
		llms.WithMaxTokens(c.opts.MaxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("model call failed: %w", err)
	}
	return resp, nil
}

// NewModel constructs the underlying langchaingo model for a provider.
// Ollama is the default local provider; openai/openrouter share the
// OpenAI-compatible path.
func NewModel(provider, modelName, baseURL, apiKey string) (llms.Model, error) {
	switch provider {
	case "", "ollama":
		opts := []ollama.Option{ollama.WithModel(modelName)}
		if baseURL != "" {
			opts = append(opts, ollama.WithServerURL(baseURL))
		}
		return ollama.New(opts...)
	case "openai", "openrouter":
		opts := []openai.Option{
			openai.WithToken(apiKey),
			openai.WithModel(modelName),
		}
		if baseURL != "" {
			opts = append(opts, openai.WithBaseURL(baseURL))
		}
		return openai.New(opts...)
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}
