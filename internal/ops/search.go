package ops

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/tools/duckduckgo"
)

// Search provides web.search via DuckDuckGo.
type Search struct {
	client *duckduckgo.Tool
}

func NewSearch() (*Search, error) {
	ddg, err := duckduckgo.New(10, duckduckgo.DefaultUserAgent)
	if err != nil {
		return nil, err
	}
	return &Search{client: ddg}, nil
}

func (s *Search) Register(r *Registry) {
	r.Register(Func{"web.search", "Search the web using DuckDuckGo for real-time information.", s.search})
}

func (s *Search) search(ctx context.Context, params map[string]any) (any, error) {
	query, err := stringParam(params, "query")
	if err != nil {
		return nil, err
	}
	res, err := s.client.Call(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	return res, nil
}
