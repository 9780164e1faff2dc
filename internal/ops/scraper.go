package ops

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
)

// Scraper provides web.scrape: fetch a page and extract its main
// content as clean, sanitized text.
type Scraper struct {
	UserAgent string
	client    *http.Client
}

func NewScraper() *Scraper {
	return &Scraper{
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *Scraper) Register(r *Registry) {
	r.Register(Func{"web.scrape", "Fetch a webpage URL and extract the main content as sanitized text.", s.scrape})
}

func (s *Scraper) scrape(ctx context.Context, params map[string]any) (any, error) {
	rawURL, err := stringParam(params, "url")
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch URL: status code %d", resp.StatusCode)
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	article, err := readability.FromReader(resp.Body, parsedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse article: %w", err)
	}

	// Strip any remaining markup or scripts before handing the text back.
	p := bluemonday.StrictPolicy()
	sanitized := p.Sanitize(article.TextContent)

	output := fmt.Sprintf("TITLE: %s\n", article.Title)
	if article.Excerpt != "" {
		output += fmt.Sprintf("EXCERPT: %s\n", article.Excerpt)
	}
	output += "\n-- CONTENT --\n"

	content := sanitized
	if len(content) > 50000 {
		content = content[:50000] + "\n... (content truncated) ..."
	}
	return output + content, nil
}
