package pricing

import (
	"context"
	"fmt"

	"github.com/Market-intel-core-v1/server/internal/market/model"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// Searcher runs a web search and returns the raw hits.
type Searcher interface {
	Search(ctx context.Context, query string) ([]model.SearchResult, error)
}

// CustomSearch queries a Google Programmable Search Engine.
type CustomSearch struct {
	svc      *customsearch.Service
	engineID string
}

func NewCustomSearch(ctx context.Context, cfg model.SearchConfig) (*CustomSearch, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("custom search requires an API key and engine id")
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create custom search service: %w", err)
	}
	return &CustomSearch{svc: svc, engineID: cfg.EngineID}, nil
}

func (c *CustomSearch) Search(ctx context.Context, query string) ([]model.SearchResult, error) {
	res, err := c.svc.Cse.List().Q(query).Cx(c.engineID).Num(MaxInspected).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("custom search %q: %w", query, err)
	}

	out := make([]model.SearchResult, 0, len(res.Items))
	for _, item := range res.Items {
		if item == nil {
			continue
		}
		out = append(out, model.SearchResult{
			Title:   item.Title,
			Snippet: item.Snippet,
			Link:    item.Link,
		})
	}
	return out, nil
}

var _ Searcher = (*CustomSearch)(nil)
