package pricing

import (
	"context"
	"strings"
	"time"

	"github.com/Market-intel-core-v1/server/internal/breaker"
	"github.com/Market-intel-core-v1/server/internal/market/model"
	"github.com/Market-intel-core-v1/server/internal/metrics"
	logx "github.com/Market-intel-core-v1/server/pkg/logger"
	"github.com/Market-intel-core-v1/server/pkg/randx"
)

const serviceName = "search"

// Discovery finds competitor quotes for a query and never fails: any search
// error, or a search without extractable prices, yields synthetic quotes.
type Discovery struct {
	searcher Searcher
	cache    QuoteCache
	breaker  *breaker.Breaker[[]model.SearchResult]
	rnd      randx.Source
}

type DiscoveryOption func(*Discovery)

// WithCache enables the live quote cache.
func WithCache(c QuoteCache) DiscoveryOption {
	return func(d *Discovery) {
		d.cache = c
	}
}

func WithBreaker(b *breaker.Breaker[[]model.SearchResult]) DiscoveryOption {
	return func(d *Discovery) {
		d.breaker = b
	}
}

func WithRand(src randx.Source) DiscoveryOption {
	return func(d *Discovery) {
		d.rnd = src
	}
}

// NewDiscovery builds a Discovery. A nil searcher means search is unavailable
// and every call takes the synthetic path.
func NewDiscovery(searcher Searcher, opts ...DiscoveryOption) *Discovery {
	d := &Discovery{searcher: searcher}
	for _, opt := range opts {
		opt(d)
	}
	if d.rnd == nil {
		d.rnd = randx.NewLocked(nil)
	}
	if d.breaker == nil {
		d.breaker = breaker.New[[]model.SearchResult](serviceName, 5*time.Second, model.BreakerConfig{
			FailureThreshold: 5,
			OpenTimeout:      30 * time.Second,
			Interval:         time.Minute,
		})
	}
	return d
}

// Discover returns quotes for query and whether they were synthesized.
func (d *Discovery) Discover(ctx context.Context, query string) ([]model.CompetitorQuote, bool) {
	if strings.TrimSpace(query) == "" {
		metrics.Fallback(serviceName, metrics.OutcomeEmpty)
		return d.synthesize(query, "empty query"), true
	}

	if d.cache != nil {
		cached, err := d.cache.Get(ctx, query)
		switch {
		case err != nil:
			metrics.CompetitorCache.WithLabelValues("error").Inc()
		case len(cached) > 0:
			metrics.CompetitorCache.WithLabelValues("hit").Inc()
			logx.Debug().Str("query", query).Int("quotes", len(cached)).Msg("competitor quotes served from cache")
			return cached, false
		default:
			metrics.CompetitorCache.WithLabelValues("miss").Inc()
		}
	}

	if d.searcher == nil {
		metrics.Fallback(serviceName, metrics.OutcomeDisabled)
		return d.synthesize(query, "search not configured"), true
	}

	results, err := d.breaker.Execute(ctx, func(ctx context.Context) ([]model.SearchResult, error) {
		return d.searcher.Search(ctx, query+" price")
	})
	if err != nil {
		logx.Warn().Err(err).Str("service", serviceName).Str("query", query).Msg("competitor search failed")
		metrics.Fallback(serviceName, metrics.OutcomeFailure)
		return d.synthesize(query, "search failed"), true
	}

	quotes := ExtractQuotes(results)
	if len(quotes) == 0 {
		metrics.Fallback(serviceName, metrics.OutcomeEmpty)
		return d.synthesize(query, "no prices found"), true
	}
	metrics.Success(serviceName)

	if d.cache != nil {
		// a cache write failure only costs the next caller a live search
		_ = d.cache.Set(ctx, query, quotes)
	}
	return quotes, false
}

func (d *Discovery) synthesize(query, reason string) []model.CompetitorQuote {
	logx.Info().Str("query", query).Str("reason", reason).Msg("using synthetic competitor quotes")
	return SyntheticQuotes(d.rnd)
}
