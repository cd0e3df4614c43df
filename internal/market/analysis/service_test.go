package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	errx "github.com/Market-intel-core-v1/server/internal/core/error"
	"github.com/Market-intel-core-v1/server/internal/market/demand"
	"github.com/Market-intel-core-v1/server/internal/market/model"
	"github.com/Market-intel-core-v1/server/internal/market/pricing"
	"github.com/Market-intel-core-v1/server/internal/market/repo"
	"github.com/Market-intel-core-v1/server/internal/market/vision"
	"github.com/Market-intel-core-v1/server/pkg/randx"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 1, 20, 9, 0, 0, 0, time.UTC)

type stubAnalyzer struct {
	label string
	calls int
}

func (s *stubAnalyzer) Analyze(context.Context, []byte) (model.VisualMatch, error) {
	s.calls++
	return model.VisualMatch{Label: s.label, Confidence: 0.9}, nil
}

type stubSearcher struct {
	results []model.SearchResult
	err     error
	queries []string
}

func (s *stubSearcher) Search(_ context.Context, q string) ([]model.SearchResult, error) {
	s.queries = append(s.queries, q)
	return s.results, s.err
}

type fixture struct {
	svc      *Service
	analyzer *stubAnalyzer
	searcher *stubSearcher
	repo     *repo.RedisDemandRepository
}

func newFixture(t *testing.T, withRepo bool) *fixture {
	t.Helper()
	f := &fixture{
		analyzer: &stubAnalyzer{label: "Acme Kettle K2"},
		searcher: &stubSearcher{results: []model.SearchResult{
			{Title: "Acme Kettle", Snippet: "Now $110.00", Link: "https://www.amazon.com/acme"},
			{Title: "Acme Kettle K2 $105.00", Snippet: "used", Link: "https://www.ebay.com/itm/1"},
			{Title: "Acme Kettle", Snippet: "Rollback $95.00", Link: "https://www.walmart.com/ip/2"},
		}},
	}
	src := randx.Fixed{Value: 0.5}
	opts := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { return "analysis-1" }),
	}
	if withRepo {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
		f.repo = repo.NewRedisDemandRepository(rdb, 0, 0)
		opts = append(opts, WithRepository(f.repo))
	}

	f.svc = NewService(
		vision.NewIdentifier(f.analyzer),
		pricing.NewDiscovery(f.searcher, pricing.WithRand(src)),
		demand.NewScorer(
			demand.WithRand(src),
			demand.WithSeasonality(demand.FixedSeason(false)),
			demand.WithClock(func() time.Time { return fixedNow }),
		),
		opts...,
	)
	return f
}

func TestAnalyzeFullPipeline(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	a, err := f.svc.Analyze(ctx, model.AnalysisRequest{
		ProductID: "p-1",
		Name:      "Kettle",
		Category:  "kitchen",
		Price:     decimal.NewFromInt(100),
		Image:     []byte("\xff\xd8\xff\xe0 jpeg"),
	})
	require.NoError(t, err)

	assert.Equal(t, "analysis-1", a.ID)
	assert.Equal(t, "Acme Kettle K2", a.Query)
	assert.Equal(t, []string{"Acme Kettle K2 price"}, f.searcher.queries)
	assert.False(t, a.Synthetic)
	assert.Len(t, a.Competitors, 3)

	assert.Equal(t, 53, a.Demand.Score)
	assert.Equal(t, model.TrendStable, a.Demand.Trend)
	assert.Equal(t, "103.33", a.Demand.MarketAverage.StringFixed(2))
	assert.Equal(t, "15", a.Demand.GrowthPercent.String())
	assert.Len(t, a.Demand.History, 4)

	rec, err := f.svc.Snapshot(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, 53, rec.DemandScore)
	assert.Equal(t, "Stable trend (+15.0% growth)", rec.ExternalInterest)
	assert.Equal(t, "analysis-1", rec.AnalysisID)
	assert.True(t, fixedNow.Equal(rec.AnalyzedAt))

	history, err := f.svc.History(ctx, "p-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "analysis-1", history[0].ID)
}

func TestAnalyzeProductSearchesNameWithoutImage(t *testing.T) {
	f := newFixture(t, false)

	res, err := f.svc.AnalyzeProduct(context.Background(), model.AnalysisRequest{
		Name:  "Kettle",
		Price: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	assert.Zero(t, f.analyzer.calls)
	assert.Equal(t, []string{"Kettle price"}, f.searcher.queries)
	assert.Equal(t, 53, res.Score)
}

func TestAnalyzeSearchFailureUsesSyntheticQuotes(t *testing.T) {
	f := newFixture(t, false)
	f.searcher.err = errors.New("quota exceeded")

	a, err := f.svc.Analyze(context.Background(), model.AnalysisRequest{
		Name:  "Kettle",
		Price: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	assert.True(t, a.Synthetic)
	require.Len(t, a.Competitors, 3)
	for _, q := range a.Competitors {
		assert.Equal(t, pricing.SyntheticURL, q.URL)
	}
	assert.GreaterOrEqual(t, a.Demand.Score, demand.MinScore)
	assert.LessOrEqual(t, a.Demand.Score, demand.MaxScore)
}

func TestAnalyzeRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		req  model.AnalysisRequest
	}{
		{"zero price", model.AnalysisRequest{Name: "Kettle", Price: decimal.Zero, Image: []byte("img")}},
		{"negative price", model.AnalysisRequest{Name: "Kettle", Price: decimal.NewFromInt(-5)}},
		{"nothing to search for", model.AnalysisRequest{Name: "  ", Price: decimal.NewFromInt(10)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)

			_, err := f.svc.Analyze(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, errx.IsInvalid(err))
			assert.Zero(t, f.analyzer.calls)
			assert.Empty(t, f.searcher.queries)
		})
	}
}

func TestSnapshotWithoutRepository(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.svc.Snapshot(context.Background(), "p-1")
	assert.True(t, errx.IsNotFound(err))
}
