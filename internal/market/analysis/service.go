// Package analysis runs the product demand pipeline: visual identification,
// competitor price discovery, demand scoring and persistence of the result
// onto the product.
package analysis

import (
	"context"
	"strings"
	"time"

	errx "github.com/Market-intel-core-v1/server/internal/core/error"
	"github.com/Market-intel-core-v1/server/internal/market/model"
	"github.com/Market-intel-core-v1/server/internal/market/pricing"
	"github.com/Market-intel-core-v1/server/internal/market/repo"
	"github.com/Market-intel-core-v1/server/internal/metrics"
	logx "github.com/Market-intel-core-v1/server/pkg/logger"
	"github.com/google/uuid"
)

type Identifier interface {
	Identify(ctx context.Context, image []byte) model.VisualMatch
}

type QuoteDiscoverer interface {
	Discover(ctx context.Context, query string) ([]model.CompetitorQuote, bool)
}

type Predictor interface {
	Predict(product model.ProductSnapshot, quotes []model.CompetitorQuote) (*model.DemandResult, error)
}

type Service struct {
	identifier Identifier
	discovery  QuoteDiscoverer
	scorer     Predictor
	repo       repo.DemandRepository
	now        func() time.Time
	newID      func() string
}

type Option func(*Service)

// WithRepository persists every analysis of a request carrying a ProductID.
func WithRepository(r repo.DemandRepository) Option {
	return func(s *Service) {
		s.repo = r
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

func NewService(identifier Identifier, discovery QuoteDiscoverer, scorer Predictor, opts ...Option) *Service {
	s := &Service{
		identifier: identifier,
		discovery:  discovery,
		scorer:     scorer,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnalyzeProduct runs the pipeline and returns the demand result only.
func (s *Service) AnalyzeProduct(ctx context.Context, req model.AnalysisRequest) (*model.DemandResult, error) {
	a, err := s.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}
	return &a.Demand, nil
}

// Analyze runs the pipeline and returns every stage's output. External
// failures never surface here; each stage substitutes its own fallback.
// Input is validated before any external call.
func (s *Service) Analyze(ctx context.Context, req model.AnalysisRequest) (*model.Analysis, error) {
	if !req.Price.IsPositive() {
		return nil, errx.InvalidInput("price must be greater than zero, got %s", req.Price.String())
	}
	name := strings.TrimSpace(req.Name)
	if name == "" && len(req.Image) == 0 {
		return nil, errx.InvalidInput("either a product name or an image is required")
	}

	visual := s.identifier.Identify(ctx, req.Image)
	query := pricing.BuildQuery(visual.Label, name)
	quotes, synthetic := s.discovery.Discover(ctx, query)

	result, err := s.scorer.Predict(model.ProductSnapshot{
		Price:    req.Price,
		Label:    visual.Label,
		Category: req.Category,
	}, quotes)
	if err != nil {
		return nil, err
	}
	metrics.DemandScore.Observe(float64(result.Score))

	a := &model.Analysis{
		ID:          s.newID(),
		ProductID:   req.ProductID,
		Visual:      visual,
		Query:       query,
		Competitors: quotes,
		Synthetic:   synthetic,
		Demand:      *result,
		AnalyzedAt:  s.now().UTC(),
	}

	logx.Info().
		Str("analysis_id", a.ID).
		Str("product_id", a.ProductID).
		Str("label", visual.Label).
		Int("quotes", len(quotes)).
		Bool("synthetic", synthetic).
		Int("score", result.Score).
		Str("trend", string(result.Trend)).
		Msg("product analyzed")

	if err := s.persist(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) persist(ctx context.Context, a *model.Analysis) error {
	if s.repo == nil || a.ProductID == "" {
		return nil
	}

	err := s.repo.Save(ctx, model.DemandRecord{
		ProductID:        a.ProductID,
		AnalysisID:       a.ID,
		DemandScore:      a.Demand.Score,
		ExternalInterest: repo.FormatInterest(a.Demand.Trend, a.Demand.GrowthPercent),
		MarketAverage:    a.Demand.MarketAverage,
		AnalyzedAt:       a.AnalyzedAt,
	})
	if err != nil {
		return err
	}

	// the log is informational; the demand snapshot above is the product write
	if err := s.repo.AppendAnalysis(ctx, a); err != nil {
		logx.Warn().Err(err).Str("analysis_id", a.ID).Msg("failed to append analysis log")
	}
	return nil
}

// History returns the logged analyses of a product, oldest first.
func (s *Service) History(ctx context.Context, productID string) ([]model.Analysis, error) {
	if s.repo == nil {
		return nil, errx.NotFound("analysis history is not stored")
	}
	return s.repo.ListAnalyses(ctx, productID)
}

// Snapshot returns the demand fields last written onto a product.
func (s *Service) Snapshot(ctx context.Context, productID string) (*model.DemandRecord, error) {
	if s.repo == nil {
		return nil, errx.NotFound("demand snapshots are not stored")
	}
	return s.repo.Get(ctx, productID)
}
