package demand

import (
	"time"

	errx "github.com/Market-intel-core-v1/server/internal/core/error"
	"github.com/Market-intel-core-v1/server/internal/market/model"
	"github.com/Market-intel-core-v1/server/pkg/randx"
	"github.com/shopspring/decimal"
)

const (
	MinScore = 10
	MaxScore = 99

	baseScore     = 50
	maxPriceSwing = 30
	trendBonus    = 15
)

var (
	hundred   = decimal.NewFromInt(100)
	swingCap  = decimal.NewFromInt(maxPriceSwing)
	minGrowth = 5.0
	maxGrowth = 25.0
)

// Scorer turns price competitiveness and a trend signal into a demand score.
type Scorer struct {
	rnd    randx.Source
	season SeasonalitySignal
	now    func() time.Time
}

type Option func(*Scorer)

// WithRand sets the source used for growth and history jitter, and for the
// default coin-flip seasonality.
func WithRand(src randx.Source) Option {
	return func(s *Scorer) {
		s.rnd = src
	}
}

func WithSeasonality(sig SeasonalitySignal) Option {
	return func(s *Scorer) {
		s.season = sig
	}
}

// WithClock sets the clock used to label history periods.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) {
		s.now = now
	}
}

func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.rnd == nil {
		s.rnd = randx.NewLocked(nil)
	}
	if s.season == nil {
		s.season = CoinFlip{Rand: s.rnd}
	}
	return s
}

// MarketAverage is the mean competitor price, or the product's own price when
// there is no usable market.
func MarketAverage(price decimal.Decimal, quotes []model.CompetitorQuote) decimal.Decimal {
	if len(quotes) == 0 {
		return price
	}
	sum := decimal.Zero
	for _, q := range quotes {
		sum = sum.Add(q.Price)
	}
	avg := sum.Div(decimal.NewFromInt(int64(len(quotes))))
	if !avg.IsPositive() {
		return price
	}
	return avg
}

// BaseScore is the deterministic part of the score: price competitiveness plus
// the optional trend bonus, rounded and clamped.
func BaseScore(price, marketAvg decimal.Decimal, trending bool) int {
	diff := marketAvg.Sub(price).Div(marketAvg).Mul(hundred)

	score := decimal.NewFromInt(baseScore)
	if diff.IsPositive() {
		score = score.Add(decimal.Min(diff, swingCap))
	} else {
		score = score.Sub(decimal.Min(diff.Abs(), swingCap))
	}
	if trending {
		score = score.Add(decimal.NewFromInt(trendBonus))
	}

	return clamp(int(score.Round(0).IntPart()), MinScore, MaxScore)
}

// Predict scores one product against its competitor quotes.
func (s *Scorer) Predict(product model.ProductSnapshot, quotes []model.CompetitorQuote) (*model.DemandResult, error) {
	if !product.Price.IsPositive() {
		return nil, errx.InvalidInput("price must be greater than zero, got %s", product.Price.String())
	}

	marketAvg := MarketAverage(product.Price, quotes)
	score := BaseScore(product.Price, marketAvg, s.season.Trending(product.Category))
	growth := decimal.NewFromFloat(randx.Uniform(s.rnd, minGrowth, maxGrowth)).Round(1)

	return &model.DemandResult{
		Score:         score,
		MarketAverage: marketAvg.Round(2),
		Trend:         model.TrendForScore(score),
		GrowthPercent: growth,
		History:       s.history(score, marketAvg),
	}, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
