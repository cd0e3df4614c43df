package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trend is the categorical demand direction derived from a score.
type Trend string

const (
	TrendUpward   Trend = "upward"
	TrendStable   Trend = "stable"
	TrendDownward Trend = "downward"
)

// TrendForScore maps a demand score onto its direction.
func TrendForScore(score int) Trend {
	switch {
	case score > 60:
		return TrendUpward
	case score < 40:
		return TrendDownward
	default:
		return TrendStable
	}
}

// ProductSnapshot is the immutable input of one demand analysis.
type ProductSnapshot struct {
	Price    decimal.Decimal
	Label    string
	Category string
}

// CompetitorQuote is a single external price observation.
type CompetitorQuote struct {
	Site  string          `json:"site"`
	Price decimal.Decimal `json:"price"`
	URL   string          `json:"url"`
}

// HistoryPoint is one synthetic charting period. Never persisted.
type HistoryPoint struct {
	PeriodLabel   string          `json:"month"`
	Score         int             `json:"score"`
	MarketAverage decimal.Decimal `json:"marketAvg"`
}

// DemandResult is the output of the demand scorer.
type DemandResult struct {
	Score         int             `json:"score"`
	MarketAverage decimal.Decimal `json:"market_avg"`
	Trend         Trend           `json:"trend"`
	GrowthPercent decimal.Decimal `json:"growth"`
	History       []HistoryPoint  `json:"history"`
}

// AnalysisRequest is what the surrounding product layer hands to the pipeline.
type AnalysisRequest struct {
	ProductID string
	Name      string
	Category  string
	Price     decimal.Decimal
	Image     []byte
}

// Analysis bundles the scorer output with the intermediate stage results.
type Analysis struct {
	ID          string            `json:"analysis_id"`
	ProductID   string            `json:"product_id"`
	Visual      VisualMatch       `json:"visual"`
	Query       string            `json:"query"`
	Competitors []CompetitorQuote `json:"competitors"`
	Synthetic   bool              `json:"synthetic_competitors"`
	Demand      DemandResult      `json:"demand"`
	AnalyzedAt  time.Time         `json:"analyzed_at"`
}

// DemandRecord is the persisted slice of an analysis stored on the product.
type DemandRecord struct {
	ProductID        string          `json:"product_id"`
	AnalysisID       string          `json:"analysis_id"`
	DemandScore      int             `json:"demand_score"`
	ExternalInterest string          `json:"external_interest"`
	MarketAverage    decimal.Decimal `json:"market_avg"`
	AnalyzedAt       time.Time       `json:"analyzed_at"`
}
