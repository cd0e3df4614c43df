package demand

import (
	"time"

	"github.com/Market-intel-core-v1/server/internal/market/model"
	"github.com/Market-intel-core-v1/server/pkg/randx"
	"github.com/shopspring/decimal"
)

const historyPeriods = 4

// history builds a trailing series that ends near the current values. The
// numbers are for charting only and are never read back by the scorer.
func (s *Scorer) history(score int, marketAvg decimal.Decimal) []model.HistoryPoint {
	labels := periodLabels(s.now(), historyPeriods)
	points := make([]model.HistoryPoint, 0, historyPeriods)
	current := decimal.NewFromInt(int64(score))

	for i := 0; i < historyPeriods; i++ {
		factor := decimal.NewFromInt(1).Sub(decimal.New(int64(historyPeriods-1-i), -1))
		scoreJitter := decimal.NewFromFloat(randx.Uniform(s.rnd, 0.9, 1.1))
		avgJitter := decimal.NewFromFloat(randx.Uniform(s.rnd, 0.95, 1.05))

		points = append(points, model.HistoryPoint{
			PeriodLabel:   labels[i],
			Score:         int(current.Mul(factor).Mul(scoreJitter).IntPart()),
			MarketAverage: marketAvg.Mul(factor).Mul(avgJitter).Round(2),
		})
	}
	return points
}

// periodLabels returns abbreviated month names, oldest first, ending with the
// month of now.
func periodLabels(now time.Time, n int) []string {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	labels := make([]string, n)
	for i := 0; i < n; i++ {
		labels[i] = first.AddDate(0, -(n - 1 - i), 0).Format("Jan")
	}
	return labels
}
