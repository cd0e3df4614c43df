package demand

import (
	"testing"
	"time"

	"github.com/Market-intel-core-v1/server/pkg/randx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryWithMinimumJitter(t *testing.T) {
	s := NewScorer(WithRand(randx.Fixed{Value: 0}), WithSeasonality(FixedSeason(false)), WithClock(january))

	res, err := s.Predict(product(100), quotes(110, 105, 95))
	require.NoError(t, err)
	require.Equal(t, 53, res.Score)

	want := []struct {
		label string
		score int
		avg   string
	}{
		{"Oct", 33, "68.72"},
		{"Nov", 38, "78.53"},
		{"Dec", 42, "88.35"},
		{"Jan", 47, "98.17"},
	}
	require.Len(t, res.History, len(want))
	for i, w := range want {
		p := res.History[i]
		assert.Equal(t, w.label, p.PeriodLabel, "period %d", i)
		assert.Equal(t, w.score, p.Score, "period %d", i)
		assert.Equal(t, w.avg, p.MarketAverage.String(), "period %d", i)
	}
}

func TestHistoryStaysNearCurrentValues(t *testing.T) {
	s := NewScorer(WithRand(randx.NewSeeded(5)), WithClock(january))

	for i := 0; i < 100; i++ {
		res, err := s.Predict(product(80), quotes(90, 100))
		require.NoError(t, err)

		newest := res.History[len(res.History)-1]
		assert.GreaterOrEqual(t, float64(newest.Score), float64(res.Score)*0.9-1)
		assert.LessOrEqual(t, float64(newest.Score), float64(res.Score)*1.1)

		avg := res.MarketAverage.InexactFloat64()
		got := newest.MarketAverage.InexactFloat64()
		assert.InDelta(t, avg, got, avg*0.05+0.01)
	}
}

func TestHistoryDoesNotFeedBackIntoScore(t *testing.T) {
	s := NewScorer(WithRand(randx.NewSeeded(11)), WithSeasonality(FixedSeason(false)), WithClock(january))

	var scores []int
	for i := 0; i < 5; i++ {
		res, err := s.Predict(product(100), quotes(110, 105, 95))
		require.NoError(t, err)
		scores = append(scores, res.Score)
	}
	for _, sc := range scores {
		assert.Equal(t, 53, sc)
	}
}

func TestPeriodLabels(t *testing.T) {
	tests := []struct {
		now  time.Time
		want []string
	}{
		{time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC), []string{"Oct", "Nov", "Dec", "Jan"}},
		{time.Date(2026, time.May, 31, 0, 0, 0, 0, time.UTC), []string{"Feb", "Mar", "Apr", "May"}},
		{time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), []string{"Dec", "Jan", "Feb", "Mar"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, periodLabels(tt.now, 4))
	}
}
