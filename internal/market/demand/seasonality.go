package demand

import "github.com/Market-intel-core-v1/server/pkg/randx"

// SeasonalitySignal reports whether a category is in its trending season.
type SeasonalitySignal interface {
	Trending(category string) bool
}

// CoinFlip is the placeholder signal: a uniform coin flip that ignores the
// category. A real seasonality model plugs in here.
type CoinFlip struct {
	Rand randx.Source
}

func (c CoinFlip) Trending(string) bool {
	return c.Rand.IntN(2) == 1
}

// FixedSeason always answers the same way.
type FixedSeason bool

func (f FixedSeason) Trending(string) bool {
	return bool(f)
}
