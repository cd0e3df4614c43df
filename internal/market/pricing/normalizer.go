package pricing

import (
	"regexp"
	"strings"

	"github.com/Market-intel-core-v1/server/internal/market/model"
	"github.com/Market-intel-core-v1/server/pkg/randx"
	"github.com/shopspring/decimal"
)

const (
	// OnlineStore labels quotes from sites outside KnownSites.
	OnlineStore = "Online Store"
	// MaxInspected is how many search hits are examined for a price.
	MaxInspected = 5
	// SyntheticURL marks fabricated fallback quotes.
	SyntheticURL = "#"
)

// KnownSites are matched case-insensitively against result links.
var KnownSites = []string{"Amazon", "eBay", "Walmart", "Target", "BestBuy"}

var pricePattern = regexp.MustCompile(`\$(\d+\.\d{2})`)

// synthetic fallback: reference site and multiplier on the base price
var syntheticSpread = []struct {
	site   string
	factor decimal.Decimal
}{
	{"Amazon", decimal.RequireFromString("1.05")},
	{"eBay", decimal.RequireFromString("0.90")},
	{"Walmart", decimal.NewFromInt(1)},
}

// BuildQuery picks the search term for a product: the visual label unless the
// recognizer could not name it.
func BuildQuery(label, name string) string {
	label = strings.TrimSpace(label)
	if label == "" || label == model.UnknownLabel {
		return strings.TrimSpace(name)
	}
	return label
}

// ExtractQuotes keeps the top search hits that carry a "$NNN.NN" price.
func ExtractQuotes(results []model.SearchResult) []model.CompetitorQuote {
	if len(results) > MaxInspected {
		results = results[:MaxInspected]
	}

	quotes := make([]model.CompetitorQuote, 0, len(results))
	for _, r := range results {
		price, ok := ExtractPrice(r.Snippet + r.Title)
		if !ok {
			continue
		}
		quotes = append(quotes, model.CompetitorQuote{
			Site:  ClassifySite(r.Link),
			Price: price,
			URL:   r.Link,
		})
	}
	return quotes
}

// ExtractPrice returns the first dollar amount with cents found in text.
func ExtractPrice(text string) (decimal.Decimal, bool) {
	m := pricePattern.FindStringSubmatch(text)
	if m == nil {
		return decimal.Zero, false
	}
	price, err := decimal.NewFromString(m[1])
	if err != nil {
		return decimal.Zero, false
	}
	return price, true
}

// ClassifySite names the marketplace a link belongs to.
func ClassifySite(link string) string {
	lower := strings.ToLower(link)
	for _, site := range KnownSites {
		if strings.Contains(lower, strings.ToLower(site)) {
			return site
		}
	}
	return OnlineStore
}

// SyntheticQuotes fabricates three quotes around a random base price in
// [50, 200] so scoring stays defined without live data.
func SyntheticQuotes(src randx.Source) []model.CompetitorQuote {
	base := decimal.NewFromFloat(randx.Uniform(src, 50, 200))

	quotes := make([]model.CompetitorQuote, 0, len(syntheticSpread))
	for _, s := range syntheticSpread {
		quotes = append(quotes, model.CompetitorQuote{
			Site:  s.site,
			Price: base.Mul(s.factor).Round(2),
			URL:   SyntheticURL,
		})
	}
	return quotes
}
