// Package ambassador ranks social media profiles by how well they fit a
// product description.
package ambassador

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	errx "github.com/Market-intel-core-v1/server/internal/core/error"
	"github.com/Market-intel-core-v1/server/internal/market/model"
	"github.com/Market-intel-core-v1/server/internal/metrics"
	logx "github.com/Market-intel-core-v1/server/pkg/logger"
	"golang.org/x/time/rate"
)

const (
	scrapeService = "scrape"
	embedService  = "embeddings"

	bioSnippetLen = 80
)

// DefaultTargets are scraped when the caller names none.
var DefaultTargets = []string{"mkbhd", "gordonramsayofficial"}

// Matcher scrapes candidate profiles and ranks them against a query.
type Matcher struct {
	source   ProfileSource
	embedder Embedder
	limiter  *rate.Limiter
	cfg      model.AmbassadorConfig
}

type MatcherOption func(*Matcher)

// WithEmbedder sets the semantic embedder. Without one, matching uses BagOfWords.
func WithEmbedder(e Embedder) MatcherOption {
	return func(m *Matcher) {
		m.embedder = e
	}
}

func WithLimiter(l *rate.Limiter) MatcherOption {
	return func(m *Matcher) {
		m.limiter = l
	}
}

// NewMatcher builds a Matcher. A nil source skips live scraping entirely.
func NewMatcher(source ProfileSource, cfg model.AmbassadorConfig, opts ...MatcherOption) *Matcher {
	m := &Matcher{source: source, cfg: cfg}
	for _, opt := range opts {
		opt(m)
	}
	if m.limiter == nil {
		interval := cfg.ScrapeInterval
		if interval <= 0 {
			m.limiter = rate.NewLimiter(rate.Inf, 1)
		} else {
			m.limiter = rate.NewLimiter(rate.Every(interval), 1)
		}
	}
	if m.cfg.MaxLiveTargets <= 0 {
		m.cfg.MaxLiveTargets = 3
	}
	return m
}

// FindAmbassadors returns profiles whose match score exceeds the configured
// minimum, best first.
func (m *Matcher) FindAmbassadors(ctx context.Context, query string, targets []string) ([]model.AmbassadorMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errx.InvalidInput("query must not be empty")
	}

	profiles := m.collect(ctx, NormalizeTargets(targets))
	if len(profiles) == 0 {
		logx.Info().Msg("no live profiles collected, using fallback dataset")
		profiles = FallbackProfiles()
	}

	texts := make([]string, 0, len(profiles)+1)
	texts = append(texts, query)
	for _, p := range profiles {
		texts = append(texts, p.Text)
	}

	vectors, err := m.embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed profiles: %w", err)
	}

	matches := make([]model.AmbassadorMatch, 0, len(profiles))
	for i, p := range profiles {
		score := Cosine(vectors[0], vectors[i+1]) * 100
		if score <= m.cfg.MinMatch {
			continue
		}
		matches = append(matches, model.AmbassadorMatch{
			Handle:     p.Handle,
			Platform:   p.Platform,
			Followers:  FormatFollowers(p.Followers),
			BioSnippet: BioSnippet(p.Bio),
			MatchScore: math.Round(score*10) / 10,
		})
	}

	slices.SortStableFunc(matches, func(a, b model.AmbassadorMatch) int {
		return cmp.Compare(b.MatchScore, a.MatchScore)
	})
	return matches, nil
}

// collect scrapes each target, substituting the dataset entry for failed
// scrapes. Lists longer than MaxLiveTargets are not scraped at all.
func (m *Matcher) collect(ctx context.Context, targets []string) []model.InfluencerProfile {
	if m.source == nil || len(targets) == 0 || len(targets) > m.cfg.MaxLiveTargets {
		return nil
	}

	var profiles []model.InfluencerProfile
	for _, user := range targets {
		if err := m.limiter.Wait(ctx); err != nil {
			logx.Warn().Err(err).Msg("scrape pacing interrupted")
			break
		}

		p, err := m.source.Fetch(ctx, user)
		if err == nil {
			metrics.Success(scrapeService)
			profiles = append(profiles, *p)
			continue
		}

		logx.Warn().Err(err).Str("service", scrapeService).Str("user", user).Msg("profile scrape failed")
		metrics.Fallback(scrapeService, metrics.OutcomeFailure)
		if fb, ok := fallbackFor(user); ok {
			profiles = append(profiles, fb)
		}
	}
	return profiles
}

func (m *Matcher) embed(ctx context.Context, texts []string) ([][]float64, error) {
	if m.embedder == nil {
		metrics.Fallback(embedService, metrics.OutcomeDisabled)
		return BagOfWords{}.Embed(ctx, texts)
	}

	vectors, err := m.embedder.Embed(ctx, texts)
	if err == nil && len(vectors) == len(texts) {
		metrics.Success(embedService)
		return vectors, nil
	}
	logx.Warn().Err(err).Str("service", embedService).Msg("embedding failed, using term vectors")
	metrics.Fallback(embedService, metrics.OutcomeFailure)
	return BagOfWords{}.Embed(ctx, texts)
}

// NormalizeTargets trims whitespace and a leading "@", dropping blanks.
func NormalizeTargets(targets []string) []string {
	out := make([]string, 0, len(targets))
	for _, t := range targets {
		t = strings.TrimPrefix(strings.TrimSpace(t), "@")
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// FormatFollowers renders counts above one million as "18.5M" and the rest
// as thousands, "125.0k".
func FormatFollowers(n int64) string {
	if n > 1_000_000 {
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	}
	return fmt.Sprintf("%.1fk", float64(n)/1_000)
}

// BioSnippet keeps the first 80 characters of bio and appends "...".
func BioSnippet(bio string) string {
	if utf8.RuneCountInString(bio) > bioSnippetLen {
		bio = string([]rune(bio)[:bioSnippetLen])
	}
	return bio + "..."
}
