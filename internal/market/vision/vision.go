package vision

import (
	"context"
	"strings"

	"github.com/Market-intel-core-v1/server/internal/market/model"
	"github.com/Market-intel-core-v1/server/internal/metrics"
	logx "github.com/Market-intel-core-v1/server/pkg/logger"
)

const (
	serviceName   = "vision"
	maxEntities   = 3
	maxConfidence = 0.99
)

// Analyzer is the raw image recognition capability.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte) (model.VisualMatch, error)
}

// Identifier maps product photos to labels and never fails: recognition
// errors yield model.DefaultVisualMatch.
type Identifier struct {
	analyzer Analyzer
}

// NewIdentifier wraps analyzer. A nil analyzer means recognition is unavailable.
func NewIdentifier(analyzer Analyzer) *Identifier {
	return &Identifier{analyzer: analyzer}
}

// Identify labels image. Without an image there is nothing to recognise, so
// the label is Unknown and callers search by product name instead.
func (i *Identifier) Identify(ctx context.Context, image []byte) model.VisualMatch {
	if len(image) == 0 {
		return model.VisualMatch{Label: model.UnknownLabel, Entities: []string{}}
	}
	if i.analyzer == nil {
		metrics.Fallback(serviceName, metrics.OutcomeDisabled)
		return model.DefaultVisualMatch()
	}

	match, err := i.analyzer.Analyze(ctx, image)
	if err != nil {
		logx.Warn().Err(err).Str("service", serviceName).Int("bytes", len(image)).Msg("image recognition failed")
		metrics.Fallback(serviceName, metrics.OutcomeFailure)
		return model.DefaultVisualMatch()
	}
	metrics.Success(serviceName)
	return normalize(match)
}

func normalize(m model.VisualMatch) model.VisualMatch {
	m.Label = strings.TrimSpace(m.Label)
	if m.Label == "" {
		m.Label = model.UnknownLabel
	}

	switch {
	case m.Confidence < 0:
		m.Confidence = 0
	case m.Confidence > maxConfidence:
		m.Confidence = maxConfidence
	}

	entities := make([]string, 0, maxEntities)
	for _, e := range m.Entities {
		if e = strings.TrimSpace(e); e != "" && len(entities) < maxEntities {
			entities = append(entities, e)
		}
	}
	m.Entities = entities
	return m
}
