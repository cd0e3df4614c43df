package moderation

import (
	"context"
	"strings"

	errx "github.com/Market-intel-core-v1/server/internal/core/error"
	"github.com/Market-intel-core-v1/server/internal/market/model"
	"github.com/Market-intel-core-v1/server/internal/metrics"
	logx "github.com/Market-intel-core-v1/server/pkg/logger"
	"github.com/Market-intel-core-v1/server/pkg/randx"
)

const serviceName = "classifier"

// Actions recommended for each risk level.
const (
	ActionRemove  = "Remove Content"
	ActionReview  = "Manual Review"
	ActionApprove = "Approve"
)

const (
	highThreshold   = 80
	mediumThreshold = 40
	maxConfidence   = 99

	fallbackMin = 10
	fallbackMax = 95
)

// Summed in this order so the result is reproducible.
var riskWeights = []struct {
	label  string
	weight float64
}{
	{LabelToxic, 0.4},
	{LabelSevereToxic, 0.8},
	{LabelObscene, 0.3},
	{LabelThreat, 0.9},
	{LabelIdentityHate, 0.7},
}

// Scorer turns classifier output into a RiskAssessment. It fails open: an
// absent or failing classifier yields a random confidence flagged Degraded.
type Scorer struct {
	classifier Classifier
	rnd        randx.Source
}

// NewScorer builds a Scorer. A nil classifier is treated as unavailable and
// a nil rnd is seeded from the clock.
func NewScorer(c Classifier, rnd randx.Source) *Scorer {
	if rnd == nil {
		rnd = randx.NewLocked(nil)
	}
	return &Scorer{classifier: c, rnd: rnd}
}

// ScoreContent rates text. Only blank text is an error.
func (s *Scorer) ScoreContent(ctx context.Context, text string) (*model.RiskAssessment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errx.InvalidInput("text must not be empty")
	}

	var assessment model.RiskAssessment
	if s.classifier == nil {
		metrics.Fallback(serviceName, metrics.OutcomeDisabled)
		assessment = s.fallback()
	} else if scores, err := s.classifier.Classify(ctx, text); err != nil {
		logx.Warn().Err(err).Str("service", serviceName).Msg("content classifier failed, using fallback confidence")
		metrics.Fallback(serviceName, metrics.OutcomeFailure)
		assessment = s.fallback()
	} else {
		metrics.Success(serviceName)
		assessment = Assess(scores)
	}

	metrics.RiskLevels.WithLabelValues(string(assessment.RiskLevel)).Inc()
	return &assessment, nil
}

func (s *Scorer) fallback() model.RiskAssessment {
	a := FromConfidence(randx.IntRange(s.rnd, fallbackMin, fallbackMax))
	a.Degraded = true
	return a
}

// RiskScore is the weighted sum of label probabilities. insult carries no weight.
func RiskScore(scores map[string]float64) float64 {
	var risk float64
	for _, w := range riskWeights {
		risk += scores[w.label] * w.weight
	}
	return risk
}

// Assess converts label probabilities into a verdict.
func Assess(scores map[string]float64) model.RiskAssessment {
	confidence := int(RiskScore(scores) * 100)
	return FromConfidence(min(max(confidence, 0), maxConfidence))
}

// FromConfidence applies the decision thresholds: above 80 is High, above 40
// is Medium, anything else Low.
func FromConfidence(confidence int) model.RiskAssessment {
	switch {
	case confidence > highThreshold:
		return model.RiskAssessment{RiskLevel: model.RiskHigh, Confidence: confidence, RecommendedAction: ActionRemove}
	case confidence > mediumThreshold:
		return model.RiskAssessment{RiskLevel: model.RiskMedium, Confidence: confidence, RecommendedAction: ActionReview}
	default:
		return model.RiskAssessment{RiskLevel: model.RiskLow, Confidence: confidence, RecommendedAction: ActionApprove}
	}
}
