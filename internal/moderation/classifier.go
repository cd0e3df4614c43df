// Package moderation scores free text for harmful content and maps the
// result to a review action.
package moderation

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/Market-intel-core-v1/server/internal/breaker"
	errx "github.com/Market-intel-core-v1/server/internal/core/error"
	"github.com/Market-intel-core-v1/server/internal/llm/observers"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/goccy/go-json"
)

// Toxicity labels produced by a Classifier.
const (
	LabelToxic        = "toxic"
	LabelSevereToxic  = "severe_toxic"
	LabelObscene      = "obscene"
	LabelThreat       = "threat"
	LabelInsult       = "insult"
	LabelIdentityHate = "identity_hate"
)

var Labels = []string{LabelToxic, LabelSevereToxic, LabelObscene, LabelThreat, LabelInsult, LabelIdentityHate}

//go:embed template/classifier_prompt.txt
var classifierPrompt string

// Classifier maps text to a probability per toxicity label.
type Classifier interface {
	Classify(ctx context.Context, text string) (map[string]float64, error)
}

// ChainClassifier classifies text with an eino chain:
// chat template -> chat model -> score parser.
type ChainClassifier struct {
	runnable compose.Runnable[map[string]any, map[string]float64]
	breaker  *breaker.Breaker[map[string]float64]
}

// NewChainClassifier compiles the classification chain around cm.
func NewChainClassifier(ctx context.Context, cm model.BaseChatModel, b *breaker.Breaker[map[string]float64]) (*ChainClassifier, error) {
	if cm == nil {
		return nil, fmt.Errorf("chat model is nil")
	}

	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(classifierPrompt),
		schema.UserMessage("{{.text}}"),
	)

	chain := compose.NewChain[map[string]any, map[string]float64]().
		AppendChatTemplate(tpl).
		AppendChatModel(cm).
		AppendLambda(compose.InvokableLambda(func(ctx context.Context, msg *schema.Message) (map[string]float64, error) {
			if msg == nil {
				return nil, fmt.Errorf("classifier returned no message")
			}
			return ParseScores(msg.Content)
		}))

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile classifier chain: %w", err)
	}
	return &ChainClassifier{runnable: runnable, breaker: b}, nil
}

func (c *ChainClassifier) Classify(ctx context.Context, text string) (map[string]float64, error) {
	invoke := func(ctx context.Context) (map[string]float64, error) {
		return c.runnable.Invoke(ctx, map[string]any{"text": text}, compose.WithCallbacks(observers.NewAllCallbacks()))
	}
	if c.breaker == nil {
		scores, err := invoke(ctx)
		if err != nil {
			return nil, errx.Unavailable(serviceName, err)
		}
		return scores, nil
	}
	return c.breaker.Execute(ctx, invoke)
}

// ParseScores decodes a label -> probability JSON object, tolerating a
// markdown code fence around it. Probabilities are clamped to [0, 1] and
// labels outside Labels are dropped.
func ParseScores(content string) (map[string]float64, error) {
	content = stripFence(content)
	if content == "" {
		return nil, fmt.Errorf("classifier response is empty")
	}

	var raw map[string]float64
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("decode classifier response: %w", err)
	}

	scores := make(map[string]float64, len(Labels))
	for _, label := range Labels {
		v, ok := raw[label]
		if !ok {
			continue
		}
		scores[label] = min(max(v, 0), 1)
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("classifier response has no known labels")
	}
	return scores, nil
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

var _ Classifier = (*ChainClassifier)(nil)
