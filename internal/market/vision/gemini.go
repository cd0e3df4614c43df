package vision

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Market-intel-core-v1/server/internal/breaker"
	errx "github.com/Market-intel-core-v1/server/internal/core/error"
	"github.com/Market-intel-core-v1/server/internal/market/model"
	"github.com/goccy/go-json"
	"google.golang.org/genai"
)

const visionPrompt = `Identify the retail product in this photo as a shopper would search for it.
Respond with JSON: "label" is the best-guess product name (brand and model when visible),
"confidence" is your certainty between 0 and 1, and "entities" lists up to three related
search terms. Use "Unknown" as the label when no product is recognisable.`

var visionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"label":      {Type: genai.TypeString},
		"confidence": {Type: genai.TypeNumber},
		"entities": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	},
	Required: []string{"label", "confidence"},
}

// ContentGenerator is satisfied by genai.Client.Models.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiAnalyzer recognises products with a multimodal Gemini model.
type GeminiAnalyzer struct {
	models  ContentGenerator
	model   string
	breaker *breaker.Breaker[model.VisualMatch]
}

func NewGeminiAnalyzer(models ContentGenerator, modelName string, b *breaker.Breaker[model.VisualMatch]) *GeminiAnalyzer {
	return &GeminiAnalyzer{models: models, model: modelName, breaker: b}
}

// Analyze labels image. Failures are reported as errx.Unavailable.
func (g *GeminiAnalyzer) Analyze(ctx context.Context, image []byte) (model.VisualMatch, error) {
	if g.breaker == nil {
		match, err := g.analyze(ctx, image)
		if err != nil {
			return model.VisualMatch{}, errx.Unavailable(serviceName, err)
		}
		return match, nil
	}
	return g.breaker.Execute(ctx, func(ctx context.Context) (model.VisualMatch, error) {
		return g.analyze(ctx, image)
	})
}

func (g *GeminiAnalyzer) analyze(ctx context.Context, image []byte) (model.VisualMatch, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, http.DetectContentType(image)),
			genai.NewPartFromText(visionPrompt),
		}, genai.RoleUser),
	}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: "application/json",
		ResponseSchema:   visionSchema,
	})
	if err != nil {
		return model.VisualMatch{}, fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil {
		return model.VisualMatch{}, fmt.Errorf("gemini generate: empty response")
	}
	return parseVisualMatch(resp.Text())
}

type visionPayload struct {
	Label      string   `json:"label"`
	Confidence float64  `json:"confidence"`
	Entities   []string `json:"entities"`
}

func parseVisualMatch(text string) (model.VisualMatch, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.VisualMatch{}, fmt.Errorf("vision response is empty")
	}

	var p visionPayload
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return model.VisualMatch{}, fmt.Errorf("decode vision response: %w", err)
	}
	return model.VisualMatch{Label: p.Label, Confidence: p.Confidence, Entities: p.Entities}, nil
}

var _ Analyzer = (*GeminiAnalyzer)(nil)
