package ambassador

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/Market-intel-core-v1/server/internal/breaker"
	errx "github.com/Market-intel-core-v1/server/internal/core/error"
	"google.golang.org/genai"
)

// Embedder turns texts into vectors comparable by cosine similarity.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// EmbedContenter is satisfied by genai.Client.Models.
type EmbedContenter interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// GeminiEmbedder embeds texts with a Gemini embedding model.
type GeminiEmbedder struct {
	models  EmbedContenter
	model   string
	breaker *breaker.Breaker[[][]float64]
}

func NewGeminiEmbedder(models EmbedContenter, modelName string, b *breaker.Breaker[[][]float64]) *GeminiEmbedder {
	return &GeminiEmbedder{models: models, model: modelName, breaker: b}
}

// Embed returns one vector per text. Failures are reported as errx.Unavailable.
func (g *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if g.breaker == nil {
		out, err := g.embed(ctx, texts)
		if err != nil {
			return nil, errx.Unavailable(embedService, err)
		}
		return out, nil
	}
	return g.breaker.Execute(ctx, func(ctx context.Context) ([][]float64, error) {
		return g.embed(ctx, texts)
	})
}

func (g *GeminiEmbedder) embed(ctx context.Context, texts []string) ([][]float64, error) {
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	resp, err := g.models.EmbedContent(ctx, g.model, contents, &genai.EmbedContentConfig{
		TaskType: "SEMANTIC_SIMILARITY",
	})
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if resp == nil || len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini embed: expected %d embeddings", len(texts))
	}

	out := make([][]float64, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		if e == nil {
			return nil, fmt.Errorf("gemini embed: embedding %d missing", i)
		}
		out[i] = make([]float64, len(e.Values))
		for j, v := range e.Values {
			out[i][j] = float64(v)
		}
	}
	return out, nil
}

// BagOfWords embeds texts as term-count vectors over the vocabulary of the
// whole batch, so vectors from one call are comparable with each other only.
type BagOfWords struct{}

func (BagOfWords) Embed(_ context.Context, texts []string) ([][]float64, error) {
	vocab := map[string]int{}
	docs := make([][]string, len(texts))
	for i, t := range texts {
		docs[i] = tokenize(t)
		for _, tok := range docs[i] {
			if _, ok := vocab[tok]; !ok {
				vocab[tok] = len(vocab)
			}
		}
	}

	out := make([][]float64, len(texts))
	for i, doc := range docs {
		vec := make([]float64, len(vocab))
		for _, tok := range doc {
			vec[vocab[tok]]++
		}
		out[i] = vec
	}
	return out, nil
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Cosine returns the cosine similarity of a and b, 0 when either is a zero
// vector or their lengths differ.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

var (
	_ Embedder = (*GeminiEmbedder)(nil)
	_ Embedder = BagOfWords{}
)
