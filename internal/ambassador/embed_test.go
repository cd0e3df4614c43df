package ambassador

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Market-intel-core-v1/server/internal/breaker"
	errx "github.com/Market-intel-core-v1/server/internal/core/error"
	"github.com/Market-intel-core-v1/server/internal/market/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeEmbedModels struct {
	vectors [][]float32
	err     error
	model   string
}

func (f *fakeEmbedModels) EmbedContent(_ context.Context, m string, contents []*genai.Content, _ *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	f.model = m
	if f.err != nil {
		return nil, f.err
	}
	resp := &genai.EmbedContentResponse{}
	for i := range contents {
		if i < len(f.vectors) {
			resp.Embeddings = append(resp.Embeddings, &genai.ContentEmbedding{Values: f.vectors[i]})
		}
	}
	return resp, nil
}

func testEmbedBreaker() *breaker.Breaker[[][]float64] {
	return breaker.New[[][]float64]("embed-test", time.Second, model.BreakerConfig{FailureThreshold: 100})
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1, Cosine([]float64{1, 2}, []float64{2, 4}), 1e-9)
	assert.InDelta(t, 0, Cosine([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.InDelta(t, 1/math.Sqrt2, Cosine([]float64{1, 1}, []float64{1, 0}), 1e-9)
	assert.Zero(t, Cosine([]float64{0, 0}, []float64{1, 1}))
	assert.Zero(t, Cosine([]float64{1}, []float64{1, 1}))
}

func TestBagOfWords(t *testing.T) {
	vecs, err := BagOfWords{}.Embed(context.Background(), []string{"Tech gadgets", "tech_guru gadgets gadgets", "cooking"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)

	// vocabulary: tech, gadgets, guru, cooking
	assert.Equal(t, []float64{1, 1, 0, 0}, vecs[0])
	assert.Equal(t, []float64{1, 2, 1, 0}, vecs[1])
	assert.Equal(t, []float64{0, 0, 0, 1}, vecs[2])
	assert.Zero(t, Cosine(vecs[0], vecs[2]))
}

func TestGeminiEmbedder(t *testing.T) {
	models := &fakeEmbedModels{vectors: [][]float32{{1, 0}, {0.5, 0.5}}}
	e := NewGeminiEmbedder(models, "text-embedding-004", testEmbedBreaker())

	vecs, err := e.Embed(context.Background(), []string{"query", "profile"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 0}, {0.5, 0.5}}, vecs)
	assert.Equal(t, "text-embedding-004", models.model)
}

func TestGeminiEmbedderErrors(t *testing.T) {
	t.Run("transport", func(t *testing.T) {
		e := NewGeminiEmbedder(&fakeEmbedModels{err: errors.New("quota")}, "m", testEmbedBreaker())
		_, err := e.Embed(context.Background(), []string{"a"})
		require.Error(t, err)
		assert.Equal(t, errx.KindUnavailable, errx.KindOf(err))
	})

	t.Run("short response", func(t *testing.T) {
		e := NewGeminiEmbedder(&fakeEmbedModels{vectors: [][]float32{{1}}}, "m", testEmbedBreaker())
		_, err := e.Embed(context.Background(), []string{"a", "b"})
		assert.Error(t, err)
	})
}

func TestGeminiEmbedderWithoutBreaker(t *testing.T) {
	e := NewGeminiEmbedder(&fakeEmbedModels{vectors: [][]float32{{1, 2}}}, "m", nil)
	vecs, err := e.Embed(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2}}, vecs)

	e = NewGeminiEmbedder(&fakeEmbedModels{err: errors.New("quota")}, "m", nil)
	_, err = e.Embed(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Equal(t, errx.KindUnavailable, errx.KindOf(err))
}
