package llm

import (
	"context"
	"testing"

	"github.com/Market-intel-core-v1/server/internal/market/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChatModel(t *testing.T) {
	cfg := model.GeminiConfig{APIKey: "test-key", BaseURL: "http://127.0.0.1:1", MaxTokens: 256}

	client, err := NewClient(context.Background(), cfg)
	require.NoError(t, err)

	cm, err := NewChatModel(context.Background(), client, "gemini-2.5-flash-lite", cfg)
	require.NoError(t, err)
	assert.NotNil(t, cm)
}

func TestNewChatModelRequiresClient(t *testing.T) {
	_, err := NewChatModel(context.Background(), nil, "gemini-2.5-flash-lite", model.GeminiConfig{})
	assert.Error(t, err)
}
