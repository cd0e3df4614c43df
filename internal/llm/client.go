// Package llm builds the Gemini client and eino chat models shared by the
// vision, moderation and ambassador components.
package llm

import (
	"context"
	"fmt"

	"github.com/Market-intel-core-v1/server/internal/market/model"
	logx "github.com/Market-intel-core-v1/server/pkg/logger"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"
)

// NewClient creates a Gemini API client. Callers check cfg.Enabled first; a
// client without a key would only fail at call time.
func NewClient(ctx context.Context, cfg model.GeminiConfig) (*genai.Client, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}
	return client, nil
}

// NewChatModel wraps the client in an eino chat model for modelName.
func NewChatModel(ctx context.Context, client *genai.Client, modelName string, cfg model.GeminiConfig) (*gemini.ChatModel, error) {
	if client == nil {
		return nil, fmt.Errorf("gemini client is nil")
	}

	maxTokens := cfg.MaxTokens
	temperature := cfg.Temperature
	cm, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       modelName,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Str("model", modelName).Msg("Error creating chat model")
		return nil, fmt.Errorf("error creating chat model %s: %w", modelName, err)
	}
	return cm, nil
}
