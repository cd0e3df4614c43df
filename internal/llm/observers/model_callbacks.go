package observers

import (
	"context"
	"strings"

	"github.com/Market-intel-core-v1/server/internal/llm"
	logx "github.com/Market-intel-core-v1/server/pkg/logger"
	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"
)

// Message bodies are only logged at debug; moderated text can be abusive.
func newModelHandler() *callbackHelper.ModelCallbackHandler {
	return &callbackHelper.ModelCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *model.CallbackInput) context.Context {
			ev := logx.Debug().Str("component", string(info.Component)).Str("name", info.Name)
			if input != nil {
				ev = ev.Int("messages", len(input.Messages)).Str("user", lastUserContent(input.Messages))
			}
			ev.Msg("chat model start")
			return ctx
		},
		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *model.CallbackOutput) context.Context {
			if output == nil || output.Message == nil {
				logx.Debug().Str("name", info.Name).Msg("chat model end without message")
				return ctx
			}

			modelName := info.Name
			if output.Config != nil && output.Config.Model != "" {
				modelName = output.Config.Model
			}
			logx.Debug().Str("model", modelName).Str("assistant", strings.TrimSpace(output.Message.Content)).Msg("chat model end")

			if output.Message.ResponseMeta != nil && output.Message.ResponseMeta.Usage != nil {
				usage := output.Message.ResponseMeta.Usage
				inC, outC, totalC := llm.ComputeCost(usage, llm.ResolvePricing(modelName))
				logx.Info().
					Str("model", modelName).
					Int("prompt_tokens", usage.PromptTokens).
					Int("completion_tokens", usage.CompletionTokens).
					Int("total_tokens", usage.TotalTokens).
					Float64("input_cost", inC).
					Float64("output_cost", outC).
					Float64("total_cost", totalC).
					Msg("chat model usage")
			}
			return ctx
		},
		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			logx.Warn().Err(err).Str("name", info.Name).Msg("chat model error")
			return ctx
		},
	}
}

func lastUserContent(msgs []*schema.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if m == nil {
			continue
		}
		if m.Role == schema.User {
			return strings.TrimSpace(m.Content)
		}
	}
	return ""
}
