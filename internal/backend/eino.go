package backend

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	einoschema "github.com/cloudwego/eino/schema"

	"github.com/avinier/multibagger/config"
)

const analystSystemPrompt = "You are an expert equity analyst specializing in " +
	"small and mid cap multibagger candidates. Provide concise, actionable " +
	"insights and always respond with valid JSON only."

// chatAdapter wraps an eino chat model as a backend Adapter.
type chatAdapter struct {
	name  string
	model model.ChatModel
}

func (a *chatAdapter) Name() string {
	return a.name
}

func (a *chatAdapter) Invoke(ctx context.Context, prompt string, sc *Schema) (*Reply, error) {
	messages := []*einoschema.Message{
		einoschema.SystemMessage(analystSystemPrompt),
		einoschema.UserMessage(prompt + sc.Instructions()),
	}

	msg, err := a.model.Generate(ctx, messages)
	if err != nil {
		return nil, classify(a.name, err)
	}

	fields, err := sc.Parse(msg.Content)
	if err != nil {
		return nil, malformed(a.name, err)
	}

	return &Reply{Backend: a.name, Fields: fields}, nil
}

// NewDeepSeek builds the DeepSeek adapter.
func NewDeepSeek(ctx context.Context, cfg *config.Config) (Adapter, error) {
	cm, err := deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
		APIKey:    cfg.DeepSeekAPIKey,
		Model:     cfg.DeepSeekModel,
		MaxTokens: 800,
	})
	if err != nil {
		return nil, fmt.Errorf("create deepseek model: %w", err)
	}
	return &chatAdapter{name: "deepseek", model: cm}, nil
}

// NewOpenAI builds the OpenAI adapter. BaseURL allows any
// OpenAI-compatible endpoint.
func NewOpenAI(ctx context.Context, cfg *config.Config) (Adapter, error) {
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create openai model: %w", err)
	}
	return &chatAdapter{name: "openai", model: cm}, nil
}
