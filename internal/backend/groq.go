package backend

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/avinier/multibagger/config"
)

// GroqAdapter calls Groq's OpenAI-compatible chat completions API.
type GroqAdapter struct {
	client *resty.Client
	model  string
	apiKey string
}

func NewGroq(cfg *config.Config) *GroqAdapter {
	client := resty.New()
	client.SetBaseURL("https://api.groq.com/openai/v1")
	client.SetTimeout(cfg.RequestTimeout)

	return &GroqAdapter{
		client: client,
		model:  cfg.GroqModel,
		apiKey: cfg.GroqAPIKey,
	}
}

func (g *GroqAdapter) Name() string {
	return "groq"
}

type groqRequest struct {
	Model       string        `json:"model"`
	Messages    []groqMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (g *GroqAdapter) Invoke(ctx context.Context, prompt string, sc *Schema) (*Reply, error) {
	if g.apiKey == "" {
		return nil, &CallError{Backend: g.Name(), Kind: KindAuth, Err: fmt.Errorf("API key not configured")}
	}

	var result groqResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetAuthToken(g.apiKey).
		SetBody(groqRequest{
			Model: g.model,
			Messages: []groqMessage{
				{Role: "system", Content: analystSystemPrompt},
				{Role: "user", Content: prompt + sc.Instructions()},
			},
			MaxTokens:   800,
			Temperature: 0.3,
		}).
		SetResult(&result).
		SetError(&result).
		Post("/chat/completions")
	if err != nil {
		return nil, classify(g.Name(), err)
	}

	switch code := resp.StatusCode(); {
	case code == 401 || code == 403:
		return nil, &CallError{Backend: g.Name(), Kind: KindAuth,
			Err: fmt.Errorf("status %d: %s", code, errMessage(&result))}
	case code == 429:
		return nil, &CallError{Backend: g.Name(), Kind: KindQuota,
			Err: fmt.Errorf("status %d: %s", code, errMessage(&result))}
	case code >= 400:
		return nil, &CallError{Backend: g.Name(), Kind: KindUnknown,
			Err: fmt.Errorf("status %d: %s", code, errMessage(&result))}
	}

	if len(result.Choices) == 0 {
		return nil, malformed(g.Name(), fmt.Errorf("empty choices in response"))
	}

	fields, err := sc.Parse(result.Choices[0].Message.Content)
	if err != nil {
		return nil, malformed(g.Name(), err)
	}

	return &Reply{Backend: g.Name(), Fields: fields}, nil
}

func errMessage(r *groqResponse) string {
	if r != nil && r.Error != nil {
		return r.Error.Message
	}
	return "no error detail"
}
