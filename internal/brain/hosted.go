package brain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kenmarkitan/concierge/internal/reliability"
)

// HostedProvider calls an OpenAI-compatible hosted chat completion API.
type HostedProvider struct {
	client *openai.Client
	model  string
}

func NewHostedProvider(apiKey, baseURL, model string) *HostedProvider {
	cfg := openai.DefaultConfig(apiKey)
	if strings.TrimSpace(baseURL) != "" {
		cfg.BaseURL = baseURL
	}
	return &HostedProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (p *HostedProvider) Name() string { return "hosted" }

func (p *HostedProvider) Generate(ctx context.Context, req Request) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    msgs,
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("hosted completion: %w",
				&reliability.StatusError{Code: apiErr.HTTPStatusCode, Body: fmt.Sprintf("%v", apiErr.Message)})
		}
		return "", fmt.Errorf("hosted completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("hosted completion: %w", reliability.ErrEmptyCompletion)
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("hosted completion: %w", reliability.ErrEmptyCompletion)
	}
	return text, nil
}
