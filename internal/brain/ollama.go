package brain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kenmarkitan/concierge/internal/reliability"
)

// OllamaProvider calls a local Ollama-compatible chat endpoint.
type OllamaProvider struct {
	endpoint string
	model    string
	client   *http.Client
}

func NewOllamaProvider(endpoint, model string, timeout time.Duration) *OllamaProvider {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &OllamaProvider{
		endpoint: strings.TrimRight(strings.TrimSpace(endpoint), "/"),
		model:    model,
		client:   &http.Client{Timeout: timeout},
	}
}

func (p *OllamaProvider) Name() string { return "ollama" }

type ollamaRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type ollamaResponse struct {
	Message Message `json:"message"`
}

func (p *OllamaProvider) Generate(ctx context.Context, req Request) (string, error) {
	payload, err := json.Marshal(ollamaRequest{
		Model:    p.model,
		Messages: req.Messages,
		Stream:   false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return "", fmt.Errorf("ollama: %w", &reliability.StatusError{Code: res.StatusCode, Body: string(body)})
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var decoded ollamaResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", reliability.ErrMalformedPayload)
	}

	text := strings.TrimSpace(decoded.Message.Content)
	if text == "" {
		return "", fmt.Errorf("ollama: %w", reliability.ErrEmptyCompletion)
	}
	return text, nil
}
