package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultNvidiaURL = "https://integrate.api.nvidia.com/v1/chat/completions"

// NvidiaProvider generates through NVIDIA's hosted chat-completions API.
// The system prompt travels as a system-role message rather than a
// dedicated request field.
type NvidiaProvider struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

// NewNvidiaProvider creates a hosted-API provider. API key and model are
// required; missing credentials fail here, at construction, not per call.
func NewNvidiaProvider(baseURL, model, apiKey string) (*NvidiaProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("nvidia api key is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("nvidia model is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultNvidiaURL
	}

	return &NvidiaProvider{
		baseURL: baseURL,
		model:   model,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 25 * time.Second},
	}, nil
}

// Name identifies the provider in logs and errors.
func (p *NvidiaProvider) Name() string { return "nvidia" }

// GenerateSync performs one chat-completions call.
func (p *NvidiaProvider) GenerateSync(ctx context.Context, prompt, systemPrompt string) (*Response, error) {
	messages := make([]chatMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	payload := chatRequest{
		Model:       p.model,
		Messages:    messages,
		MaxTokens:   1024,
		Temperature: 0.2,
		TopP:        0.9,
		Stream:      false,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &ProviderError{
			Provider: p.Name(),
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("%s", strings.TrimSpace(string(errBody))),
		}
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("decode response: %w", err)}
	}

	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("empty completion")}
	}

	return &Response{
		Text:      strings.TrimSpace(chatResp.Choices[0].Message.Content),
		Timestamp: time.Now(),
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}
