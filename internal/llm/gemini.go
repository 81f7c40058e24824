package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiProvider generates through the Gemini API via the official SDK.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a hosted Gemini provider. The API key is
// required; the model defaults to a fast flash variant suited to short
// structured completions.
func NewGeminiProvider(apiKey, model string) (*GeminiProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if strings.TrimSpace(model) == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiProvider{client: client, model: model}, nil
}

// Name identifies the provider in logs and errors.
func (p *GeminiProvider) Name() string { return "gemini" }

// GenerateSync performs one generate-content call with the system
// protocol as a system instruction.
func (p *GeminiProvider) GenerateSync(ctx context.Context, prompt, systemPrompt string) (*Response, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.1),
		MaxOutputTokens: 2048,
	}
	if systemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), cfg)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: err}
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("empty completion")}
	}

	return &Response{Text: text, Timestamp: time.Now()}, nil
}
