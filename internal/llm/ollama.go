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

// OllamaProvider generates against a local Ollama server using the
// non-streaming generate API.
type OllamaProvider struct {
	endpoint string
	model    string
	client   *http.Client
}

// NewOllamaProvider creates a provider for a local Ollama server. The
// model name is required; the endpoint defaults to the standard local
// Ollama address.
func NewOllamaProvider(endpoint, model string) (*OllamaProvider, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("ollama model is required")
	}
	if strings.TrimSpace(endpoint) == "" {
		endpoint = "http://localhost:11434"
	}

	return &OllamaProvider{
		endpoint: strings.TrimRight(endpoint, "/"),
		model:    model,
		client:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Name identifies the provider in logs and errors.
func (p *OllamaProvider) Name() string { return "ollama" }

// GenerateSync performs one generate call. Low temperature and a bounded
// prediction length keep the structured-JSON output stable across runs.
func (p *OllamaProvider) GenerateSync(ctx context.Context, prompt, systemPrompt string) (*Response, error) {
	payload := ollamaGenerateRequest{
		Model:  p.model,
		Prompt: prompt,
		System: systemPrompt,
		Stream: false,
		Options: ollamaOptions{
			Temperature: 0.1,
			NumPredict:  2000,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &ProviderError{
			Provider: p.Name(),
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("%s", strings.TrimSpace(string(errBody))),
		}
	}

	var result ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("decode response: %w", err)}
	}

	text := strings.TrimSpace(result.Response)
	if text == "" {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("empty completion")}
	}

	return &Response{Text: text, Timestamp: time.Now()}, nil
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	System  string        `json:"system,omitempty"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}
