package llm

import (
	"fmt"

	"voiceboard/internal/config"
)

// NewProvider selects and constructs a provider from configuration.
// Selection happens once at startup; an unknown provider name is a fatal
// configuration error here, never a per-call failure.
func NewProvider(cfg config.LLM) (Provider, error) {
	switch cfg.Provider {
	case "ollama":
		return NewOllamaProvider(cfg.Host, cfg.Model)
	case "nvidia":
		return NewNvidiaProvider(cfg.Host, cfg.Model, cfg.APIKey)
	case "gemini":
		return NewGeminiProvider(cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown llm provider: %q", cfg.Provider)
	}
}
