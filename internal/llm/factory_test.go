package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voiceboard/internal/config"
)

func TestNewProvider(t *testing.T) {
	t.Run("ollama", func(t *testing.T) {
		p, err := NewProvider(config.LLM{Provider: "ollama", Host: "http://localhost:11434", Model: "llama3.2"})
		require.NoError(t, err)
		assert.Equal(t, "ollama", p.Name())
	})

	t.Run("nvidia", func(t *testing.T) {
		p, err := NewProvider(config.LLM{Provider: "nvidia", Model: "m", APIKey: "k"})
		require.NoError(t, err)
		assert.Equal(t, "nvidia", p.Name())
	})

	t.Run("nvidia without key fails at construction", func(t *testing.T) {
		_, err := NewProvider(config.LLM{Provider: "nvidia", Model: "m"})
		require.Error(t, err)
	})

	t.Run("gemini without key fails at construction", func(t *testing.T) {
		_, err := NewProvider(config.LLM{Provider: "gemini", Model: "gemini-2.0-flash"})
		require.Error(t, err)
	})

	t.Run("unknown provider is a configuration error", func(t *testing.T) {
		_, err := NewProvider(config.LLM{Provider: "skynet"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown llm provider")
	})
}
