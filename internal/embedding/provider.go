// Package embedding produces dense vector representations of text for
// similarity search over the local paper corpus.
package embedding

import (
	"context"
	"fmt"

	"github.com/mikiiiss/research-assistant/internal/config"
)

// Provider turns text into a dense vector.
type Provider interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float32, error)
}

// New selects the embedding backend from configuration.
func New(cfg config.EmbeddingConfig, llmCfg config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "", "gemini":
		return NewGemini(llmCfg.Gemini.APIKey, cfg.GeminiModel), nil
	case "ollama":
		return NewOllama(llmCfg.Ollama.Host, cfg.OllamaModel), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}
