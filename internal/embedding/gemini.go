package embedding

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini embeds text with the Gemini embedding API.
type Gemini struct {
	apiKey string
	model  string
}

func NewGemini(apiKey, model string) *Gemini {
	if model == "" {
		model = "text-embedding-004"
	}
	return &Gemini{apiKey: apiKey, model: model}
}

func (g *Gemini) Name() string {
	return "gemini"
}

func (g *Gemini) Embed(ctx context.Context, text string) ([]float32, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("gemini embedding is not configured (missing API key)")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	em := client.EmbeddingModel(g.model)
	resp, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embedding error: %w", err)
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("empty embedding from gemini")
	}
	return resp.Embedding.Values, nil
}
