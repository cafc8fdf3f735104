package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mikiiiss/research-assistant/internal/config"
	"github.com/mikiiiss/research-assistant/internal/llm"
)

// Provider implements llm.Provider against a local Ollama server.
type Provider struct {
	host   string
	model  string
	client *http.Client
}

func NewProvider(cfg config.OllamaConfig) *Provider {
	host := cfg.Host
	if host == "" {
		host = "http://localhost:11434"
	}
	model := cfg.DefaultModel
	if model == "" {
		model = "llama3.1"
	}
	return &Provider{
		host:   host,
		model:  model,
		client: &http.Client{Timeout: 300 * time.Second},
	}
}

func (p *Provider) Name() string {
	return "ollama"
}

// IsConfigured reports whether a host is set. Reachability is only known
// at request time.
func (p *Provider) IsConfigured() bool {
	return p.host != ""
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (p *Provider) Generate(ctx context.Context, prompt, system string) (string, error) {
	resp, err := p.send(ctx, prompt, system, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if genResp.Response == "" {
		return "", fmt.Errorf("empty response from ollama")
	}
	return genResp.Response, nil
}

func (p *Provider) GenerateStream(ctx context.Context, prompt, system string, fn llm.StreamFunc) error {
	resp, err := p.send(ctx, prompt, system, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Ollama streams one JSON object per line.
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var chunk generateResponse
		if err := json.Unmarshal(scanner.Bytes(), &chunk); err != nil {
			continue
		}
		if chunk.Response != "" {
			if err := fn(chunk.Response); err != nil {
				return err
			}
		}
		if chunk.Done {
			return nil
		}
	}
	return scanner.Err()
}

func (p *Provider) send(ctx context.Context, prompt, system string, stream bool) (*http.Response, error) {
	genReq := generateRequest{
		Model:  p.model,
		Prompt: prompt,
		System: system,
		Stream: stream,
		Options: map[string]any{
			"temperature": 0.0,
		},
	}

	body, err := json.Marshal(genReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}
	return resp, nil
}
