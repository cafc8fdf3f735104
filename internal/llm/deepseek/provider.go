package deepseek

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mikiiiss/research-assistant/internal/config"
	"github.com/mikiiiss/research-assistant/internal/llm"
)

// Provider implements llm.Provider against the DeepSeek chat-completions API.
type Provider struct {
	apiKey  string
	model   string
	client  *http.Client
	baseURL string
}

func NewProvider(cfg config.DeepSeekConfig) *Provider {
	model := cfg.Model
	if model == "" {
		model = "deepseek-chat"
	}
	return &Provider{
		apiKey:  cfg.APIKey,
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
		baseURL: "https://api.deepseek.com/v1",
	}
}

func (p *Provider) Name() string {
	return "deepseek"
}

func (p *Provider) IsConfigured() bool {
	return p.apiKey != ""
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type chatStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

func (p *Provider) Generate(ctx context.Context, prompt, system string) (string, error) {
	resp, err := p.send(ctx, prompt, system, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no response from DeepSeek")
	}
	return chatResp.Choices[0].Message.Content, nil
}

func (p *Provider) GenerateStream(ctx context.Context, prompt, system string, fn llm.StreamFunc) error {
	resp, err := p.send(ctx, prompt, system, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			return nil
		}
		var chunk chatStreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if content := chunk.Choices[0].Delta.Content; content != "" {
			if err := fn(content); err != nil {
				return err
			}
		}
	}
	return scanner.Err()
}

func (p *Provider) send(ctx context.Context, prompt, system string, stream bool) (*http.Response, error) {
	if !p.IsConfigured() {
		return nil, fmt.Errorf("deepseek provider is not configured (missing API key)")
	}

	messages := make([]chatMessage, 0, 2)
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	chatReq := chatRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: 0,
		MaxTokens:   2048,
		Stream:      stream,
	}

	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("deepseek returned status %d", resp.StatusCode)
	}
	return resp, nil
}
