package llm

import "context"

// StreamFunc receives incremental text chunks during streaming generation.
// Returning an error aborts the stream.
type StreamFunc func(chunk string) error

// Provider defines the interface for text-generation providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Generate produces a completion for the prompt. The system message may
	// be empty.
	Generate(ctx context.Context, prompt, system string) (string, error)

	// GenerateStream produces a completion incrementally, invoking fn for
	// each text chunk as it arrives.
	GenerateStream(ctx context.Context, prompt, system string, fn StreamFunc) error
}
