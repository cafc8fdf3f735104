package gaps

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mikiiiss/research-assistant/internal/domain"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt, system string) (string, error) {
	args := m.Called(ctx, prompt, system)
	return args.String(0), args.Error(1)
}

type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Name() string {
	return "mock"
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) SimilaritySearch(ctx context.Context, embedding []float32, limit int) ([]domain.Paper, error) {
	args := m.Called(ctx, embedding, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Paper), args.Error(1)
}
