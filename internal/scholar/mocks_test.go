package scholar

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mikiiiss/research-assistant/internal/domain"
)

type MockProvider struct {
	mock.Mock
	name string
}

func NewMockProvider(name string) *MockProvider {
	return &MockProvider{name: name}
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Search(ctx context.Context, query string, limit int) ([]domain.Paper, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Paper), args.Error(1)
}
