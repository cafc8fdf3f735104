package scholar

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mikiiiss/research-assistant/internal/domain"
)

func makePapers(source string, n int) []domain.Paper {
	papers := make([]domain.Paper, n)
	for i := range papers {
		papers[i] = domain.Paper{
			ID:     fmt.Sprintf("%s:%d", source, i),
			Title:  fmt.Sprintf("%s paper %d", source, i),
			Source: source,
		}
	}
	return papers
}

func newTestRouter() (*Router, *MockProvider, *MockProvider, *MockProvider) {
	arxiv := NewMockProvider("arxiv")
	pubmed := NewMockProvider("pubmed")
	s2 := NewMockProvider("semanticscholar")
	return NewRouter(arxiv, pubmed, s2, 5), arxiv, pubmed, s2
}

func TestRouterRouteByDomain(t *testing.T) {
	tests := []struct {
		domain   domain.ResearchDomain
		primary  string
		fallback string
	}{
		{domain.DomainMedical, "pubmed", "semanticscholar"},
		{domain.DomainTech, "arxiv", "semanticscholar"},
		{domain.DomainPhysics, "arxiv", "semanticscholar"},
		{domain.DomainGeneral, "semanticscholar", "arxiv"},
	}

	router, _, _, _ := newTestRouter()
	for _, tt := range tests {
		t.Run(string(tt.domain), func(t *testing.T) {
			primary, fallback := router.route(tt.domain)
			assert.Equal(t, tt.primary, primary.Name())
			assert.Equal(t, tt.fallback, fallback.Name())
		})
	}
}

func TestRouterPrimarySufficientSkipsFallback(t *testing.T) {
	router, _, pubmed, s2 := newTestRouter()

	pubmed.On("Search", mock.Anything, "cancer immunotherapy", 10).
		Return(makePapers("pubmed", 7), nil)

	papers := router.Search(context.Background(), "cancer immunotherapy", domain.DomainMedical, 10)

	assert.Len(t, papers, 7)
	pubmed.AssertExpectations(t)
	s2.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestRouterFallbackOnThinResults(t *testing.T) {
	router, _, pubmed, s2 := newTestRouter()

	pubmed.On("Search", mock.Anything, "rare disease", 10).
		Return(makePapers("pubmed", 2), nil)
	s2.On("Search", mock.Anything, "rare disease", 10).
		Return(makePapers("s2", 4), nil)

	papers := router.Search(context.Background(), "rare disease", domain.DomainMedical, 10)

	assert.Len(t, papers, 6)
	// Primary results keep their position ahead of fallback ones.
	assert.Equal(t, "pubmed", papers[0].Source)
	assert.Equal(t, "pubmed", papers[1].Source)
	assert.Equal(t, "semanticscholar", papers[2].Source)
	pubmed.AssertExpectations(t)
	s2.AssertExpectations(t)
}

func TestRouterFallbackOnPrimaryError(t *testing.T) {
	router, arxiv, _, s2 := newTestRouter()

	arxiv.On("Search", mock.Anything, "quantum error correction", 10).
		Return(nil, errors.New("status 503"))
	s2.On("Search", mock.Anything, "quantum error correction", 10).
		Return(makePapers("s2", 3), nil)

	papers := router.Search(context.Background(), "quantum error correction", domain.DomainPhysics, 10)

	assert.Len(t, papers, 3)
	assert.Equal(t, "semanticscholar", papers[0].Source)
}

func TestRouterBothProvidersFail(t *testing.T) {
	router, arxiv, _, s2 := newTestRouter()

	arxiv.On("Search", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("timeout"))
	s2.On("Search", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("timeout"))

	papers := router.Search(context.Background(), "anything", domain.DomainTech, 10)

	assert.Empty(t, papers)
}

func TestRouterMergeDeduplicates(t *testing.T) {
	shared := domain.Paper{ID: "s2:42", Title: "Shared result", Source: "semanticscholar"}

	router, arxiv, _, s2 := newTestRouter()
	s2.On("Search", mock.Anything, "overlap", 10).
		Return([]domain.Paper{shared}, nil)
	arxiv.On("Search", mock.Anything, "overlap", 10).
		Return([]domain.Paper{shared, {ID: "arxiv:1", Title: "Unique", Source: "arxiv"}}, nil)

	papers := router.Search(context.Background(), "overlap", domain.DomainGeneral, 10)

	assert.Len(t, papers, 2)
	assert.Equal(t, "s2:42", papers[0].ID)
	assert.Equal(t, "arxiv:1", papers[1].ID)
}
