package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mikiiiss/research-assistant/internal/config"
	"github.com/mikiiiss/research-assistant/internal/domain"
)

func newTestEvaluator() *SufficiencyEvaluator {
	e := NewSufficiencyEvaluator(config.OrchestratorConfig{
		MinPapers:              5,
		MinPapersComprehensive: 20,
		StalenessYears:         2,
	})
	e.now = func() time.Time {
		return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	}
	return e
}

func papersWithYears(years ...int) []domain.Paper {
	papers := make([]domain.Paper, len(years))
	for i, y := range years {
		papers[i] = domain.Paper{ID: string(rune('a' + i)), Year: y}
	}
	return papers
}

func TestSufficiencyZeroPapers(t *testing.T) {
	v := newTestEvaluator().Evaluate("transformers", nil)

	assert.False(t, v.Sufficient)
	assert.Equal(t, domain.ActionExternalSearch, v.Action)
	assert.Equal(t, "No papers found in local database", v.Reason)
	assert.Equal(t, 0, v.Metrics.LocalCount)
}

func TestSufficiencyBelowFloor(t *testing.T) {
	v := newTestEvaluator().Evaluate("transformers", papersWithYears(2024, 2025, 2026))

	assert.False(t, v.Sufficient)
	assert.Contains(t, v.Reason, "Only 3 papers")
}

func TestSufficiencyRecencyStaleness(t *testing.T) {
	// Five papers clears the floor, but the newest is four years old and the
	// query asks for recent work.
	papers := papersWithYears(2018, 2019, 2020, 2021, 2022)

	v := newTestEvaluator().Evaluate("latest transformer research", papers)

	assert.False(t, v.Sufficient)
	assert.Contains(t, v.Reason, "newest local paper is from 2022")
}

func TestSufficiencyRecencyFreshCorpusPasses(t *testing.T) {
	papers := papersWithYears(2023, 2024, 2025, 2025, 2026)

	v := newTestEvaluator().Evaluate("latest transformer research", papers)

	assert.True(t, v.Sufficient)
	assert.Equal(t, domain.ActionUseLocal, v.Action)
}

func TestSufficiencyComprehensiveFloor(t *testing.T) {
	papers := papersWithYears(2022, 2023, 2024, 2025, 2026, 2026)

	v := newTestEvaluator().Evaluate("a comprehensive survey of diffusion models", papers)

	assert.False(t, v.Sufficient)
	assert.Contains(t, v.Reason, "need 20+")
}

func TestSufficiencyExplicitRecentYear(t *testing.T) {
	// Clock fixed at 2026: the explicit-year rule covers 2026 and 2025.
	papers := papersWithYears(2023, 2023, 2024, 2024, 2024)

	v := newTestEvaluator().Evaluate("diffusion model papers from 2026", papers)

	assert.False(t, v.Sufficient)
	assert.Contains(t, v.Reason, "no papers from those years")
}

func TestSufficiencyAllRulesPass(t *testing.T) {
	papers := papersWithYears(2020, 2022, 2024, 2025, 2026)
	papers[0].CitationCount = 100
	papers[1].CitationCount = 50

	v := newTestEvaluator().Evaluate("graph neural networks", papers)

	assert.True(t, v.Sufficient)
	assert.Equal(t, domain.ActionUseLocal, v.Action)
	assert.Equal(t, 5, v.Metrics.LocalCount)
	assert.Equal(t, 2026, v.Metrics.NewestYear)
	assert.Equal(t, 2020, v.Metrics.OldestYear)
	assert.Equal(t, 75.0, v.Metrics.AvgCitations)
}
