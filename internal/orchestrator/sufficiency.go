package orchestrator

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mikiiiss/research-assistant/internal/config"
	"github.com/mikiiiss/research-assistant/internal/domain"
)

var recencyKeywords = []string{
	"latest", "recent", "new", "current", "state-of-the-art", "sota",
}

var comprehensiveKeywords = []string{
	"comprehensive", "survey", "review", "systematic review", "meta-analysis", "overview",
}

// SufficiencyEvaluator decides whether local search results satisfy a query
// or external providers should be consulted. Pure rule chain, no I/O.
type SufficiencyEvaluator struct {
	minPapers              int
	minPapersComprehensive int
	stalenessYears         int

	now func() time.Time
}

func NewSufficiencyEvaluator(cfg config.OrchestratorConfig) *SufficiencyEvaluator {
	minPapers := cfg.MinPapers
	if minPapers <= 0 {
		minPapers = 5
	}
	minComprehensive := cfg.MinPapersComprehensive
	if minComprehensive <= 0 {
		minComprehensive = 20
	}
	staleness := cfg.StalenessYears
	if staleness <= 0 {
		staleness = 2
	}
	return &SufficiencyEvaluator{
		minPapers:              minPapers,
		minPapersComprehensive: minComprehensive,
		stalenessYears:         staleness,
		now:                    time.Now,
	}
}

// Evaluate runs the rule chain over the local papers. The first failing rule
// determines the verdict; passing every rule means local results suffice.
func (e *SufficiencyEvaluator) Evaluate(query string, papers []domain.Paper) domain.SufficiencyVerdict {
	queryLower := strings.ToLower(query)
	metrics := computeMetrics(papers)
	currentYear := e.now().Year()

	insufficient := func(reason string) domain.SufficiencyVerdict {
		return domain.SufficiencyVerdict{
			Sufficient: false,
			Reason:     reason,
			Action:     domain.ActionExternalSearch,
			Metrics:    metrics,
		}
	}

	// Rule 1: minimum count floor.
	if metrics.LocalCount == 0 {
		return insufficient("No papers found in local database")
	}
	if metrics.LocalCount < e.minPapers {
		return insufficient(fmt.Sprintf(
			"Only %d papers found locally, need at least %d for quality analysis",
			metrics.LocalCount, e.minPapers))
	}

	// Rule 2: recency check for time-sensitive queries. The recent-year
	// strings count as recency vocabulary too.
	recentYears := []string{strconv.Itoa(currentYear), strconv.Itoa(currentYear - 1)}
	if containsAny(queryLower, recencyKeywords) || containsAny(queryLower, recentYears) {
		if metrics.NewestYear > 0 && currentYear-metrics.NewestYear > e.stalenessYears {
			return insufficient(fmt.Sprintf(
				"Query requests recent papers but newest local paper is from %d (>%d years old)",
				metrics.NewestYear, e.stalenessYears))
		}
	}

	// Rule 3: comprehensive reviews need a larger corpus.
	if containsAny(queryLower, comprehensiveKeywords) && metrics.LocalCount < e.minPapersComprehensive {
		return insufficient(fmt.Sprintf(
			"Comprehensive review requested but only %d papers found (need %d+)",
			metrics.LocalCount, e.minPapersComprehensive))
	}

	// Rule 4: an explicit recent year in the query needs papers from that era.
	if containsAny(queryLower, recentYears) && metrics.NewestYear < currentYear-1 {
		return insufficient(fmt.Sprintf(
			"Query specifies %s but no papers from those years in local database",
			strings.Join(recentYears, "/")))
	}

	return domain.SufficiencyVerdict{
		Sufficient: true,
		Reason:     fmt.Sprintf("Found %d relevant papers locally with good coverage", metrics.LocalCount),
		Action:     domain.ActionUseLocal,
		Metrics:    metrics,
	}
}

func computeMetrics(papers []domain.Paper) domain.SufficiencyMetrics {
	metrics := domain.SufficiencyMetrics{LocalCount: len(papers)}

	var citationSum, citationCount int
	for _, p := range papers {
		if p.Year > 0 {
			if metrics.NewestYear == 0 || p.Year > metrics.NewestYear {
				metrics.NewestYear = p.Year
			}
			if metrics.OldestYear == 0 || p.Year < metrics.OldestYear {
				metrics.OldestYear = p.Year
			}
		}
		if p.CitationCount > 0 {
			citationSum += p.CitationCount
			citationCount++
		}
	}
	if citationCount > 0 {
		metrics.AvgCitations = float64(citationSum) / float64(citationCount)
	}
	return metrics
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
