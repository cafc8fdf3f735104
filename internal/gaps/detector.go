// Package gaps finds under-researched areas in a paper corpus by combining
// LLM synthesis strategies with pure statistical checks.
package gaps

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mikiiiss/research-assistant/internal/config"
	"github.com/mikiiiss/research-assistant/internal/domain"
	"github.com/mikiiiss/research-assistant/internal/embedding"
	"github.com/mikiiiss/research-assistant/internal/llm"
)

// dedupPrefixLen is how many lowercase description characters identify a gap
// for deduplication.
const dedupPrefixLen = 80

// Generator is the LLM surface the detector needs.
type Generator interface {
	Generate(ctx context.Context, prompt, system string) (string, error)
}

// Finder detects research gaps for a query.
type Finder interface {
	Detect(ctx context.Context, query string) ([]domain.Gap, error)
}

// Detector runs the gap strategies over a similarity-searched candidate set.
type Detector struct {
	generator Generator
	embedder  embedding.Provider
	searcher  domain.PaperSearcher

	maxGaps                 int
	candidateLimit          int
	enableContradiction     bool
	enableMissingConnection bool

	now func() time.Time
}

func NewDetector(generator Generator, embedder embedding.Provider, searcher domain.PaperSearcher, cfg config.OrchestratorConfig) *Detector {
	maxGaps := cfg.MaxGaps
	if maxGaps <= 0 {
		maxGaps = 5
	}
	candidateLimit := cfg.GapCandidateLimit
	if candidateLimit <= 0 {
		candidateLimit = 20
	}
	return &Detector{
		generator:               generator,
		embedder:                embedder,
		searcher:                searcher,
		maxGaps:                 maxGaps,
		candidateLimit:          candidateLimit,
		enableContradiction:     cfg.EnableContradiction,
		enableMissingConnection: cfg.EnableMissingConnection,
		now:                     time.Now,
	}
}

// Detect embeds the query, gathers candidate papers and runs the strategies.
// An empty candidate set yields no gaps.
func (d *Detector) Detect(ctx context.Context, query string) ([]domain.Gap, error) {
	vec, err := d.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("gap detection: embedding failed: %w", err)
	}

	papers, err := d.searcher.SimilaritySearch(ctx, vec, d.candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("gap detection: candidate search failed: %w", err)
	}
	if len(papers) == 0 {
		return nil, nil
	}

	return d.DetectFromPapers(ctx, query, papers), nil
}

// DetectFromPapers runs the strategy chain over an already-fetched candidate
// set. Strategy failures contribute zero gaps.
func (d *Detector) DetectFromPapers(ctx context.Context, query string, papers []domain.Paper) []domain.Gap {
	var gaps []domain.Gap

	gaps = append(gaps, d.semanticGaps(ctx, query, head(papers, 15))...)
	if d.enableContradiction {
		gaps = append(gaps, d.contradictionGaps(ctx, query, head(papers, 10))...)
	}
	if d.enableMissingConnection {
		gaps = append(gaps, d.missingConnectionGaps(ctx, query, head(papers, 20))...)
	}
	gaps = append(gaps, d.temporalGaps(query, papers)...)

	gaps = deduplicate(gaps)
	rank(gaps)

	if len(gaps) == 0 {
		gaps = append(gaps, domain.Gap{
			ID:          uuid.NewString(),
			Type:        domain.GapOther,
			Description: fmt.Sprintf("While individual aspects of '%s' are studied, comprehensive integration of recent findings remains limited.", query),
			Importance:  "Opportunity for systematic review or meta-analysis",
			Confidence:  0.6,
		})
	}

	if len(gaps) > d.maxGaps {
		gaps = gaps[:d.maxGaps]
	}
	return gaps
}

// gapPayload is the shape the LLM strategies are prompted to emit.
type gapPayload struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Importance  string   `json:"importance"`
	Confidence  float64  `json:"confidence"`
	Evidence    []string `json:"evidence"`
}

func (d *Detector) semanticGaps(ctx context.Context, query string, papers []domain.Paper) []domain.Gap {
	summaries := make([]string, 0, len(papers))
	for i, p := range papers {
		year := "N/A"
		if p.Year > 0 {
			year = fmt.Sprintf("%d", p.Year)
		}
		abstract := p.Abstract
		if abstract == "" {
			abstract = "No abstract"
		} else {
			abstract = truncate(abstract, 200)
		}
		summaries = append(summaries, fmt.Sprintf("%d. %s (%s)\n   %s...", i+1, p.Title, year, abstract))
	}

	prompt := fmt.Sprintf(`Analyze these research papers on "%s" and identify SEMANTIC GAPS - areas that are understudied or missing from current research.

Papers:
%s

Identify 2-3 semantic gaps by finding:
1. Topics mentioned across papers but never deeply explored
2. Methodologies that could be applied but haven't been
3. Perspectives or domains that are underrepresented

Format as JSON:
[
  {
    "type": "semantic",
    "description": "...",
    "importance": "...",
    "evidence": ["paper title 1", "paper title 2"]
  }
]`, query, strings.Join(summaries, "\n"))

	return d.runLLMStrategy(ctx, "semantic", prompt, domain.GapSemantic)
}

func (d *Detector) contradictionGaps(ctx context.Context, query string, papers []domain.Paper) []domain.Gap {
	claims := make([]string, 0, len(papers))
	for i, p := range papers {
		abstract := p.Abstract
		if abstract == "" {
			abstract = "No abstract"
		} else {
			abstract = truncate(abstract, 150)
		}
		claims = append(claims, fmt.Sprintf("%d. %s - Key finding: %s...", i+1, p.Title, abstract))
	}

	prompt := fmt.Sprintf(`Analyze these research papers on "%s" and identify CONTRADICTIONS - conflicting findings or claims.

Papers:
%s

Find 1-2 contradictions where papers make conflicting claims about effectiveness, performance metrics, theoretical assumptions or experimental results.

Format as JSON:
[
  {
    "type": "contradiction",
    "description": "...",
    "importance": "...",
    "evidence": ["paper 1", "paper 2"]
  }
]`, query, strings.Join(claims, "\n"))

	return d.runLLMStrategy(ctx, "contradiction", prompt, domain.GapContradiction)
}

func (d *Detector) missingConnectionGaps(ctx context.Context, query string, papers []domain.Paper) []domain.Gap {
	concepts := make([]string, 0, 20)
	seen := make(map[string]struct{})
	for _, p := range papers {
		for _, word := range strings.Fields(strings.ToLower(p.Title)) {
			if len(word) <= 5 {
				continue
			}
			if _, ok := seen[word]; ok {
				continue
			}
			seen[word] = struct{}{}
			concepts = append(concepts, word)
			if len(concepts) == 20 {
				break
			}
		}
		if len(concepts) == 20 {
			break
		}
	}

	prompt := fmt.Sprintf(`Research topic: "%s"

Key concepts appearing in literature: %s

Identify 1-2 MISSING CONNECTIONS - combinations of concepts that SHOULD be studied together but aren't.

Format as JSON:
[
  {
    "type": "missing_connection",
    "description": "Connection between X and Y is unexplored",
    "importance": "..."
  }
]`, query, strings.Join(concepts, ", "))

	return d.runLLMStrategy(ctx, "missing_connection", prompt, domain.GapMissingConnection)
}

// runLLMStrategy sends the prompt and parses the JSON-array response.
// Any error or parse failure is logged and yields zero gaps.
func (d *Detector) runLLMStrategy(ctx context.Context, name, prompt string, fallbackType domain.GapType) []domain.Gap {
	response, err := d.generator.Generate(ctx, prompt, "You are a research analyst. Respond with only the requested JSON array.")
	if err != nil {
		log.Warn().Err(err).Str("strategy", name).Msg("gap strategy failed")
		return nil
	}

	var payloads []gapPayload
	if !llm.ExtractJSONArray(response, &payloads) {
		log.Warn().Str("strategy", name).Msg("gap strategy returned unparseable response")
		return nil
	}

	gaps := make([]domain.Gap, 0, len(payloads))
	for _, p := range payloads {
		if strings.TrimSpace(p.Description) == "" {
			continue
		}
		gapType := domain.GapType(p.Type)
		if p.Type == "" {
			gapType = fallbackType
		}
		gap := domain.Gap{
			ID:          uuid.NewString(),
			Type:        gapType,
			Description: strings.TrimSpace(p.Description),
			Importance:  p.Importance,
			Confidence:  p.Confidence,
			Evidence:    p.Evidence,
		}
		gap.Normalize()
		gaps = append(gaps, gap)
	}
	return gaps
}

// temporalGaps flags topics whose publication activity has declined: more
// than twice as many papers in the older window than in the recent one.
func (d *Detector) temporalGaps(query string, papers []domain.Paper) []domain.Gap {
	year := d.now().Year()
	recentCutoff := year - 2
	oldCutoff := year - 5

	var recent, old int
	for _, p := range papers {
		switch {
		case p.Year >= recentCutoff:
			recent++
		case p.Year >= oldCutoff:
			old++
		}
	}

	if old <= recent*2 {
		return nil
	}

	gap := domain.Gap{
		ID:          uuid.NewString(),
		Type:        domain.GapTemporal,
		Description: fmt.Sprintf("Research on '%s' has declined recently", query),
		Importance:  fmt.Sprintf("Was active %d-%d (%d papers) but only %d papers in last 2 years", oldCutoff, recentCutoff, old, recent),
	}
	gap.Normalize()
	return []domain.Gap{gap}
}

// deduplicate keeps the first gap for each lowercase description prefix.
func deduplicate(gaps []domain.Gap) []domain.Gap {
	seen := make(map[string]struct{}, len(gaps))
	unique := gaps[:0]
	for _, g := range gaps {
		key := strings.ToLower(g.Description)
		if len(key) > dedupPrefixLen {
			key = key[:dedupPrefixLen]
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, g)
	}
	return unique
}

var gapPriority = map[domain.GapType]int{
	domain.GapContradiction:     4,
	domain.GapSemantic:          3,
	domain.GapMissingConnection: 2,
	domain.GapTemporal:          1,
}

// rank orders gaps by strategy priority, preserving insertion order within
// the same priority.
func rank(gaps []domain.Gap) {
	sort.SliceStable(gaps, func(i, j int) bool {
		return gapPriority[gaps[i].Type] > gapPriority[gaps[j].Type]
	})
}

func head(papers []domain.Paper, n int) []domain.Paper {
	if len(papers) > n {
		return papers[:n]
	}
	return papers
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
