package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mikiiiss/research-assistant/internal/config"
	"github.com/mikiiiss/research-assistant/internal/domain"
	"github.com/mikiiiss/research-assistant/internal/embedding"
)

// GapFinder is the gap-detection surface the dispatcher needs.
type GapFinder interface {
	Detect(ctx context.Context, query string) ([]domain.Gap, error)
}

// Dispatcher fans a resolved intent out to its tool branches. Branches run
// concurrently; a branch failure or panic becomes a failed ToolResult for
// that branch only and never takes down the turn.
type Dispatcher struct {
	embedder  embedding.Provider
	searcher  domain.PaperSearcher
	papers    domain.PaperRepository
	gapFinder GapFinder

	searchLimit   int
	evidenceLimit int
	gapWithSearch bool
}

func NewDispatcher(embedder embedding.Provider, searcher domain.PaperSearcher, papers domain.PaperRepository, gapFinder GapFinder, cfg config.OrchestratorConfig) *Dispatcher {
	searchLimit := cfg.SearchLimit
	if searchLimit <= 0 {
		searchLimit = 10
	}
	evidenceLimit := cfg.EvidenceLimit
	if evidenceLimit <= 0 {
		evidenceLimit = 5
	}
	return &Dispatcher{
		embedder:      embedder,
		searcher:      searcher,
		papers:        papers,
		gapFinder:     gapFinder,
		searchLimit:   searchLimit,
		evidenceLimit: evidenceLimit,
		gapWithSearch: cfg.GapDetectionWithSearch,
	}
}

type branch struct {
	tool domain.ToolName
	run  func(ctx context.Context) domain.ToolResult
}

// Dispatch runs every branch for the intent and waits for all of them.
// prevIntent is the session's intent from before this turn; follow_up
// re-dispatches with it, defaulting to search. emit, when non-nil, is called
// with each result as its branch settles.
func (d *Dispatcher) Dispatch(ctx context.Context, intent, prevIntent domain.Intent, query string, sess *domain.Session, emit func(domain.ToolResult)) []domain.ToolResult {
	branches := d.branchesFor(effectiveIntent(intent, prevIntent), query, sess)

	results := make([]domain.ToolResult, len(branches))
	var wg sync.WaitGroup
	var emitMu sync.Mutex

	for i, b := range branches {
		wg.Add(1)
		go func(i int, b branch) {
			defer wg.Done()
			results[i] = runBranch(ctx, b)
			if emit != nil {
				emitMu.Lock()
				emit(results[i])
				emitMu.Unlock()
			}
		}(i, b)
	}
	wg.Wait()

	return results
}

// effectiveIntent unwraps follow_up into the session's previous intent. An
// absent or self-referential previous intent falls back to search.
func effectiveIntent(intent, prevIntent domain.Intent) domain.Intent {
	if intent != domain.IntentFollowUp {
		return intent
	}
	if prevIntent == "" || prevIntent == domain.IntentFollowUp {
		return domain.IntentSearch
	}
	return prevIntent
}

func (d *Dispatcher) branchesFor(intent domain.Intent, query string, sess *domain.Session) []branch {
	vectorSearch := branch{domain.ToolVectorSearch, func(ctx context.Context) domain.ToolResult {
		return d.similaritySearch(ctx, domain.ToolVectorSearch, query, d.searchLimit)
	}}
	gapDetection := branch{domain.ToolGapDetection, func(ctx context.Context) domain.ToolResult {
		return d.detectGaps(ctx, query)
	}}

	switch intent {
	case domain.IntentGapDetection:
		return []branch{gapDetection, vectorSearch}
	case domain.IntentEvidence:
		return []branch{{domain.ToolEvidenceFinder, func(ctx context.Context) domain.ToolResult {
			return d.similaritySearch(ctx, domain.ToolEvidenceFinder, query, d.evidenceLimit)
		}}}
	case domain.IntentCitation:
		return []branch{{domain.ToolCitationLookup, func(ctx context.Context) domain.ToolResult {
			return d.lookupCitations(ctx, sess)
		}}}
	case domain.IntentChatWithPaper, domain.IntentSynthesis:
		return []branch{vectorSearch}
	default:
		// search, and anything unrecognized
		if d.gapWithSearch {
			return []branch{vectorSearch, gapDetection}
		}
		return []branch{vectorSearch}
	}
}

// runBranch converts a branch panic into a failed result for that branch.
func runBranch(ctx context.Context, b branch) (result domain.ToolResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("tool", string(b.tool)).Msg("tool branch panicked")
			result = domain.ToolResult{
				Tool:    b.tool,
				Success: false,
				Error:   fmt.Sprintf("panic: %v", r),
			}
		}
	}()
	return b.run(ctx)
}

func (d *Dispatcher) similaritySearch(ctx context.Context, tool domain.ToolName, query string, limit int) domain.ToolResult {
	start := time.Now()

	vec, err := d.embedder.Embed(ctx, query)
	if err != nil {
		return failedResult(tool, start, fmt.Errorf("embedding failed: %w", err))
	}

	papers, err := d.searcher.SimilaritySearch(ctx, vec, limit)
	if err != nil {
		return failedResult(tool, start, err)
	}

	return domain.ToolResult{
		Tool:     tool,
		Success:  true,
		Payload:  domain.PaperList(papers),
		Duration: time.Since(start),
		Metadata: map[string]any{"count": len(papers)},
	}
}

func (d *Dispatcher) detectGaps(ctx context.Context, query string) domain.ToolResult {
	start := time.Now()

	gaps, err := d.gapFinder.Detect(ctx, query)
	if err != nil {
		return failedResult(domain.ToolGapDetection, start, err)
	}

	return domain.ToolResult{
		Tool:     domain.ToolGapDetection,
		Success:  true,
		Payload:  domain.GapList(gaps),
		Duration: time.Since(start),
		Metadata: map[string]any{"count": len(gaps)},
	}
}

// lookupCitations resolves the session's previously mentioned papers. With
// nothing tracked yet it succeeds with a diagnostic message.
func (d *Dispatcher) lookupCitations(ctx context.Context, sess *domain.Session) domain.ToolResult {
	start := time.Now()

	if sess == nil || len(sess.MentionedPapers) == 0 {
		return domain.ToolResult{
			Tool:     domain.ToolCitationLookup,
			Success:  true,
			Payload:  domain.Diagnostic{"message": "No papers mentioned yet"},
			Duration: time.Since(start),
		}
	}

	papers, err := d.papers.GetByIDs(ctx, sess.MentionedPapers)
	if err != nil {
		return failedResult(domain.ToolCitationLookup, start, err)
	}

	return domain.ToolResult{
		Tool:     domain.ToolCitationLookup,
		Success:  true,
		Payload:  domain.PaperList(papers),
		Duration: time.Since(start),
		Metadata: map[string]any{"count": len(papers)},
	}
}

func failedResult(tool domain.ToolName, start time.Time, err error) domain.ToolResult {
	log.Warn().Err(err).Str("tool", string(tool)).Msg("tool branch failed")
	return domain.ToolResult{
		Tool:     tool,
		Success:  false,
		Error:    err.Error(),
		Duration: time.Since(start),
	}
}
