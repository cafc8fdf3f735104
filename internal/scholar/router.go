package scholar

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/mikiiiss/research-assistant/internal/domain"
)

// Router picks a primary and a fallback provider per research domain and
// merges their results. A provider failure contributes zero papers and is
// never surfaced as a router error.
type Router struct {
	arxiv           Provider
	pubmed          Provider
	semanticScholar Provider
	minResults      int
}

func NewRouter(arxiv, pubmed, semanticScholar Provider, minResults int) *Router {
	if minResults <= 0 {
		minResults = 5
	}
	return &Router{
		arxiv:           arxiv,
		pubmed:          pubmed,
		semanticScholar: semanticScholar,
		minResults:      minResults,
	}
}

// route returns the primary and fallback provider for a domain.
func (r *Router) route(d domain.ResearchDomain) (Provider, Provider) {
	switch d {
	case domain.DomainMedical:
		return r.pubmed, r.semanticScholar
	case domain.DomainTech, domain.DomainPhysics:
		return r.arxiv, r.semanticScholar
	default:
		return r.semanticScholar, r.arxiv
	}
}

// Search queries the primary provider for the domain and, when it errors or
// returns fewer than the minimum result count, also queries the fallback.
// Primary results come first in the merged list.
func (r *Router) Search(ctx context.Context, query string, d domain.ResearchDomain, limit int) []domain.Paper {
	primary, fallback := r.route(d)

	papers, err := primary.Search(ctx, query, limit)
	if err != nil {
		log.Warn().Err(err).
			Str("provider", primary.Name()).
			Str("domain", string(d)).
			Msg("primary scholar provider failed")
		papers = nil
	}

	if err == nil && len(papers) >= r.minResults {
		return papers
	}

	fallbackPapers, fbErr := fallback.Search(ctx, query, limit)
	if fbErr != nil {
		log.Warn().Err(fbErr).
			Str("provider", fallback.Name()).
			Str("domain", string(d)).
			Msg("fallback scholar provider failed")
		return papers
	}

	return mergePapers(papers, fallbackPapers)
}

// mergePapers concatenates primary then fallback results, dropping fallback
// entries whose ID or title already appeared.
func mergePapers(primary, fallback []domain.Paper) []domain.Paper {
	seen := make(map[string]struct{}, len(primary))
	for _, p := range primary {
		seen[paperKey(p)] = struct{}{}
	}

	merged := primary
	for _, p := range fallback {
		key := paperKey(p)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, p)
	}
	return merged
}

func paperKey(p domain.Paper) string {
	if p.ID != "" {
		return p.ID
	}
	return p.Title
}
