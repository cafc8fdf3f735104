// Package orchestrator coordinates a conversational research turn: session
// state, intent resolution, concurrent tool dispatch, sufficiency checking
// and external provider escalation.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mikiiiss/research-assistant/internal/config"
	"github.com/mikiiiss/research-assistant/internal/domain"
)

// papersTrackedPerResult caps how many paper IDs a single tool result adds
// to the session's mentioned set.
const papersTrackedPerResult = 5

// minTopicLength filters query words tracked as topics.
const minTopicLength = 4

// ErrNoUsableResult is returned when every branch failed and no external
// papers were found.
var ErrNoUsableResult = errors.New("no tool produced a usable result")

// ExternalSearcher escalates a query to external literature providers.
type ExternalSearcher interface {
	Search(ctx context.Context, query string, d domain.ResearchDomain, limit int) []domain.Paper
}

// Service is the per-turn orchestration pipeline. A nil session store puts
// it in memory-less mode: each turn runs against a fresh throwaway session.
type Service struct {
	store       domain.SessionStore
	resolver    *IntentResolver
	dispatcher  *Dispatcher
	sufficiency *SufficiencyEvaluator
	classifier  *DomainClassifier
	external    ExternalSearcher

	externalLimit int
}

func NewService(store domain.SessionStore, resolver *IntentResolver, dispatcher *Dispatcher, sufficiency *SufficiencyEvaluator, classifier *DomainClassifier, external ExternalSearcher, cfg config.OrchestratorConfig) *Service {
	externalLimit := cfg.ExternalLimit
	if externalLimit <= 0 {
		externalLimit = 20
	}
	return &Service{
		store:         store,
		resolver:      resolver,
		dispatcher:    dispatcher,
		sufficiency:   sufficiency,
		classifier:    classifier,
		external:      external,
		externalLimit: externalLimit,
	}
}

// Sessions exposes the session store for the HTTP layer. Nil in memory-less
// mode.
func (s *Service) Sessions() domain.SessionStore {
	return s.store
}

// ProcessQuery runs one full turn. sessionID may be uuid.Nil to start a new
// conversation; an expired or unknown ID also gets a fresh session rather
// than an error.
func (s *Service) ProcessQuery(ctx context.Context, query string, sessionID uuid.UUID) (*domain.TurnResult, error) {
	return s.processTurn(ctx, query, sessionID, nil)
}

func (s *Service) processTurn(ctx context.Context, query string, sessionID uuid.UUID, emit func(domain.ToolResult)) (*domain.TurnResult, error) {
	sess, persisted := s.getOrCreateSession(ctx, sessionID)

	userMsg := domain.Message{Role: domain.RoleUser, Content: query}
	sess.AddMessage(userMsg)
	if persisted {
		if err := s.store.AppendMessage(ctx, sess.ID, userMsg); err != nil {
			log.Warn().Err(err).Stringer("session_id", sess.ID).Msg("failed to persist user message")
		}
	}

	// The previous intent is captured before this turn's intent overwrites
	// it; follow_up dispatches with it.
	prevIntent := sess.CurrentIntent
	intent := s.resolver.Resolve(ctx, query, sess)
	sess.CurrentIntent = intent
	if persisted {
		if err := s.store.SetIntent(ctx, sess.ID, intent); err != nil {
			log.Warn().Err(err).Stringer("session_id", sess.ID).Msg("failed to persist intent")
		}
	}
	log.Info().Str("intent", string(intent)).Stringer("session_id", sess.ID).Msg("processing query")

	toolResults := s.dispatcher.Dispatch(ctx, intent, prevIntent, query, sess, emit)

	localPapers := extractPapers(toolResults, domain.ToolVectorSearch, domain.ToolEvidenceFinder)
	verdict := s.sufficiency.Evaluate(query, localPapers)

	var domVerdict *domain.DomainVerdict
	if !verdict.Sufficient {
		v := s.classifier.Classify(query, localPapers)
		domVerdict = &v
		log.Info().
			Str("domain", string(v.Domain)).
			Str("reason", verdict.Reason).
			Msg("local results insufficient, searching external providers")

		if external := s.external.Search(ctx, query, v.Domain, s.externalLimit); len(external) > 0 {
			result := domain.ToolResult{
				Tool:    domain.ToolExternalSearch,
				Success: true,
				Payload: domain.PaperList(external),
				Metadata: map[string]any{
					"count":  len(external),
					"domain": string(v.Domain),
					"source": "scholar",
				},
			}
			toolResults = append(toolResults, result)
			if emit != nil {
				emit(result)
			}
		}
	}

	s.trackEntities(ctx, sess, persisted, query, toolResults)

	assistantMsg := domain.Message{
		Role:     domain.RoleAssistant,
		Content:  summarizeResults(toolResults),
		Metadata: map[string]any{"tool_results": toolResults},
	}
	sess.AddMessage(assistantMsg)
	if persisted {
		if err := s.store.AppendMessage(ctx, sess.ID, assistantMsg); err != nil {
			log.Warn().Err(err).Stringer("session_id", sess.ID).Msg("failed to persist assistant message")
		}
	}

	if !anyUsable(toolResults) {
		return nil, ErrNoUsableResult
	}

	return &domain.TurnResult{
		SessionID:   sess.ID,
		Query:       query,
		Intent:      intent,
		ToolResults: toolResults,
		Sufficiency: &verdict,
		Domain:      domVerdict,
		Context: domain.TurnContext{
			MessageCount:    len(sess.Messages),
			MentionedPapers: sess.MentionedPapers,
			MentionedTopics: sess.MentionedTopics,
		},
	}, nil
}

// getOrCreateSession loads or creates the session, degrading to a throwaway
// in-memory one when the store is absent or failing. The second return
// reports whether writes should be persisted.
func (s *Service) getOrCreateSession(ctx context.Context, sessionID uuid.UUID) (*domain.Session, bool) {
	if s.store == nil {
		return domain.NewSession(), false
	}

	if sessionID != uuid.Nil {
		sess, err := s.store.Get(ctx, sessionID)
		if err == nil {
			return sess, true
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			log.Warn().Err(err).Stringer("session_id", sessionID).Msg("session load failed")
		}
	}

	sess, err := s.store.Create(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("session create failed, continuing without memory")
		return domain.NewSession(), false
	}
	return sess, true
}

// trackEntities records topics from the query and papers/gaps from the tool
// results, both in the in-memory session and in the store.
func (s *Service) trackEntities(ctx context.Context, sess *domain.Session, persisted bool, query string, results []domain.ToolResult) {
	for _, word := range strings.Fields(strings.ToLower(query)) {
		if len(word) <= minTopicLength {
			continue
		}
		if sess.TrackTopic(word) && persisted {
			if err := s.store.TrackTopic(ctx, sess.ID, word); err != nil {
				log.Warn().Err(err).Str("topic", word).Msg("failed to persist topic")
			}
		}
	}

	for _, result := range results {
		if !result.Success {
			continue
		}
		switch result.Tool {
		case domain.ToolVectorSearch, domain.ToolExternalSearch:
			papers := result.Papers()
			for i, p := range papers {
				if i == papersTrackedPerResult {
					break
				}
				if p.ID == "" {
					continue
				}
				if sess.TrackPaper(p.ID) && persisted {
					if err := s.store.TrackPaper(ctx, sess.ID, p.ID); err != nil {
						log.Warn().Err(err).Str("paper_id", p.ID).Msg("failed to persist paper")
					}
				}
			}
		case domain.ToolGapDetection:
			for _, gap := range result.Gaps() {
				sess.TrackGap(gap)
				if persisted {
					if err := s.store.TrackGap(ctx, sess.ID, gap); err != nil {
						log.Warn().Err(err).Str("gap_id", gap.ID).Msg("failed to persist gap")
					}
				}
			}
		}
	}
}

// extractPapers collects the paper payloads of the named tools, in result
// order.
func extractPapers(results []domain.ToolResult, tools ...domain.ToolName) []domain.Paper {
	var papers []domain.Paper
	for _, result := range results {
		if !result.Success {
			continue
		}
		for _, tool := range tools {
			if result.Tool == tool {
				papers = append(papers, result.Papers()...)
				break
			}
		}
	}
	return papers
}

func anyUsable(results []domain.ToolResult) bool {
	for _, r := range results {
		if r.Success {
			return true
		}
	}
	return false
}

// summarizeResults builds the short assistant-message body recorded with
// each turn. Full natural-language synthesis is a collaborator concern.
func summarizeResults(results []domain.ToolResult) string {
	var paperCount, gapCount int
	for _, r := range results {
		if !r.Success {
			continue
		}
		paperCount += len(r.Papers())
		gapCount += len(r.Gaps())
	}

	parts := make([]string, 0, 2)
	if paperCount > 0 {
		parts = append(parts, fmt.Sprintf("%d papers", paperCount))
	}
	if gapCount > 0 {
		parts = append(parts, fmt.Sprintf("%d research gaps", gapCount))
	}
	if len(parts) == 0 {
		return "No results found"
	}
	return "Found " + strings.Join(parts, " and ")
}
