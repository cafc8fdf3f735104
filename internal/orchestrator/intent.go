package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mikiiiss/research-assistant/internal/domain"
)

// Generator is the LLM surface intent resolution needs.
type Generator interface {
	Generate(ctx context.Context, prompt, system string) (string, error)
}

// intentPatterns are checked in order; the first matching table wins and
// skips the LLM call entirely.
var intentPatterns = []struct {
	intent   domain.Intent
	patterns []string
}{
	{domain.IntentSearch, []string{
		"find", "search", "show me", "get", "what is", "tell me about",
		"papers on", "research on", "studies about", "look for",
	}},
	{domain.IntentGapDetection, []string{
		"gap", "missing", "unexplored", "understudied", "opportunity",
		"what's missing", "what is missing", "research opportunity",
	}},
	{domain.IntentEvidence, []string{
		"evidence for", "support for", "prove", "quote", "citation for",
	}},
	{domain.IntentCitation, []string{
		"cite", "reference", "bibliography", "apa", "mla",
	}},
}

// IntentResolver maps a query to one of the closed intent labels, first by
// keyword patterns, then by asking the LLM with recent conversation context.
type IntentResolver struct {
	generator Generator
}

func NewIntentResolver(generator Generator) *IntentResolver {
	return &IntentResolver{generator: generator}
}

// Resolve never fails: any classifier trouble falls back to search.
func (r *IntentResolver) Resolve(ctx context.Context, query string, sess *domain.Session) domain.Intent {
	if intent, ok := quickIntent(query); ok {
		log.Debug().Str("intent", string(intent)).Msg("intent matched by pattern")
		return intent
	}

	response, err := r.generator.Generate(ctx, r.buildPrompt(query, sess), "")
	if err != nil {
		log.Warn().Err(err).Msg("intent classification failed, defaulting to search")
		return domain.IntentSearch
	}

	intent, ok := domain.ParseIntent(strings.TrimSpace(response))
	if !ok {
		log.Warn().Str("response", response).Msg("unknown intent label, defaulting to search")
		return domain.IntentSearch
	}
	return intent
}

func quickIntent(query string) (domain.Intent, bool) {
	queryLower := strings.ToLower(query)
	for _, table := range intentPatterns {
		for _, pattern := range table.patterns {
			if strings.Contains(queryLower, pattern) {
				return table.intent, true
			}
		}
	}
	return "", false
}

func (r *IntentResolver) buildPrompt(query string, sess *domain.Session) string {
	history := "No previous conversation"
	topics := "None"
	if sess != nil {
		if recent := sess.RecentMessages(3); len(recent) > 0 {
			lines := make([]string, 0, len(recent))
			for _, msg := range recent {
				lines = append(lines, fmt.Sprintf("%s: %s", msg.Role, msg.Content))
			}
			history = strings.Join(lines, "\n")
		}
		if len(sess.MentionedTopics) > 0 {
			topics = strings.Join(sess.MentionedTopics, ", ")
		}
	}

	return fmt.Sprintf(`You are an intent classifier for a research assistant. Analyze the user's query and determine their intent.

Conversation History:
%s

Current Topics: %s

User Query: "%s"

Available Intents:
1. SEARCH - User wants to find papers on a topic
2. GAP_DETECTION - User wants to identify research gaps
3. EVIDENCE - User wants supporting evidence/quotes for a claim
4. CITATION - User wants citations/references
5. CHAT_WITH_PAPER - User wants to ask about a specific paper
6. SYNTHESIS - User wants a literature review or synthesis
7. FOLLOW_UP - User is continuing previous conversation

Return ONLY the intent name (e.g., "SEARCH" or "GAP_DETECTION"). No explanation.`, history, topics, query)
}
