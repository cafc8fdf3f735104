package domain

import "github.com/google/uuid"

// SufficiencyAction is the recommended next step after evaluating local results.
type SufficiencyAction string

const (
	ActionUseLocal       SufficiencyAction = "use_local"
	ActionExternalSearch SufficiencyAction = "external_search"
)

// SufficiencyMetrics is the snapshot of local-result quality backing a verdict.
type SufficiencyMetrics struct {
	LocalCount   int     `json:"local_count"`
	NewestYear   int     `json:"newest_year,omitempty"`
	OldestYear   int     `json:"oldest_year,omitempty"`
	AvgCitations float64 `json:"avg_citations"`
}

// SufficiencyVerdict reports whether local results satisfy the query as asked.
// Computed fresh per turn, never persisted.
type SufficiencyVerdict struct {
	Sufficient bool               `json:"sufficient"`
	Reason     string             `json:"reason"`
	Action     SufficiencyAction  `json:"recommended_action"`
	Metrics    SufficiencyMetrics `json:"metrics"`
}

// ResearchDomain is the coarse subject classification used to pick an
// external literature provider.
type ResearchDomain string

const (
	DomainMedical ResearchDomain = "medical"
	DomainTech    ResearchDomain = "tech"
	DomainPhysics ResearchDomain = "physics"
	DomainGeneral ResearchDomain = "general"
)

// DomainVerdict is a domain label plus the per-domain score breakdown that
// produced it.
type DomainVerdict struct {
	Domain ResearchDomain             `json:"domain"`
	Scores map[ResearchDomain]float64 `json:"scores"`
}

// TurnContext is the tracked-entity snapshot returned with every turn.
type TurnContext struct {
	MessageCount    int      `json:"message_count"`
	MentionedPapers []string `json:"mentioned_papers"`
	MentionedTopics []string `json:"mentioned_topics"`
}

// TurnResult is the per-turn bundle produced by the orchestrator. It is the
// sole contract the HTTP layer and UI depend on.
type TurnResult struct {
	SessionID   uuid.UUID           `json:"session_id"`
	Query       string              `json:"query"`
	Intent      Intent              `json:"intent"`
	ToolResults []ToolResult        `json:"tool_results"`
	Sufficiency *SufficiencyVerdict `json:"sufficiency,omitempty"`
	Domain      *DomainVerdict      `json:"domain,omitempty"`
	Context     TurnContext         `json:"context"`
}
