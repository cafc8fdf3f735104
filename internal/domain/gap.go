package domain

// GapType tags a research gap with the strategy family that produced it.
type GapType string

const (
	GapSemantic          GapType = "semantic"
	GapContradiction     GapType = "contradiction"
	GapMissingConnection GapType = "missing_connection"
	GapTemporal          GapType = "temporal"
	GapCitation          GapType = "citation"
	GapVenue             GapType = "venue"
	GapMethodology       GapType = "methodology"
	GapOther             GapType = "other"
)

// DefaultGapConfidence is assigned when a detection strategy omits a score.
const DefaultGapConfidence = 0.5

// Gap is a claimed under-researched area with supporting evidence.
// Description is never empty and Confidence is always in [0,1].
type Gap struct {
	ID          string   `json:"id"`
	Type        GapType  `json:"type"`
	Description string   `json:"description"`
	Importance  string   `json:"importance,omitempty"`
	Confidence  float64  `json:"confidence"`
	Evidence    []string `json:"evidence,omitempty"`
}

// Normalize enforces the Gap invariants: unknown types collapse to GapOther,
// missing confidence is defaulted, and out-of-range confidence is clamped.
func (g *Gap) Normalize() {
	switch g.Type {
	case GapSemantic, GapContradiction, GapMissingConnection, GapTemporal,
		GapCitation, GapVenue, GapMethodology:
	default:
		g.Type = GapOther
	}
	if g.Confidence == 0 {
		g.Confidence = DefaultGapConfidence
	}
	if g.Confidence < 0 {
		g.Confidence = 0
	}
	if g.Confidence > 1 {
		g.Confidence = 1
	}
}
