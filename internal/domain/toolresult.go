package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// ToolName identifies one of the closed set of dispatchable tools.
type ToolName string

const (
	ToolVectorSearch   ToolName = "vector_search"
	ToolGapDetection   ToolName = "gap_detection"
	ToolEvidenceFinder ToolName = "evidence_finder"
	ToolCitationLookup ToolName = "citation_lookup"
	ToolExternalSearch ToolName = "external_search"
)

// Payload is the tagged result variant carried by a successful ToolResult.
// Consumers switch on the concrete type instead of probing an untyped map.
type Payload interface {
	payloadKind() string
}

// PaperList is an ordered list of paper summaries.
type PaperList []Paper

func (PaperList) payloadKind() string { return "papers" }

// GapList is an ordered list of detected research gaps.
type GapList []Gap

func (GapList) payloadKind() string { return "gaps" }

// Diagnostic carries opaque tool output that is neither papers nor gaps.
type Diagnostic map[string]any

func (Diagnostic) payloadKind() string { return "diagnostic" }

// ToolResult is the outcome of one concurrent dispatch branch. Either
// Success is true and Payload is set, or Success is false and Error
// describes the failure; the two are never mixed.
type ToolResult struct {
	Tool     ToolName
	Success  bool
	Payload  Payload
	Error    string
	Duration time.Duration
	Metadata map[string]any
}

// Papers returns the paper payload, or nil when the result carries none.
func (r ToolResult) Papers() PaperList {
	if p, ok := r.Payload.(PaperList); ok {
		return p
	}
	return nil
}

// Gaps returns the gap payload, or nil when the result carries none.
func (r ToolResult) Gaps() GapList {
	if g, ok := r.Payload.(GapList); ok {
		return g
	}
	return nil
}

type toolResultJSON struct {
	Tool       ToolName       `json:"tool"`
	Success    bool           `json:"success"`
	Kind       string         `json:"kind,omitempty"`
	Papers     PaperList      `json:"papers,omitempty"`
	Gaps       GapList        `json:"gaps,omitempty"`
	Diagnostic Diagnostic     `json:"diagnostic,omitempty"`
	Error      string         `json:"error,omitempty"`
	DurationMs int64          `json:"duration_ms"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// MarshalJSON flattens the tagged payload into a kind-discriminated object.
func (r ToolResult) MarshalJSON() ([]byte, error) {
	out := toolResultJSON{
		Tool:       r.Tool,
		Success:    r.Success,
		Error:      r.Error,
		DurationMs: r.Duration.Milliseconds(),
		Metadata:   r.Metadata,
	}
	switch p := r.Payload.(type) {
	case PaperList:
		out.Kind = p.payloadKind()
		out.Papers = p
	case GapList:
		out.Kind = p.payloadKind()
		out.Gaps = p
	case Diagnostic:
		out.Kind = p.payloadKind()
		out.Diagnostic = p
	case nil:
	default:
		return nil, fmt.Errorf("unknown payload type %T", r.Payload)
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores the tagged payload from its kind discriminator.
func (r *ToolResult) UnmarshalJSON(data []byte) error {
	var in toolResultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.Tool = in.Tool
	r.Success = in.Success
	r.Error = in.Error
	r.Duration = time.Duration(in.DurationMs) * time.Millisecond
	r.Metadata = in.Metadata
	switch in.Kind {
	case "papers":
		r.Payload = in.Papers
	case "gaps":
		r.Payload = in.Gaps
	case "diagnostic":
		r.Payload = in.Diagnostic
	case "":
		r.Payload = nil
	default:
		return fmt.Errorf("unknown payload kind %q", in.Kind)
	}
	return nil
}
