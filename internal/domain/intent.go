package domain

import "strings"

// Intent is the resolved purpose of a user query.
type Intent string

const (
	IntentSearch        Intent = "search"
	IntentGapDetection  Intent = "gap_detection"
	IntentEvidence      Intent = "evidence"
	IntentCitation      Intent = "citation"
	IntentChatWithPaper Intent = "chat_with_paper"
	IntentSynthesis     Intent = "synthesis"
	IntentFollowUp      Intent = "follow_up"
)

// AllIntents lists the closed intent set in declaration order.
var AllIntents = []Intent{
	IntentSearch,
	IntentGapDetection,
	IntentEvidence,
	IntentCitation,
	IntentChatWithPaper,
	IntentSynthesis,
	IntentFollowUp,
}

// ParseIntent matches a label against the intent set, case-insensitively.
func ParseIntent(s string) (Intent, bool) {
	label := strings.ToLower(strings.TrimSpace(s))
	for _, intent := range AllIntents {
		if label == string(intent) {
			return intent, true
		}
	}
	return "", false
}
