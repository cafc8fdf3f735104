package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mikiiiss/research-assistant/internal/domain"
)

func TestQuickIntentPatterns(t *testing.T) {
	tests := []struct {
		query  string
		intent domain.Intent
	}{
		{"find papers on transformers", domain.IntentSearch},
		{"Show me recent work on diffusion", domain.IntentSearch},
		{"what research gaps exist in this area", domain.IntentGapDetection},
		{"which topics are unexplored here", domain.IntentGapDetection},
		{"evidence for the scaling hypothesis", domain.IntentEvidence},
		{"cite the attention paper", domain.IntentCitation},
		{"give me an APA reference", domain.IntentCitation},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			intent, ok := quickIntent(tt.query)
			assert.True(t, ok)
			assert.Equal(t, tt.intent, intent)
		})
	}
}

func TestQuickIntentNoMatch(t *testing.T) {
	_, ok := quickIntent("and how does that compare?")
	assert.False(t, ok)
}

func TestResolveUsesPatternsWithoutLLM(t *testing.T) {
	gen := new(MockGenerator)
	r := NewIntentResolver(gen)

	intent := r.Resolve(context.Background(), "find papers on RLHF", nil)

	assert.Equal(t, domain.IntentSearch, intent)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolveParsesLLMLabel(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return("FOLLOW_UP", nil)
	r := NewIntentResolver(gen)

	intent := r.Resolve(context.Background(), "and how does that compare?", nil)

	assert.Equal(t, domain.IntentFollowUp, intent)
}

func TestResolveUnknownLabelDefaultsToSearch(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return("I think the user wants a summary", nil)
	r := NewIntentResolver(gen)

	intent := r.Resolve(context.Background(), "and how does that compare?", nil)

	assert.Equal(t, domain.IntentSearch, intent)
}

func TestResolveLLMErrorDefaultsToSearch(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("provider down"))
	r := NewIntentResolver(gen)

	intent := r.Resolve(context.Background(), "and how does that compare?", nil)

	assert.Equal(t, domain.IntentSearch, intent)
}

func TestResolvePromptCarriesContext(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "user: earlier question") &&
			strings.Contains(prompt, "transformers, attention")
	}), mock.Anything).Return("SYNTHESIS", nil)
	r := NewIntentResolver(gen)

	sess := domain.NewSession()
	sess.AddMessage(domain.Message{Role: domain.RoleUser, Content: "earlier question"})
	sess.TrackTopic("transformers")
	sess.TrackTopic("attention")

	intent := r.Resolve(context.Background(), "and how does that compare?", sess)

	assert.Equal(t, domain.IntentSynthesis, intent)
	gen.AssertExpectations(t)
}
