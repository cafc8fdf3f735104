package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when a session does not exist or has expired.
var ErrSessionNotFound = errors.New("session not found")

// MessageRole represents the sender of a message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is a single conversation turn. Immutable once appended.
type Message struct {
	Role      MessageRole    `json:"role"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Session holds the durable conversation state for one user thread.
//
// Persistence is whole-snapshot with last-writer-wins semantics: every write
// re-serializes the full session under a refreshed TTL, so two concurrent
// writers to the same session may lose one update. This is a documented
// limitation, not something the store tries to mask.
type Session struct {
	ID              uuid.UUID `json:"id"`
	Messages        []Message `json:"messages"`
	MentionedPapers []string  `json:"mentioned_papers"`
	MentionedTopics []string  `json:"mentioned_topics"`
	DetectedGaps    []Gap     `json:"detected_gaps"`
	CurrentIntent   Intent    `json:"current_intent,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	LastActive      time.Time `json:"last_active"`
}

// NewSession creates an empty session with a fresh identifier.
func NewSession() *Session {
	now := time.Now()
	return &Session{
		ID:         uuid.New(),
		CreatedAt:  now,
		LastActive: now,
	}
}

// AddMessage appends a message and refreshes the activity timestamp.
func (s *Session) AddMessage(msg Message) {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	s.Messages = append(s.Messages, msg)
	s.Touch(time.Now())
}

// Touch advances LastActive. It never moves the timestamp backwards.
func (s *Session) Touch(now time.Time) {
	if now.After(s.LastActive) {
		s.LastActive = now
	}
}

// TrackPaper records a mentioned paper ID. Idempotent set-add, insertion order preserved.
func (s *Session) TrackPaper(paperID string) bool {
	for _, id := range s.MentionedPapers {
		if id == paperID {
			return false
		}
	}
	s.MentionedPapers = append(s.MentionedPapers, paperID)
	s.Touch(time.Now())
	return true
}

// TrackTopic records a discussed topic. Idempotent set-add, insertion order preserved.
func (s *Session) TrackTopic(topic string) bool {
	for _, t := range s.MentionedTopics {
		if t == topic {
			return false
		}
	}
	s.MentionedTopics = append(s.MentionedTopics, topic)
	s.Touch(time.Now())
	return true
}

// TrackGap records a detected research gap.
func (s *Session) TrackGap(gap Gap) {
	s.DetectedGaps = append(s.DetectedGaps, gap)
	s.Touch(time.Now())
}

// RecentMessages returns the last n messages in order.
func (s *Session) RecentMessages(n int) []Message {
	if n <= 0 || len(s.Messages) == 0 {
		return nil
	}
	if len(s.Messages) <= n {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-n:]
}

// SessionStore defines the interface for conversation state storage.
//
// All operations are best-effort: when the backing store is unavailable,
// reads return ErrSessionNotFound and writes return an error, but callers
// are expected to keep the turn alive without conversational memory.
type SessionStore interface {
	Create(ctx context.Context) (*Session, error)
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	AppendMessage(ctx context.Context, id uuid.UUID, msg Message) error
	TrackPaper(ctx context.Context, id uuid.UUID, paperID string) error
	TrackTopic(ctx context.Context, id uuid.UUID, topic string) error
	TrackGap(ctx context.Context, id uuid.UUID, gap Gap) error
	SetIntent(ctx context.Context, id uuid.UUID, intent Intent) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListActive(ctx context.Context, window time.Duration) ([]uuid.UUID, error)
}
