package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/mikiiiss/research-assistant/internal/domain"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt, system string) (string, error) {
	args := m.Called(ctx, prompt, system)
	return args.String(0), args.Error(1)
}

type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Name() string {
	return "mock"
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) SimilaritySearch(ctx context.Context, embedding []float32, limit int) ([]domain.Paper, error) {
	args := m.Called(ctx, embedding, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Paper), args.Error(1)
}

type MockPaperRepo struct {
	mock.Mock
}

func (m *MockPaperRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Paper, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Paper), args.Error(1)
}

type MockGapFinder struct {
	mock.Mock
}

func (m *MockGapFinder) Detect(ctx context.Context, query string) ([]domain.Gap, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Gap), args.Error(1)
}

type MockExternalSearcher struct {
	mock.Mock
}

func (m *MockExternalSearcher) Search(ctx context.Context, query string, d domain.ResearchDomain, limit int) []domain.Paper {
	args := m.Called(ctx, query, d, limit)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]domain.Paper)
}

// MockSessionStore keeps sessions in a map so end-to-end turn tests can
// assert on persisted state without Redis.
type MockSessionStore struct {
	sessions map[uuid.UUID]*domain.Session
}

func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{sessions: make(map[uuid.UUID]*domain.Session)}
}

func (s *MockSessionStore) Create(ctx context.Context) (*domain.Session, error) {
	sess := domain.NewSession()
	s.sessions[sess.ID] = sess
	return copySession(sess), nil
}

func (s *MockSessionStore) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return copySession(sess), nil
}

// copySession mirrors the real store, which hands back a deserialized
// snapshot rather than shared state.
func copySession(sess *domain.Session) *domain.Session {
	clone := *sess
	clone.Messages = append([]domain.Message(nil), sess.Messages...)
	clone.MentionedPapers = append([]string(nil), sess.MentionedPapers...)
	clone.MentionedTopics = append([]string(nil), sess.MentionedTopics...)
	clone.DetectedGaps = append([]domain.Gap(nil), sess.DetectedGaps...)
	return &clone
}

func (s *MockSessionStore) AppendMessage(ctx context.Context, id uuid.UUID, msg domain.Message) error {
	sess, ok := s.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	sess.AddMessage(msg)
	return nil
}

func (s *MockSessionStore) TrackPaper(ctx context.Context, id uuid.UUID, paperID string) error {
	if sess, ok := s.sessions[id]; ok {
		sess.TrackPaper(paperID)
	}
	return nil
}

func (s *MockSessionStore) TrackTopic(ctx context.Context, id uuid.UUID, topic string) error {
	if sess, ok := s.sessions[id]; ok {
		sess.TrackTopic(topic)
	}
	return nil
}

func (s *MockSessionStore) TrackGap(ctx context.Context, id uuid.UUID, gap domain.Gap) error {
	if sess, ok := s.sessions[id]; ok {
		sess.TrackGap(gap)
	}
	return nil
}

func (s *MockSessionStore) SetIntent(ctx context.Context, id uuid.UUID, intent domain.Intent) error {
	if sess, ok := s.sessions[id]; ok {
		sess.CurrentIntent = intent
	}
	return nil
}

func (s *MockSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *MockSessionStore) ListActive(ctx context.Context, window time.Duration) ([]uuid.UUID, error) {
	cutoff := time.Now().Add(-window)
	var ids []uuid.UUID
	for id, sess := range s.sessions {
		if sess.LastActive.After(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
