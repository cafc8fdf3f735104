package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mikiiiss/research-assistant/internal/api/handler"
	"github.com/mikiiiss/research-assistant/internal/domain"
)

// fakeSessionStore is an in-memory session store for handler tests.
type fakeSessionStore struct {
	sessions map[uuid.UUID]*domain.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[uuid.UUID]*domain.Session)}
}

func (s *fakeSessionStore) Create(ctx context.Context) (*domain.Session, error) {
	sess := domain.NewSession()
	s.sessions[sess.ID] = sess
	return sess, nil
}

func (s *fakeSessionStore) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

func (s *fakeSessionStore) AppendMessage(ctx context.Context, id uuid.UUID, msg domain.Message) error {
	return nil
}

func (s *fakeSessionStore) TrackPaper(ctx context.Context, id uuid.UUID, paperID string) error {
	return nil
}

func (s *fakeSessionStore) TrackTopic(ctx context.Context, id uuid.UUID, topic string) error {
	return nil
}

func (s *fakeSessionStore) TrackGap(ctx context.Context, id uuid.UUID, gap domain.Gap) error {
	return nil
}

func (s *fakeSessionStore) SetIntent(ctx context.Context, id uuid.UUID, intent domain.Intent) error {
	return nil
}

func (s *fakeSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *fakeSessionStore) ListActive(ctx context.Context, window time.Duration) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids, nil
}

func sessionRouter(store domain.SessionStore) chi.Router {
	h := handler.NewSessionHandler(store)
	r := chi.NewRouter()
	r.Get("/sessions", h.List)
	r.Get("/sessions/{sessionID}", h.Get)
	r.Delete("/sessions/{sessionID}", h.Delete)
	return r
}

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()

	handler.HealthCheck(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response["success"] != true {
		t.Error("expected success to be true")
	}

	data, ok := response["data"].(map[string]any)
	if !ok {
		t.Fatal("expected data to be a map")
	}

	if data["status"] != "healthy" {
		t.Errorf("expected status 'healthy', got %v", data["status"])
	}
}

func TestSessionGet(t *testing.T) {
	store := newFakeSessionStore()
	sess, _ := store.Create(context.Background())
	r := sessionRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/sessions/"+sess.ID.String(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestSessionGetNotFound(t *testing.T) {
	r := sessionRouter(newFakeSessionStore())

	req := httptest.NewRequest(http.MethodGet, "/sessions/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestSessionGetInvalidID(t *testing.T) {
	r := sessionRouter(newFakeSessionStore())

	req := httptest.NewRequest(http.MethodGet, "/sessions/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestSessionDelete(t *testing.T) {
	store := newFakeSessionStore()
	sess, _ := store.Create(context.Background())
	r := sessionRouter(store)

	req := httptest.NewRequest(http.MethodDelete, "/sessions/"+sess.ID.String(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	if _, ok := store.sessions[sess.ID]; ok {
		t.Error("expected session to be deleted")
	}
}

func TestSessionList(t *testing.T) {
	store := newFakeSessionStore()
	store.Create(context.Background())
	store.Create(context.Background())
	r := sessionRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/sessions?hours=48", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	data, ok := response["data"].(map[string]any)
	if !ok {
		t.Fatal("expected data to be a map")
	}

	if data["count"] != float64(2) {
		t.Errorf("expected count 2, got %v", data["count"])
	}
}

func TestSessionEndpointsWithoutStore(t *testing.T) {
	r := sessionRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/sessions/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
}

func TestChatRejectsEmptyQuery(t *testing.T) {
	h := handler.NewChatHandler(nil)

	req := makeJSONRequest(http.MethodPost, "/chat", map[string]any{"query": ""})
	rec := httptest.NewRecorder()
	h.Chat(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestChatRejectsMalformedSessionID(t *testing.T) {
	h := handler.NewChatHandler(nil)

	req := makeJSONRequest(http.MethodPost, "/chat", map[string]any{
		"query":      "recent transformer papers",
		"session_id": "not-a-uuid",
	})
	rec := httptest.NewRecorder()
	h.Chat(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestChatRejectsInvalidBody(t *testing.T) {
	h := handler.NewChatHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	h.Chat(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestChatStreamRequiresQuery(t *testing.T) {
	h := handler.NewChatHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/chat/stream", nil)
	rec := httptest.NewRecorder()
	h.ChatStream(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

// Helper to make JSON request
func makeJSONRequest(method, path string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}
