package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mikiiiss/research-assistant/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const sessionPrefix = "session:"

// SessionStore persists conversation state in Redis.
//
// Every write re-serializes the whole session snapshot with a refreshed
// sliding TTL. Last writer wins; there is no field-level locking. A session
// written concurrently from two requests may lose one of the updates.
type SessionStore struct {
	client *Client
	ttl    time.Duration
}

// NewSessionStore creates a session store with the given sliding TTL.
func NewSessionStore(client *Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStore{client: client, ttl: ttl}
}

func sessionKey(id uuid.UUID) string {
	return sessionPrefix + id.String()
}

// Create stores a fresh empty session.
func (s *SessionStore) Create(ctx context.Context) (*domain.Session, error) {
	session := domain.NewSession()
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Get retrieves a session snapshot. Expired or unknown sessions, and an
// unavailable store, all surface as domain.ErrSessionNotFound.
func (s *SessionStore) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	data, err := s.client.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		log.Warn().Err(err).Str("session_id", id.String()).Msg("session read failed")
		return nil, domain.ErrSessionNotFound
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		log.Warn().Err(err).Str("session_id", id.String()).Msg("corrupt session snapshot")
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

// AppendMessage appends a message to the session and re-persists it.
func (s *SessionStore) AppendMessage(ctx context.Context, id uuid.UUID, msg domain.Message) error {
	return s.mutate(ctx, id, func(session *domain.Session) {
		session.AddMessage(msg)
	})
}

// TrackPaper records a mentioned paper ID with set-add semantics.
func (s *SessionStore) TrackPaper(ctx context.Context, id uuid.UUID, paperID string) error {
	return s.mutate(ctx, id, func(session *domain.Session) {
		session.TrackPaper(paperID)
	})
}

// TrackTopic records a discussed topic with set-add semantics.
func (s *SessionStore) TrackTopic(ctx context.Context, id uuid.UUID, topic string) error {
	return s.mutate(ctx, id, func(session *domain.Session) {
		session.TrackTopic(topic)
	})
}

// TrackGap records a detected research gap.
func (s *SessionStore) TrackGap(ctx context.Context, id uuid.UUID, gap domain.Gap) error {
	return s.mutate(ctx, id, func(session *domain.Session) {
		session.TrackGap(gap)
	})
}

// SetIntent records the current conversation intent.
func (s *SessionStore) SetIntent(ctx context.Context, id uuid.UUID, intent domain.Intent) error {
	return s.mutate(ctx, id, func(session *domain.Session) {
		session.CurrentIntent = intent
		session.Touch(time.Now())
	})
}

// Delete removes a session.
func (s *SessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.client.rdb.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if deleted == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// ListActive returns session IDs whose last activity falls within the window.
func (s *SessionStore) ListActive(ctx context.Context, window time.Duration) ([]uuid.UUID, error) {
	cutoff := time.Now().Add(-window)
	var active []uuid.UUID

	var cursor uint64
	for {
		keys, nextCursor, err := s.client.rdb.Scan(ctx, cursor, sessionPrefix+"*", 100).Result()
		if err != nil {
			return active, fmt.Errorf("failed to scan sessions: %w", err)
		}

		for _, key := range keys {
			id, err := uuid.Parse(strings.TrimPrefix(key, sessionPrefix))
			if err != nil {
				continue
			}
			session, err := s.Get(ctx, id)
			if err != nil {
				continue
			}
			if session.LastActive.After(cutoff) {
				active = append(active, id)
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return active, nil
}

func (s *SessionStore) mutate(ctx context.Context, id uuid.UUID, fn func(*domain.Session)) error {
	session, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	fn(session)
	return s.save(ctx, session)
}

func (s *SessionStore) save(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.rdb.Set(ctx, sessionKey(session.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}
