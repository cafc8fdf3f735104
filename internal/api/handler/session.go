package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mikiiiss/research-assistant/internal/api/response"
	"github.com/mikiiiss/research-assistant/internal/domain"
)

// SessionHandler exposes conversation sessions
type SessionHandler struct {
	store domain.SessionStore
}

// NewSessionHandler creates a new session handler. A nil store means the
// server runs memory-less and every session endpoint returns 503.
func NewSessionHandler(store domain.SessionStore) *SessionHandler {
	return &SessionHandler{store: store}
}

// List returns the IDs of sessions active within the lookback window
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		response.Error(w, http.StatusServiceUnavailable, "session storage unavailable")
		return
	}

	hours := 24
	if raw := r.URL.Query().Get("hours"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			hours = v
		}
	}

	ids, err := h.store.ListActive(r.Context(), time.Duration(hours)*time.Hour)
	if err != nil {
		response.InternalError(w, "failed to list sessions")
		return
	}

	response.OK(w, map[string]any{
		"sessions": ids,
		"count":    len(ids),
	})
}

// Get returns a full session snapshot
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		response.Error(w, http.StatusServiceUnavailable, "session storage unavailable")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		response.BadRequest(w, "invalid session ID")
		return
	}

	sess, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			response.NotFound(w, "session not found")
			return
		}
		response.InternalError(w, "failed to load session")
		return
	}

	response.OK(w, sess)
}

// Delete removes a session
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		response.Error(w, http.StatusServiceUnavailable, "session storage unavailable")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		response.BadRequest(w, "invalid session ID")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			response.NotFound(w, "session not found")
			return
		}
		response.InternalError(w, "failed to delete session")
		return
	}

	response.NoContent(w)
}
