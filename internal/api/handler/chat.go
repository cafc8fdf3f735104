package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mikiiiss/research-assistant/internal/api/response"
	"github.com/mikiiiss/research-assistant/internal/orchestrator"
)

var validate = validator.New()

// ChatRequest is the body of a chat turn.
type ChatRequest struct {
	Query     string `json:"query" validate:"required,min=1,max=2000"`
	SessionID string `json:"session_id,omitempty" validate:"omitempty,uuid4"`
}

// ChatHandler handles conversational turn endpoints
type ChatHandler struct {
	service *orchestrator.Service
}

// NewChatHandler creates a new chat handler
func NewChatHandler(service *orchestrator.Service) *ChatHandler {
	return &ChatHandler{service: service}
}

// Chat processes one conversational research turn
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	sessionID := uuid.Nil
	if req.SessionID != "" {
		id, err := uuid.Parse(req.SessionID)
		if err != nil {
			response.BadRequest(w, "invalid session ID")
			return
		}
		sessionID = id
	}

	turn, err := h.service.ProcessQuery(r.Context(), req.Query, sessionID)
	if err != nil {
		if errors.Is(err, orchestrator.ErrNoUsableResult) {
			response.Error(w, http.StatusBadGateway, err.Error())
			return
		}
		response.InternalError(w, err.Error())
		return
	}

	response.OK(w, turn)
}

// ChatStream processes a turn and streams events over SSE
func (h *ChatHandler) ChatStream(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		response.BadRequest(w, "missing query parameter")
		return
	}

	sessionID := uuid.Nil
	if raw := r.URL.Query().Get("session_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "invalid session ID")
			return
		}
		sessionID = id
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalError(w, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for ev := range h.service.ProcessQueryStream(r.Context(), query, sessionID) {
		payload, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, payload)
		flusher.Flush()
	}
}
