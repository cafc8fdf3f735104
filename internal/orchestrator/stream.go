package orchestrator

import (
	"context"

	"github.com/google/uuid"

	"github.com/mikiiiss/research-assistant/internal/domain"
)

// EventType tags a streaming turn event.
type EventType string

const (
	EventStatus   EventType = "status"
	EventToolData EventType = "tool_data"
	EventDone     EventType = "done"
	EventError    EventType = "error"
)

// Event is one streamed update of an in-flight turn. Result is set for
// tool_data, Turn for done, Content for status and error.
type Event struct {
	Type    EventType          `json:"type"`
	Content string             `json:"content,omitempty"`
	Result  *domain.ToolResult `json:"result,omitempty"`
	Turn    *domain.TurnResult `json:"turn,omitempty"`
}

// ProcessQueryStream runs a turn like ProcessQuery but emits events as tool
// branches settle. The channel is closed after the done or error event; the
// caller must drain it.
func (s *Service) ProcessQueryStream(ctx context.Context, query string, sessionID uuid.UUID) <-chan Event {
	events := make(chan Event, 8)

	send := func(ev Event) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	go func() {
		defer close(events)

		send(Event{Type: EventStatus, Content: "Analyzing intent..."})
		send(Event{Type: EventStatus, Content: "Searching research database..."})

		turn, err := s.processTurn(ctx, query, sessionID, func(result domain.ToolResult) {
			r := result
			send(Event{Type: EventToolData, Result: &r})
		})
		if err != nil {
			send(Event{Type: EventError, Content: err.Error()})
			return
		}

		send(Event{Type: EventDone, Turn: turn})
	}()

	return events
}
