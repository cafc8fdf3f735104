package handler

import (
	"net/http"
	"time"

	"github.com/mikiiiss/research-assistant/internal/api/response"
	"github.com/mikiiiss/research-assistant/internal/llm"
	"github.com/mikiiiss/research-assistant/internal/repository/postgres"
)

// HealthCheck returns a liveness probe response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadyCheck returns a readiness probe that verifies the database connection
func ReadyCheck(db *postgres.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}

		response.OK(w, map[string]any{
			"status":    "ready",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// ListLLMProviders returns the registered LLM providers and the default
func ListLLMProviders(router *llm.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]any{
			"providers": router.ListProviders(),
			"default":   router.DefaultProvider(),
		})
	}
}
