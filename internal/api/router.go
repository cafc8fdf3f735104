package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/mikiiiss/research-assistant/internal/api/handler"
	customMiddleware "github.com/mikiiiss/research-assistant/internal/api/middleware"
	"github.com/mikiiiss/research-assistant/internal/config"
	"github.com/mikiiiss/research-assistant/internal/domain"
	"github.com/mikiiiss/research-assistant/internal/embedding"
	"github.com/mikiiiss/research-assistant/internal/gaps"
	"github.com/mikiiiss/research-assistant/internal/llm"
	"github.com/mikiiiss/research-assistant/internal/llm/deepseek"
	"github.com/mikiiiss/research-assistant/internal/llm/gemini"
	"github.com/mikiiiss/research-assistant/internal/llm/ollama"
	"github.com/mikiiiss/research-assistant/internal/orchestrator"
	"github.com/mikiiiss/research-assistant/internal/repository/postgres"
	"github.com/mikiiiss/research-assistant/internal/repository/redis"
	"github.com/mikiiiss/research-assistant/internal/scholar"
	"github.com/mikiiiss/research-assistant/internal/security"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, db *postgres.DB, redisClient *redis.Client) (http.Handler, error) {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Session store. A missing Redis connection degrades the server to
	// memory-less turns instead of failing startup.
	var sessionStore domain.SessionStore
	if redisClient != nil {
		sessionStore = redis.NewSessionStore(redisClient, cfg.Orchestrator.SessionTTL)
	} else {
		log.Warn().Msg("Redis unavailable, running without session memory")
	}

	paperRepo := postgres.NewPaperRepository(db)

	embedder, err := embedding.New(cfg.Embedding, cfg.LLM)
	if err != nil {
		return nil, err
	}

	// LLM providers
	llmRouter := llm.NewRouter(cfg.LLM.DefaultProvider)

	log.Info().Msgf("Initializing LLM providers. Default: %s", cfg.LLM.DefaultProvider)

	if cfg.LLM.Ollama.Host != "" {
		log.Info().Str("host", cfg.LLM.Ollama.Host).Msg("Registering Ollama provider")
		llmRouter.RegisterProvider(ollama.NewProvider(cfg.LLM.Ollama))
	}
	if cfg.LLM.DeepSeek.APIKey != "" {
		llmRouter.RegisterProvider(deepseek.NewProvider(cfg.LLM.DeepSeek))
	}
	if cfg.LLM.Gemini.APIKey != "" {
		llmRouter.RegisterProvider(gemini.NewProvider(cfg.LLM.Gemini))
	} else {
		log.Warn().Msg("Gemini API Key is empty, skipping registration")
	}

	llmProvider, err := llmRouter.GetProvider("")
	if err != nil {
		return nil, err
	}
	llmClient := llm.NewClient(llmProvider, cfg.LLM.Attempts, cfg.LLM.AttemptTimeout, cfg.LLM.RetryBackoff)

	// External scholar providers
	scholarRouter := scholar.NewRouter(
		scholar.NewArxiv(cfg.Scholar),
		scholar.NewPubMed(cfg.Scholar),
		scholar.NewSemanticScholar(cfg.Scholar),
		cfg.Scholar.MinResults,
	)

	// Orchestration pipeline
	gapDetector := gaps.NewDetector(llmClient, embedder, paperRepo, cfg.Orchestrator)
	resolver := orchestrator.NewIntentResolver(llmClient)
	dispatcher := orchestrator.NewDispatcher(embedder, paperRepo, paperRepo, gapDetector, cfg.Orchestrator)
	sufficiency := orchestrator.NewSufficiencyEvaluator(cfg.Orchestrator)
	classifier := orchestrator.NewDomainClassifier()
	service := orchestrator.NewService(sessionStore, resolver, dispatcher, sufficiency, classifier, scholarRouter, cfg.Orchestrator)

	// Handlers
	chatHandler := handler.NewChatHandler(service)
	sessionHandler := handler.NewSessionHandler(sessionStore)

	// Auth and rate limiting. An empty JWT secret disables both and leaves
	// every route public.
	var protect []func(http.Handler) http.Handler
	if cfg.Auth.JWTSecret != "" {
		jwtManager := security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		authMiddleware := customMiddleware.NewAuthMiddleware(jwtManager)
		protect = append(protect, authMiddleware.Authenticate)

		if redisClient != nil {
			rateLimiter := redis.NewRateLimiter(
				redisClient,
				cfg.Server.RateLimit.RequestsPerMinute,
				cfg.Server.RateLimit.Burst,
			)
			rateLimitMiddleware := customMiddleware.NewRateLimitMiddleware(rateLimiter)
			protect = append(protect, rateLimitMiddleware.Limit)
		}
	} else {
		log.Warn().Msg("JWT secret is empty, authentication disabled")
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Health checks (public)
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(db))

		r.Group(func(r chi.Router) {
			r.Use(protect...)

			r.Get("/llm-providers", handler.ListLLMProviders(llmRouter))

			r.Post("/chat", chatHandler.Chat)
			r.Get("/chat/stream", chatHandler.ChatStream)

			r.Route("/sessions", func(r chi.Router) {
				r.Get("/", sessionHandler.List)
				r.Route("/{sessionID}", func(r chi.Router) {
					r.Get("/", sessionHandler.Get)
					r.Delete("/", sessionHandler.Delete)
				})
			})
		})
	})

	return r, nil
}
