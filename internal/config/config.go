package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Auth         AuthConfig         `mapstructure:"auth"`
	LLM          LLMConfig          `mapstructure:"llm"`
	Embedding    EmbeddingConfig    `mapstructure:"embedding"`
	Scholar      ScholarConfig      `mapstructure:"scholar"`
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

type ServerConfig struct {
	Host              string          `mapstructure:"host"`
	Port              int             `mapstructure:"port"`
	ReadTimeout       time.Duration   `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration   `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration   `mapstructure:"idle_timeout"`
	MiddlewareTimeout time.Duration   `mapstructure:"middleware_timeout"`
	ShutdownTimeout   time.Duration   `mapstructure:"shutdown_timeout"`
	RateLimit         RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type AuthConfig struct {
	// Empty JWTSecret disables bearer-token authentication entirely.
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type LLMConfig struct {
	DefaultProvider string         `mapstructure:"default_provider"`
	Attempts        int            `mapstructure:"attempts"`
	AttemptTimeout  time.Duration  `mapstructure:"attempt_timeout"`
	RetryBackoff    time.Duration  `mapstructure:"retry_backoff"`
	Gemini          GeminiConfig   `mapstructure:"gemini"`
	DeepSeek        DeepSeekConfig `mapstructure:"deepseek"`
	Ollama          OllamaConfig   `mapstructure:"ollama"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type DeepSeekConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OllamaConfig struct {
	Host         string `mapstructure:"host"`
	DefaultModel string `mapstructure:"default_model"`
}

type EmbeddingConfig struct {
	Provider    string `mapstructure:"provider"`
	GeminiModel string `mapstructure:"gemini_model"`
	OllamaModel string `mapstructure:"ollama_model"`
}

type ScholarConfig struct {
	// MinResults is the primary-provider floor below which the fallback
	// provider is also queried.
	MinResults      int                   `mapstructure:"min_results"`
	RequestTimeout  time.Duration         `mapstructure:"request_timeout"`
	Retries         int                   `mapstructure:"retries"`
	RetryBackoff    time.Duration         `mapstructure:"retry_backoff"`
	Arxiv           ScholarProviderConfig `mapstructure:"arxiv"`
	PubMed          ScholarProviderConfig `mapstructure:"pubmed"`
	SemanticScholar ScholarProviderConfig `mapstructure:"semantic_scholar"`
}

type ScholarProviderConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

type OrchestratorConfig struct {
	SessionTTL             time.Duration `mapstructure:"session_ttl"`
	MinPapers              int           `mapstructure:"min_papers"`
	MinPapersComprehensive int           `mapstructure:"min_papers_comprehensive"`
	StalenessYears         int           `mapstructure:"staleness_years"`
	SearchLimit            int           `mapstructure:"search_limit"`
	EvidenceLimit          int           `mapstructure:"evidence_limit"`
	ExternalLimit          int           `mapstructure:"external_limit"`
	MaxGaps                int           `mapstructure:"max_gaps"`
	GapCandidateLimit      int           `mapstructure:"gap_candidate_limit"`
	// GapDetectionWithSearch keeps gap analysis running alongside every
	// search turn, matching the product behavior at roughly double the
	// external-call cost. Turn off to run gaps only on explicit request.
	GapDetectionWithSearch  bool `mapstructure:"gap_detection_with_search"`
	EnableContradiction     bool `mapstructure:"enable_contradiction"`
	EnableMissingConnection bool `mapstructure:"enable_missing_connection"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
		// Config file not found, use defaults and env vars
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.middleware_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.rate_limit.requests_per_minute", 60)
	v.SetDefault("server.rate_limit.burst", 10)

	// Database
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "research")
	v.SetDefault("database.database", "research")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)

	// Redis
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	// Auth
	v.SetDefault("auth.token_ttl", "24h")

	// LLM
	v.SetDefault("llm.default_provider", "gemini")
	v.SetDefault("llm.attempts", 2)
	v.SetDefault("llm.attempt_timeout", "45s")
	v.SetDefault("llm.retry_backoff", "2s")
	v.SetDefault("llm.gemini.model", "gemini-1.5-flash")
	v.SetDefault("llm.deepseek.model", "deepseek-chat")
	v.SetDefault("llm.ollama.host", "")
	v.SetDefault("llm.ollama.default_model", "llama3")

	// Embedding
	v.SetDefault("embedding.provider", "gemini")
	v.SetDefault("embedding.gemini_model", "text-embedding-004")
	v.SetDefault("embedding.ollama_model", "nomic-embed-text")

	// Scholar providers
	v.SetDefault("scholar.min_results", 5)
	v.SetDefault("scholar.request_timeout", "20s")
	v.SetDefault("scholar.retries", 2)
	v.SetDefault("scholar.retry_backoff", "1s")
	v.SetDefault("scholar.arxiv.base_url", "http://export.arxiv.org/api/query")
	v.SetDefault("scholar.pubmed.base_url", "https://eutils.ncbi.nlm.nih.gov/entrez/eutils")
	v.SetDefault("scholar.semantic_scholar.base_url", "https://api.semanticscholar.org/graph/v1")

	// Orchestrator
	v.SetDefault("orchestrator.session_ttl", "24h")
	v.SetDefault("orchestrator.min_papers", 5)
	v.SetDefault("orchestrator.min_papers_comprehensive", 20)
	v.SetDefault("orchestrator.staleness_years", 2)
	v.SetDefault("orchestrator.search_limit", 10)
	v.SetDefault("orchestrator.evidence_limit", 5)
	v.SetDefault("orchestrator.external_limit", 20)
	v.SetDefault("orchestrator.max_gaps", 5)
	v.SetDefault("orchestrator.gap_candidate_limit", 20)
	v.SetDefault("orchestrator.gap_detection_with_search", true)
	v.SetDefault("orchestrator.enable_contradiction", false)
	v.SetDefault("orchestrator.enable_missing_connection", false)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file", "")
}

func bindEnvVars(v *viper.Viper) {
	// Database
	v.BindEnv("database.password", "POSTGRES_PASSWORD")
	v.BindEnv("database.host", "POSTGRES_HOST")

	// Redis
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.host", "REDIS_HOST")

	// Auth
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")

	// LLM API keys
	v.BindEnv("llm.gemini.api_key", "GEMINI_API_KEY")
	v.BindEnv("llm.deepseek.api_key", "DEEPSEEK_API_KEY")
	v.BindEnv("llm.ollama.host", "OLLAMA_HOST")

	// Scholar API keys
	v.BindEnv("scholar.pubmed.api_key", "PUBMED_API_KEY")
	v.BindEnv("scholar.semantic_scholar.api_key", "SEMANTIC_SCHOLAR_API_KEY")
}
