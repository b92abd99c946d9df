// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration (ports, TLS, log level).
//
// The struct is passed to most lifecycle hooks, so any configuration
// needed during startup, request handling, or shutdown lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer tokens
	JWTSecret string
	JWTTTL    time.Duration

	// Comma-separated list of allowed browser origins ("*" for any)
	CORSOrigin string

	// Gemini: quiz generation, evaluation and (by default) embeddings
	GoogleAPIKey string
	LLMModel     string
	LLMTimeout   time.Duration

	// Embeddings
	EmbedProvider   string // "genai" or "ollama"
	EmbedModel      string
	EmbedDimensions int
	OllamaEndpoint  string

	// How often schemes saved without a vector are re-embedded; 0 disables
	EmbedBackfillInterval time.Duration

	// Atlas vector search
	VectorCollection string
	VectorIndex      string

	// Quiz cache; empty RedisAddr disables it
	RedisAddr    string
	QuizCacheTTL time.Duration

	// Register/login attempts per client IP per window
	LoginRateLimit  int
	LoginRateWindow time.Duration

	// Audit logging: "all", "db", "log" or "off" per category
	AuditLogAuth  string
	AuditLogAdmin string
}
