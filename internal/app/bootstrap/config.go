// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/jansethu/mysarkar/internal/app/system/auditlog"
	"github.com/jansethu/mysarkar/internal/app/system/embedding"
	"go.uber.org/zap"
)

const (
	envPrefix = "MYSARKAR"

	defaultMongoURI   = "mongodb://localhost:27017"
	defaultJWTSecret  = "dev-only-change-me-please-0123456789ABCDEF"
	defaultCORSOrigin = "*"
)

// appConfigKeys defines the configuration keys for MySarkar.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: MYSARKAR_MONGO_URI, MYSARKAR_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: defaultMongoURI, Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "MyScheme", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 5, Desc: "MongoDB min connection pool size (default: 5)"},

	{Name: "jwt_secret", Default: defaultJWTSecret, Desc: "HMAC secret for access tokens (must be strong in production)"},
	{Name: "jwt_ttl", Default: "168h", Desc: "Access token lifetime"},

	{Name: "cors_origin", Default: defaultCORSOrigin, Desc: "Allowed browser origins, comma separated"},

	// Gemini
	{Name: "google_api_key", Default: "", Desc: "Google Generative AI API key (blank uses the offline quiz fallbacks)"},
	{Name: "llm_model", Default: "gemini-1.5-flash", Desc: "Model used for quiz generation and evaluation"},
	{Name: "llm_timeout", Default: "30s", Desc: "Timeout for a single LLM call"},

	// Embeddings
	{Name: "embed_provider", Default: embedding.ProviderGenAI, Desc: "Embedding backend: 'genai' or 'ollama'"},
	{Name: "embed_model", Default: "text-embedding-004", Desc: "Embedding model name"},
	{Name: "embed_dimensions", Default: 384, Desc: "Embedding vector length (must match the Atlas index)"},
	{Name: "ollama_endpoint", Default: "http://localhost:11434", Desc: "Ollama base URL when embed_provider is 'ollama'"},
	{Name: "embed_backfill_interval", Default: "30m", Desc: "How often missing scheme embeddings are retried (0 disables)"},

	// Vector search
	{Name: "vector_collection", Default: "schemes", Desc: "Collection queried by scheme search"},
	{Name: "vector_index", Default: "default", Desc: "Atlas vector search index name"},

	// Quiz cache
	{Name: "redis_addr", Default: "", Desc: "Redis address for the quiz cache (blank disables it)"},
	{Name: "quiz_cache_ttl", Default: "24h", Desc: "How long generated quizzes stay cached"},

	// Rate limiting
	{Name: "login_rate_limit", Default: 10, Desc: "Register/login attempts allowed per IP per window"},
	{Name: "login_rate_window", Default: "1m", Desc: "Rate limit window"},

	// Audit logging
	{Name: "audit_log_auth", Default: "all", Desc: "Auth audit events: all, db, log, off"},
	{Name: "audit_log_admin", Default: "all", Desc: "Reviewer audit events: all, db, log, off"},
}

// legacyEnv maps app keys to the unprefixed variable names older
// deployments export. They apply only when the key was left at its default.
var legacyEnv = []struct {
	key, env string
	field    func(*AppConfig) *string
	def      string
}{
	{"jwt_secret", "JWT_SECRET", func(c *AppConfig) *string { return &c.JWTSecret }, defaultJWTSecret},
	{"mongo_uri", "MONGODB_URI", func(c *AppConfig) *string { return &c.MongoURI }, defaultMongoURI},
	{"google_api_key", "GOOGLE_API_KEY", func(c *AppConfig) *string { return &c.GoogleAPIKey }, ""},
	{"cors_origin", "CORS_ORIGIN", func(c *AppConfig) *string { return &c.CORSOrigin }, defaultCORSOrigin},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, MYSARKAR_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	// A bare PORT (as set by most PaaS hosts) becomes the core HTTP port.
	if port, ok := os.LookupEnv("PORT"); ok && port != "" {
		if _, set := os.LookupEnv("WAFFLE_HTTP_PORT"); !set {
			_ = os.Setenv("WAFFLE_HTTP_PORT", port)
		}
	}

	coreCfg, appValues, err := config.LoadWithAppConfig(logger, envPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret: appValues.String("jwt_secret"),
		JWTTTL:    appValues.Duration("jwt_ttl", 7*24*time.Hour),

		CORSOrigin: appValues.String("cors_origin"),

		GoogleAPIKey: appValues.String("google_api_key"),
		LLMModel:     appValues.String("llm_model"),
		LLMTimeout:   appValues.Duration("llm_timeout", 30*time.Second),

		EmbedProvider:   strings.ToLower(strings.TrimSpace(appValues.String("embed_provider"))),
		EmbedModel:      appValues.String("embed_model"),
		EmbedDimensions: appValues.Int("embed_dimensions"),
		OllamaEndpoint:  appValues.String("ollama_endpoint"),

		EmbedBackfillInterval: appValues.Duration("embed_backfill_interval", 30*time.Minute),

		VectorCollection: appValues.String("vector_collection"),
		VectorIndex:      appValues.String("vector_index"),

		RedisAddr:    appValues.String("redis_addr"),
		QuizCacheTTL: appValues.Duration("quiz_cache_ttl", 24*time.Hour),

		LoginRateLimit:  appValues.Int("login_rate_limit"),
		LoginRateWindow: appValues.Duration("login_rate_window", time.Minute),

		AuditLogAuth:  strings.ToLower(strings.TrimSpace(appValues.String("audit_log_auth"))),
		AuditLogAdmin: strings.ToLower(strings.TrimSpace(appValues.String("audit_log_admin"))),
	}
	applyLegacyEnv(&appCfg, os.LookupEnv, logger)

	return coreCfg, appCfg, nil
}

func applyLegacyEnv(appCfg *AppConfig, lookup func(string) (string, bool), logger *zap.Logger) {
	for _, l := range legacyEnv {
		if _, ok := lookup(envPrefix + "_" + strings.ToUpper(l.key)); ok {
			continue
		}
		v, ok := lookup(l.env)
		if !ok || v == "" {
			continue
		}
		if dst := l.field(appCfg); *dst == l.def {
			*dst = v
			logger.Info("using legacy environment variable", zap.String("env", l.env), zap.String("key", l.key))
		}
	}
}

// ValidateConfig performs app-specific config validation.
//
// MySarkar validates the MongoDB URI format to catch configuration errors
// early, and refuses to run in production with the development JWT secret.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if strings.TrimSpace(appCfg.JWTSecret) == "" {
		return errors.New("jwt_secret must be set")
	}
	if coreCfg != nil && coreCfg.Env == "prod" && appCfg.JWTSecret == defaultJWTSecret {
		return errors.New("jwt_secret must be changed from the development default in prod")
	}

	switch appCfg.EmbedProvider {
	case embedding.ProviderGenAI, embedding.ProviderOllama:
	default:
		return fmt.Errorf("embed_provider must be %q or %q, got %q",
			embedding.ProviderGenAI, embedding.ProviderOllama, appCfg.EmbedProvider)
	}
	if appCfg.EmbedDimensions <= 0 {
		return errors.New("embed_dimensions must be positive")
	}
	if appCfg.LoginRateLimit <= 0 {
		return errors.New("login_rate_limit must be positive")
	}
	for key, v := range map[string]string{"audit_log_auth": appCfg.AuditLogAuth, "audit_log_admin": appCfg.AuditLogAdmin} {
		switch v {
		case "", auditlog.All, auditlog.DB, auditlog.Log, auditlog.Off:
		default:
			return fmt.Errorf("%s must be one of all, db, log, off; got %q", key, v)
		}
	}

	if appCfg.GoogleAPIKey == "" {
		logger.Warn("google_api_key is not set; eligibility quizzes use the offline fallbacks")
	}
	return nil
}
