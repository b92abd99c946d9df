package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/jansethu/mysarkar/internal/testutil"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validConfig() AppConfig {
	return AppConfig{
		MongoURI:         defaultMongoURI,
		MongoDatabase:    "mysarkar_test",
		JWTSecret:        defaultJWTSecret,
		JWTTTL:           time.Hour,
		CORSOrigin:       defaultCORSOrigin,
		EmbedProvider:    "genai",
		EmbedDimensions:  384,
		VectorCollection: "schemes",
		LoginRateLimit:   10,
		LoginRateWindow:  time.Minute,
	}
}

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestApplyLegacyEnv(t *testing.T) {
	t.Run("fills defaults", func(t *testing.T) {
		cfg := validConfig()
		applyLegacyEnv(&cfg, envMap(map[string]string{
			"JWT_SECRET":     "legacy-secret",
			"MONGODB_URI":    "mongodb://db:27017",
			"GOOGLE_API_KEY": "key",
			"CORS_ORIGIN":    "https://mysarkar.in",
		}), testLogger())

		if cfg.JWTSecret != "legacy-secret" {
			t.Errorf("JWTSecret = %q", cfg.JWTSecret)
		}
		if cfg.MongoURI != "mongodb://db:27017" {
			t.Errorf("MongoURI = %q", cfg.MongoURI)
		}
		if cfg.GoogleAPIKey != "key" {
			t.Errorf("GoogleAPIKey = %q", cfg.GoogleAPIKey)
		}
		if cfg.CORSOrigin != "https://mysarkar.in" {
			t.Errorf("CORSOrigin = %q", cfg.CORSOrigin)
		}
	})

	t.Run("prefixed wins", func(t *testing.T) {
		cfg := validConfig()
		cfg.JWTSecret = "prefixed"
		applyLegacyEnv(&cfg, envMap(map[string]string{
			"MYSARKAR_JWT_SECRET": "prefixed",
			"JWT_SECRET":          "legacy-secret",
		}), testLogger())
		if cfg.JWTSecret != "prefixed" {
			t.Errorf("JWTSecret = %q, want prefixed value kept", cfg.JWTSecret)
		}
	})

	t.Run("explicit value kept", func(t *testing.T) {
		cfg := validConfig()
		cfg.MongoURI = "mongodb://from-file:27017"
		applyLegacyEnv(&cfg, envMap(map[string]string{"MONGODB_URI": "mongodb://legacy:27017"}), testLogger())
		if cfg.MongoURI != "mongodb://from-file:27017" {
			t.Errorf("MongoURI = %q, want file value kept", cfg.MongoURI)
		}
	})
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"valid dev", "dev", func(*AppConfig) {}, false},
		{"bad mongo uri", "dev", func(c *AppConfig) { c.MongoURI = "postgres://x" }, true},
		{"empty secret", "dev", func(c *AppConfig) { c.JWTSecret = " " }, true},
		{"default secret in prod", "prod", func(*AppConfig) {}, true},
		{"custom secret in prod", "prod", func(c *AppConfig) { c.JWTSecret = "s3cr3t-value" }, false},
		{"unknown provider", "dev", func(c *AppConfig) { c.EmbedProvider = "openai" }, true},
		{"ollama provider", "dev", func(c *AppConfig) { c.EmbedProvider = "ollama" }, false},
		{"zero dimensions", "dev", func(c *AppConfig) { c.EmbedDimensions = 0 }, true},
		{"zero rate limit", "dev", func(c *AppConfig) { c.LoginRateLimit = 0 }, true},
		{"audit db only", "dev", func(c *AppConfig) { c.AuditLogAuth = "db" }, false},
		{"unknown audit mode", "dev", func(c *AppConfig) { c.AuditLogAdmin = "verbose" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(&config.CoreConfig{Env: tt.env}, cfg, testLogger())
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCORSOptions(t *testing.T) {
	wildcard := corsOptions("*")
	if wildcard.AllowOriginFunc == nil || len(wildcard.AllowedOrigins) != 0 {
		t.Error("wildcard should reflect any origin")
	}

	list := corsOptions("https://a.example, https://b.example,")
	if len(list.AllowedOrigins) != 2 || list.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", list.AllowedOrigins)
	}
	if !list.AllowCredentials {
		t.Error("credentials should be allowed")
	}
}

func TestBuildHandler_Routes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}

	shared = nil
	t.Cleanup(func() {
		if shared != nil {
			shared.Limiter.Stop()
		}
		shared = nil
	})

	h, err := BuildHandler(&config.CoreConfig{Env: "dev"}, validConfig(), deps, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler: %v", err)
	}

	tests := []struct {
		method, path string
		status       int
		contains     string
	}{
		{http.MethodGet, "/", http.StatusOK, "Backend is on!"},
		{http.MethodGet, "/health", http.StatusOK, `"database":"connected"`},
		{http.MethodGet, APIPrefix + "/schemes", http.StatusOK, `"schemes"`},
		{http.MethodGet, APIPrefix + "/all_schemes", http.StatusOK, `"schemes"`},
		{http.MethodGet, APIPrefix + "/posts/trending-tags", http.StatusOK, `"tags"`},
		{http.MethodGet, APIPrefix + "/auth/me", http.StatusUnauthorized, "Access token required"},
		{http.MethodGet, APIPrefix + "/notification/recent", http.StatusUnauthorized, ""},
		{http.MethodGet, APIPrefix + "/admin-dashboard/stats", http.StatusUnauthorized, ""},
		{http.MethodGet, APIPrefix + "/admin-dashboard/audit", http.StatusUnauthorized, ""},
		{http.MethodHead, "/health", http.StatusOK, ""},
		{http.MethodPost, APIPrefix + "/users/interaction", http.StatusUnauthorized, ""},
		{http.MethodGet, APIPrefix + "/eligibility/quiz/abc", http.StatusUnauthorized, ""},
		{http.MethodGet, APIPrefix + "/applications", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.status {
				t.Errorf("status: got %d, want %d (body: %s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.contains != "" && !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("body %q does not contain %q", rec.Body.String(), tt.contains)
			}
		})
	}
}

func TestBuildHandler_CORSPreflight(t *testing.T) {
	db := testutil.SetupTestDB(t)
	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}

	cfg := validConfig()
	cfg.CORSOrigin = "https://mysarkar.in"
	shared = newServices(t.Context(), cfg, deps, testLogger())
	t.Cleanup(func() {
		shared.Limiter.Stop()
		shared = nil
	})

	h, err := BuildHandler(&config.CoreConfig{Env: "dev"}, cfg, deps, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler: %v", err)
	}

	req := httptest.NewRequest(http.MethodOptions, APIPrefix+"/schemes", nil)
	req.Header.Set("Origin", "https://mysarkar.in")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://mysarkar.in" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
