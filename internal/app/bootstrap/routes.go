// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	allschemesfeature "github.com/jansethu/mysarkar/internal/app/features/allschemes"
	applicationsfeature "github.com/jansethu/mysarkar/internal/app/features/applications"
	authfeature "github.com/jansethu/mysarkar/internal/app/features/auth"
	dashboardfeature "github.com/jansethu/mysarkar/internal/app/features/dashboard"
	eligibilityfeature "github.com/jansethu/mysarkar/internal/app/features/eligibility"
	healthfeature "github.com/jansethu/mysarkar/internal/app/features/health"
	notificationsfeature "github.com/jansethu/mysarkar/internal/app/features/notifications"
	postsfeature "github.com/jansethu/mysarkar/internal/app/features/posts"
	schemesfeature "github.com/jansethu/mysarkar/internal/app/features/schemes"
	usersfeature "github.com/jansethu/mysarkar/internal/app/features/users"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// APIPrefix is where every feature router is mounted.
const APIPrefix = "/api/v1"

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. MySarkar applies request IDs, panic
// recovery and CORS, then mounts one feature router per resource under
// /api/v1.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	svc := shared
	if svc == nil {
		svc = newServices(context.Background(), appCfg, deps, logger)
		shared = svc
	}
	db := deps.MongoDatabase

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(corsOptions(appCfg.CORSOrigin)))

	// Health check endpoint for load balancers and uptime pingers
	var rdb goredis.Cmdable
	if deps.Redis != nil {
		rdb = deps.Redis
	}
	healthHandler := healthfeature.NewHandler(deps.MongoClient, rdb, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Backend is on!"))
	})

	r.Route(APIPrefix, func(api chi.Router) {
		// Accounts
		authHandler := authfeature.NewHandler(db, svc.Tokens, svc.Audit, logger)
		api.Mount("/auth", authfeature.Routes(authHandler, svc.Limiter))

		usersHandler := usersfeature.NewHandler(db, logger)
		api.Mount("/users", usersfeature.Routes(usersHandler, svc.Tokens))

		// Schemes: the curated catalogue and the bulk corpus
		schemesHandler := schemesfeature.NewHandler(db, svc.Embedder, svc.Search, svc.Audit, logger)
		api.Mount("/schemes", schemesfeature.Routes(schemesHandler, svc.Tokens))

		allSchemesHandler := allschemesfeature.NewHandler(db, svc.Cache, logger)
		api.Mount("/all_schemes", allschemesfeature.Routes(allSchemesHandler, svc.Tokens))

		// Eligibility and applications
		eligibilityHandler := eligibilityfeature.NewHandler(db, svc.Quiz, svc.Cache, logger)
		api.Mount("/eligibility", eligibilityfeature.Routes(eligibilityHandler, svc.Tokens))

		applicationsHandler := applicationsfeature.NewHandler(db, svc.Audit, logger)
		api.Mount("/applications", applicationsfeature.Routes(applicationsHandler, svc.Tokens))

		notificationsHandler := notificationsfeature.NewHandler(db, logger)
		api.Mount("/notification", notificationsfeature.Routes(notificationsHandler, svc.Tokens))

		// Community
		postsHandler := postsfeature.NewHandler(db, logger)
		api.Mount("/posts", postsfeature.Routes(postsHandler, svc.Tokens))

		// Reviewer dashboard
		dashboardHandler := dashboardfeature.NewHandler(db, logger)
		api.Mount("/admin-dashboard", dashboardfeature.Routes(dashboardHandler, svc.Tokens))
	})

	return r, nil
}

// corsOptions allows the configured origins with credentials. "*" (or an
// empty value) reflects any origin.
func corsOptions(origin string) cors.Options {
	opts := cors.Options{
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	var origins []string
	for _, o := range strings.Split(origin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		opts.AllowOriginFunc = func(_ *http.Request, _ string) bool { return true }
		return opts
	}
	opts.AllowedOrigins = origins
	return opts
}
