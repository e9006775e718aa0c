package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/eventforge/server/internal/api/handlers"
	"github.com/eventforge/server/internal/api/middleware"
	"github.com/eventforge/server/internal/auth"
	"github.com/eventforge/server/internal/config"
	"github.com/eventforge/server/internal/domain/applications"
	"github.com/eventforge/server/internal/domain/events"
	"github.com/eventforge/server/internal/domain/users"
	"github.com/eventforge/server/internal/metrics"
	"github.com/eventforge/server/internal/storage/postgres"
)

// NewRouter wires repositories, services, and handlers into the HTTP surface.
func NewRouter(cfg config.Config, logger zerolog.Logger, pool *pgxpool.Pool) (http.Handler, error) {
	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return nil, err
	}

	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.Issuer)

	authService := users.NewAuthService(repo.Users(), tokens, logger)
	userService := users.NewService(repo.Users(), logger)
	eventService := events.NewService(repo.Events(), repo.Users(), logger)
	applicationService := applications.NewService(repo.Applications(), repo.Events(), repo.Users(), postgres.NewApplicationsTx(repo), logger)

	env := cfg.Environment
	authHandler := handlers.NewAuthHandler(authService, env)
	usersHandler := handlers.NewUsersHandler(userService, env)
	eventsHandler := handlers.NewEventsHandler(eventService, env)
	applicationsHandler := handlers.NewApplicationsHandler(applicationService, env)

	authenticate := middleware.Authenticate(tokens, env)
	adminOnly := middleware.RequireRoles(env, auth.RoleAdmin)
	anyUser := middleware.RequireRoles(env, auth.RoleAdmin, auth.RoleUser)
	userOnly := middleware.RequireRoles(env, auth.RoleUser)

	// One limiter store shared across routes. The tier tag must be applied
	// before the limiter reads it, so the limiter sits innermost.
	rateLimit := middleware.RateLimit(cfg.RateLimit)
	loginTier := middleware.WithRateLimitTierHandler(middleware.TierLogin)
	userTier := middleware.WithRateLimitTierHandler(middleware.TierUser)
	adminTier := middleware.WithRateLimitTierHandler(middleware.TierAdmin)

	public := func(h http.HandlerFunc) http.Handler {
		return rateLimit(h)
	}
	login := func(h http.HandlerFunc) http.Handler {
		return loginTier(rateLimit(h))
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return authenticate(adminOnly(adminTier(rateLimit(h))))
	}
	user := func(h http.HandlerFunc) http.Handler {
		return authenticate(userOnly(userTier(rateLimit(h))))
	}
	any := func(h http.HandlerFunc) http.Handler {
		return authenticate(anyUser(userTier(rateLimit(h))))
	}

	mux := http.NewServeMux()
	mux.Handle("/healthz", handlers.Healthz())
	mux.Handle("/readyz", handlers.Readyz(pool))
	mux.Handle("/metrics", metrics.Handler())

	mux.Handle("/api/v1/auth/register", methodMux(map[string]http.Handler{
		http.MethodPost: public(authHandler.Register),
	}))
	mux.Handle("/api/v1/auth/login", methodMux(map[string]http.Handler{
		http.MethodPost: login(authHandler.Login),
	}))

	mux.Handle("/api/v1/users", methodMux(map[string]http.Handler{
		http.MethodPost: admin(usersHandler.Create),
		http.MethodGet:  admin(usersHandler.List),
	}))
	mux.Handle("/api/v1/users/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    admin(usersHandler.Get),
		http.MethodPut:    admin(usersHandler.Update),
		http.MethodDelete: admin(usersHandler.Delete),
	}))

	mux.Handle("/api/v1/events", methodMux(map[string]http.Handler{
		http.MethodPost: admin(eventsHandler.Create),
		http.MethodGet:  admin(eventsHandler.List),
	}))
	mux.Handle("/api/v1/events/active", methodMux(map[string]http.Handler{
		http.MethodGet: any(eventsHandler.ListAvailable),
	}))
	mux.Handle("/api/v1/events/available", methodMux(map[string]http.Handler{
		http.MethodGet: public(eventsHandler.ListAvailable),
	}))
	mux.Handle("/api/v1/events/mine", methodMux(map[string]http.Handler{
		http.MethodGet: admin(eventsHandler.ListMine),
	}))
	mux.Handle("/api/v1/events/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    any(eventsHandler.Get),
		http.MethodPut:    admin(eventsHandler.Update),
		http.MethodDelete: admin(eventsHandler.Delete),
	}))

	mux.Handle("/api/v1/applications/apply/{eventId}", methodMux(map[string]http.Handler{
		http.MethodPost: user(applicationsHandler.Apply),
	}))
	mux.Handle("/api/v1/applications/my-applications", methodMux(map[string]http.Handler{
		http.MethodGet: any(applicationsHandler.ListMine),
	}))
	mux.Handle("/api/v1/applications", methodMux(map[string]http.Handler{
		http.MethodGet: admin(applicationsHandler.List),
	}))
	mux.Handle("/api/v1/applications/{id}/approve", methodMux(map[string]http.Handler{
		http.MethodPut: admin(applicationsHandler.Approve),
	}))
	mux.Handle("/api/v1/applications/{id}/reject", methodMux(map[string]http.Handler{
		http.MethodPut: admin(applicationsHandler.Reject),
	}))

	var handler http.Handler = mux
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.CorrelationID(logger)(handler)

	return handler, nil
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
