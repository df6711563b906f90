package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dtroode/filegate-session/internal/api/http/handler"
	"github.com/dtroode/filegate-session/internal/api/http/middleware"
	"github.com/dtroode/filegate-session/internal/logger"
	"github.com/dtroode/filegate-session/internal/metrics"
	"github.com/dtroode/filegate-session/internal/model"
)

// Services groups what the router dispatches to.
type Services struct {
	Verifier      handler.IdentityVerifier
	Issuer        handler.SessionIssuer
	Application   handler.ApplicationService
	Applications  middleware.ApplicationResolver
	Configuration handler.ConfigurationService
	RevaLogin     handler.RevaLoginService
}

// Router builds the HTTP routing table.
type Router struct {
	services       Services
	tokens         model.TokenManager
	sessions       model.SessionStore
	contextManager model.ContextManager
	metrics        metrics.MetricsCollector
	gatherer       prometheus.Gatherer
	rateLimiter    *middleware.RateLimiter
	logger         *logger.Logger
}

// New creates a Router. A nil rateLimiter disables rate limiting.
func New(
	services Services,
	tokens model.TokenManager,
	sessions model.SessionStore,
	contextManager model.ContextManager,
	collector metrics.MetricsCollector,
	gatherer prometheus.Gatherer,
	rateLimiter *middleware.RateLimiter,
	logger *logger.Logger,
) *Router {
	return &Router{
		services:       services,
		tokens:         tokens,
		sessions:       sessions,
		contextManager: contextManager,
		metrics:        collector,
		gatherer:       gatherer,
		rateLimiter:    rateLimiter,
		logger:         logger,
	}
}

// Register wires handlers and middleware and returns the root handler.
func (r *Router) Register() http.Handler {
	mux := chi.NewRouter()
	mux.Use(chiMiddleware.Recoverer)
	mux.Use(middleware.NewLogging(r.logger, r.metrics).Handler)

	if r.gatherer != nil {
		mux.Method(http.MethodGet, "/metrics", metrics.Handler(r.gatherer))
	}

	r.registerSessionRoutes(mux)
	r.registerApplicationRoutes(mux)
	r.registerConfigurationRoutes(mux)
	r.registerAuthenticateRoutes(mux)

	return mux
}

func (r *Router) limited(router chi.Router) chi.Router {
	if r.rateLimiter == nil {
		return router
	}
	return router.With(r.rateLimiter.Handler)
}

func (r *Router) authenticated(router chi.Router) chi.Router {
	return router.With(middleware.NewAuthenticate(r.tokens, r.sessions, r.contextManager, r.logger).Handler)
}

func (r *Router) registerSessionRoutes(mux chi.Router) {
	h := handler.NewSession(r.services.Verifier, r.services.Issuer, r.contextManager, r.metrics, r.logger)

	r.authenticated(mux).Get("/session", h.GetSession)
	r.limited(mux).Post("/session/okta", h.CreateOktaSession)
	r.limited(mux).Post("/session/reva", h.CreateRevaSession)
}

func (r *Router) registerApplicationRoutes(mux chi.Router) {
	h := handler.NewApplication(r.services.Application, r.contextManager, r.logger)
	app := mux.With(middleware.NewApplication(r.services.Applications, r.contextManager, r.logger).Handler)

	app.Post("/session/application", h.CreateSession)
	app.Put("/session/application/{sessionId}", h.UpdateSession)
}

func (r *Router) registerConfigurationRoutes(mux chi.Router) {
	h := handler.NewConfiguration(r.services.Configuration, r.contextManager, r.logger)
	auth := r.authenticated(mux)

	auth.Get("/session/configuration/{serviceName}", h.GetServiceConfiguration)
	auth.Post("/session/configuration/{serviceName}", h.SaveServiceConfiguration)
	auth.Post("/session/configuration/{serviceName}/verify", h.VerifyServiceConfiguration)
	auth.Post("/session/get-oauth-token/{serviceName}", h.ExchangeOAuthCode)
}

func (r *Router) registerAuthenticateRoutes(mux chi.Router) {
	h := handler.NewAuthenticate(r.services.RevaLogin, r.logger)
	r.limited(mux).Post("/authenticate/reva", h.AuthenticateReva)
}
