// Package portal serves the partner-facing pages. All business state lives
// in the backend service; the portal resolves where each visitor belongs,
// renders minimal page shells, and forwards /api/* through a rewrite rule.
package portal

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/plateful/partner-portal/admin"
	"github.com/plateful/partner-portal/backend"
	"github.com/plateful/partner-portal/deals"
	"github.com/plateful/partner-portal/flow"
	"github.com/plateful/partner-portal/internal/config"
	"github.com/plateful/partner-portal/session"
)

type Server struct {
	env    string
	mux    *http.ServeMux
	routes []string
	config config.Config

	api       *backend.Client
	sessions  *session.Manager
	scoped    session.ScopedStore
	resolver  *flow.Resolver
	publisher *deals.Publisher
	admin     *admin.Service
	guards    *guardSet

	metrics  *Metrics
	registry *prometheus.Registry
	proxy    http.Handler
	log      zerolog.Logger
}

func New(cfg config.Config, log zerolog.Logger) (*Server, error) {
	sessions := session.NewManager(session.NewInMemoryCredentialStore(), session.WithLogger(log))
	scoped := session.NewInMemoryScopedStore()

	api := backend.New(cfg.GetBackendURL(), session.TokenFromContext, backend.WithLogger(log))
	resolver := flow.NewResolver(api, sessions, scoped, flow.WithLogger(log))

	proxy, err := newAPIProxy(cfg.GetBackendURL(), log)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	s := &Server{
		env:       cfg.GetEnv(),
		mux:       http.NewServeMux(),
		config:    cfg,
		api:       api,
		sessions:  sessions,
		scoped:    scoped,
		resolver:  resolver,
		publisher: deals.NewPublisher(api, resolver, deals.WithLogger(log)),
		admin:     admin.NewService(api, admin.WithLogger(log)),
		guards:    newGuardSet(cfg.GetProbeTimeout(), log),
		metrics:   NewMetrics(registry),
		registry:  registry,
		proxy:     proxy,
		log:       log,
	}

	s.initRoutes()
	s.logRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler http.HandlerFunc) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) initRoutes() {
	base := s.baseMiddleware()
	guarded := append(s.baseMiddleware(), s.IdentityMiddleware, s.GuardMiddleware)
	funnel := append(s.baseMiddleware(), s.IdentityMiddleware, s.GuardMiddleware, s.RequireNavPermitted)

	// Auth surface
	s.RegisterRouteFunc("GET "+RouteAuthPage, ChainMiddleware(s.AuthPageHandler(), append(base, s.IdentityMiddleware)...))
	s.RegisterRouteFunc("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), append(base, s.IdentityMiddleware)...))
	s.RegisterRouteFunc("POST "+RouteAuthRegister, ChainMiddleware(s.RegisterHandler(), append(base, s.IdentityMiddleware)...))
	s.RegisterRouteFunc("GET "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), append(base, s.IdentityMiddleware)...))

	// Funnel pages. Step 1 is reachable straight from a login resolution;
	// steps 2-4 additionally demand the navigation-permitted flag.
	s.RegisterRouteFunc("GET "+RouteRegister, ChainMiddleware(s.RegisterPageHandler(), guarded...))
	s.RegisterRouteFunc("GET "+RouteUpload, ChainMiddleware(s.UploadPageHandler(), funnel...))
	s.RegisterRouteFunc("GET "+RouteDeals, ChainMiddleware(s.DealsPageHandler(), funnel...))
	s.RegisterRouteFunc("POST "+RouteDealsPublish, ChainMiddleware(s.PublishHandler(), funnel...))
	s.RegisterRouteFunc("GET "+RouteLive, ChainMiddleware(s.LivePageHandler(), funnel...))

	// Admin console
	s.RegisterRouteFunc("GET "+RouteAdminHome, ChainMiddleware(s.AdminHomeHandler(), guarded...))

	// Operational surface
	s.RegisterRouteFunc("GET "+RouteHealthz, s.HealthzHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	// The rewrite rule: /api/* goes to the backend service.
	s.RegisterRouteHandler(RouteAPIPrefix, s.proxy)
}

func (s *Server) baseMiddleware() []func(http.HandlerFunc) http.HandlerFunc {
	return []func(http.HandlerFunc) http.HandlerFunc{
		s.LoggingMiddleware,
		s.RequestIDMiddleware,
		s.MetricsMiddleware,
	}
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			logRoute(s.log, parts[0], parts[1])
		} else {
			logRoute(s.log, "", parts[0])
		}
	}
}

func logRoute(log zerolog.Logger, method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}
