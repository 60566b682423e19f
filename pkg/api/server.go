package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/eventbook/pkg/auth"
	"github.com/platinummonkey/eventbook/pkg/httputil"
	"github.com/platinummonkey/eventbook/pkg/middleware"
	"github.com/platinummonkey/eventbook/pkg/observability"
	"github.com/platinummonkey/eventbook/pkg/session"
	"github.com/platinummonkey/eventbook/pkg/storage"
)

// Options holds the collaborators of the API server
type Options struct {
	Auth    *auth.Service
	Store   storage.Store
	Tokens  session.TokenSource
	Logger  *observability.Logger
	Metrics *observability.Metrics // optional

	// Federated registers the federated login routes. Nil leaves them
	// unregistered so they answer 404.
	Federated RouteRegistrar

	CORSOrigins []string
}

// RouteRegistrar is an interface for types that can register routes
type RouteRegistrar interface {
	RegisterRoutes(router *mux.Router)
}

// Server represents our API server
type Server struct {
	auth    *auth.Service
	store   storage.Store
	tokens  session.TokenSource
	logger  *observability.Logger
	metrics *observability.Metrics
	router  *mux.Router
	handler http.Handler
}

// NewServer creates a new API server
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}

	s := &Server{
		auth:    opts.Auth,
		store:   opts.Store,
		tokens:  opts.Tokens,
		logger:  logger,
		metrics: opts.Metrics,
		router:  mux.NewRouter(),
	}

	s.setupRoutes(opts.Federated)

	// Outer middleware runs for every request, matched or not, so CORS
	// preflights and 404s are logged and carry a request id
	s.handler = httputil.Chain(
		httputil.RequestIDMiddleware,
		httputil.RecoveryMiddleware(logger),
		httputil.LoggingMiddleware(logger),
		httputil.CORSMiddleware(opts.CORSOrigins),
		httputil.MaxBytesMiddleware(httputil.MaxBodyBytes),
	)(s.router)

	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes(federated RouteRegistrar) {
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteNotFound(w, "Not found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteErrorMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	if s.metrics != nil {
		s.router.Use(observability.HTTPMetricsMiddleware(s.metrics))
	}

	gate := middleware.NewAuthMiddleware(s.auth.Codec(), s.tokens, s.metrics)

	// Public routes
	s.router.HandleFunc("/auth/register", s.register).Methods("POST")
	s.router.HandleFunc("/auth/login", s.login).Methods("POST")
	s.router.HandleFunc("/auth/logout", s.logout).Methods("GET", "POST")
	s.router.HandleFunc("/events", s.listEvents).Methods("GET")
	s.router.HandleFunc("/events/{id}", s.getEvent).Methods("GET")
	if federated != nil {
		federated.RegisterRoutes(s.router)
	}

	// Authenticated routes
	protected := s.router.NewRoute().Subrouter()
	protected.Use(gate.Handler)
	protected.HandleFunc("/auth/me", s.me).Methods("GET")
	protected.HandleFunc("/user", s.profile).Methods("GET")
	protected.HandleFunc("/bookings", s.createBooking).Methods("POST")
	protected.HandleFunc("/bookings", s.listBookings).Methods("GET")
	protected.HandleFunc("/bookings/{eventId}", s.deleteBooking).Methods("DELETE")

	// Admin routes
	admin := protected.NewRoute().Subrouter()
	admin.Use(middleware.RequireAdmin(s.metrics))
	admin.HandleFunc("/events", s.createEvent).Methods("POST")
	admin.HandleFunc("/events/{id}", s.updateEvent).Methods("PUT")
	admin.HandleFunc("/events/{id}", s.deleteEvent).Methods("DELETE")
	admin.HandleFunc("/admin", s.listAdmins).Methods("GET")
	admin.HandleFunc("/admin/test", s.adminTest).Methods("GET")
	admin.HandleFunc("/admin/create", s.createAdmin).Methods("POST")
	admin.HandleFunc("/admin/{id}", s.updateAdmin).Methods("PUT")
	admin.HandleFunc("/admin/{id}", s.deleteAdmin).Methods("DELETE")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Router exposes the route table, mostly for tests
func (s *Server) Router() *mux.Router {
	return s.router
}
