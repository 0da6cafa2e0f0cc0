package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/flagkeep/flagkeep/pkg/auth"
	"github.com/flagkeep/flagkeep/pkg/config"
	"github.com/flagkeep/flagkeep/pkg/openapi"
	"github.com/flagkeep/flagkeep/pkg/server/middleware"
	"github.com/flagkeep/flagkeep/pkg/server/store"
	gormstore "github.com/flagkeep/flagkeep/pkg/server/store/gorm"
	"github.com/flagkeep/flagkeep/pkg/service"
)

// AdminPrefix is where the admin API is mounted.
const AdminPrefix = "/api/admin"

// Stores holds the storage backends used by the services.
type Stores struct {
	Health         store.HealthStore
	Groups         store.GroupsStore
	Segments       store.SegmentsStore
	Projects       store.ProjectsStore
	Roles          store.RolesStore
	Access         store.AccessStore
	Users          store.UsersStore
	Events         store.EventsStore
	ChangeRequests store.ChangeRequestsStore
}

// GormStores returns GORM-backed stores sharing db.
func GormStores(db *gorm.DB) Stores {
	return Stores{
		Health:         gormstore.NewHealthStore(db),
		Groups:         gormstore.NewGroupsStore(db),
		Segments:       gormstore.NewSegmentsStore(db),
		Projects:       gormstore.NewProjectsStore(db),
		Roles:          gormstore.NewRolesStore(db),
		Access:         gormstore.NewAccessStore(db),
		Users:          gormstore.NewUsersStore(db),
		Events:         gormstore.NewEventsStore(db),
		ChangeRequests: gormstore.NewChangeRequestsStore(db),
	}
}

// Options configures NewServer. Stores default to GORM stores on DB.
type Options struct {
	DB      *gorm.DB
	Stores  *Stores
	Config  service.ConfigSource
	Issuer  *auth.Issuer
	Auditor service.Auditor
	Logger  *zap.Logger
	Metrics *prometheus.Registry
	Version string
	Host    string
	Port    string
}

type Server struct {
	Router   *mux.Router
	Admin    *mux.Router
	DB       *gorm.DB
	Config   service.ConfigSource
	Logger   *zap.Logger
	Registry *openapi.Registry
	Metrics  *middleware.Metrics
	Issuer   *auth.Issuer
	Version  string

	Authenticator *middleware.Authenticator

	// Stores
	HealthStore store.HealthStore

	// Services
	Groups         *service.GroupService
	Segments       *service.SegmentService
	Projects       *service.ProjectService
	Roles          *service.RoleService
	ChangeRequests *service.ChangeRequestService
	Events         *service.EventService
	Users          *service.UserService

	srv *http.Server
}

// NewServer wires the stores, services and router. Endpoints are
// registered separately.
func NewServer(opts Options) (*Server, error) {
	if opts.Issuer == nil {
		return nil, auth.ErrMissingSecret
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Get
	}

	var stores Stores
	switch {
	case opts.Stores != nil:
		stores = *opts.Stores
	case opts.DB != nil:
		stores = GormStores(opts.DB)
	default:
		return nil, errors.New("server needs a database or stores")
	}

	registry, err := openapi.NewRegistry(opts.Version, logger)
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:          opts.DB,
		Config:      cfg,
		Logger:      logger,
		Registry:    registry,
		Metrics:     middleware.NewMetrics(opts.Metrics),
		Issuer:      opts.Issuer,
		Version:     opts.Version,
		HealthStore: stores.Health,

		Groups:         service.NewGroupService(stores.Groups, stores.Users, stores.Roles, opts.Auditor, logger),
		Segments:       service.NewSegmentService(stores.Segments, stores.Projects, cfg, opts.Auditor),
		Projects:       service.NewProjectService(stores.Projects, cfg, opts.Auditor, logger),
		Roles:          service.NewRoleService(stores.Roles, opts.Auditor),
		ChangeRequests: service.NewChangeRequestService(stores.ChangeRequests, stores.Projects),
		Events:         service.NewEventService(stores.Events),
		Users:          service.NewUserService(stores.Users, stores.Roles, stores.Access, opts.Issuer, opts.Auditor, logger),
	}
	s.Authenticator = middleware.NewAuthenticator(opts.Issuer, s.Users, logger)

	s.Router = mux.NewRouter()
	s.Router.Use(s.Metrics.Middleware)
	s.Admin = s.Router.PathPrefix(AdminPrefix).Subrouter()
	s.Admin.Use(s.Authenticator.Middleware)

	s.srv = &http.Server{
		Handler:      s.Handler(),
		Addr:         net.JoinHostPort(opts.Host, opts.Port),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the router wrapped in the server-wide middleware:
// panic recovery, proxy headers, CORS, request ids and access logs.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.Router
	h = middleware.AccessLog(s.Logger)(h)
	h = middleware.RequestID(h)

	if origins := s.Config().CORSOrigins; len(origins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(origins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"Authorization", "Content-Type", middleware.RequestIDHeader}),
			handlers.ExposedHeaders([]string{middleware.RequestIDHeader}),
			handlers.AllowCredentials(),
		)(h)
	}

	h = handlers.ProxyHeaders(h)
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(zap.NewStdLog(s.Logger.Named("recovery"))),
		handlers.PrintRecoveryStack(true),
	)(h)
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	s.Logger.Info("listening", zap.String("addr", s.srv.Addr), zap.String("version", s.Version))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for running ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
