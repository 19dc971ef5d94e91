// Package server wires configuration, storage, services and handlers into an
// HTTP server. It is the composition root: nothing else constructs
// dependencies.
//
// Dependency chain built by New:
//
//	sqlstore.DB → RecordStore per kind → RecordService per kind → RecordHandler per kind
//	            ↘ UserRepository → AuthService → AuthHandler
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/ess-backend/internal/auth"
	"github.com/sakif/ess-backend/internal/handler"
	"github.com/sakif/ess-backend/internal/middleware"
	"github.com/sakif/ess-backend/internal/repository/sqlstore"
	"github.com/sakif/ess-backend/internal/schema"
	"github.com/sakif/ess-backend/internal/service"
)

// Config holds server configuration, decoded from the environment by
// envdecode in main.
type Config struct {
	Port           int           `env:"PORT,default=8080"`
	DatabaseURL    string        `env:"DATABASE_URL,default=data/ess.db"`
	Secret         string        `env:"ESS_SECRET,required"`
	JWTSecret      string        `env:"JWT_SECRET"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL,default=24h"`
	BcryptCost     int           `env:"BCRYPT_COST,default=12"`
	LogLevel       string        `env:"LOG_LEVEL,default=info"`
}

// Validate checks the settings New cannot work without.
func (c Config) Validate() error {
	if c.Secret == "" {
		return errors.New("server: ESS_SECRET must be set")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("server: invalid port %d", c.Port)
	}
	if c.DatabaseURL == "" {
		return errors.New("server: DATABASE_URL must not be empty")
	}
	return nil
}

// Server represents the HTTP server and the resources it owns.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqlstore.DB // closed on shutdown
}

// New opens the database and builds the router.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := sqlstore.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// ServeHTTP makes Server usable with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// recordRoutes is what every RecordHandler instantiation provides.
type recordRoutes interface {
	HandleQuery(http.ResponseWriter, *http.Request)
	HandleNew(http.ResponseWriter, *http.Request)
}

// setupRoutes configures middleware and routes:
//
//	POST /api/register, /api/login
//	GET  /api/status
//	POST /api/{kind}       query one day
//	POST /api/{kind}/new   create or update
//
// Middleware order: request id, real ip, logging, panic recovery, then the
// optional bearer identity.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	s.router.NotFound(handler.NotFound)
	s.router.MethodNotAllowed(handler.MethodNotAllowed)

	schemas, err := schema.New()
	if err != nil {
		return fmt.Errorf("loading request schemas: %w", err)
	}

	digests, err := auth.NewDigestService(s.config.Secret)
	if err != nil {
		return err
	}

	var tokens *auth.TokenService
	if s.config.JWTSecret != "" {
		tokens, err = auth.NewTokenService(s.config.JWTSecret, s.config.AccessTokenTTL)
		if err != nil {
			return err
		}
	} else {
		s.logger.Warn("JWT_SECRET not set, access tokens are disabled")
	}

	authService := service.NewAuthService(
		s.db,
		auth.NewPasswordService(s.config.BcryptCost),
		digests,
		tokens,
		s.logger,
	)
	authHandler := handler.NewAuthHandler(authService, schemas, s.logger)
	statusHandler := handler.NewStatusHandler(s.db, s.logger)

	stores := s.db.Records()
	kinds := map[string]recordRoutes{
		"/food": handler.NewRecordHandler(
			service.NewRecordService(service.FoodKind, stores.Food, s.logger),
			authService, schemas, handler.FoodEndpoint, s.logger),
		"/commute": handler.NewRecordHandler(
			service.NewRecordService(service.CommuteKind, stores.Commute, s.logger),
			authService, schemas, handler.CommuteEndpoint, s.logger),
		"/journal": handler.NewRecordHandler(
			service.NewRecordService(service.JournalKind, stores.Journal, s.logger),
			authService, schemas, handler.JournalEndpoint, s.logger),
		"/water": handler.NewRecordHandler(
			service.NewRecordService(service.WaterKind, stores.Water, s.logger),
			authService, schemas, handler.WaterEndpoint, s.logger),
		"/showers": handler.NewRecordHandler(
			service.NewRecordService(service.ShowerKind, stores.Shower, s.logger),
			authService, schemas, handler.ShowerEndpoint, s.logger),
		"/entertainment": handler.NewRecordHandler(
			service.NewRecordService(service.EntertainmentKind, stores.Entertainment, s.logger),
			authService, schemas, handler.EntertainmentEndpoint, s.logger),
		"/health": handler.NewRecordHandler(
			service.NewRecordService(service.HealthKind, stores.Health, s.logger),
			authService, schemas, handler.HealthEndpoint, s.logger),
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Get("/status", statusHandler.HandleStatus)

		r.Group(func(r chi.Router) {
			r.Use(auth.BearerAuth(tokens))
			for path, h := range kinds {
				r.Post(path, h.HandleQuery)
				r.Post(path+"/new", h.HandleNew)
			}
		})
	})

	return nil
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests for
// up to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.db.Dialect()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
