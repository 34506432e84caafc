package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jobportal/apiserver/config"
	"github.com/jobportal/apiserver/internal/db"
	"github.com/jobportal/apiserver/internal/handlers"
	"github.com/jobportal/apiserver/internal/mq"
	"github.com/jobportal/apiserver/internal/notify"
	"github.com/jobportal/apiserver/internal/services"
	"github.com/jobportal/apiserver/internal/storage"
	"github.com/jobportal/apiserver/internal/store"
	"go.uber.org/zap"
)

// Server wraps the HTTP server, router and shared resources.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	broker     *mq.MQ
	logger     *zap.Logger
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	jobRepo := store.NewJobRepository(dbConn)
	applicationRepo := store.NewApplicationRepository(dbConn)

	objectStore, err := storage.NewFromConfig(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if objectStore != nil {
		if err := objectStore.EnsureBucket(ctx); err != nil {
			_ = dbConn.Close()
			return nil, err
		}
	}

	broker, err := mq.NewFromConfig(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	var events services.ApplicationEvents
	if broker != nil {
		events = notify.New(broker, logger)
	}

	userService := services.NewUserService(userRepo)
	jobService := services.NewJobService(jobRepo)
	applicationService := services.NewApplicationService(applicationRepo, jobRepo, events)

	authenticator := handlers.NewAuthenticator(userService, cfg.JWTSecret)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Route("/api", func(api chi.Router) {
		handlers.HealthRouter(api)
		api.Route("/auth", func(r chi.Router) {
			handlers.AuthRouter(r, userService, cfg.JWTSecret, logger)
		})
		api.Route("/profile", func(r chi.Router) {
			r.Use(authenticator.RequireAuth)
			handlers.ProfileRouter(r, userService, objectStore, logger)
		})
		api.Route("/jobs", func(r chi.Router) {
			r.Use(authenticator.RequireAuth)
			handlers.JobRouter(r, jobService, logger)
		})
		api.Route("/request", func(r chi.Router) {
			r.Use(authenticator.RequireAuth)
			handlers.RequestRouter(r, applicationService, logger)
		})
		api.Route("/applications", func(r chi.Router) {
			r.Use(authenticator.RequireAuth)
			handlers.ApplicationListRouter(r, applicationService, logger)
		})
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		broker:     broker,
		logger:     logger,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.broker != nil {
		_ = s.broker.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
