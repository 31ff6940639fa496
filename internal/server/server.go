// Package server wires the router, handlers, services, and store together
// and runs the HTTP server with graceful shutdown. All dependencies are
// assembled here from an immutable Config; nothing branches on compiled-in
// environment flags.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/halalchat/backend/internal/generation"
	"github.com/halalchat/backend/internal/handler"
	"github.com/halalchat/backend/internal/identity"
	"github.com/halalchat/backend/internal/inference"
	"github.com/halalchat/backend/internal/middleware"
	"github.com/halalchat/backend/internal/moderation"
	sqliteRepo "github.com/halalchat/backend/internal/repository/sqlite"
	"github.com/halalchat/backend/internal/service"
)

// Config is the complete runtime configuration, assembled once in main from
// the environment and passed down immutably.
type Config struct {
	Port   int
	DBPath string

	GeminiAPIKey  string
	GeminiModel   string // primary model, used for generation and classification
	FallbackModel string // cheaper model for the zero-shot classification fallback

	IdentityBaseURL    string
	IdentityServiceKey string
	JWTSecret          string

	// EnableDevEndpoints routes the dev-only confirmation endpoint. Off in
	// production; unrouted paths 404.
	EnableDevEndpoints bool
}

// Server owns the router and the resources that must be released on
// shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain: store, inference clients,
// pipeline components, services, handlers, routes.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

func (s *Server) setupRoutes(ctx context.Context) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	verifier, err := identity.NewVerifier(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token verifier: %w", err)
	}
	s.router.Use(identity.Middleware(verifier))

	primary, err := inference.NewGeminiClient(ctx, s.config.GeminiAPIKey, s.config.GeminiModel)
	if err != nil {
		return fmt.Errorf("creating primary inference client: %w", err)
	}
	labeler, err := inference.NewGeminiClient(ctx, s.config.GeminiAPIKey, s.config.FallbackModel)
	if err != nil {
		return fmt.Errorf("creating fallback inference client: %w", err)
	}

	taxonomy, err := moderation.LoadTaxonomy()
	if err != nil {
		return fmt.Errorf("loading policy taxonomy: %w", err)
	}

	classifier := moderation.NewClassifier(primary, labeler, taxonomy, s.logger)
	remediator := moderation.NewRemediator(primary, s.logger)
	advisor := generation.NewAdvisor(primary, s.logger)
	generator := generation.NewGenerator(primary, s.logger)

	generationService := service.NewGenerationService(
		s.db, s.db, classifier, remediator, advisor, generator, s.logger)
	referralService := service.NewReferralService(s.db, s.db, s.db, s.logger)
	userService := service.NewUserService(s.db, s.db, s.logger)
	contentService := service.NewContentService(s.db, s.logger)

	identityClient := identity.NewClient(s.config.IdentityBaseURL, s.config.IdentityServiceKey)

	contentHandler := handler.NewContentHandler(generationService, contentService, s.logger)
	referralHandler := handler.NewReferralHandler(referralService, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)
	authHandler := handler.NewAuthHandler(identityClient, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/generate-content", contentHandler.HandleGenerate)
		r.Post("/handle-referral", referralHandler.HandleReferral)
		r.Post("/users", userHandler.HandleRegister)
		r.Get("/credits/{userId}", userHandler.HandleGetCredits)
		r.Get("/content/{id}", contentHandler.HandleGetByID)
		r.Get("/users/{userId}/content", contentHandler.HandleListByUser)
		r.Post("/auth/check-email-confirmed", authHandler.HandleCheckEmailConfirmed)
		if s.config.EnableDevEndpoints {
			r.Post("/auth/dev-confirm-user", authHandler.HandleDevConfirmUser)
		}
	})

	s.router.Handle("/metrics", promhttp.Handler())

	return nil
}

// Start runs the server until a shutdown signal arrives, then drains
// in-flight requests and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // generation calls can run long
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.String("model", s.config.GeminiModel),
			slog.Bool("dev_endpoints", s.config.EnableDevEndpoints),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
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
