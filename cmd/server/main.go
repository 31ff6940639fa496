// Package main is the entry point for the HalalChat backend. It reads the
// environment, assembles the immutable server configuration, and starts the
// server. All logic lives in the internal packages.
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/halalchat/backend/internal/server"
)

const (
	defaultPort          = 8080
	defaultDBPath        = "data/halalchat.db"
	defaultGeminiModel   = "gemini-2.0-flash"
	defaultFallbackModel = "gemini-2.0-flash-lite"
)

func main() {
	// Local development keeps secrets in a .env file; in deployment the
	// variables come from the environment and the file is absent.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	port := defaultPort
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	dbPath := defaultDBPath
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(dbPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		logger.Error("GEMINI_API_KEY is required")
		os.Exit(1)
	}
	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = defaultGeminiModel
	}
	fallbackModel := os.Getenv("GEMINI_FALLBACK_MODEL")
	if fallbackModel == "" {
		fallbackModel = defaultFallbackModel
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	cfg := server.Config{
		Port:               port,
		DBPath:             dbPath,
		GeminiAPIKey:       apiKey,
		GeminiModel:        model,
		FallbackModel:      fallbackModel,
		IdentityBaseURL:    os.Getenv("IDENTITY_BASE_URL"),
		IdentityServiceKey: os.Getenv("IDENTITY_SERVICE_KEY"),
		JWTSecret:          jwtSecret,
		EnableDevEndpoints: os.Getenv("ENABLE_DEV_ENDPOINTS") == "true",
	}

	srv, err := server.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
