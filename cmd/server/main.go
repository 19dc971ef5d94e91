// Package main is the entry point for the ESS backend.
//
// Configuration comes from the environment (see server.Config):
//
//	ESS_SECRET=...          required, keys the body token digest
//	JWT_SECRET=...          optional, enables expiring access tokens
//	DATABASE_URL=data/ess.db or postgres://user:pw@host/db?sslmode=disable
//	PORT=8080 LOG_LEVEL=info ACCESS_TOKEN_TTL=24h BCRYPT_COST=12
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joeshaw/envdecode"

	"github.com/sakif/ess-backend/internal/server"
)

func main() {
	var cfg server.Config
	if err := envdecode.Decode(&cfg); err != nil {
		slog.Error("reading configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))

	// A file-backed SQLite database needs its directory to exist.
	if isSQLiteFile(cfg.DatabaseURL) {
		dbDir := filepath.Dir(cfg.DatabaseURL)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT or SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func isSQLiteFile(dsn string) bool {
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return false
	}
	return !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://")
}
