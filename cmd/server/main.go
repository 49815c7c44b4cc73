package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/RiteshKrChauhan/BrainSpill/internal/auth"
	"github.com/RiteshKrChauhan/BrainSpill/internal/config"
	"github.com/RiteshKrChauhan/BrainSpill/internal/store"
	"github.com/RiteshKrChauhan/BrainSpill/internal/web"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	db, err := store.Open(cfg.Database.DSN())
	if err != nil {
		logger.Error("database setup failed", "error", err)
		os.Exit(1)
	}

	users := store.NewGormUserStore(db)
	secrets := store.NewGormSecretStore(db)

	tokens := auth.NewTokenIssuer("BrainSpill", cfg.SessionSecret, 24*time.Hour)
	sessions := web.NewSessions(tokens, users, logger)
	local := auth.NewLocal(users, logger)

	server := web.NewServer(web.Options{
		Users:              users,
		Secrets:            secrets,
		Sessions:           sessions,
		Local:              local,
		Logger:             logger,
		GoogleClientID:     cfg.Google.ClientID,
		GoogleClientSecret: cfg.Google.ClientSecret,
		GoogleCallbackURL:  cfg.Google.CallbackURL,
	})

	logger.Info("server listening", "addr", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, server.Handler()); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
