package main

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

	"github.com/joho/godotenv"

	"github.com/medskill-verify/internal/config"
	"github.com/medskill-verify/internal/infrastructure/gotrue"
	jwtinfra "github.com/medskill-verify/internal/infrastructure/jwt"
	"github.com/medskill-verify/internal/infrastructure/mail"
	transporthttp "github.com/medskill-verify/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	cfg := config.Load()
	ctx := context.Background()

	rows, err := openStores(ctx, cfg)
	if err != nil {
		slog.Error("failed to open row store", "store", cfg.RowStore, "err", err)
		os.Exit(1)
	}
	defer rows.close()

	// JWT provider (optional; needs the project's JWT secret).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg.SupabaseJWTSecret, time.Minute); err == nil {
		jwtProvider = p
	} else {
		slog.Warn("JWT provider not available", "err", err)
	}

	var tokens gotrue.TokenSource = gotrue.StaticKey(cfg.SupabaseServiceKey)
	if cfg.SupabaseServiceKey == "" && jwtProvider != nil {
		tokens = jwtProvider
	}
	identities, err := gotrue.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, tokens)
	if err != nil {
		slog.Error("identity provider not configured", "err", err)
		os.Exit(1)
	}

	sender, closeSender, err := newSender(cfg)
	if err != nil {
		slog.Error("mail driver not available", "driver", cfg.MailDriver, "err", err)
		os.Exit(1)
	}
	defer closeSender()

	deps := &transporthttp.Deps{
		PendingRepo: rows.pending,
		ProfileRepo: rows.profiles,
		Identities:  identities,
		Dispatcher:  mail.NewDispatcher(sender, cfg.FrontendURL),
		JWTProvider: jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "store", cfg.RowStore, "mail", cfg.MailDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "err", err)
	}
	slog.Info("server stopped")
}
