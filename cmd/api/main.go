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

	"github.com/getsentry/sentry-go"
	"github.com/go-notify-nosql/internal/config"
	"github.com/go-notify-nosql/internal/infrastructure/dynamo"
	transporthttp "github.com/go-notify-nosql/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	cfg := config.Load()
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if err := initSentry(cfg); err != nil {
		fatal("sentry init failed", err)
	}
	defer sentry.Flush(2 * time.Second)

	ctx := context.Background()
	awsCfg, err := dynamo.LoadAWSConfig(ctx, cfg)
	if err != nil {
		fatal("aws config", err)
	}

	stores, err := openStores(ctx, cfg, awsCfg)
	if err != nil {
		fatal("store init failed", err)
	}
	defer stores.close()

	gateway, err := newGateway(ctx, cfg, awsCfg)
	if err != nil {
		fatal("push gateway init failed", err)
	}

	deps := &transporthttp.Deps{
		UserRepo:         stores.users,
		NotificationRepo: stores.notifications,
		Gateway:          gateway,
		Images:           newImageResolver(cfg, awsCfg),
		Logger:           logger,
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			"port", cfg.AppPort,
			"env", cfg.AppEnv,
			"store", cfg.StoreBackend,
			"push", cfg.PushProvider,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "err", err)
	}
	logger.Info("server stopped")
}

func newLogger(level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(level)}))
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// initSentry is a no-op without a DSN.
func initSentry(cfg *config.Config) error {
	if cfg.SentryDSN == "" {
		slog.Info("skipping sentry init")
		return nil
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.AppEnv,
		AttachStacktrace: true,
	})
}

func fatal(msg string, err error) {
	slog.Error(msg, "err", err)
	sentry.CaptureException(err)
	sentry.Flush(2 * time.Second)
	os.Exit(1)
}
