package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-notify-nosql/internal/application/notification"
	"github.com/go-notify-nosql/internal/application/push"
	"github.com/go-notify-nosql/internal/config"
	"github.com/go-notify-nosql/internal/domain"
	"github.com/go-notify-nosql/internal/transport/http/handler"
	appmiddleware "github.com/go-notify-nosql/internal/transport/http/middleware"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         UserRepository
	NotificationRepo NotificationRepository
	Gateway          PushGateway
	Images           ImageResolver // optional
	Logger           *slog.Logger
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(appmiddleware.Sentry())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.NotFound(appmiddleware.NotFound)
	r.MethodNotAllowed(appmiddleware.MethodNotAllowed)

	svcDeps := notification.ServiceDeps{
		UserRepo:          deps.UserRepo,
		NotificationRepo:  deps.NotificationRepo,
		Dispatcher:        push.NewDispatcher(deps.Gateway, cfg.FanoutConcurrency, logger),
		Pruner:            push.NewPruner(deps.UserRepo),
		Images:            deps.Images,
		FanoutConcurrency: cfg.FanoutConcurrency,
		Logger:            logger,
	}
	notifSvc := notification.NewService(svcDeps)

	healthH := handler.NewHealthHandler()
	eventH := handler.NewEventHandler(notifSvc, logger)

	r.Get("/health-check/{action}", healthH.Ping)

	r.Post("/follow", eventH.Direct(domain.NotificationFollow))
	r.Post("/like", eventH.Direct(domain.NotificationLike))
	r.Post("/comment", eventH.Direct(domain.NotificationComment))
	r.Post("/repost", eventH.Direct(domain.NotificationRepost))
	r.Post("/tag", eventH.Direct(domain.NotificationTag))
	r.Post("/post", eventH.Post)

	return r
}
