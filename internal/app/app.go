package app

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

	"delrio-stay/internal/api"
	"delrio-stay/internal/config"
	"delrio-stay/internal/handler"
	"delrio-stay/internal/logger"
	"delrio-stay/internal/middleware"
	"delrio-stay/internal/router"
	"delrio-stay/internal/service"
	"delrio-stay/internal/session"
	"delrio-stay/internal/util"
	"delrio-stay/internal/view"
)

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.SetDefault(logger.New(os.Stdout, cfg.LogFormat, cfg.LogLevel))

	codec, err := session.NewCodec(cfg.SessionSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session codec: %w", err)
	}
	csrfKey, err := session.DeriveKey(cfg.SessionSecret, "delrio-stay csrf")
	if err != nil {
		return nil, fmt.Errorf("failed to derive csrf key: %w", err)
	}

	storage, cleanup := newSessionStorage(cfg, codec)
	decoder := session.NewTokenDecoder(cfg.JWTVerifySecret)
	if !decoder.Verifies() {
		slog.Warn("JWT_VERIFY_SECRET not set, token signatures are not checked; the backend remains the authority")
	}
	sessions := session.NewStore(storage, decoder)

	client := api.New(cfg.APIBaseURL, cfg.APITimeout, middleware.SessionToken)

	renderer, err := view.NewRenderer()
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	content, err := view.LoadContentPages()
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to render content pages: %w", err)
	}

	catalogService := service.NewCatalogService(client)
	bookingService := service.NewBookingService(client)
	lookupService := service.NewLookupService(client)
	accountService := service.NewAccountService(client)
	adminService := service.NewAdminService(client, catalogService)
	dashboardService := service.NewDashboardService(client)
	contactService := service.NewContactService(slog.Default())

	pages := handler.NewPages(renderer, cfg.SecureCookies)
	appRouter := router.New(cfg, sessions, csrfKey, router.Handlers{
		Pages:    pages,
		Site:     handler.NewSiteHandler(pages, catalogService, contactService, content),
		Rooms:    handler.NewRoomHandler(pages, catalogService, bookingService),
		Auth:     handler.NewAuthHandler(pages, accountService, sessions),
		Bookings: handler.NewBookingHandler(pages, lookupService, accountService),
		Admin: handler.NewAdminHandler(pages, adminService, dashboardService, util.PhotoLimits{
			MaxBytes: cfg.MaxPhotoSize,
			MaxWidth: cfg.MaxPhotoWidth,
		}),
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.ServerReadTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	slog.Info("application configured",
		"api_base_url", cfg.APIBaseURL,
		"session_backend", cfg.SessionBackend,
		"secure_cookies", cfg.SecureCookies,
	)

	return &App{
		server:       server,
		cleanupFuncs: []func(){cleanup},
	}, nil
}

// newSessionStorage picks the configured session backend. An unreachable
// Redis falls back to cookie storage so the site stays usable.
func newSessionStorage(cfg *config.Config, codec *session.Codec) (session.Storage, func()) {
	options := session.CookieOptions{Secure: cfg.SecureCookies, TTL: cfg.SessionTTL}

	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		client := session.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if client == nil {
			slog.Warn("redis unavailable, falling back to cookie sessions", "addr", cfg.RedisAddr)
			return session.NewCookieStorage(codec, options), func() {}
		}
		slog.Info("redis session storage ready", "addr", cfg.RedisAddr)
		return session.NewRedisStorage(client, codec, options), func() {
			if err := client.Close(); err != nil {
				slog.Warn("closing redis client failed", "error", err)
			}
		}
	case config.SessionBackendMemory:
		return session.NewMemoryStorage(codec, options), func() {}
	default:
		return session.NewCookieStorage(codec, options), func() {}
	}
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	slog.Info("server stopped")
	return nil
}
