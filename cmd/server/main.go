// @title           Elite Decor Web
// @version         1.0.0
// @description     Browser-facing server for the Elite Decor booking platform. It owns sessions, route guarding and form validation, and talks to the Elite Decor REST API, Supabase Auth and Supabase Storage.

// @host      localhost:8080
// @BasePath  /

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"elite-decor-web/internal/backend"
	"elite-decor-web/internal/cache"
	"elite-decor-web/internal/config"
	"elite-decor-web/internal/database"
	"elite-decor-web/internal/handlers"
	"elite-decor-web/internal/middleware"
	"elite-decor-web/internal/realtime"
	"elite-decor-web/internal/services"
	"elite-decor-web/internal/session"
	"elite-decor-web/internal/supabase"
	"elite-decor-web/pkg/logger"
)

const (
	roleCacheTTL  = 10 * time.Minute
	sweepInterval = 5 * time.Minute
	idleSession   = 2 * time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The logger is not configured yet.
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "elite-decor-web",
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if err := database.NewMigrator(db, log).Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	sessions := database.NewSessionRepository(db)

	var store cache.Store = cache.NewMemory()
	if cfg.Redis.Addr != "" {
		rdb, err := cache.ConnectRedis(ctx, cfg.Redis.Addr, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rdb.Close()
		store = cache.NewRedis(rdb, "elite-decor:")
		log.Info().Str("addr", cfg.Redis.Addr).Msg("using redis cache")
	}

	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize supabase client")
	}
	api := backend.NewClient(cfg.APIBaseURL, cfg.BackendTimeout, cfg.BackendRetries, log)

	registry := session.NewRegistry()
	hub := realtime.NewHub(registry, log)

	roles := services.NewRoleResolver(api, store, roleCacheTTL, log)
	auth := services.NewAuthService(supabaseClient.Auth, supabaseClient.Tokens, sessions, registry, roles, hub, cfg.Session.TTL, log)
	catalog := services.NewCatalogService(api, log)
	images := services.NewImageService(supabaseClient.Images, log)
	bookings := services.NewBookingService(api, log)
	payments := services.NewPaymentService(api, store, log)
	decorators := services.NewDecoratorService(api, services.PolicyNamed(cfg.ProjectStatusPolicy), log)
	admin := services.NewAdminService(api, hub, log)

	h := &handlers.Handlers{
		Health:    handlers.NewHealthHandler(db),
		Session:   handlers.NewSessionHandler(roles),
		Auth:      handlers.NewAuthHandler(auth),
		Profile:   handlers.NewProfileHandler(auth, images),
		Catalog:   handlers.NewCatalogHandler(catalog),
		Bookings:  handlers.NewBookingHandler(bookings, payments),
		Admin:     handlers.NewAdminHandler(admin, catalog, images),
		Decorator: handlers.NewDecoratorHandler(decorators),
		Realtime:  handlers.NewRealtimeHandler(hub, cfg.AllowedOrigins, registry, catalog, roles, cfg.SearchDebounce, log),
	}

	router := gin.New()
	router.Use(middleware.Recovery(log), middleware.RequestLogger(log))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h.Register(router,
		middleware.Session(registry, auth, roles, middleware.SessionOptions{
			CookieName: cfg.Session.CookieName,
			Secure:     cfg.Session.CookieSecure,
			TTL:        cfg.Session.TTL,
		}, log),
		middleware.Guard(log),
	)

	go sweep(ctx, registry, sessions, store, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("api", cfg.APIBaseURL).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// purger is a cache that only drops expired keys when asked.
type purger interface {
	Purge() int
}

// sweep drops idle in-memory sessions, expired stored ones and expired
// process-local cache entries.
func sweep(ctx context.Context, registry *session.Registry, sessions *database.SessionRepository, store cache.Store, log zerolog.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			dropped := registry.Sweep(idleSession)
			expired, err := sessions.DeleteExpired(ctx)
			if err != nil {
				log.Error().Err(err).Msg("failed to delete expired sessions")
			}
			purged := 0
			if p, ok := store.(purger); ok {
				purged = p.Purge()
			}
			log.Debug().Int("idle_dropped", dropped).Int64("expired_deleted", expired).Int("cache_purged", purged).Msg("session sweep")
		}
	}
}
