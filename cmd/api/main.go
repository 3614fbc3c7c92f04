package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sheisgracious/mindwell/internal/accounts"
	"github.com/sheisgracious/mindwell/internal/auth"
	"github.com/sheisgracious/mindwell/internal/availability"
	"github.com/sheisgracious/mindwell/internal/booking"
	"github.com/sheisgracious/mindwell/internal/cache"
	"github.com/sheisgracious/mindwell/internal/config"
	"github.com/sheisgracious/mindwell/internal/dashboard"
	"github.com/sheisgracious/mindwell/internal/db"
	"github.com/sheisgracious/mindwell/internal/identity"
	"github.com/sheisgracious/mindwell/internal/messaging"
	"github.com/sheisgracious/mindwell/internal/middleware"
	"github.com/sheisgracious/mindwell/internal/patients"
	"github.com/sheisgracious/mindwell/internal/plans"
	"github.com/sheisgracious/mindwell/internal/plantypes"
	"github.com/sheisgracious/mindwell/internal/providers"
	"github.com/sheisgracious/mindwell/internal/validation"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Error("mongo connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("mongo connected")
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		logger.Error("index creation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var cacheStore cache.Cache = cache.NewNoop()
	var locker cache.Locker = cache.NewLocalLocker()
	if cfg.RedisURL != "" || cfg.RedisAddr != "" {
		var redisCache *cache.RedisCache
		var err error
		if cfg.RedisURL != "" {
			redisCache, err = cache.NewRedisFromURL(cfg.RedisURL)
		} else {
			redisCache = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		}
		if err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := redisCache.Ping(ctx); err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("redis connected")
		cacheStore = redisCache
		locker = cache.NewRedisLocker(redisCache.Client())
	} else {
		logger.Info("redis not configured, using in-process cache fallbacks")
	}
	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second

	jwtManager := &auth.Manager{
		Secret:     []byte(cfg.JWTSecret),
		AccessTTL:  time.Duration(cfg.AccessTTLMinutes) * time.Minute,
		RefreshTTL: time.Duration(cfg.RefreshTTLMinutes) * time.Minute,
		Issuer:     "mindwell",
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := middleware.NewMetrics(registry)
	bookingMetrics := booking.NewMetrics(registry)

	val := validation.New()

	accountsRepo := accounts.NewRepository(cols.Users)
	providersRepo := providers.NewRepository(cols.Providers)
	patientsRepo := patients.NewRepository(cols.Patients)
	availabilityRepo := availability.NewRepository(cols.Availabilities)
	planTypesRepo := plantypes.NewRepository(cols.PlanTypes)
	plansRepo := plans.NewRepository(cols.TherapyPlans)
	sessionsRepo := booking.NewRepository(cols.Sessions)
	messagesRepo := messaging.NewRepository(cols.Messages)

	resolver := identity.NewResolver(providersRepo, patientsRepo)

	accountsService := accounts.NewService(accountsRepo, cfg.Timezone)
	providersService := providers.NewService(providersRepo, cfg.Timezone)
	patientsService := patients.NewService(patientsRepo, cfg.Timezone)
	availabilityService := availability.NewService(availabilityRepo)
	planTypesService := plantypes.NewService(planTypesRepo, plansRepo, cfg.Timezone)
	plansService := plans.NewService(plansRepo, planTypesService, providersService)
	engine := booking.NewEngine(availabilityService, sessionsRepo, cfg.Timezone)
	bookingService := booking.NewService(sessionsRepo, plansService, engine, locker, cacheStore, cacheTTL, cfg.Timezone, bookingMetrics)
	messagingService := messaging.NewService(messagesRepo, plansService, providersService, patientsService)
	dashboardService := dashboard.NewService(plansRepo, sessionsRepo, messagingService, cfg.Timezone, int64(cfg.PastSessionsLimit))

	accountsHandler := accounts.NewHandler(accountsService, jwtManager, val, logger, cfg.CookieSecure)
	providersHandler := providers.NewHandler(providersService, availabilityService, planTypesService, cacheStore, cacheTTL, val, logger)
	patientsHandler := patients.NewHandler(patientsService, val, logger)
	availabilityHandler := availability.NewHandler(availabilityService, providerResolverAdapter{resolver}, val, logger)
	planTypesHandler := plantypes.NewHandler(planTypesService, val, logger)
	plansHandler := plans.NewHandler(plansService, resolver, val, logger)
	bookingHandler := booking.NewHandler(bookingService, plansService, resolver, val, logger)
	messagingHandler := messaging.NewHandler(messagingService, resolver, val, logger)
	dashboardHandler := dashboard.NewHandler(dashboardService, resolver, logger)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(httpMetrics.Middleware)
	r.Use(middleware.CORS(cfg.FrontendOrigin))
	r.Use(chiMiddleware.Timeout(30 * time.Second))

	bookingLimiter := middleware.NewRateLimiter(cfg.RateLimitBooking, time.Duration(cfg.RateLimitWindowSec)*time.Second)
	messagesLimiter := middleware.NewRateLimiter(cfg.RateLimitMessages, time.Duration(cfg.RateLimitWindowSec)*time.Second)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/auth", func(a chi.Router) {
			a.Post("/register", accountsHandler.Register)
			a.Post("/login", accountsHandler.Login)
			a.Post("/refresh", accountsHandler.Refresh)
			a.Post("/logout", accountsHandler.Logout)
		})

		api.Get("/providers", providersHandler.List)
		api.Get("/providers/{id}", providersHandler.Detail)
		api.Get("/providers/{id}/slots", bookingHandler.Slots)
		api.Get("/plan-types", planTypesHandler.PublicList)
		api.Get("/plan-types/{slug}", planTypesHandler.PublicGetBySlug)

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(middleware.AdminAPIKey(cfg.AdminAPIKey))
			admin.Post("/plan-types", planTypesHandler.AdminCreate)
			admin.Put("/plan-types/{id}", planTypesHandler.AdminUpdate)
			admin.Delete("/plan-types/{id}", planTypesHandler.AdminDelete)
		})

		api.Group(func(protected chi.Router) {
			protected.Use(middleware.RequireAccount(jwtManager))

			protected.Post("/me/provider", providersHandler.CreateMe)
			protected.Put("/me/provider", providersHandler.UpdateMe)
			protected.Get("/me/provider", providersHandler.Me)
			protected.Post("/me/patient", patientsHandler.CreateMe)
			protected.Put("/me/patient", patientsHandler.UpdateMe)
			protected.Get("/me/patient", patientsHandler.Me)

			protected.Post("/availability", availabilityHandler.Create)
			protected.Get("/me/availability", availabilityHandler.List)
			protected.Delete("/availability/{id}", availabilityHandler.Delete)

			protected.Post("/plans", plansHandler.Create)
			protected.Get("/plans", plansHandler.List)
			protected.Get("/plans/{id}", plansHandler.Get)
			protected.Patch("/plans/{id}/status", plansHandler.UpdateStatus)

			protected.With(bookingLimiter.Middleware).Post("/plans/{id}/sessions", bookingHandler.Create)
			protected.Get("/plans/{id}/sessions", bookingHandler.ListForPlan)
			protected.Get("/sessions/{id}", bookingHandler.Get)
			protected.Patch("/sessions/{id}", bookingHandler.Update)

			protected.With(messagesLimiter.Middleware).Post("/plans/{id}/messages", messagingHandler.Send)
			protected.Get("/plans/{id}/messages", messagingHandler.Conversation)
			protected.Get("/messages/threads", messagingHandler.Threads)
			protected.Get("/messages/unread", messagingHandler.Unread)

			protected.Get("/dashboard", dashboardHandler.Get)
		})
	})

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: r,
	}

	go func() {
		logger.Info("server started", slog.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
	}
	logger.Info("server stopped")
}

// providerResolverAdapter exposes identity.Resolver through the plain-typed
// availability.ProviderResolver interface, keeping the availability package
// free of an identity import (which would close an import cycle back through
// providers).
type providerResolverAdapter struct {
	resolver *identity.Resolver
}

func (a providerResolverAdapter) ProviderIDFor(ctx context.Context, accountID string) (string, error) {
	ident, err := a.resolver.Resolve(ctx, accountID)
	if err != nil {
		return "", err
	}
	return ident.ProviderID(), nil
}
