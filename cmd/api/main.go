package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/javi-app/javi-backend/api/routes"
	"github.com/javi-app/javi-backend/internal/auth"
	"github.com/javi-app/javi-backend/internal/booking"
	"github.com/javi-app/javi-backend/internal/events"
	"github.com/javi-app/javi-backend/internal/gear"
	"github.com/javi-app/javi-backend/internal/kits"
	"github.com/javi-app/javi-backend/internal/reservations"
	"github.com/javi-app/javi-backend/internal/scoped"
	"github.com/javi-app/javi-backend/internal/team"
	"github.com/javi-app/javi-backend/internal/users"
	"github.com/javi-app/javi-backend/internal/workspaces"
	"github.com/javi-app/javi-backend/pkg/auth/session"
	"github.com/javi-app/javi-backend/pkg/config"
	"github.com/javi-app/javi-backend/pkg/db"
	"github.com/javi-app/javi-backend/pkg/logger"
	"github.com/javi-app/javi-backend/pkg/metrics"
	"github.com/javi-app/javi-backend/pkg/migrate"
	"github.com/javi-app/javi-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	bookingMetrics := metrics.NewBookingMetrics(registry)
	driftMetrics := metrics.NewDriftMetrics(registry)

	store := scoped.NewStore(dbClient.DB(), driftMetrics, logg)

	engine, err := booking.NewEngine(booking.EngineParams{
		Repo:    booking.NewRepository(store),
		Metrics: bookingMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create booking engine", err)
		os.Exit(1)
	}

	snapshot, err := booking.NewSnapshot(booking.SnapshotParams{
		Engine:  engine,
		Store:   redisClient,
		TTL:     cfg.Booking.SnapshotTTL,
		Metrics: bookingMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create availability snapshot", err)
		os.Exit(1)
	}

	gearRepo := gear.NewRepository(store)
	eventsRepo := events.NewRepository(store)
	reservationsRepo := reservations.NewRepository(store)

	kitService, err := kits.NewService(kits.ServiceParams{
		Repo:   kits.NewRepository(store),
		Gear:   gearRepo,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create kit service", err)
		os.Exit(1)
	}

	gearService, err := gear.NewService(gear.ServiceParams{
		Repo:   gearRepo,
		Usage:  engine,
		Kits:   kitService,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create gear service", err)
		os.Exit(1)
	}

	reservationService, err := reservations.NewService(reservations.ServiceParams{
		Repo:    reservationsRepo,
		Events:  eventsRepo,
		Gear:    gearRepo,
		Kits:    kitService,
		Checker: engine,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reservation service", err)
		os.Exit(1)
	}

	eventService, err := events.NewService(events.ServiceParams{
		Repo:         eventsRepo,
		Reservations: reservationsRepo,
		Blocked:      engine,
		Logger:       logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create event service", err)
		os.Exit(1)
	}

	teamService, err := team.NewService(team.ServiceParams{
		Repo:   team.NewRepository(store),
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create team service", err)
		os.Exit(1)
	}

	workspaceService, err := workspaces.NewService(workspaces.ServiceParams{
		Repo:   workspaces.NewRepository(dbClient.DB()),
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create workspace service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(
		cfg,
		logg,
		redisClient,
		registry,
		sessionManager,
		authService,
		workspaceService,
		gearService,
		eventService,
		reservationService,
		kitService,
		teamService,
		snapshot,
		routes.Readiness("database", dbClient.Ping),
		routes.Readiness("redis", redisClient.Ping),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
