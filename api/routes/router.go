package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/javi-app/javi-backend/api/controllers"
	"github.com/javi-app/javi-backend/api/middleware"
	"github.com/javi-app/javi-backend/internal/auth"
	"github.com/javi-app/javi-backend/internal/events"
	"github.com/javi-app/javi-backend/internal/gear"
	"github.com/javi-app/javi-backend/internal/kits"
	"github.com/javi-app/javi-backend/internal/reservations"
	"github.com/javi-app/javi-backend/internal/team"
	"github.com/javi-app/javi-backend/internal/workspaces"
	"github.com/javi-app/javi-backend/pkg/auth/session"
	"github.com/javi-app/javi-backend/pkg/config"
	"github.com/javi-app/javi-backend/pkg/logger"
	"github.com/javi-app/javi-backend/pkg/redis"
)

// Readiness wraps a dependency ping as a named readiness probe.
func Readiness(name string, check func(context.Context) error) controllers.ReadinessCheck {
	return controllers.ReadinessCheck{Name: name, Check: check}
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	metricsRegistry *prometheus.Registry,
	sessions session.AccessSessionChecker,
	authService auth.Service,
	workspaceService *workspaces.Service,
	gearService *gear.Service,
	eventService *events.Service,
	reservationService *reservations.Service,
	kitService *kits.Service,
	teamService *team.Service,
	availability controllers.BlockedSetReader,
	readiness ...controllers.ReadinessCheck,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness...))
	})

	if metricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(authService, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
		r.With(middleware.Auth(cfg.JWT, sessions, logg)).Post("/logout", controllers.AuthLogout(authService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Workspace(workspaceService, logg))

		r.Route("/workspaces", func(r chi.Router) {
			r.Get("/", controllers.WorkspaceList(workspaceService, logg))
			r.Post("/", controllers.WorkspaceBootstrap(workspaceService, logg))
			r.Patch("/current", controllers.WorkspaceRename(workspaceService, logg))
			r.Get("/current/members", controllers.WorkspaceMembers(workspaceService, logg))
			r.Post("/current/leave", controllers.WorkspaceLeave(workspaceService, logg))
			r.Delete("/current/data", controllers.WorkspaceDeleteData(workspaceService, logg))
		})

		r.Route("/gear", func(r chi.Router) {
			r.Route("/groups", func(r chi.Router) {
				r.Get("/", controllers.GearListGroups(gearService, logg))
				r.Post("/", controllers.GearCreateGroup(gearService, logg))
				r.Patch("/", controllers.GearReconcile(gearService, logg))
				r.Delete("/", controllers.GearDeleteGroup(gearService, logg))
			})
			r.Route("/items", func(r chi.Router) {
				r.Get("/", controllers.GearListItems(gearService, logg))
				r.Get("/{itemID}", controllers.GearGetItem(gearService, logg))
				r.Patch("/{itemID}", controllers.GearUpdateItem(gearService, logg))
				r.Delete("/{itemID}", controllers.GearDeleteItem(gearService, logg))
			})
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", controllers.EventList(eventService, logg))
			r.Post("/", controllers.EventCreate(eventService, logg))
			r.Route("/{eventID}", func(r chi.Router) {
				r.Get("/", controllers.EventGet(eventService, logg))
				r.Patch("/", controllers.EventUpdate(eventService, logg))
				r.Patch("/window", controllers.EventUpdateWindow(eventService, logg))
				r.Post("/cancel", controllers.EventCancel(eventService, logg))
				r.Delete("/", controllers.EventDelete(eventService, logg))

				r.Route("/reservations", func(r chi.Router) {
					r.Get("/", controllers.ReservationList(reservationService, logg))
					r.Post("/items", controllers.ReservationReserveItem(reservationService, logg))
					r.Post("/groups", controllers.ReservationReserveGroup(reservationService, logg))
					r.Post("/kits", controllers.ReservationAddKit(reservationService, logg))
					r.Post("/scan", controllers.ReservationReserveScan(reservationService, logg))
				})
				r.Route("/returns", func(r chi.Router) {
					r.Post("/", controllers.ReservationReturnAll(reservationService, logg))
					r.Post("/scan", controllers.ReservationReturnScan(reservationService, logg))
				})
			})
		})

		r.Delete("/reservations/{reservationID}", controllers.ReservationCancel(reservationService, logg))

		r.Route("/checkouts", func(r chi.Router) {
			r.Post("/", controllers.CheckoutCreate(reservationService, logg))
			r.Post("/{checkoutID}/return", controllers.CheckoutReturn(reservationService, logg))
		})

		r.Route("/kits", func(r chi.Router) {
			r.Get("/", controllers.KitList(kitService, logg))
			r.Post("/", controllers.KitCreate(kitService, logg))
			r.Get("/{kitID}", controllers.KitGet(kitService, logg))
			r.Patch("/{kitID}", controllers.KitUpdate(kitService, logg))
			r.Delete("/{kitID}", controllers.KitDelete(kitService, logg))
		})

		r.Route("/team", func(r chi.Router) {
			r.Get("/", controllers.TeamList(teamService, logg))
			r.Post("/", controllers.TeamCreate(teamService, logg))
			r.Get("/{memberID}", controllers.TeamGet(teamService, logg))
			r.Patch("/{memberID}", controllers.TeamUpdate(teamService, logg))
			r.Delete("/{memberID}", controllers.TeamDelete(teamService, logg))
		})

		r.Get("/availability/blocked", controllers.AvailabilityBlocked(availability, logg))
	})

	return r
}
