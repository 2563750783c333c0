package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/harborcrest/pms/internal/http/handlers"
	"github.com/harborcrest/pms/internal/http/middleware"
	"github.com/harborcrest/pms/internal/http/response"
	"github.com/harborcrest/pms/pkg/config"
)

// Handlers groups every route surface the router mounts.
type Handlers struct {
	Auth       *handlers.AuthHandler
	RBAC       *handlers.RBACHandler
	Guests     *handlers.GuestsHandler
	Rooms      *handlers.RoomsHandler
	RoomTypes  *handlers.RoomTypesHandler
	Rates      *handlers.RatesHandler
	Bookings   *handlers.BookingsHandler
	Portal     *handlers.PortalHandler
	Occupancy  *handlers.OccupancyHandler
	Billing    *handlers.BillingHandler
	NightAudit *handlers.NightAuditHandler
	Settings   *handlers.SettingsHandler
	AuditLogs  *handlers.AuditLogsHandler
}

func NewRouter(cfg *config.Config, h Handlers) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", h.Auth.Routes())
		r.Mount("/rbac", h.RBAC.Routes())
		r.Mount("/guests", h.Guests.Routes())
		r.Mount("/rooms", h.Rooms.Routes())
		r.Mount("/room-types", h.RoomTypes.Routes())
		r.Mount("/rates", h.Rates.Routes())
		r.Mount("/bookings", h.Bookings.Routes())
		r.Mount("/guest-portal", h.Portal.Routes())
		r.Mount("/occupancy", h.Occupancy.Routes())
		r.Mount("/billing", h.Billing.Routes())
		r.Mount("/night-audit", h.NightAudit.Routes())
		r.Mount("/settings", h.Settings.Routes())
		r.Mount("/audit-logs", h.AuditLogs.Routes())
	})

	return r
}
