// Package router assembles the chi route tree from the feature
// handlers.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/saludgo/platform/internal/accounts"
	"github.com/saludgo/platform/internal/analytics"
	"github.com/saludgo/platform/internal/appointments"
	"github.com/saludgo/platform/internal/campaigns"
	"github.com/saludgo/platform/internal/chatbot"
	"github.com/saludgo/platform/internal/community"
	"github.com/saludgo/platform/internal/facilities"
	"github.com/saludgo/platform/internal/http/handlers"
	httpmiddleware "github.com/saludgo/platform/internal/http/middleware"
	"github.com/saludgo/platform/internal/meds"
	"github.com/saludgo/platform/internal/passwordreset"
	"github.com/saludgo/platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	AccountsHandler     *accounts.Handler
	AppointmentsHandler *appointments.Handler
	PasswordReset       *passwordreset.Handler
	FacilitiesHandler   *facilities.Handler
	CampaignsHandler    *campaigns.Handler
	CommunityHandler    *community.Handler
	ChatbotHandler      *chatbot.Handler
	MedsHandler         *meds.Handler
	AnalyticsHandler    *analytics.Handler
	AdminDashboard      *handlers.AdminDashboardHandler
	LandingHandler      *handlers.LandingHandler

	TokenVerifier      httpmiddleware.TokenVerifier
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// New creates a new chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.RateLimitPerSecond > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
	}
	if cfg.TokenVerifier != nil {
		r.Use(httpmiddleware.SessionAuth(cfg.TokenVerifier))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.LandingHandler != nil {
			public.Get("/landing", cfg.LandingHandler.GetLanding)
		}
		if cfg.AccountsHandler != nil {
			public.Post("/auth/register", cfg.AccountsHandler.Register)
			public.Post("/auth/login", cfg.AccountsHandler.Login)
		}
		if cfg.PasswordReset != nil {
			public.Post("/auth/forgot", cfg.PasswordReset.Forgot)
			public.Post("/auth/reset/{token}", cfg.PasswordReset.Reset)
		}
		if cfg.CommunityHandler != nil {
			public.Post("/community/reports", cfg.CommunityHandler.SubmitReport)
			public.Post("/community/availability", cfg.CommunityHandler.SubmitSlot)
		}
		if cfg.ChatbotHandler != nil {
			public.Post("/chatbot/message", cfg.ChatbotHandler.Message)
		}
		if cfg.FacilitiesHandler != nil {
			public.Get("/facilities", cfg.FacilitiesHandler.List)
		}
		if cfg.CampaignsHandler != nil {
			public.Get("/campaigns", cfg.CampaignsHandler.List)
			public.Get("/campaigns/upcoming", cfg.CampaignsHandler.Upcoming)
		}
	})

	// Authenticated endpoints
	r.Group(func(authed chi.Router) {
		authed.Use(httpmiddleware.RequireAuth)

		if cfg.AppointmentsHandler != nil {
			authed.Post("/appointments", cfg.AppointmentsHandler.Book)
			authed.Get("/appointments", cfg.AppointmentsHandler.ListMine)
			authed.Get("/appointments/availability", cfg.AppointmentsHandler.Availability)
		}
		if cfg.AccountsHandler != nil {
			authed.Get("/profile", cfg.AccountsHandler.Me)
			authed.Put("/profile", cfg.AccountsHandler.UpdateProfile)
		}
		if cfg.MedsHandler != nil {
			authed.Get("/meds", cfg.MedsHandler.ListMine)
		}
	})

	// Admin endpoints
	r.Route("/admin", func(admin chi.Router) {
		admin.Use(httpmiddleware.RequireAdmin)

		if cfg.AppointmentsHandler != nil {
			admin.Post("/appointments", cfg.AppointmentsHandler.AdminCreate)
			admin.Get("/appointments", cfg.AppointmentsHandler.AdminList)
			admin.Patch("/appointments/{id}/status", cfg.AppointmentsHandler.AdminUpdateStatus)
			admin.Delete("/appointments/{id}", cfg.AppointmentsHandler.AdminDelete)
		}
		if cfg.FacilitiesHandler != nil {
			admin.Post("/facilities", cfg.FacilitiesHandler.AdminCreate)
			admin.Put("/facilities/{id}", cfg.FacilitiesHandler.AdminUpdate)
			admin.Delete("/facilities/{id}", cfg.FacilitiesHandler.AdminDelete)
		}
		if cfg.CampaignsHandler != nil {
			admin.Post("/campaigns", cfg.CampaignsHandler.AdminCreate)
			admin.Put("/campaigns/{id}", cfg.CampaignsHandler.AdminUpdate)
			admin.Delete("/campaigns/{id}", cfg.CampaignsHandler.AdminDelete)
		}
		if cfg.AccountsHandler != nil {
			admin.Get("/users", cfg.AccountsHandler.AdminList)
			admin.Patch("/users/{id}/role", cfg.AccountsHandler.AdminUpdateRole)
			admin.Delete("/users/{id}", cfg.AccountsHandler.AdminDelete)
		}
		if cfg.MedsHandler != nil {
			admin.Post("/meds", cfg.MedsHandler.AdminAssign)
			admin.Get("/meds", cfg.MedsHandler.AdminList)
			admin.Delete("/meds/{id}", cfg.MedsHandler.AdminDelete)
		}
		if cfg.CommunityHandler != nil {
			admin.Get("/community/reports", cfg.CommunityHandler.AdminReports)
			admin.Get("/community/availability", cfg.CommunityHandler.AdminSlots)
		}
		if cfg.AdminDashboard != nil {
			admin.Get("/dashboard", cfg.AdminDashboard.GetDashboard)
		}
		if cfg.AnalyticsHandler != nil {
			admin.Get("/analytics/dashboard", cfg.AnalyticsHandler.Dashboard)
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
