package routes

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/AnshRaj112/clima-backend/internal/handlers"
	"github.com/AnshRaj112/clima-backend/internal/middleware"
	"github.com/AnshRaj112/clima-backend/internal/observability"
)

// Dependencies are the handlers and cross-cutting pieces the router mounts.
type Dependencies struct {
	Feedback  *handlers.FeedbackHandler
	AdminAuth *handlers.AdminAuthHandler
	Admin     *handlers.AdminHandler
	Weather   *handlers.WeatherHandler
	Session   middleware.SessionVerifier

	AllowedOrigins []string
	// Security runs on every /api route; /health and /metrics skip it.
	Security       []func(http.Handler) http.Handler
	MetricsHandler http.Handler

	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// NewRouter builds the HTTP handler for the whole service.
func NewRouter(d Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(d.Logger, d.Metrics))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(d.AllowedOrigins))

	// Health check (no rate limit)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})
	if d.MetricsHandler != nil {
		r.Handle("/metrics", d.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		for _, mw := range d.Security {
			r.Use(mw)
		}
		SetupRoutes(r, d)
	})

	return r
}

// SetupRoutes mounts the /api endpoints.
func SetupRoutes(r chi.Router, d Dependencies) {
	// Public feedback routes
	r.Post("/api/feedback", d.Feedback.SubmitFeedback)
	r.Get("/api/feedback", d.Feedback.GetFeedback)
	r.Get("/api/feedback/recent", d.Feedback.GetRecentFeedback)

	// Weather dashboard
	r.Get("/api/weather", d.Weather.GetWeather)
	r.Get("/api/weather/stations", d.Weather.GetStations)

	// Admin auth routes
	r.Post("/api/admin/login", d.AdminAuth.AdminSignin)
	r.Post("/api/admin/logout", d.AdminAuth.AdminLogout)
	r.Get("/api/admin/session", d.AdminAuth.AdminSession)

	// Admin routes (session cookie required)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(d.Session))
		r.Get("/api/admin/feedback", d.Admin.GetFeedback)
		r.Get("/api/admin/feedback/export", d.Admin.ExportFeedback)
		r.Get("/api/admin/logins", d.Admin.GetLoginAttempts)
	})
}
