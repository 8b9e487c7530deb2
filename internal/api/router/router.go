package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/orbit-landing/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/orbit-landing/internal/http/middleware"
	"github.com/wolfman30/orbit-landing/internal/intake"
	"github.com/wolfman30/orbit-landing/internal/waitlist"
	"github.com/wolfman30/orbit-landing/pkg/logging"
)

// Config holds router configuration. Every handler is optional; routes for
// a nil handler are not registered, which lets the Lambda entrypoint serve
// only the edge endpoints from the same table.
type Config struct {
	Logger         *logging.Logger
	Version        string
	IntakeHandler  *intake.Handler
	AdminWaitlist  *waitlist.Handler
	Avatar         *handlers.AvatarHandler
	CSVHistory     *handlers.CSVHistoryHandler
	SystemStatus   *handlers.SystemStatusHandler
	ServeExpenses  bool
	MetricsHandler http.Handler

	// RateLimiter guards the public write endpoints. The caller owns it
	// and closes it on shutdown.
	RateLimiter *httpmiddleware.RateLimiter

	AdminAuthSecret    string
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	r := chi.NewRouter()
	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.RequestLogger(logger))
	r.Use(httpmiddleware.Recoverer(logger))
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}

	limited := func(h http.Handler) http.Handler { return h }
	if cfg.RateLimiter != nil {
		limited = cfg.RateLimiter.Middleware
	}

	r.Get("/health", health(cfg.Version))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		api.NotFound(handlers.NotFound)
		api.MethodNotAllowed(handlers.MethodNotAllowed)
		if cfg.IntakeHandler != nil {
			api.With(limited).Mount("/intake/sessions", cfg.IntakeHandler.Routes())
			api.With(limited).Post("/waitlist", cfg.IntakeHandler.SubmitWaitlist)
		}
		if cfg.Avatar != nil {
			api.With(limited).Post("/avatar/upload", cfg.Avatar.Upload)
		}
		if cfg.CSVHistory != nil {
			api.Get("/csv/upload-history", cfg.CSVHistory.List)
		}
		if cfg.ServeExpenses {
			api.Get("/finance/expenses", handlers.Expenses)
		}
		if cfg.SystemStatus != nil {
			api.Get("/orbit/system-status", cfg.SystemStatus.Get)
		}
	})

	if cfg.AdminWaitlist != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/waitlist", cfg.AdminWaitlist.List)
		})
	}

	return r
}

func health(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "version": version})
	}
}
