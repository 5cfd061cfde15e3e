package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/stoicjournal/stoic/internal/app"
	"github.com/stoicjournal/stoic/internal/handler"
	"github.com/stoicjournal/stoic/internal/middleware"
	"github.com/stoicjournal/stoic/internal/respond"
)

// SetupRoutes builds the HTTP handler. ctx bounds the rate limiter
// cleanup goroutines.
func SetupRoutes(ctx context.Context, app *app.App) http.Handler {
	// Handlers
	health := handler.NewHealthHandler(app.DB)
	auth := handler.NewAuthHandler(app.AuthService)
	entries := handler.NewEntryHandler(app.EntryService, app.ExportService)

	// Rate limiters
	authLimiter := middleware.NewRateLimiter(5, time.Minute)
	entryLimiter := middleware.NewRateLimiter(app.Cfg.EntryRateLimit, app.Cfg.EntryRateLimitWindow)
	go authLimiter.Run(ctx, 5*time.Minute)
	go entryLimiter.Run(ctx, 5*time.Minute)

	limitAuth := middleware.RateLimit(authLimiter, middleware.ClientIPKey)
	limitEntries := middleware.RateLimit(entryLimiter, middleware.UserKey)

	mux := http.NewServeMux()

	// Health
	mux.HandleFunc("GET /healthz", health.Check)

	// Auth (rate limited per IP)
	mux.HandleFunc("POST /auth/register", limitAuth(middleware.RequireGuest(auth.Register)))
	mux.HandleFunc("POST /auth/login", limitAuth(middleware.RequireGuest(auth.Login)))
	mux.HandleFunc("POST /auth/forgot-password", limitAuth(auth.ForgotPassword))
	mux.HandleFunc("POST /auth/reset-password", limitAuth(auth.ResetPassword))
	mux.HandleFunc("POST /auth/logout", auth.Logout)
	mux.HandleFunc("GET /auth/me", middleware.RequireAuth(auth.Me))

	// Entries
	mux.HandleFunc("POST /entries", middleware.RequireAuth(limitEntries(entries.Create)))
	mux.HandleFunc("GET /entries", middleware.RequireAuth(entries.List))
	mux.HandleFunc("GET /entries/today", middleware.RequireAuth(entries.Today))
	mux.HandleFunc("GET /entries/export", middleware.RequireAuth(entries.Export))
	mux.HandleFunc("GET /entries/{id}", middleware.RequireAuth(entries.Show))
	mux.HandleFunc("DELETE /entries/{id}", middleware.RequireAuth(entries.Delete))

	// 404
	mux.HandleFunc("/{path...}", func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusNotFound, respond.CodeNotFound, "Not found")
	})

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.RequestLogging,
		middleware.Config(app.Cfg),
		middleware.AuthMiddleware(app.AuthService),
		middleware.CSRFProtection, // needs the auth method set above
	)
}
