/*
Package handler provides the HTTP handlers and routing setup for the
IncogniChat server.

This file defines the main Router, applying middleware like logging, CORS,
and IP-based rate limiting before delegating requests to the auth, admin,
and WebSocket handlers.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"incognichat/internal/metrics"
	"incognichat/internal/pkg/auth/jwt"
	"incognichat/internal/pkg/limiter"
	"incognichat/internal/pkg/logx"
	"incognichat/internal/pkg/resp"
)

const (
	// AuthRate limits credential and OTP endpoints per IP.
	AuthRate  = 0.5
	AuthBurst = 5

	// ConnectRate limits WebSocket handshakes per IP.
	ConnectRate  = 0.2
	ConnectBurst = 5
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// It initializes IP-based rate limiters, configures CORS, and applies global
// and per-route middleware.
func Router(deps *AppDeps) http.Handler {
	authLimiter := limiter.NewIPRateLimiter(rate.Limit(AuthRate), AuthBurst)
	connectLimiter := limiter.NewIPRateLimiter(rate.Limit(ConnectRate), ConnectBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "IncogniChat Server",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret))

		api.Route("/auth", func(auth chi.Router) {
			auth.Use(authLimiter.Middleware)

			auth.Post("/register", HandleRegister(deps))
			auth.Post("/verify-otp", HandleVerifyOTP(deps))
			auth.Post("/resend-otp", HandleResendOTP(deps))
			auth.Post("/login", HandleLogin(deps))
			auth.Get("/me", HandleGetMe(deps))
			auth.Post("/logout", HandleLogout(deps))
		})

		api.Route("/admin", func(admin chi.Router) {
			admin.Get("/stats", HandleDashboardStats(deps))
			admin.Get("/users", HandleListUsers(deps))
			admin.Get("/users/{id}", HandleGetUserDetails(deps))
			admin.Put("/users/{id}/block", HandleBlockUser(deps))
			admin.Put("/users/{id}/unblock", HandleUnblockUser(deps))
			admin.Put("/users/{id}/reset-warnings", HandleResetWarnings(deps))
			admin.Put("/users/{id}/resend-verification", HandleResendVerification(deps))
			admin.Delete("/users/{id}", HandleDeleteUser(deps))
			admin.Get("/messages", HandleListMessages(deps))
		})
	})

	r.Get("/ws", HandleWebSocket(wsUpgrader, connectLimiter, deps))

	return r
}
