/*
This file contains the HandleWebSocket function, which is responsible for rate
limiting, authenticating the session token, checking the account's standing,
upgrading the HTTP connection to WebSocket, and starting the client lifecycle.
*/
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"incognichat/internal/app/chat"
	"incognichat/internal/app/store"
	"incognichat/internal/pkg/auth/jwt"
	"incognichat/internal/pkg/errs"
	"incognichat/internal/pkg/limiter"
	"incognichat/internal/pkg/logx"
	"incognichat/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection
// requests. Authorization is decided before the upgrade; a refused connection
// never reaches the room.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)
		if !rateLimiter.Allow(ip) {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		token := jwt.BearerToken(r)
		if token == "" {
			logx.Warn("WebSocket connection rejected: Missing token.")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		payload, err := jwt.ParseToken(token, deps.Config.JWTSecret)
		if err != nil {
			logx.Warn("WebSocket connection rejected: Invalid token.", "error", err.Error())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		u, err := deps.Store.GetUserByID(r.Context(), payload.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
				return
			}
			logx.Error(err, "WebSocket: failed to load user", "user_id", payload.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if u.IsDeleted {
			resp.RespondError(w, r, errs.NewError(errs.ErrAccountDeleted))
			return
		}

		// Lazy expiry: a lapsed 24h block clears on the connection attempt.
		if u.CheckBlockExpiry(time.Now()) {
			if err := deps.Store.SaveEnforcement(r.Context(), u); err != nil {
				logx.Error(err, "WebSocket: failed to persist block expiry", "user_id", u.ID)
			}
		}

		if u.IsBlocked {
			resp.RespondError(w, r, errs.NewError(errs.ErrAccountBlocked))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := chat.NewClient(deps.Room, deps.Gateway, conn, u.ID, u.Alias)

		go client.WritePump()

		logx.Info("WebSocket connection established", "user_id", u.ID, "alias", u.Alias)

		deps.Gateway.Connect(context.Background(), client)

		client.ReadPump()
	}
}
