/*
This file provides the admin-only HTTP handlers: account listing and detail,
block/unblock/delete enforcement, warning resets, message monitoring, and
dashboard stats. Enforcement actions also force-close the target's live
connections and notify them by email.
*/
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"incognichat/internal/app/store"
	"incognichat/internal/app/user"
	"incognichat/internal/metrics"
	"incognichat/internal/pkg/errs"
	"incognichat/internal/pkg/logx"
	"incognichat/internal/pkg/randx"
	"incognichat/internal/pkg/req"
	"incognichat/internal/pkg/resp"
)

const (
	defaultUserPageSize    = 20
	defaultMessagePageSize = 50
	maxPageSize            = 100
)

// adminUser resolves the request identity and requires the admin role. The
// role is checked against the store, not the token, so a demoted token holds
// no power.
func adminUser(deps *AppDeps, r *http.Request) (*user.User, *errs.CustomError) {
	u, customErr := currentUser(deps, r)
	if customErr != nil {
		return nil, customErr
	}
	if !u.IsAdmin() {
		return nil, errs.NewError(errs.ErrAdminOnly)
	}
	return u, nil
}

// targetUser loads the account named by the {id} route parameter.
func targetUser(deps *AppDeps, r *http.Request) (*user.User, *errs.CustomError) {
	id := chi.URLParam(r, "id")

	u, err := deps.Store.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errs.NewError(errs.ErrUserNotFound)
		}
		logx.Error(err, "admin: failed to load target user", "user_id", id)
		return nil, errs.NewError(errs.ErrUnknown)
	}
	return u, nil
}

func pageParams(r *http.Request, defaultLimit int) (page, limit, offset int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	return page, limit, (page - 1) * limit
}

// HandleListUsers returns non-admin accounts with search, status filter, and
// pagination, plus the aggregate stats shown alongside the table.
func HandleListUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, customErr := adminUser(deps, r); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		page, limit, offset := pageParams(r, defaultUserPageSize)

		filter := store.UserFilter(r.URL.Query().Get("filter"))
		switch filter {
		case store.FilterActive, store.FilterBlocked, store.FilterDeleted, store.FilterWarned:
		default:
			filter = store.FilterAll
		}

		users, total, err := deps.Store.ListUsers(r.Context(), store.ListUsersParams{
			Search: r.URL.Query().Get("search"),
			Filter: filter,
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			logx.Error(err, "admin: failed to list users")
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailure))
			return
		}

		stats, err := deps.Store.GetUserStats(r.Context())
		if err != nil {
			logx.Error(err, "admin: failed to load user stats")
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailure))
			return
		}

		userList := make([]map[string]any, 0, len(users))
		for _, u := range users {
			userList = append(userList, userJSON(u))
		}

		resp.RespondSuccess(w, r, map[string]any{
			"users": userList,
			"pagination": map[string]any{
				"page":  page,
				"limit": limit,
				"total": total,
				"pages": (total + limit - 1) / limit,
			},
			"stats": map[string]any{
				"totalUsers":   stats.TotalUsers,
				"activeUsers":  stats.ActiveUsers,
				"blockedUsers": stats.BlockedUsers,
				"onlineUsers":  stats.OnlineUsers,
			},
		})
	}
}

// HandleGetUserDetails returns one account together with its message counts.
func HandleGetUserDetails(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, customErr := adminUser(deps, r); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		target, customErr := targetUser(deps, r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		total, filtered, err := deps.Store.CountMessagesBySender(r.Context(), target.ID)
		if err != nil {
			logx.Error(err, "admin: failed to count messages", "user_id", target.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailure))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user":            userJSON(target),
			"messageCount":    total,
			"flaggedMessages": filtered,
		})
	}
}

type BlockUserInput struct {
	BlockType string `json:"blockType"`
	Reason    string `json:"reason"`
}

// HandleBlockUser applies a 24h or permanent block, closes the target's live
// connections, and emails them.
func HandleBlockUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, customErr := adminUser(deps, r); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var input BlockUserInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var kind user.BlockType
		switch input.BlockType {
		case string(user.Block24h):
			kind = user.Block24h
		case string(user.BlockPermanent):
			kind = user.BlockPermanent
		default:
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidBlockType))
			return
		}

		target, customErr := targetUser(deps, r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if err := target.Block(kind, time.Now()); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrAdminProtected))
			return
		}

		if err := deps.Store.SaveEnforcement(r.Context(), target); err != nil {
			logx.Error(err, "admin: failed to persist block", "user_id", target.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailure))
			return
		}

		metrics.AdminActions.WithLabelValues("block").Inc()

		deps.Gateway.ForceDisconnect(target.ID, "Account blocked by admin")

		subject := "IncogniChat - Account Blocked for 24 Hours"
		body := "Your account has been temporarily blocked for 24 hours due to violations of community guidelines."
		message := "User blocked for 24 hours"
		if kind == user.BlockPermanent {
			subject = "IncogniChat - Account Permanently Blocked"
			body = "Your account has been permanently blocked due to repeated violations of community guidelines."
			message = "User blocked permanently"
		}
		sendAccountNotice(deps, target, subject, body, input.Reason)

		resp.RespondSuccess(w, r, map[string]any{
			"message": message,
		})
	}
}

// HandleUnblockUser lifts any block on the account.
func HandleUnblockUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, customErr := adminUser(deps, r); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		target, customErr := targetUser(deps, r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		target.Unblock()

		if err := deps.Store.SaveEnforcement(r.Context(), target); err != nil {
			logx.Error(err, "admin: failed to persist unblock", "user_id", target.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailure))
			return
		}

		metrics.AdminActions.WithLabelValues("unblock").Inc()

		sendAccountNotice(deps, target,
			"IncogniChat - Account Unblocked",
			"Your account has been unblocked. You can now access IncogniChat again.", "")

		resp.RespondSuccess(w, r, map[string]any{
			"message": "User unblocked successfully",
		})
	}
}

type DeleteUserInput struct {
	Reason string `json:"reason"`
}

// HandleDeleteUser soft-deletes the account, closes its connections, and
// emails the owner. Deletion is terminal.
func HandleDeleteUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, customErr := adminUser(deps, r); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var input DeleteUserInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		target, customErr := targetUser(deps, r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if err := target.SoftDelete(); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrAdminProtected))
			return
		}

		if err := deps.Store.SaveEnforcement(r.Context(), target); err != nil {
			logx.Error(err, "admin: failed to persist delete", "user_id", target.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailure))
			return
		}

		metrics.AdminActions.WithLabelValues("delete").Inc()

		deps.Gateway.ForceDisconnect(target.ID, "Account deleted by admin")

		sendAccountNotice(deps, target,
			"IncogniChat - Account Deleted",
			"Your account has been deleted by an administrator.", input.Reason)

		resp.RespondSuccess(w, r, map[string]any{
			"message": "User account deleted",
		})
	}
}

// HandleResetWarnings clears the warning count and the typing lock.
func HandleResetWarnings(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, customErr := adminUser(deps, r); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		target, customErr := targetUser(deps, r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		target.ResetWarnings()

		if err := deps.Store.SaveEnforcement(r.Context(), target); err != nil {
			logx.Error(err, "admin: failed to persist warning reset", "user_id", target.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailure))
			return
		}

		metrics.AdminActions.WithLabelValues("reset_warnings").Inc()

		resp.RespondSuccess(w, r, map[string]any{
			"message": "Warnings reset successfully",
		})
	}
}

// HandleResendVerification sends a fresh OTP to an unverified account on the
// user's behalf.
func HandleResendVerification(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, customErr := adminUser(deps, r); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		target, customErr := targetUser(deps, r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if target.IsVerified {
			resp.RespondError(w, r, errs.NewError(errs.ErrAlreadyVerified))
			return
		}

		otp, err := randx.OTP()
		if err != nil {
			logx.Error(err, "admin: failed to generate OTP")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if err := deps.Store.SetOTP(r.Context(), target.ID, otp, time.Now().Add(OTPLifetime)); err != nil {
			logx.Error(err, "admin: failed to store OTP", "user_id", target.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailure))
			return
		}

		metrics.AdminActions.WithLabelValues("resend_verification").Inc()

		if err := deps.Mailer.SendOTP(target.Email, otp); err != nil {
			logx.Error(err, "admin: failed to send OTP email", "email", target.Email)
		}

		resp.RespondSuccess(w, r, map[string]any{
			"message": "Verification code sent",
		})
	}
}

// HandleListMessages returns the newest messages, including filtered records,
// for admin monitoring.
func HandleListMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, customErr := adminUser(deps, r); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		_, limit, _ := pageParams(r, defaultMessagePageSize)

		messages, err := deps.Store.ListMessages(r.Context(), limit)
		if err != nil {
			logx.Error(err, "admin: failed to list messages")
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailure))
			return
		}

		total, _, err := deps.Store.CountMessages(r.Context())
		if err != nil {
			logx.Error(err, "admin: failed to count messages")
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailure))
			return
		}

		messageList := make([]map[string]any, 0, len(messages))
		for _, m := range messages {
			messageList = append(messageList, map[string]any{
				"id":           m.ID,
				"senderId":     m.SenderID,
				"alias":        m.Alias,
				"content":      m.Content,
				"isFiltered":   m.IsFiltered,
				"filterReason": m.FilterReason,
				"kind":         string(m.Kind),
				"createdAt":    m.CreatedAt.Format(time.RFC3339),
			})
		}

		resp.RespondSuccess(w, r, map[string]any{
			"messages": messageList,
			"total":    total,
		})
	}
}

// HandleDashboardStats returns the aggregate counts behind the admin
// dashboard.
func HandleDashboardStats(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, customErr := adminUser(deps, r); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		stats, err := deps.Store.GetUserStats(r.Context())
		if err != nil {
			logx.Error(err, "admin: failed to load user stats")
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailure))
			return
		}

		totalMessages, flaggedMessages, err := deps.Store.CountMessages(r.Context())
		if err != nil {
			logx.Error(err, "admin: failed to count messages")
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailure))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"stats": map[string]any{
				"totalUsers":      stats.TotalUsers,
				"activeUsers":     stats.ActiveUsers,
				"blockedUsers":    stats.BlockedUsers,
				"onlineUsers":     stats.OnlineUsers,
				"totalMessages":   totalMessages,
				"flaggedMessages": flaggedMessages,
				"deletedAccounts": stats.DeletedAccounts,
				"recentSignups":   stats.RecentSignups,
			},
		})
	}
}

// sendAccountNotice emails the target about an enforcement action. A send
// failure is logged, never surfaced to the admin call.
func sendAccountNotice(deps *AppDeps, target *user.User, subject, body, reason string) {
	text := "Dear " + target.FullName + ",\r\n\r\n" + body
	if reason != "" {
		text += "\r\n\r\nReason: " + reason
	}
	text += "\r\n\r\nIf you believe this is a mistake, please contact our support team."

	if err := deps.Mailer.SendAccountAction(target.Email, subject, text); err != nil {
		logx.Error(err, "failed to send account notice", "email", target.Email, "subject", subject)
	}
}
