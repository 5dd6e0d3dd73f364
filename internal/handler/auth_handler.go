/*
This file provides HTTP handler functions for registration, OTP verification,
login, and session management.
*/
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"incognichat/internal/app/store"
	"incognichat/internal/app/user"
	"incognichat/internal/pkg/auth/jwt"
	"incognichat/internal/pkg/errs"
	"incognichat/internal/pkg/logx"
	"incognichat/internal/pkg/randx"
	"incognichat/internal/pkg/req"
	"incognichat/internal/pkg/resp"
)

const (
	// OTPLifetime is how long a verification code stays valid.
	OTPLifetime = 10 * time.Minute

	// aliasAttempts bounds the collision-check loop for generated aliases.
	aliasAttempts = 10

	// minPasswordLength is the shortest accepted password.
	minPasswordLength = 6
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// userJSON shapes a user record for API responses. The password hash and OTP
// never leave the server.
func userJSON(u *user.User) map[string]any {
	return map[string]any{
		"id":              u.ID,
		"fullName":        u.FullName,
		"email":           u.Email,
		"alias":           u.Alias,
		"role":            string(u.Role),
		"warningCount":    u.WarningCount,
		"isTypingBlocked": u.IsTypingBlocked,
		"isBlocked":       u.IsBlocked,
		"blockType":       string(u.BlockType),
		"isOnline":        u.IsOnline,
		"createdAt":       u.CreatedAt.Format(time.RFC3339),
	}
}

// uniqueAlias generates an anonymous alias not used by any live account.
func uniqueAlias(ctx context.Context, deps *AppDeps) (string, error) {
	for i := 0; i < aliasAttempts; i++ {
		alias, err := randx.Alias()
		if err != nil {
			return "", err
		}

		taken, err := deps.Store.AliasExists(ctx, alias)
		if err != nil {
			return "", err
		}
		if !taken {
			return alias, nil
		}
	}
	return "", fmt.Errorf("no unique alias found in %d attempts", aliasAttempts)
}

type RegisterInput struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// HandleRegister starts registration: it stores an unverified account and
// sends an OTP. Re-registering an unverified email refreshes the account.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input RegisterInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.FullName == "" || input.Email == "" || input.Password == "" || input.ConfirmPassword == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}
		if !emailRegex.MatchString(input.Email) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}
		if input.Password != input.ConfirmPassword {
			resp.RespondError(w, r, errs.NewError(errs.ErrPasswordMismatch))
			return
		}
		if utf8.RuneCountInString(input.Password) < minPasswordLength {
			resp.RespondError(w, r, errs.NewError(errs.ErrPasswordTooShort, minPasswordLength))
			return
		}

		existing, err := deps.Store.GetUserByEmail(r.Context(), input.Email)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			logx.Error(err, "register: failed to look up email")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}
		if existing != nil && existing.IsVerified {
			resp.RespondError(w, r, errs.NewError(errs.ErrEmailAlreadyRegistered))
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		otp, err := randx.OTP()
		if err != nil {
			logx.Error(err, "register: failed to generate OTP")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}
		otpExpiry := time.Now().Add(OTPLifetime)

		if existing != nil {
			existing.FullName = input.FullName
			existing.PasswordHash = string(hashedPassword)
			existing.OTPCode = otp
			existing.OTPExpiresAt = &otpExpiry

			if err := deps.Store.UpdateUnverified(r.Context(), existing); err != nil {
				logx.Error(err, "register: failed to refresh unverified account")
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
				return
			}
		} else {
			alias, err := uniqueAlias(r.Context(), deps)
			if err != nil {
				logx.Error(err, "register: failed to generate alias")
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
				return
			}

			newUser := &user.User{
				ID:           randx.UserID(),
				FullName:     input.FullName,
				Email:        input.Email,
				PasswordHash: string(hashedPassword),
				Alias:        alias,
				Role:         user.RoleUser,
				OTPCode:      otp,
				OTPExpiresAt: &otpExpiry,
			}

			if err := deps.Store.CreateUser(r.Context(), newUser); err != nil {
				if store.IsUniqueViolation(err) {
					resp.RespondError(w, r, errs.NewError(errs.ErrEmailAlreadyRegistered))
					return
				}
				logx.Error(err, "register: failed to create user")
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
				return
			}
		}

		// A failed send is not fatal; the user can request a resend.
		if err := deps.Mailer.SendOTP(input.Email, otp); err != nil {
			logx.Error(err, "register: failed to send OTP email", "email", input.Email)
		}

		resp.RespondJSON(w, r, http.StatusCreated, resp.JSONResponse{
			Code:    0,
			Message: "success",
			Data: map[string]any{
				"message": "OTP sent to your email. Please verify to complete registration.",
				"email":   input.Email,
			},
		})
	}
}

type VerifyOTPInput struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// HandleVerifyOTP completes registration and issues a session token.
func HandleVerifyOTP(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input VerifyOTPInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Email == "" || input.OTP == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		u, err := deps.Store.GetUserByEmail(r.Context(), input.Email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
				return
			}
			logx.Error(err, "verify-otp: failed to look up user")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if u.IsVerified {
			resp.RespondError(w, r, errs.NewError(errs.ErrAlreadyVerified))
			return
		}
		if u.OTPCode == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrOTPMissing))
			return
		}
		if u.OTPExpiresAt == nil || time.Now().After(*u.OTPExpiresAt) {
			resp.RespondError(w, r, errs.NewError(errs.ErrOTPExpired))
			return
		}
		if u.OTPCode != input.OTP {
			resp.RespondError(w, r, errs.NewError(errs.ErrOTPInvalid))
			return
		}

		if err := deps.Store.MarkVerified(r.Context(), u.ID); err != nil {
			logx.Error(err, "verify-otp: failed to mark verified")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		token, err := issueToken(deps, u)
		if err != nil {
			logx.Error(err, "verify-otp: failed to generate token")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		u.IsVerified = true
		resp.RespondSuccess(w, r, map[string]any{
			"message": "Email verified successfully!",
			"token":   token,
			"user":    userJSON(u),
		})
	}
}

type ResendOTPInput struct {
	Email string `json:"email"`
}

// HandleResendOTP issues a fresh code for an unverified account.
func HandleResendOTP(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input ResendOTPInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		u, err := deps.Store.GetUserByEmail(r.Context(), input.Email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
				return
			}
			logx.Error(err, "resend-otp: failed to look up user")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if u.IsVerified {
			resp.RespondError(w, r, errs.NewError(errs.ErrAlreadyVerified))
			return
		}

		otp, err := randx.OTP()
		if err != nil {
			logx.Error(err, "resend-otp: failed to generate OTP")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if err := deps.Store.SetOTP(r.Context(), u.ID, otp, time.Now().Add(OTPLifetime)); err != nil {
			logx.Error(err, "resend-otp: failed to store OTP")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if err := deps.Mailer.SendOTP(u.Email, otp); err != nil {
			logx.Error(err, "resend-otp: failed to send OTP email", "email", u.Email)
		}

		resp.RespondSuccess(w, r, map[string]any{
			"message": "New OTP sent to your email",
		})
	}
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin verifies credentials and issues a session token. The bootstrap
// admin account is created on its first login with the configured
// credentials.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input LoginInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Email == "" || input.Password == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if deps.Config.AdminEmail != "" &&
			input.Email == deps.Config.AdminEmail &&
			input.Password == deps.Config.AdminPassword {
			handleAdminLogin(deps, w, r)
			return
		}

		u, err := deps.Store.GetUserByEmail(r.Context(), input.Email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
				return
			}
			logx.Error(err, "login: failed to look up user")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if !u.IsVerified {
			resp.RespondError(w, r, errs.NewError(errs.ErrEmailNotVerified))
			return
		}
		if u.IsDeleted {
			resp.RespondError(w, r, errs.NewError(errs.ErrAccountDeleted))
			return
		}

		// Lazy expiry: a 24h block that has run out clears on the next
		// login attempt.
		if u.CheckBlockExpiry(time.Now()) {
			if err := deps.Store.SaveEnforcement(r.Context(), u); err != nil {
				logx.Error(err, "login: failed to persist block expiry", "user_id", u.ID)
			}
		}

		if u.IsBlocked {
			resp.RespondError(w, r, errs.NewError(errs.ErrAccountBlocked))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if err := deps.Store.SetOnline(r.Context(), u.ID, true); err != nil {
			logx.Error(err, "login: failed to mark online", "user_id", u.ID)
		}

		token, err := issueToken(deps, u)
		if err != nil {
			logx.Error(err, "login: failed to generate token")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"message": "Login successful",
			"token":   token,
			"user":    userJSON(u),
		})
	}
}

// handleAdminLogin finds or creates the bootstrap admin account.
func handleAdminLogin(deps *AppDeps, w http.ResponseWriter, r *http.Request) {
	admin, err := deps.Store.GetUserByEmail(r.Context(), deps.Config.AdminEmail)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		logx.Error(err, "login: failed to look up admin")
		resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
		return
	}

	if admin == nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(deps.Config.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		admin = &user.User{
			ID:           randx.UserID(),
			FullName:     "Admin",
			Email:        deps.Config.AdminEmail,
			PasswordHash: string(hashedPassword),
			Alias:        "SystemAdmin",
			IsVerified:   true,
			Role:         user.RoleAdmin,
		}

		if err := deps.Store.CreateUser(r.Context(), admin); err != nil {
			logx.Error(err, "login: failed to bootstrap admin account")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		logx.Info("Bootstrap admin account created.", "email", admin.Email)
	}

	token, err := issueToken(deps, admin)
	if err != nil {
		logx.Error(err, "login: failed to generate admin token")
		resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
		return
	}

	resp.RespondSuccess(w, r, map[string]any{
		"message": "Admin login successful",
		"token":   token,
		"user":    userJSON(admin),
	})
}

// HandleGetMe returns the authenticated account, applying lazy block expiry.
func HandleGetMe(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, customErr := currentUser(deps, r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if u.CheckBlockExpiry(time.Now()) {
			if err := deps.Store.SaveEnforcement(r.Context(), u); err != nil {
				logx.Error(err, "me: failed to persist block expiry", "user_id", u.ID)
			}
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user": userJSON(u),
		})
	}
}

// HandleLogout ends the session. Logging out wipes the room history, same as
// a connection drop.
func HandleLogout(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, customErr := currentUser(deps, r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if err := deps.Store.DeleteAllMessages(r.Context()); err != nil {
			logx.Error(err, "logout: failed to wipe messages")
		}

		if err := deps.Store.SetOnline(r.Context(), u.ID, false); err != nil {
			logx.Error(err, "logout: failed to mark offline", "user_id", u.ID)
		}

		resp.RespondSuccess(w, r, map[string]any{
			"message": "Logged out successfully",
		})
	}
}

// currentUser resolves the request's identity against the store.
func currentUser(deps *AppDeps, r *http.Request) (*user.User, *errs.CustomError) {
	payload := jwt.GetPayloadFromContext(r)
	if payload == nil {
		return nil, errs.NewError(errs.ErrUnauthorized)
	}

	u, err := deps.Store.GetUserByID(r.Context(), payload.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errs.NewError(errs.ErrUserNotFound)
		}
		logx.Error(err, "failed to resolve authenticated user", "user_id", payload.ID)
		return nil, errs.NewError(errs.ErrUnknown)
	}

	return u, nil
}

func issueToken(deps *AppDeps, u *user.User) (string, error) {
	payload := &jwt.Payload{
		ID:   u.ID,
		Role: string(u.Role),
	}
	return jwt.GenerateToken(payload, deps.Config.JWTSecret, jwt.SessionExpiration)
}
