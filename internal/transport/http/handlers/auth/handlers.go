package authhandler

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"depuente/internal/domain/auth"
	"depuente/internal/domain/core"
	"depuente/internal/platform/requestctx"
	"depuente/internal/transport/http/api"
	"depuente/internal/transport/http/middleware"
	"depuente/internal/transport/http/shared"
)

const sessionTTL = 8 * time.Hour

type Handler struct {
	Auth   *auth.Store
	Core   *core.Store
	Secret string
}

func NewHandler(authStore *auth.Store, coreStore *core.Store, secret string) *Handler {
	return &Handler{Auth: authStore, Core: coreStore, Secret: secret}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}

	profile, err := h.Core.ProfileByEmail(r.Context(), payload.Email)
	if err != nil || !profile.Active {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestctx.GetRequestID(r.Context()))
		return
	}

	hash, err := h.Auth.PasswordHash(r.Context(), profile.ID)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestctx.GetRequestID(r.Context()))
		return
	}
	if err := auth.CheckPassword(hash, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestctx.GetRequestID(r.Context()))
		return
	}

	sessionID, err := generateToken()
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", requestctx.GetRequestID(r.Context()))
		return
	}
	if err := h.Auth.CreateSession(r.Context(), profile.ID, auth.HashToken(sessionID), time.Now().Add(sessionTTL)); err != nil {
		api.Fail(w, http.StatusInternalServerError, "session_error", "failed to start session", requestctx.GetRequestID(r.Context()))
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{ProfileID: profile.ID, Role: profile.Role, SessionID: sessionID}, sessionTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", requestctx.GetRequestID(r.Context()))
		return
	}

	if err := h.Auth.UpdateLastLogin(r.Context(), profile.ID); err != nil {
		slog.Warn("update last_login failed", "profileId", profile.ID, "err", err)
	}

	api.Success(w, map[string]any{
		"token": token,
		"user": map[string]string{
			"id":       profile.ID,
			"email":    profile.Email,
			"fullName": profile.FullName,
			"role":     profile.Role,
		},
	}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if user, ok := middleware.GetUser(r.Context()); ok && user.SessionID != "" {
		if err := h.Auth.RevokeSession(r.Context(), user.ProfileID, auth.HashToken(user.SessionID)); err != nil {
			slog.Warn("logout session revoke failed", "profileId", user.ProfileID, "err", err)
		}
	}
	api.Success(w, map[string]string{"status": "logged_out"}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleRequestReset(w http.ResponseWriter, r *http.Request) {
	var payload resetRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}

	// Same response whether or not the email exists.
	response := map[string]string{"status": "reset_requested"}

	if !shared.ValidEmail(payload.Email) {
		api.Success(w, response, requestctx.GetRequestID(r.Context()))
		return
	}
	profile, err := h.Core.ProfileByEmail(r.Context(), payload.Email)
	if err != nil {
		api.Success(w, response, requestctx.GetRequestID(r.Context()))
		return
	}

	token, err := generateToken()
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue reset token", requestctx.GetRequestID(r.Context()))
		return
	}
	if err := h.Auth.CreatePasswordReset(r.Context(), profile.ID, auth.HashToken(token), time.Now().Add(time.Hour)); err != nil {
		api.Fail(w, http.StatusInternalServerError, "reset_error", "failed to create reset", requestctx.GetRequestID(r.Context()))
		return
	}

	// Token would normally go out by email; returning it here keeps the flow
	// usable without an SMTP server, as in development.
	response["resetToken"] = token
	api.Success(w, response, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var payload resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}
	if len(payload.NewPassword) < 8 {
		api.Fail(w, http.StatusBadRequest, "weak_password", "password must be at least 8 characters", requestctx.GetRequestID(r.Context()))
		return
	}

	tokenHash := auth.HashToken(payload.Token)
	profileID, err := h.Auth.PasswordResetProfileID(r.Context(), tokenHash)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_token", "invalid or expired reset token", requestctx.GetRequestID(r.Context()))
		return
	}

	hash, err := auth.HashPassword(payload.NewPassword)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "hash_error", "failed to hash password", requestctx.GetRequestID(r.Context()))
		return
	}
	if err := h.Auth.UpdatePassword(r.Context(), profileID, hash); err != nil {
		api.Fail(w, http.StatusInternalServerError, "reset_error", "failed to update password", requestctx.GetRequestID(r.Context()))
		return
	}
	if err := h.Auth.MarkPasswordResetUsed(r.Context(), tokenHash); err != nil {
		slog.Warn("mark reset used failed", "err", err)
	}

	api.Success(w, map[string]string{"status": "password_updated"}, requestctx.GetRequestID(r.Context()))
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
