package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"podia/internal/auth"
	"podia/internal/form"
	"podia/internal/middleware"
	"podia/internal/model"
	"podia/internal/session"
	"podia/internal/store"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/login. All failures surface as the same generic
// message so the endpoint cannot be used to enumerate accounts.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password", nil)
		return
	}

	ip := clientIP(r)

	if h.protection != nil {
		if locked, remaining := h.protection.IsAccountLocked(email); locked {
			slog.Warn("login attempt on locked account", "ip", ip)
			_ = h.audit.LogAuth(r.Context(), model.AuditLevelWarning, "Login attempt on locked account",
				nil, ip, map[string]any{"retry_after_seconds": int(remaining.Seconds())})
			WriteError(w, http.StatusTooManyRequests, "account_locked",
				"Too many failed attempts. Try again later.", nil)
			return
		}
	}

	account, err := form.Login(r.Context(), h.db, email, req.Password)
	if err != nil {
		if errors.Is(err, form.ErrInvalidCredentials) {
			h.recordLoginFailure(r.Context(), email, ip)
			WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password", nil)
			return
		}
		slog.Error("login failed", "error", err)
		WriteInternalError(w, "Login failed")
		return
	}

	if h.protection != nil {
		h.protection.RecordSuccessfulLogin(email)
	}

	// Hashes created under older parameters get upgraded transparently.
	if auth.NeedsRehash(account.PasswordHash) {
		if hash, err := auth.HashPassword(req.Password); err == nil {
			if err := h.queries.UpdateAccountPassword(r.Context(), store.UpdateAccountPasswordParams{
				PasswordHash: hash,
				ID:           account.ID,
			}); err != nil {
				slog.Error("password rehash failed", "error", err, "account_id", account.ID)
			}
		}
	}

	if err := h.queries.UpdateAccountLastLogin(r.Context(), store.UpdateAccountLastLoginParams{
		LastLoginAt: sql.NullTime{Time: time.Now(), Valid: true},
		ID:          account.ID,
	}); err != nil {
		// Not worth failing the login over.
		slog.Error("last-login update failed", "error", err, "account_id", account.ID)
	}

	if err := session.LogIn(r.Context(), h.sessions, account.ID); err != nil {
		slog.Error("session establishment failed", "error", err, "account_id", account.ID)
		WriteInternalError(w, "Login failed")
		return
	}

	accountID := account.ID
	_ = h.audit.LogAuth(r.Context(), model.AuditLevelInfo, "Logged in", &accountID, ip, nil)

	WriteSuccess(w, toAccountView(account), nil)
}

// recordLoginFailure feeds the lockout tracker and audits the attempt.
func (h *Handler) recordLoginFailure(ctx context.Context, email, ip string) {
	if h.protection == nil {
		return
	}
	locked, lockDuration := h.protection.RecordFailedAttempt(email)
	if locked {
		slog.Warn("account locked after repeated login failures", "ip", ip, "lock_duration", lockDuration)
		_ = h.audit.LogAuth(ctx, model.AuditLevelWarning, "Account locked after repeated login failures",
			nil, ip, map[string]any{"lock_seconds": int(lockDuration.Seconds())})
		return
	}
	_ = h.audit.LogAuth(ctx, model.AuditLevelWarning, "Failed login attempt", nil, ip, nil)
}

// Logout handles POST /api/logout. Logging out while anonymous succeeds.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountIDPtr(r)

	if err := session.LogOut(r.Context(), h.sessions); err != nil {
		slog.Error("logout failed", "error", err)
		WriteInternalError(w, "Logout failed")
		return
	}

	if accountID != nil {
		_ = h.audit.LogAuth(r.Context(), model.AuditLevelInfo, "Logged out", accountID, clientIP(r), nil)
	}

	WriteSuccess(w, map[string]string{"status": "logged_out"}, nil)
}

// Me handles GET /api/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r)
	if account == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}
	WriteSuccess(w, toAccountView(*account), nil)
}
