// Package middleware provides HTTP middleware for authentication,
// authorization, and request context handling.
package middleware

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"podia/internal/model"
	"podia/internal/service"
	"podia/internal/session"
	"podia/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for request-scoped data.
const (
	ContextKeyAccount     ContextKey = "account"
	ContextKeyRequestPath ContextKey = "request_path"
)

// LoadAccount creates middleware that loads the session's account into the
// request context. A session pointing at a missing or deactivated account is
// destroyed and the request continues anonymously.
func LoadAccount(sm *scs.SessionManager, db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accountID, ok := session.AccountID(r.Context(), sm)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			account, err := queries.GetAccountByID(r.Context(), accountID)
			if err != nil || !account.Active {
				_ = sm.Destroy(r.Context())
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyAccount, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAccount retrieves the current account from the request context.
// Returns nil for anonymous requests.
func GetAccount(r *http.Request) *model.Account {
	account, ok := r.Context().Value(ContextKeyAccount).(model.Account)
	if !ok {
		return nil
	}
	return &account
}

// GetAccountID returns the current account's ID from context, or 0 if not
// found. Safe to use in logging where a zero-value is acceptable.
func GetAccountID(r *http.Request) int64 {
	if account := GetAccount(r); account != nil {
		return account.ID
	}
	return 0
}

// GetAccountIDPtr returns a pointer to the current account's ID, or nil for
// anonymous requests. Useful for optional account parameters in audit
// logging.
func GetAccountIDPtr(r *http.Request) *int64 {
	if account := GetAccount(r); account != nil {
		id := account.ID
		return &id
	}
	return nil
}

// RequireAccount creates middleware that rejects anonymous requests.
func RequireAccount() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetAccount(r) == nil {
				WriteJSONError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireManager creates middleware that only lets hosts and admins through.
// If auditService is provided, 403s are recorded in the audit log.
func RequireManager(auditService *service.AuditService) func(http.Handler) http.Handler {
	return requireCapability(auditService, func(a *model.Account) bool { return a.CanManageEvents() })
}

// RequireAdmin creates middleware that only lets admins through.
func RequireAdmin(auditService *service.AuditService) func(http.Handler) http.Handler {
	return requireCapability(auditService, func(a *model.Account) bool { return a.IsAdmin() })
}

func requireCapability(auditService *service.AuditService, allowed func(*model.Account) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			account := GetAccount(r)
			if account == nil {
				WriteJSONError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
				return
			}

			if !allowed(account) {
				slog.Warn("access denied",
					"status", http.StatusForbidden,
					"method", r.Method,
					"path", r.URL.Path,
					"account_id", account.ID,
					"role", account.Role,
					"remote_addr", r.RemoteAddr,
				)

				if auditService != nil {
					accountID := account.ID
					metadata := map[string]any{
						"method": r.Method,
						"path":   r.URL.Path,
						"status": http.StatusForbidden,
						"role":   account.Role,
					}
					_ = auditService.LogAuth(r.Context(), model.AuditLevelWarning,
						"Access denied: insufficient permissions", &accountID, r.RemoteAddr, metadata)
				}

				WriteJSONError(w, http.StatusForbidden, "forbidden", "Insufficient permissions", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequestPath creates middleware that stores the request path in the
// context. The logging handler includes it in audit entries for errors.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyRequestPath, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestPath retrieves the request path from the context.
func GetRequestPath(ctx context.Context) string {
	path, ok := ctx.Value(ContextKeyRequestPath).(string)
	if !ok {
		return ""
	}
	return path
}
