// Package session configures the server-side session manager backed by the
// sessions table.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

const accountIDKey = "accountID"

// New creates a session manager backed by the SQLite sessions table.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = sqlite3store.New(db)

	sm.Lifetime = 24 * time.Hour
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev
	if !isDev {
		// The __Host- prefix pins the cookie to this host over HTTPS.
		sm.Cookie.Name = "__Host-session"
		sm.Cookie.Path = "/"
	}

	return sm
}

// LogIn rotates the session token and binds the session to the account.
// Renewing the token on privilege change prevents session fixation.
func LogIn(ctx context.Context, sm *scs.SessionManager, accountID int64) error {
	if err := sm.RenewToken(ctx); err != nil {
		return fmt.Errorf("renewing session token: %w", err)
	}
	sm.Put(ctx, accountIDKey, accountID)
	return nil
}

// LogOut destroys the session and its server-side state.
func LogOut(ctx context.Context, sm *scs.SessionManager) error {
	return sm.Destroy(ctx)
}

// AccountID returns the logged-in account ID, if any.
func AccountID(ctx context.Context, sm *scs.SessionManager) (int64, bool) {
	id, ok := sm.Get(ctx, accountIDKey).(int64)
	return id, ok && id > 0
}
