package form

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"podia/internal/auth"
	"podia/internal/model"
	"podia/internal/store"
)

// ErrInvalidCredentials is the single failure every unsuccessful login
// resolves to. Unknown email, wrong password, and deactivated accounts are
// deliberately indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Login verifies the credentials and returns the matching active account.
func Login(ctx context.Context, db *sql.DB, email, password string) (model.Account, error) {
	queries := store.New(db)

	account, err := queries.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			slog.Debug("login attempt for unknown email")
			return model.Account{}, ErrInvalidCredentials
		}
		return model.Account{}, err
	}

	valid, err := auth.CheckPassword(password, account.PasswordHash)
	if err != nil {
		slog.Error("password check error", "error", err, "account_id", account.ID)
		return model.Account{}, ErrInvalidCredentials
	}
	if !valid {
		slog.Debug("invalid password attempt", "account_id", account.ID)
		return model.Account{}, ErrInvalidCredentials
	}

	if !account.Active {
		slog.Debug("login attempt on inactive account", "account_id", account.ID)
		return model.Account{}, ErrInvalidCredentials
	}

	return account, nil
}
