package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"podia/internal/auth"
	"podia/internal/model"
)

// Default admin credentials
const (
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "changeme1"
	DefaultAdminName     = "Administrator"
)

// HostsGroupName is the best-effort authorization group new hosts are added to.
const HostsGroupName = "Hosts"

// Seed creates initial data in the database: the admin account and the
// Hosts authorization group.
func Seed(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	if _, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO groups (name, created_at) VALUES (?, ?)`,
		HostsGroupName, time.Now()); err != nil {
		return fmt.Errorf("creating hosts group: %w", err)
	}

	// Check if the admin account already exists
	_, err := queries.GetAccountByEmail(ctx, DefaultAdminEmail)
	if err == nil {
		slog.Info("admin account already exists, skipping seed")
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("checking for admin account: %w", err)
	}

	passwordHash, err := auth.HashPassword(DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	account, err := queries.CreateAccount(ctx, CreateAccountParams{
		Email:        DefaultAdminEmail,
		PasswordHash: passwordHash,
		Name:         DefaultAdminName,
		Role:         model.RoleAdmin,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("creating admin account: %w", err)
	}

	slog.Info("created default admin account, change its password after first login",
		"id", account.ID,
		"email", account.Email,
	)

	return nil
}
