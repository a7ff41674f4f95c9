// Package testutil provides shared helpers for package tests: an in-memory
// database with the application schema and factories for common fixtures.
package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"podia/internal/auth"
	"podia/internal/model"
	"podia/internal/store"
)

// TestPassword is the plaintext password of every account created by
// CreateAccount.
const TestPassword = "abc12345"

// schema mirrors the goose migrations for in-memory test databases.
const schema = `
	CREATE TABLE accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'guest',
		phone TEXT NOT NULL DEFAULT '',
		avatar_ref TEXT NOT NULL DEFAULT '',
		contacts TEXT NOT NULL DEFAULT '',
		instagram TEXT NOT NULL DEFAULT '',
		facebook TEXT NOT NULL DEFAULT '',
		about TEXT NOT NULL DEFAULT '',
		location_lng REAL,
		location_lat REAL,
		active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		last_login_at DATETIME
	);
	CREATE INDEX idx_accounts_email ON accounts(email);

	CREATE TABLE groups (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE account_groups (
		account_id INTEGER NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		group_id INTEGER NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		PRIMARY KEY (account_id, group_id)
	);

	CREATE TABLE events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_id INTEGER NOT NULL REFERENCES accounts(id),
		title TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL,
		address TEXT NOT NULL,
		max_guests INTEGER NOT NULL,
		photo_ref TEXT NOT NULL,
		price_cents INTEGER,
		duration TEXT,
		scheduled_at DATETIME,
		link1 TEXT,
		link2 TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX idx_events_owner_id ON events(owner_id);

	CREATE TABLE event_guests (
		event_id INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		account_id INTEGER NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (event_id, account_id)
	);

	CREATE TABLE audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		level TEXT NOT NULL DEFAULT 'info',
		category TEXT NOT NULL DEFAULT 'system',
		message TEXT NOT NULL,
		account_id INTEGER REFERENCES accounts(id) ON DELETE SET NULL,
		ip_address TEXT NOT NULL DEFAULT '',
		metadata TEXT NOT NULL DEFAULT '{}',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX idx_sessions_expiry ON sessions(expiry);
`

// NewDB creates an in-memory SQLite database with the application schema.
func NewDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create test schema: %v", err)
	}

	return db
}

// AccountSpec describes a test account. Zero fields get usable defaults.
type AccountSpec struct {
	Email    string
	Name     string
	Role     string
	Inactive bool
}

// CreateAccount inserts a test account with a fixed password hash.
func CreateAccount(t *testing.T, db *sql.DB, spec AccountSpec) model.Account {
	t.Helper()

	if spec.Email == "" {
		spec.Email = "test@example.com"
	}
	if spec.Name == "" {
		spec.Name = "Test Account"
	}
	if spec.Role == "" {
		spec.Role = model.RoleGuest
	}

	hash, err := auth.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("failed to hash test password: %v", err)
	}

	account, err := store.New(db).CreateAccount(context.Background(), store.CreateAccountParams{
		Email:        spec.Email,
		PasswordHash: hash,
		Name:         spec.Name,
		Role:         spec.Role,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}

	if spec.Inactive {
		if _, err := db.Exec(`UPDATE accounts SET active = 0 WHERE id = ?`, account.ID); err != nil {
			t.Fatalf("failed to deactivate test account: %v", err)
		}
		account.Active = false
	}
	return account
}

// CreateEvent inserts a minimal valid test event owned by ownerID.
func CreateEvent(t *testing.T, db *sql.DB, ownerID int64, title, slug string) model.Event {
	t.Helper()

	event, err := store.New(db).CreateEvent(context.Background(), store.CreateEventParams{
		OwnerID:   ownerID,
		Title:     title,
		Slug:      slug,
		Category:  model.CategoryTour,
		Address:   "1 Rynok Square, Lviv",
		MaxGuests: 10,
		PhotoRef:  "photos/test.jpg",
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("failed to create test event: %v", err)
	}
	return event
}
