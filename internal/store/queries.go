package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"podia/internal/model"
)

// DBTX is the subset of database/sql methods the queries need, satisfied by
// both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries holds the database handle for query methods.
type Queries struct {
	db DBTX
}

// New creates a Queries instance bound to db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries instance bound to the given transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const accountColumns = `id, email, password_hash, name, role, phone, avatar_ref,
	contacts, instagram, facebook, about, location_lng, location_lat,
	active, created_at, last_login_at`

func scanAccount(row interface{ Scan(...any) error }) (model.Account, error) {
	var a model.Account
	err := row.Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.Name, &a.Role, &a.Phone, &a.AvatarRef,
		&a.Contacts, &a.Instagram, &a.Facebook, &a.About, &a.LocationLng, &a.LocationLat,
		&a.Active, &a.CreatedAt, &a.LastLoginAt,
	)
	return a, err
}

// CreateAccountParams holds the fields for CreateAccount.
type CreateAccountParams struct {
	Email        string
	PasswordHash string
	Name         string
	Role         string
	Phone        string
	AvatarRef    string
	Contacts     string
	Instagram    string
	Facebook     string
	About        string
	LocationLng  sql.NullFloat64
	LocationLat  sql.NullFloat64
	CreatedAt    time.Time
}

// CreateAccount inserts a new account. The email is lower-cased at this
// boundary so uniqueness is case-insensitive in practice. A unique constraint
// violation is reported as ErrDuplicateEmail.
func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) (model.Account, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO accounts (
			email, password_hash, name, role, phone, avatar_ref,
			contacts, instagram, facebook, about, location_lng, location_lat,
			active, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?)
		RETURNING `+accountColumns,
		strings.ToLower(arg.Email), arg.PasswordHash, arg.Name, arg.Role, arg.Phone, arg.AvatarRef,
		arg.Contacts, arg.Instagram, arg.Facebook, arg.About, arg.LocationLng, arg.LocationLat,
		arg.CreatedAt,
	)
	a, err := scanAccount(row)
	return a, mapAccountInsertErr(err)
}

// GetAccountByID fetches an account by ID.
func (q *Queries) GetAccountByID(ctx context.Context, id int64) (model.Account, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

// GetAccountByEmail fetches an account by its lower-cased email.
func (q *Queries) GetAccountByEmail(ctx context.Context, email string) (model.Account, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = ?`, strings.ToLower(email))
	return scanAccount(row)
}

// CountAccounts returns the total number of accounts.
func (q *Queries) CountAccounts(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n)
	return n, err
}

// UpdateAccountLastLoginParams holds the fields for UpdateAccountLastLogin.
type UpdateAccountLastLoginParams struct {
	LastLoginAt sql.NullTime
	ID          int64
}

// UpdateAccountLastLogin records the last successful login time.
func (q *Queries) UpdateAccountLastLogin(ctx context.Context, arg UpdateAccountLastLoginParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE accounts SET last_login_at = ? WHERE id = ?`, arg.LastLoginAt, arg.ID)
	return err
}

// UpdateAccountPasswordParams holds the fields for UpdateAccountPassword.
type UpdateAccountPasswordParams struct {
	PasswordHash string
	ID           int64
}

// UpdateAccountPassword replaces the stored password hash.
func (q *Queries) UpdateAccountPassword(ctx context.Context, arg UpdateAccountPasswordParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE accounts SET password_hash = ? WHERE id = ?`, arg.PasswordHash, arg.ID)
	return err
}

// GetGroupID fetches the ID of a named authorization group.
func (q *Queries) GetGroupID(ctx context.Context, name string) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, `SELECT id FROM groups WHERE name = ?`, name).Scan(&id)
	return id, err
}

// AddAccountToGroupParams holds the fields for AddAccountToGroup.
type AddAccountToGroupParams struct {
	AccountID int64
	GroupID   int64
}

// AddAccountToGroup adds an account to an authorization group. Repeated adds
// are no-ops.
func (q *Queries) AddAccountToGroup(ctx context.Context, arg AddAccountToGroupParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO account_groups (account_id, group_id) VALUES (?, ?)`,
		arg.AccountID, arg.GroupID)
	return err
}

const eventColumns = `id, owner_id, title, slug, description, category, address,
	max_guests, photo_ref, price_cents, duration, scheduled_at, link1, link2, created_at`

func scanEvent(row interface{ Scan(...any) error }) (model.Event, error) {
	var e model.Event
	err := row.Scan(
		&e.ID, &e.OwnerID, &e.Title, &e.Slug, &e.Description, &e.Category, &e.Address,
		&e.MaxGuests, &e.PhotoRef, &e.PriceCents, &e.Duration, &e.ScheduledAt,
		&e.Link1, &e.Link2, &e.CreatedAt,
	)
	return e, err
}

// CreateEventParams holds the fields for CreateEvent. OwnerID and CreatedAt
// come from the server, never from client input.
type CreateEventParams struct {
	OwnerID     int64
	Title       string
	Slug        string
	Description string
	Category    string
	Address     string
	MaxGuests   int64
	PhotoRef    string
	PriceCents  sql.NullInt64
	Duration    sql.NullString
	ScheduledAt sql.NullTime
	Link1       sql.NullString
	Link2       sql.NullString
	CreatedAt   time.Time
}

// CreateEvent inserts a new event listing.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (model.Event, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO events (
			owner_id, title, slug, description, category, address,
			max_guests, photo_ref, price_cents, duration, scheduled_at,
			link1, link2, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+eventColumns,
		arg.OwnerID, arg.Title, arg.Slug, arg.Description, arg.Category, arg.Address,
		arg.MaxGuests, arg.PhotoRef, arg.PriceCents, arg.Duration, arg.ScheduledAt,
		arg.Link1, arg.Link2, arg.CreatedAt,
	)
	return scanEvent(row)
}

// GetEventByID fetches an event by ID.
func (q *Queries) GetEventByID(ctx context.Context, id int64) (model.Event, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	return scanEvent(row)
}

// CountEventsBySlug returns the number of events using a slug.
func (q *Queries) CountEventsBySlug(ctx context.Context, slug string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE slug = ?`, slug).Scan(&n)
	return n, err
}

// ListEventsParams holds pagination for event listings.
type ListEventsParams struct {
	Limit  int64
	Offset int64
}

// ListEvents returns all events, newest first. Management callers must use
// ListEventsByOwner unless the acting account is an admin.
func (q *Queries) ListEvents(ctx context.Context, arg ListEventsParams) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

// ListEventsByOwnerParams holds the owner filter and pagination.
type ListEventsByOwnerParams struct {
	OwnerID int64
	Limit   int64
	Offset  int64
}

// ListEventsByOwner returns the events owned by a single account, newest first.
func (q *Queries) ListEventsByOwner(ctx context.Context, arg ListEventsByOwnerParams) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE owner_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		arg.OwnerID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

func collectEvents(rows *sql.Rows) ([]model.Event, error) {
	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountEvents returns the total number of events.
func (q *Queries) CountEvents(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n)
	return n, err
}

// CountEventsByOwner returns the number of events owned by an account.
func (q *Queries) CountEventsByOwner(ctx context.Context, ownerID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE owner_id = ?`, ownerID).Scan(&n)
	return n, err
}

// UpdateEventParams holds the mutable event fields. Owner, guest set, and
// creation time are deliberately absent.
type UpdateEventParams struct {
	Title       string
	Description string
	Category    string
	Address     string
	MaxGuests   int64
	PhotoRef    string
	PriceCents  sql.NullInt64
	Duration    sql.NullString
	ScheduledAt sql.NullTime
	Link1       sql.NullString
	Link2       sql.NullString
	ID          int64
}

// UpdateEvent updates the descriptive fields of an event.
func (q *Queries) UpdateEvent(ctx context.Context, arg UpdateEventParams) (model.Event, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE events SET
			title = ?, description = ?, category = ?, address = ?,
			max_guests = ?, photo_ref = ?, price_cents = ?, duration = ?,
			scheduled_at = ?, link1 = ?, link2 = ?
		WHERE id = ?
		RETURNING `+eventColumns,
		arg.Title, arg.Description, arg.Category, arg.Address,
		arg.MaxGuests, arg.PhotoRef, arg.PriceCents, arg.Duration,
		arg.ScheduledAt, arg.Link1, arg.Link2, arg.ID,
	)
	return scanEvent(row)
}

// DeleteEvent removes an event and, via cascade, its guest registrations.
func (q *Queries) DeleteEvent(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	return err
}

// AddEventGuestParams holds the fields for AddEventGuest.
type AddEventGuestParams struct {
	EventID   int64
	AccountID int64
	CreatedAt time.Time
}

// AddEventGuest registers an account as a guest of an event. The composite
// primary key keeps the set free of duplicates.
func (q *Queries) AddEventGuest(ctx context.Context, arg AddEventGuestParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO event_guests (event_id, account_id, created_at) VALUES (?, ?, ?)`,
		arg.EventID, arg.AccountID, arg.CreatedAt)
	return err
}

// RemoveEventGuestParams holds the fields for RemoveEventGuest.
type RemoveEventGuestParams struct {
	EventID   int64
	AccountID int64
}

// RemoveEventGuest removes an account from an event's guest set.
func (q *Queries) RemoveEventGuest(ctx context.Context, arg RemoveEventGuestParams) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM event_guests WHERE event_id = ? AND account_id = ?`,
		arg.EventID, arg.AccountID)
	return err
}

// CountEventGuests returns the number of registered guests for an event.
func (q *Queries) CountEventGuests(ctx context.Context, eventID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM event_guests WHERE event_id = ?`, eventID).Scan(&n)
	return n, err
}

// ListEventGuests returns the accounts registered as guests of an event.
func (q *Queries) ListEventGuests(ctx context.Context, eventID int64) ([]model.Account, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT a.id, a.email, a.password_hash, a.name, a.role, a.phone, a.avatar_ref,
			a.contacts, a.instagram, a.facebook, a.about, a.location_lng, a.location_lat,
			a.active, a.created_at, a.last_login_at
		FROM accounts a
		JOIN event_guests eg ON eg.account_id = a.id
		WHERE eg.event_id = ?
		ORDER BY eg.created_at`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// CreateAuditEntryParams holds the fields for CreateAuditEntry.
type CreateAuditEntryParams struct {
	Level     string
	Category  string
	Message   string
	AccountID sql.NullInt64
	IPAddress string
	Metadata  string
	CreatedAt time.Time
}

// CreateAuditEntry inserts an audit log record.
func (q *Queries) CreateAuditEntry(ctx context.Context, arg CreateAuditEntryParams) (model.AuditEntry, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO audit_log (level, category, message, account_id, ip_address, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id, level, category, message, account_id, ip_address, metadata, created_at`,
		arg.Level, arg.Category, arg.Message, arg.AccountID, arg.IPAddress, arg.Metadata, arg.CreatedAt,
	)
	var e model.AuditEntry
	err := row.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.AccountID, &e.IPAddress, &e.Metadata, &e.CreatedAt)
	return e, err
}

// DeleteOldAuditEntries removes audit entries created before the cutoff.
func (q *Queries) DeleteOldAuditEntries(ctx context.Context, cutoff time.Time) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM audit_log WHERE created_at < ?`, cutoff)
	return err
}

// CountAuditEntries returns the total number of audit entries.
func (q *Queries) CountAuditEntries(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_log`).Scan(&n)
	return n, err
}
