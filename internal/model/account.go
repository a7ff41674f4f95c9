// Package model defines the domain entities shared across the application:
// accounts, event listings, and audit log entries.
package model

import (
	"database/sql"
	"time"

	"podia/internal/geo"
)

// Account roles. A role is assigned once, at registration time: the guest
// path creates RoleGuest accounts, the host path creates RoleHost accounts.
// There is no in-place upgrade.
const (
	RoleGuest = "guest"
	RoleHost  = "host"
	RoleAdmin = "admin"
)

// ValidRoles contains all valid account roles.
var ValidRoles = []string{RoleGuest, RoleHost, RoleAdmin}

// Account represents a registered user of the marketplace.
type Account struct {
	ID           int64           `json:"id"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"` // Never expose in JSON
	Name         string          `json:"name"`
	Role         string          `json:"role"`
	Phone        string          `json:"phone,omitempty"`
	AvatarRef    string          `json:"avatar,omitempty"`
	Contacts     string          `json:"contacts,omitempty"`
	Instagram    string          `json:"instagram,omitempty"`
	Facebook     string          `json:"facebook,omitempty"`
	About        string          `json:"about,omitempty"`
	LocationLng  sql.NullFloat64 `json:"-"`
	LocationLat  sql.NullFloat64 `json:"-"`
	Active       bool            `json:"active"`
	CreatedAt    time.Time       `json:"created_at"`
	LastLoginAt  sql.NullTime    `json:"last_login_at,omitempty"`
}

// IsAdmin returns true if the account has the admin role.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsHost returns true if the account has the host role.
func (a *Account) IsHost() bool {
	return a.Role == RoleHost
}

// CanManageEvents returns true if the account may create and manage event
// listings. Capability follows from the role, not from separate flags.
func (a *Account) CanManageEvents() bool {
	return a.Role == RoleHost || a.Role == RoleAdmin
}

// Location returns the account's geocoded location, if one was recorded.
func (a *Account) Location() (geo.Point, bool) {
	if !a.LocationLng.Valid || !a.LocationLat.Valid {
		return geo.Point{}, false
	}
	return geo.Point{Lng: a.LocationLng.Float64, Lat: a.LocationLat.Float64}, true
}

// SetLocation records the account's geocoded location.
func (a *Account) SetLocation(p geo.Point) {
	a.LocationLng = sql.NullFloat64{Float64: p.Lng, Valid: true}
	a.LocationLat = sql.NullFloat64{Float64: p.Lat, Valid: true}
}
