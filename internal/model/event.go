package model

import (
	"database/sql"
	"time"
)

// Event categories.
const (
	CategoryTour     = "tour"
	CategoryWorkshop = "workshop"
	CategoryTasting  = "tasting"
	CategoryConcert  = "concert"
	CategoryOutdoor  = "outdoor"
)

// ValidCategories contains all valid event categories.
var ValidCategories = []string{
	CategoryTour, CategoryWorkshop, CategoryTasting, CategoryConcert, CategoryOutdoor,
}

// IsValidCategory returns true if category is one of the fixed set.
func IsValidCategory(category string) bool {
	for _, c := range ValidCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Event represents a host's published listing. OwnerID, the guest set, and
// CreatedAt are assigned by the system at creation time and are immutable;
// client-supplied values for them are ignored.
type Event struct {
	ID          int64          `json:"id"`
	OwnerID     int64          `json:"owner_id"`
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Address     string         `json:"address"`
	MaxGuests   int64          `json:"max_guests"`
	PhotoRef    string         `json:"photo"`
	PriceCents  sql.NullInt64  `json:"-"`
	Duration    sql.NullString `json:"-"`
	ScheduledAt sql.NullTime   `json:"-"`
	Link1       sql.NullString `json:"-"`
	Link2       sql.NullString `json:"-"`
	CreatedAt   time.Time      `json:"created_at"`
}
