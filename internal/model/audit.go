package model

import (
	"database/sql"
	"time"
)

// Audit entry levels.
const (
	AuditLevelInfo    = "info"
	AuditLevelWarning = "warning"
	AuditLevelError   = "error"
)

// Audit entry categories.
const (
	AuditCategoryAuth    = "auth"
	AuditCategoryAccount = "account"
	AuditCategoryListing = "listing"
	AuditCategorySystem  = "system"
)

// AuditEntry represents an audit log record.
type AuditEntry struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	AccountID sql.NullInt64
	IPAddress string
	Metadata  string // JSON string
	CreatedAt time.Time
}
