// Package logging provides a slog handler that mirrors records at WARN level
// and above into the database-backed audit log.
package logging

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"podia/internal/model"
	"podia/internal/store"
)

// AuditHandler is a slog.Handler that wraps another handler and also writes
// WARN and ERROR records to the audit_log table.
type AuditHandler struct {
	inner   slog.Handler
	queries *store.Queries
	level   slog.Level
}

// NewAuditHandler creates an AuditHandler that forwards to inner and mirrors
// records at WARN and above into the audit log.
func NewAuditHandler(inner slog.Handler, db *sql.DB) *AuditHandler {
	return &AuditHandler{
		inner:   inner,
		queries: store.New(db),
		level:   slog.LevelWarn,
	}
}

// Enabled implements slog.Handler.
func (h *AuditHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *AuditHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level >= h.level {
		h.writeAuditEntry(r)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *AuditHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AuditHandler{
		inner:   h.inner.WithAttrs(attrs),
		queries: h.queries,
		level:   h.level,
	}
}

// WithGroup implements slog.Handler.
func (h *AuditHandler) WithGroup(name string) slog.Handler {
	return &AuditHandler{
		inner:   h.inner.WithGroup(name),
		queries: h.queries,
		level:   h.level,
	}
}

// writeAuditEntry stores a log record in the audit log. A background context
// is used so the entry survives request cancellation.
func (h *AuditHandler) writeAuditEntry(r slog.Record) {
	_, _ = h.queries.CreateAuditEntry(context.Background(), store.CreateAuditEntryParams{
		Level:     auditLevel(r.Level),
		Category:  extractCategory(r),
		Message:   r.Message,
		AccountID: extractAccountID(r),
		Metadata:  extractMetadata(r),
		CreatedAt: r.Time,
	})
}

// auditLevel converts a slog.Level to an audit log level.
func auditLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.AuditLevelError
	case level >= slog.LevelWarn:
		return model.AuditLevelWarning
	default:
		return model.AuditLevelInfo
	}
}

// extractCategory reads an explicit "category" attribute, falling back to a
// guess from the message text.
func extractCategory(r slog.Record) string {
	var category string
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "category" {
			category = a.Value.String()
			return false
		}
		return true
	})
	if category != "" {
		return category
	}

	msg := strings.ToLower(r.Message)
	switch {
	case strings.Contains(msg, "login") || strings.Contains(msg, "logout") || strings.Contains(msg, "session") || strings.Contains(msg, "password"):
		return model.AuditCategoryAuth
	case strings.Contains(msg, "account") || strings.Contains(msg, "register"):
		return model.AuditCategoryAccount
	case strings.Contains(msg, "event") || strings.Contains(msg, "listing"):
		return model.AuditCategoryListing
	default:
		return model.AuditCategorySystem
	}
}

// extractAccountID reads an "account_id" attribute if present.
func extractAccountID(r slog.Record) sql.NullInt64 {
	var id sql.NullInt64
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "account_id" {
			if v, ok := a.Value.Any().(int64); ok {
				id = sql.NullInt64{Int64: v, Valid: true}
			}
			return false
		}
		return true
	})
	return id
}

// extractMetadata collects the remaining attributes into a JSON string.
func extractMetadata(r slog.Record) string {
	if r.NumAttrs() == 0 {
		return "{}"
	}

	var sb strings.Builder
	sb.WriteString("{")
	first := true

	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "category" || a.Key == "account_id" {
			return true
		}
		if !first {
			sb.WriteString(",")
		}
		first = false
		sb.WriteString(`"`)
		sb.WriteString(escapeJSON(a.Key))
		sb.WriteString(`":"`)
		sb.WriteString(escapeJSON(a.Value.String()))
		sb.WriteString(`"`)
		return true
	})

	sb.WriteString("}")
	return sb.String()
}

// escapeJSON escapes special characters in a string for JSON.
func escapeJSON(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
