// Package service provides business logic above the store layer: the audit
// trail and media storage.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"podia/internal/model"
	"podia/internal/store"
)

// AuditService records security-relevant actions in the audit_log table.
type AuditService struct {
	queries *store.Queries
}

// NewAuditService creates a new AuditService.
func NewAuditService(db *sql.DB) *AuditService {
	return &AuditService{
		queries: store.New(db),
	}
}

// Log creates a new audit entry.
func (s *AuditService) Log(ctx context.Context, level, category, message string, accountID *int64, ipAddress string, metadata map[string]any) error {
	var nullAccountID sql.NullInt64
	if accountID != nil {
		nullAccountID = sql.NullInt64{Int64: *accountID, Valid: true}
	}

	metadataJSON := "{}"
	if metadata != nil {
		if jsonBytes, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(jsonBytes)
		}
	}

	_, err := s.queries.CreateAuditEntry(ctx, store.CreateAuditEntryParams{
		Level:     level,
		Category:  category,
		Message:   message,
		AccountID: nullAccountID,
		IPAddress: ipAddress,
		Metadata:  metadataJSON,
		CreatedAt: time.Now(),
	})
	if err != nil {
		slog.Error("failed to write audit entry", "error", err, "category", category)
		return err
	}
	return nil
}

// LogAuth records an authentication event such as login, logout, or a
// rejected attempt.
func (s *AuditService) LogAuth(ctx context.Context, level, message string, accountID *int64, ipAddress string, metadata map[string]any) error {
	return s.Log(ctx, level, model.AuditCategoryAuth, message, accountID, ipAddress, metadata)
}

// LogAccount records an account lifecycle event such as registration.
func (s *AuditService) LogAccount(ctx context.Context, level, message string, accountID *int64, ipAddress string, metadata map[string]any) error {
	return s.Log(ctx, level, model.AuditCategoryAccount, message, accountID, ipAddress, metadata)
}

// LogListing records an event listing change.
func (s *AuditService) LogListing(ctx context.Context, level, message string, accountID *int64, ipAddress string, metadata map[string]any) error {
	return s.Log(ctx, level, model.AuditCategoryListing, message, accountID, ipAddress, metadata)
}

// LogSystem records an application-level event.
func (s *AuditService) LogSystem(ctx context.Context, level, message string, accountID *int64, ipAddress string, metadata map[string]any) error {
	return s.Log(ctx, level, model.AuditCategorySystem, message, accountID, ipAddress, metadata)
}

// DeleteOld removes audit entries older than the specified duration.
func (s *AuditService) DeleteOld(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	return s.queries.DeleteOldAuditEntries(ctx, cutoff)
}
