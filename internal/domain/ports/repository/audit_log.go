package repository

import (
	"context"

	"telegram-news-editor/internal/domain/model"
)

// -----------------------------
// Publish audit log
// -----------------------------

// AuditLogRepository is an append-only record of successful publishes.
type AuditLogRepository interface {
	Append(ctx context.Context, entry *model.AuditEntry) error
	// ListAll returns every row in append order.
	ListAll(ctx context.Context) ([]*model.AuditEntry, error)
}
