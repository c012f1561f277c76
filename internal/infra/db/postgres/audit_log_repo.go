package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-news-editor/internal/domain"
	"telegram-news-editor/internal/domain/model"
	"telegram-news-editor/internal/domain/ports/repository"
)

var _ repository.AuditLogRepository = (*auditLogRepo)(nil)

const pgUniqueViolation = "23505"

type auditLogRepo struct {
	pool *pgxpool.Pool
}

func NewAuditLogRepo(pool *pgxpool.Pool) repository.AuditLogRepository {
	return &auditLogRepo{pool: pool}
}

func (r *auditLogRepo) Append(ctx context.Context, e *model.AuditEntry) error {
	if e == nil || e.ID == "" {
		return domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO news_audit_log (id, created_at, operator_id, news, response)
VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, q, e.ID, e.Timestamp.UTC(), e.OperatorID, e.Seed, e.PublishedText)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("%w: duplicate audit id %s", domain.ErrInvalidArgument, e.ID)
		}
		return err
	}
	return nil
}

func (r *auditLogRepo) ListAll(ctx context.Context) ([]*model.AuditEntry, error) {
	const q = `
SELECT id, created_at, operator_id, news, response
FROM news_audit_log
ORDER BY seq ASC`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.AuditEntry
	for rows.Next() {
		var e model.AuditEntry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.OperatorID, &e.Seed, &e.PublishedText); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
