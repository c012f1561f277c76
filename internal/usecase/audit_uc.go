package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"telegram-news-editor/internal/domain"
	"telegram-news-editor/internal/domain/model"
	"telegram-news-editor/internal/domain/ports/repository"
	"telegram-news-editor/internal/infra/logging"
)

// Compile-time check
var _ AuditUseCase = (*auditUC)(nil)

// AuditUseCase exposes the publish log to the operator and the admin API.
type AuditUseCase interface {
	List(ctx context.Context) ([]*model.AuditEntry, error)
	// ExportCSV renders the whole log with the fixed header; domain.ErrNotFound when empty.
	ExportCSV(ctx context.Context) ([]byte, error)
}

type auditUC struct {
	repo repository.AuditLogRepository
	loc  *time.Location
	log  *zerolog.Logger
}

func NewAuditUseCase(repo repository.AuditLogRepository, logger *zerolog.Logger) *auditUC {
	return &auditUC{repo: repo, loc: time.Local, log: logger}
}

func (a *auditUC) List(ctx context.Context) ([]*model.AuditEntry, error) {
	return a.repo.ListAll(ctx)
}

func (a *auditUC) ExportCSV(ctx context.Context) ([]byte, error) {
	defer logging.TraceDuration(a.log, "AuditUC.ExportCSV")()

	entries, err := a.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list audit log: %w", err)
	}
	if len(entries) == 0 {
		return nil, domain.ErrNotFound
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(model.AuditColumns); err != nil {
		return nil, err
	}
	for _, e := range entries {
		row := []string{
			e.Timestamp.In(a.loc).Format(model.AuditTimeLayout),
			strconv.FormatInt(e.OperatorID, 10),
			e.Seed,
			e.PublishedText,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	a.log.Debug().Int("rows", len(entries)).Msg("audit log exported")
	return buf.Bytes(), nil
}
