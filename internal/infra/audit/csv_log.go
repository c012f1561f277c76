// Package audit keeps the publish log in a CSV file when no database is configured.
package audit

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"telegram-news-editor/internal/domain"
	"telegram-news-editor/internal/domain/model"
	"telegram-news-editor/internal/domain/ports/repository"
)

var _ repository.AuditLogRepository = (*CSVLog)(nil)

// CSVLog appends rows to a CSV file with the columns timestamp,user_id,news,response.
// The header is written when the file is created.
type CSVLog struct {
	mu   sync.Mutex
	path string
	loc  *time.Location
}

func NewCSVLog(path string) *CSVLog {
	return &CSVLog{path: path, loc: time.Local}
}

func (l *CSVLog) Append(ctx context.Context, e *model.AuditEntry) error {
	if e == nil {
		return domain.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat audit log: %w", err)
	}

	w := csv.NewWriter(f)
	if st.Size() == 0 {
		if err := w.Write(model.AuditColumns); err != nil {
			return err
		}
	}
	row := []string{
		e.Timestamp.In(l.loc).Format(model.AuditTimeLayout),
		strconv.FormatInt(e.OperatorID, 10),
		e.Seed,
		e.PublishedText,
	}
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Sync()
}

// ListAll reads the file back; a missing file is an empty log.
func (l *CSVLog) ListAll(ctx context.Context) ([]*model.AuditEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(model.AuditColumns)

	var out []*model.AuditEntry
	for line := 0; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrReadDatabaseRow, err)
		}
		if line == 0 && rec[0] == model.AuditColumns[0] {
			continue
		}
		ts, err := time.ParseInLocation(model.AuditTimeLayout, rec[0], l.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", domain.ErrReadDatabaseRow, line+1, err)
		}
		opID, err := strconv.ParseInt(rec[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", domain.ErrReadDatabaseRow, line+1, err)
		}
		out = append(out, &model.AuditEntry{
			ID:            strconv.Itoa(line),
			Timestamp:     ts,
			OperatorID:    opID,
			Seed:          rec[2],
			PublishedText: rec[3],
		})
	}
	return out, nil
}
