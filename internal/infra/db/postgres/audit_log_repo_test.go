//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"telegram-news-editor/internal/domain"
	"telegram-news-editor/internal/domain/model"
)

func TestAuditLogRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}
	ctx := context.Background()
	repo := NewAuditLogRepo(testPool)

	t.Run("should append and list in order", func(t *testing.T) {
		cleanup(t)
		base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		for i, news := range []string{"первая новость", "вторая новость", "третья новость"} {
			e := &model.AuditEntry{
				ID:            ulid.Make().String(),
				Timestamp:     base.Add(time.Duration(i) * time.Minute),
				OperatorID:    1001,
				Seed:          news,
				PublishedText: "**❗️" + news + "**",
			}
			if err := repo.Append(ctx, e); err != nil {
				t.Fatalf("Append #%d: %v", i, err)
			}
		}

		all, err := repo.ListAll(ctx)
		if err != nil {
			t.Fatalf("ListAll: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(all))
		}
		if all[0].Seed != "первая новость" || all[2].Seed != "третья новость" {
			t.Fatalf("rows out of order: %q .. %q", all[0].Seed, all[2].Seed)
		}
		if !all[1].Timestamp.Equal(base.Add(time.Minute)) || all[1].OperatorID != 1001 {
			t.Fatalf("unexpected row %+v", all[1])
		}
	})

	t.Run("should reject duplicate ids", func(t *testing.T) {
		cleanup(t)
		e := &model.AuditEntry{ID: ulid.Make().String(), Timestamp: time.Now(), OperatorID: 1, Seed: "s", PublishedText: "p"}
		if err := repo.Append(ctx, e); err != nil {
			t.Fatalf("Append: %v", err)
		}
		if err := repo.Append(ctx, e); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("should reject entries without id", func(t *testing.T) {
		if err := repo.Append(ctx, &model.AuditEntry{}); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
