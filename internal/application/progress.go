package application

import (
	"context"

	"github.com/rs/zerolog"

	"telegram-news-editor/internal/domain/ports/adapter"
	"telegram-news-editor/internal/infra/logging"
)

// ProgressNotifier returns a hook that tells the operator a generation has started.
// A failed notification is logged and does not stop the generation.
func ProgressNotifier(bot adapter.TelegramBotAdapter, tr Translator, logger *zerolog.Logger) func(ctx context.Context, operatorID int64, revision bool) {
	return func(ctx context.Context, operatorID int64, revision bool) {
		key := "processing"
		if revision {
			key = "processing_revision"
		}
		if err := bot.SendMessage(ctx, operatorID, tr.T(key)); err != nil {
			logging.With(ctx, logger).Warn().Err(err).Msg("progress notification")
		}
	}
}
