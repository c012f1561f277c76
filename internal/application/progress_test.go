//go:build !integration

package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"telegram-news-editor/internal/application"
	"telegram-news-editor/internal/domain/ports/adapter"
)

var _ adapter.TelegramBotAdapter = (*recordingBot)(nil)

type recordingBot struct {
	sent []string
	err  error
}

func (b *recordingBot) SendMessage(ctx context.Context, id int64, text string) error {
	b.sent = append(b.sent, text)
	return b.err
}

func TestProgressNotifier(t *testing.T) {
	logger := zerolog.Nop()
	bot := &recordingBot{}
	notify := application.ProgressNotifier(bot, echoTranslator{}, &logger)

	notify(context.Background(), owner, false)
	notify(context.Background(), owner, true)

	if len(bot.sent) != 2 || bot.sent[0] != "processing" || bot.sent[1] != "processing_revision" {
		t.Fatalf("sent = %v", bot.sent)
	}

	t.Run("send failure is swallowed", func(t *testing.T) {
		bot := &recordingBot{err: errors.New("blocked")}
		application.ProgressNotifier(bot, echoTranslator{}, &logger)(context.Background(), owner, false)
		if len(bot.sent) != 1 {
			t.Fatalf("sent = %v", bot.sent)
		}
	})
}
