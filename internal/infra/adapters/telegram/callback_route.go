package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-news-editor/internal/infra/logging"
)

func (r *RealTelegramBotAdapter) handleQuery(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query == nil || query.From == nil {
		return errors.New("invalid callback query")
	}
	ctx = logging.WithTgID(ctx, query.From.ID)

	// stop the client spinner before a possibly slow generation
	if _, err := r.bot.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		logging.With(ctx, r.log).Debug().Err(err).Msg("answer callback")
	}

	chatID := query.From.ID
	if query.Message != nil && query.Message.Chat != nil {
		chatID = query.Message.Chat.ID
	}

	reply := r.facade.HandleAction(ctx, query.From.ID, strings.TrimSpace(query.Data))
	if reply.RemoveKeyboard && query.Message != nil {
		r.removeKeyboard(ctx, chatID, query.Message.MessageID)
	}
	return r.render(ctx, chatID, reply)
}

// removeKeyboard drops the buttons of an already handled message so it cannot be pressed twice.
func (r *RealTelegramBotAdapter) removeKeyboard(ctx context.Context, chatID int64, messageID int) {
	empty := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
	if _, err := r.bot.Request(tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, empty)); err != nil {
		logging.With(ctx, r.log).Debug().Err(err).Int("message_id", messageID).Msg("remove keyboard")
	}
}
