package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-news-editor/internal/application"
)

type commandHandler func(ctx context.Context, operatorID int64) application.Reply

func (r *RealTelegramBotAdapter) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"start":  r.facade.HandleStart,
		"help":   r.facade.HandleHelp,
		"copy":   r.facade.HandleCopy,
		"undo":   r.facade.HandleUndo,
		"cancel": r.facade.HandleCancel,
		"logs":   r.facade.HandleLogs,
	}
}

// handleCommand runs a slash command. Unknown commands get the help text.
func (r *RealTelegramBotAdapter) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	h, ok := r.commandRoutes()[msg.Command()]
	if !ok {
		h = r.facade.HandleHelp
	}
	return r.render(ctx, msg.Chat.ID, h(ctx, msg.From.ID))
}
