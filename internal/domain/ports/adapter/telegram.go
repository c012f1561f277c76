// File: internal/domain/ports/adapter/telegram.go
package adapter

import (
	"context"

	"telegram-news-editor/internal/domain/model"
)

// TelegramBotAdapter sends messages to the operator's private chat.
type TelegramBotAdapter interface {
	SendMessage(ctx context.Context, telegramID int64, text string) error
}

// BroadcastChannel publishes approved posts and retracts them by handle.
type BroadcastChannel interface {
	Publish(ctx context.Context, text string, media *model.Media) (model.MessageHandle, error)
	Retract(ctx context.Context, handle model.MessageHandle) error
}
