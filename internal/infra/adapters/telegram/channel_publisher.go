package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-news-editor/internal/domain/model"
	"telegram-news-editor/internal/domain/ports/adapter"
)

var _ adapter.BroadcastChannel = (*ChannelPublisher)(nil)

// ChannelPublisher posts to a broadcast channel addressed either by numeric chat id
// or by @username.
type ChannelPublisher struct {
	api       sender
	chatID    int64
	username  string
	parseMode string
}

func NewChannelPublisher(api sender, channelID, parseMode string) (*ChannelPublisher, error) {
	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		return nil, errors.New("channel id is empty")
	}
	p := &ChannelPublisher{api: api, parseMode: parseMode}
	if id, err := strconv.ParseInt(channelID, 10, 64); err == nil {
		p.chatID = id
	} else {
		if !strings.HasPrefix(channelID, "@") {
			channelID = "@" + channelID
		}
		p.username = channelID
	}
	return p, nil
}

// Publish sends text alone, or as the caption of the pending photo or video.
func (p *ChannelPublisher) Publish(ctx context.Context, text string, media *model.Media) (model.MessageHandle, error) {
	if err := ctx.Err(); err != nil {
		return model.MessageHandle{}, err
	}

	var c tgbotapi.Chattable
	switch {
	case media == nil:
		msg := tgbotapi.NewMessage(p.chatID, text)
		msg.ChannelUsername = p.username
		msg.ParseMode = p.parseMode
		c = msg
	case media.Kind == model.MediaPhoto:
		ph := tgbotapi.NewPhoto(p.chatID, tgbotapi.FileID(media.FileID))
		ph.ChannelUsername = p.username
		ph.Caption = text
		ph.ParseMode = p.parseMode
		c = ph
	case media.Kind == model.MediaVideo:
		v := tgbotapi.NewVideo(p.chatID, tgbotapi.FileID(media.FileID))
		v.ChannelUsername = p.username
		v.Caption = text
		v.ParseMode = p.parseMode
		c = v
	default:
		return model.MessageHandle{}, fmt.Errorf("unsupported media kind %q", media.Kind)
	}

	sent, err := p.api.Send(c)
	if err != nil {
		return model.MessageHandle{}, err
	}
	h := model.MessageHandle{ChatID: p.chatID, ChannelUsername: p.username, MessageID: sent.MessageID}
	if sent.Chat != nil && sent.Chat.ID != 0 {
		h.ChatID = sent.Chat.ID
	}
	return h, nil
}

func (p *ChannelPublisher) Retract(ctx context.Context, h model.MessageHandle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	del := tgbotapi.DeleteMessageConfig{ChatID: h.ChatID, MessageID: h.MessageID}
	if h.ChatID == 0 {
		del.ChannelUsername = h.ChannelUsername
	}
	_, err := p.api.Request(del)
	return err
}
