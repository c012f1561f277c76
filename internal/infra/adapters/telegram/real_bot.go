package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-news-editor/internal/application"
	"telegram-news-editor/internal/config"
	"telegram-news-editor/internal/domain/model"
	"telegram-news-editor/internal/domain/ports/adapter"
	"telegram-news-editor/internal/infra/logging"
	"telegram-news-editor/internal/infra/metrics"
	"telegram-news-editor/internal/infra/worker"
)

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// buttonsPerRow is the width of the inline keyboard under a reply.
const buttonsPerRow = 2

// RealTelegramBotAdapter polls updates and hands them to the EditorFacade.
// Updates of one chat are executed in order on the pool shard of that chat.
type RealTelegramBotAdapter struct {
	bot    botAPI
	cfg    *config.BotConfig
	facade *application.EditorFacade
	pool   *worker.Pool
	tr     application.Translator
	log    *zerolog.Logger
}

func NewRealTelegramBotAdapter(bot botAPI, cfg *config.BotConfig, facade *application.EditorFacade, pool *worker.Pool, tr application.Translator, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if bot == nil {
		return nil, errors.New("bot api is nil")
	}
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if facade == nil {
		return nil, errors.New("editor facade is nil")
	}
	if pool == nil {
		return nil, errors.New("worker pool is nil")
	}
	return &RealTelegramBotAdapter{
		bot:    bot,
		cfg:    cfg,
		facade: facade,
		pool:   pool,
		tr:     tr,
		log:    logger,
	}, nil
}

// SetMenuCommands publishes the command list shown in the Telegram client menu.
func (r *RealTelegramBotAdapter) SetMenuCommands(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cmds := make([]tgbotapi.BotCommand, 0, 5)
	for _, c := range []string{"help", "copy", "undo", "cancel", "logs"} {
		cmds = append(cmds, tgbotapi.BotCommand{Command: c, Description: r.tr.T("cmd_" + c)})
	}
	_, err := r.bot.Request(tgbotapi.NewSetMyCommands(cmds...))
	return err
}

// StartPolling blocks until ctx is cancelled or the update channel closes.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)
	defer r.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case up, ok := <-updates:
			if !ok {
				return nil
			}
			r.dispatch(ctx, up)
		}
	}
}

func (r *RealTelegramBotAdapter) dispatch(ctx context.Context, up tgbotapi.Update) {
	kind, chatID := classify(up)
	if kind == "" {
		return
	}
	metrics.IncTelegramUpdate(kind)

	err := r.pool.Submit(chatID, func(ctx context.Context) error {
		return r.handleUpdate(ctx, up)
	})
	if err == nil {
		return
	}
	if errors.Is(err, worker.ErrQueueFull) {
		metrics.IncDroppedUpdate()
	}
	r.log.Warn().Err(err).Int("update_id", up.UpdateID).Int64("chat_id", chatID).Msg("update dropped")
}

// classify names the update kind and the chat it belongs to. Unsupported updates get an empty kind.
func classify(up tgbotapi.Update) (string, int64) {
	switch {
	case up.CallbackQuery != nil && up.CallbackQuery.From != nil:
		return "callback", up.CallbackQuery.From.ID
	case up.Message != nil && up.Message.From != nil && up.Message.Chat != nil:
		if up.Message.IsCommand() {
			return "command", up.Message.Chat.ID
		}
		return "message", up.Message.Chat.ID
	default:
		return "", 0
	}
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, up tgbotapi.Update) error {
	ctx = logging.WithTraceID(ctx, uuid.NewString())

	if up.CallbackQuery != nil {
		return r.handleQuery(ctx, up.CallbackQuery)
	}

	msg := up.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return nil
	}
	ctx = logging.WithTgID(ctx, msg.From.ID)

	if msg.IsCommand() {
		return r.handleCommand(ctx, msg)
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	reply := r.facade.HandleText(ctx, msg.From.ID, text, mediaOf(msg))
	return r.render(ctx, msg.Chat.ID, reply)
}

// mediaOf picks the largest photo size or the video of a message.
func mediaOf(msg *tgbotapi.Message) *model.Media {
	switch {
	case len(msg.Photo) > 0:
		return &model.Media{Kind: model.MediaPhoto, FileID: msg.Photo[len(msg.Photo)-1].FileID}
	case msg.Video != nil:
		return &model.Media{Kind: model.MediaVideo, FileID: msg.Video.FileID}
	default:
		return nil
	}
}

// SendMessage sends plain text to a private chat.
func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, tgID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := r.bot.Send(tgbotapi.NewMessage(tgID, text))
	return err
}

// render delivers a facade reply. Drafts go out with the configured parse mode and are
// resent as plain text when Telegram rejects the markup.
func (r *RealTelegramBotAdapter) render(ctx context.Context, chatID int64, reply application.Reply) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if reply.Document != nil {
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: reply.Document.Name, Bytes: reply.Document.Data})
		doc.Caption = reply.Text
		_, err := r.bot.Send(doc)
		return err
	}

	if strings.TrimSpace(reply.Text) == "" {
		return nil
	}
	msg := tgbotapi.NewMessage(chatID, reply.Text)
	if kb := keyboard(r.actionRows(reply.Actions, reply.DraftSeq)); kb != nil {
		msg.ReplyMarkup = *kb
	}
	if !reply.Draft || r.cfg.ParseMode == "" {
		_, err := r.bot.Send(msg)
		return err
	}

	msg.ParseMode = r.cfg.ParseMode
	if _, err := r.bot.Send(msg); err != nil {
		logging.With(ctx, r.log).Warn().Err(err).Msg("draft rejected with parse mode, sending as plain text")
		msg.ParseMode = ""
		_, err = r.bot.Send(msg)
		return err
	}
	return nil
}

// inlineButton is a callback button: Data comes back in the callback query.
type inlineButton struct {
	Text string
	Data string
}

// actionRows lays the actions out as buttons tagged with the draft they belong to.
func (r *RealTelegramBotAdapter) actionRows(actions []model.Action, seq int) [][]inlineButton {
	var rows [][]inlineButton
	for i := 0; i < len(actions); i += buttonsPerRow {
		end := min(i+buttonsPerRow, len(actions))
		row := make([]inlineButton, 0, end-i)
		for _, a := range actions[i:end] {
			row = append(row, inlineButton{Text: r.tr.T("btn_" + string(a)), Data: a.Callback(seq)})
		}
		rows = append(rows, row)
	}
	return rows
}

func keyboard(rows [][]inlineButton) *tgbotapi.InlineKeyboardMarkup {
	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		kr := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := strings.TrimSpace(btn.Text)
			if label == "" {
				label = "•"
			}
			data := btn.Data
			if data == "" {
				data = label
			}
			kr = append(kr, tgbotapi.NewInlineKeyboardButtonData(label, data))
		}
		kbRows = append(kbRows, kr)
	}
	if len(kbRows) == 0 {
		return nil
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(kbRows...)
	return &kb
}
