//go:build !integration

package telegram

import (
	"context"
	"errors"
	"fmt"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-news-editor/internal/application"
	"telegram-news-editor/internal/config"
	"telegram-news-editor/internal/domain/model"
	"telegram-news-editor/internal/infra/worker"
	"telegram-news-editor/internal/usecase"
)

const owner int64 = 42

// fakeBot records everything sent through it.
type fakeBot struct {
	sent      []tgbotapi.Chattable
	requested []tgbotapi.Chattable
	// failParsed rejects messages that carry a parse mode.
	failParsed bool
	sendErr    error
	nextID     int
	// answeredAt holds len(sent) at each callback answer.
	answeredAt []int
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if b.sendErr != nil {
		return tgbotapi.Message{}, b.sendErr
	}
	if m, ok := c.(tgbotapi.MessageConfig); ok && b.failParsed && m.ParseMode != "" {
		return tgbotapi.Message{}, errors.New("Bad Request: can't parse entities")
	}
	b.sent = append(b.sent, c)
	b.nextID++
	return tgbotapi.Message{MessageID: b.nextID}, nil
}

func (b *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	b.requested = append(b.requested, c)
	if _, ok := c.(tgbotapi.CallbackConfig); ok {
		b.answeredAt = append(b.answeredAt, len(b.sent))
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (b *fakeBot) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (b *fakeBot) StopReceivingUpdates() {}

type keyTranslator struct{}

func (keyTranslator) T(key string, args ...interface{}) string {
	if len(args) == 0 {
		return key
	}
	return key + ":" + fmt.Sprint(args...)
}

type stubGateway struct{ reply string }

func (g stubGateway) Generate(ctx context.Context, prompt string) (string, error) {
	return g.reply, nil
}

type memAudit struct{ rows []*model.AuditEntry }

func (m *memAudit) Append(ctx context.Context, e *model.AuditEntry) error {
	m.rows = append(m.rows, e)
	return nil
}

func (m *memAudit) ListAll(ctx context.Context) ([]*model.AuditEntry, error) { return m.rows, nil }

type botFixture struct {
	adapter *RealTelegramBotAdapter
	bot     *fakeBot
	channel *fakeBot
}

func newBotFixture(t *testing.T) *botFixture {
	t.Helper()
	logger := zerolog.Nop()
	fx := &botFixture{bot: &fakeBot{}, channel: &fakeBot{}}

	publisher, err := NewChannelPublisher(fx.channel, "@news", "Markdown")
	if err != nil {
		t.Fatal(err)
	}
	audit := &memAudit{}
	editor := usecase.NewEditorUseCase(usecase.NewSessionRegistry(), stubGateway{reply: "Налог повышен.\nМой комментарий:\nЭто плохо."},
		publisher, audit, nil, nil, usecase.EditorOptions{}, &logger)
	facade := application.NewEditorFacade(editor, usecase.NewAuditUseCase(audit, &logger), keyTranslator{}, owner, &logger)

	cfg := &config.BotConfig{ParseMode: "Markdown"}
	fx.adapter, err = NewRealTelegramBotAdapter(fx.bot, cfg, facade, worker.NewPool(1, 1, &logger), keyTranslator{}, &logger)
	if err != nil {
		t.Fatal(err)
	}
	return fx
}

func textUpdate(from int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: from},
		Chat:      &tgbotapi.Chat{ID: from},
		Text:      text,
	}}
}

func commandUpdate(from int64, cmd string) tgbotapi.Update {
	up := textUpdate(from, "/"+cmd)
	up.Message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd) + 1}}
	return up
}

func callbackUpdate(from int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: from},
		Message: &tgbotapi.Message{MessageID: 77, Chat: &tgbotapi.Chat{ID: from}},
		Data:    data,
	}}
}

func lastMessage(t *testing.T, b *fakeBot) tgbotapi.MessageConfig {
	t.Helper()
	if len(b.sent) == 0 {
		t.Fatal("nothing sent")
	}
	m, ok := b.sent[len(b.sent)-1].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("last sent is %T", b.sent[len(b.sent)-1])
	}
	return m
}

func buttonData(m tgbotapi.MessageConfig) []string {
	kb, ok := m.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok {
		return nil
	}
	var out []string
	for _, row := range kb.InlineKeyboard {
		for _, b := range row {
			if b.CallbackData != nil {
				out = append(out, *b.CallbackData)
			}
		}
	}
	return out
}

func TestBot_SeedThenPublish(t *testing.T) {
	fx := newBotFixture(t)
	ctx := context.Background()

	if err := fx.adapter.handleUpdate(ctx, textUpdate(owner, "Правительство повысило налог на прибыль")); err != nil {
		t.Fatal(err)
	}
	draft := lastMessage(t, fx.bot)
	if draft.ParseMode != "Markdown" {
		t.Fatalf("parse mode = %q", draft.ParseMode)
	}
	if got := buttonData(draft); len(got) != 2 || got[0] != "publish:1" || got[1] != "revise:1" {
		t.Fatalf("buttons = %v", got)
	}

	if err := fx.adapter.handleUpdate(ctx, callbackUpdate(owner, "publish:1")); err != nil {
		t.Fatal(err)
	}
	if len(fx.channel.sent) != 1 {
		t.Fatalf("channel sends = %d", len(fx.channel.sent))
	}
	if got := lastMessage(t, fx.bot).Text; got != "published" {
		t.Fatalf("reply = %q", got)
	}

	var removed, answered bool
	for _, c := range fx.bot.requested {
		switch v := c.(type) {
		case tgbotapi.EditMessageReplyMarkupConfig:
			removed = v.MessageID == 77 && v.ReplyMarkup != nil && len(v.ReplyMarkup.InlineKeyboard) == 0
		case tgbotapi.CallbackConfig:
			answered = v.CallbackQueryID == "cb"
		}
	}
	if !removed || !answered {
		t.Fatalf("removed=%v answered=%v", removed, answered)
	}
}

func TestBot_ReviseOffersStyles(t *testing.T) {
	fx := newBotFixture(t)
	ctx := context.Background()
	_ = fx.adapter.handleUpdate(ctx, textUpdate(owner, "Правительство повысило налог на прибыль"))

	if err := fx.adapter.handleUpdate(ctx, callbackUpdate(owner, "revise:1")); err != nil {
		t.Fatal(err)
	}
	m := lastMessage(t, fx.bot)
	want := []string{"style_strict:1", "style_ironic:1", "style_short:1", "style_emotional:1", "custom:1"}
	got := buttonData(m)
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("buttons = %v", got)
	}
	kb := m.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if len(kb.InlineKeyboard) != 3 {
		t.Fatalf("rows = %d", len(kb.InlineKeyboard))
	}
}

func TestBot_AnswersCallbackBeforeGenerating(t *testing.T) {
	fx := newBotFixture(t)
	ctx := context.Background()
	_ = fx.adapter.handleUpdate(ctx, textUpdate(owner, "Правительство повысило налог на прибыль"))
	_ = fx.adapter.handleUpdate(ctx, callbackUpdate(owner, "revise:1"))

	before := len(fx.bot.sent)
	fx.bot.requested = nil
	fx.bot.answeredAt = nil
	if err := fx.adapter.handleUpdate(ctx, callbackUpdate(owner, "style_short:1")); err != nil {
		t.Fatal(err)
	}
	if len(fx.bot.requested) == 0 {
		t.Fatal("callback not answered")
	}
	if _, ok := fx.bot.requested[0].(tgbotapi.CallbackConfig); !ok {
		t.Fatalf("first request is %T", fx.bot.requested[0])
	}
	if len(fx.bot.answeredAt) != 1 || fx.bot.answeredAt[0] != before {
		t.Fatalf("answered after %v sends, want %d", fx.bot.answeredAt, before)
	}
	if got := buttonData(lastMessage(t, fx.bot)); len(got) != 2 || got[0] != "publish:2" {
		t.Fatalf("new draft buttons = %v", got)
	}
}

func TestBot_OldDraftButtonsAreStale(t *testing.T) {
	fx := newBotFixture(t)
	ctx := context.Background()
	_ = fx.adapter.handleUpdate(ctx, textUpdate(owner, "Правительство повысило налог на прибыль"))
	_ = fx.adapter.handleUpdate(ctx, textUpdate(owner, "Центробанк снизил ключевую ставку"))

	if err := fx.adapter.handleUpdate(ctx, callbackUpdate(owner, "publish:1")); err != nil {
		t.Fatal(err)
	}
	if got := lastMessage(t, fx.bot).Text; got != "error_stale_draft" {
		t.Fatalf("reply = %q", got)
	}
	if len(fx.channel.sent) != 0 {
		t.Fatal("a stale button must not publish")
	}

	if err := fx.adapter.handleUpdate(ctx, callbackUpdate(owner, "publish:2")); err != nil {
		t.Fatal(err)
	}
	if len(fx.channel.sent) != 1 || lastMessage(t, fx.bot).Text != "published" {
		t.Fatalf("channel sends = %d, reply = %q", len(fx.channel.sent), lastMessage(t, fx.bot).Text)
	}
}

func TestBot_DraftFallsBackToPlainText(t *testing.T) {
	fx := newBotFixture(t)
	fx.bot.failParsed = true

	if err := fx.adapter.handleUpdate(context.Background(), textUpdate(owner, "Правительство повысило налог на прибыль")); err != nil {
		t.Fatal(err)
	}
	if m := lastMessage(t, fx.bot); m.ParseMode != "" || m.Text == "" {
		t.Fatalf("fallback message = %+v", m)
	}
}

func TestBot_Commands(t *testing.T) {
	fx := newBotFixture(t)
	ctx := context.Background()

	cases := []struct {
		cmd  string
		want string
	}{
		{"start", "welcome_message"},
		{"help", "help_message"},
		{"copy", "copy_mode_on"},
		{"cancel", "cancelled"},
		{"undo", "error_nothing_to_undo"},
		{"logs", "logs_empty"},
		{"unknown", "help_message"},
	}
	for _, tc := range cases {
		t.Run(tc.cmd, func(t *testing.T) {
			if err := fx.adapter.handleUpdate(ctx, commandUpdate(owner, tc.cmd)); err != nil {
				t.Fatal(err)
			}
			if got := lastMessage(t, fx.bot).Text; got != tc.want {
				t.Fatalf("reply = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestBot_LogsSendsDocument(t *testing.T) {
	fx := newBotFixture(t)
	ctx := context.Background()
	_ = fx.adapter.handleUpdate(ctx, textUpdate(owner, "Правительство повысило налог на прибыль"))
	_ = fx.adapter.handleUpdate(ctx, callbackUpdate(owner, "publish"))

	if err := fx.adapter.handleUpdate(ctx, commandUpdate(owner, "logs")); err != nil {
		t.Fatal(err)
	}
	doc, ok := fx.bot.sent[len(fx.bot.sent)-1].(tgbotapi.DocumentConfig)
	if !ok {
		t.Fatalf("last sent is %T", fx.bot.sent[len(fx.bot.sent)-1])
	}
	fb, ok := doc.File.(tgbotapi.FileBytes)
	if !ok || fb.Name != application.AuditFileName || len(fb.Bytes) == 0 {
		t.Fatalf("document = %+v", doc.File)
	}
}

func TestBot_StrangerIsRefused(t *testing.T) {
	fx := newBotFixture(t)
	if err := fx.adapter.handleUpdate(context.Background(), textUpdate(5, "Правительство повысило налог на прибыль")); err != nil {
		t.Fatal(err)
	}
	if got := lastMessage(t, fx.bot).Text; got != "error_unauthorized" {
		t.Fatalf("reply = %q", got)
	}
}

func TestMediaOf(t *testing.T) {
	photo := &tgbotapi.Message{Photo: []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large"}}}
	if m := mediaOf(photo); m == nil || m.Kind != model.MediaPhoto || m.FileID != "large" {
		t.Fatalf("photo media = %+v", m)
	}
	video := &tgbotapi.Message{Video: &tgbotapi.Video{FileID: "v1"}}
	if m := mediaOf(video); m == nil || m.Kind != model.MediaVideo || m.FileID != "v1" {
		t.Fatalf("video media = %+v", m)
	}
	if m := mediaOf(&tgbotapi.Message{Text: "x"}); m != nil {
		t.Fatalf("text media = %+v", m)
	}
}

func TestDispatch_DropsWhenQueueFull(t *testing.T) {
	fx := newBotFixture(t)
	// pool is never started, so the single slot fills up
	fx.adapter.dispatch(context.Background(), textUpdate(owner, "one"))
	fx.adapter.dispatch(context.Background(), textUpdate(owner, "two"))
	if len(fx.bot.sent) != 0 {
		t.Fatal("nothing should run before the pool starts")
	}
	if err := fx.adapter.pool.Submit(owner, func(context.Context) error { return nil }); !errors.Is(err, worker.ErrQueueFull) {
		t.Fatalf("err = %v", err)
	}
}
