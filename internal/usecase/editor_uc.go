package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"telegram-news-editor/internal/domain"
	"telegram-news-editor/internal/domain/model"
	"telegram-news-editor/internal/domain/ports/adapter"
	"telegram-news-editor/internal/domain/ports/repository"
	"telegram-news-editor/internal/domain/post"
	"telegram-news-editor/internal/infra/logging"
	"telegram-news-editor/internal/infra/metrics"
)

// Compile-time check
var _ EditorUseCase = (*editorUC)(nil)

// EditorUseCase drives one operator's draft from seed to published post.
// Every method returns the session as it stands after the call; on error the session is unchanged.
type EditorUseCase interface {
	SubmitSeed(ctx context.Context, operatorID int64, text string, media *model.Media) (model.Session, error)
	RequestRevision(ctx context.Context, operatorID int64) (model.Session, error)
	ChooseStyle(ctx context.Context, operatorID int64, style model.Style) (model.Session, error)
	RequestCustomRevision(ctx context.Context, operatorID int64) (model.Session, error)
	SubmitRevisionText(ctx context.Context, operatorID int64, text string) (model.Session, error)
	EnterCopyMode(ctx context.Context, operatorID int64) (model.Session, error)
	Publish(ctx context.Context, operatorID int64) (*PublishResult, error)
	Undo(ctx context.Context, operatorID int64) error
	Reset(ctx context.Context, operatorID int64) model.Session
	Snapshot(operatorID int64) (model.Session, bool)
}

// PublishResult describes a successful publish. AuditErr is set when the broadcast
// went out but the audit row could not be written.
type PublishResult struct {
	Handle   model.MessageHandle
	Text     string
	AuditErr error
}

type EditorOptions struct {
	MinSeedLength int
	MaxSeedLength int
	CopyPrefixes  []string
	LockTTL       time.Duration
	// BeforeGenerate, when set, runs after input validation and right before the generation call.
	BeforeGenerate func(ctx context.Context, operatorID int64, revision bool)
}

var DefaultCopyPrefixes = []string{"сделай пост", "make a post"}

func (o EditorOptions) withDefaults() EditorOptions {
	if o.MinSeedLength <= 0 {
		o.MinSeedLength = 10
	}
	if o.MaxSeedLength <= 0 {
		o.MaxSeedLength = 4000
	}
	if o.CopyPrefixes == nil {
		o.CopyPrefixes = DefaultCopyPrefixes
	}
	if o.LockTTL <= 0 {
		o.LockTTL = 2 * time.Minute
	}
	return o
}

type editorUC struct {
	sessions  *SessionRegistry
	ai        adapter.GenerationGateway
	channel   adapter.BroadcastChannel
	audit     repository.AuditLogRepository
	formatter *post.Formatter
	locker    repository.Locker // optional
	opts      EditorOptions
	log       *zerolog.Logger
	now       func() time.Time
}

func NewEditorUseCase(
	sessions *SessionRegistry,
	ai adapter.GenerationGateway,
	channel adapter.BroadcastChannel,
	audit repository.AuditLogRepository,
	formatter *post.Formatter,
	locker repository.Locker,
	opts EditorOptions,
	logger *zerolog.Logger,
) *editorUC {
	if formatter == nil {
		formatter = post.NewFormatter(post.DefaultCommentaryLabels)
	}
	return &editorUC{
		sessions:  sessions,
		ai:        ai,
		channel:   channel,
		audit:     audit,
		formatter: formatter,
		locker:    locker,
		opts:      opts.withDefaults(),
		log:       logger,
		now:       time.Now,
	}
}

func (e *editorUC) SubmitSeed(ctx context.Context, operatorID int64, text string, media *model.Media) (model.Session, error) {
	defer logging.TraceDuration(e.log, "EditorUC.SubmitSeed")()

	s := e.sessions.Load(operatorID)
	seed, kind := e.classifySeed(strings.TrimSpace(text))
	if err := e.checkLength(seed); err != nil {
		return s, err
	}
	if s.CopyMode {
		kind = model.KindFreeCopy
	}

	release, err := e.acquire(ctx, operatorID)
	if err != nil {
		return s, err
	}
	defer release()

	next := s
	next.Seed = seed
	next.Kind = kind
	next.Draft = ""
	next.Style = model.StyleNone
	next.RevisionNote = ""
	next.Media = media

	draft, err := e.generate(ctx, next)
	if err != nil {
		return s, err
	}
	next.Draft = draft
	next.DraftSeq++
	next.Mode = model.ModeDrafted
	next.UpdatedAt = e.now()
	e.sessions.Store(next)

	metrics.IncDraft(string(kind))
	e.log.Info().Int64("operator_id", operatorID).Str("kind", string(kind)).Bool("media", media != nil).Msg("draft generated")
	return next, nil
}

func (e *editorUC) RequestRevision(ctx context.Context, operatorID int64) (model.Session, error) {
	s := e.sessions.Load(operatorID)
	if !s.HasDraft() {
		return s, domain.ErrNoDraftToRevise
	}
	s.Mode = model.ModeAwaitingStyle
	s.UpdatedAt = e.now()
	e.sessions.Store(s)
	return s, nil
}

func (e *editorUC) ChooseStyle(ctx context.Context, operatorID int64, style model.Style) (model.Session, error) {
	defer logging.TraceDuration(e.log, "EditorUC.ChooseStyle")()

	s := e.sessions.Load(operatorID)
	if _, ok := model.ParseStyle(string(style)); !ok {
		return s, fmt.Errorf("%w: %q", domain.ErrUnknownStyle, style)
	}
	if !s.HasDraft() {
		return s, domain.ErrNoDraftToRevise
	}

	release, err := e.acquire(ctx, operatorID)
	if err != nil {
		return s, err
	}
	defer release()

	next := s
	next.Style = style
	if next.CopyMode {
		next.Kind = model.KindFreeCopy
	}
	draft, err := e.generate(ctx, next)
	if err != nil {
		return s, err
	}
	next.Draft = draft
	next.DraftSeq++
	next.RevisionNote = ""
	next.Mode = model.ModeDrafted
	next.UpdatedAt = e.now()
	e.sessions.Store(next)

	metrics.IncRevision("style")
	return next, nil
}

func (e *editorUC) RequestCustomRevision(ctx context.Context, operatorID int64) (model.Session, error) {
	s := e.sessions.Load(operatorID)
	if !s.HasDraft() {
		return s, domain.ErrNoDraftToRevise
	}
	s.Mode = model.ModeAwaitingRevisionText
	s.UpdatedAt = e.now()
	e.sessions.Store(s)
	return s, nil
}

func (e *editorUC) SubmitRevisionText(ctx context.Context, operatorID int64, text string) (model.Session, error) {
	defer logging.TraceDuration(e.log, "EditorUC.SubmitRevisionText")()

	s := e.sessions.Load(operatorID)
	note := strings.TrimSpace(text)
	if note == "" {
		return s, domain.ErrInputTooShort
	}
	if utf8.RuneCountInString(note) > e.opts.MaxSeedLength {
		return s, domain.ErrInputTooLong
	}
	if !s.HasDraft() {
		return s, domain.ErrNoDraftToRevise
	}

	release, err := e.acquire(ctx, operatorID)
	if err != nil {
		return s, err
	}
	defer release()

	next := s
	next.RevisionNote = note
	if next.CopyMode {
		next.Kind = model.KindFreeCopy
	}
	draft, err := e.generate(ctx, next)
	if err != nil {
		return s, err
	}
	next.Draft = draft
	next.DraftSeq++
	next.RevisionNote = ""
	next.Mode = model.ModeDrafted
	next.UpdatedAt = e.now()
	e.sessions.Store(next)

	metrics.IncRevision("custom")
	return next, nil
}

func (e *editorUC) EnterCopyMode(ctx context.Context, operatorID int64) (model.Session, error) {
	s := e.sessions.Load(operatorID)
	s.CopyMode = true
	s.Mode = model.ModeAwaitingCopyBrief
	s.UpdatedAt = e.now()
	e.sessions.Store(s)
	return s, nil
}

func (e *editorUC) Publish(ctx context.Context, operatorID int64) (*PublishResult, error) {
	defer logging.TraceDuration(e.log, "EditorUC.Publish")()

	s := e.sessions.Load(operatorID)
	if !s.HasDraft() {
		return nil, domain.ErrNoDraftToPublish
	}

	release, err := e.acquire(ctx, operatorID)
	if err != nil {
		return nil, err
	}
	defer release()

	handle, err := e.channel.Publish(ctx, s.Draft, s.Media)
	if err != nil {
		metrics.IncPublish("failed")
		e.log.Error().Err(err).Int64("operator_id", operatorID).Msg("publish failed")
		return nil, fmt.Errorf("%w: %w", domain.ErrPublishFailed, err)
	}
	metrics.IncPublish("succeeded")

	entry := &model.AuditEntry{
		ID:            ulid.Make().String(),
		Timestamp:     e.now(),
		OperatorID:    operatorID,
		Seed:          s.Seed,
		PublishedText: s.Draft,
	}
	res := &PublishResult{Handle: handle, Text: s.Draft}

	next := s
	next.ClearCycle()
	next.LastPublished = &handle
	e.sessions.Store(next)

	if err := e.audit.Append(ctx, entry); err != nil {
		// the post is already out; report, never roll back
		metrics.IncAuditFailure()
		e.log.Error().Err(err).Str("audit_id", entry.ID).Int("message_id", handle.MessageID).Msg("audit append failed after publish")
		res.AuditErr = fmt.Errorf("%w: %w", domain.ErrAuditFailed, err)
	}
	e.log.Info().Int64("operator_id", operatorID).Int("message_id", handle.MessageID).Msg("post published")
	return res, nil
}

func (e *editorUC) Undo(ctx context.Context, operatorID int64) error {
	defer logging.TraceDuration(e.log, "EditorUC.Undo")()

	s := e.sessions.Load(operatorID)
	if s.LastPublished == nil {
		return domain.ErrNothingToUndo
	}

	release, err := e.acquire(ctx, operatorID)
	if err != nil {
		return err
	}
	defer release()

	if err := e.channel.Retract(ctx, *s.LastPublished); err != nil {
		metrics.IncUndo("failed")
		e.log.Error().Err(err).Int("message_id", s.LastPublished.MessageID).Msg("retract failed")
		return fmt.Errorf("%w: %w", domain.ErrRetractFailed, err)
	}
	metrics.IncUndo("succeeded")

	// reload: only the handle is ours to clear
	next := e.sessions.Load(operatorID)
	next.LastPublished = nil
	next.UpdatedAt = e.now()
	e.sessions.Store(next)
	return nil
}

func (e *editorUC) Reset(ctx context.Context, operatorID int64) model.Session {
	s := e.sessions.Load(operatorID)
	s.ClearCycle()
	e.sessions.Store(s)
	return s
}

func (e *editorUC) Snapshot(operatorID int64) (model.Session, bool) {
	return e.sessions.Peek(operatorID)
}

// --- internal ---

func (e *editorUC) generate(ctx context.Context, s model.Session) (string, error) {
	if e.opts.BeforeGenerate != nil {
		e.opts.BeforeGenerate(ctx, s.OperatorID, s.HasDraft())
	}
	prompt := post.BuildPrompt(post.PromptRequest{
		Seed:         s.Seed,
		Kind:         s.Kind,
		Style:        s.Style,
		RevisionNote: s.RevisionNote,
	})

	raw, err := e.ai.Generate(ctx, prompt)
	if err != nil {
		e.log.Error().Err(err).Int64("operator_id", s.OperatorID).Msg("generation failed")
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty response", domain.ErrGenerationFailed)
	}
	if s.Kind == model.KindFreeCopy {
		return raw, nil
	}
	return e.formatter.Format(raw), nil
}

func (e *editorUC) checkLength(seed string) error {
	n := utf8.RuneCountInString(seed)
	switch {
	case n < e.opts.MinSeedLength:
		return domain.ErrInputTooShort
	case n > e.opts.MaxSeedLength:
		return domain.ErrInputTooLong
	}
	return nil
}

// classifySeed strips a leading "make a post" marker, which switches the draft to free copy.
func (e *editorUC) classifySeed(text string) (string, model.ModeKind) {
	for _, p := range e.opts.CopyPrefixes {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n := utf8.RuneCountInString(p)
		runes := []rune(text)
		if len(runes) < n || !strings.EqualFold(string(runes[:n]), p) {
			continue
		}
		// the marker must end at a word boundary: "Сделай постер" is a plain seed
		if len(runes) > n && (unicode.IsLetter(runes[n]) || unicode.IsDigit(runes[n])) {
			continue
		}
		rest := strings.TrimLeft(string(runes[n:]), " \t\r\n:—–-")
		return rest, model.KindFreeCopy
	}
	return text, model.KindNewsCommentary
}

func (e *editorUC) acquire(ctx context.Context, operatorID int64) (func(), error) {
	if e.locker == nil {
		return func() {}, nil
	}
	key := fmt.Sprintf("editor:inflight:%d", operatorID)
	token, err := e.locker.TryLock(ctx, key, e.opts.LockTTL)
	if err != nil {
		if !errors.Is(err, domain.ErrOperationInProgress) {
			err = fmt.Errorf("%w: %w", domain.ErrOperationInProgress, err)
		}
		return nil, err
	}
	return func() {
		if err := e.locker.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
			e.log.Warn().Err(err).Str("key", key).Msg("unlock failed")
		}
	}, nil
}
