package application

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"telegram-news-editor/internal/domain"
	"telegram-news-editor/internal/domain/model"
	"telegram-news-editor/internal/infra/logging"
	"telegram-news-editor/internal/infra/metrics"
	"telegram-news-editor/internal/usecase"
)

// AuditFileName is the attachment name of the exported publish log.
const AuditFileName = "news_logs.csv"

// EditorFacade turns operator commands into use case calls and translated replies.
// Every Handle* method checks the operator first and never returns a raw error:
// failures become a message for the operator.
type EditorFacade struct {
	EditorUC usecase.EditorUseCase
	AuditUC  usecase.AuditUseCase

	tr      Translator
	ownerID int64
	log     *zerolog.Logger
}

func NewEditorFacade(editorUC usecase.EditorUseCase, auditUC usecase.AuditUseCase, tr Translator, ownerID int64, logger *zerolog.Logger) *EditorFacade {
	return &EditorFacade{
		EditorUC: editorUC,
		AuditUC:  auditUC,
		tr:       tr,
		ownerID:  ownerID,
		log:      logger,
	}
}

// Authorize reports domain.ErrUnauthorized for anyone but the configured operator.
func (f *EditorFacade) Authorize(operatorID int64) error {
	if operatorID != f.ownerID {
		metrics.IncUnauthorized()
		return domain.ErrUnauthorized
	}
	return nil
}

func (f *EditorFacade) HandleStart(ctx context.Context, operatorID int64) Reply {
	if err := f.Authorize(operatorID); err != nil {
		return f.errorReply(ctx, err)
	}
	return Reply{Text: f.tr.T("welcome_message")}
}

func (f *EditorFacade) HandleHelp(ctx context.Context, operatorID int64) Reply {
	if err := f.Authorize(operatorID); err != nil {
		return f.errorReply(ctx, err)
	}
	return Reply{Text: f.tr.T("help_message")}
}

// HandleText routes free text by mode: a pending free-form revision consumes it,
// anything else starts a new draft from it.
func (f *EditorFacade) HandleText(ctx context.Context, operatorID int64, text string, media *model.Media) Reply {
	if err := f.Authorize(operatorID); err != nil {
		return f.errorReply(ctx, err)
	}

	if s, ok := f.EditorUC.Snapshot(operatorID); ok && s.Mode == model.ModeAwaitingRevisionText {
		s, err := f.EditorUC.SubmitRevisionText(ctx, operatorID, text)
		if err != nil {
			return f.errorReply(ctx, err)
		}
		return f.draftReply(s)
	}

	s, err := f.EditorUC.SubmitSeed(ctx, operatorID, text, media)
	if err != nil {
		return f.errorReply(ctx, err)
	}
	return f.draftReply(s)
}

// HandleAction resolves a button press. Data tagged with a draft number other than
// the current one comes from an older draft and is refused.
func (f *EditorFacade) HandleAction(ctx context.Context, operatorID int64, data string) Reply {
	if err := f.Authorize(operatorID); err != nil {
		return f.errorReply(ctx, err)
	}

	action, seq := model.ParseCallback(data)
	if seq != 0 {
		if s, _ := f.EditorUC.Snapshot(operatorID); s.DraftSeq != seq {
			logging.With(ctx, f.log).Debug().Int("seq", seq).Int("current", s.DraftSeq).Msg("stale draft button")
			return Reply{Text: f.tr.T("error_stale_draft"), RemoveKeyboard: true}
		}
	}
	switch action {
	case model.ActionPublish:
		return f.publish(ctx, operatorID)

	case model.ActionRevise:
		s, err := f.EditorUC.RequestRevision(ctx, operatorID)
		if err != nil {
			return f.errorReply(ctx, err)
		}
		return Reply{Text: f.tr.T("choose_style"), Actions: model.ActionsFor(s.Mode), DraftSeq: s.DraftSeq, RemoveKeyboard: true}

	case model.ActionCustom:
		if _, err := f.EditorUC.RequestCustomRevision(ctx, operatorID); err != nil {
			return f.errorReply(ctx, err)
		}
		return Reply{Text: f.tr.T("ask_revision_text"), RemoveKeyboard: true}
	}

	st, ok := action.StyleOf()
	if !ok {
		return f.errorReply(ctx, domain.ErrUnknownStyle)
	}
	s, err := f.EditorUC.ChooseStyle(ctx, operatorID, st)
	if err != nil {
		return f.errorReply(ctx, err)
	}
	r := f.draftReply(s)
	r.RemoveKeyboard = true
	return r
}

func (f *EditorFacade) HandleCopy(ctx context.Context, operatorID int64) Reply {
	if err := f.Authorize(operatorID); err != nil {
		return f.errorReply(ctx, err)
	}
	if _, err := f.EditorUC.EnterCopyMode(ctx, operatorID); err != nil {
		return f.errorReply(ctx, err)
	}
	return Reply{Text: f.tr.T("copy_mode_on")}
}

func (f *EditorFacade) HandleUndo(ctx context.Context, operatorID int64) Reply {
	if err := f.Authorize(operatorID); err != nil {
		return f.errorReply(ctx, err)
	}
	if err := f.EditorUC.Undo(ctx, operatorID); err != nil {
		return f.errorReply(ctx, err)
	}
	return Reply{Text: f.tr.T("undone")}
}

func (f *EditorFacade) HandleCancel(ctx context.Context, operatorID int64) Reply {
	if err := f.Authorize(operatorID); err != nil {
		return f.errorReply(ctx, err)
	}
	f.EditorUC.Reset(ctx, operatorID)
	return Reply{Text: f.tr.T("cancelled")}
}

// HandleLogs returns the publish log as a CSV attachment.
func (f *EditorFacade) HandleLogs(ctx context.Context, operatorID int64) Reply {
	if err := f.Authorize(operatorID); err != nil {
		return f.errorReply(ctx, err)
	}
	data, err := f.AuditUC.ExportCSV(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return Reply{Text: f.tr.T("logs_empty")}
	}
	if err != nil {
		return f.errorReply(ctx, err)
	}
	return Reply{Text: f.tr.T("logs_caption"), Document: &Document{Name: AuditFileName, Data: data}}
}

// --- internal ---

func (f *EditorFacade) publish(ctx context.Context, operatorID int64) Reply {
	res, err := f.EditorUC.Publish(ctx, operatorID)
	if err != nil {
		return f.errorReply(ctx, err)
	}
	text := f.tr.T("published")
	if res.AuditErr != nil {
		text += "\n\n" + f.tr.T("error_audit_failed")
	}
	return Reply{Text: text, RemoveKeyboard: true}
}

func (f *EditorFacade) draftReply(s model.Session) Reply {
	return Reply{Text: s.Draft, Actions: model.ActionsFor(s.Mode), DraftSeq: s.DraftSeq, Draft: true}
}

func (f *EditorFacade) errorReply(ctx context.Context, err error) Reply {
	key, withReason := errorKey(err)
	l := logging.With(ctx, f.log)
	if key == "error_generic" {
		l.Error().Err(err).Msg("unhandled editor error")
	} else {
		l.Debug().Err(err).Str("reply", key).Msg("editor error")
	}
	if withReason != nil {
		return Reply{Text: f.tr.T(key, reason(err, withReason))}
	}
	return Reply{Text: f.tr.T(key)}
}

// errorKey maps an error to its message key. The second result is set when the
// message carries the collaborator's reason after that sentinel.
func errorKey(err error) (string, error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return "error_unauthorized", nil
	case errors.Is(err, domain.ErrInputTooShort):
		return "error_input_too_short", nil
	case errors.Is(err, domain.ErrInputTooLong):
		return "error_input_too_long", nil
	case errors.Is(err, domain.ErrOperationInProgress):
		return "error_in_progress", nil
	case errors.Is(err, domain.ErrGenerationFailed):
		return "error_generation_failed", domain.ErrGenerationFailed
	case errors.Is(err, domain.ErrPublishFailed):
		return "error_publish_failed", domain.ErrPublishFailed
	case errors.Is(err, domain.ErrRetractFailed):
		return "error_retract_failed", domain.ErrRetractFailed
	case errors.Is(err, domain.ErrNothingToUndo):
		return "error_nothing_to_undo", nil
	case errors.Is(err, domain.ErrNoDraftToPublish):
		return "error_no_draft_to_publish", nil
	case errors.Is(err, domain.ErrNoDraftToRevise):
		return "error_no_draft_to_revise", nil
	case errors.Is(err, domain.ErrUnknownStyle):
		return "error_unknown_style", nil
	default:
		return "error_generic", nil
	}
}

func reason(err, sentinel error) string {
	return strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
}
