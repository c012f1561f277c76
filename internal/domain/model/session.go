package model

import (
	"strings"
	"time"
)

// Mode is the single explicit state of an editorial session.
type Mode string

const (
	ModeIdle                 Mode = "idle"
	ModeDrafted              Mode = "drafted"
	ModeAwaitingStyle        Mode = "awaiting_style"
	ModeAwaitingRevisionText Mode = "awaiting_revision_text"
	ModeAwaitingCopyBrief    Mode = "awaiting_copy_brief"
)

// ModeKind selects the prompt template and whether the formatter runs.
type ModeKind string

const (
	KindNewsCommentary ModeKind = "news_commentary"
	KindFreeCopy       ModeKind = "free_copy"
)

type Style string

const (
	StyleNone      Style = ""
	StyleStrict    Style = "strict"
	StyleIronic    Style = "ironic"
	StyleShort     Style = "short"
	StyleEmotional Style = "emotional"
)

// Styles lists the preset styles in the order they are offered to the operator.
var Styles = []Style{StyleStrict, StyleIronic, StyleShort, StyleEmotional}

func ParseStyle(s string) (Style, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, st := range Styles {
		if string(st) == s {
			return st, true
		}
	}
	return StyleNone, false
}

type MediaKind string

const (
	MediaPhoto MediaKind = "photo"
	MediaVideo MediaKind = "video"
)

// Media is an attachment to send with the published post. FileID is opaque to the core.
type Media struct {
	Kind   MediaKind
	FileID string
}

// MessageHandle identifies a message published to the broadcast channel.
type MessageHandle struct {
	ChatID          int64
	ChannelUsername string
	MessageID       int
}

// Session is the per-operator editorial state. It is handled by value:
// callers load a copy, mutate it and store it back only when a transition succeeds.
type Session struct {
	OperatorID    int64
	Mode          Mode
	Kind          ModeKind
	Seed          string
	Draft         string
	Style         Style
	RevisionNote  string
	Media         *Media
	LastPublished *MessageHandle
	CopyMode      bool
	// DraftSeq numbers the drafts of this operator. ClearCycle keeps it.
	DraftSeq  int
	UpdatedAt time.Time
}

func NewSession(operatorID int64) Session {
	return Session{
		OperatorID: operatorID,
		Mode:       ModeIdle,
		UpdatedAt:  time.Now(),
	}
}

func (s *Session) HasDraft() bool { return strings.TrimSpace(s.Draft) != "" }

// ClearCycle drops everything that belongs to the current draft cycle.
// LastPublished survives so the last publish can still be retracted.
func (s *Session) ClearCycle() {
	s.Mode = ModeIdle
	s.Kind = ""
	s.Seed = ""
	s.Draft = ""
	s.Style = StyleNone
	s.RevisionNote = ""
	s.Media = nil
	s.CopyMode = false
	s.UpdatedAt = time.Now()
}
