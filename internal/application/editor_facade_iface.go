package application

import "telegram-news-editor/internal/domain/model"

// Translator resolves operator-facing message keys.
type Translator interface {
	T(key string, args ...interface{}) string
}

// Document is a file the transport should attach to the reply.
type Document struct {
	Name string
	Data []byte
}

// Reply is a render instruction for the transport.
type Reply struct {
	Text string
	// Actions are offered as buttons under Text.
	Actions []model.Action
	// DraftSeq is the draft the Actions belong to.
	DraftSeq int
	// Draft marks Text as generated post markup, rendered with the bot's parse mode.
	Draft    bool
	Document *Document
	// RemoveKeyboard asks the transport to drop the buttons of the message that triggered the action.
	RemoveKeyboard bool
}
