package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound            = errors.New("entity not found")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrReadDatabaseRow     = errors.New("failed to read database row")
	ErrOperationInProgress = errors.New("another operation is in progress")

	// Editorial workflow errors
	ErrUnauthorized     = errors.New("operator is not authorized")
	ErrInputTooShort    = errors.New("input is too short")
	ErrInputTooLong     = errors.New("input is too long")
	ErrUnknownStyle     = errors.New("unknown style")
	ErrNoDraftToRevise  = errors.New("no draft to revise")
	ErrNoDraftToPublish = errors.New("no draft to publish")
	ErrNothingToUndo    = errors.New("nothing to undo")

	// Collaborator failures; the reason is wrapped alongside.
	ErrGenerationFailed = errors.New("generation failed")
	ErrPublishFailed    = errors.New("publish failed")
	ErrRetractFailed    = errors.New("retract failed")
	ErrAuditFailed      = errors.New("audit append failed")
)
