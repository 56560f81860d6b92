package common

import "errors"

// Sentinel errors shared across the store, chat and HTTP layers.
// Handlers map these to HTTP statuses with errors.Is.
var (
	// ErrNotFound: the addressed conversation/message/provider/model/prompt/project does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict: a unique name constraint was violated (provider or model creation).
	ErrConflict = errors.New("already exists")

	// ErrForbidden: the operation is valid but not allowed for this record
	// (editing a system message, deleting the protected default prompt).
	ErrForbidden = errors.New("forbidden")

	// ErrNotConfigured: no default provider or no default model for the
	// default provider. Generation cannot start.
	ErrNotConfigured = errors.New("not configured")
)
