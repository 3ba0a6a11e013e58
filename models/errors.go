package models

import "errors"

var (
	// ErrInsufficientEssence is returned when a debit would push the essence
	// balance below zero. The triggering transition is a no-op.
	ErrInsufficientEssence = errors.New("not enough essence for this action")

	// ErrMissingCredentials is returned when a transition needs a remote
	// service but one or both API keys are absent from the credential store.
	ErrMissingCredentials = errors.New("required API credentials are not configured")

	// ErrTextService wraps transport-level failures of the text generation
	// service (non-OK status, connection errors, empty completions).
	ErrTextService = errors.New("text generation service request failed")

	// ErrParseFailed wraps malformed or incomplete scene payloads returned
	// by the text generation service.
	ErrParseFailed = errors.New("failed to parse scene response")

	ErrInvalidTransition = errors.New("transition not allowed from current state")
	ErrInvalidTimeOfDay  = errors.New("invalid time of day")
	ErrNoRecapPending    = errors.New("no day recap is pending")
	ErrEmptyInput        = errors.New("player input is empty")
)
