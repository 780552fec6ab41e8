package services

import "errors"

// ErrInvalidInput is returned when a caller submits an empty or
// whitespace-only message.
var ErrInvalidInput = errors.New("invalid input: message is empty")

// ErrSessionLocked is returned when another turn for the same
// conversation holds the session lock past the configured wait.
var ErrSessionLocked = errors.New("session is locked by another turn")

// ErrSessionEnded is returned when a turn arrives for a conversation
// that already reached its terminal state.
var ErrSessionEnded = errors.New("session has already ended")
