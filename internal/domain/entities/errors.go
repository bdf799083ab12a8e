package entities

import "errors"

// Domain errors
var (
	// Recording errors
	ErrRecordingNotFound = errors.New("recording not found")
	ErrRecordingTerminal = errors.New("recording already failed")

	// Meeting session errors
	ErrSessionNotFound = errors.New("meeting session not found")

	// Action item errors
	ErrActionItemNotFound = errors.New("action item not found")
	ErrInvalidOrdering    = errors.New("ordering must list every action item of the session exactly once")

	// Task errors
	ErrTaskNotFound = errors.New("task not found")
)
