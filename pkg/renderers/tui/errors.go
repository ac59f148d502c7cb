package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoPromptDriver is returned when Run is called without a driver.
	ErrNoPromptDriver = errors.New("tui: prompt driver is nil")
	// ErrTooManyAttempts is returned when the submit loop exceeds the
	// configured attempt limit without producing a valid application.
	ErrTooManyAttempts = errors.New("tui: too many invalid submissions")
)
