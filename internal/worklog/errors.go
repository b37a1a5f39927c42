package worklog

import "errors"

var (
	// ErrNoActiveSession is returned when an operation requires an active
	// session and the user has none.
	ErrNoActiveSession = errors.New("no active session found")

	// ErrNoBreakStart is returned by EndBreak when the active session has no
	// recorded break start.
	ErrNoBreakStart = errors.New("no break start time found")

	// ErrInvalidBreakStart is returned when the stored break start does not
	// parse to a usable timestamp.
	ErrInvalidBreakStart = errors.New("invalid break start time")

	// ErrInvalidTransition is returned when a command would move the session
	// status along an edge the transition table forbids.
	ErrInvalidTransition = errors.New("invalid session status transition")

	// ErrSessionActive is returned by StartSession in strict mode when the
	// user already has an active session.
	ErrSessionActive = errors.New("an active session already exists")
)
