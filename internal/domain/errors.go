package domain

import (
	"errors"
	"fmt"
)

// Generic conditions. Specific errors below wrap these so callers can match either.
var (
	ErrNotFound = errors.New("not found")
	ErrFull     = errors.New("at capacity")
)

var (
	ErrEntrantNotFound      = fmt.Errorf("entrant %w", ErrNotFound)
	ErrEventNotFound        = fmt.Errorf("event %w", ErrNotFound)
	ErrNotificationNotFound = fmt.Errorf("notification %w", ErrNotFound)
	ErrLogNotFound          = fmt.Errorf("log entry %w", ErrNotFound)
	// ErrEmptyWaitlist is returned when removing from, or drawing from, a waitlist with no entrants.
	ErrEmptyWaitlist = fmt.Errorf("waitlist is empty: %w", ErrNotFound)

	ErrEventFull    = fmt.Errorf("event %w", ErrFull)
	ErrWaitlistFull = fmt.Errorf("waitlist %w", ErrFull)
)

var (
	ErrDuplicateEntry        = errors.New("entrant already registered")
	ErrAlreadyConfirmed      = errors.New("entrant already confirmed for event")
	ErrInvalidTimes          = errors.New("invalid event times")
	ErrInvalidParent         = errors.New("sub-entrants cannot have sub-entrants")
	ErrInvalidInput          = errors.New("invalid input")
	ErrInvalidToken          = errors.New("invalid or expired token")
	ErrWrongNotificationType = errors.New("wrong notification type")
)
