package domain

import "github.com/pkg/errors"

var (
	// ErrInvalidCode coin code length is outside 3..5.
	ErrInvalidCode = errors.New("coin code must be 3-5 letters long")
	// ErrDuplicateCode coin is already in the watch list.
	ErrDuplicateCode = errors.New("coin is already in the watch list")
	// ErrNotFound coin is not in the watch list.
	ErrNotFound = errors.New("coin is not in the watch list")
	// ErrEmptyThreshold alarm threshold was left blank.
	ErrEmptyThreshold = errors.New("threshold cannot be empty")
	// ErrInvalidThreshold alarm threshold is not a number.
	ErrInvalidThreshold = errors.New("threshold must be a valid number")
	// ErrUnknownAlarmKind alarm type label is not recognised.
	ErrUnknownAlarmKind = errors.New("unknown alarm type")
	// ErrAlarmIndex alarm index is out of range.
	ErrAlarmIndex = errors.New("alarm index out of range")
	// ErrNoIdentifier price record carries no provider identifier.
	ErrNoIdentifier = errors.New("could not determine the URL for this coin")
)
