package errors

import "errors"

var (
	ErrNotFound = errors.New("appointment not found")

	ErrCapacityExceeded = errors.New("daily appointment capacity exceeded")

	// ErrDateLocked means another request held the date lock for longer than
	// the repository was willing to wait.
	ErrDateLocked = errors.New("appointment date is locked by another request")

	ErrStorageRead = errors.New("appointment storage read failed")

	ErrStorageWrite = errors.New("appointment storage write failed")
)
