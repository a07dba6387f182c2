package domain

import (
	"errors"
	"fmt"
)

// ErrUserNotFound is returned when a user ID is not part of the current list.
var ErrUserNotFound = errors.New("user not found")

// NetworkError reports a failed feed fetch (transport, status or decode failure).
type NetworkError struct {
	Op   string
	Page int
	Err  error
}

func (e *NetworkError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("%s page %d: %v", e.Op, e.Page, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// StorageError reports a failed bookmark store read or write.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

// AsNetworkError returns err as a *NetworkError, wrapping it when it is not one already.
func AsNetworkError(op string, page int, err error) *NetworkError {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne
	}
	return &NetworkError{Op: op, Page: page, Err: err}
}

// AsStorageError returns err as a *StorageError, wrapping it when it is not one already.
func AsStorageError(op string, err error) *StorageError {
	var se *StorageError
	if errors.As(err, &se) {
		return se
	}
	return &StorageError{Op: op, Err: err}
}
