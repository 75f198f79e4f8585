package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a record or its detailed analysis does not exist
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned for missing or incorrect admin credentials
	ErrUnauthorized = errors.New("authentication required")
	// ErrRateLimited is returned when a client submits too often
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrArchiveDisabled is returned when no export archive store is configured
	ErrArchiveDisabled = errors.New("export archive not configured")
)

// StorageError reports that the record store could not be read or written
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ValidationError reports a malformed submission
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid submission: " + e.Reason
	}
	return fmt.Sprintf("invalid submission: %s %s", e.Field, e.Reason)
}
