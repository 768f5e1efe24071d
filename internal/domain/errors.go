package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("bookmark not found")
	ErrConflict     = errors.New("collection changed since it was loaded")
	ErrNoActivePage = errors.New("no current page available")
)

// StorageError reports a failure of the backing key-value store.
type StorageError struct {
	Op  string // "load", "save", "reset", "ping"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// FormatError reports import content whose top-level structure cannot be parsed.
type FormatError struct {
	Format string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("invalid import: %s", e.Reason)
	}
	return fmt.Sprintf("invalid %s import: %s", e.Format, e.Reason)
}

func (e *FormatError) Unwrap() error { return e.Err }

// ValidationError reports rejected user input. No state was changed.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }
