package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors. Typed errors below report true for errors.Is against them.
var (
	// ErrFormat indicates an uploaded file could not be ingested.
	ErrFormat = errors.New("format error")

	// ErrNotFound indicates a referenced record or catalog entry does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmptyExport indicates there are no matched outcomes to export.
	ErrEmptyExport = errors.New("no matched items to export")

	// ErrUnsupportedExportFormat indicates an export format other than csv or xml.
	ErrUnsupportedExportFormat = errors.New("unsupported export format")
)

// FormatError is a file-level ingestion failure. It aborts the whole upload;
// nothing from the file is persisted.
type FormatError struct {
	File   string
	Reason string
	Err    error
}

// Error implements the error interface
func (e *FormatError) Error() string {
	msg := e.Reason
	if e.File != "" {
		msg = fmt.Sprintf("%s: %s", e.File, e.Reason)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap implements errors.Unwrap
func (e *FormatError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// NewFormatError creates a FormatError for file with the given reason.
func NewFormatError(file, reason string, err error) *FormatError {
	return &FormatError{File: file, Reason: reason, Err: err}
}

// NotFoundError represents a missing supplier record or catalog entry.
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(resource string, id int64) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: fmt.Sprintf("%d", id)}
}

// Resource names used in NotFoundError.
const (
	ResourceRecord = "supplier item"
	ResourceEntry  = "master item"
)
