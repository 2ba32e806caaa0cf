// Package apperr defines the error kinds shared across floccus packages.
// Callers wrap them with context and match with errors.Is.
package apperr

import "errors"

var (
	// ErrNotFound is returned when an Id or Path address resolves to nothing.
	ErrNotFound = errors.New("address not found")
	// ErrNotAFolder is returned when a placement needs a folder but found a bookmark.
	ErrNotAFolder = errors.New("not a folder")
	// ErrMalformedID is returned when an id is not a non-negative decimal integer.
	ErrMalformedID = errors.New("malformed id")
	// ErrIO wraps open, read and write failures.
	ErrIO = errors.New("i/o failure")
	// ErrFormat is returned when input does not parse as XBEL.
	ErrFormat = errors.New("invalid xbel document")
	// ErrUnsupported is returned for structurally invalid requests such as removing root.
	ErrUnsupported = errors.New("unsupported operation")
	// ErrPushWithoutRemote is returned when pushing is requested but no remote is configured.
	ErrPushWithoutRemote = errors.New("push requested without remote configured")
	// ErrInvalidInput wraps request validation failures.
	ErrInvalidInput = errors.New("invalid input")
	// ErrAlreadyExists reports a file that must not be overwritten.
	ErrAlreadyExists = errors.New("already exists")
)
