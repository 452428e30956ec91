// Package errors provides standardized error handling for folio.
// It defines the error kinds raised by the file list, the watcher and the
// configuration loader, plus helpers for creating, wrapping and classifying
// them.
package errors

import (
	"errors"
	"fmt"
)

// Standard errors package errors that we re-export for convenience
var (
	// Unwrap unwraps an error to access the underlying error
	Unwrap = errors.Unwrap
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
)

// Common error constants for frequently occurring errors
var (
	ErrInvalidPath   = NewFileError("invalid folder path", "", InvalidPath, nil)
	ErrInvalidState  = NewListError("file list is empty", "", InvalidState, nil)
	ErrOutOfRange    = NewListError("index out of range", "", OutOfRange, nil)
	ErrInvalidConfig = NewConfigError("invalid configuration", "", InvalidConfig, nil)
)

// ErrorKind represents the kind of error
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	// File error kinds
	FileAccessDenied
	InvalidPath
	WatchFailed
	// List error kinds
	InvalidState
	OutOfRange
	DuplicateEntry
	StaleFolderID
	// Config error kinds
	InvalidConfig
)

var kindNames = map[ErrorKind]string{
	Unknown:          "unknown",
	FileAccessDenied: "file access denied",
	InvalidPath:      "invalid path",
	WatchFailed:      "watch failed",
	InvalidState:     "invalid state",
	OutOfRange:       "out of range",
	DuplicateEntry:   "duplicate entry",
	StaleFolderID:    "stale folder id",
	InvalidConfig:    "invalid config",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ApplicationError is the base error type for all application errors
type ApplicationError struct {
	msg  string
	err  error
	kind ErrorKind
}

// Error returns the error message
func (e *ApplicationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap returns the wrapped error
func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

// Is matches any application error of the same kind, so callers can compare
// against the exported sentinels with errors.Is.
func (e *ApplicationError) Is(target error) bool {
	var k interface{ Kind() ErrorKind }
	if errors.As(target, &k) {
		return k.Kind() != Unknown && k.Kind() == e.kind
	}
	return false
}

// FileError represents errors related to files and folders
type FileError struct {
	ApplicationError
	path string
}

// NewFileError creates a new file error
func NewFileError(msg string, path string, kind ErrorKind, err error) *FileError {
	return &FileError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		path: path,
	}
}

// Error returns the file error message
func (e *FileError) Error() string {
	if e.path != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.path, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.path)
	}
	return e.ApplicationError.Error()
}

// Path returns the file path associated with the error
func (e *FileError) Path() string {
	return e.path
}

// ListError represents errors raised by file list operations
type ListError struct {
	ApplicationError
	entry string
}

// NewListError creates a new list error. entry names the list element
// involved, if any.
func NewListError(msg string, entry string, kind ErrorKind, err error) *ListError {
	return &ListError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		entry: entry,
	}
}

// Error returns the list error message
func (e *ListError) Error() string {
	if e.entry != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.entry, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.entry)
	}
	return e.ApplicationError.Error()
}

// Entry returns the list entry associated with the error
func (e *ListError) Entry() string {
	return e.entry
}

// ConfigError represents errors related to configuration
type ConfigError struct {
	ApplicationError
	param string
}

// NewConfigError creates a new configuration error
func NewConfigError(msg string, param string, kind ErrorKind, err error) *ConfigError {
	return &ConfigError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		param: param,
	}
}

// Error returns the config error message
func (e *ConfigError) Error() string {
	if e.param != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.param, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.param)
	}
	return e.ApplicationError.Error()
}

// Param returns the configuration parameter associated with the error
func (e *ConfigError) Param() string {
	return e.param
}

// New creates a new error with a message
func New(msg string) error {
	return &ApplicationError{
		msg:  msg,
		kind: Unknown,
	}
}

// Newf creates a new error with a formatted message
func Newf(format string, args ...interface{}) error {
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		kind: Unknown,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  msg,
		err:  err,
		kind: Unknown,
	}
}

// Wrapf wraps an existing error with additional formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		err:  err,
		kind: Unknown,
	}
}

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) ErrorKind {
	for err != nil {
		if k, ok := err.(interface{ Kind() ErrorKind }); ok && k.Kind() != Unknown {
			return k.Kind()
		}
		err = errors.Unwrap(err)
	}
	return Unknown
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// IsInvalidPath checks if the error is an invalid path error
func IsInvalidPath(err error) bool {
	return IsKind(err, InvalidPath)
}

// IsInvalidState checks if the error is an invalid state error
func IsInvalidState(err error) bool {
	return IsKind(err, InvalidState)
}

// IsOutOfRange checks if the error is an out of range error
func IsOutOfRange(err error) bool {
	return IsKind(err, OutOfRange)
}

// IsDuplicateEntry checks if the error is a duplicate entry error
func IsDuplicateEntry(err error) bool {
	return IsKind(err, DuplicateEntry)
}

// IsInvalidConfig checks if the error is an invalid configuration error
func IsInvalidConfig(err error) bool {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind() == InvalidConfig
	}
	return false
}
