package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// Error types for the nowmeta server
type ErrorType string

const (
	// Remote instance errors
	ErrorTypeRemote    ErrorType = "remote"
	ErrorTypeTransport ErrorType = "transport"

	// Caller input errors
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeAmbiguous  ErrorType = "ambiguous"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"

	// Internal errors
	ErrorTypeInternal ErrorType = "internal"
)

// RemoteError represents a failed call against the remote table API.
// Status is the HTTP status (0 when the request never produced a response).
type RemoteError struct {
	Type       ErrorType
	Table      string
	Status     int
	Message    string
	Detail     string
	Underlying error
	Timestamp  time.Time
}

// NewRemoteError creates an error for a non-2xx response from the instance
func NewRemoteError(table string, status int, message, detail string) *RemoteError {
	return &RemoteError{
		Type:      ErrorTypeRemote,
		Table:     table,
		Status:    status,
		Message:   message,
		Detail:    detail,
		Timestamp: time.Now(),
	}
}

// NewTransportError creates an error for a request that failed before a response arrived
func NewTransportError(table string, err error) *RemoteError {
	return &RemoteError{
		Type:       ErrorTypeTransport,
		Table:      table,
		Message:    err.Error(),
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// CombinedMessage joins message and detail the way callers display them
func (e *RemoteError) CombinedMessage() string {
	switch {
	case e.Message != "" && e.Detail != "":
		return e.Message + ": " + e.Detail
	case e.Detail != "":
		return e.Detail
	default:
		return e.Message
	}
}

// Error implements the error interface
func (e *RemoteError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s query on %s failed: %s", e.Type, e.Table, e.CombinedMessage())
	}
	return fmt.Sprintf("%s query on %s failed (%d): %s", e.Type, e.Table, e.Status, e.CombinedMessage())
}

// Unwrap returns the underlying error for errors.Is/As
func (e *RemoteError) Unwrap() error {
	return e.Underlying
}

// ValidationError represents missing or invalid caller input.
// It is never retried.
type ValidationError struct {
	Type       ErrorType
	Field      string
	Value      string
	Reason     string
	Suggestion string
	Timestamp  time.Time
}

// NewMissingFieldError creates a validation error for a required parameter
func NewMissingFieldError(field string) *ValidationError {
	return &ValidationError{
		Type:      ErrorTypeValidation,
		Field:     field,
		Reason:    "is required",
		Timestamp: time.Now(),
	}
}

// NewInvalidValueError creates a validation error for a value outside an enumerated set
func NewInvalidValueError(field, value, reason string) *ValidationError {
	return &ValidationError{
		Type:      ErrorTypeValidation,
		Field:     field,
		Value:     value,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

// WithSuggestion attaches a "did you mean" hint
func (e *ValidationError) WithSuggestion(s string) *ValidationError {
	e.Suggestion = s
	return e
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	var b strings.Builder
	if e.Value != "" {
		fmt.Fprintf(&b, "invalid %s %q: %s", e.Field, e.Value, e.Reason)
	} else {
		fmt.Fprintf(&b, "%s %s", e.Field, e.Reason)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, " (did you mean %q?)", e.Suggestion)
	}
	return b.String()
}

// AmbiguityError is returned when a lookup that must resolve to one record
// matched several. Callers react by adding filters, not by retrying.
type AmbiguityError struct {
	Type      ErrorType
	Name      string
	Count     int
	Hint      string
	Timestamp time.Time
}

// NewAmbiguityError creates an ambiguity error for the given identifier
func NewAmbiguityError(name string, count int, hint string) *AmbiguityError {
	return &AmbiguityError{
		Type:      ErrorTypeAmbiguous,
		Name:      name,
		Count:     count,
		Hint:      hint,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface
func (e *AmbiguityError) Error() string {
	msg := fmt.Sprintf("ambiguous name %q: at least %d records match", e.Name, e.Count)
	if e.Hint != "" {
		msg += "; " + e.Hint
	}
	return msg
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("config error for field %s: %v", e.Field, e.Underlying)
	}
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error
func NewMultiError(errs []error) *MultiError {
	// Filter out nil errors
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}

// IsValidation reports whether err is (or wraps) a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return stderrors.As(err, &v)
}

// IsAmbiguous reports whether err is (or wraps) an AmbiguityError
func IsAmbiguous(err error) bool {
	var a *AmbiguityError
	return stderrors.As(err, &a)
}

// IsRemote reports whether err is (or wraps) a RemoteError
func IsRemote(err error) bool {
	var r *RemoteError
	return stderrors.As(err, &r)
}
