// ============================================================================
// meinSPRECHWERK (mSW) - Lokaler Sprachassistent
// ============================================================================
//
// Package:     error
// Description: Structured errors with codes, severities and details
// Author:      Mike Stoffels with Claude
// Created:     2026-01-03
// License:     MIT
// ============================================================================

package error

import (
	"fmt"
	"time"
)

// MaxChainDepth limits the depth of error wrapping
const MaxChainDepth = 15

// Error is a structured error carrying a code, a severity and
// free-form details. It implements the standard error interface and
// supports errors.Is/errors.As via Unwrap.
type Error struct {
	message   string
	cause     error
	code      Code
	severity  Severity
	operation string
	details   map[string]interface{}
	timestamp time.Time
}

// New creates a new Error with the given message
func New(message string) *Error {
	return &Error{
		message:   message,
		code:      CodeUnknown,
		severity:  SeverityMedium,
		timestamp: time.Now(),
	}
}

// Newf creates a new Error with a formatted message
func Newf(format string, args ...interface{}) *Error {
	return New(fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with additional context. Code and
// severity of a wrapped *Error are preserved.
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}

	if depth := chainDepth(err); depth >= MaxChainDepth {
		root := rootCause(err)
		return &Error{
			message:   fmt.Sprintf("%s (chain truncated at depth %d): %s", message, MaxChainDepth, root.Error()),
			code:      CodeUnknown,
			severity:  SeverityHigh,
			timestamp: time.Now(),
		}
	}

	e := &Error{
		message:   message,
		cause:     err,
		code:      CodeUnknown,
		severity:  SeverityMedium,
		timestamp: time.Now(),
	}
	if prev, ok := err.(*Error); ok {
		e.code = prev.code
		e.severity = prev.severity
	}
	return e
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, format string, args ...interface{}) *Error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the wrapped cause
func (e *Error) Unwrap() error {
	return e.cause
}

// WithCode sets the error code and derives the severity when none was
// set explicitly before
func (e *Error) WithCode(code Code) *Error {
	e.code = code
	e.severity = SeverityFromCode(code)
	return e
}

// WithSeverity overrides the severity
func (e *Error) WithSeverity(severity Severity) *Error {
	e.severity = severity
	return e
}

// WithOperation records the operation that produced the error
func (e *Error) WithOperation(op string) *Error {
	e.operation = op
	return e
}

// WithDetail attaches a key/value detail
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.details == nil {
		e.details = make(map[string]interface{})
	}
	e.details[key] = value
	return e
}

// Message returns the error message without the cause chain
func (e *Error) Message() string { return e.message }

// Code returns the error code
func (e *Error) Code() Code { return e.code }

// Severity returns the error severity
func (e *Error) Severity() Severity { return e.severity }

// Operation returns the recorded operation, if any
func (e *Error) Operation() string { return e.operation }

// Details returns the attached details (may be nil)
func (e *Error) Details() map[string]interface{} { return e.details }

// Timestamp returns the creation time of the error
func (e *Error) Timestamp() time.Time { return e.timestamp }

// HasCode reports whether err or any error in its chain carries code
func HasCode(err error, code Code) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			if e.code == code {
				return true
			}
			err = e.cause
			continue
		}
		return false
	}
	return false
}

// GetCode returns the code of the outermost *Error in the chain,
// or CodeUnknown for foreign errors
func GetCode(err error) Code {
	if e, ok := err.(*Error); ok {
		return e.code
	}
	return CodeUnknown
}

// GetSeverity returns the severity of the outermost *Error in the
// chain, or SeverityMedium for foreign errors
func GetSeverity(err error) Severity {
	if e, ok := err.(*Error); ok {
		return e.severity
	}
	return SeverityMedium
}

func chainDepth(err error) int {
	depth := 0
	for err != nil && depth < MaxChainDepth*2 {
		depth++
		e, ok := err.(*Error)
		if !ok {
			break
		}
		err = e.cause
	}
	return depth
}

func rootCause(err error) error {
	for {
		e, ok := err.(*Error)
		if !ok || e.cause == nil {
			return err
		}
		err = e.cause
	}
}
