// Package apperr holds the error kinds that cross package boundaries and
// their HTTP mapping.
package apperr

import "strings"

// ValidationError marks bad input: a malformed dataset, a bad flag value or an
// invalid request parameter. Issues collects every problem found, Message
// summarizes them.
type ValidationError struct {
	Message string
	Issues  []string
	Err     error
}

func (e *ValidationError) Error() string {
	msg := e.Message
	if len(e.Issues) > 0 {
		msg += " (" + strings.Join(e.Issues, "; ") + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func NewValidation(msg string, issues ...string) *ValidationError {
	return &ValidationError{Message: msg, Issues: issues}
}

func NewValidationWrap(msg string, err error) *ValidationError {
	return &ValidationError{Message: msg, Err: err}
}

// NotFoundError names a missing report, repository record or similar.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return e.Kind + " " + e.ID + " not found"
}

func NewNotFound(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}
