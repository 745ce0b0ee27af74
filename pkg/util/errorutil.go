package util

import (
	"errors"
	"fmt"
)

// DomainError standardizes application errors. Message is safe to show to the
// interaction actor; Err carries the technical detail for the log line.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}

// NewPermissionDenied signals the actor lacks the required role or used the
// wrong channel. No state change happened.
func NewPermissionDenied(message string) error {
	return NewDomainError("PERMISSION_DENIED", message, nil)
}

// NewValidationError signals rejected input before any external call.
func NewValidationError(message string) error {
	return NewDomainError("VALIDATION_FAILED", message, nil)
}

// NewConfigError signals a missing or malformed configuration value.
func NewConfigError(message string, err error) error {
	return NewDomainError("CONFIG_INVALID", message, err)
}

// NewExternalError signals a failed call to Discord, GitHub, or the webhook.
func NewExternalError(message string, err error) error {
	return NewDomainError("EXTERNAL_CALL_FAILED", message, err)
}

// NewUnknownInteraction signals an unrecognized custom id or command name.
func NewUnknownInteraction(id string) error {
	return NewDomainError("UNKNOWN_INTERACTION", "Unknown interaction.", fmt.Errorf("unrecognized identifier %q", id))
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:    "INTERNAL_ERROR",
		Message: "An unexpected error occurred. Please try again.",
		Err:     err,
	}
}
