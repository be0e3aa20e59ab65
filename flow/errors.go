package flow

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable reason codes carried by Error.
const (
	CodeMissingUsername     = "MISSING_USERNAME"
	CodeMissingInstructions = "MISSING_INSTRUCTIONS"
	CodeEmptySubject        = "EMPTY_SUBJECT"
	CodeNoRecipients        = "NO_RECIPIENTS"
	CodeUnknownOutcome      = "UNKNOWN_OUTCOME"
	CodeMissingInstanceID   = "MISSING_INSTANCE_ID"
	CodeInstanceNotFound    = "INSTANCE_NOT_FOUND"
	CodeInstanceTerminal    = "INSTANCE_TERMINAL"
	CodeInvalidState        = "INVALID_STATE"
	CodeDraftingFailed      = "DRAFTING_FAILED"
	CodeDeliveryFailed      = "DELIVERY_FAILED"
	CodeStoreFailed         = "STORE_FAILED"
)

// Error is the structured error surfaced to synchronous callers. It pairs
// a machine-readable reason code with an HTTP-style status so transport
// layers can map it directly.
type Error struct {
	// Code is one of the Code* constants.
	Code string

	// Status is the HTTP-style status class for the failure.
	Status int

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsCode reports whether err is (or wraps) an Error with the given code.
func IsCode(err error, code string) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Code == code
}

// validationError builds a 400-class Error. Validation failures never
// mutate instance state.
func validationError(code, message string) *Error {
	return &Error{Code: code, Status: http.StatusBadRequest, Message: message}
}

func notFoundError(id string) *Error {
	return &Error{
		Code:    CodeInstanceNotFound,
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("instance %q does not exist", id),
	}
}

func terminalError(id string, status Status) *Error {
	return &Error{
		Code:    CodeInstanceTerminal,
		Status:  http.StatusConflict,
		Message: fmt.Sprintf("instance %q is already %s", id, status),
	}
}

func invalidStateError(id string, status Status, trigger string) *Error {
	return &Error{
		Code:    CodeInvalidState,
		Status:  http.StatusConflict,
		Message: fmt.Sprintf("instance %q is %s, cannot apply %s", id, status, trigger),
	}
}

// asEngineError passes structured errors through and wraps anything else
// (store failures, compose-source failures) as a 500-class Error.
func asEngineError(err error) error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return err
	}
	return &Error{
		Code:    CodeStoreFailed,
		Status:  http.StatusInternalServerError,
		Message: "engine dependency failed",
		Err:     err,
	}
}

func collaboratorError(code string, err error) *Error {
	return &Error{
		Code:    code,
		Status:  http.StatusBadGateway,
		Message: "collaborator call failed",
		Err:     err,
	}
}
