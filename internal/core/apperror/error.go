// Package apperror defines the error type every layer returns to the HTTP
// boundary. The boundary renders it as a Problem; causes stay server-side.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error identifier shown to API clients.
type Code string

const (
	CodeInternal = Code("INTERNAL_ERROR")

	CodeValidation = Code("VALIDATION_ERROR")
	// CodeContractViolation marks caller bugs: malformed filter spec, unknown record kind.
	CodeContractViolation = Code("CONTRACT_VIOLATION")

	CodeBusinessRule      = Code("BUSINESS_RULE_VIOLATION")
	CodeInvalidTransition = Code("INVALID_STATE_TRANSITION")
	CodeNotPublishable    = Code("NOT_PUBLISHABLE")

	CodeNotFound = Code("NOT_FOUND")

	CodeConflict  = Code("CONFLICT")
	CodeDuplicate = Code("DUPLICATE_ENTRY")
)

var statusByCode = map[Code]int{
	CodeInternal:          http.StatusInternalServerError,
	CodeValidation:        http.StatusBadRequest,
	CodeContractViolation: http.StatusBadRequest,
	CodeBusinessRule:      http.StatusUnprocessableEntity,
	CodeInvalidTransition: http.StatusUnprocessableEntity,
	CodeNotPublishable:    http.StatusUnprocessableEntity,
	CodeNotFound:          http.StatusNotFound,
	CodeConflict:          http.StatusConflict,
	CodeDuplicate:         http.StatusConflict,
}

// Status maps c to an HTTP status. Unknown codes are 500.
func (c Code) Status() int {
	if s, ok := statusByCode[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// AppError is a classified error with client-safe message and details.
type AppError struct {
	Code    Code
	Message string
	Details map[string]any
	Err     error
}

// New creates an AppError with a formatted message.
func New(code Code, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// HTTPStatus is the response status for e.
func (e *AppError) HTTPStatus() int { return e.Code.Status() }

// WithDetail adds a key-value pair to the client-visible details.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause attaches the underlying error. It is logged, never rendered.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

func NewValidation(message string) *AppError {
	return New(CodeValidation, "%s", message)
}

// NewContractViolation reports a programmer error at an API boundary,
// e.g. an unknown record kind handed to the filter engine.
func NewContractViolation(message string) *AppError {
	return New(CodeContractViolation, "%s", message)
}

func NewNotFound(entity string, id any) *AppError {
	return New(CodeNotFound, "%s not found", entity).
		WithDetail("entity", entity).
		WithDetail("id", id)
}

// NewBusinessRule creates a 422 error under a specific rule code.
func NewBusinessRule(code Code, message string) *AppError {
	return New(code, "%s", message)
}

// NewInvalidTransition is returned when a tracking state change is not in the transition table.
func NewInvalidTransition(from, to string) *AppError {
	return New(CodeInvalidTransition, "cannot move from %q to %q", from, to).
		WithDetail("from", from).
		WithDetail("to", to)
}

// NewInternal hides err behind a generic message.
func NewInternal(err error) *AppError {
	return New(CodeInternal, "internal server error").WithCause(err)
}

func NewConflict(message string) *AppError {
	return New(CodeConflict, "%s", message)
}

func NewDuplicate(entity, field, value string) *AppError {
	return New(CodeDuplicate, "%s with this %s already exists", entity, field).
		WithDetail("entity", entity).
		WithDetail("field", field).
		WithDetail("value", value)
}

// AsAppError extracts the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

func IsNotFound(err error) bool { return hasCode(err, CodeNotFound) }

func IsContractViolation(err error) bool { return hasCode(err, CodeContractViolation) }

func hasCode(err error, code Code) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// Problem is the JSON body of an error response.
type Problem struct {
	Code      Code           `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"requestId,omitempty"`
}

// ToProblem classifies any error for the client. Errors outside the
// AppError chain become internal errors.
func ToProblem(err error, requestID string) (int, Problem) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = NewInternal(err)
	}
	return appErr.HTTPStatus(), Problem{
		Code:      appErr.Code,
		Message:   appErr.Message,
		Details:   appErr.Details,
		RequestID: requestID,
	}
}
