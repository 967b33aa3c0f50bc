// Package errors defines the API error envelope shared by the handlers and
// middleware, and maps sentinel errors from lower layers onto it.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned in the API error body
const (
	CodeValidationError    = "VALIDATION_ERROR"
	CodeNotFound           = "RESOURCE_NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeBadRequest         = "BAD_REQUEST"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeBadGateway         = "UPSTREAM_ERROR"
	CodeConfiguration      = "CONFIGURATION_ERROR"
	CodeTimeout            = "TIMEOUT"
)

// AppError carries an error code and HTTP status up to the handler boundary
type AppError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	HTTPStatus int               `json:"-"`
	Err        error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Code + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails replaces the details map
func (e *AppError) WithDetails(details map[string]string) *AppError {
	e.Details = details
	return e
}

// WithDetail sets one detail entry
func (e *AppError) WithDetail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]string, 1)
	}
	e.Details[key] = value
	return e
}

// Wrap records the cause
func (e *AppError) Wrap(err error) *AppError {
	e.Err = err
	return e
}

// NewAppError creates a new AppError
func NewAppError(code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

func ErrValidation(message string) *AppError {
	return NewAppError(CodeValidationError, message, http.StatusBadRequest)
}

// ErrValidationWithFields reports per-field messages in Details
func ErrValidationWithFields(message string, fields map[string]string) *AppError {
	return ErrValidation(message).WithDetails(fields)
}

func ErrBadRequest(message string) *AppError {
	return NewAppError(CodeBadRequest, message, http.StatusBadRequest)
}

func ErrNotFound(resource string) *AppError {
	return NewAppError(CodeNotFound, resource+" not found", http.StatusNotFound)
}

// ErrNotFoundWithID is ErrNotFound with the missing id in Details
func ErrNotFoundWithID(resource, id string) *AppError {
	return ErrNotFound(resource).WithDetail("id", id)
}

func ErrConflict(message string) *AppError {
	return NewAppError(CodeConflict, message, http.StatusConflict)
}

// ErrInternal hides the cause behind a generic message when message is empty
func ErrInternal(message string) *AppError {
	if message == "" {
		message = "an internal error occurred"
	}
	return NewAppError(CodeInternalError, message, http.StatusInternalServerError)
}

// ErrServiceUnavailable reports a dependency that cannot answer right now,
// such as the sites source before the first snapshot.
func ErrServiceUnavailable(dependency string) *AppError {
	return NewAppError(CodeServiceUnavailable, dependency+" is temporarily unavailable", http.StatusServiceUnavailable)
}

// ErrBadGateway reports that a collaborator failed or rejected a call
func ErrBadGateway(collaborator string) *AppError {
	return NewAppError(CodeBadGateway, collaborator+" request failed", http.StatusBadGateway)
}

// ErrConfiguration reports a missing or invalid process configuration value
func ErrConfiguration(message string) *AppError {
	return NewAppError(CodeConfiguration, message, http.StatusInternalServerError)
}

func ErrTimeout(operation string) *AppError {
	return NewAppError(CodeTimeout, operation+" timed out", http.StatusGatewayTimeout)
}

// AsAppError finds an AppError in err's chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type rule struct {
	target error
	code   string
	status int
}

// Mapper turns sentinel errors into AppErrors. Rules are tried in the order
// they were added and match with errors.Is, so wrapped sentinels still map.
type Mapper struct {
	rules []rule
}

// NewMapper returns a mapper with no rules
func NewMapper() *Mapper {
	return &Mapper{}
}

// On maps target to code and status. The AppError message is the error text.
func (m *Mapper) On(target error, code string, status int) *Mapper {
	m.rules = append(m.rules, rule{target: target, code: code, status: status})
	return m
}

// Map returns err unchanged when it already holds an AppError. Otherwise the
// first matching rule wins, context deadlines become TIMEOUT and anything else
// is INTERNAL_ERROR.
func (m *Mapper) Map(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	for _, r := range m.rules {
		if errors.Is(err, r.target) {
			return NewAppError(r.code, err.Error(), r.status).Wrap(err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout("request").Wrap(err)
	}
	return ErrInternal("").Wrap(err)
}

var defaultMapper = NewMapper()

// MapDomainError maps err with no sentinel rules
func MapDomainError(err error) *AppError {
	return defaultMapper.Map(err)
}
