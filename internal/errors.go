package internal

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidID        ErrorCode = "INVALID_ID"
	ErrCodeInvalidBody      ErrorCode = "INVALID_BODY"
	ErrCodeInvalidSalary    ErrorCode = "INVALID_SALARY"
	ErrCodeInvalidCoord     ErrorCode = "INVALID_COORDINATE"
	ErrCodeInvalidReference ErrorCode = "INVALID_REFERENCE"
	ErrCodeSecurityCheck    ErrorCode = "SECURITY_CHECK_FAILED"
	ErrCodeInvalidPhoto     ErrorCode = "INVALID_PHOTO"

	ErrCodeResourceNotFound ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeDuplicate        ErrorCode = "DUPLICATE"
	ErrCodeStillReferenced  ErrorCode = "STILL_REFERENCED"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeMissingToken       ErrorCode = "MISSING_TOKEN"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeUserNotFound       ErrorCode = "USER_NOT_FOUND"
)

// AppError is the error shape handlers translate into the response envelope.
// Details carries either ValidationErrors or Reasons.
type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Messages flattens Details into the string list rendered under "errors".
func (e *AppError) Messages() []string {
	switch d := e.Details.(type) {
	case ValidationErrors:
		out := make([]string, 0, len(d.Errors))
		for _, ve := range d.Errors {
			out = append(out, fmt.Sprintf("%s: %s", ve.Field, ve.Message))
		}
		return out
	case Reasons:
		return []string(d)
	}
	return []string{e.Message}
}

func (e *AppError) GetDetailedMessage() string {
	return strings.Join(e.Messages(), "; ")
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

func (e *AppError) WithReasons(reasons ...string) *AppError {
	e.Details = Reasons(reasons)
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// Reasons are free-form explanations attached to a non-field error.
type Reasons []string

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func ErrInvalidID() *AppError {
	return NewValidationError("Invalid ID format", ErrCodeInvalidID).
		WithReasons("ID harus berupa angka positif yang valid")
}

func ErrInvalidBody(cause error) *AppError {
	return NewValidationError("Invalid request body", ErrCodeInvalidBody).
		WithReasons("Request body is not valid JSON").
		WithCause(cause)
}

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
