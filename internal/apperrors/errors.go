// internal/apperrors/errors.go
package apperrors

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error
type ErrorType int

const (
	ErrorTypeValidation ErrorType = iota
	ErrorTypeDuplicate
	ErrorTypeNotFound
	ErrorTypeConflict
	ErrorTypeStorage
	ErrorTypeDatabase
)

func (et ErrorType) String() string {
	switch et {
	case ErrorTypeValidation:
		return "validation"
	case ErrorTypeDuplicate:
		return "duplicate"
	case ErrorTypeNotFound:
		return "not_found"
	case ErrorTypeConflict:
		return "conflict"
	case ErrorTypeStorage:
		return "storage"
	case ErrorTypeDatabase:
		return "database"
	default:
		return "unknown"
	}
}

// Origin labels which flow raised the error; the HTTP layer uses it as the
// field label of single-violation responses.
type Origin string

const (
	OriginEntity  Origin = "entityError"
	OriginTagName Origin = "tagNameError"
)

// AppError represents a structured application error
type AppError struct {
	Type    ErrorType
	Origin  Origin
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewValidationError reports input rejected by a business rule.
func NewValidationError(origin Origin, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Origin:  origin,
		Message: message,
	}
}

func NewDuplicateError(origin Origin, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeDuplicate,
		Origin:  origin,
		Message: message,
	}
}

// NewNotFoundError creates a not found error for the given resource and id.
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Origin:  OriginEntity,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Context: map[string]interface{}{
			"resource":   resource,
			"identifier": id,
		},
	}
}

// NewConflictError reports an illegal state transition.
func NewConflictError(origin Origin, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Origin:  origin,
		Message: message,
	}
}

func NewStorageError(operation string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeStorage,
		Origin:  OriginEntity,
		Message: fmt.Sprintf("file storage operation failed: %s", operation),
		Cause:   cause,
	}
}

func NewDatabaseError(operation string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeDatabase,
		Origin:  OriginEntity,
		Message: fmt.Sprintf("database operation failed: %s", operation),
		Cause:   cause,
	}
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsErrorType checks if the error is of the specified type
func IsErrorType(err error, errorType ErrorType) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Type == errorType
	}
	return false
}

func IsValidation(err error) bool { return IsErrorType(err, ErrorTypeValidation) }
func IsDuplicate(err error) bool  { return IsErrorType(err, ErrorTypeDuplicate) }
func IsNotFound(err error) bool   { return IsErrorType(err, ErrorTypeNotFound) }
func IsConflict(err error) bool   { return IsErrorType(err, ErrorTypeConflict) }
func IsStorage(err error) bool    { return IsErrorType(err, ErrorTypeStorage) }
