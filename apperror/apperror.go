// Package apperror defines the application's error taxonomy and the uniform
// response envelope derived from it. Errors are created close to where they
// happen and converted to HTTP responses only at the handler boundary, so no
// raw error ever crosses into a client payload.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies an application error.
type ErrorType int

const (
	// UnknownError is for unspecified errors
	UnknownError ErrorType = iota
	// ValidationError represents an input schema violation
	ValidationError
	// AuthError represents a missing or invalid session (unauthenticated)
	AuthError
	// ForbiddenError represents an authenticated identity lacking ownership
	ForbiddenError
	// NotFoundError represents a missing entity
	NotFoundError
	// ConflictError represents a uniqueness conflict, e.g. a duplicate email
	ConflictError
	// UpstreamError represents a failure in an external collaborator
	// (object storage, mail delivery, OAuth provider)
	UpstreamError
	// DatabaseError represents an error originating from the database
	DatabaseError
	// ConfigError represents an error in application configuration
	ConfigError
	// BadRequestError represents a malformed request
	BadRequestError
	// InternalError represents any other unexpected failure
	InternalError
)

// AppError is the application's error type. It carries a user-facing message
// and optionally wraps the underlying cause for server-side logging.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error // underlying error, never shown to clients
}

// Error satisfies the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is / errors.As chains.
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error type to an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Type {
	case ValidationError, BadRequestError:
		return http.StatusBadRequest
	case AuthError:
		return http.StatusUnauthorized
	case ForbiddenError:
		return http.StatusForbidden
	case NotFoundError:
		return http.StatusNotFound
	case ConflictError:
		return http.StatusConflict
	case UpstreamError:
		return http.StatusBadGateway
	case DatabaseError, ConfigError, InternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// NewAppError creates a new AppError with an explicit type.
func NewAppError(errType ErrorType, message string, underlyingError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     underlyingError,
	}
}

// NewValidationError creates a new ValidationError
func NewValidationError(message string, underlyingError error) *AppError {
	return NewAppError(ValidationError, message, underlyingError)
}

// NewAuthError creates a new AuthError
func NewAuthError(message string, underlyingError error) *AppError {
	return NewAppError(AuthError, message, underlyingError)
}

// NewForbiddenError creates a new ForbiddenError
func NewForbiddenError(message string, underlyingError error) *AppError {
	return NewAppError(ForbiddenError, message, underlyingError)
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(message string, underlyingError error) *AppError {
	return NewAppError(NotFoundError, message, underlyingError)
}

// NewConflictError creates a new ConflictError
func NewConflictError(message string, underlyingError error) *AppError {
	return NewAppError(ConflictError, message, underlyingError)
}

// NewUpstreamError creates a new UpstreamError
func NewUpstreamError(message string, underlyingError error) *AppError {
	return NewAppError(UpstreamError, message, underlyingError)
}

// NewDatabaseError creates a new DatabaseError
func NewDatabaseError(message string, underlyingError error) *AppError {
	return NewAppError(DatabaseError, message, underlyingError)
}

// NewConfigError creates a new ConfigError
func NewConfigError(message string, underlyingError error) *AppError {
	return NewAppError(ConfigError, message, underlyingError)
}

// NewBadRequestError creates a new BadRequestError
func NewBadRequestError(message string, underlyingError error) *AppError {
	return NewAppError(BadRequestError, message, underlyingError)
}

// NewInternalError creates a new InternalError
func NewInternalError(message string, underlyingError error) *AppError {
	return NewAppError(InternalError, message, underlyingError)
}

// ErrorResponse is the failure half of the API envelope. Every failed request
// answers with this shape; the HTTP status carries the error kind.
type ErrorResponse struct {
	OK    bool   `json:"ok" example:"false"`
	Error string `json:"error" example:"A description of the error"`
}

// ToResponse converts an AppError to the client-facing envelope. Only the
// message is exposed; the wrapped cause stays server-side.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{OK: false, Error: e.Message}
}

// FromError attempts to convert a generic error to an *AppError.
func FromError(err error) (*AppError, bool) {
	if err == nil {
		return nil, false
	}
	var ae *AppError
	ok := errors.As(err, &ae)
	return ae, ok
}

// IsNotFound checks if an error is a NotFound error
func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == NotFoundError
}

// IsAuthError checks if an error is an AuthError
func IsAuthError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == AuthError
}

// IsForbidden checks if an error is a ForbiddenError
func IsForbidden(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ForbiddenError
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ValidationError
}

// IsConflict checks if an error is a ConflictError
func IsConflict(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ConflictError
}
