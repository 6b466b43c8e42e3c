package domain

import (
	"errors"
	"fmt"
)

// Predefined domain errors.
var (
	// ErrNotFound means the resource does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidInput means request validation failed before any external call.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUpstreamAuth means a provider rejected our credentials. Terminal, never retried.
	ErrUpstreamAuth = errors.New("upstream authentication failed")
	// ErrUpstreamRateLimited means a provider returned 429. Terminal for the current call.
	ErrUpstreamRateLimited = errors.New("upstream rate limited")
	// ErrUpstreamBadRequest means a provider rejected the request shape. Terminal, never retried.
	ErrUpstreamBadRequest = errors.New("upstream rejected request")
	// ErrUpstreamUnavailable means a provider was unreachable or timed out.
	// Retryable on the non-streaming path only.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrInternal is any other internal failure, including persistence errors.
	ErrInternal = errors.New("internal error")
)

// DomainError carries a stable code and a user-facing message alongside
// the wrapped cause.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface, for logs and internal propagation.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// UserMessage returns the human-readable message, free of internal detail.
func (e *DomainError) UserMessage() string {
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a resource-not-found error.
func NewNotFoundError(resourceType, id string) error {
	return &DomainError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s '%s' not found", resourceType, id),
		Err:     ErrNotFound,
	}
}

// NewInvalidInputError creates a validation error.
func NewInvalidInputError(message string) error {
	return &DomainError{
		Code:    "INVALID_INPUT",
		Message: message,
		Err:     ErrInvalidInput,
	}
}

// NewUpstreamAuthError creates a provider credential error.
func NewUpstreamAuthError(provider string) error {
	return &DomainError{
		Code:    "UPSTREAM_AUTH",
		Message: fmt.Sprintf("%s rejected the configured credentials", provider),
		Err:     ErrUpstreamAuth,
	}
}

// NewUpstreamRateLimitError creates a provider rate-limit error.
func NewUpstreamRateLimitError(provider string) error {
	return &DomainError{
		Code:    "UPSTREAM_RATE_LIMITED",
		Message: fmt.Sprintf("%s is experiencing high demand, please try again shortly", provider),
		Err:     ErrUpstreamRateLimited,
	}
}

// NewUpstreamBadRequestError creates a provider bad-request error.
func NewUpstreamBadRequestError(provider, detail string) error {
	return &DomainError{
		Code:    "UPSTREAM_BAD_REQUEST",
		Message: fmt.Sprintf("%s could not process the request: %s", provider, detail),
		Err:     ErrUpstreamBadRequest,
	}
}

// NewUpstreamUnavailableError creates a provider unreachable/timeout error.
func NewUpstreamUnavailableError(provider string, err error) error {
	return &DomainError{
		Code:    "UPSTREAM_UNAVAILABLE",
		Message: fmt.Sprintf("%s is temporarily unavailable", provider),
		Err:     fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err),
	}
}

// NewInternalError creates an internal error without exposing detail.
func NewInternalError(err error) error {
	return &DomainError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Err:     fmt.Errorf("%w: %v", ErrInternal, err),
	}
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput reports whether err is a validation error.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsUpstreamAuth reports whether err is a provider credential error.
func IsUpstreamAuth(err error) bool {
	return errors.Is(err, ErrUpstreamAuth)
}

// IsUpstreamRateLimited reports whether err is a provider rate-limit error.
func IsUpstreamRateLimited(err error) bool {
	return errors.Is(err, ErrUpstreamRateLimited)
}

// IsUpstreamBadRequest reports whether err is a provider bad-request error.
func IsUpstreamBadRequest(err error) bool {
	return errors.Is(err, ErrUpstreamBadRequest)
}

// IsUpstreamUnavailable reports whether err is a provider unreachable error.
func IsUpstreamUnavailable(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable)
}

// UserMessageFor returns the user-facing message for any error, falling
// back to a generic message for non-domain errors.
func UserMessageFor(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.UserMessage()
	}
	return "an error occurred"
}
