package usecase

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork covers upstream requests that never received a response,
	// including timeouts.
	ErrNetwork = errors.New("network error")
	// ErrInternal covers unexpected failures during normalization,
	// persistence or store reads, and malformed upstream payloads.
	ErrInternal = errors.New("internal error")
)

// UpstreamError is returned when the provider answered with an error status.
// The handler mirrors StatusCode to the client.
type UpstreamError struct {
	StatusCode int
	Details    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: status=%d", e.StatusCode)
}

// Validation error codes, one per short-circuiting rule.
const (
	CodeEmptyQuery    = "EmptyQuery"
	CodeInvalidPage   = "InvalidPage"
	CodeInvalidSalary = "InvalidSalary"
	CodeInvalidDate   = "InvalidDate"
	CodeInvalidJob    = "InvalidJob"
)

// ValidationError carries a machine-readable code together with the stable
// user-facing message and a human hint.
type ValidationError struct {
	Code    string
	Message string
	Details string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Code + ": " + e.Message
}

func newValidationError(code, message, details string) *ValidationError {
	return &ValidationError{Code: code, Message: message, Details: details}
}
