// Package errors provides structured domain errors shared by every transport.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeInternal represents an unexpected failure.
	CodeInternal Code = "INTERNAL"

	// Input errors
	CodeValidation Code = "VALIDATION_ERROR"

	// Identity errors
	CodeDuplicateIdentity Code = "DUPLICATE_IDENTITY"
	CodeAuthFailed        Code = "AUTH_FAILED"
	CodeForbidden         Code = "FORBIDDEN"

	// Leave accounting errors
	CodeInsufficientBalance Code = "INSUFFICIENT_BALANCE"
	CodeOverlappingRequest  Code = "OVERLAPPING_REQUEST"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// BadRequest - malformed input
	case CodeValidation:
		return http.StatusBadRequest

	// Unauthorized - credential or token rejected
	case CodeAuthFailed:
		return http.StatusUnauthorized

	// Forbidden - authenticated caller acting outside its scope
	case CodeForbidden:
		return http.StatusForbidden

	// NotFound - resource doesn't exist
	case CodeNotFound:
		return http.StatusNotFound

	// Conflict - unique identity constraint
	case CodeDuplicateIdentity:
		return http.StatusConflict

	// UnprocessableEntity - business rule rejected a well-formed request
	case CodeInsufficientBalance,
		CodeOverlappingRequest:
		return http.StatusUnprocessableEntity

	default:
		return http.StatusInternalServerError
	}
}
