// Package wire defines the response envelope and the DTOs shared by the
// REST and MCP transports.
package wire

import (
	apperrors "github.com/louisbranch/leaveledger/internal/platform/errors"
)

// internalMessage replaces the text of unclassified failures.
const internalMessage = "Internal server error"

// Envelope wraps every transport response.
type Envelope struct {
	Success      bool    `json:"success" jsonschema:"whether the operation succeeded"`
	Data         any     `json:"data" jsonschema:"operation payload, null on failure"`
	ErrorCode    *string `json:"error_code" jsonschema:"machine-readable error code, null on success"`
	ErrorMessage *string `json:"error_message" jsonschema:"human-readable error message, null on success"`
}

// OK wraps a successful payload.
func OK(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// Fail wraps err. Errors without a known code surface as INTERNAL with a
// generic message; callers log the original.
func Fail(err error) Envelope {
	code := apperrors.CodeOf(err)
	message := internalMessage
	if appErr, ok := apperrors.As(err); ok && code != apperrors.CodeInternal {
		message = appErr.Message
	}
	return FailWith(code, message)
}

// FailWith builds a failure envelope from an explicit code and message.
func FailWith(code apperrors.Code, message string) Envelope {
	codeText := string(code)
	return Envelope{ErrorCode: &codeText, ErrorMessage: &message}
}

// Code returns the error code, or "" for a successful envelope.
func (e Envelope) Code() string {
	if e.ErrorCode == nil {
		return ""
	}
	return *e.ErrorCode
}
