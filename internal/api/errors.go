package api

import (
	"errors"
	"fmt"

	"github.com/thicketlabs/thicket/internal/store"
)

// JSON-RPC error codes. The -32000 range extensions carry store-level
// rejection reasons so clients can react without parsing messages.
const (
	ErrParseError     = -32700
	ErrInvalidRequest = -32600
	ErrMethodNotFound = -32601
	ErrInvalidParams  = -32602
	ErrInternalError  = -32000

	ErrCodeNotFound      = -32001
	ErrCodeDepthExceeded = -32002
	ErrCodeTargetState   = -32003
	ErrCodeConflict      = -32004
	ErrCodeForbidden     = -32005
)

// Error represents an API error
type Error struct {
	Code    int
	Message string
}

// NewError creates a new API error
func NewError(code int, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Code, e.Message)
}

// mapError translates store errors to protocol error codes.
func mapError(err error) (int, string) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Message
	}

	switch {
	case errors.Is(err, store.ErrInvalidVoteValue),
		errors.Is(err, store.ErrInvalidTargetType),
		errors.Is(err, store.ErrInvalidArgument):
		return ErrInvalidParams, "Invalid params"
	case errors.Is(err, store.ErrTargetNotFound),
		errors.Is(err, store.ErrParentDeleted):
		return ErrCodeNotFound, "Not found"
	case errors.Is(err, store.ErrMaxDepthExceeded):
		return ErrCodeDepthExceeded, "Max depth exceeded"
	case errors.Is(err, store.ErrParentPostMismatch),
		errors.Is(err, store.ErrPostLocked):
		return ErrCodeTargetState, "Target rejects this operation"
	case errors.Is(err, store.ErrNotModerator):
		return ErrCodeForbidden, "Not a moderator"
	case errors.Is(err, store.ErrConcurrentUpdateConflict):
		return ErrCodeConflict, "Concurrent update conflict, retry"
	default:
		return ErrInternalError, "Server error"
	}
}
