package api

import (
	"errors"
	"fmt"
	"testing"

	"github.com/thicketlabs/thicket/internal/store"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"invalid vote value", store.ErrInvalidVoteValue, ErrInvalidParams},
		{"invalid target type", store.ErrInvalidTargetType, ErrInvalidParams},
		{"invalid argument", store.ErrInvalidArgument, ErrInvalidParams},
		{"wrapped invalid argument", fmt.Errorf("%w: bad cursor", store.ErrInvalidArgument), ErrInvalidParams},
		{"not found", store.ErrTargetNotFound, ErrCodeNotFound},
		{"parent deleted", store.ErrParentDeleted, ErrCodeNotFound},
		{"max depth", store.ErrMaxDepthExceeded, ErrCodeDepthExceeded},
		{"parent post mismatch", store.ErrParentPostMismatch, ErrCodeTargetState},
		{"post locked", store.ErrPostLocked, ErrCodeTargetState},
		{"not moderator", store.ErrNotModerator, ErrCodeForbidden},
		{"conflict", store.ErrConcurrentUpdateConflict, ErrCodeConflict},
		{"wrapped conflict", fmt.Errorf("%w: gave up", store.ErrConcurrentUpdateConflict), ErrCodeConflict},
		{"unknown error", errors.New("boom"), ErrInternalError},
		{"api error passthrough", NewError(ErrMethodNotFound, "no such method"), ErrMethodNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := mapError(tt.err)
			if code != tt.expected {
				t.Errorf("mapError(%v) code = %d, want %d", tt.err, code, tt.expected)
			}
		})
	}
}
