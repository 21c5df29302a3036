package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Validation and conflict errors surfaced by the store layer. The API layer
// maps these to protocol error codes with errors.Is.
var (
	// ErrInvalidVoteValue is returned when a vote value is not +1 or -1.
	// A zero vote is expressed by removing the vote, not casting one.
	ErrInvalidVoteValue = errors.New("vote value must be +1 or -1")

	// ErrInvalidTargetType is returned for a target type outside {post, comment}.
	ErrInvalidTargetType = errors.New("target type must be post or comment")

	// ErrInvalidArgument is returned for malformed request parameters that
	// have no more specific sentinel.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrTargetNotFound is returned when the voted-on or commented-on
	// target does not exist or has been soft-deleted.
	ErrTargetNotFound = errors.New("target not found")

	// ErrDuplicateVote indicates more than one vote row exists for a
	// (voter, target) pair. The composite primary key makes this
	// unreachable; seeing it means the storage layer is corrupt.
	ErrDuplicateVote = errors.New("duplicate vote rows for voter and target")

	// ErrMaxDepthExceeded is returned when a reply would nest deeper than
	// the maximum comment depth.
	ErrMaxDepthExceeded = errors.New("comment depth limit exceeded")

	// ErrParentPostMismatch is returned when the parent comment belongs to
	// a different post.
	ErrParentPostMismatch = errors.New("parent comment belongs to a different post")

	// ErrParentDeleted is returned when replying to a soft-deleted comment.
	ErrParentDeleted = errors.New("parent comment is deleted")

	// ErrPostLocked is returned when commenting on a locked post.
	ErrPostLocked = errors.New("post is locked")

	// ErrNotModerator is returned when a moderation action comes from a
	// user with no moderator role in the post's community.
	ErrNotModerator = errors.New("user is not a moderator")

	// ErrConcurrentUpdateConflict is returned after a mutation kept losing
	// serialization races past the internal retry limit. Callers should
	// retry the operation.
	ErrConcurrentUpdateConflict = errors.New("concurrent update conflict")
)

// Postgres SQLSTATE codes that mean the transaction lost a race and can be
// retried from scratch.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgUniqueViolation      = "23505"
)

// isRetryable reports whether err is a transient conflict worth rerunning
// the whole transaction for. Unique violations are included: a concurrent
// double-submit of the same vote surfaces as one, and the rerun resolves it
// as an update or no-op against the now-committed row.
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgUniqueViolation:
			return true
		}
	}
	return false
}
