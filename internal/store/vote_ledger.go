package store

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thicketlabs/thicket/internal/db"
	"github.com/thicketlabs/thicket/internal/models"
)

// Tally is the denormalized vote state of a target after a mutation.
type Tally struct {
	Score     int64 `json:"score"`
	Upvotes   int64 `json:"upvotes"`
	Downvotes int64 `json:"downvotes"`
}

// targetRef is a locked snapshot of the voted-on row, captured once per
// transaction. Holding the row lock until commit serializes concurrent
// voters on the same target.
type targetRef struct {
	ID        int64
	Type      string
	AuthorID  int64
	PostID    int64 // for comments, the owning post
	CreatedAt time.Time
	Tally     Tally
}

// VoteLedger is the single source of truth for votes. Every mutation
// upserts or deletes the voter's row and, in the same transaction,
// refreshes the target's aggregates and the author's karma.
type VoteLedger struct {
	db         *db.DB
	aggregates *AggregateMaintainer
	karma      *KarmaLedger
	notifier   *Notifier
	logger     *zap.Logger
}

// NewVoteLedger creates a new vote ledger
func NewVoteLedger(database *db.DB, repo *db.Repository, logger *zap.Logger) *VoteLedger {
	return &VoteLedger{
		db:         database,
		aggregates: NewAggregateMaintainer(database, logger),
		karma:      NewKarmaLedger(repo, logger),
		notifier:   NewNotifier(logger),
		logger:     logger,
	}
}

// CastVote upserts the voter's vote for the target. Re-casting the same
// value is a no-op; casting the opposite value updates the row in place.
func (vl *VoteLedger) CastVote(ctx context.Context, voterID, targetID int64, targetType string, value int16) (*Tally, error) {
	if value != 1 && value != -1 {
		return nil, ErrInvalidVoteValue
	}
	return vl.mutate(ctx, voterID, targetID, targetType, value)
}

// RemoveVote deletes the voter's vote for the target, if any.
func (vl *VoteLedger) RemoveVote(ctx context.Context, voterID, targetID int64, targetType string) (*Tally, error) {
	return vl.mutate(ctx, voterID, targetID, targetType, 0)
}

// mutate runs one vote mutation as a single atomic unit: lock target,
// write the ledger row, recount aggregates, apply the karma delta.
func (vl *VoteLedger) mutate(ctx context.Context, voterID, targetID int64, targetType string, newValue int16) (*Tally, error) {
	if targetType != models.TargetPost && targetType != models.TargetComment {
		return nil, ErrInvalidTargetType
	}

	var tally *Tally
	err := runInTx(ctx, vl.db, vl.logger, func(tx *gorm.DB) error {
		var err error
		tally, err = vl.applyVote(ctx, tx, voterID, targetID, targetType, newValue)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tally, nil
}

func (vl *VoteLedger) applyVote(ctx context.Context, tx *gorm.DB, voterID, targetID int64, targetType string, newValue int16) (*Tally, error) {
	target, err := lockTarget(ctx, tx, targetID, targetType)
	if err != nil {
		return nil, err
	}

	oldValue, err := vl.currentValue(ctx, tx, voterID, targetID, targetType)
	if err != nil {
		return nil, err
	}

	delta := karmaDelta(oldValue, newValue)
	if delta == 0 {
		// Same value re-cast, or removing a vote that never existed.
		t := target.Tally
		return &t, nil
	}

	now := nowUTC()
	switch {
	case oldValue == 0:
		vote := &models.Vote{
			VoterID:    voterID,
			TargetID:   targetID,
			TargetType: targetType,
			Value:      newValue,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := tx.WithContext(ctx).Create(vote).Error; err != nil {
			return nil, err
		}
	case newValue == 0:
		if err := tx.WithContext(ctx).
			Where("voter_id = ? AND target_id = ? AND target_type = ?", voterID, targetID, targetType).
			Delete(&models.Vote{}).Error; err != nil {
			return nil, err
		}
	default:
		if err := tx.WithContext(ctx).
			Model(&models.Vote{}).
			Where("voter_id = ? AND target_id = ? AND target_type = ?", voterID, targetID, targetType).
			Updates(map[string]interface{}{"value": newValue, "updated_at": now}).Error; err != nil {
			return nil, err
		}
	}

	tally, err := vl.aggregates.refresh(ctx, tx, target)
	if err != nil {
		return nil, err
	}

	if err := vl.karma.apply(ctx, tx, target.AuthorID, targetType, targetID, delta, karmaReason(oldValue, newValue)); err != nil {
		return nil, err
	}

	// Notify the author on a fresh upvote only; flips and removals are noise.
	if oldValue == 0 && newValue == 1 && target.AuthorID != voterID {
		postID := target.ID
		var commentID *int64
		if targetType == models.TargetComment {
			postID = target.PostID
			commentID = &target.ID
		}
		if err := vl.notifier.Write(ctx, tx, models.NotifyTypeVote, voterID, target.AuthorID, nil, &postID, commentID, nil); err != nil {
			vl.logger.Warn("Failed to write vote notification", zap.Error(err))
		}
	}

	vl.logger.Debug("Applied vote mutation",
		zap.Int64("voter_id", voterID),
		zap.Int64("target_id", targetID),
		zap.String("target_type", targetType),
		zap.Int16("old_value", oldValue),
		zap.Int16("new_value", newValue))

	return tally, nil
}

// currentValue returns the voter's existing vote value for the target, or 0.
func (vl *VoteLedger) currentValue(ctx context.Context, tx *gorm.DB, voterID, targetID int64, targetType string) (int16, error) {
	var votes []models.Vote
	if err := tx.WithContext(ctx).
		Where("voter_id = ? AND target_id = ? AND target_type = ?", voterID, targetID, targetType).
		Limit(2).
		Find(&votes).Error; err != nil {
		return 0, err
	}
	switch len(votes) {
	case 0:
		return 0, nil
	case 1:
		return votes[0].Value, nil
	default:
		// Unreachable unless the composite primary key has been violated.
		return 0, ErrDuplicateVote
	}
}

// lockTarget loads the voted-on row with a row-level lock held to commit.
// Soft-deleted targets are treated as missing.
func lockTarget(ctx context.Context, tx *gorm.DB, targetID int64, targetType string) (*targetRef, error) {
	locked := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})

	if targetType == models.TargetPost {
		var post models.Post
		if err := locked.First(&post, targetID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, ErrTargetNotFound
			}
			return nil, err
		}
		if post.IsDeleted {
			return nil, ErrTargetNotFound
		}
		return &targetRef{
			ID:        post.ID,
			Type:      models.TargetPost,
			AuthorID:  post.AuthorID,
			PostID:    post.ID,
			CreatedAt: post.CreatedAt,
			Tally:     Tally{Score: post.Score, Upvotes: post.Upvotes, Downvotes: post.Downvotes},
		}, nil
	}

	var comment models.Comment
	if err := locked.First(&comment, targetID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrTargetNotFound
		}
		return nil, err
	}
	if comment.IsDeleted {
		return nil, ErrTargetNotFound
	}
	return &targetRef{
		ID:        comment.ID,
		Type:      models.TargetComment,
		AuthorID:  comment.AuthorID,
		PostID:    comment.PostID,
		CreatedAt: comment.CreatedAt,
		Tally:     Tally{Score: comment.Score, Upvotes: comment.Upvotes, Downvotes: comment.Downvotes},
	}, nil
}

// karmaDelta is the net change in vote value attributable to one mutation:
// insert +1 -> +1, flip +1 to -1 -> -2, delete a +1 -> -1, and so on.
func karmaDelta(oldValue, newValue int16) int64 {
	return int64(newValue) - int64(oldValue)
}

func karmaReason(oldValue, newValue int16) string {
	switch {
	case oldValue == 0:
		return models.KarmaReasonVoteCast
	case newValue == 0:
		return models.KarmaReasonVoteRemoved
	default:
		return models.KarmaReasonVoteChanged
	}
}
