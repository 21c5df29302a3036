package store

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thicketlabs/thicket/internal/db"
	"github.com/thicketlabs/thicket/internal/models"
	"github.com/thicketlabs/thicket/internal/ranking"
)

// AggregateMaintainer keeps denormalized vote counters consistent with the
// vote ledger. Refreshes are authoritative recounts, never incremental
// deltas, so an aggregate can never drift from the ledger it mirrors.
type AggregateMaintainer struct {
	db     *db.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewAggregateMaintainer creates a new aggregate maintainer
func NewAggregateMaintainer(database *db.DB, logger *zap.Logger) *AggregateMaintainer {
	return &AggregateMaintainer{
		db:     database,
		logger: logger,
		now:    nowUTC,
	}
}

// refresh recounts the target's votes from the ledger and persists the
// tally; for posts it also recomputes the ranking scores against the
// maintainer clock. Runs inside the caller's transaction, after the caller
// has locked the target row.
func (am *AggregateMaintainer) refresh(ctx context.Context, tx *gorm.DB, target *targetRef) (*Tally, error) {
	return am.refreshAt(ctx, tx, target, am.now())
}

func (am *AggregateMaintainer) refreshAt(ctx context.Context, tx *gorm.DB, target *targetRef, now time.Time) (*Tally, error) {
	tally, err := recountTally(ctx, tx, target.ID, target.Type)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"score":     tally.Score,
		"upvotes":   tally.Upvotes,
		"downvotes": tally.Downvotes,
	}

	model := interface{}(&models.Comment{})
	if target.Type == models.TargetPost {
		model = &models.Post{}
		updates["hot_score"] = ranking.HotScore(tally.Upvotes, tally.Downvotes, target.CreatedAt, now)
		updates["controversy_score"] = ranking.Controversy(tally.Upvotes, tally.Downvotes)
	}

	if err := tx.WithContext(ctx).
		Model(model).
		Where("id = ?", target.ID).
		Updates(updates).Error; err != nil {
		return nil, err
	}

	return tally, nil
}

// RecomputeHotScore recounts a post's tally and re-derives its ranking
// scores at a fresh reference time. Idempotent; run on a schedule so decay
// reorders listings even when no new votes arrive.
func (am *AggregateMaintainer) RecomputeHotScore(ctx context.Context, postID int64) error {
	return am.recomputeAt(ctx, postID, am.now())
}

// RecomputeHotScores refreshes a batch of posts against one shared
// reference time so the resulting scores are mutually comparable.
func (am *AggregateMaintainer) RecomputeHotScores(ctx context.Context, postIDs []int64) error {
	now := am.now()
	for _, id := range postIDs {
		if err := am.recomputeAt(ctx, id, now); err != nil {
			if err == ErrTargetNotFound {
				continue
			}
			return err
		}
	}
	return nil
}

func (am *AggregateMaintainer) recomputeAt(ctx context.Context, postID int64, now time.Time) error {
	return runInTx(ctx, am.db, am.logger, func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&post, postID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrTargetNotFound
			}
			return err
		}

		target := &targetRef{
			ID:        post.ID,
			Type:      models.TargetPost,
			AuthorID:  post.AuthorID,
			PostID:    post.ID,
			CreatedAt: post.CreatedAt,
		}
		_, err := am.refreshAt(ctx, tx, target, now)
		return err
	})
}

// recountTally counts the target's ledger rows by value.
func recountTally(ctx context.Context, tx *gorm.DB, targetID int64, targetType string) (*Tally, error) {
	var upvotes, downvotes int64

	if err := tx.WithContext(ctx).
		Model(&models.Vote{}).
		Where("target_id = ? AND target_type = ? AND value = 1", targetID, targetType).
		Count(&upvotes).Error; err != nil {
		return nil, err
	}
	if err := tx.WithContext(ctx).
		Model(&models.Vote{}).
		Where("target_id = ? AND target_type = ? AND value = -1", targetID, targetType).
		Count(&downvotes).Error; err != nil {
		return nil, err
	}

	return &Tally{
		Score:     upvotes - downvotes,
		Upvotes:   upvotes,
		Downvotes: downvotes,
	}, nil
}
