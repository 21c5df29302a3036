package store

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/thicketlabs/thicket/internal/db"
	"github.com/thicketlabs/thicket/internal/models"
)

// UserKarma is the per-user karma breakdown returned to API callers.
type UserKarma struct {
	UserID       int64 `json:"user_id"`
	KarmaPost    int64 `json:"karma_post"`
	KarmaComment int64 `json:"karma_comment"`
	KarmaTotal   int64 `json:"karma_total"`
	PostCount    int64 `json:"post_count"`
	CommentCount int64 `json:"comment_count"`
}

// KarmaLedger applies karma strictly as incremental deltas, one per vote
// mutation, with an append-only log row per application. User karma is
// never re-summed from the vote ledger.
type KarmaLedger struct {
	repo   *db.Repository
	users  *db.UserRepository
	logger *zap.Logger
}

// NewKarmaLedger creates a new karma ledger
func NewKarmaLedger(repo *db.Repository, logger *zap.Logger) *KarmaLedger {
	return &KarmaLedger{
		repo:   repo,
		users:  db.NewUserRepository(repo),
		logger: logger,
	}
}

// apply credits delta to the author's karma inside the caller's transaction
// and appends the matching log row. A zero delta writes nothing.
func (kl *KarmaLedger) apply(ctx context.Context, tx *gorm.DB, authorID int64, targetType string, targetID int64, delta int64, reason string) error {
	if delta == 0 {
		return nil
	}

	column := "karma_comment"
	if targetType == models.TargetPost {
		column = "karma_post"
	}

	if err := tx.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", authorID).
		Updates(map[string]interface{}{
			column:        gorm.Expr(column+" + ?", delta),
			"karma_total": gorm.Expr("karma_total + ?", delta),
		}).Error; err != nil {
		return err
	}

	entry := &models.KarmaLog{
		UserID:     authorID,
		Delta:      delta,
		TargetType: targetType,
		TargetID:   targetID,
		Reason:     reason,
		CreatedAt:  nowUTC(),
	}
	if err := tx.WithContext(ctx).Create(entry).Error; err != nil {
		return err
	}

	kl.logger.Debug("Applied karma delta",
		zap.Int64("user_id", authorID),
		zap.Int64("delta", delta),
		zap.String("reason", reason))

	return nil
}

// GetUserKarma returns the user's stored karma counters.
func (kl *KarmaLedger) GetUserKarma(ctx context.Context, userID int64) (*UserKarma, error) {
	user, err := kl.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrTargetNotFound
	}
	return &UserKarma{
		UserID:       user.ID,
		KarmaPost:    user.KarmaPost,
		KarmaComment: user.KarmaComment,
		KarmaTotal:   user.KarmaTotal,
		PostCount:    user.PostCount,
		CommentCount: user.CommentCount,
	}, nil
}

// GetUserLog returns the user's most recent karma log entries.
func (kl *KarmaLedger) GetUserLog(ctx context.Context, userID int64, limit int) ([]models.KarmaLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var entries []models.KarmaLog
	err := kl.repo.DB().WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
