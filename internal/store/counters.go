package store

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thicketlabs/thicket/internal/db"
	"github.com/thicketlabs/thicket/internal/models"
)

// CounterMaintainer keeps community membership counters in step with the
// membership rows. Counter moves are transition-only: joining twice or
// leaving a community never joined changes nothing.
type CounterMaintainer struct {
	db       *db.DB
	notifier *Notifier
	logger   *zap.Logger
}

// NewCounterMaintainer creates a new counter maintainer
func NewCounterMaintainer(database *db.DB, logger *zap.Logger) *CounterMaintainer {
	return &CounterMaintainer{
		db:       database,
		notifier: NewNotifier(logger),
		logger:   logger,
	}
}

// Join adds the user to the community and bumps its member count.
func (cm *CounterMaintainer) Join(ctx context.Context, userID, communityID int64) error {
	return runInTx(ctx, cm.db, cm.logger, func(tx *gorm.DB) error {
		var community models.Community
		if err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&community, communityID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrTargetNotFound
			}
			return err
		}

		var existing int64
		if err := tx.WithContext(ctx).
			Model(&models.Membership{}).
			Where("community_id = ? AND user_id = ?", communityID, userID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return nil
		}

		membership := &models.Membership{
			CommunityID: communityID,
			UserID:      userID,
			CreatedAt:   nowUTC(),
		}
		if err := tx.WithContext(ctx).Create(membership).Error; err != nil {
			return err
		}
		if err := tx.WithContext(ctx).
			Model(&models.Community{}).
			Where("id = ?", communityID).
			UpdateColumn("member_count", gorm.Expr("member_count + 1")).Error; err != nil {
			return err
		}

		if err := cm.notifier.Write(ctx, tx, models.NotifyTypeSubscribe, userID, 0, &communityID, nil, nil, nil); err != nil {
			cm.logger.Warn("Failed to write subscribe notification", zap.Error(err))
		}
		return nil
	})
}

// Leave removes the user from the community and drops its member count.
func (cm *CounterMaintainer) Leave(ctx context.Context, userID, communityID int64) error {
	return runInTx(ctx, cm.db, cm.logger, func(tx *gorm.DB) error {
		var community models.Community
		if err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&community, communityID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrTargetNotFound
			}
			return err
		}

		res := tx.WithContext(ctx).
			Where("community_id = ? AND user_id = ?", communityID, userID).
			Delete(&models.Membership{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		return tx.WithContext(ctx).
			Model(&models.Community{}).
			Where("id = ?", communityID).
			UpdateColumn("member_count", gorm.Expr("GREATEST(0, member_count - 1)")).Error
	})
}

// IsMember reports whether the user has joined the community.
func (cm *CounterMaintainer) IsMember(ctx context.Context, userID, communityID int64) (bool, error) {
	var count int64
	err := cm.db.DB.WithContext(ctx).
		Model(&models.Membership{}).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
