package store

import (
	"context"
	"database/sql"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/thicketlabs/thicket/internal/models"
)

// Notifier writes notification rows in the same transaction as the event
// that triggered them. A dropped notification is an acceptable loss, a
// notification for a rolled-back event is not.
type Notifier struct {
	logger *zap.Logger
}

// NewNotifier creates a new notifier
func NewNotifier(logger *zap.Logger) *Notifier {
	return &Notifier{logger: logger}
}

// Write appends one notification row. Optional references are nil when the
// event has no such subject.
func (n *Notifier) Write(ctx context.Context, tx *gorm.DB, typeID int16, srcID, dstID int64, communityID, postID, commentID *int64, payload *string) error {
	notif := &models.Notification{
		Type:        typeID,
		CreatedAt:   nowUTC(),
		SrcID:       sql.NullInt64{Int64: srcID, Valid: srcID != 0},
		DstID:       sql.NullInt64{Int64: dstID, Valid: dstID != 0},
		CommunityID: nullInt64(communityID),
		PostID:      nullInt64(postID),
		CommentID:   nullInt64(commentID),
	}
	if payload != nil {
		notif.Payload = sql.NullString{String: *payload, Valid: true}
	}

	if err := tx.WithContext(ctx).Create(notif).Error; err != nil {
		return err
	}

	n.logger.Debug("Wrote notification",
		zap.Int16("type_id", typeID),
		zap.Int64("src_id", srcID),
		zap.Int64("dst_id", dstID))

	return nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
