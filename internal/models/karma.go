package models

import (
	"time"
)

// KarmaLog is the append-only record of karma deltas. The balance on the
// user row is the running sum; history is never re-summed on mutation.
type KarmaLog struct {
	ID         int64     `gorm:"primaryKey;autoIncrement;column:id"`
	UserID     int64     `gorm:"not null;index;column:user_id"`
	Delta      int64     `gorm:"not null;column:delta"`
	TargetType string    `gorm:"type:varchar(8);not null;column:target_type"`
	TargetID   int64     `gorm:"not null;column:target_id"`
	Reason     string    `gorm:"type:varchar(32);not null;column:reason"`
	CreatedAt  time.Time `gorm:"not null;column:created_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID;references:ID"`
}

// TableName specifies the table name for KarmaLog
func (KarmaLog) TableName() string {
	return "thicket_karma_log"
}

// Karma log reason constants
const (
	KarmaReasonVoteCast    = "vote_cast"
	KarmaReasonVoteChanged = "vote_changed"
	KarmaReasonVoteRemoved = "vote_removed"
)
