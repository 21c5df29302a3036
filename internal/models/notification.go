package models

import (
	"database/sql"
	"time"
)

// Notification represents a notification
type Notification struct {
	ID          int64          `gorm:"primaryKey;autoIncrement;column:id"`
	Type        int16          `gorm:"type:smallint;not null;column:type_id"`
	CreatedAt   time.Time      `gorm:"not null;column:created_at"`
	SrcID       sql.NullInt64  `gorm:"column:src_id"`
	DstID       sql.NullInt64  `gorm:"column:dst_id"`
	CommunityID sql.NullInt64  `gorm:"column:community_id"`
	PostID      sql.NullInt64  `gorm:"column:post_id"`
	CommentID   sql.NullInt64  `gorm:"column:comment_id"`
	Payload     sql.NullString `gorm:"type:text;column:payload"`

	// Relationships
	Src       *User      `gorm:"foreignKey:SrcID;references:ID"`
	Dst       *User      `gorm:"foreignKey:DstID;references:ID"`
	Community *Community `gorm:"foreignKey:CommunityID;references:ID"`
	Post      *Post      `gorm:"foreignKey:PostID;references:ID"`
}

// TableName specifies the table name for Notification
func (Notification) TableName() string {
	return "thicket_notifs"
}

// Notification type constants
const (
	NotifyTypeVote         int16 = 1
	NotifyTypeReply        int16 = 2
	NotifyTypeReplyComment int16 = 3
	NotifyTypeSubscribe    int16 = 4
	NotifyTypePinPost      int16 = 5
	NotifyTypeUnpinPost    int16 = 6
	NotifyTypeLockPost     int16 = 7
	NotifyTypeUnlockPost   int16 = 8
)
