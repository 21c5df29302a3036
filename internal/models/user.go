package models

import (
	"database/sql"
	"time"
)

// User represents a platform user. Karma and content counters are derived
// state owned by the store layer; clients never write them directly.
type User struct {
	ID          int64          `gorm:"primaryKey;autoIncrement;column:id"`
	Username    string         `gorm:"type:varchar(32);not null;uniqueIndex:thicket_users_ux1;column:username"`
	DisplayName sql.NullString `gorm:"type:varchar(64);column:display_name"`
	CreatedAt   time.Time      `gorm:"not null;column:created_at"`

	// Derived reputation, maintained by the karma ledger
	KarmaPost    int64 `gorm:"not null;default:0;column:karma_post"`
	KarmaComment int64 `gorm:"not null;default:0;column:karma_comment"`
	KarmaTotal   int64 `gorm:"not null;default:0;column:karma_total"`

	// Derived content counters
	PostCount    int64 `gorm:"not null;default:0;column:post_count"`
	CommentCount int64 `gorm:"not null;default:0;column:comment_count"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "thicket_users"
}
