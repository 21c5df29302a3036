package models

import (
	"database/sql"
	"time"
)

// MaxCommentDepth bounds comment nesting; replies below this are rejected.
const MaxCommentDepth = 5

// Comment represents a threaded comment. Path is the materialized ancestor
// chain root-to-self ("12/57/90"); Depth always equals the number of path
// segments minus one. Vote aggregates are owned by the aggregate maintainer.
type Comment struct {
	ID        int64         `gorm:"primaryKey;autoIncrement;column:id"`
	PostID    int64         `gorm:"not null;index;column:post_id"`
	AuthorID  int64         `gorm:"not null;index;column:author_id"`
	ParentID  sql.NullInt64 `gorm:"column:parent_id"`
	Content   string        `gorm:"type:text;not null;column:content"`
	Depth     int16         `gorm:"type:smallint;not null;default:0;column:depth"`
	Path      string        `gorm:"type:varchar(128);not null;index;column:path"`
	CreatedAt time.Time     `gorm:"not null;column:created_at"`

	// Derived vote aggregates
	Score     int64 `gorm:"not null;default:0;column:score"`
	Upvotes   int64 `gorm:"not null;default:0;column:upvotes"`
	Downvotes int64 `gorm:"not null;default:0;column:downvotes"`

	// Flags
	IsDeleted   bool `gorm:"not null;default:false;column:is_deleted"`
	IsCollapsed bool `gorm:"not null;default:false;column:is_collapsed"`

	// Relationships
	Post   *Post    `gorm:"foreignKey:PostID;references:ID"`
	Author *User    `gorm:"foreignKey:AuthorID;references:ID"`
	Parent *Comment `gorm:"foreignKey:ParentID;references:ID"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "thicket_comments"
}
