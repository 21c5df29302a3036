package models

import (
	"time"
)

// Post type constants
const (
	PostTypeText  = "text"
	PostTypeLink  = "link"
	PostTypeImage = "image"
	PostTypeVideo = "video"
)

// Post represents a post. Vote aggregates (Score, Upvotes, Downvotes,
// HotScore, ControversyScore) are derived from the vote ledger and are
// written only by the aggregate maintainer.
type Post struct {
	ID          int64     `gorm:"primaryKey;autoIncrement;column:id"`
	CommunityID int64     `gorm:"not null;index;column:community_id"`
	AuthorID    int64     `gorm:"not null;index;column:author_id"`
	Title       string    `gorm:"type:varchar(255);not null;column:title"`
	Body        string    `gorm:"type:text;not null;default:'';column:body"`
	Type        string    `gorm:"type:varchar(8);not null;default:'text';column:type"`
	CreatedAt   time.Time `gorm:"not null;column:created_at"`
	UpdatedAt   time.Time `gorm:"not null;column:updated_at"`

	// Derived vote aggregates
	Score            int64   `gorm:"not null;default:0;column:score"`
	Upvotes          int64   `gorm:"not null;default:0;column:upvotes"`
	Downvotes        int64   `gorm:"not null;default:0;column:downvotes"`
	CommentCount     int64   `gorm:"not null;default:0;column:comment_count"`
	HotScore         float64 `gorm:"type:float;not null;default:0;column:hot_score"`
	ControversyScore float64 `gorm:"type:float;not null;default:0;column:controversy_score"`

	// Flags
	IsDeleted bool `gorm:"not null;default:false;column:is_deleted"`
	IsLocked  bool `gorm:"not null;default:false;column:is_locked"`
	IsPinned  bool `gorm:"not null;default:false;column:is_pinned"`
	IsNSFW    bool `gorm:"not null;default:false;column:is_nsfw"`
	IsSpoiler bool `gorm:"not null;default:false;column:is_spoiler"`

	// Relationships
	Community *Community `gorm:"foreignKey:CommunityID;references:ID"`
	Author    *User      `gorm:"foreignKey:AuthorID;references:ID"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "thicket_posts"
}
