package models

import (
	"time"
)

// Community represents a community
type Community struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id"`
	Slug      string    `gorm:"type:varchar(32);not null;uniqueIndex:thicket_communities_ux1;column:slug"`
	Name      string    `gorm:"type:varchar(64);not null;column:name"`
	About     string    `gorm:"type:varchar(512);not null;default:'';column:about"`
	IsNSFW    bool      `gorm:"not null;default:false;column:is_nsfw"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`

	// Derived counters, maintained by the counter maintainer
	MemberCount  int64     `gorm:"not null;default:0;column:member_count"`
	PostCount    int64     `gorm:"not null;default:0;column:post_count"`
	LastActivity time.Time `gorm:"not null;default:'1970-01-01 00:00:00';column:last_activity"`
}

// TableName specifies the table name for Community
func (Community) TableName() string {
	return "thicket_communities"
}

// Moderator represents a community moderator assignment
type Moderator struct {
	CommunityID int64     `gorm:"primaryKey;column:community_id"`
	UserID      int64     `gorm:"primaryKey;column:user_id"`
	Role        int16     `gorm:"type:smallint;not null;default:0;column:role"`
	CreatedAt   time.Time `gorm:"not null;column:created_at"`

	// Relationships
	Community *Community `gorm:"foreignKey:CommunityID;references:ID"`
	User      *User      `gorm:"foreignKey:UserID;references:ID"`
}

// TableName specifies the table name for Moderator
func (Moderator) TableName() string {
	return "thicket_moderators"
}

// Moderator role constants
const (
	RoleMod   int16 = 4
	RoleAdmin int16 = 6
	RoleOwner int16 = 8
)

// Membership represents a user's membership in a community
type Membership struct {
	CommunityID int64     `gorm:"primaryKey;column:community_id"`
	UserID      int64     `gorm:"primaryKey;column:user_id"`
	CreatedAt   time.Time `gorm:"not null;column:created_at"`

	// Relationships
	Community *Community `gorm:"foreignKey:CommunityID;references:ID"`
	User      *User      `gorm:"foreignKey:UserID;references:ID"`
}

// TableName specifies the table name for Membership
func (Membership) TableName() string {
	return "thicket_memberships"
}
