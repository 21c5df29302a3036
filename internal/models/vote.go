package models

import (
	"time"
)

// Vote target type constants
const (
	TargetPost    = "post"
	TargetComment = "comment"
)

// Vote represents one voter's vote on one target. The composite primary key
// (voter_id, target_id, target_type) enforces the at-most-one-vote invariant
// at the storage layer; changing one's mind updates the row in place. The
// target reference is polymorphic, resolved by target_type in application
// code rather than by a foreign key.
type Vote struct {
	VoterID    int64     `gorm:"primaryKey;column:voter_id"`
	TargetID   int64     `gorm:"primaryKey;column:target_id"`
	TargetType string    `gorm:"primaryKey;type:varchar(8);column:target_type"`
	Value      int16     `gorm:"type:smallint;not null;column:value"`
	CreatedAt  time.Time `gorm:"not null;column:created_at"`
	UpdatedAt  time.Time `gorm:"not null;column:updated_at"`

	// Relationships
	Voter *User `gorm:"foreignKey:VoterID;references:ID"`
}

// TableName specifies the table name for Vote
func (Vote) TableName() string {
	return "thicket_votes"
}
