package models

import "time"

// Follow is a directed edge: FollowerID follows FolloweeID. Both the
// followers and the following lists are read from this one table.
type Follow struct {
	FollowerID string    `json:"follower_id" gorm:"primaryKey;type:varchar(36)"`
	Follower   *Profile  `json:"-" gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE;"`
	FolloweeID string    `json:"followee_id" gorm:"primaryKey;type:varchar(36);index"`
	Followee   *Profile  `json:"-" gorm:"foreignKey:FolloweeID;constraint:OnDelete:CASCADE;"`
	CreatedAt  time.Time `json:"created_at"`
}
