package models

import (
	"time"

	"gorm.io/datatypes"
)

// CategoryScores maps a category id to a score in [1,10].
type CategoryScores map[uint]int

// Comment is a rating comment one profile leaves on another. Only its
// reaction sets change after creation.
type Comment struct {
	ID             string                             `json:"id" gorm:"primaryKey;type:varchar(36)"`
	AuthorID       string                             `json:"-" gorm:"index;type:varchar(36)"`
	Author         *Profile                           `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
	TargetID       string                             `json:"-" gorm:"index;type:varchar(36)"`
	Target         *Profile                           `json:"-" gorm:"foreignKey:TargetID;constraint:OnDelete:CASCADE;"`
	Content        string                             `json:"content" gorm:"type:varchar(255)"`
	IsAnonymous    bool                               `json:"is_anonymous" gorm:"not null"`
	CategoryScores datatypes.JSONType[CategoryScores] `json:"category_scores"`
	Likes          []Profile                          `json:"-" gorm:"many2many:comment_likes;"`
	Dislikes       []Profile                          `json:"-" gorm:"many2many:comment_dislikes;"`
	CreatedAt      time.Time                          `json:"created_at" gorm:"index"`
}

// Scores returns the decoded score map.
func (c *Comment) Scores() CategoryScores {
	return c.CategoryScores.Data()
}
