package models

import "time"

const (
	ReportTypeComment = "comment"
	ReportTypeProfile = "profile"
)

// Report flags either a comment or a profile, never both.
type Report struct {
	ID                string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ReporterID        string    `json:"-" gorm:"index;type:varchar(36)"`
	Reporter          *Profile  `json:"-" gorm:"foreignKey:ReporterID;constraint:OnDelete:CASCADE;"`
	ReportType        string    `json:"report_type" gorm:"type:varchar(10)"`
	ReportedCommentID *string   `json:"reported_comment,omitempty" gorm:"type:varchar(36)"`
	ReportedComment   *Comment  `json:"-" gorm:"foreignKey:ReportedCommentID;constraint:OnDelete:CASCADE;"`
	ReportedProfileID *string   `json:"reported_profile,omitempty" gorm:"type:varchar(36)"`
	ReportedProfile   *Profile  `json:"-" gorm:"foreignKey:ReportedProfileID;constraint:OnDelete:CASCADE;"`
	Reason            string    `json:"reason" gorm:"type:varchar(255)"`
	IsReviewed        bool      `json:"is_reviewed" gorm:"default:false"`
	CreatedAt         time.Time `json:"created_at"`
}

// UserInquiry is a support request filed by a profile.
type UserInquiry struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProfileID  string    `json:"-" gorm:"index;type:varchar(36)"`
	Profile    *Profile  `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	Subject    string    `json:"subject" gorm:"type:varchar(255)"`
	Content    string    `json:"content" gorm:"type:varchar(255)"`
	IsAnswered bool      `json:"is_answered" gorm:"default:false"`
	CreatedAt  time.Time `json:"created_at"`
}
