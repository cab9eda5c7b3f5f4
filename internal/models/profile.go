package models

import "time"

// Profile is the application-level user record.
type Profile struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID      string    `json:"-" gorm:"uniqueIndex;type:varchar(36)"`
	User        *User     `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	Username    string    `json:"username" gorm:"uniqueIndex;type:varchar(20)"`
	Email       string    `json:"email" gorm:"uniqueIndex;type:varchar(50)"`
	PhoneNumber string    `json:"phone_number" gorm:"uniqueIndex;type:varchar(10)"`
	FirstName   string    `json:"first_name" gorm:"type:varchar(50)"`
	LastName    string    `json:"last_name" gorm:"type:varchar(50)"`
	Bio         string    `json:"bio"`
	BirthDate   time.Time `json:"birth_date" gorm:"type:date"`
	UniqueID    string    `json:"unique_id" gorm:"uniqueIndex;type:varchar(27)"`
	IsActive    bool      `json:"is_active" gorm:"default:false"`

	// OTP state. Never serialized.
	OTP       string     `json:"-" gorm:"column:otp;type:varchar(6)"`
	OTPExpiry *time.Time `json:"-" gorm:"column:otp_expiry"`
	MaxOTPTry int        `json:"-" gorm:"column:max_otp_try"`
	OTPMaxOut *time.Time `json:"-" gorm:"column:otp_max_out"`

	CategoryScores []ProfileCategoryScore `json:"-" gorm:"foreignKey:ProfileID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName joins first and last name.
func (p *Profile) FullName() string {
	return p.FirstName + " " + p.LastName
}

// ProfileCategoryScore is the running aggregate of one category on one profile.
// Rows are only ever incremented.
type ProfileCategoryScore struct {
	ProfileID    string `json:"profile_id" gorm:"primaryKey;type:varchar(36)"`
	CategoryID   uint   `json:"category_id" gorm:"primaryKey"`
	TotalScore   int    `json:"total_score" gorm:"not null;default:0"`
	CommentCount int    `json:"comment_count" gorm:"not null;default:0"`
}

// Category is a fixed rating dimension.
type Category struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;type:varchar(255)"`
}
