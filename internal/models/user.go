package models

import "time"

// User is the authentication record behind a Profile.
type User struct {
	ID          string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username    string     `json:"username" gorm:"uniqueIndex;type:varchar(20)"`
	Email       string     `json:"email" gorm:"uniqueIndex;type:varchar(50)"`
	Password    string     `json:"-" gorm:"type:varchar(255)"` // bcrypt hash
	FirstName   string     `json:"first_name" gorm:"type:varchar(50)"`
	LastName    string     `json:"last_name" gorm:"type:varchar(50)"`
	IsActive    bool       `json:"is_active" gorm:"default:false"`
	IsStaff     bool       `json:"is_staff" gorm:"default:false"`
	IsSuperuser bool       `json:"is_superuser" gorm:"default:false"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
	Groups      []Group    `json:"-" gorm:"many2many:user_groups;"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Group is a named permission set, e.g. the customer support group.
type Group struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	Name        string       `json:"name" gorm:"uniqueIndex;type:varchar(150)"`
	Permissions []Permission `json:"permissions" gorm:"many2many:group_permissions;"`
	Users       []User       `json:"-" gorm:"many2many:user_groups;"`
}

// Permission is identified by its codename, e.g. "view_report".
type Permission struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Codename string `json:"codename" gorm:"uniqueIndex;type:varchar(100)"`
	Name     string `json:"name" gorm:"type:varchar(255)"`
}
