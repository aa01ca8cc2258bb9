package models

import (
	"time"

	"gorm.io/gorm"
)

// Roles
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Account statuses
const (
	UserPending  = "PENDING"
	UserActive   = "ACTIVE"
	UserInactive = "INACTIVE"
)

type User struct {
	gorm.Model
	Name       string     `json:"name" gorm:"not null"`
	Email      string     `json:"email" gorm:"uniqueIndex;not null"`
	Password   string     `json:"-" gorm:"not null"`
	Role       string     `json:"role" gorm:"default:'USER'"`
	Status     string     `json:"status" gorm:"index;default:'PENDING'"`
	EmployeeID *string    `json:"employee_id" gorm:"uniqueIndex"`
	Area       string     `json:"area"`
	JobTitle   string     `json:"job_title"`
	AvatarURL  string     `json:"avatar_url"`
	LastLogin  *time.Time `json:"last_login"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
