package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role decides which dashboard a user lands on after login.
type Role string

const (
	RoleTeam  Role = "team"
	RoleAdmin Role = "admin"
)

// User represents an account created at sign-up
type User struct {
	ID        string `gorm:"primaryKey;type:varchar(36)" json:"_id"`
	FirstName string `gorm:"not null" json:"firstname"`
	LastName  string `gorm:"not null" json:"lastname"`
	Contact   string `json:"contact,omitempty"`
	Email     string `gorm:"uniqueIndex;not null" json:"email,omitempty"`
	Role      Role   `gorm:"not null;default:'team'" json:"usertype,omitempty"`
	Image     string `json:"image,omitempty"`

	PasswordHash string `gorm:"not null" json:"-"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// FullName is the "first last" form used for display and search.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}
