// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// UserRole represents the role assigned to a user account.
type UserRole string

const (
	// UserRoleReader is the default role for new accounts.
	UserRoleReader UserRole = "reader"
	// UserRoleAuthor may publish posts.
	UserRoleAuthor UserRole = "author"
	// UserRoleAdmin may manage tags and moderate any content.
	UserRoleAdmin UserRole = "admin"
)

// ValidRole reports whether r is a known role value.
func ValidRole(r UserRole) bool {
	switch r {
	case UserRoleReader, UserRoleAuthor, UserRoleAdmin:
		return true
	}
	return false
}

// MaxSocialLinks caps the number of social links on a profile.
const MaxSocialLinks = 5

// User represents a registered account.
type User struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	Username    string   `gorm:"size:32;uniqueIndex;not null" json:"username"`
	Email       string   `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password    string   `gorm:"not null" json:"-"`
	FirstName   string   `gorm:"size:64" json:"first_name"`
	LastName    string   `gorm:"size:64" json:"last_name"`
	Bio         string   `gorm:"size:500" json:"bio"`
	Avatar      string   `json:"avatar"`
	SocialLinks []string `gorm:"serializer:json" json:"social_links"`
	Role        UserRole `gorm:"type:varchar(16);not null;default:'reader'" json:"role"`
	// FollowerCount is not persisted; computed at query time
	FollowerCount int `gorm:"->" json:"follower_count"`
	// FollowingCount is not persisted; computed at query time
	FollowingCount int `gorm:"->" json:"following_count"`
	// Followed indicates whether the current requesting user follows this user (computed)
	Followed  bool           `gorm:"->" json:"followed"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Posts     []Post         `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}
