// Package model contain gorm model for recording data to database
package model

import (
	"time"

	"github.com/google/uuid"
)

// Role values for User.Role
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the authenticated identity that owns generations.
// Password is empty for accounts created through Google OAuth.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	Password  string    `json:"-"`
	Email     *string   `gorm:"uniqueIndex" json:"email"`
	GoogleID  string    `json:"-"`
	Role      string    `gorm:"not null;default:user" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserResponse is returned by the auth endpoints together with an access token.
type UserResponse struct {
	User        User   `json:"user"`
	AccessToken string `json:"access_token"`
}
