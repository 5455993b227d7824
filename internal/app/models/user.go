package models

import (
	"time"
)

// RoleType represents the role of a user account
type RoleType string

const (
	RoleStudent   RoleType = "STUDENT"
	RoleProfessor RoleType = "PROFESSOR"
	RoleAdmin     RoleType = "ADMIN"
)

// User defines the user model based on the 'users' table
type User struct {
	ID          int64      `json:"id" db:"id" example:"1"`                                                  // Unique identifier for the user
	Email       string     `json:"email" db:"email" example:"ab1234@school.edu"`                            // User's email address
	UNI         string     `json:"uni" db:"uni" example:"ab1234"`                                           // University network identifier (immutable handle)
	Password    string     `json:"-" db:"password"`                                                         // User's hashed password (excluded from JSON)
	RoleType    RoleType   `json:"roleType" db:"role_type" example:"STUDENT"`                               // User's role (STUDENT, PROFESSOR or ADMIN)
	IsActive    bool       `json:"isActive" db:"is_active" example:"true"`                                  // Whether the user account is active
	CreatedAt   time.Time  `json:"createdAt" db:"created_at" example:"2024-01-01T10:00:00Z"`                // Timestamp when the user was created
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at" example:"2024-01-02T15:30:00Z"`                // Timestamp when the user was last updated
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at" example:"2024-04-20T18:00:00Z"` // Timestamp of the last login (nullable)
}
