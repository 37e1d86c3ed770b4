// Package domain contains the read-only user lookup model consumed by
// the enrollment core.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Role classifies what a platform account is allowed to do.
type Role string

const (
	RoleStudent    Role = "STUDENT"
	RoleInstructor Role = "INSTRUCTOR"
	RoleAdmin      Role = "ADMIN"
)

// ParseRole validates a raw role string. Matching is case-insensitive.
func ParseRole(raw string) (Role, error) {
	switch Role(normalize(raw)) {
	case RoleStudent:
		return RoleStudent, nil
	case RoleInstructor:
		return RoleInstructor, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", ErrInvalidRole
	}
}

// CanEnroll reports whether accounts with this role may enroll in
// courses. Instructors can study other instructors' courses; admin-only
// accounts cannot.
func (r Role) CanEnroll() bool {
	return r == RoleStudent || r == RoleInstructor
}

// CanCreateCourses reports whether this role may author courses.
func (r Role) CanCreateCourses() bool {
	return r == RoleInstructor || r == RoleAdmin
}

// User is the account snapshot the enrollment core reads. Account
// management itself lives outside this service.
type User struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"not null" json:"name"`
	Email        string       `gorm:"not null" json:"email"`
	PasswordHash string       `gorm:"not null" json:"-"`
	Role         Role         `gorm:"type:text;not null" json:"role"`
	IsActive     bool         `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

func normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
