// Package domain contains the read-only course catalog model consumed
// by the enrollment core. Course authoring lives outside this service.
package domain

import (
	"database/sql"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Course struct {
	ID             snowflake.ID   `gorm:"primaryKey" json:"id"`
	Title          string         `gorm:"not null" json:"title"`
	Description    sql.NullString `gorm:"" json:"-"`
	InstructorID   snowflake.ID   `gorm:"not null;index" json:"instructor_id"`
	InstructorName string         `gorm:"not null" json:"instructor_name"`
	Price          float64        `gorm:"not null;default:0" json:"price"`
	TotalLessons   int            `gorm:"not null;default:0" json:"total_lessons"`
	IsActive       bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Course) TableName() string { return "courses" }

// IsFree reports whether enrolling requires no payment.
func (c Course) IsFree() bool { return c.Price == 0 }
