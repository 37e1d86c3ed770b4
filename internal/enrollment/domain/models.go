// Package domain contains the enrollment lifecycle models: the record
// linking one learner to one course plus its progress, payment, rating
// and certificate state.
package domain

import (
	"database/sql"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// EnrollmentStatus represents lifecycle states for an enrollment.
type EnrollmentStatus string

const (
	StatusPendingPayment EnrollmentStatus = "PENDING_PAYMENT"
	StatusActive         EnrollmentStatus = "ACTIVE"
	StatusCompleted      EnrollmentStatus = "COMPLETED"
	StatusSuspended      EnrollmentStatus = "SUSPENDED"
	StatusCancelled      EnrollmentStatus = "CANCELLED"
	// StatusExpired is reserved for time-based expiry policies. No
	// operation transitions into it today.
	StatusExpired EnrollmentStatus = "EXPIRED"
)

// ParseEnrollmentStatus validates a raw status string. Matching is
// case-insensitive.
func ParseEnrollmentStatus(raw string) (EnrollmentStatus, error) {
	switch EnrollmentStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case StatusPendingPayment:
		return StatusPendingPayment, nil
	case StatusActive:
		return StatusActive, nil
	case StatusCompleted:
		return StatusCompleted, nil
	case StatusSuspended:
		return StatusSuspended, nil
	case StatusCancelled:
		return StatusCancelled, nil
	case StatusExpired:
		return StatusExpired, nil
	default:
		return "", ErrInvalidStatus
	}
}

// CanStudy reports whether lessons may be completed in this status.
func (s EnrollmentStatus) CanStudy() bool {
	return s == StatusActive
}

// IsTerminal reports whether the enrollment has reached a final state.
func (s EnrollmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// PaymentStatus represents the state of the payment attached to an
// enrollment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentPaid      PaymentStatus = "PAID"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
	PaymentCancelled PaymentStatus = "CANCELLED"
	PaymentFree      PaymentStatus = "FREE"
)

// ParsePaymentStatus validates a raw payment status string.
func ParsePaymentStatus(raw string) (PaymentStatus, error) {
	switch PaymentStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case PaymentPending:
		return PaymentPending, nil
	case PaymentPaid:
		return PaymentPaid, nil
	case PaymentFailed:
		return PaymentFailed, nil
	case PaymentRefunded:
		return PaymentRefunded, nil
	case PaymentCancelled:
		return PaymentCancelled, nil
	case PaymentFree:
		return PaymentFree, nil
	default:
		return "", ErrInvalidPaymentStatus
	}
}

// AllowsAccess reports whether the payment state grants course access.
func (s PaymentStatus) AllowsAccess() bool {
	return s == PaymentPaid || s == PaymentFree
}

// Enrollment captures one learner's relationship to one course. The
// student_* and course_* columns are snapshots taken at enrollment time
// and are stale by design; they never track later edits to the source
// user or course records.
type Enrollment struct {
	ID                   snowflake.ID      `gorm:"primaryKey"`
	StudentID            snowflake.ID      `gorm:"not null;index"`
	StudentName          string            `gorm:"not null"`
	StudentEmail         string            `gorm:"not null"`
	CourseID             snowflake.ID      `gorm:"not null;index"`
	CourseTitle          string            `gorm:"not null"`
	CourseInstructorName string            `gorm:"not null"`
	CoursePrice          float64           `gorm:"not null;default:0"`
	CourseTotalLessons   int               `gorm:"not null;default:0"`
	Status               EnrollmentStatus  `gorm:"type:text;not null"`
	ProgressPercentage   float64           `gorm:"not null;default:0"`
	EnrolledAt           time.Time         `gorm:"not null"`
	CompletedAt          sql.NullTime      `gorm:""`
	LastAccessedAt       sql.NullTime      `gorm:""`
	PaymentAmount        sql.NullFloat64   `gorm:""`
	PaymentMethod        sql.NullString    `gorm:"type:text"`
	PaymentTransactionID sql.NullString    `gorm:"type:text"`
	PaymentPaidAt        sql.NullTime      `gorm:""`
	PaymentStatus        sql.NullString    `gorm:"type:text"`
	RatingStars          sql.NullInt16     `gorm:""`
	RatingComment        sql.NullString    `gorm:"type:text"`
	RatedAt              sql.NullTime      `gorm:""`
	CertificateID        sql.NullString    `gorm:"type:text"`
	CertificateURL       sql.NullString    `gorm:"type:text"`
	CertificateIssuedAt  sql.NullTime      `gorm:""`
	SuspendReason        sql.NullString    `gorm:"type:text"`
	Metadata             datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt            time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt            time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Enrollment) TableName() string { return "enrollments" }

// IsCompleted reports whether the course has been fully completed.
func (e *Enrollment) IsCompleted() bool {
	return e.Status == StatusCompleted || e.ProgressPercentage >= 100
}

// HasPayment reports whether a payment is attached.
func (e *Enrollment) HasPayment() bool {
	return e.PaymentStatus.Valid
}

// HasCertificate reports whether a certificate has been issued.
func (e *Enrollment) HasCertificate() bool {
	return e.CertificateID.Valid && e.CertificateID.String != ""
}

// CompletedLesson is one finished lesson within an enrollment. Lesson
// titles are unique per enrollment.
type CompletedLesson struct {
	ID               snowflake.ID `gorm:"primaryKey"`
	EnrollmentID     snowflake.ID `gorm:"not null;index"`
	ModuleTitle      string       `gorm:"not null"`
	LessonTitle      string       `gorm:"not null"`
	LessonOrder      int          `gorm:"not null;default:0"`
	TimeSpentSeconds int          `gorm:"not null;default:0"`
	CompletedAt      time.Time    `gorm:"not null"`
}

// TableName sets the database table name.
func (CompletedLesson) TableName() string { return "enrollment_lessons" }
