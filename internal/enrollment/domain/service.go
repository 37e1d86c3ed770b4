package domain

import (
	"context"
	"errors"
	"time"

	"github.com/eduhub/api/pkg/db/pagination"
)

type EnrollRequest struct {
	StudentID string `json:"student_id"`
	CourseID  string `json:"course_id"`
}

type ConfirmPaymentRequest struct {
	EnrollmentID  string
	TransactionID string `json:"transaction_id"`
	Method        string `json:"payment_method"`
}

type CompleteLessonRequest struct {
	EnrollmentID     string
	ModuleTitle      string `json:"module_title"`
	LessonTitle      string `json:"lesson_title"`
	LessonOrder      int    `json:"lesson_order"`
	TimeSpentSeconds int    `json:"time_spent_seconds"`
}

type CompleteCourseRequest struct {
	EnrollmentID string
	// Reissue forces a fresh certificate id even when one exists.
	// The default is idempotent: an existing certificate is returned
	// untouched.
	Reissue bool
}

type RateCourseRequest struct {
	EnrollmentID string
	Stars        int    `json:"stars"`
	Comment      string `json:"comment"`
}

type SuspendRequest struct {
	EnrollmentID string
	Reason       string `json:"reason"`
}

type CheckEnrollmentRequest struct {
	StudentID string
	CourseID  string
}

type ListByStudentRequest struct {
	StudentID string
	Status    string
}

type ListByCourseRequest struct {
	CourseID  string
	PageToken string
	PageSize  int32
}

type StudentView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type CourseView struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	InstructorName string  `json:"instructor_name"`
	Price          float64 `json:"price"`
	TotalLessons   int     `json:"total_lessons"`
}

type LessonView struct {
	ModuleTitle      string    `json:"module_title"`
	LessonTitle      string    `json:"lesson_title"`
	LessonOrder      int       `json:"lesson_order"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
	CompletedAt      time.Time `json:"completed_at"`
}

type PaymentView struct {
	AmountPaid    float64       `json:"amount_paid"`
	Method        string        `json:"payment_method"`
	TransactionID string        `json:"transaction_id"`
	PaidAt        time.Time     `json:"paid_at"`
	Status        PaymentStatus `json:"status"`
}

type RatingView struct {
	Stars   int       `json:"stars"`
	Comment string    `json:"comment,omitempty"`
	RatedAt time.Time `json:"rated_at"`
}

type CertificateView struct {
	CertificateID  string    `json:"certificate_id"`
	CertificateURL string    `json:"certificate_url"`
	IssuedAt       time.Time `json:"issued_at"`
}

// EnrollmentResponse is the external representation of an enrollment
// record, with the optional column groups folded back into nested
// objects.
type EnrollmentResponse struct {
	ID                 string           `json:"id"`
	Student            StudentView      `json:"student"`
	Course             CourseView       `json:"course"`
	Status             EnrollmentStatus `json:"status"`
	ProgressPercentage float64          `json:"progress_percentage"`
	CompletedLessons   []LessonView     `json:"completed_lessons"`
	EnrolledAt         time.Time        `json:"enrolled_at"`
	CompletedAt        *time.Time       `json:"completed_at,omitempty"`
	LastAccessedAt     *time.Time       `json:"last_accessed_at,omitempty"`
	Payment            *PaymentView     `json:"payment,omitempty"`
	Rating             *RatingView      `json:"rating,omitempty"`
	Certificate        *CertificateView `json:"certificate,omitempty"`
	SuspendReason      string           `json:"suspend_reason,omitempty"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

type ListEnrollmentsResponse struct {
	pagination.PageInfo
	Enrollments []EnrollmentResponse `json:"enrollments"`
}

type CheckEnrollmentResponse struct {
	Enrolled     bool   `json:"enrolled"`
	EnrollmentID string `json:"enrollment_id,omitempty"`
}

// Stats are the simple counts exposed for dashboards.
type Stats struct {
	Total           int64 `json:"total"`
	Active          int64 `json:"active"`
	Completed       int64 `json:"completed"`
	PendingPayments int64 `json:"pending_payments"`
}

type CourseStats struct {
	CourseID string `json:"course_id"`
	Total    int64  `json:"total"`
	Active   int64  `json:"active"`
}

type Service interface {
	Enroll(ctx context.Context, req EnrollRequest) (EnrollmentResponse, error)
	ConfirmPayment(ctx context.Context, req ConfirmPaymentRequest) (EnrollmentResponse, error)
	CompleteLesson(ctx context.Context, req CompleteLessonRequest) (EnrollmentResponse, error)
	CompleteCourse(ctx context.Context, req CompleteCourseRequest) (EnrollmentResponse, error)
	RateCourse(ctx context.Context, req RateCourseRequest) (EnrollmentResponse, error)
	UpdateLastAccess(ctx context.Context, enrollmentID string) (EnrollmentResponse, error)
	Suspend(ctx context.Context, req SuspendRequest) (EnrollmentResponse, error)
	Reactivate(ctx context.Context, enrollmentID string) (EnrollmentResponse, error)
	Cancel(ctx context.Context, enrollmentID string) (EnrollmentResponse, error)

	GetByID(ctx context.Context, enrollmentID string) (EnrollmentResponse, error)
	GetByCertificateID(ctx context.Context, certificateID string) (EnrollmentResponse, error)
	Check(ctx context.Context, req CheckEnrollmentRequest) (CheckEnrollmentResponse, error)
	ListByStudent(ctx context.Context, req ListByStudentRequest) ([]EnrollmentResponse, error)
	ListByCourse(ctx context.Context, req ListByCourseRequest) (ListEnrollmentsResponse, error)
	GetStats(ctx context.Context) (Stats, error)
	GetCourseStats(ctx context.Context, courseID string) (CourseStats, error)
	ListInactive(ctx context.Context, days int) ([]EnrollmentResponse, error)
	ListLowProgress(ctx context.Context, maxProgress float64) ([]EnrollmentResponse, error)
	ListRecent(ctx context.Context, days int) ([]EnrollmentResponse, error)
}

var (
	ErrInvalidEnrollment    = errors.New("invalid_enrollment")
	ErrInvalidStatus        = errors.New("invalid_status")
	ErrInvalidPaymentStatus = errors.New("invalid_payment_status")
	ErrInvalidStars         = errors.New("invalid_stars")
	ErrInvalidLessonTitle   = errors.New("invalid_lesson_title")
	ErrInvalidDays          = errors.New("invalid_days")
	ErrInvalidProgress      = errors.New("invalid_progress")

	ErrEnrollmentNotFound  = errors.New("enrollment_not_found")
	ErrCertificateNotFound = errors.New("certificate_not_found")

	ErrAlreadyEnrolled = errors.New("already_enrolled")
	ErrDuplicateLesson = errors.New("duplicate_lesson")

	ErrRoleCannotEnroll     = errors.New("role_cannot_enroll")
	ErrStudentInactive      = errors.New("student_inactive")
	ErrCourseInactive       = errors.New("course_inactive")
	ErrSelfEnrollment       = errors.New("self_enrollment")
	ErrInsufficientProgress = errors.New("insufficient_progress")

	ErrNotPendingPayment = errors.New("not_pending_payment")
	ErrNotStudiable      = errors.New("enrollment_not_studiable")
	ErrNotCompleted      = errors.New("course_not_completed")
)
