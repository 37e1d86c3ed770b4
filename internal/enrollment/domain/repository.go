package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, enrollment *Enrollment) error
	InsertLesson(ctx context.Context, db *gorm.DB, lesson *CompletedLesson) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Enrollment, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Enrollment, error)
	FindByStudentAndCourse(ctx context.Context, db *gorm.DB, studentID, courseID snowflake.ID) (*Enrollment, error)
	ExistsByStudentAndCourse(ctx context.Context, db *gorm.DB, studentID, courseID snowflake.ID) (bool, error)
	FindByCertificateID(ctx context.Context, db *gorm.DB, certificateID string) (*Enrollment, error)
	UpdateLifecycle(ctx context.Context, db *gorm.DB, enrollment *Enrollment) error
	CountLessons(ctx context.Context, db *gorm.DB, enrollmentID snowflake.ID) (int64, error)
	ListLessons(ctx context.Context, db *gorm.DB, enrollmentID snowflake.ID) ([]CompletedLesson, error)
	ListByStudent(ctx context.Context, db *gorm.DB, studentID snowflake.ID, statuses []EnrollmentStatus) ([]Enrollment, error)
	ListByCourse(ctx context.Context, db *gorm.DB, courseID snowflake.ID, afterID snowflake.ID, limit int) ([]Enrollment, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
	CountByStatus(ctx context.Context, db *gorm.DB, status EnrollmentStatus) (int64, error)
	CountByCourse(ctx context.Context, db *gorm.DB, courseID snowflake.ID) (int64, error)
	CountByCourseAndStatus(ctx context.Context, db *gorm.DB, courseID snowflake.ID, status EnrollmentStatus) (int64, error)
	ListInactiveSince(ctx context.Context, db *gorm.DB, threshold time.Time) ([]Enrollment, error)
	ListActiveWithLowProgress(ctx context.Context, db *gorm.DB, maxProgress float64) ([]Enrollment, error)
	ListEnrolledSince(ctx context.Context, db *gorm.DB, since time.Time) ([]Enrollment, error)
}
