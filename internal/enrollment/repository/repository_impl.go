package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	enrollmentdomain "github.com/eduhub/api/internal/enrollment/domain"
	"gorm.io/gorm"
)

const enrollmentColumns = `id, student_id, student_name, student_email, course_id, course_title,
	 course_instructor_name, course_price, course_total_lessons, status, progress_percentage,
	 enrolled_at, completed_at, last_accessed_at, payment_amount, payment_method,
	 payment_transaction_id, payment_paid_at, payment_status, rating_stars, rating_comment,
	 rated_at, certificate_id, certificate_url, certificate_issued_at, suspend_reason,
	 metadata, created_at, updated_at`

type repo struct{}

func Provide() enrollmentdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, enrollment *enrollmentdomain.Enrollment) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO enrollments (
			id, student_id, student_name, student_email, course_id, course_title,
			course_instructor_name, course_price, course_total_lessons, status,
			progress_percentage, enrolled_at, completed_at, last_accessed_at,
			payment_amount, payment_method, payment_transaction_id, payment_paid_at,
			payment_status, rating_stars, rating_comment, rated_at, certificate_id,
			certificate_url, certificate_issued_at, suspend_reason, metadata,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		enrollment.ID,
		enrollment.StudentID,
		enrollment.StudentName,
		enrollment.StudentEmail,
		enrollment.CourseID,
		enrollment.CourseTitle,
		enrollment.CourseInstructorName,
		enrollment.CoursePrice,
		enrollment.CourseTotalLessons,
		enrollment.Status,
		enrollment.ProgressPercentage,
		enrollment.EnrolledAt,
		enrollment.CompletedAt,
		enrollment.LastAccessedAt,
		enrollment.PaymentAmount,
		enrollment.PaymentMethod,
		enrollment.PaymentTransactionID,
		enrollment.PaymentPaidAt,
		enrollment.PaymentStatus,
		enrollment.RatingStars,
		enrollment.RatingComment,
		enrollment.RatedAt,
		enrollment.CertificateID,
		enrollment.CertificateURL,
		enrollment.CertificateIssuedAt,
		enrollment.SuspendReason,
		enrollment.Metadata,
		enrollment.CreatedAt,
		enrollment.UpdatedAt,
	).Error
}

func (r *repo) InsertLesson(ctx context.Context, db *gorm.DB, lesson *enrollmentdomain.CompletedLesson) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO enrollment_lessons (
			id, enrollment_id, module_title, lesson_title, lesson_order,
			time_spent_seconds, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		lesson.ID,
		lesson.EnrollmentID,
		lesson.ModuleTitle,
		lesson.LessonTitle,
		lesson.LessonOrder,
		lesson.TimeSpentSeconds,
		lesson.CompletedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*enrollmentdomain.Enrollment, error) {
	var enrollment enrollmentdomain.Enrollment
	err := db.WithContext(ctx).Raw(
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE id = ?`,
		id,
	).Scan(&enrollment).Error
	if err != nil {
		return nil, err
	}
	if enrollment.ID == 0 {
		return nil, nil
	}
	return &enrollment, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*enrollmentdomain.Enrollment, error) {
	var enrollment enrollmentdomain.Enrollment
	err := db.WithContext(ctx).Raw(
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE id = ? FOR UPDATE`,
		id,
	).Scan(&enrollment).Error
	if err != nil {
		return nil, err
	}
	if enrollment.ID == 0 {
		return nil, nil
	}
	return &enrollment, nil
}

func (r *repo) FindByStudentAndCourse(ctx context.Context, db *gorm.DB, studentID, courseID snowflake.ID) (*enrollmentdomain.Enrollment, error) {
	var enrollment enrollmentdomain.Enrollment
	err := db.WithContext(ctx).Raw(
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE student_id = ? AND course_id = ? LIMIT 1`,
		studentID,
		courseID,
	).Scan(&enrollment).Error
	if err != nil {
		return nil, err
	}
	if enrollment.ID == 0 {
		return nil, nil
	}
	return &enrollment, nil
}

func (r *repo) ExistsByStudentAndCourse(ctx context.Context, db *gorm.DB, studentID, courseID snowflake.ID) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM enrollments WHERE student_id = ? AND course_id = ?`,
		studentID,
		courseID,
	).Scan(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) FindByCertificateID(ctx context.Context, db *gorm.DB, certificateID string) (*enrollmentdomain.Enrollment, error) {
	var enrollment enrollmentdomain.Enrollment
	err := db.WithContext(ctx).Raw(
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE certificate_id = ? LIMIT 1`,
		certificateID,
	).Scan(&enrollment).Error
	if err != nil {
		return nil, err
	}
	if enrollment.ID == 0 {
		return nil, nil
	}
	return &enrollment, nil
}

// UpdateLifecycle writes every mutable column in one statement so a
// status change and the fields that justify it land atomically.
func (r *repo) UpdateLifecycle(ctx context.Context, db *gorm.DB, enrollment *enrollmentdomain.Enrollment) error {
	return db.WithContext(ctx).Exec(
		`UPDATE enrollments
		 SET status = ?, progress_percentage = ?, completed_at = ?, last_accessed_at = ?,
		     payment_amount = ?, payment_method = ?, payment_transaction_id = ?,
		     payment_paid_at = ?, payment_status = ?, rating_stars = ?, rating_comment = ?,
		     rated_at = ?, certificate_id = ?, certificate_url = ?, certificate_issued_at = ?,
		     suspend_reason = ?, updated_at = ?
		 WHERE id = ?`,
		enrollment.Status,
		enrollment.ProgressPercentage,
		enrollment.CompletedAt,
		enrollment.LastAccessedAt,
		enrollment.PaymentAmount,
		enrollment.PaymentMethod,
		enrollment.PaymentTransactionID,
		enrollment.PaymentPaidAt,
		enrollment.PaymentStatus,
		enrollment.RatingStars,
		enrollment.RatingComment,
		enrollment.RatedAt,
		enrollment.CertificateID,
		enrollment.CertificateURL,
		enrollment.CertificateIssuedAt,
		enrollment.SuspendReason,
		enrollment.UpdatedAt,
		enrollment.ID,
	).Error
}

func (r *repo) CountLessons(ctx context.Context, db *gorm.DB, enrollmentID snowflake.ID) (int64, error) {
	var count int64
	if err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM enrollment_lessons WHERE enrollment_id = ?`,
		enrollmentID,
	).Scan(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) ListLessons(ctx context.Context, db *gorm.DB, enrollmentID snowflake.ID) ([]enrollmentdomain.CompletedLesson, error) {
	var lessons []enrollmentdomain.CompletedLesson
	err := db.WithContext(ctx).Raw(
		`SELECT id, enrollment_id, module_title, lesson_title, lesson_order,
		 time_spent_seconds, completed_at
		 FROM enrollment_lessons
		 WHERE enrollment_id = ?
		 ORDER BY completed_at ASC, id ASC`,
		enrollmentID,
	).Scan(&lessons).Error
	if err != nil {
		return nil, err
	}
	return lessons, nil
}

func (r *repo) ListByStudent(ctx context.Context, db *gorm.DB, studentID snowflake.ID, statuses []enrollmentdomain.EnrollmentStatus) ([]enrollmentdomain.Enrollment, error) {
	var enrollments []enrollmentdomain.Enrollment

	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE student_id = ?`
	args := []any{studentID}
	if len(statuses) > 0 {
		query += ` AND status IN ?`
		args = append(args, statuses)
	}
	query += ` ORDER BY enrolled_at DESC, id DESC`

	err := db.WithContext(ctx).Raw(query, args...).Scan(&enrollments).Error
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *repo) ListByCourse(ctx context.Context, db *gorm.DB, courseID snowflake.ID, afterID snowflake.ID, limit int) ([]enrollmentdomain.Enrollment, error) {
	var enrollments []enrollmentdomain.Enrollment

	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE course_id = ?`
	args := []any{courseID}
	if afterID != 0 {
		query += ` AND id < ?`
		args = append(args, afterID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	err := db.WithContext(ctx).Raw(query, args...).Scan(&enrollments).Error
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	if err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM enrollments`,
	).Scan(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) CountByStatus(ctx context.Context, db *gorm.DB, status enrollmentdomain.EnrollmentStatus) (int64, error) {
	var count int64
	if err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM enrollments WHERE status = ?`,
		status,
	).Scan(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) CountByCourse(ctx context.Context, db *gorm.DB, courseID snowflake.ID) (int64, error) {
	var count int64
	if err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM enrollments WHERE course_id = ?`,
		courseID,
	).Scan(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) CountByCourseAndStatus(ctx context.Context, db *gorm.DB, courseID snowflake.ID, status enrollmentdomain.EnrollmentStatus) (int64, error) {
	var count int64
	if err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM enrollments WHERE course_id = ? AND status = ?`,
		courseID,
		status,
	).Scan(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) ListInactiveSince(ctx context.Context, db *gorm.DB, threshold time.Time) ([]enrollmentdomain.Enrollment, error) {
	var enrollments []enrollmentdomain.Enrollment
	err := db.WithContext(ctx).Raw(
		`SELECT `+enrollmentColumns+`
		 FROM enrollments
		 WHERE status = ? AND (last_accessed_at IS NULL OR last_accessed_at < ?)
		 ORDER BY last_accessed_at ASC, id ASC`,
		enrollmentdomain.StatusActive,
		threshold,
	).Scan(&enrollments).Error
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *repo) ListActiveWithLowProgress(ctx context.Context, db *gorm.DB, maxProgress float64) ([]enrollmentdomain.Enrollment, error) {
	var enrollments []enrollmentdomain.Enrollment
	err := db.WithContext(ctx).Raw(
		`SELECT `+enrollmentColumns+`
		 FROM enrollments
		 WHERE status = ? AND progress_percentage < ?
		 ORDER BY progress_percentage ASC, id ASC`,
		enrollmentdomain.StatusActive,
		maxProgress,
	).Scan(&enrollments).Error
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *repo) ListEnrolledSince(ctx context.Context, db *gorm.DB, since time.Time) ([]enrollmentdomain.Enrollment, error) {
	var enrollments []enrollmentdomain.Enrollment
	err := db.WithContext(ctx).Raw(
		`SELECT `+enrollmentColumns+`
		 FROM enrollments
		 WHERE enrolled_at >= ?
		 ORDER BY enrolled_at DESC, id DESC`,
		since,
	).Scan(&enrollments).Error
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}
