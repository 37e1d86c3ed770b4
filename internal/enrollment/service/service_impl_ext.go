package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	coursedomain "github.com/eduhub/api/internal/course/domain"
	enrollmentdomain "github.com/eduhub/api/internal/enrollment/domain"
	userdomain "github.com/eduhub/api/internal/user/domain"
	"github.com/eduhub/api/pkg/db/pagination"
)

// GetByID implements domain.Service.
func (s *Service) GetByID(ctx context.Context, enrollmentID string) (enrollmentdomain.EnrollmentResponse, error) {
	id, err := s.parseID(enrollmentID, enrollmentdomain.ErrInvalidEnrollment)
	if err != nil {
		return enrollmentdomain.EnrollmentResponse{}, err
	}

	enrollment, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return enrollmentdomain.EnrollmentResponse{}, err
	}
	if enrollment == nil {
		return enrollmentdomain.EnrollmentResponse{}, enrollmentdomain.ErrEnrollmentNotFound
	}

	lessons, err := s.repo.ListLessons(ctx, s.db, enrollment.ID)
	if err != nil {
		return enrollmentdomain.EnrollmentResponse{}, err
	}

	return s.toResponse(enrollment, lessons), nil
}

// GetByCertificateID implements domain.Service.
func (s *Service) GetByCertificateID(ctx context.Context, certificateID string) (enrollmentdomain.EnrollmentResponse, error) {
	certificateID = strings.TrimSpace(certificateID)
	if certificateID == "" {
		return enrollmentdomain.EnrollmentResponse{}, enrollmentdomain.ErrCertificateNotFound
	}

	enrollment, err := s.repo.FindByCertificateID(ctx, s.db, certificateID)
	if err != nil {
		return enrollmentdomain.EnrollmentResponse{}, err
	}
	if enrollment == nil {
		return enrollmentdomain.EnrollmentResponse{}, enrollmentdomain.ErrCertificateNotFound
	}

	return s.toResponse(enrollment, nil), nil
}

// Check implements domain.Service.
func (s *Service) Check(ctx context.Context, req enrollmentdomain.CheckEnrollmentRequest) (enrollmentdomain.CheckEnrollmentResponse, error) {
	studentID, err := s.parseID(req.StudentID, userdomain.ErrInvalidUser)
	if err != nil {
		return enrollmentdomain.CheckEnrollmentResponse{}, err
	}
	courseID, err := s.parseID(req.CourseID, coursedomain.ErrInvalidCourse)
	if err != nil {
		return enrollmentdomain.CheckEnrollmentResponse{}, err
	}

	enrollment, err := s.repo.FindByStudentAndCourse(ctx, s.db, studentID, courseID)
	if err != nil {
		return enrollmentdomain.CheckEnrollmentResponse{}, err
	}
	if enrollment == nil {
		return enrollmentdomain.CheckEnrollmentResponse{}, nil
	}

	return enrollmentdomain.CheckEnrollmentResponse{
		Enrolled:     true,
		EnrollmentID: enrollment.ID.String(),
	}, nil
}

// ListByStudent implements domain.Service.
func (s *Service) ListByStudent(ctx context.Context, req enrollmentdomain.ListByStudentRequest) ([]enrollmentdomain.EnrollmentResponse, error) {
	studentID, err := s.parseID(req.StudentID, userdomain.ErrInvalidUser)
	if err != nil {
		return nil, err
	}

	var statuses []enrollmentdomain.EnrollmentStatus
	if raw := strings.TrimSpace(req.Status); raw != "" {
		status, err := enrollmentdomain.ParseEnrollmentStatus(raw)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}

	enrollments, err := s.repo.ListByStudent(ctx, s.db, studentID, statuses)
	if err != nil {
		return nil, err
	}

	return s.toResponses(enrollments), nil
}

// ListByCourse implements domain.Service.
func (s *Service) ListByCourse(ctx context.Context, req enrollmentdomain.ListByCourseRequest) (enrollmentdomain.ListEnrollmentsResponse, error) {
	courseID, err := s.parseID(req.CourseID, coursedomain.ErrInvalidCourse)
	if err != nil {
		return enrollmentdomain.ListEnrollmentsResponse{}, err
	}

	limit := int(req.PageSize)
	if limit <= 0 {
		limit = 50
	}
	if limit > 250 {
		limit = 250
	}

	var afterID snowflake.ID
	if token := strings.TrimSpace(req.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return enrollmentdomain.ListEnrollmentsResponse{}, enrollmentdomain.ErrInvalidEnrollment
		}
		afterID, err = s.parseID(cursor.ID, enrollmentdomain.ErrInvalidEnrollment)
		if err != nil {
			return enrollmentdomain.ListEnrollmentsResponse{}, err
		}
	}

	enrollments, err := s.repo.ListByCourse(ctx, s.db, courseID, afterID, limit+1)
	if err != nil {
		return enrollmentdomain.ListEnrollmentsResponse{}, err
	}

	enrollments, pageInfo := pagination.BuildCursorPageInfo(enrollments, limit, func(e enrollmentdomain.Enrollment) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: e.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})

	return enrollmentdomain.ListEnrollmentsResponse{
		PageInfo:    pageInfo,
		Enrollments: s.toResponses(enrollments),
	}, nil
}

// GetStats implements domain.Service.
func (s *Service) GetStats(ctx context.Context) (enrollmentdomain.Stats, error) {
	total, err := s.repo.Count(ctx, s.db)
	if err != nil {
		return enrollmentdomain.Stats{}, err
	}
	active, err := s.repo.CountByStatus(ctx, s.db, enrollmentdomain.StatusActive)
	if err != nil {
		return enrollmentdomain.Stats{}, err
	}
	completed, err := s.repo.CountByStatus(ctx, s.db, enrollmentdomain.StatusCompleted)
	if err != nil {
		return enrollmentdomain.Stats{}, err
	}
	pending, err := s.repo.CountByStatus(ctx, s.db, enrollmentdomain.StatusPendingPayment)
	if err != nil {
		return enrollmentdomain.Stats{}, err
	}

	return enrollmentdomain.Stats{
		Total:           total,
		Active:          active,
		Completed:       completed,
		PendingPayments: pending,
	}, nil
}

// GetCourseStats implements domain.Service.
func (s *Service) GetCourseStats(ctx context.Context, courseID string) (enrollmentdomain.CourseStats, error) {
	id, err := s.parseID(courseID, coursedomain.ErrInvalidCourse)
	if err != nil {
		return enrollmentdomain.CourseStats{}, err
	}

	total, err := s.repo.CountByCourse(ctx, s.db, id)
	if err != nil {
		return enrollmentdomain.CourseStats{}, err
	}
	active, err := s.repo.CountByCourseAndStatus(ctx, s.db, id, enrollmentdomain.StatusActive)
	if err != nil {
		return enrollmentdomain.CourseStats{}, err
	}

	return enrollmentdomain.CourseStats{
		CourseID: id.String(),
		Total:    total,
		Active:   active,
	}, nil
}

// ListInactive implements domain.Service.
func (s *Service) ListInactive(ctx context.Context, days int) ([]enrollmentdomain.EnrollmentResponse, error) {
	if days <= 0 {
		return nil, enrollmentdomain.ErrInvalidDays
	}

	threshold := s.clock.Now().AddDate(0, 0, -days)
	enrollments, err := s.repo.ListInactiveSince(ctx, s.db, threshold)
	if err != nil {
		return nil, err
	}

	return s.toResponses(enrollments), nil
}

// ListLowProgress implements domain.Service.
func (s *Service) ListLowProgress(ctx context.Context, maxProgress float64) ([]enrollmentdomain.EnrollmentResponse, error) {
	if maxProgress <= 0 || maxProgress > 100 {
		return nil, enrollmentdomain.ErrInvalidProgress
	}

	enrollments, err := s.repo.ListActiveWithLowProgress(ctx, s.db, maxProgress)
	if err != nil {
		return nil, err
	}

	return s.toResponses(enrollments), nil
}

// ListRecent implements domain.Service.
func (s *Service) ListRecent(ctx context.Context, days int) ([]enrollmentdomain.EnrollmentResponse, error) {
	if days <= 0 {
		return nil, enrollmentdomain.ErrInvalidDays
	}

	since := s.clock.Now().AddDate(0, 0, -days)
	enrollments, err := s.repo.ListEnrolledSince(ctx, s.db, since)
	if err != nil {
		return nil, err
	}

	return s.toResponses(enrollments), nil
}

// respond builds the full external record, lessons included, so every
// mutation returns the same shape a subsequent GetByID would.
func (s *Service) respond(ctx context.Context, e *enrollmentdomain.Enrollment) (enrollmentdomain.EnrollmentResponse, error) {
	lessons, err := s.repo.ListLessons(ctx, s.db, e.ID)
	if err != nil {
		return enrollmentdomain.EnrollmentResponse{}, err
	}
	return s.toResponse(e, lessons), nil
}

func (s *Service) toResponse(e *enrollmentdomain.Enrollment, lessons []enrollmentdomain.CompletedLesson) enrollmentdomain.EnrollmentResponse {
	resp := enrollmentdomain.EnrollmentResponse{
		ID: e.ID.String(),
		Student: enrollmentdomain.StudentView{
			ID:    e.StudentID.String(),
			Name:  e.StudentName,
			Email: e.StudentEmail,
		},
		Course: enrollmentdomain.CourseView{
			ID:             e.CourseID.String(),
			Title:          e.CourseTitle,
			InstructorName: e.CourseInstructorName,
			Price:          e.CoursePrice,
			TotalLessons:   e.CourseTotalLessons,
		},
		Status:             e.Status,
		ProgressPercentage: e.ProgressPercentage,
		EnrolledAt:         e.EnrolledAt,
		CompletedAt:        timePtr(e.CompletedAt),
		LastAccessedAt:     timePtr(e.LastAccessedAt),
		SuspendReason:      e.SuspendReason.String,
		UpdatedAt:          e.UpdatedAt,
	}

	for _, lesson := range lessons {
		resp.CompletedLessons = append(resp.CompletedLessons, enrollmentdomain.LessonView{
			ModuleTitle:      lesson.ModuleTitle,
			LessonTitle:      lesson.LessonTitle,
			LessonOrder:      lesson.LessonOrder,
			TimeSpentSeconds: lesson.TimeSpentSeconds,
			CompletedAt:      lesson.CompletedAt,
		})
	}

	if e.HasPayment() {
		resp.Payment = &enrollmentdomain.PaymentView{
			AmountPaid:    e.PaymentAmount.Float64,
			Method:        e.PaymentMethod.String,
			TransactionID: e.PaymentTransactionID.String,
			PaidAt:        e.PaymentPaidAt.Time,
			Status:        enrollmentdomain.PaymentStatus(e.PaymentStatus.String),
		}
	}

	if e.RatedAt.Valid {
		resp.Rating = &enrollmentdomain.RatingView{
			Stars:   int(e.RatingStars.Int16),
			Comment: e.RatingComment.String,
			RatedAt: e.RatedAt.Time,
		}
	}

	if e.HasCertificate() {
		resp.Certificate = &enrollmentdomain.CertificateView{
			CertificateID:  e.CertificateID.String,
			CertificateURL: e.CertificateURL.String,
			IssuedAt:       e.CertificateIssuedAt.Time,
		}
	}

	return resp
}

func (s *Service) toResponses(enrollments []enrollmentdomain.Enrollment) []enrollmentdomain.EnrollmentResponse {
	responses := make([]enrollmentdomain.EnrollmentResponse, 0, len(enrollments))
	for i := range enrollments {
		responses = append(responses, s.toResponse(&enrollments[i], nil))
	}
	return responses
}

func setPayment(e *enrollmentdomain.Enrollment, amount float64, method, transactionID string, status enrollmentdomain.PaymentStatus, paidAt time.Time) {
	e.PaymentAmount = sql.NullFloat64{Float64: amount, Valid: true}
	e.PaymentMethod = nullString(method)
	e.PaymentTransactionID = nullString(transactionID)
	e.PaymentPaidAt = nullTime(paidAt)
	e.PaymentStatus = nullString(string(status))
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: true}
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func nullInt16(v int16) sql.NullInt16 {
	return sql.NullInt16{Int16: v, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
