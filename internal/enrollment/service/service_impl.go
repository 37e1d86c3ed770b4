package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/eduhub/api/internal/clock"
	"github.com/eduhub/api/internal/config"
	coursedomain "github.com/eduhub/api/internal/course/domain"
	enrollmentdomain "github.com/eduhub/api/internal/enrollment/domain"
	userdomain "github.com/eduhub/api/internal/user/domain"
	"github.com/eduhub/api/pkg/db"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID     *snowflake.Node
	clock     clock.Clock
	cfgHolder *config.PlatformConfigHolder
	repo      enrollmentdomain.Repository

	usersvc   userdomain.Service
	coursesvc coursedomain.Service
}

type ServiceParam struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	CfgHolder *config.PlatformConfigHolder
	Repo      enrollmentdomain.Repository

	Usersvc   userdomain.Service
	Coursesvc coursedomain.Service
}

func NewService(p ServiceParam) enrollmentdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("enrollment.service"),

		genID:     p.GenID,
		clock:     p.Clock,
		cfgHolder: p.CfgHolder,
		repo:      p.Repo,

		usersvc:   p.Usersvc,
		coursesvc: p.Coursesvc,
	}
}

// Enroll implements domain.Service.
func (s *Service) Enroll(ctx context.Context, req enrollmentdomain.EnrollRequest) (enrollmentdomain.EnrollmentResponse, error) {
	student, err := s.usersvc.GetByID(ctx, req.StudentID)
	if err != nil {
		return enrollmentdomain.EnrollmentResponse{}, err
	}
	if !student.IsActive {
		return enrollmentdomain.EnrollmentResponse{}, enrollmentdomain.ErrStudentInactive
	}
	if !student.Role.CanEnroll() {
		return enrollmentdomain.EnrollmentResponse{}, enrollmentdomain.ErrRoleCannotEnroll
	}

	course, err := s.coursesvc.GetByID(ctx, req.CourseID)
	if err != nil {
		return enrollmentdomain.EnrollmentResponse{}, err
	}
	if !course.IsActive {
		return enrollmentdomain.EnrollmentResponse{}, enrollmentdomain.ErrCourseInactive
	}
	if course.InstructorID == student.ID {
		return enrollmentdomain.EnrollmentResponse{}, enrollmentdomain.ErrSelfEnrollment
	}

	exists, err := s.repo.ExistsByStudentAndCourse(ctx, s.db, student.ID, course.ID)
	if err != nil {
		return enrollmentdomain.EnrollmentResponse{}, err
	}
	if exists {
		return enrollmentdomain.EnrollmentResponse{}, enrollmentdomain.ErrAlreadyEnrolled
	}

	now := s.clock.Now()
	enrollment := &enrollmentdomain.Enrollment{
		ID:                   s.genID.Generate(),
		StudentID:            student.ID,
		StudentName:          student.Name,
		StudentEmail:         student.Email,
		CourseID:             course.ID,
		CourseTitle:          course.Title,
		CourseInstructorName: course.InstructorName,
		CoursePrice:          course.Price,
		CourseTotalLessons:   course.TotalLessons,
		Status:               enrollmentdomain.StatusPendingPayment,
		EnrolledAt:           now,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	// Free courses skip the payment step entirely: the enrollment goes
	// straight to ACTIVE with a synthetic FREE payment attached.
	if course.IsFree() {
		enrollment.Status = enrollmentdomain.StatusActive
		setPayment(enrollment, 0, "FREE", "FREE_COURSE", enrollmentdomain.PaymentFree, now)
	}

	if err := s.repo.Insert(ctx, s.db, enrollment); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return enrollmentdomain.EnrollmentResponse{}, enrollmentdomain.ErrAlreadyEnrolled
		}
		return enrollmentdomain.EnrollmentResponse{}, err
	}

	s.log.Info("enrollment created",
		zap.String("enrollment_id", enrollment.ID.String()),
		zap.String("student_id", student.ID.String()),
		zap.String("course_id", course.ID.String()),
		zap.String("status", string(enrollment.Status)),
	)

	return s.toResponse(enrollment, nil), nil
}

// ConfirmPayment implements domain.Service.
func (s *Service) ConfirmPayment(ctx context.Context, req enrollmentdomain.ConfirmPaymentRequest) (enrollmentdomain.EnrollmentResponse, error) {
	id, err := s.parseID(req.EnrollmentID, enrollmentdomain.ErrInvalidEnrollment)
	if err != nil {
		return enrollmentdomain.EnrollmentResponse{}, err
	}

	transactionID := strings.TrimSpace(req.TransactionID)
	if transactionID == "" {
		return enrollmentdomain.EnrollmentResponse{}, enrollmentdomain.ErrInvalidEnrollment
	}
	method := strings.TrimSpace(req.Method)
	if method == "" {
		method = "CARD"
	}

	var updated *enrollmentdomain.Enrollment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		enrollment, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if enrollment == nil {
			return enrollmentdomain.ErrEnrollmentNotFound
		}
		if enrollment.Status != enrollmentdomain.StatusPendingPayment {
			return enrollmentdomain.ErrNotPendingPayment
		}

		now := s.clock.Now()
		enrollment.Status = enrollmentdomain.StatusActive
		setPayment(enrollment, enrollment.CoursePrice, method, transactionID, enrollmentdomain.PaymentPaid, now)
		enrollment.UpdatedAt = now

		if err := s.repo.UpdateLifecycle(ctx, tx, enrollment); err != nil {
			return err
		}

		updated = enrollment
		return nil
	})
	if err != nil {
		return enrollmentdomain.EnrollmentResponse{}, err
	}

	s.log.Info("payment confirmed",
		zap.String("enrollment_id", updated.ID.String()),
		zap.String("transaction_id", transactionID),
	)

	return s.respond(ctx, updated)
}

// CompleteLesson implements domain.Service.
func (s *Service) CompleteLesson(ctx context.Context, req enrollmentdomain.CompleteLessonRequest) (enrollmentdomain.EnrollmentResponse, error) {
	id, err := s.parseID(req.EnrollmentID, enrollmentdomain.ErrInvalidEnrollment)
	if err != nil {
		return enrollmentdomain.EnrollmentResponse{}, err
	}

	lessonTitle := strings.TrimSpace(req.LessonTitle)
	if lessonTitle == "" {
		return enrollmentdomain.EnrollmentResponse{}, enrollmentdomain.ErrInvalidLessonTitle
	}

	var (
		updated *enrollmentdomain.Enrollment
		lessons []enrollmentdomain.CompletedLesson
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		enrollment, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if enrollment == nil {
			return enrollmentdomain.ErrEnrollmentNotFound
		}
		if !enrollment.Status.CanStudy() {
			return enrollmentdomain.ErrNotStudiable
		}

		now := s.clock.Now()
		lesson := &enrollmentdomain.CompletedLesson{
			ID:               s.genID.Generate(),
			EnrollmentID:     enrollment.ID,
			ModuleTitle:      strings.TrimSpace(req.ModuleTitle),
			LessonTitle:      lessonTitle,
			LessonOrder:      req.LessonOrder,
			TimeSpentSeconds: req.TimeSpentSeconds,
			CompletedAt:      now,
		}
		if err := s.repo.InsertLesson(ctx, tx, lesson); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return enrollmentdomain.ErrDuplicateLesson
			}
			return err
		}

		count, err := s.repo.CountLessons(ctx, tx, enrollment.ID)
		if err != nil {
			return err
		}

		enrollment.ProgressPercentage = enrollmentdomain.Progress(int(count), enrollment.CourseTotalLessons)
		enrollment.LastAccessedAt = nullTime(now)
		enrollment.UpdatedAt = now

		// The COMPLETED transition and its timestamp always land
		// together with the progress value that caused them.
		if enrollmentdomain.ProgressComplete(enrollment.ProgressPercentage) {
			enrollment.Status = enrollmentdomain.StatusCompleted
			if !enrollment.CompletedAt.Valid {
				enrollment.CompletedAt = nullTime(now)
			}
		}

		if err := s.repo.UpdateLifecycle(ctx, tx, enrollment); err != nil {
			return err
		}

		lessons, err = s.repo.ListLessons(ctx, tx, enrollment.ID)
		if err != nil {
			return err
		}

		updated = enrollment
		return nil
	})
	if err != nil {
		return enrollmentdomain.EnrollmentResponse{}, err
	}

	s.log.Info("lesson completed",
		zap.String("enrollment_id", updated.ID.String()),
		zap.String("lesson_title", lessonTitle),
		zap.Float64("progress", updated.ProgressPercentage),
	)

	return s.toResponse(updated, lessons), nil
}

// CompleteCourse implements domain.Service.
func (s *Service) CompleteCourse(ctx context.Context, req enrollmentdomain.CompleteCourseRequest) (enrollmentdomain.EnrollmentResponse, error) {
	id, err := s.parseID(req.EnrollmentID, enrollmentdomain.ErrInvalidEnrollment)
	if err != nil {
		return enrollmentdomain.EnrollmentResponse{}, err
	}

	var updated *enrollmentdomain.Enrollment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		enrollment, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if enrollment == nil {
			return enrollmentdomain.ErrEnrollmentNotFound
		}
		if !enrollment.IsCompleted() {
			return enrollmentdomain.ErrNotCompleted
		}

		if enrollment.HasCertificate() && !req.Reissue {
			updated = enrollment
			return nil
		}

		now := s.clock.Now()
		certID := "CERT-" + ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()
		base := strings.TrimRight(s.cfgHolder.Get().Certificate.BaseURL, "/")

		enrollment.Status = enrollmentdomain.StatusCompleted
		if !enrollment.CompletedAt.Valid {
			enrollment.CompletedAt = nullTime(now)
		}
		enrollment.CertificateID = nullString(certID)
		enrollment.CertificateURL = nullString(base + "/" + certID + ".pdf")
		enrollment.CertificateIssuedAt = nullTime(now)
		enrollment.UpdatedAt = now

		if err := s.repo.UpdateLifecycle(ctx, tx, enrollment); err != nil {
			return err
		}

		s.log.Info("certificate issued",
			zap.String("enrollment_id", enrollment.ID.String()),
			zap.String("certificate_id", certID),
		)

		updated = enrollment
		return nil
	})
	if err != nil {
		return enrollmentdomain.EnrollmentResponse{}, err
	}

	return s.respond(ctx, updated)
}

// RateCourse implements domain.Service.
func (s *Service) RateCourse(ctx context.Context, req enrollmentdomain.RateCourseRequest) (enrollmentdomain.EnrollmentResponse, error) {
	id, err := s.parseID(req.EnrollmentID, enrollmentdomain.ErrInvalidEnrollment)
	if err != nil {
		return enrollmentdomain.EnrollmentResponse{}, err
	}

	minProgress := s.cfgHolder.Get().Rating.MinProgressPercent

	var updated *enrollmentdomain.Enrollment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		enrollment, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if enrollment == nil {
			return enrollmentdomain.ErrEnrollmentNotFound
		}
		// The progress gate is checked before the stars value so a
		// too-early rating always reports insufficient progress.
		if enrollment.ProgressPercentage < minProgress {
			return enrollmentdomain.ErrInsufficientProgress
		}
		if req.Stars < 1 || req.Stars > 5 {
			return enrollmentdomain.ErrInvalidStars
		}

		now := s.clock.Now()
		enrollment.RatingStars = nullInt16(int16(req.Stars))
		enrollment.RatingComment = nullString(strings.TrimSpace(req.Comment))
		enrollment.RatedAt = nullTime(now)
		enrollment.UpdatedAt = now

		if err := s.repo.UpdateLifecycle(ctx, tx, enrollment); err != nil {
			return err
		}

		updated = enrollment
		return nil
	})
	if err != nil {
		return enrollmentdomain.EnrollmentResponse{}, err
	}

	s.log.Info("course rated",
		zap.String("enrollment_id", updated.ID.String()),
		zap.Int("stars", req.Stars),
	)

	return s.respond(ctx, updated)
}

// UpdateLastAccess implements domain.Service.
func (s *Service) UpdateLastAccess(ctx context.Context, enrollmentID string) (enrollmentdomain.EnrollmentResponse, error) {
	id, err := s.parseID(enrollmentID, enrollmentdomain.ErrInvalidEnrollment)
	if err != nil {
		return enrollmentdomain.EnrollmentResponse{}, err
	}

	var updated *enrollmentdomain.Enrollment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		enrollment, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if enrollment == nil {
			return enrollmentdomain.ErrEnrollmentNotFound
		}

		// Access tracking stamps every status; only studying is gated.
		now := s.clock.Now()
		enrollment.LastAccessedAt = nullTime(now)
		enrollment.UpdatedAt = now

		if err := s.repo.UpdateLifecycle(ctx, tx, enrollment); err != nil {
			return err
		}

		updated = enrollment
		return nil
	})
	if err != nil {
		return enrollmentdomain.EnrollmentResponse{}, err
	}

	return s.respond(ctx, updated)
}

// Suspend implements domain.Service.
func (s *Service) Suspend(ctx context.Context, req enrollmentdomain.SuspendRequest) (enrollmentdomain.EnrollmentResponse, error) {
	id, err := s.parseID(req.EnrollmentID, enrollmentdomain.ErrInvalidEnrollment)
	if err != nil {
		return enrollmentdomain.EnrollmentResponse{}, err
	}

	var updated *enrollmentdomain.Enrollment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		enrollment, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if enrollment == nil {
			return enrollmentdomain.ErrEnrollmentNotFound
		}

		now := s.clock.Now()
		enrollment.Status = enrollmentdomain.StatusSuspended
		enrollment.SuspendReason = nullString(strings.TrimSpace(req.Reason))
		enrollment.UpdatedAt = now

		if err := s.repo.UpdateLifecycle(ctx, tx, enrollment); err != nil {
			return err
		}

		updated = enrollment
		return nil
	})
	if err != nil {
		return enrollmentdomain.EnrollmentResponse{}, err
	}

	s.log.Info("enrollment suspended",
		zap.String("enrollment_id", updated.ID.String()),
		zap.String("reason", req.Reason),
	)

	return s.respond(ctx, updated)
}

// Reactivate implements domain.Service.
func (s *Service) Reactivate(ctx context.Context, enrollmentID string) (enrollmentdomain.EnrollmentResponse, error) {
	id, err := s.parseID(enrollmentID, enrollmentdomain.ErrInvalidEnrollment)
	if err != nil {
		return enrollmentdomain.EnrollmentResponse{}, err
	}

	var (
		updated     *enrollmentdomain.Enrollment
		reactivated bool
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		enrollment, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if enrollment == nil {
			return enrollmentdomain.ErrEnrollmentNotFound
		}
		// Nothing to undo unless the enrollment is suspended; the
		// current record is returned unchanged.
		if enrollment.Status != enrollmentdomain.StatusSuspended {
			updated = enrollment
			return nil
		}

		now := s.clock.Now()
		enrollment.Status = enrollmentdomain.StatusActive
		enrollment.SuspendReason = nullString("")
		enrollment.UpdatedAt = now

		if err := s.repo.UpdateLifecycle(ctx, tx, enrollment); err != nil {
			return err
		}

		updated = enrollment
		reactivated = true
		return nil
	})
	if err != nil {
		return enrollmentdomain.EnrollmentResponse{}, err
	}

	if reactivated {
		s.log.Info("enrollment reactivated", zap.String("enrollment_id", updated.ID.String()))
	}

	return s.respond(ctx, updated)
}

// Cancel implements domain.Service.
func (s *Service) Cancel(ctx context.Context, enrollmentID string) (enrollmentdomain.EnrollmentResponse, error) {
	id, err := s.parseID(enrollmentID, enrollmentdomain.ErrInvalidEnrollment)
	if err != nil {
		return enrollmentdomain.EnrollmentResponse{}, err
	}

	var updated *enrollmentdomain.Enrollment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		enrollment, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if enrollment == nil {
			return enrollmentdomain.ErrEnrollmentNotFound
		}

		now := s.clock.Now()
		enrollment.Status = enrollmentdomain.StatusCancelled
		enrollment.UpdatedAt = now

		if err := s.repo.UpdateLifecycle(ctx, tx, enrollment); err != nil {
			return err
		}

		updated = enrollment
		return nil
	})
	if err != nil {
		return enrollmentdomain.EnrollmentResponse{}, err
	}

	s.log.Info("enrollment cancelled", zap.String("enrollment_id", updated.ID.String()))

	return s.respond(ctx, updated)
}

func (s *Service) parseID(raw string, invalidErr error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, invalidErr
	}
	return id, nil
}
