package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/eduhub/api/internal/clock"
	"github.com/eduhub/api/internal/config"
	coursedomain "github.com/eduhub/api/internal/course/domain"
	enrollmentdomain "github.com/eduhub/api/internal/enrollment/domain"
	userdomain "github.com/eduhub/api/internal/user/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// In-memory repository. The service only talks through the interface,
// so lifecycle tests do not depend on a postgres instance.
type fakeRepo struct {
	mu          sync.Mutex
	enrollments map[snowflake.ID]enrollmentdomain.Enrollment
	lessons     []enrollmentdomain.CompletedLesson
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{enrollments: make(map[snowflake.ID]enrollmentdomain.Enrollment)}
}

func (r *fakeRepo) Insert(ctx context.Context, db *gorm.DB, e *enrollmentdomain.Enrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.enrollments {
		if existing.StudentID == e.StudentID && existing.CourseID == e.CourseID {
			return gorm.ErrDuplicatedKey
		}
	}
	r.enrollments[e.ID] = *e
	return nil
}

func (r *fakeRepo) InsertLesson(ctx context.Context, db *gorm.DB, lesson *enrollmentdomain.CompletedLesson) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.lessons {
		if existing.EnrollmentID == lesson.EnrollmentID && existing.LessonTitle == lesson.LessonTitle {
			return gorm.ErrDuplicatedKey
		}
	}
	r.lessons = append(r.lessons, *lesson)
	return nil
}

func (r *fakeRepo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*enrollmentdomain.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.enrollments[id]; ok {
		copied := e
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeRepo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*enrollmentdomain.Enrollment, error) {
	return r.FindByID(ctx, db, id)
}

func (r *fakeRepo) FindByStudentAndCourse(ctx context.Context, db *gorm.DB, studentID, courseID snowflake.ID) (*enrollmentdomain.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			copied := e
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) ExistsByStudentAndCourse(ctx context.Context, db *gorm.DB, studentID, courseID snowflake.ID) (bool, error) {
	e, err := r.FindByStudentAndCourse(ctx, db, studentID, courseID)
	return e != nil, err
}

func (r *fakeRepo) FindByCertificateID(ctx context.Context, db *gorm.DB, certificateID string) (*enrollmentdomain.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.enrollments {
		if e.CertificateID.Valid && e.CertificateID.String == certificateID {
			copied := e
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) UpdateLifecycle(ctx context.Context, db *gorm.DB, e *enrollmentdomain.Enrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enrollments[e.ID] = *e
	return nil
}

func (r *fakeRepo) CountLessons(ctx context.Context, db *gorm.DB, enrollmentID snowflake.ID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, lesson := range r.lessons {
		if lesson.EnrollmentID == enrollmentID {
			count++
		}
	}
	return count, nil
}

func (r *fakeRepo) ListLessons(ctx context.Context, db *gorm.DB, enrollmentID snowflake.ID) ([]enrollmentdomain.CompletedLesson, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var lessons []enrollmentdomain.CompletedLesson
	for _, lesson := range r.lessons {
		if lesson.EnrollmentID == enrollmentID {
			lessons = append(lessons, lesson)
		}
	}
	sort.Slice(lessons, func(i, j int) bool { return lessons[i].CompletedAt.Before(lessons[j].CompletedAt) })
	return lessons, nil
}

func (r *fakeRepo) ListByStudent(ctx context.Context, db *gorm.DB, studentID snowflake.ID, statuses []enrollmentdomain.EnrollmentStatus) ([]enrollmentdomain.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []enrollmentdomain.Enrollment
	for _, e := range r.enrollments {
		if e.StudentID != studentID {
			continue
		}
		if len(statuses) > 0 {
			matched := false
			for _, status := range statuses {
				if e.Status == status {
					matched = true
				}
			}
			if !matched {
				continue
			}
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeRepo) ListByCourse(ctx context.Context, db *gorm.DB, courseID snowflake.ID, afterID snowflake.ID, limit int) ([]enrollmentdomain.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []enrollmentdomain.Enrollment
	for _, e := range r.enrollments {
		if e.CourseID != courseID {
			continue
		}
		if afterID != 0 && e.ID >= afterID {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRepo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.enrollments)), nil
}

func (r *fakeRepo) CountByStatus(ctx context.Context, db *gorm.DB, status enrollmentdomain.EnrollmentStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, e := range r.enrollments {
		if e.Status == status {
			count++
		}
	}
	return count, nil
}

func (r *fakeRepo) CountByCourse(ctx context.Context, db *gorm.DB, courseID snowflake.ID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, e := range r.enrollments {
		if e.CourseID == courseID {
			count++
		}
	}
	return count, nil
}

func (r *fakeRepo) CountByCourseAndStatus(ctx context.Context, db *gorm.DB, courseID snowflake.ID, status enrollmentdomain.EnrollmentStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, e := range r.enrollments {
		if e.CourseID == courseID && e.Status == status {
			count++
		}
	}
	return count, nil
}

func (r *fakeRepo) ListInactiveSince(ctx context.Context, db *gorm.DB, threshold time.Time) ([]enrollmentdomain.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []enrollmentdomain.Enrollment
	for _, e := range r.enrollments {
		if e.Status != enrollmentdomain.StatusActive {
			continue
		}
		if !e.LastAccessedAt.Valid || e.LastAccessedAt.Time.Before(threshold) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListActiveWithLowProgress(ctx context.Context, db *gorm.DB, maxProgress float64) ([]enrollmentdomain.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []enrollmentdomain.Enrollment
	for _, e := range r.enrollments {
		if e.Status == enrollmentdomain.StatusActive && e.ProgressPercentage < maxProgress {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListEnrolledSince(ctx context.Context, db *gorm.DB, since time.Time) ([]enrollmentdomain.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []enrollmentdomain.Enrollment
	for _, e := range r.enrollments {
		if !e.EnrolledAt.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

type mockUserService struct {
	users map[string]userdomain.User
}

func (m *mockUserService) GetByID(ctx context.Context, id string) (userdomain.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return userdomain.User{}, userdomain.ErrUserNotFound
}

type mockCourseService struct {
	courses map[string]coursedomain.Course
}

func (m *mockCourseService) GetByID(ctx context.Context, id string) (coursedomain.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return coursedomain.Course{}, coursedomain.ErrCourseNotFound
}

type testEnv struct {
	svc     enrollmentdomain.Service
	clk     *clock.FakeClock
	repo    *fakeRepo
	node    *snowflake.Node
	users   *mockUserService
	courses *mockCourseService
	holder  *config.PlatformConfigHolder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	holder := &config.PlatformConfigHolder{}
	holder.Store(config.DefaultPlatformConfig())

	env := &testEnv{
		clk:     clock.NewFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)),
		repo:    newFakeRepo(),
		node:    node,
		users:   &mockUserService{users: make(map[string]userdomain.User)},
		courses: &mockCourseService{courses: make(map[string]coursedomain.Course)},
		holder:  holder,
	}

	env.svc = NewService(ServiceParam{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Clock:     env.clk,
		CfgHolder: holder,
		Repo:      env.repo,
		Usersvc:   env.users,
		Coursesvc: env.courses,
	})

	return env
}

func (env *testEnv) addUser(name string, role userdomain.Role, active bool) userdomain.User {
	user := userdomain.User{
		ID:       env.node.Generate(),
		Name:     name,
		Email:    strings.ToLower(name) + "@example.com",
		Role:     role,
		IsActive: active,
	}
	env.users.users[user.ID.String()] = user
	return user
}

func (env *testEnv) addCourse(title string, instructor userdomain.User, price float64, totalLessons int, active bool) coursedomain.Course {
	course := coursedomain.Course{
		ID:             env.node.Generate(),
		Title:          title,
		InstructorID:   instructor.ID,
		InstructorName: instructor.Name,
		Price:          price,
		TotalLessons:   totalLessons,
		IsActive:       active,
	}
	env.courses.courses[course.ID.String()] = course
	return course
}

func (env *testEnv) enroll(t *testing.T, student userdomain.User, course coursedomain.Course) enrollmentdomain.EnrollmentResponse {
	t.Helper()
	resp, err := env.svc.Enroll(context.Background(), enrollmentdomain.EnrollRequest{
		StudentID: student.ID.String(),
		CourseID:  course.ID.String(),
	})
	require.NoError(t, err)
	return resp
}

func TestEnroll(t *testing.T) {
	ctx := context.Background()

	t.Run("paid course starts pending payment", func(t *testing.T) {
		env := newTestEnv(t)
		instructor := env.addUser("Ines", userdomain.RoleInstructor, true)
		student := env.addUser("Sam", userdomain.RoleStudent, true)
		course := env.addCourse("Go Basics", instructor, 49.90, 10, true)

		resp := env.enroll(t, student, course)

		assert.Equal(t, enrollmentdomain.StatusPendingPayment, resp.Status)
		assert.Nil(t, resp.Payment)
		assert.Equal(t, float64(0), resp.ProgressPercentage)
		assert.Equal(t, student.Name, resp.Student.Name)
		assert.Equal(t, course.Title, resp.Course.Title)
		assert.Equal(t, env.clk.Now(), resp.EnrolledAt)
	})

	t.Run("free course activates immediately", func(t *testing.T) {
		env := newTestEnv(t)
		instructor := env.addUser("Ines", userdomain.RoleInstructor, true)
		student := env.addUser("Sam", userdomain.RoleStudent, true)
		course := env.addCourse("Free Intro", instructor, 0, 5, true)

		resp := env.enroll(t, student, course)

		assert.Equal(t, enrollmentdomain.StatusActive, resp.Status)
		require.NotNil(t, resp.Payment)
		assert.Equal(t, enrollmentdomain.PaymentFree, resp.Payment.Status)
		assert.Equal(t, "FREE", resp.Payment.Method)
		assert.Equal(t, "FREE_COURSE", resp.Payment.TransactionID)
		assert.Equal(t, float64(0), resp.Payment.AmountPaid)
	})

	t.Run("instructor may enroll in another instructor's course", func(t *testing.T) {
		env := newTestEnv(t)
		instructor := env.addUser("Ines", userdomain.RoleInstructor, true)
		other := env.addUser("Olga", userdomain.RoleInstructor, true)
		course := env.addCourse("Advanced Go", instructor, 10, 4, true)

		resp := env.enroll(t, other, course)
		assert.Equal(t, enrollmentdomain.StatusPendingPayment, resp.Status)
	})

	t.Run("admin cannot enroll", func(t *testing.T) {
		env := newTestEnv(t)
		instructor := env.addUser("Ines", userdomain.RoleInstructor, true)
		admin := env.addUser("Root", userdomain.RoleAdmin, true)
		course := env.addCourse("Go Basics", instructor, 10, 4, true)

		_, err := env.svc.Enroll(ctx, enrollmentdomain.EnrollRequest{
			StudentID: admin.ID.String(),
			CourseID:  course.ID.String(),
		})
		assert.ErrorIs(t, err, enrollmentdomain.ErrRoleCannotEnroll)
	})

	t.Run("inactive student is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		instructor := env.addUser("Ines", userdomain.RoleInstructor, true)
		student := env.addUser("Sam", userdomain.RoleStudent, false)
		course := env.addCourse("Go Basics", instructor, 10, 4, true)

		_, err := env.svc.Enroll(ctx, enrollmentdomain.EnrollRequest{
			StudentID: student.ID.String(),
			CourseID:  course.ID.String(),
		})
		assert.ErrorIs(t, err, enrollmentdomain.ErrStudentInactive)
	})

	t.Run("inactive course is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		instructor := env.addUser("Ines", userdomain.RoleInstructor, true)
		student := env.addUser("Sam", userdomain.RoleStudent, true)
		course := env.addCourse("Retired", instructor, 10, 4, false)

		_, err := env.svc.Enroll(ctx, enrollmentdomain.EnrollRequest{
			StudentID: student.ID.String(),
			CourseID:  course.ID.String(),
		})
		assert.ErrorIs(t, err, enrollmentdomain.ErrCourseInactive)
	})

	t.Run("instructor cannot enroll in own course", func(t *testing.T) {
		env := newTestEnv(t)
		instructor := env.addUser("Ines", userdomain.RoleInstructor, true)
		course := env.addCourse("Go Basics", instructor, 10, 4, true)

		_, err := env.svc.Enroll(ctx, enrollmentdomain.EnrollRequest{
			StudentID: instructor.ID.String(),
			CourseID:  course.ID.String(),
		})
		assert.ErrorIs(t, err, enrollmentdomain.ErrSelfEnrollment)
	})

	t.Run("second enrollment conflicts", func(t *testing.T) {
		env := newTestEnv(t)
		instructor := env.addUser("Ines", userdomain.RoleInstructor, true)
		student := env.addUser("Sam", userdomain.RoleStudent, true)
		course := env.addCourse("Go Basics", instructor, 10, 4, true)

		env.enroll(t, student, course)
		_, err := env.svc.Enroll(ctx, enrollmentdomain.EnrollRequest{
			StudentID: student.ID.String(),
			CourseID:  course.ID.String(),
		})
		assert.ErrorIs(t, err, enrollmentdomain.ErrAlreadyEnrolled)
	})

	t.Run("unknown student", func(t *testing.T) {
		env := newTestEnv(t)
		instructor := env.addUser("Ines", userdomain.RoleInstructor, true)
		course := env.addCourse("Go Basics", instructor, 10, 4, true)

		_, err := env.svc.Enroll(ctx, enrollmentdomain.EnrollRequest{
			StudentID: env.node.Generate().String(),
			CourseID:  course.ID.String(),
		})
		assert.ErrorIs(t, err, userdomain.ErrUserNotFound)
	})
}

func TestConfirmPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("activates a pending enrollment", func(t *testing.T) {
		env := newTestEnv(t)
		instructor := env.addUser("Ines", userdomain.RoleInstructor, true)
		student := env.addUser("Sam", userdomain.RoleStudent, true)
		course := env.addCourse("Go Basics", instructor, 49.90, 10, true)
		enrollment := env.enroll(t, student, course)

		resp, err := env.svc.ConfirmPayment(ctx, enrollmentdomain.ConfirmPaymentRequest{
			EnrollmentID:  enrollment.ID,
			TransactionID: "txn-123",
			Method:        "CARD",
		})
		require.NoError(t, err)

		assert.Equal(t, enrollmentdomain.StatusActive, resp.Status)
		require.NotNil(t, resp.Payment)
		assert.Equal(t, enrollmentdomain.PaymentPaid, resp.Payment.Status)
		assert.Equal(t, course.Price, resp.Payment.AmountPaid)
		assert.Equal(t, "txn-123", resp.Payment.TransactionID)
		assert.Equal(t, env.clk.Now(), resp.Payment.PaidAt)
	})

	t.Run("rejects a second confirmation", func(t *testing.T) {
		env := newTestEnv(t)
		instructor := env.addUser("Ines", userdomain.RoleInstructor, true)
		student := env.addUser("Sam", userdomain.RoleStudent, true)
		course := env.addCourse("Go Basics", instructor, 49.90, 10, true)
		enrollment := env.enroll(t, student, course)

		_, err := env.svc.ConfirmPayment(ctx, enrollmentdomain.ConfirmPaymentRequest{
			EnrollmentID:  enrollment.ID,
			TransactionID: "txn-123",
		})
		require.NoError(t, err)

		_, err = env.svc.ConfirmPayment(ctx, enrollmentdomain.ConfirmPaymentRequest{
			EnrollmentID:  enrollment.ID,
			TransactionID: "txn-456",
		})
		assert.ErrorIs(t, err, enrollmentdomain.ErrNotPendingPayment)
	})

	t.Run("requires a transaction id", func(t *testing.T) {
		env := newTestEnv(t)
		instructor := env.addUser("Ines", userdomain.RoleInstructor, true)
		student := env.addUser("Sam", userdomain.RoleStudent, true)
		course := env.addCourse("Go Basics", instructor, 49.90, 10, true)
		enrollment := env.enroll(t, student, course)

		_, err := env.svc.ConfirmPayment(ctx, enrollmentdomain.ConfirmPaymentRequest{
			EnrollmentID: enrollment.ID,
		})
		assert.ErrorIs(t, err, enrollmentdomain.ErrInvalidEnrollment)
	})

	t.Run("unknown enrollment", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.svc.ConfirmPayment(ctx, enrollmentdomain.ConfirmPaymentRequest{
			EnrollmentID:  env.node.Generate().String(),
			TransactionID: "txn-123",
		})
		assert.ErrorIs(t, err, enrollmentdomain.ErrEnrollmentNotFound)
	})
}

func TestCompleteLesson(t *testing.T) {
	ctx := context.Background()

	activeEnrollment := func(t *testing.T, env *testEnv, totalLessons int) enrollmentdomain.EnrollmentResponse {
		instructor := env.addUser("Ines", userdomain.RoleInstructor, true)
		student := env.addUser("Sam", userdomain.RoleStudent, true)
		course := env.addCourse("Go Basics", instructor, 0, totalLessons, true)
		return env.enroll(t, student, course)
	}

	t.Run("tracks progress", func(t *testing.T) {
		env := newTestEnv(t)
		enrollment := activeEnrollment(t, env, 4)

		resp, err := env.svc.CompleteLesson(ctx, enrollmentdomain.CompleteLessonRequest{
			EnrollmentID: enrollment.ID,
			ModuleTitle:  "Basics",
			LessonTitle:  "Hello World",
			LessonOrder:  1,
		})
		require.NoError(t, err)
		assert.Equal(t, 25.0, resp.ProgressPercentage)
		assert.Equal(t, enrollmentdomain.StatusActive, resp.Status)
		require.NotNil(t, resp.LastAccessedAt)
		assert.Equal(t, env.clk.Now(), *resp.LastAccessedAt)
		assert.Len(t, resp.CompletedLessons, 1)

		env.clk.Advance(time.Hour)
		resp, err = env.svc.CompleteLesson(ctx, enrollmentdomain.CompleteLessonRequest{
			EnrollmentID: enrollment.ID,
			LessonTitle:  "Variables",
			LessonOrder:  2,
		})
		require.NoError(t, err)
		assert.Equal(t, 50.0, resp.ProgressPercentage)
		assert.Len(t, resp.CompletedLessons, 2)
	})

	t.Run("finishing the last lesson completes the course", func(t *testing.T) {
		env := newTestEnv(t)
		enrollment := activeEnrollment(t, env, 2)

		_, err := env.svc.CompleteLesson(ctx, enrollmentdomain.CompleteLessonRequest{
			EnrollmentID: enrollment.ID,
			LessonTitle:  "One",
		})
		require.NoError(t, err)

		env.clk.Advance(time.Hour)
		resp, err := env.svc.CompleteLesson(ctx, enrollmentdomain.CompleteLessonRequest{
			EnrollmentID: enrollment.ID,
			LessonTitle:  "Two",
		})
		require.NoError(t, err)

		assert.Equal(t, enrollmentdomain.StatusCompleted, resp.Status)
		assert.Equal(t, 100.0, resp.ProgressPercentage)
		require.NotNil(t, resp.CompletedAt)
		assert.Equal(t, env.clk.Now(), *resp.CompletedAt)
	})

	t.Run("duplicate lesson title conflicts", func(t *testing.T) {
		env := newTestEnv(t)
		enrollment := activeEnrollment(t, env, 4)

		_, err := env.svc.CompleteLesson(ctx, enrollmentdomain.CompleteLessonRequest{
			EnrollmentID: enrollment.ID,
			LessonTitle:  "One",
		})
		require.NoError(t, err)

		_, err = env.svc.CompleteLesson(ctx, enrollmentdomain.CompleteLessonRequest{
			EnrollmentID: enrollment.ID,
			LessonTitle:  "One",
		})
		assert.ErrorIs(t, err, enrollmentdomain.ErrDuplicateLesson)
	})

	t.Run("blank lesson title is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		enrollment := activeEnrollment(t, env, 4)

		_, err := env.svc.CompleteLesson(ctx, enrollmentdomain.CompleteLessonRequest{
			EnrollmentID: enrollment.ID,
			LessonTitle:  "   ",
		})
		assert.ErrorIs(t, err, enrollmentdomain.ErrInvalidLessonTitle)
	})

	t.Run("pending payment cannot study", func(t *testing.T) {
		env := newTestEnv(t)
		instructor := env.addUser("Ines", userdomain.RoleInstructor, true)
		student := env.addUser("Sam", userdomain.RoleStudent, true)
		course := env.addCourse("Paid", instructor, 20, 4, true)
		enrollment := env.enroll(t, student, course)

		_, err := env.svc.CompleteLesson(ctx, enrollmentdomain.CompleteLessonRequest{
			EnrollmentID: enrollment.ID,
			LessonTitle:  "One",
		})
		assert.ErrorIs(t, err, enrollmentdomain.ErrNotStudiable)
	})
}

func TestCompleteCourse(t *testing.T) {
	ctx := context.Background()

	completedEnrollment := func(t *testing.T, env *testEnv) enrollmentdomain.EnrollmentResponse {
		instructor := env.addUser("Ines", userdomain.RoleInstructor, true)
		student := env.addUser("Sam", userdomain.RoleStudent, true)
		course := env.addCourse("Short Course", instructor, 0, 1, true)
		enrollment := env.enroll(t, student, course)

		resp, err := env.svc.CompleteLesson(ctx, enrollmentdomain.CompleteLessonRequest{
			EnrollmentID: enrollment.ID,
			LessonTitle:  "Only Lesson",
		})
		require.NoError(t, err)
		require.Equal(t, enrollmentdomain.StatusCompleted, resp.Status)
		return resp
	}

	t.Run("issues a certificate", func(t *testing.T) {
		env := newTestEnv(t)
		enrollment := completedEnrollment(t, env)

		resp, err := env.svc.CompleteCourse(ctx, enrollmentdomain.CompleteCourseRequest{
			EnrollmentID: enrollment.ID,
		})
		require.NoError(t, err)

		require.NotNil(t, resp.Certificate)
		assert.True(t, strings.HasPrefix(resp.Certificate.CertificateID, "CERT-"))
		assert.Equal(t, "/certificates/"+resp.Certificate.CertificateID+".pdf", resp.Certificate.CertificateURL)
		assert.Equal(t, env.clk.Now(), resp.Certificate.IssuedAt)
	})

	t.Run("repeat call returns the same certificate", func(t *testing.T) {
		env := newTestEnv(t)
		enrollment := completedEnrollment(t, env)

		first, err := env.svc.CompleteCourse(ctx, enrollmentdomain.CompleteCourseRequest{EnrollmentID: enrollment.ID})
		require.NoError(t, err)

		env.clk.Advance(24 * time.Hour)
		second, err := env.svc.CompleteCourse(ctx, enrollmentdomain.CompleteCourseRequest{EnrollmentID: enrollment.ID})
		require.NoError(t, err)

		assert.Equal(t, first.Certificate.CertificateID, second.Certificate.CertificateID)
		assert.Equal(t, first.Certificate.IssuedAt, second.Certificate.IssuedAt)
	})

	t.Run("reissue replaces the certificate", func(t *testing.T) {
		env := newTestEnv(t)
		enrollment := completedEnrollment(t, env)

		first, err := env.svc.CompleteCourse(ctx, enrollmentdomain.CompleteCourseRequest{EnrollmentID: enrollment.ID})
		require.NoError(t, err)

		env.clk.Advance(24 * time.Hour)
		second, err := env.svc.CompleteCourse(ctx, enrollmentdomain.CompleteCourseRequest{
			EnrollmentID: enrollment.ID,
			Reissue:      true,
		})
		require.NoError(t, err)

		assert.NotEqual(t, first.Certificate.CertificateID, second.Certificate.CertificateID)
		assert.Equal(t, env.clk.Now(), second.Certificate.IssuedAt)
	})

	t.Run("requires full completion", func(t *testing.T) {
		env := newTestEnv(t)
		instructor := env.addUser("Ines", userdomain.RoleInstructor, true)
		student := env.addUser("Sam", userdomain.RoleStudent, true)
		course := env.addCourse("Long Course", instructor, 0, 10, true)
		enrollment := env.enroll(t, student, course)

		_, err := env.svc.CompleteCourse(ctx, enrollmentdomain.CompleteCourseRequest{EnrollmentID: enrollment.ID})
		assert.ErrorIs(t, err, enrollmentdomain.ErrNotCompleted)
	})
}

func TestRateCourse(t *testing.T) {
	ctx := context.Background()

	enrollWithProgress := func(t *testing.T, env *testEnv, completed, total int) enrollmentdomain.EnrollmentResponse {
		instructor := env.addUser("Ines", userdomain.RoleInstructor, true)
		student := env.addUser("Sam", userdomain.RoleStudent, true)
		course := env.addCourse("Go Basics", instructor, 0, total, true)
		enrollment := env.enroll(t, student, course)

		var resp enrollmentdomain.EnrollmentResponse
		for i := 0; i < completed; i++ {
			var err error
			resp, err = env.svc.CompleteLesson(ctx, enrollmentdomain.CompleteLessonRequest{
				EnrollmentID: enrollment.ID,
				LessonTitle:  "Lesson " + string(rune('A'+i)),
			})
			require.NoError(t, err)
		}
		if completed == 0 {
			return enrollment
		}
		return resp
	}

	t.Run("records the rating", func(t *testing.T) {
		env := newTestEnv(t)
		enrollment := enrollWithProgress(t, env, 2, 10)

		resp, err := env.svc.RateCourse(ctx, enrollmentdomain.RateCourseRequest{
			EnrollmentID: enrollment.ID,
			Stars:        4,
			Comment:      "solid",
		})
		require.NoError(t, err)

		require.NotNil(t, resp.Rating)
		assert.Equal(t, 4, resp.Rating.Stars)
		assert.Equal(t, "solid", resp.Rating.Comment)
		assert.Equal(t, env.clk.Now(), resp.Rating.RatedAt)
	})

	t.Run("requires minimum progress", func(t *testing.T) {
		env := newTestEnv(t)
		enrollment := enrollWithProgress(t, env, 1, 10)

		_, err := env.svc.RateCourse(ctx, enrollmentdomain.RateCourseRequest{
			EnrollmentID: enrollment.ID,
			Stars:        5,
		})
		assert.ErrorIs(t, err, enrollmentdomain.ErrInsufficientProgress)
	})

	t.Run("threshold follows platform config", func(t *testing.T) {
		env := newTestEnv(t)
		enrollment := enrollWithProgress(t, env, 1, 10)

		cfg := config.DefaultPlatformConfig()
		cfg.Rating.MinProgressPercent = 10
		env.holder.Store(cfg)

		_, err := env.svc.RateCourse(ctx, enrollmentdomain.RateCourseRequest{
			EnrollmentID: enrollment.ID,
			Stars:        5,
		})
		assert.NoError(t, err)
	})

	t.Run("progress gate applies before the stars value", func(t *testing.T) {
		env := newTestEnv(t)
		enrollment := enrollWithProgress(t, env, 0, 10)

		for _, stars := range []int{9, 0, 3} {
			_, err := env.svc.RateCourse(ctx, enrollmentdomain.RateCourseRequest{
				EnrollmentID: enrollment.ID,
				Stars:        stars,
			})
			assert.ErrorIs(t, err, enrollmentdomain.ErrInsufficientProgress, stars)
		}
	})

	t.Run("stars bounds", func(t *testing.T) {
		env := newTestEnv(t)
		enrollment := enrollWithProgress(t, env, 5, 10)

		for _, stars := range []int{0, 6, -1} {
			_, err := env.svc.RateCourse(ctx, enrollmentdomain.RateCourseRequest{
				EnrollmentID: enrollment.ID,
				Stars:        stars,
			})
			assert.ErrorIs(t, err, enrollmentdomain.ErrInvalidStars)
		}
	})

	t.Run("re-rating overwrites", func(t *testing.T) {
		env := newTestEnv(t)
		enrollment := enrollWithProgress(t, env, 5, 10)

		_, err := env.svc.RateCourse(ctx, enrollmentdomain.RateCourseRequest{EnrollmentID: enrollment.ID, Stars: 2})
		require.NoError(t, err)

		resp, err := env.svc.RateCourse(ctx, enrollmentdomain.RateCourseRequest{EnrollmentID: enrollment.ID, Stars: 5})
		require.NoError(t, err)
		assert.Equal(t, 5, resp.Rating.Stars)
	})
}

func TestSuspendReactivateCancel(t *testing.T) {
	ctx := context.Background()

	newActive := func(t *testing.T, env *testEnv) enrollmentdomain.EnrollmentResponse {
		instructor := env.addUser("Ines", userdomain.RoleInstructor, true)
		student := env.addUser("Sam", userdomain.RoleStudent, true)
		course := env.addCourse("Go Basics", instructor, 0, 4, true)
		return env.enroll(t, student, course)
	}

	t.Run("suspend and reactivate", func(t *testing.T) {
		env := newTestEnv(t)
		enrollment := newActive(t, env)

		suspended, err := env.svc.Suspend(ctx, enrollmentdomain.SuspendRequest{
			EnrollmentID: enrollment.ID,
			Reason:       "payment dispute",
		})
		require.NoError(t, err)
		assert.Equal(t, enrollmentdomain.StatusSuspended, suspended.Status)
		assert.Equal(t, "payment dispute", suspended.SuspendReason)

		reactivated, err := env.svc.Reactivate(ctx, enrollment.ID)
		require.NoError(t, err)
		assert.Equal(t, enrollmentdomain.StatusActive, reactivated.Status)
		assert.Empty(t, reactivated.SuspendReason)
	})

	t.Run("reactivate outside suspended is a no-op", func(t *testing.T) {
		env := newTestEnv(t)
		enrollment := newActive(t, env)

		resp, err := env.svc.Reactivate(ctx, enrollment.ID)
		require.NoError(t, err)
		assert.Equal(t, enrollmentdomain.StatusActive, resp.Status)

		_, err = env.svc.Cancel(ctx, enrollment.ID)
		require.NoError(t, err)

		resp, err = env.svc.Reactivate(ctx, enrollment.ID)
		require.NoError(t, err)
		assert.Equal(t, enrollmentdomain.StatusCancelled, resp.Status)
	})

	t.Run("cancel is unconditional", func(t *testing.T) {
		env := newTestEnv(t)
		enrollment := newActive(t, env)

		cancelled, err := env.svc.Cancel(ctx, enrollment.ID)
		require.NoError(t, err)
		assert.Equal(t, enrollmentdomain.StatusCancelled, cancelled.Status)

		// even from suspended
		other := newTestEnv(t)
		e2 := newActive(t, other)
		_, err = other.svc.Suspend(ctx, enrollmentdomain.SuspendRequest{EnrollmentID: e2.ID, Reason: "abuse"})
		require.NoError(t, err)
		cancelled2, err := other.svc.Cancel(ctx, e2.ID)
		require.NoError(t, err)
		assert.Equal(t, enrollmentdomain.StatusCancelled, cancelled2.Status)
	})

	t.Run("cancelled enrollment cannot study", func(t *testing.T) {
		env := newTestEnv(t)
		enrollment := newActive(t, env)

		_, err := env.svc.Cancel(ctx, enrollment.ID)
		require.NoError(t, err)

		_, err = env.svc.CompleteLesson(ctx, enrollmentdomain.CompleteLessonRequest{
			EnrollmentID: enrollment.ID,
			LessonTitle:  "One",
		})
		assert.ErrorIs(t, err, enrollmentdomain.ErrNotStudiable)
	})
}

func TestUpdateLastAccess(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	instructor := env.addUser("Ines", userdomain.RoleInstructor, true)
	student := env.addUser("Sam", userdomain.RoleStudent, true)
	course := env.addCourse("Go Basics", instructor, 0, 4, true)
	enrollment := env.enroll(t, student, course)

	env.clk.Advance(2 * time.Hour)
	resp, err := env.svc.UpdateLastAccess(ctx, enrollment.ID)
	require.NoError(t, err)
	require.NotNil(t, resp.LastAccessedAt)
	assert.Equal(t, env.clk.Now(), *resp.LastAccessedAt)

	// access is stamped whatever the status
	_, err = env.svc.Suspend(ctx, enrollmentdomain.SuspendRequest{EnrollmentID: enrollment.ID})
	require.NoError(t, err)

	env.clk.Advance(time.Hour)
	resp, err = env.svc.UpdateLastAccess(ctx, enrollment.ID)
	require.NoError(t, err)
	require.NotNil(t, resp.LastAccessedAt)
	assert.Equal(t, env.clk.Now(), *resp.LastAccessedAt)
	assert.Equal(t, enrollmentdomain.StatusSuspended, resp.Status)

	_, err = env.svc.Cancel(ctx, enrollment.ID)
	require.NoError(t, err)

	env.clk.Advance(time.Hour)
	resp, err = env.svc.UpdateLastAccess(ctx, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, env.clk.Now(), *resp.LastAccessedAt)
}

func TestMutationResponsesCarryLessons(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	instructor := env.addUser("Ines", userdomain.RoleInstructor, true)
	student := env.addUser("Sam", userdomain.RoleStudent, true)
	course := env.addCourse("Go Basics", instructor, 0, 4, true)
	enrollment := env.enroll(t, student, course)

	_, err := env.svc.CompleteLesson(ctx, enrollmentdomain.CompleteLessonRequest{
		EnrollmentID: enrollment.ID,
		LessonTitle:  "One",
	})
	require.NoError(t, err)

	rated, err := env.svc.RateCourse(ctx, enrollmentdomain.RateCourseRequest{
		EnrollmentID: enrollment.ID,
		Stars:        4,
	})
	require.NoError(t, err)
	require.Len(t, rated.CompletedLessons, 1)
	assert.Equal(t, "One", rated.CompletedLessons[0].LessonTitle)

	suspended, err := env.svc.Suspend(ctx, enrollmentdomain.SuspendRequest{EnrollmentID: enrollment.ID})
	require.NoError(t, err)
	assert.Len(t, suspended.CompletedLessons, 1)

	cancelled, err := env.svc.Cancel(ctx, enrollment.ID)
	require.NoError(t, err)
	assert.Len(t, cancelled.CompletedLessons, 1)
}
