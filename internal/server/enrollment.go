package server

import (
	"net/http"
	"strconv"
	"strings"

	enrollmentdomain "github.com/eduhub/api/internal/enrollment/domain"
	"github.com/eduhub/api/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreateEnrollment(c *gin.Context) {
	var req enrollmentdomain.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.enrollmentSvc.Enroll(c.Request.Context(), enrollmentdomain.EnrollRequest{
		StudentID: strings.TrimSpace(req.StudentID),
		CourseID:  strings.TrimSpace(req.CourseID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ConfirmPayment(c *gin.Context) {
	var req enrollmentdomain.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.EnrollmentID = strings.TrimSpace(c.Param("id"))

	resp, err := s.enrollmentSvc.ConfirmPayment(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CompleteLesson(c *gin.Context) {
	var req enrollmentdomain.CompleteLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.EnrollmentID = strings.TrimSpace(c.Param("id"))

	resp, err := s.enrollmentSvc.CompleteLesson(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CompleteCourse(c *gin.Context) {
	var query struct {
		Reissue bool `form:"reissue"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.enrollmentSvc.CompleteCourse(c.Request.Context(), enrollmentdomain.CompleteCourseRequest{
		EnrollmentID: strings.TrimSpace(c.Param("id")),
		Reissue:      query.Reissue,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RateCourse(c *gin.Context) {
	var req enrollmentdomain.RateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.EnrollmentID = strings.TrimSpace(c.Param("id"))

	resp, err := s.enrollmentSvc.RateCourse(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateLastAccess(c *gin.Context) {
	resp, err := s.enrollmentSvc.UpdateLastAccess(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SuspendEnrollment(c *gin.Context) {
	var req enrollmentdomain.SuspendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.EnrollmentID = strings.TrimSpace(c.Param("id"))

	resp, err := s.enrollmentSvc.Suspend(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ReactivateEnrollment(c *gin.Context) {
	resp, err := s.enrollmentSvc.Reactivate(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelEnrollment(c *gin.Context) {
	resp, err := s.enrollmentSvc.Cancel(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetEnrollment(c *gin.Context) {
	resp, err := s.enrollmentSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CheckEnrollment(c *gin.Context) {
	var query struct {
		StudentID string `form:"student_id"`
		CourseID  string `form:"course_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.enrollmentSvc.Check(c.Request.Context(), enrollmentdomain.CheckEnrollmentRequest{
		StudentID: strings.TrimSpace(query.StudentID),
		CourseID:  strings.TrimSpace(query.CourseID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListEnrollmentsByStudent(c *gin.Context) {
	var query struct {
		Status string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.enrollmentSvc.ListByStudent(c.Request.Context(), enrollmentdomain.ListByStudentRequest{
		StudentID: strings.TrimSpace(c.Param("studentId")),
		Status:    strings.TrimSpace(query.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListEnrollmentsByCourse(c *gin.Context) {
	var query struct {
		pagination.Pagination
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.enrollmentSvc.ListByCourse(c.Request.Context(), enrollmentdomain.ListByCourseRequest{
		CourseID:  strings.TrimSpace(c.Param("courseId")),
		PageToken: query.PageToken,
		PageSize:  int32(query.PageSize),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Enrollments, "page_info": resp.PageInfo})
}

func (s *Server) GetEnrollmentStats(c *gin.Context) {
	resp, err := s.enrollmentSvc.GetStats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCourseEnrollmentStats(c *gin.Context) {
	resp, err := s.enrollmentSvc.GetCourseStats(c.Request.Context(), strings.TrimSpace(c.Param("courseId")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListInactiveEnrollments(c *gin.Context) {
	days, err := parseDaysQuery(c, 30)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.enrollmentSvc.ListInactive(c.Request.Context(), days)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListLowProgressEnrollments(c *gin.Context) {
	raw := strings.TrimSpace(c.DefaultQuery("max_progress", "50"))
	maxProgress, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		AbortWithError(c, newValidationError("max_progress", "invalid_progress", "invalid max_progress"))
		return
	}

	resp, err := s.enrollmentSvc.ListLowProgress(c.Request.Context(), maxProgress)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListRecentEnrollments(c *gin.Context) {
	days, err := parseDaysQuery(c, 7)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.enrollmentSvc.ListRecent(c.Request.Context(), days)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func parseDaysQuery(c *gin.Context, fallback int) (int, error) {
	raw := strings.TrimSpace(c.Query("days"))
	if raw == "" {
		return fallback, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, newValidationError("days", "invalid_days", "invalid days")
	}
	return days, nil
}
