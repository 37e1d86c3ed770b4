package server

import (
	"io"
	"net/http"
	"strings"
	"time"

	enrollmentdomain "github.com/eduhub/api/internal/enrollment/domain"
	"github.com/eduhub/api/internal/providers/pdf"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DownloadCertificate renders the completion certificate as a PDF. The
// :certificateId parameter accepts the raw id with or without the .pdf
// suffix, matching the stored certificate URL.
func (s *Server) DownloadCertificate(c *gin.Context) {
	certificateID := strings.TrimSpace(c.Param("certificateId"))
	certificateID = strings.TrimSuffix(certificateID, ".pdf")

	enrollment, err := s.enrollmentSvc.GetByCertificateID(c.Request.Context(), certificateID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if enrollment.Certificate == nil {
		AbortWithError(c, enrollmentdomain.ErrCertificateNotFound)
		return
	}

	if s.writeLimiter != nil && s.writeLimiter.Enabled() {
		token, ok, err := s.writeLimiter.TryLockCertificate(c.Request.Context(), certificateID)
		if err != nil {
			s.log.Warn("certificate render lock unavailable", zap.Error(err))
		} else if !ok {
			AbortWithError(c, ErrTooManyWrites)
			return
		} else {
			defer func() {
				_ = s.writeLimiter.ReleaseCertificate(c.Request.Context(), certificateID, token)
			}()
		}
	}

	data := pdf.CertificateData{
		CertificateID: certificateID,
		StudentName:   enrollment.Student.Name,
		CourseTitle:   enrollment.Course.Title,
		Instructor:    enrollment.Course.InstructorName,
		Issuer:        s.cfgHolder.Get().Certificate.Issuer,
		IssuedOn:      formatCertificateDate(enrollment.Certificate.IssuedAt),
	}
	if enrollment.CompletedAt != nil {
		data.CompletedOn = formatCertificateDate(*enrollment.CompletedAt)
	}

	reader, err := s.pdfProvider.GenerateCertificate(c.Request.Context(), data)
	if err != nil {
		AbortWithError(c, ErrInternal)
		return
	}

	doc, err := io.ReadAll(reader)
	if err != nil {
		AbortWithError(c, ErrInternal)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+certificateID+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}

func formatCertificateDate(t time.Time) string {
	return t.Format("January 2, 2006")
}
