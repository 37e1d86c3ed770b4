package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	enrollmentdomain "github.com/eduhub/api/internal/enrollment/domain"
	userdomain "github.com/eduhub/api/internal/user/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"nil", nil, http.StatusInternalServerError, "internal_error"},
		{"invalid enrollment", enrollmentdomain.ErrInvalidEnrollment, http.StatusBadRequest, "validation_error"},
		{"invalid stars", enrollmentdomain.ErrInvalidStars, http.StatusBadRequest, "validation_error"},
		{"role cannot enroll", enrollmentdomain.ErrRoleCannotEnroll, http.StatusBadRequest, "validation_error"},
		{"self enrollment", enrollmentdomain.ErrSelfEnrollment, http.StatusBadRequest, "validation_error"},
		{"not pending payment", enrollmentdomain.ErrNotPendingPayment, http.StatusBadRequest, "validation_error"},
		{"not studiable", enrollmentdomain.ErrNotStudiable, http.StatusBadRequest, "validation_error"},
		{"insufficient progress", enrollmentdomain.ErrInsufficientProgress, http.StatusBadRequest, "validation_error"},
		{"already enrolled", enrollmentdomain.ErrAlreadyEnrolled, http.StatusConflict, "conflict"},
		{"duplicate lesson", enrollmentdomain.ErrDuplicateLesson, http.StatusConflict, "conflict"},
		{"enrollment not found", enrollmentdomain.ErrEnrollmentNotFound, http.StatusNotFound, "not_found"},
		{"certificate not found", enrollmentdomain.ErrCertificateNotFound, http.StatusNotFound, "not_found"},
		{"user not found", userdomain.ErrUserNotFound, http.StatusNotFound, "not_found"},
		{"gorm record not found", gorm.ErrRecordNotFound, http.StatusNotFound, "not_found"},
		{"throttled", ErrTooManyWrites, http.StatusTooManyRequests, "too_many_requests"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
		{"wrapped sentinel", fmt.Errorf("enroll: %w", enrollmentdomain.ErrAlreadyEnrolled), http.StatusConflict, "conflict"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, payload := mapError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantType, payload.Type)
		})
	}
}

func TestMapErrorPolicyCode(t *testing.T) {
	status, payload := mapError(enrollmentdomain.ErrStudentInactive)
	assert.Equal(t, http.StatusBadRequest, status)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "student_inactive", payload.Errors[0].Code)

	status, payload = mapError(enrollmentdomain.ErrInvalidStars)
	assert.Equal(t, http.StatusBadRequest, status)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "invalid_stars", payload.Errors[0].Code)
	assert.Equal(t, "stars", payload.Errors[0].Field)
}

func TestMapErrorValidationErrors(t *testing.T) {
	status, payload := mapError(newValidationError("days", "invalid_days", "days must be positive"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", payload.Type)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "days", payload.Errors[0].Field)
	assert.Equal(t, "days must be positive", payload.Errors[0].Message)
}
