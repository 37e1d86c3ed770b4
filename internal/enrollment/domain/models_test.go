package domain

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEnrollmentStatus(t *testing.T) {
	for raw, want := range map[string]EnrollmentStatus{
		"ACTIVE":             StatusActive,
		"active":             StatusActive,
		"  Pending_Payment ": StatusPendingPayment,
		"completed":          StatusCompleted,
		"SUSPENDED":          StatusSuspended,
		"cancelled":          StatusCancelled,
		"expired":            StatusExpired,
	} {
		got, err := ParseEnrollmentStatus(raw)
		assert.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	for _, raw := range []string{"", "unknown", "CANCELED"} {
		_, err := ParseEnrollmentStatus(raw)
		assert.ErrorIs(t, err, ErrInvalidStatus, raw)
	}
}

func TestParsePaymentStatus(t *testing.T) {
	got, err := ParsePaymentStatus("paid")
	assert.NoError(t, err)
	assert.Equal(t, PaymentPaid, got)

	got, err = ParsePaymentStatus(" FREE ")
	assert.NoError(t, err)
	assert.Equal(t, PaymentFree, got)

	_, err = ParsePaymentStatus("settled")
	assert.ErrorIs(t, err, ErrInvalidPaymentStatus)
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, StatusActive.CanStudy())
	for _, s := range []EnrollmentStatus{StatusPendingPayment, StatusCompleted, StatusSuspended, StatusCancelled, StatusExpired} {
		assert.False(t, s.CanStudy(), s)
	}

	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	for _, s := range []EnrollmentStatus{StatusPendingPayment, StatusActive, StatusSuspended, StatusExpired} {
		assert.False(t, s.IsTerminal(), s)
	}
}

func TestPaymentAllowsAccess(t *testing.T) {
	assert.True(t, PaymentPaid.AllowsAccess())
	assert.True(t, PaymentFree.AllowsAccess())
	for _, s := range []PaymentStatus{PaymentPending, PaymentFailed, PaymentRefunded, PaymentCancelled} {
		assert.False(t, s.AllowsAccess(), s)
	}
}

func TestEnrollmentHelpers(t *testing.T) {
	var e Enrollment
	assert.False(t, e.IsCompleted())
	assert.False(t, e.HasPayment())
	assert.False(t, e.HasCertificate())

	e.ProgressPercentage = 100
	assert.True(t, e.IsCompleted())

	e = Enrollment{Status: StatusCompleted}
	assert.True(t, e.IsCompleted())

	e.PaymentStatus = sql.NullString{String: string(PaymentPaid), Valid: true}
	assert.True(t, e.HasPayment())

	e.CertificateID = sql.NullString{Valid: true}
	assert.False(t, e.HasCertificate())
	e.CertificateID = sql.NullString{String: "CERT-01ABC", Valid: true}
	assert.True(t, e.HasCertificate())
}
