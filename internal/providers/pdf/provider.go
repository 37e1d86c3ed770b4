package pdf

import (
	"bytes"
	"context"
	"io"
)

// CertificateData carries everything the rendered certificate shows.
// All fields are preformatted strings so the renderer stays dumb.
type CertificateData struct {
	CertificateID string
	StudentName   string
	CourseTitle   string
	Instructor    string
	Issuer        string
	CompletedOn   string
	IssuedOn      string
}

type Provider interface {
	GenerateCertificate(ctx context.Context, data CertificateData) (io.Reader, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) GenerateCertificate(ctx context.Context, data CertificateData) (io.Reader, error) {
	return bytes.NewReader(nil), nil
}
