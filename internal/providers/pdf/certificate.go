package pdf

import (
	"bytes"
	"context"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateCertificate(ctx context.Context, data CertificateData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		Build()

	m := maroto.New(cfg)

	m.AddRow(20,
		text.NewCol(12, data.Issuer, props.Text{
			Size:  14,
			Style: fontstyle.Bold,
			Align: align.Center,
			Top:   8,
		}),
	)

	m.AddRow(18,
		text.NewCol(12, "Certificate of Completion", props.Text{
			Size:  26,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)

	m.AddRow(10,
		text.NewCol(12, "This certifies that", props.Text{
			Size:  11,
			Align: align.Center,
			Top:   3,
		}),
	)

	m.AddRow(16,
		text.NewCol(12, data.StudentName, props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)

	m.AddRow(10,
		text.NewCol(12, "has successfully completed the course", props.Text{
			Size:  11,
			Align: align.Center,
		}),
	)

	m.AddRow(14,
		text.NewCol(12, data.CourseTitle, props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)

	m.AddRow(10,
		text.NewCol(12, "Instructor: "+data.Instructor, props.Text{
			Size:  10,
			Align: align.Center,
			Top:   2,
		}),
	)

	m.AddRow(8, col.New(3), line.NewCol(6), col.New(3))

	m.AddRow(14,
		col.New(4).Add(
			text.New("Completed on", props.Text{Size: 8, Style: fontstyle.Bold}),
			text.New(data.CompletedOn, props.Text{Size: 9, Top: 4}),
		),
		col.New(4).Add(
			text.New("Issued on", props.Text{Size: 8, Style: fontstyle.Bold}),
			text.New(data.IssuedOn, props.Text{Size: 9, Top: 4}),
		),
		col.New(4).Add(
			text.New("Certificate ID", props.Text{Size: 8, Style: fontstyle.Bold}),
			text.New(data.CertificateID, props.Text{Size: 9, Top: 4}),
		),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
