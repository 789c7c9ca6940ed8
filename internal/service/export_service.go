package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/studylab-api/internal/models"
	appErrors "github.com/noah-isme/studylab-api/pkg/errors"
	"github.com/noah-isme/studylab-api/pkg/export"
)

// Supported export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, subtitle string) ([]byte, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders the payment ledger as CSV or PDF.
type ExportService struct {
	payments paymentReader
	csv      csvRenderer
	pdf      pdfRenderer
	currency string
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(payments paymentReader, currency string, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{payments: payments, csv: csv, pdf: pdf, currency: currency, logger: logger, now: time.Now}
}

// ExportPayments renders every payment matching filter.
func (s *ExportService) ExportPayments(ctx context.Context, filter models.PaymentFilter, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	filter.Page, filter.PageSize = 0, 0
	payments, _, err := s.payments.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payments")
	}

	dataset := paymentDataset(payments, s.currency)
	now := s.now()
	filename := fmt.Sprintf("payments-%s.%s", now.Format("20060102-150405"), format)

	var file *ExportFile
	switch format {
	case ExportFormatPDF:
		body, err := s.pdf.Render(dataset, fmt.Sprintf("Generated %s, %d payments", now.Format("02 Jan 2006 15:04"), len(payments)))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		file = &ExportFile{Filename: filename, ContentType: "application/pdf", Body: body}
	default:
		body, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		file = &ExportFile{Filename: filename, ContentType: "text/csv", Body: body}
	}

	s.logger.Info("payments exported", zap.String("format", format), zap.Int("rows", len(payments)), requestField(ctx))
	return file, nil
}

func paymentDataset(payments []models.PaymentDetail, currency string) export.Dataset {
	amountHeader := "Amount"
	if currency != "" {
		amountHeader = fmt.Sprintf("Amount (%s)", currency)
	}
	data := export.Dataset{
		Title:   "Fee Payments",
		Headers: []string{"Date", "Student ID", "Student", "Course", "Mode", amountHeader},
		Numeric: map[int]bool{5: true},
	}
	total := decimal.Zero
	for _, p := range payments {
		course := ""
		if p.CourseName != nil {
			course = *p.CourseName
		}
		data.Rows = append(data.Rows, []string{
			p.PaidOn.Format("2006-01-02"),
			p.StudentCode,
			p.StudentName,
			course,
			string(p.Mode),
			p.Amount.StringFixed(2),
		})
		total = total.Add(p.Amount)
	}
	data.Footer = []string{"", "", "", "", "Total", total.StringFixed(2)}
	return data
}
