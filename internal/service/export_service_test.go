package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studylab-api/internal/models"
	appErrors "github.com/noah-isme/studylab-api/pkg/errors"
)

type ledgerReader struct {
	fakePaymentReader
	rows []models.PaymentDetail
}

func (l *ledgerReader) List(_ context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, int, error) {
	l.filter = filter
	return l.rows, len(l.rows), nil
}

func TestExportPaymentsCSV(t *testing.T) {
	paidOn := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	reader := &ledgerReader{rows: []models.PaymentDetail{
		{Payment: models.Payment{Amount: decimal.NewFromInt(2000), Mode: models.PaymentModeUPI, PaidOn: paidOn}, StudentCode: "STU-2025-AB12", StudentName: "Asha Rao", CourseName: strPtr("Data Science")},
		{Payment: models.Payment{Amount: decimal.RequireFromString("499.5"), Mode: models.PaymentModeCash, PaidOn: paidOn}, StudentCode: "STU-2025-CD34", StudentName: "Ravi K"},
	}}
	svc := NewExportService(reader, "INR", nil, nil, nil)
	svc.now = func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) }

	file, err := svc.ExportPayments(context.Background(), models.PaymentFilter{Page: 3, PageSize: 25, Mode: models.PaymentModeUPI}, "CSV")
	require.NoError(t, err)
	assert.Equal(t, "payments-20250310-090000.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Equal(t, 0, reader.filter.PageSize)
	assert.Equal(t, models.PaymentModeUPI, reader.filter.Mode)

	lines := strings.Split(strings.TrimSpace(string(file.Body)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Date,Student ID,Student,Course,Mode,Amount (INR)", lines[0])
	assert.Equal(t, "2025-03-01,STU-2025-AB12,Asha Rao,Data Science,UPI,2000.00", lines[1])
	assert.Equal(t, ",,,,Total,2499.50", lines[3])
}

func TestExportPaymentsPDF(t *testing.T) {
	svc := NewExportService(&ledgerReader{}, "INR", nil, nil, nil)

	file, err := svc.ExportPayments(context.Background(), models.PaymentFilter{}, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Body), "%PDF-"))
}

func TestExportPaymentsRejectsFormat(t *testing.T) {
	svc := NewExportService(&ledgerReader{}, "", nil, nil, nil)

	_, err := svc.ExportPayments(context.Background(), models.PaymentFilter{}, "xlsx")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
