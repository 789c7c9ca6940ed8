package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studylab-api/internal/models"
)

func TestFinanceSummaryDerivesPendingIncome(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("AS total_income")).
		WillReturnRows(sqlmock.NewRows([]string{"total_income", "expected_revenue", "pending_emi_amount", "pending_emi_count", "total_students", "fee_paid_students", "converted_leads", "open_leads"}).
			AddRow("30000.00", "50000.00", "12000.00", 6, 3, 1, 3, 7))

	summary, err := repo.FinanceSummary(context.Background())
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(20000).Equal(summary.PendingIncome))
	assert.Equal(t, 6, summary.PendingEMICount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPendingInstallmentsOrdersByDueDate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	due := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE i.is_paid = FALSE AND s.course_id = $1 ORDER BY i.due_date, i.sequence")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "schedule_id", "sequence", "amount", "due_date", "is_paid", "paid_at", "student_code", "student_name", "course_name"}).
			AddRow("i1", "s1", "sch1", 1, "2000.00", due, false, nil, "STU-2025-AB12", "Asha Rao", "Data Science"))

	items, err := repo.ListPendingInstallments(context.Background(), models.InstallmentFilter{CourseID: "c1"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "STU-2025-AB12", items[0].StudentCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPaymentsWithoutPagingReturnsAll(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.mode = $1 ORDER BY p.paid_on DESC, p.created_at DESC")).
		WithArgs(models.PaymentModeUPI).
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "amount", "mode", "paid_on", "recorded_by", "created_at", "student_code", "student_name", "course_name"}).
			AddRow("p1", "s1", "5000.00", "UPI", now, nil, now, "STU-2025-AB12", "Asha Rao", nil))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs(models.PaymentModeUPI).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	payments, total, err := repo.List(context.Background(), models.PaymentFilter{Mode: models.PaymentModeUPI})
	require.NoError(t, err)
	assert.Len(t, payments, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
