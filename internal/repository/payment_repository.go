package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/studylab-api/internal/models"
)

// PaymentRepository serves the finance ledger read models.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs the repository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// List returns payments matching the filter, newest first. A zero page size returns every row.
func (r *PaymentRepository) List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, int, error) {
	base := ` FROM payments p
JOIN students s ON s.id = p.student_id
JOIN users u ON u.id = s.user_id
LEFT JOIN courses c ON c.id = s.course_id`
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		idx := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(LOWER(u.first_name) LIKE $%d OR LOWER(u.last_name) LIKE $%d OR LOWER(s.student_code) LIKE $%d)", idx, idx, idx))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.Mode != "" {
		conditions = append(conditions, fmt.Sprintf("p.mode = $%d", len(args)+1))
		args = append(args, filter.Mode)
	}
	if filter.PaidOn != nil {
		conditions = append(conditions, fmt.Sprintf("p.paid_on = $%d", len(args)+1))
		args = append(args, filter.PaidOn.Format("2006-01-02"))
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	listQuery := `SELECT p.id, p.student_id, p.amount, p.mode, p.paid_on, p.recorded_by, p.created_at,
s.student_code, TRIM(u.first_name || ' ' || u.last_name) AS student_name, c.name AS course_name` + base + clause + ` ORDER BY p.paid_on DESC, p.created_at DESC`
	if filter.PageSize > 0 {
		page, size := normalizePage(filter.Page, filter.PageSize)
		listQuery += fmt.Sprintf(" LIMIT %d OFFSET %d", size, (page-1)*size)
	}

	var payments []models.PaymentDetail
	if err := r.db.SelectContext(ctx, &payments, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*)"+base+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}
	return payments, total, nil
}

// ListPendingInstallments returns unpaid installments ordered by due date.
func (r *PaymentRepository) ListPendingInstallments(ctx context.Context, filter models.InstallmentFilter) ([]models.InstallmentDetail, error) {
	query := `SELECT i.id, i.student_id, i.schedule_id, i.sequence, i.amount, i.due_date, i.is_paid, i.paid_at,
s.student_code, TRIM(u.first_name || ' ' || u.last_name) AS student_name, c.name AS course_name
FROM installments i
JOIN students s ON s.id = i.student_id
JOIN users u ON u.id = s.user_id
LEFT JOIN courses c ON c.id = s.course_id
WHERE i.is_paid = FALSE`
	var args []interface{}
	if filter.Search != "" {
		idx := len(args) + 1
		query += fmt.Sprintf(" AND (LOWER(u.first_name) LIKE $%d OR LOWER(u.last_name) LIKE $%d OR LOWER(s.student_code) LIKE $%d)", idx, idx, idx)
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.CourseID != "" {
		query += fmt.Sprintf(" AND s.course_id = $%d", len(args)+1)
		args = append(args, filter.CourseID)
	}
	query += " ORDER BY i.due_date, i.sequence"

	var items []models.InstallmentDetail
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list pending installments: %w", err)
	}
	return items, nil
}

// FinanceSummary aggregates the headline figures for the BDM dashboard.
func (r *PaymentRepository) FinanceSummary(ctx context.Context) (*models.FinanceSummary, error) {
	const query = `SELECT
(SELECT COALESCE(SUM(amount), 0) FROM payments) AS total_income,
(SELECT COALESCE(SUM(fee_total), 0) FROM students) AS expected_revenue,
(SELECT COALESCE(SUM(amount), 0) FROM installments WHERE is_paid = FALSE) AS pending_emi_amount,
(SELECT COUNT(*) FROM installments WHERE is_paid = FALSE) AS pending_emi_count,
(SELECT COUNT(*) FROM students) AS total_students,
(SELECT COUNT(*) FROM students WHERE is_fee_paid = TRUE) AS fee_paid_students,
(SELECT COUNT(*) FROM leads WHERE status = 'CONVERTED') AS converted_leads,
(SELECT COUNT(*) FROM leads WHERE status NOT IN ('CONVERTED', 'LOST', 'JUNK')) AS open_leads`
	var summary models.FinanceSummary
	if err := r.db.GetContext(ctx, &summary, query); err != nil {
		return nil, fmt.Errorf("finance summary: %w", err)
	}
	summary.PendingIncome = summary.ExpectedRevenue.Sub(summary.TotalIncome)
	return &summary, nil
}
