package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/studylab-api/internal/models"
)

const studentColumns = `id, user_id, student_code, lead_id, course_id, batch_id, fee_total, phone, address, date_of_birth, gender, is_fee_paid, documents_verified, id_card_issued, lms_access_granted, welcome_kit_given, whatsapp_group_added, created_at`

const admissionSelect = `SELECT s.id AS student_id, s.student_code, TRIM(u.first_name || ' ' || u.last_name) AS full_name, u.email,
c.name AS course_name, b.name AS batch_name, s.fee_total, COALESCE(p.paid, 0) AS paid_amount, s.is_fee_paid, s.created_at`

const admissionFrom = ` FROM students s
JOIN users u ON u.id = s.user_id
LEFT JOIN courses c ON c.id = s.course_id
LEFT JOIN batches b ON b.id = s.batch_id
LEFT JOIN (SELECT student_id, SUM(amount) AS paid FROM payments GROUP BY student_id) p ON p.student_id = s.id`

// StudentRepository serves the read side of enrolled students.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID returns a student.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// FindByUserID returns the student profile owned by a login.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE user_id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student by user: %w", err)
	}
	return &student, nil
}

// FindAdmission returns the fee summary for one student.
func (r *StudentRepository) FindAdmission(ctx context.Context, studentID string) (*models.AdmissionSummary, error) {
	query := admissionSelect + admissionFrom + ` WHERE s.id = $1`
	var summary models.AdmissionSummary
	if err := r.db.GetContext(ctx, &summary, query, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find admission: %w", err)
	}
	return &summary, nil
}

// ListAdmissions returns every student with total, paid and balance, newest first.
func (r *StudentRepository) ListAdmissions(ctx context.Context, filter models.AdmissionFilter) ([]models.AdmissionSummary, int, error) {
	clause := ""
	var args []interface{}
	if filter.Search != "" {
		clause = ` WHERE (LOWER(u.first_name) LIKE $1 OR LOWER(u.last_name) LIKE $1 OR LOWER(s.student_code) LIKE $1 OR s.phone LIKE $1)`
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	page, size := normalizePage(filter.Page, filter.PageSize)
	offset := (page - 1) * size

	listQuery := fmt.Sprintf("%s%s%s ORDER BY s.created_at DESC LIMIT %d OFFSET %d", admissionSelect, admissionFrom, clause, size, offset)
	var items []models.AdmissionSummary
	if err := r.db.SelectContext(ctx, &items, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list admissions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM students s JOIN users u ON u.id = s.user_id%s", clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count admissions: %w", err)
	}
	return items, total, nil
}

// ListPayments returns a student's payments in the order they were taken.
func (r *StudentRepository) ListPayments(ctx context.Context, studentID string) ([]models.Payment, error) {
	const query = `SELECT id, student_id, amount, mode, paid_on, recorded_by, created_at FROM payments WHERE student_id = $1 ORDER BY paid_on, created_at`
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, studentID); err != nil {
		return nil, fmt.Errorf("list student payments: %w", err)
	}
	return payments, nil
}

// ListInstallments returns every installment ever scheduled for a student, by due date.
func (r *StudentRepository) ListInstallments(ctx context.Context, studentID string) ([]models.Installment, error) {
	const query = `SELECT id, student_id, schedule_id, sequence, amount, due_date, is_paid, paid_at FROM installments WHERE student_id = $1 ORDER BY due_date, sequence`
	var items []models.Installment
	if err := r.db.SelectContext(ctx, &items, query, studentID); err != nil {
		return nil, fmt.Errorf("list student installments: %w", err)
	}
	return items, nil
}
