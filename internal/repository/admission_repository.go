package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/studylab-api/internal/models"
	"github.com/noah-isme/studylab-api/pkg/database"
)

// AdmissionTx is the set of writes that make up a conversion or a payment. Every call runs
// on the same database transaction.
type AdmissionTx interface {
	LockLead(ctx context.Context, id string) (*models.Lead, error)
	FindCourse(ctx context.Context, id string) (*models.Course, error)
	FindBatch(ctx context.Context, id string) (*models.Batch, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	StudentCodeExists(ctx context.Context, code string) (bool, error)
	CreateUser(ctx context.Context, user *models.User) error
	CreateStudent(ctx context.Context, student *models.Student) error
	SetLeadStatus(ctx context.Context, id string, status models.LeadStatus) error
	LockStudent(ctx context.Context, id string) (*models.Student, error)
	LockInstallment(ctx context.Context, id string) (*models.Installment, error)
	MarkInstallmentPaid(ctx context.Context, id string, paidAt time.Time) error
	CreatePayment(ctx context.Context, payment *models.Payment) error
	SumPayments(ctx context.Context, studentID string) (decimal.Decimal, error)
	CreateInstallments(ctx context.Context, items []models.Installment) error
	MarkFeePaid(ctx context.Context, studentID string) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// AdmissionRepository opens transactional admission units.
type AdmissionRepository struct {
	db *sqlx.DB
}

// NewAdmissionRepository constructs the repository.
func NewAdmissionRepository(db *sqlx.DB) *AdmissionRepository {
	return &AdmissionRepository{db: db}
}

// WithinTx runs fn in one transaction. Any error returned by fn rolls back every write.
func (r *AdmissionRepository) WithinTx(ctx context.Context, fn func(AdmissionTx) error) error {
	return database.WithTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		return fn(&admissionTx{tx: tx})
	})
}

type admissionTx struct {
	tx *sqlx.Tx
}

func (a *admissionTx) LockLead(ctx context.Context, id string) (*models.Lead, error) {
	const query = `SELECT id, first_name, last_name, email, phone, city, age, gender, qualification, payment_type, course_interested_id, source_id, assigned_to, status, created_at, updated_at FROM leads WHERE id = $1 FOR UPDATE`
	var lead models.Lead
	if err := a.tx.GetContext(ctx, &lead, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("lock lead: %w", err)
	}
	return &lead, nil
}

func (a *admissionTx) FindCourse(ctx context.Context, id string) (*models.Course, error) {
	return findCourse(ctx, a.tx, id)
}

func (a *admissionTx) FindBatch(ctx context.Context, id string) (*models.Batch, error) {
	return findBatch(ctx, a.tx, id)
}

func (a *admissionTx) UsernameExists(ctx context.Context, username string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`
	var exists bool
	if err := a.tx.GetContext(ctx, &exists, query, username); err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return exists, nil
}

func (a *admissionTx) StudentCodeExists(ctx context.Context, code string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM students WHERE student_code = $1)`
	var exists bool
	if err := a.tx.GetContext(ctx, &exists, query, code); err != nil {
		return false, fmt.Errorf("check student code: %w", err)
	}
	return exists, nil
}

func (a *admissionTx) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	const query = `INSERT INTO users (id, username, email, password_hash, first_name, last_name, is_staff, is_superuser, active, created_at, updated_at)
VALUES (:id, :username, :email, :password_hash, :first_name, :last_name, :is_staff, :is_superuser, :active, :created_at, :updated_at)`
	if _, err := a.tx.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (a *admissionTx) CreateStudent(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO students (id, user_id, student_code, lead_id, course_id, batch_id, fee_total, phone, address, date_of_birth, gender, is_fee_paid, documents_verified, id_card_issued, lms_access_granted, welcome_kit_given, whatsapp_group_added, created_at)
VALUES (:id, :user_id, :student_code, :lead_id, :course_id, :batch_id, :fee_total, :phone, :address, :date_of_birth, :gender, :is_fee_paid, :documents_verified, :id_card_issued, :lms_access_granted, :welcome_kit_given, :whatsapp_group_added, :created_at)`
	if _, err := a.tx.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

func (a *admissionTx) SetLeadStatus(ctx context.Context, id string, status models.LeadStatus) error {
	const query = `UPDATE leads SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := a.tx.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("set lead status: %w", err)
	}
	return nil
}

func (a *admissionTx) LockStudent(ctx context.Context, id string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1 FOR UPDATE`
	var student models.Student
	if err := a.tx.GetContext(ctx, &student, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("lock student: %w", err)
	}
	return &student, nil
}

func (a *admissionTx) LockInstallment(ctx context.Context, id string) (*models.Installment, error) {
	const query = `SELECT id, student_id, schedule_id, sequence, amount, due_date, is_paid, paid_at FROM installments WHERE id = $1 FOR UPDATE`
	var item models.Installment
	if err := a.tx.GetContext(ctx, &item, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("lock installment: %w", err)
	}
	return &item, nil
}

func (a *admissionTx) MarkInstallmentPaid(ctx context.Context, id string, paidAt time.Time) error {
	const query = `UPDATE installments SET is_paid = TRUE, paid_at = $2 WHERE id = $1`
	if _, err := a.tx.ExecContext(ctx, query, id, paidAt); err != nil {
		return fmt.Errorf("mark installment paid: %w", err)
	}
	return nil
}

func (a *admissionTx) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = now
	}
	if payment.PaidOn.IsZero() {
		payment.PaidOn = now
	}
	const query = `INSERT INTO payments (id, student_id, amount, mode, paid_on, recorded_by, created_at) VALUES (:id, :student_id, :amount, :mode, :paid_on, :recorded_by, :created_at)`
	if _, err := a.tx.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

func (a *admissionTx) SumPayments(ctx context.Context, studentID string) (decimal.Decimal, error) {
	const query = `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE student_id = $1`
	var total decimal.Decimal
	if err := a.tx.GetContext(ctx, &total, query, studentID); err != nil {
		return decimal.Zero, fmt.Errorf("sum payments: %w", err)
	}
	return total, nil
}

func (a *admissionTx) CreateInstallments(ctx context.Context, items []models.Installment) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
	}
	const query = `INSERT INTO installments (id, student_id, schedule_id, sequence, amount, due_date, is_paid, paid_at) VALUES (:id, :student_id, :schedule_id, :sequence, :amount, :due_date, :is_paid, :paid_at)`
	if _, err := a.tx.NamedExecContext(ctx, query, items); err != nil {
		return fmt.Errorf("create installments: %w", err)
	}
	return nil
}

func (a *admissionTx) MarkFeePaid(ctx context.Context, studentID string) error {
	const query = `UPDATE students SET is_fee_paid = TRUE WHERE id = $1`
	if _, err := a.tx.ExecContext(ctx, query, studentID); err != nil {
		return fmt.Errorf("mark fee paid: %w", err)
	}
	return nil
}

func (a *admissionTx) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	return insertAuditLog(ctx, a.tx, log)
}
