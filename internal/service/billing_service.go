package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/studylab-api/internal/models"
	"github.com/noah-isme/studylab-api/internal/repository"
	appErrors "github.com/noah-isme/studylab-api/pkg/errors"
)

const dashboardSummaryCacheKey = "dashboard:finance-summary"

const warnNoBalanceForEMI = "Payment recorded, but no balance left for EMIs."

type admissionStore interface {
	WithinTx(ctx context.Context, fn func(repository.AdmissionTx) error) error
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
	FindAdmission(ctx context.Context, studentID string) (*models.AdmissionSummary, error)
	ListAdmissions(ctx context.Context, filter models.AdmissionFilter) ([]models.AdmissionSummary, int, error)
	ListPayments(ctx context.Context, studentID string) ([]models.Payment, error)
	ListInstallments(ctx context.Context, studentID string) ([]models.Installment, error)
}

type paymentReader interface {
	List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, int, error)
	ListPendingInstallments(ctx context.Context, filter models.InstallmentFilter) ([]models.InstallmentDetail, error)
	FinanceSummary(ctx context.Context) (*models.FinanceSummary, error)
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, keys ...string)
}

// BillingConfig carries fee policy.
type BillingConfig struct {
	FullPaymentTolerance decimal.Decimal
	MaxInstallments      int
}

// DefaultMaxInstallments caps a single EMI schedule when no limit is configured.
const DefaultMaxInstallments = 60

func (c BillingConfig) withDefaults() BillingConfig {
	if c.FullPaymentTolerance.IsZero() {
		c.FullPaymentTolerance = decimal.NewFromInt(1)
	}
	if c.MaxInstallments < 1 {
		c.MaxInstallments = DefaultMaxInstallments
	}
	return c
}

// BillingService records payments and derives installment schedules.
type BillingService struct {
	store     admissionStore
	students  studentReader
	payments  paymentReader
	cache     cacheInvalidator
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    BillingConfig
	now       func() time.Time
}

// NewBillingService constructs the billing engine.
func NewBillingService(store admissionStore, students studentReader, payments paymentReader, cache cacheInvalidator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg BillingConfig) *BillingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	return &BillingService{
		store:     store,
		students:  students,
		payments:  payments,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		config:    cfg,
		now:       time.Now,
	}
}

// RecordPayment appends a payment for a student and, for EMI with an installment count, appends a
// fresh installment schedule for the remaining balance. Earlier schedules are never superseded.
func (s *BillingService) RecordPayment(ctx context.Context, studentID string, req models.RecordPaymentRequest, actor models.Actor) (*models.PaymentResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "payment mode is required")
	}
	amount, mode, err := parsePaymentInput(req.Amount, req.Mode)
	if err != nil {
		return nil, err
	}
	emiCount := 0
	if mode == models.PaymentModeEMI && strings.TrimSpace(req.Installments) != "" {
		emiCount, err = parseEMICount(req.Installments, s.config.MaxInstallments)
		if err != nil {
			return nil, err
		}
	}

	var result *models.PaymentResult
	err = s.store.WithinTx(ctx, func(tx repository.AdmissionTx) error {
		student, err := tx.LockStudent(ctx, studentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "student not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
		}

		result, err = postToLedger(ctx, tx, ledgerEntry{
			student:  student,
			amount:   amount,
			mode:     mode,
			emiCount: emiCount,
			actorID:  actor.UserIDPtr(),
			today:    s.now(),
		}, s.config.FullPaymentTolerance)
		if err != nil {
			return err
		}
		if result.Payment == nil && len(result.Installments) == 0 {
			return nil
		}
		return tx.CreateAuditLog(ctx, &models.AuditLog{
			UserID:     actor.UserIDPtr(),
			Action:     models.AuditActionPaymentRecord,
			Resource:   "student",
			ResourceID: &student.ID,
			NewValues:  auditPayload(map[string]interface{}{"amount": amount.StringFixed(2), "mode": mode, "installments": len(result.Installments)}),
			IPAddress:  actor.IP,
			UserAgent:  actor.UserAgent,
		})
	})
	if err != nil {
		return nil, asAppError(err, "failed to record payment")
	}

	s.afterLedgerWrite(ctx, result)
	return result, nil
}

// SettleInstallment marks an unpaid installment paid by appending a matching EMI payment.
func (s *BillingService) SettleInstallment(ctx context.Context, installmentID string, actor models.Actor) (*models.PaymentResult, error) {
	var result *models.PaymentResult
	err := s.store.WithinTx(ctx, func(tx repository.AdmissionTx) error {
		item, err := tx.LockInstallment(ctx, installmentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "installment not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load installment")
		}
		if item.IsPaid {
			return appErrors.Clone(appErrors.ErrConflict, "installment is already paid")
		}
		student, err := tx.LockStudent(ctx, item.StudentID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
		}

		now := s.now()
		if err := tx.MarkInstallmentPaid(ctx, item.ID, now.UTC()); err != nil {
			return err
		}
		result, err = postToLedger(ctx, tx, ledgerEntry{
			student: student,
			amount:  item.Amount,
			mode:    models.PaymentModeEMI,
			actorID: actor.UserIDPtr(),
			today:   now,
		}, s.config.FullPaymentTolerance)
		if err != nil {
			return err
		}
		return tx.CreateAuditLog(ctx, &models.AuditLog{
			UserID:     actor.UserIDPtr(),
			Action:     models.AuditActionInstallmentSettle,
			Resource:   "installment",
			ResourceID: &item.ID,
			NewValues:  auditPayload(map[string]interface{}{"amount": item.Amount.StringFixed(2), "student_id": student.ID}),
			IPAddress:  actor.IP,
			UserAgent:  actor.UserAgent,
		})
	})
	if err != nil {
		return nil, asAppError(err, "failed to settle installment")
	}

	s.afterLedgerWrite(ctx, result)
	return result, nil
}

// StudentStatement returns the fee position of one student.
func (s *BillingService) StudentStatement(ctx context.Context, studentID string) (*models.StudentStatement, error) {
	summary, err := s.students.FindAdmission(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	payments, err := s.students.ListPayments(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payments")
	}
	installments, err := s.students.ListInstallments(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load installments")
	}

	statement := &models.StudentStatement{
		Student:      *student,
		FullName:     summary.FullName,
		FeeTotal:     summary.FeeTotal,
		PaidAmount:   summary.PaidAmount,
		Balance:      summary.Balance(),
		Payments:     payments,
		Installments: installments,
	}
	if summary.CourseName != nil {
		statement.CourseName = *summary.CourseName
	}
	return statement, nil
}

// StatementForUser resolves the student profile behind a login and returns its statement.
func (s *BillingService) StatementForUser(ctx context.Context, userID string) (*models.StudentStatement, error) {
	student, err := s.students.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return s.StudentStatement(ctx, student.ID)
}

// ListAdmissions returns every student with total, paid and balance.
func (s *BillingService) ListAdmissions(ctx context.Context, filter models.AdmissionFilter) ([]models.AdmissionSummary, *models.Pagination, error) {
	items, total, err := s.students.ListAdmissions(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list admissions")
	}
	return items, pagination(filter.Page, filter.PageSize, total), nil
}

// GetAdmission returns one admission summary.
func (s *BillingService) GetAdmission(ctx context.Context, studentID string) (*models.AdmissionSummary, error) {
	summary, err := s.students.FindAdmission(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return summary, nil
}

// ListPayments returns the payment ledger with the finance summary.
func (s *BillingService) ListPayments(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, *models.FinanceSummary, *models.Pagination, error) {
	if filter.Mode != "" && !filter.Mode.Valid() {
		return nil, nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown payment mode")
	}
	payments, total, err := s.payments.List(ctx, filter)
	if err != nil {
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	summary, err := s.payments.FinanceSummary(ctx)
	if err != nil {
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute finance summary")
	}
	return payments, summary, pagination(filter.Page, filter.PageSize, total), nil
}

// ListPendingInstallments returns unpaid installments by due date with overdue totals as of today.
func (s *BillingService) ListPendingInstallments(ctx context.Context, filter models.InstallmentFilter) ([]models.InstallmentDetail, models.InstallmentTotals, error) {
	items, err := s.payments.ListPendingInstallments(ctx, filter)
	if err != nil {
		return nil, models.InstallmentTotals{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending installments")
	}
	today := s.now()
	totals := models.InstallmentTotals{PendingAmount: decimal.Zero, OverdueAmount: decimal.Zero}
	for _, item := range items {
		totals.PendingAmount = totals.PendingAmount.Add(item.Amount)
		totals.PendingCount++
		if item.IsOverdue(today) {
			totals.OverdueAmount = totals.OverdueAmount.Add(item.Amount)
			totals.OverdueCount++
		}
	}
	return items, totals, nil
}

func (s *BillingService) afterLedgerWrite(ctx context.Context, result *models.PaymentResult) {
	if result == nil {
		return
	}
	if result.Payment != nil {
		s.metrics.RecordPayment(string(result.Payment.Mode), result.Payment.Amount)
	}
	s.metrics.RecordInstallments(len(result.Installments))
	if s.cache != nil && (result.Payment != nil || len(result.Installments) > 0) {
		s.cache.Invalidate(ctx, dashboardSummaryCacheKey)
	}
}

type ledgerEntry struct {
	student  *models.Student
	amount   decimal.Decimal
	mode     models.PaymentMode
	emiCount int
	actorID  *string
	today    time.Time
}

// postToLedger writes the payment, the optional EMI schedule and the paid flag for a locked student.
// emiCount of zero means no schedule was requested.
func postToLedger(ctx context.Context, tx repository.AdmissionTx, e ledgerEntry, tolerance decimal.Decimal) (*models.PaymentResult, error) {
	result := &models.PaymentResult{FeePaid: e.student.IsFeePaid}

	if e.amount.IsPositive() {
		payment := &models.Payment{
			StudentID:  e.student.ID,
			Amount:     e.amount,
			Mode:       e.mode,
			PaidOn:     dateOnly(e.today),
			RecordedBy: e.actorID,
		}
		if err := tx.CreatePayment(ctx, payment); err != nil {
			return nil, err
		}
		result.Payment = payment
	}

	paid, err := tx.SumPayments(ctx, e.student.ID)
	if err != nil {
		return nil, err
	}

	if e.mode == models.PaymentModeEMI && e.emiCount > 0 {
		balance := e.student.FeeTotal.Sub(paid)
		if balance.IsPositive() {
			scheduleID := uuid.NewString()
			for _, planned := range ScheduleInstallments(balance, e.emiCount, e.today) {
				result.Installments = append(result.Installments, models.Installment{
					StudentID:  e.student.ID,
					ScheduleID: scheduleID,
					Sequence:   planned.Sequence,
					Amount:     planned.Amount,
					DueDate:    planned.DueDate,
				})
			}
			if err := tx.CreateInstallments(ctx, result.Installments); err != nil {
				return nil, err
			}
		} else {
			result.Warnings = append(result.Warnings, warnNoBalanceForEMI)
		}
	}

	if !e.student.IsFeePaid && isFullyPaid(paid, e.student.FeeTotal, tolerance) {
		if err := tx.MarkFeePaid(ctx, e.student.ID); err != nil {
			return nil, err
		}
		e.student.IsFeePaid = true
		result.FeePaid = true
	}
	return result, nil
}

// isFullyPaid holds when the outstanding balance is strictly below the tolerance.
func isFullyPaid(paid, total, tolerance decimal.Decimal) bool {
	return paid.GreaterThan(total.Sub(tolerance))
}

func parsePaymentInput(rawAmount, rawMode string) (decimal.Decimal, models.PaymentMode, error) {
	amount := models.ParseAmount(rawAmount)
	if amount.IsNegative() {
		return decimal.Zero, "", appErrors.Clone(appErrors.ErrValidation, "amount cannot be negative")
	}
	mode := models.PaymentMode(strings.ToUpper(strings.TrimSpace(rawMode)))
	if mode != "" && !mode.Valid() {
		return decimal.Zero, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown payment mode %q", rawMode))
	}
	if mode == "" && amount.IsPositive() {
		return decimal.Zero, "", appErrors.Clone(appErrors.ErrValidation, "payment mode is required")
	}
	return amount.Round(2), mode, nil
}

// parseEMICount reads a requested installment count and rejects anything outside 1..limit.
func parseEMICount(raw string, limit int) (int, error) {
	count := models.ParseInstallmentCount(raw)
	if count < 1 || count > limit {
		return 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("installments must be between 1 and %d", limit))
	}
	return count, nil
}

func asAppError(err error, message string) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func auditPayload(values map[string]interface{}) []byte {
	raw, err := json.Marshal(values)
	if err != nil {
		return nil
	}
	return raw
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func pagination(page, size, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}
