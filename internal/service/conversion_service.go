package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/studylab-api/internal/models"
	"github.com/noah-isme/studylab-api/internal/repository"
	"github.com/noah-isme/studylab-api/pkg/database"
	appErrors "github.com/noah-isme/studylab-api/pkg/errors"
)

const (
	studentCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	studentCodeAttempts = 5
)

// ConversionService turns a lead into a student with a working login in one transaction.
type ConversionService struct {
	store     admissionStore
	allocator *UsernameAllocator
	cache     cacheInvalidator
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    BillingConfig
	now       func() time.Time
	codeGen   func(year int) (string, error)
}

// NewConversionService constructs the service.
func NewConversionService(store admissionStore, allocator *UsernameAllocator, cache cacheInvalidator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg BillingConfig) *ConversionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if allocator == nil {
		allocator = NewUsernameAllocator("")
	}
	cfg = cfg.withDefaults()
	return &ConversionService{
		store:     store,
		allocator: allocator,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		config:    cfg,
		now:       time.Now,
		codeGen:   randomStudentCode,
	}
}

// Convert creates the login, the student, the initial payment and any EMI schedule, then marks the
// lead CONVERTED. Converting an already converted lead writes nothing and returns ErrAlreadyConverted,
// which callers surface as a warning.
func (s *ConversionService) Convert(ctx context.Context, leadID string, req models.ConvertLeadRequest, actor models.Actor) (*models.ConversionResult, error) {
	result, err := s.convert(ctx, leadID, req, actor)
	switch {
	case err == nil:
		s.metrics.RecordConversion(ConversionOutcomeCreated)
	case errors.Is(err, appErrors.ErrAlreadyConverted):
		s.metrics.RecordConversion(ConversionOutcomeAlreadyConverted)
		s.logger.Warn("lead already converted", zap.String("lead_id", leadID), zap.String("actor", actor.UserID), requestField(ctx))
	case errors.Is(err, appErrors.ErrDuplicateAccount):
		s.metrics.RecordConversion(ConversionOutcomeDuplicateAccount)
	default:
		s.metrics.RecordConversion(ConversionOutcomeFailed)
	}
	return result, err
}

func (s *ConversionService) convert(ctx context.Context, leadID string, req models.ConvertLeadRequest, actor models.Actor) (*models.ConversionResult, error) {
	result := &models.ConversionResult{}
	err := s.store.WithinTx(ctx, func(tx repository.AdmissionTx) error {
		lead, err := tx.LockLead(ctx, leadID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "lead not found")
			}
			return err
		}
		// A repeated submission must report the conversion even when the form is no longer valid.
		if lead.Status == models.LeadStatusConverted {
			return appErrors.Clone(appErrors.ErrAlreadyConverted, "This lead is already a student.")
		}
		in, err := s.parseRequest(req)
		if err != nil {
			return err
		}

		if lead.CourseInterestedID == nil {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		course, err := tx.FindCourse(ctx, *lead.CourseInterestedID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "course not found")
			}
			return err
		}
		var batchID *string
		if id := strings.TrimSpace(req.BatchID); id != "" {
			batch, err := tx.FindBatch(ctx, id)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return appErrors.Clone(appErrors.ErrNotFound, "batch not found")
				}
				return err
			}
			batchID = &batch.ID
		}

		username, err := s.allocator.Allocate(ctx, tx, lead.Email)
		if err != nil {
			return err
		}
		user := &models.User{
			Username:     username,
			Email:        lead.Email,
			PasswordHash: string(in.hash),
			FirstName:    lead.FirstName,
			LastName:     lead.LastName,
			Active:       true,
		}
		if err := tx.CreateUser(ctx, user); err != nil {
			if database.IsUniqueViolation(err, "") {
				return appErrors.Clone(appErrors.ErrDuplicateAccount, "A user with this email already exists!")
			}
			return err
		}

		code, err := s.allocateStudentCode(ctx, tx)
		if err != nil {
			return err
		}
		student := &models.Student{
			UserID:      user.ID,
			StudentCode: code,
			LeadID:      &lead.ID,
			CourseID:    &course.ID,
			BatchID:     batchID,
			FeeTotal:    course.Price,
			Phone:       lead.Phone,
			Address:     strings.TrimSpace(req.Address),
			DateOfBirth: in.dob,
			Gender:      req.Gender,
		}
		if err := tx.CreateStudent(ctx, student); err != nil {
			return err
		}

		ledger, err := postToLedger(ctx, tx, ledgerEntry{
			student:  student,
			amount:   in.amount,
			mode:     in.mode,
			emiCount: in.emiCount,
			actorID:  actor.UserIDPtr(),
			today:    s.now(),
		}, s.config.FullPaymentTolerance)
		if err != nil {
			return err
		}

		if err := tx.SetLeadStatus(ctx, lead.ID, models.LeadStatusConverted); err != nil {
			return err
		}
		if err := tx.CreateAuditLog(ctx, &models.AuditLog{
			UserID:     actor.UserIDPtr(),
			Action:     models.AuditActionLeadConvert,
			Resource:   "lead",
			ResourceID: &lead.ID,
			OldValues:  auditPayload(map[string]interface{}{"status": lead.Status}),
			NewValues:  auditPayload(map[string]interface{}{"status": models.LeadStatusConverted, "student_id": student.ID, "student_code": student.StudentCode, "username": username}),
			IPAddress:  actor.IP,
			UserAgent:  actor.UserAgent,
		}); err != nil {
			return err
		}

		result.Student = student
		result.Username = username
		result.Payment = ledger.Payment
		result.Installments = ledger.Installments
		result.FeePaid = ledger.FeePaid
		result.Warnings = ledger.Warnings
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "failed to convert lead")
	}

	s.logger.Info("lead converted",
		zap.String("lead_id", leadID),
		zap.String("student_id", result.Student.ID),
		zap.Int("installments", len(result.Installments)),
		zap.Bool("fee_paid", result.FeePaid),
		requestField(ctx),
	)
	if result.Payment != nil {
		s.metrics.RecordPayment(string(result.Payment.Mode), result.Payment.Amount)
	}
	s.metrics.RecordInstallments(len(result.Installments))
	if s.cache != nil {
		s.cache.Invalidate(ctx, dashboardSummaryCacheKey)
	}
	return result, nil
}

type conversionInput struct {
	amount   decimal.Decimal
	mode     models.PaymentMode
	emiCount int
	dob      *time.Time
	hash     []byte
}

// parseRequest validates the registration form. A blank or unreadable EMI count means one installment.
func (s *ConversionService) parseRequest(req models.ConvertLeadRequest) (*conversionInput, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid registration details")
	}
	amount, mode, err := parsePaymentInput(req.Amount, req.Mode)
	if err != nil {
		return nil, err
	}
	in := &conversionInput{amount: amount, mode: mode}
	if mode == models.PaymentModeEMI {
		if in.emiCount, err = parseEMICount(req.Installments, s.config.MaxInstallments); err != nil {
			return nil, err
		}
	}
	if req.DateOfBirth != "" {
		parsed, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "date of birth must be YYYY-MM-DD")
		}
		in.dob = &parsed
	}
	in.hash, err = bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	return in, nil
}

func (s *ConversionService) allocateStudentCode(ctx context.Context, tx repository.AdmissionTx) (string, error) {
	year := s.now().Year()
	for i := 0; i < studentCodeAttempts; i++ {
		code, err := s.codeGen(year)
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate student code")
		}
		taken, err := tx.StudentCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", appErrors.Clone(appErrors.ErrConflict, "could not allocate a unique student code")
}

func randomStudentCode(year int) (string, error) {
	var b strings.Builder
	for i := 0; i < 4; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(studentCodeAlphabet))))
		if err != nil {
			return "", err
		}
		b.WriteByte(studentCodeAlphabet[n.Int64()])
	}
	return fmt.Sprintf("STU-%d-%s", year, b.String()), nil
}
