package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/studylab-api/internal/models"
	"github.com/noah-isme/studylab-api/pkg/database"
	appErrors "github.com/noah-isme/studylab-api/pkg/errors"
)

type leadRepository interface {
	Create(ctx context.Context, lead *models.Lead) error
	FindByID(ctx context.Context, id string) (*models.LeadDetail, error)
	List(ctx context.Context, filter models.LeadFilter) ([]models.LeadDetail, int, error)
	UpdateStatus(ctx context.Context, id string, status models.LeadStatus) error
	CreateInteraction(ctx context.Context, interaction *models.Interaction) error
	ListInteractions(ctx context.Context, leadID string) ([]models.Interaction, error)
	ListSources(ctx context.Context) ([]models.LeadSource, error)
}

type courseCatalog interface {
	List(ctx context.Context) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	ListBatches(ctx context.Context, courseID string) ([]models.Batch, error)
}

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// LeadService manages the sales pipeline up to, but not including, conversion.
type LeadService struct {
	repo      leadRepository
	courses   courseCatalog
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLeadService constructs the service.
func NewLeadService(repo leadRepository, courses courseCatalog, audit auditWriter, validate *validator.Validate, logger *zap.Logger) *LeadService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadService{repo: repo, courses: courses, audit: audit, validator: validate, logger: logger}
}

// Create stores a lead added by staff, owned by the actor.
func (s *LeadService) Create(ctx context.Context, req models.CreateLeadRequest, actor models.Actor) (*models.Lead, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid lead details")
	}
	status := models.LeadStatusNew
	if req.Status != "" {
		status = models.LeadStatus(strings.ToUpper(req.Status))
		if !status.Valid() || status == models.LeadStatusConverted {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid lead status")
		}
	}

	lead := &models.Lead{
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:         strings.TrimSpace(req.Phone),
		City:          strings.TrimSpace(req.City),
		Gender:        optional(req.Gender),
		Qualification: optional(req.Qualification),
		PaymentType:   optional(req.PaymentType),
		SourceID:      optional(req.SourceID),
		AssignedTo:    actor.UserIDPtr(),
		Status:        status,
	}
	if age, err := strconv.Atoi(strings.TrimSpace(req.Age)); err == nil && age > 0 {
		lead.Age = &age
	}
	if err := s.attachCourse(ctx, lead, req.CourseID); err != nil {
		return nil, err
	}
	if err := s.insert(ctx, lead); err != nil {
		return nil, err
	}

	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     actor.UserIDPtr(),
		Action:     models.AuditActionLeadCreate,
		Resource:   "lead",
		ResourceID: &lead.ID,
		NewValues:  auditPayload(map[string]interface{}{"email": lead.Email, "status": lead.Status}),
		IPAddress:  actor.IP,
		UserAgent:  actor.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record lead audit log", zap.Error(err))
	}
	return lead, nil
}

// SubmitEnquiry stores a lead from the public enquiry form.
func (s *LeadService) SubmitEnquiry(ctx context.Context, req models.EnquiryRequest) (*models.Lead, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "please fill in your name, email and phone")
	}
	lead := &models.Lead{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     strings.TrimSpace(req.Phone),
		City:      strings.TrimSpace(req.City),
		Status:    models.LeadStatusNew,
	}
	if err := s.attachCourse(ctx, lead, req.CourseID); err != nil {
		return nil, err
	}
	if err := s.insert(ctx, lead); err != nil {
		return nil, err
	}
	s.logger.Info("enquiry received", zap.String("lead_id", lead.ID), requestField(ctx))
	return lead, nil
}

// List returns a page of leads.
func (s *LeadService) List(ctx context.Context, filter models.LeadFilter) ([]models.LeadDetail, *models.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid lead status")
	}
	leads, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list leads")
	}
	return leads, pagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a lead with its interaction history.
func (s *LeadService) Get(ctx context.Context, id string) (*models.LeadDetail, []models.Interaction, error) {
	lead, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "lead not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lead")
	}
	interactions, err := s.repo.ListInteractions(ctx, id)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load interactions")
	}
	return lead, interactions, nil
}

// LogInteraction records a touchpoint. A NEW lead is promoted to CONTACTED.
func (s *LeadService) LogInteraction(ctx context.Context, leadID string, req models.InteractionRequest, actor models.Actor) (*models.Interaction, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid interaction")
	}
	lead, err := s.repo.FindByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lead not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lead")
	}

	interaction := &models.Interaction{
		LeadID:          leadID,
		CounselorID:     actor.UserIDPtr(),
		InteractionType: models.InteractionType(req.InteractionType),
		Notes:           strings.TrimSpace(req.Notes),
	}
	if req.NextFollowUp != "" {
		next, err := time.Parse("2006-01-02", req.NextFollowUp)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "follow-up date must be YYYY-MM-DD")
		}
		interaction.NextFollowUp = &next
	}
	if err := s.repo.CreateInteraction(ctx, interaction); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to log interaction")
	}

	if lead.Status == models.LeadStatusNew {
		if err := s.repo.UpdateStatus(ctx, leadID, models.LeadStatusContacted); err != nil && !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("failed to promote lead to contacted", zap.String("lead_id", leadID), zap.Error(err))
		}
	}
	return interaction, nil
}

// UpdateStatus moves a lead through the pipeline. Conversion has its own flow and cannot be set here.
func (s *LeadService) UpdateStatus(ctx context.Context, id string, req models.UpdateLeadStatusRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Validation(err, "status is required")
	}
	status := models.LeadStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if !status.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "invalid lead status")
	}
	if status == models.LeadStatusConverted {
		return appErrors.Clone(appErrors.ErrValidation, "use the registration form to convert a lead")
	}

	lead, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "lead not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lead")
	}
	if lead.Status == models.LeadStatusConverted {
		return appErrors.Clone(appErrors.ErrConflict, "converted leads cannot change status")
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrConflict, "converted leads cannot change status")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update lead status")
	}
	return nil
}

// FormOptions returns the courses, batches and sources offered by lead forms.
func (s *LeadService) FormOptions(ctx context.Context) ([]models.Course, []models.Batch, []models.LeadSource, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	batches, err := s.courses.ListBatches(ctx, "")
	if err != nil {
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list batches")
	}
	sources, err := s.repo.ListSources(ctx)
	if err != nil {
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lead sources")
	}
	return courses, batches, sources, nil
}

func (s *LeadService) attachCourse(ctx context.Context, lead *models.Lead, courseID string) error {
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return nil
	}
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	lead.CourseInterestedID = &course.ID
	return nil
}

func (s *LeadService) insert(ctx context.Context, lead *models.Lead) error {
	if err := s.repo.Create(ctx, lead); err != nil {
		if database.IsUniqueViolation(err, "") {
			return appErrors.Clone(appErrors.ErrConflict, "A lead with this email or phone already exists.")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save lead")
	}
	return nil
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
