package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studylab-api/internal/models"
	"github.com/noah-isme/studylab-api/pkg/response"
)

type leadService interface {
	Create(ctx context.Context, req models.CreateLeadRequest, actor models.Actor) (*models.Lead, error)
	SubmitEnquiry(ctx context.Context, req models.EnquiryRequest) (*models.Lead, error)
	List(ctx context.Context, filter models.LeadFilter) ([]models.LeadDetail, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.LeadDetail, []models.Interaction, error)
	LogInteraction(ctx context.Context, leadID string, req models.InteractionRequest, actor models.Actor) (*models.Interaction, error)
	UpdateStatus(ctx context.Context, id string, req models.UpdateLeadStatusRequest) error
	FormOptions(ctx context.Context) ([]models.Course, []models.Batch, []models.LeadSource, error)
}

// EnquiryHandler serves the public enquiry form.
type EnquiryHandler struct {
	leads leadService
}

// NewEnquiryHandler constructs an EnquiryHandler.
func NewEnquiryHandler(leads leadService) *EnquiryHandler {
	return &EnquiryHandler{leads: leads}
}

// Form renders the enquiry page.
func (h *EnquiryHandler) Form(c *gin.Context) {
	courses, _, _, err := h.leads.FormOptions(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
	}
	response.HTML(c, http.StatusOK, "enquiry.html", gin.H{"title": "Course enquiry", "courses": courses})
}

// Submit godoc
// @Summary Submit a course enquiry
// @Description Public form; creates a NEW lead
// @Tags Leads
// @Accept x-www-form-urlencoded
// @Param first_name formData string true "First name"
// @Param email formData string true "Email"
// @Param phone formData string true "Phone"
// @Param course_id formData string false "Course of interest"
// @Success 303 "Redirect back to the form"
// @Router /enquiry [post]
func (h *EnquiryHandler) Submit(c *gin.Context) {
	var req models.EnquiryRequest
	_ = c.ShouldBind(&req)

	if _, err := h.leads.SubmitEnquiry(c.Request.Context(), req); err != nil {
		response.RedirectWithError(c, err, "/enquiry")
		return
	}
	response.AddFlash(c, response.FlashSuccess, "Thank you! Our counselor will contact you shortly.")
	response.Redirect(c, "/enquiry")
}
