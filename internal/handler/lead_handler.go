package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studylab-api/internal/models"
	"github.com/noah-isme/studylab-api/pkg/response"
)

var interactionTypes = []models.InteractionType{
	models.InteractionCall,
	models.InteractionWhatsApp,
	models.InteractionEmail,
	models.InteractionMeeting,
	models.InteractionOther,
}

// LeadHandler serves the BDM lead screens.
type LeadHandler struct {
	leads leadService
}

// NewLeadHandler constructs a LeadHandler.
func NewLeadHandler(leads leadService) *LeadHandler {
	return &LeadHandler{leads: leads}
}

// List godoc
// @Summary List leads
// @Tags Leads
// @Param status query string false "Pipeline status"
// @Param q query string false "Name, email or phone"
// @Param page query int false "Page"
// @Success 200 "HTML page"
// @Router /bdm/leads [get]
func (h *LeadHandler) List(c *gin.Context) {
	filter := models.LeadFilter{
		Status:   models.LeadStatus(strings.ToUpper(c.Query("status"))),
		Search:   strings.TrimSpace(c.Query("q")),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
	}
	leads, pagination, err := h.leads.List(c.Request.Context(), filter)
	if err != nil {
		response.RedirectWithError(c, err, "/bdm/dashboard")
		return
	}
	response.HTML(c, http.StatusOK, "leads_list.html", gin.H{
		"title":      "Leads",
		"leads":      leads,
		"pagination": pagination,
		"filter":     filter,
		"statuses":   models.LeadStatuses,
	})
}

// NewForm renders the manual lead form.
func (h *LeadHandler) NewForm(c *gin.Context) {
	courses, _, sources, err := h.leads.FormOptions(c.Request.Context())
	if err != nil {
		response.RedirectWithError(c, err, "/bdm/leads")
		return
	}
	response.HTML(c, http.StatusOK, "lead_form.html", gin.H{
		"title":    "Add lead",
		"courses":  courses,
		"sources":  sources,
		"statuses": models.LeadStatuses,
	})
}

// Create godoc
// @Summary Add a lead
// @Tags Leads
// @Accept x-www-form-urlencoded
// @Param first_name formData string true "First name"
// @Param email formData string true "Email"
// @Param phone formData string true "Phone"
// @Success 303 "Redirect to the lead"
// @Router /bdm/leads/new [post]
func (h *LeadHandler) Create(c *gin.Context) {
	var req models.CreateLeadRequest
	_ = c.ShouldBind(&req)

	lead, err := h.leads.Create(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.RedirectWithError(c, err, "/bdm/leads/new")
		return
	}
	response.AddFlash(c, response.FlashSuccess, "Lead "+lead.FullName()+" added.")
	response.Redirect(c, "/bdm/leads/"+lead.ID)
}

// Show renders one lead with its interaction history.
func (h *LeadHandler) Show(c *gin.Context) {
	lead, interactions, err := h.leads.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RedirectWithError(c, err, "/bdm/leads")
		return
	}
	response.HTML(c, http.StatusOK, "lead_detail.html", gin.H{
		"title":            lead.FullName(),
		"lead":             lead,
		"interactions":     interactions,
		"statuses":         models.LeadStatuses,
		"interactionTypes": interactionTypes,
	})
}

// LogInteraction godoc
// @Summary Log a counseling interaction
// @Tags Leads
// @Accept x-www-form-urlencoded
// @Param id path string true "Lead ID"
// @Param interaction_type formData string true "CALL, WHATSAPP, EMAIL, MEETING or OTHER"
// @Param notes formData string true "Notes"
// @Param next_follow_up formData string false "YYYY-MM-DD"
// @Success 303 "Redirect to the lead"
// @Router /bdm/leads/{id}/interactions [post]
func (h *LeadHandler) LogInteraction(c *gin.Context) {
	id := c.Param("id")
	var req models.InteractionRequest
	_ = c.ShouldBind(&req)

	if _, err := h.leads.LogInteraction(c.Request.Context(), id, req, actorFromContext(c)); err != nil {
		response.RedirectWithError(c, err, "/bdm/leads/"+id)
		return
	}
	response.AddFlash(c, response.FlashSuccess, "Interaction logged.")
	response.Redirect(c, "/bdm/leads/"+id)
}

// UpdateStatus godoc
// @Summary Change a lead's pipeline status
// @Tags Leads
// @Accept x-www-form-urlencoded
// @Param id path string true "Lead ID"
// @Param status formData string true "New status"
// @Success 303 "Redirect to the lead"
// @Router /bdm/leads/{id}/status [post]
func (h *LeadHandler) UpdateStatus(c *gin.Context) {
	id := c.Param("id")
	var req models.UpdateLeadStatusRequest
	_ = c.ShouldBind(&req)

	if err := h.leads.UpdateStatus(c.Request.Context(), id, req); err != nil {
		response.RedirectWithError(c, err, "/bdm/leads/"+id)
		return
	}
	response.AddFlash(c, response.FlashSuccess, "Status updated.")
	response.Redirect(c, "/bdm/leads/"+id)
}
