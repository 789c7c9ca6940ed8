package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studylab-api/internal/models"
	appErrors "github.com/noah-isme/studylab-api/pkg/errors"
	"github.com/noah-isme/studylab-api/pkg/response"
)

type dashboardService interface {
	BDMSummary(ctx context.Context) (*models.BDMDashboard, error)
}

type statementReader interface {
	StatementForUser(ctx context.Context, userID string) (*models.StudentStatement, error)
}

type courseLister interface {
	List(ctx context.Context) ([]models.Course, error)
}

// DashboardHandler routes every role to its landing page.
type DashboardHandler struct {
	dashboard  dashboardService
	statements statementReader
	courses    courseLister
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(dashboard dashboardService, statements statementReader, courses courseLister) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, statements: statements, courses: courses}
}

// Home dispatches on the role resolved at login.
func (h *DashboardHandler) Home(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Redirect(c, "/login")
		return
	}

	switch claims.Role {
	case models.RoleSuperAdmin, models.RoleStaff:
		response.Redirect(c, "/bdm/dashboard")
	case models.RoleTrainer:
		h.trainerHome(c)
	default:
		h.studentHome(c, claims.UserID)
	}
}

// BDM godoc
// @Summary BDM finance dashboard
// @Tags Dashboard
// @Success 200 "HTML page"
// @Router /bdm/dashboard [get]
func (h *DashboardHandler) BDM(c *gin.Context) {
	summary, err := h.dashboard.BDMSummary(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		response.AddFlash(c, response.FlashError, "Finance figures are unavailable right now.")
	}
	response.HTML(c, http.StatusOK, "dashboard_bdm.html", gin.H{
		"title":    "Dashboard",
		"summary":  summary,
		"statuses": models.LeadStatuses,
	})
}

func (h *DashboardHandler) studentHome(c *gin.Context, userID string) {
	statement, err := h.statements.StatementForUser(c.Request.Context(), userID)
	if err != nil && !errors.Is(err, appErrors.ErrNotFound) {
		_ = c.Error(err)
		response.AddFlash(c, response.FlashError, "Your fee statement is unavailable right now.")
	}
	response.HTML(c, http.StatusOK, "dashboard_student.html", gin.H{
		"title":     "My fees",
		"statement": statement,
		"today":     time.Now().UTC(),
	})
}

func (h *DashboardHandler) trainerHome(c *gin.Context) {
	courses, err := h.courses.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
	}
	response.HTML(c, http.StatusOK, "dashboard_trainer.html", gin.H{
		"title":   "Trainer home",
		"courses": courses,
	})
}
