package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studylab-api/internal/models"
	"github.com/noah-isme/studylab-api/internal/service"
	appErrors "github.com/noah-isme/studylab-api/pkg/errors"
	"github.com/noah-isme/studylab-api/pkg/response"
)

type billingService interface {
	RecordPayment(ctx context.Context, studentID string, req models.RecordPaymentRequest, actor models.Actor) (*models.PaymentResult, error)
	SettleInstallment(ctx context.Context, installmentID string, actor models.Actor) (*models.PaymentResult, error)
	StudentStatement(ctx context.Context, studentID string) (*models.StudentStatement, error)
	ListAdmissions(ctx context.Context, filter models.AdmissionFilter) ([]models.AdmissionSummary, *models.Pagination, error)
	GetAdmission(ctx context.Context, studentID string) (*models.AdmissionSummary, error)
	ListPayments(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, *models.FinanceSummary, *models.Pagination, error)
	ListPendingInstallments(ctx context.Context, filter models.InstallmentFilter) ([]models.InstallmentDetail, models.InstallmentTotals, error)
}

type paymentExporter interface {
	ExportPayments(ctx context.Context, filter models.PaymentFilter, format string) (*service.ExportFile, error)
}

// BillingHandler serves admissions, the payment ledger and pending EMIs.
type BillingHandler struct {
	billing billingService
	export  paymentExporter
}

// NewBillingHandler constructs a BillingHandler.
func NewBillingHandler(billing billingService, export paymentExporter) *BillingHandler {
	return &BillingHandler{billing: billing, export: export}
}

// Admissions godoc
// @Summary List admissions with fee status
// @Tags Admissions
// @Param q query string false "Name, email or student code"
// @Param page query int false "Page"
// @Success 200 "HTML page"
// @Router /bdm/admissions [get]
func (h *BillingHandler) Admissions(c *gin.Context) {
	filter := models.AdmissionFilter{
		Search:   strings.TrimSpace(c.Query("q")),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
	}
	admissions, pagination, err := h.billing.ListAdmissions(c.Request.Context(), filter)
	if err != nil {
		response.RedirectWithError(c, err, "/bdm/dashboard")
		return
	}
	response.HTML(c, http.StatusOK, "admissions_list.html", gin.H{
		"title":      "Admissions",
		"admissions": admissions,
		"pagination": pagination,
		"filter":     filter,
	})
}

// Admission renders a student's full fee statement.
func (h *BillingHandler) Admission(c *gin.Context) {
	statement, err := h.billing.StudentStatement(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RedirectWithError(c, err, "/bdm/admissions")
		return
	}
	response.HTML(c, http.StatusOK, "admission_detail.html", gin.H{
		"title":     statement.FullName,
		"statement": statement,
		"today":     time.Now().UTC(),
	})
}

// PayForm renders the payment form for an admission.
func (h *BillingHandler) PayForm(c *gin.Context) {
	admission, err := h.billing.GetAdmission(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RedirectWithError(c, err, "/bdm/admissions")
		return
	}
	response.HTML(c, http.StatusOK, "admission_pay.html", gin.H{
		"title":     "Record payment",
		"admission": admission,
		"modes":     models.PaymentModes,
	})
}

// Pay godoc
// @Summary Record a payment against an admission
// @Description Appends a payment; in EMI mode with an installment count the remaining balance is scheduled
// @Tags Billing
// @Accept x-www-form-urlencoded
// @Param id path string true "Student ID"
// @Param amount formData string false "Amount"
// @Param mode formData string true "Payment mode"
// @Param installments formData string false "EMI count"
// @Success 303 "Redirect to the admission"
// @Router /bdm/admissions/{id}/pay [post]
func (h *BillingHandler) Pay(c *gin.Context) {
	id := c.Param("id")
	var req models.RecordPaymentRequest
	if err := c.ShouldBind(&req); err != nil {
		response.RedirectWithError(c, appErrors.Validation(err, "could not read the payment form"), "/bdm/admissions/"+id+"/pay")
		return
	}

	result, err := h.billing.RecordPayment(c.Request.Context(), id, req, actorFromContext(c))
	if err != nil {
		response.RedirectWithError(c, err, "/bdm/admissions/"+id+"/pay")
		return
	}
	flashWarnings(c, result.Warnings)
	if result.Payment != nil {
		response.AddFlash(c, response.FlashSuccess, "Payment recorded.")
	}
	response.Redirect(c, "/bdm/admissions/"+id)
}

// Payments godoc
// @Summary Payment ledger
// @Tags Billing
// @Param q query string false "Student name or code"
// @Param mode query string false "Payment mode"
// @Param date query string false "YYYY-MM-DD"
// @Success 200 "HTML page"
// @Router /bdm/payments [get]
func (h *BillingHandler) Payments(c *gin.Context) {
	filter, err := paymentFilterFromQuery(c)
	if err != nil {
		response.RedirectWithError(c, err, "/bdm/payments")
		return
	}
	payments, summary, pagination, err := h.billing.ListPayments(c.Request.Context(), filter)
	if err != nil {
		response.RedirectWithError(c, err, "/bdm/dashboard")
		return
	}
	response.HTML(c, http.StatusOK, "payments_list.html", gin.H{
		"title":      "Payments",
		"payments":   payments,
		"summary":    summary,
		"pagination": pagination,
		"filter":     filter,
		"date":       c.Query("date"),
		"modes":      models.PaymentModes,
	})
}

// PendingEMIs lists unpaid installments with totals.
func (h *BillingHandler) PendingEMIs(c *gin.Context) {
	filter := models.InstallmentFilter{
		Search:   strings.TrimSpace(c.Query("q")),
		CourseID: strings.TrimSpace(c.Query("course")),
	}
	installments, totals, err := h.billing.ListPendingInstallments(c.Request.Context(), filter)
	if err != nil {
		response.RedirectWithError(c, err, "/bdm/payments")
		return
	}
	response.HTML(c, http.StatusOK, "payments_pending.html", gin.H{
		"title":        "Pending EMIs",
		"installments": installments,
		"totals":       totals,
		"filter":       filter,
	})
}

// Settle godoc
// @Summary Mark an installment as paid
// @Description Records an EMI payment for the installment amount
// @Tags Billing
// @Param id path string true "Installment ID"
// @Success 303 "Redirect to pending EMIs"
// @Router /bdm/installments/{id}/settle [post]
func (h *BillingHandler) Settle(c *gin.Context) {
	result, err := h.billing.SettleInstallment(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.RedirectWithError(c, err, "/bdm/payments/pending-emis")
		return
	}
	msg := "Installment marked as paid."
	if result.FeePaid {
		msg = "Installment marked as paid. Fee fully paid."
	}
	response.AddFlash(c, response.FlashSuccess, msg)
	response.Redirect(c, "/bdm/payments/pending-emis")
}

// Export godoc
// @Summary Export the payment ledger
// @Tags Billing
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Param q query string false "Student name or code"
// @Param mode query string false "Payment mode"
// @Param date query string false "YYYY-MM-DD"
// @Success 200 {file} file
// @Router /bdm/payments/export [get]
func (h *BillingHandler) Export(c *gin.Context) {
	filter, err := paymentFilterFromQuery(c)
	if err != nil {
		response.RedirectWithError(c, err, "/bdm/payments")
		return
	}
	format := strings.ToLower(c.DefaultQuery("format", service.ExportFormatCSV))
	file, err := h.export.ExportPayments(c.Request.Context(), filter, format)
	if err != nil {
		response.RedirectWithError(c, err, "/bdm/payments")
		return
	}
	response.Download(c, file.Filename, file.ContentType, file.Body)
}

func paymentFilterFromQuery(c *gin.Context) (models.PaymentFilter, error) {
	filter := models.PaymentFilter{
		Search:   strings.TrimSpace(c.Query("q")),
		Mode:     models.PaymentMode(strings.ToUpper(strings.TrimSpace(c.Query("mode")))),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
	}
	if filter.Mode != "" && !filter.Mode.Valid() {
		return filter, appErrors.Clone(appErrors.ErrValidation, "unknown payment mode")
	}
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
		}
		filter.PaidOn = &day
	}
	return filter, nil
}
