package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studylab-api/internal/models"
	appErrors "github.com/noah-isme/studylab-api/pkg/errors"
	"github.com/noah-isme/studylab-api/pkg/response"
)

type conversionService interface {
	Convert(ctx context.Context, leadID string, req models.ConvertLeadRequest, actor models.Actor) (*models.ConversionResult, error)
}

// ConversionHandler serves the registration form that turns a lead into a student.
type ConversionHandler struct {
	leads      leadService
	conversion conversionService
}

// NewConversionHandler constructs a ConversionHandler.
func NewConversionHandler(leads leadService, conversion conversionService) *ConversionHandler {
	return &ConversionHandler{leads: leads, conversion: conversion}
}

// Form renders the registration form, prefilled from the lead. Converted leads bounce back with a warning.
func (h *ConversionHandler) Form(c *gin.Context) {
	id := c.Param("id")
	lead, _, err := h.leads.Get(c.Request.Context(), id)
	if err != nil {
		response.RedirectWithError(c, err, "/bdm/leads")
		return
	}
	if lead.Status == models.LeadStatusConverted {
		response.RedirectWithError(c, appErrors.Clone(appErrors.ErrAlreadyConverted, "This lead is already a student."), "/bdm/leads/"+id)
		return
	}

	_, batches, _, err := h.leads.FormOptions(c.Request.Context())
	if err != nil {
		response.RedirectWithError(c, err, "/bdm/leads/"+id)
		return
	}
	response.HTML(c, http.StatusOK, "lead_convert.html", gin.H{
		"title":   "Register " + lead.FullName(),
		"lead":    lead,
		"batches": batchesForCourse(batches, lead.CourseInterestedID),
		"modes":   models.PaymentModes,
	})
}

// Convert godoc
// @Summary Convert a lead into a student
// @Description Creates the login, student profile, first payment and EMI schedule in one transaction
// @Tags Admissions
// @Accept x-www-form-urlencoded
// @Param id path string true "Lead ID"
// @Param password formData string true "Initial password"
// @Param batch formData string false "Batch ID"
// @Param amount formData string false "First payment"
// @Param mode formData string false "Payment mode"
// @Param installments formData string false "EMI count"
// @Success 303 "Redirect to the admission"
// @Router /bdm/leads/{id}/convert [post]
func (h *ConversionHandler) Convert(c *gin.Context) {
	id := c.Param("id")
	var req models.ConvertLeadRequest
	if err := c.ShouldBind(&req); err != nil {
		response.RedirectWithError(c, appErrors.Validation(err, "could not read the registration form"), "/bdm/leads/"+id+"/convert")
		return
	}

	result, err := h.conversion.Convert(c.Request.Context(), id, req, actorFromContext(c))
	if err != nil {
		if appErrors.IsWarning(err) {
			response.RedirectWithError(c, err, "/bdm/leads/"+id)
			return
		}
		response.RedirectWithError(c, err, "/bdm/leads/"+id+"/convert")
		return
	}

	flashWarnings(c, result.Warnings)
	response.AddFlash(c, response.FlashSuccess, "Student "+result.Student.StudentCode+" registered. Login: "+result.Username)
	response.Redirect(c, "/bdm/admissions/"+result.Student.ID)
}

func batchesForCourse(batches []models.Batch, courseID *string) []models.Batch {
	if courseID == nil {
		return batches
	}
	out := make([]models.Batch, 0, len(batches))
	for _, b := range batches {
		if b.CourseID == *courseID {
			out = append(out, b)
		}
	}
	return out
}
