package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studylab-api/internal/models"
	appErrors "github.com/noah-isme/studylab-api/pkg/errors"
)

type fakeConversionSrv struct {
	result  *models.ConversionResult
	err     error
	lastReq models.ConvertLeadRequest
	calls   int
}

func (f *fakeConversionSrv) Convert(_ context.Context, _ string, req models.ConvertLeadRequest, _ models.Actor) (*models.ConversionResult, error) {
	f.calls++
	f.lastReq = req
	return f.result, f.err
}

func newConversionRouter(t *testing.T, conv *fakeConversionSrv) http.Handler {
	r := newTestRouter(t, staffClaims)
	h := NewConversionHandler(newFakeLeadSrv(), conv)
	r.GET("/bdm/leads/:id/convert", h.Form)
	r.POST("/bdm/leads/:id/convert", h.Convert)
	return r
}

func TestConversionFormListsCourseBatches(t *testing.T) {
	r := newConversionRouter(t, &fakeConversionSrv{})

	w := doGet(r, "/bdm/leads/lead-1/convert")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "asha@example.com")
	assert.Contains(t, body, "Morning")
	assert.NotContains(t, body, "Other course")
}

func TestConversionFormRejectsConvertedLead(t *testing.T) {
	r := newConversionRouter(t, &fakeConversionSrv{})

	w := doGet(r, "/bdm/leads/lead-2/convert")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/bdm/leads/lead-2", w.Header().Get("Location"))
}

func TestConvertSuccessRedirectsToAdmission(t *testing.T) {
	conv := &fakeConversionSrv{result: &models.ConversionResult{
		Student:  &models.Student{ID: "stu-1", StudentCode: "STU-2025-AB12"},
		Username: "asha@example.com",
		Warnings: []string{"Payment recorded, but no balance left for EMIs."},
	}}
	r := newConversionRouter(t, conv)

	w := doPost(r, "/bdm/leads/lead-1/convert", url.Values{
		"password": {"secret123"}, "batch": {"b1"}, "amount": {"2,000"}, "mode": {"EMI"}, "installments": {"5"},
	})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/bdm/admissions/stu-1", w.Header().Get("Location"))
	assert.Equal(t, "2,000", conv.lastReq.Amount)
	assert.Equal(t, "5", conv.lastReq.Installments)
	assert.Equal(t, "b1", conv.lastReq.BatchID)
}

func TestConvertMalformedFormRedirectsWithError(t *testing.T) {
	conv := &fakeConversionSrv{}
	gr := newTestRouter(t, staffClaims)
	h := NewConversionHandler(newFakeLeadSrv(), conv)
	gr.POST("/bdm/leads/:id/convert", h.Convert)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bdm/leads/lead-1/convert", strings.NewReader("password=%zz&amount=2000"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	gr.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/bdm/leads/lead-1/convert", w.Header().Get("Location"))
	assert.Contains(t, flashesAfter(gr, w), "error: could not read the registration form")
	assert.Zero(t, conv.calls)
}

func TestConvertErrorsBecomeFlashes(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		location string
		flash    string
	}{
		{"already converted", appErrors.Clone(appErrors.ErrAlreadyConverted, "This lead is already a student."), "/bdm/leads/lead-1", "warning: This lead is already a student."},
		{"duplicate account", appErrors.Clone(appErrors.ErrDuplicateAccount, "A user with this email already exists!"), "/bdm/leads/lead-1/convert", "error: A user with this email already exists!"},
		{"internal", appErrors.Wrap(assert.AnError, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed"), "/bdm/leads/lead-1/convert", "error: Something went wrong"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gr := newTestRouter(t, staffClaims)
			h := NewConversionHandler(newFakeLeadSrv(), &fakeConversionSrv{err: tc.err})
			gr.POST("/bdm/leads/:id/convert", h.Convert)

			w := doPost(gr, "/bdm/leads/lead-1/convert", url.Values{"password": {"secret123"}})
			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, tc.location, w.Header().Get("Location"))
			assert.Contains(t, flashesAfter(gr, w), tc.flash)
		})
	}
}
