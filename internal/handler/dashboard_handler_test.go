package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studylab-api/internal/models"
	appErrors "github.com/noah-isme/studylab-api/pkg/errors"
)

type fakeDashboardSrv struct {
	summary *models.BDMDashboard
	err     error
}

func (f *fakeDashboardSrv) BDMSummary(context.Context) (*models.BDMDashboard, error) {
	return f.summary, f.err
}

type fakeStatements struct {
	byUser map[string]*models.StudentStatement
}

func (f fakeStatements) StatementForUser(_ context.Context, userID string) (*models.StudentStatement, error) {
	st, ok := f.byUser[userID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
	}
	return st, nil
}

type fakeCourses []models.Course

func (f fakeCourses) List(context.Context) ([]models.Course, error) { return f, nil }

func newDashboardHandler(dash *fakeDashboardSrv) *DashboardHandler {
	return NewDashboardHandler(dash, fakeStatements{byUser: map[string]*models.StudentStatement{"u-student": sampleStatement()}}, fakeCourses{{ID: "c1", Name: "Data Science"}})
}

func TestDashboardHomeDispatchesByRole(t *testing.T) {
	cases := []struct {
		name     string
		claims   *models.JWTClaims
		status   int
		location string
		contains string
	}{
		{"superadmin", &models.JWTClaims{UserID: "u-admin", Role: models.RoleSuperAdmin}, http.StatusSeeOther, "/bdm/dashboard", ""},
		{"staff", staffClaims, http.StatusSeeOther, "/bdm/dashboard", ""},
		{"trainer", &models.JWTClaims{UserID: "u-trainer", Role: models.RoleTrainer}, http.StatusOK, "", "Data Science"},
		{"student", &models.JWTClaims{UserID: "u-student", Role: models.RoleStudent}, http.StatusOK, "", "STU-2025-AB12"},
		{"student without profile", &models.JWTClaims{UserID: "u-other", Role: models.RoleStudent}, http.StatusOK, "", "No admission is linked"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(t, tc.claims)
			r.GET("/dashboard", newDashboardHandler(&fakeDashboardSrv{}).Home)

			w := doGet(r, "/dashboard")
			require.Equal(t, tc.status, w.Code)
			if tc.location != "" {
				assert.Equal(t, tc.location, w.Header().Get("Location"))
			}
			if tc.contains != "" {
				assert.Contains(t, w.Body.String(), tc.contains)
			}
		})
	}
}

func TestDashboardHomeAnonymous(t *testing.T) {
	r := newTestRouter(t, nil)
	r.GET("/dashboard", newDashboardHandler(&fakeDashboardSrv{}).Home)

	w := doGet(r, "/dashboard")
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestDashboardBDM(t *testing.T) {
	dash := &fakeDashboardSrv{summary: &models.BDMDashboard{
		Finance: models.FinanceSummary{
			TotalIncome:     decimal.NewFromInt(2000),
			ExpectedRevenue: decimal.NewFromInt(12000),
			PendingIncome:   decimal.NewFromInt(10000),
			GeneratedAt:     time.Date(2025, 1, 31, 9, 30, 0, 0, time.UTC),
		},
		Pipeline: map[models.LeadStatus]int{models.LeadStatusNew: 4, models.LeadStatusConverted: 1},
		Cached:   true,
	}}
	r := newTestRouter(t, staffClaims)
	r.GET("/bdm/dashboard", newDashboardHandler(dash).BDM)

	w := doGet(r, "/bdm/dashboard")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "INR 12,000.00")
	assert.Contains(t, body, "INR 10,000.00")
	assert.Contains(t, body, "(cached)")
	assert.Contains(t, body, "/bdm/leads?status=NEW")
}

func TestDashboardBDMDegradesOnError(t *testing.T) {
	r := newTestRouter(t, staffClaims)
	r.GET("/bdm/dashboard", newDashboardHandler(&fakeDashboardSrv{err: errors.New("db down")}).BDM)

	w := doGet(r, "/bdm/dashboard")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")
}
