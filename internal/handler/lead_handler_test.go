package handler

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studylab-api/internal/models"
	appErrors "github.com/noah-isme/studylab-api/pkg/errors"
)

type fakeLeadSrv struct {
	leads        map[string]*models.LeadDetail
	courses      []models.Course
	batches      []models.Batch
	createErr    error
	enquiryErr   error
	statusErr    error
	lastFilter   models.LeadFilter
	lastCreate   models.CreateLeadRequest
	lastActor    models.Actor
	lastStatus   string
	interactions []models.InteractionRequest
}

func (f *fakeLeadSrv) Create(_ context.Context, req models.CreateLeadRequest, actor models.Actor) (*models.Lead, error) {
	f.lastCreate, f.lastActor = req, actor
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.Lead{ID: "lead-new", FirstName: req.FirstName, LastName: req.LastName}, nil
}

func (f *fakeLeadSrv) SubmitEnquiry(_ context.Context, req models.EnquiryRequest) (*models.Lead, error) {
	if f.enquiryErr != nil {
		return nil, f.enquiryErr
	}
	return &models.Lead{ID: "lead-enq", FirstName: req.FirstName}, nil
}

func (f *fakeLeadSrv) List(_ context.Context, filter models.LeadFilter) ([]models.LeadDetail, *models.Pagination, error) {
	f.lastFilter = filter
	var out []models.LeadDetail
	for _, l := range f.leads {
		out = append(out, *l)
	}
	return out, &models.Pagination{Page: 1, PageSize: 20, TotalCount: len(out)}, nil
}

func (f *fakeLeadSrv) Get(_ context.Context, id string) (*models.LeadDetail, []models.Interaction, error) {
	lead, ok := f.leads[id]
	if !ok {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "lead not found")
	}
	return lead, []models.Interaction{{ID: "i1", LeadID: id, InteractionType: models.InteractionCall, Notes: "Called back", InteractionDate: time.Now()}}, nil
}

func (f *fakeLeadSrv) LogInteraction(_ context.Context, leadID string, req models.InteractionRequest, _ models.Actor) (*models.Interaction, error) {
	f.interactions = append(f.interactions, req)
	return &models.Interaction{ID: "i2", LeadID: leadID}, nil
}

func (f *fakeLeadSrv) UpdateStatus(_ context.Context, _ string, req models.UpdateLeadStatusRequest) error {
	f.lastStatus = req.Status
	return f.statusErr
}

func (f *fakeLeadSrv) FormOptions(context.Context) ([]models.Course, []models.Batch, []models.LeadSource, error) {
	return f.courses, f.batches, []models.LeadSource{{ID: "s1", Name: "Walk-in"}}, nil
}

func newFakeLeadSrv() *fakeLeadSrv {
	course := "course-1"
	courseName := "Full Stack"
	return &fakeLeadSrv{
		leads: map[string]*models.LeadDetail{
			"lead-1": {Lead: models.Lead{ID: "lead-1", FirstName: "Asha", LastName: "Rao", Email: "Asha@Example.com", Phone: "9000000001", Status: models.LeadStatusNew, CourseInterestedID: &course}, CourseName: &courseName},
			"lead-2": {Lead: models.Lead{ID: "lead-2", FirstName: "Ravi", Email: "ravi@example.com", Status: models.LeadStatusConverted}},
		},
		courses: []models.Course{{ID: course, Name: courseName}},
		batches: []models.Batch{{ID: "b1", Name: "Morning", CourseID: course}, {ID: "b2", Name: "Other course", CourseID: "course-2"}},
	}
}

func TestLeadHandlerList(t *testing.T) {
	srv := newFakeLeadSrv()
	r := newTestRouter(t, staffClaims)
	h := NewLeadHandler(srv)
	r.GET("/bdm/leads", h.List)

	w := doGet(r, "/bdm/leads?status=new&q=asha")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Asha Rao")
	assert.Equal(t, models.LeadStatusNew, srv.lastFilter.Status)
	assert.Equal(t, "asha", srv.lastFilter.Search)
}

func TestLeadHandlerCreateRedirectsToLead(t *testing.T) {
	srv := newFakeLeadSrv()
	r := newTestRouter(t, staffClaims)
	h := NewLeadHandler(srv)
	r.POST("/bdm/leads/new", h.Create)

	w := doPost(r, "/bdm/leads/new", url.Values{"first_name": {"Kiran"}, "email": {"k@example.com"}, "phone": {"9000000009"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/bdm/leads/lead-new", w.Header().Get("Location"))
	assert.Equal(t, "Kiran", srv.lastCreate.FirstName)
	assert.Equal(t, "u-staff", srv.lastActor.UserID)
}

func TestLeadHandlerCreateConflictFlashes(t *testing.T) {
	srv := newFakeLeadSrv()
	srv.createErr = appErrors.Clone(appErrors.ErrConflict, "A lead with this phone or email already exists.")
	r := newTestRouter(t, staffClaims)
	r.POST("/bdm/leads/new", NewLeadHandler(srv).Create)

	w := doPost(r, "/bdm/leads/new", url.Values{"first_name": {"Kiran"}})
	assert.Equal(t, "/bdm/leads/new", w.Header().Get("Location"))
	assert.Contains(t, flashesAfter(r, w), "error: A lead with this phone or email already exists.")
}

func TestLeadHandlerShowMissingLead(t *testing.T) {
	r := newTestRouter(t, staffClaims)
	r.GET("/bdm/leads/:id", NewLeadHandler(newFakeLeadSrv()).Show)

	w := doGet(r, "/bdm/leads/nope")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/bdm/leads", w.Header().Get("Location"))

	w = doGet(r, "/bdm/leads/lead-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Called back")
	assert.Contains(t, w.Body.String(), "/bdm/leads/lead-1/convert")
}

func TestLeadHandlerInteractionAndStatus(t *testing.T) {
	srv := newFakeLeadSrv()
	r := newTestRouter(t, staffClaims)
	h := NewLeadHandler(srv)
	r.POST("/bdm/leads/:id/interactions", h.LogInteraction)
	r.POST("/bdm/leads/:id/status", h.UpdateStatus)

	w := doPost(r, "/bdm/leads/lead-1/interactions", url.Values{"interaction_type": {"CALL"}, "notes": {"Interested in weekend batch"}})
	assert.Equal(t, "/bdm/leads/lead-1", w.Header().Get("Location"))
	require.Len(t, srv.interactions, 1)
	assert.Equal(t, "Interested in weekend batch", srv.interactions[0].Notes)

	srv.statusErr = appErrors.Clone(appErrors.ErrValidation, "use the registration form to convert a lead")
	w = doPost(r, "/bdm/leads/lead-1/status", url.Values{"status": {"CONVERTED"}})
	assert.Equal(t, "CONVERTED", srv.lastStatus)
	assert.Contains(t, flashesAfter(r, w), "use the registration form")
}

func TestEnquiryHandler(t *testing.T) {
	srv := newFakeLeadSrv()
	r := newTestRouter(t, nil)
	h := NewEnquiryHandler(srv)
	r.GET("/enquiry", h.Form)
	r.POST("/enquiry", h.Submit)

	w := doGet(r, "/enquiry")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Full Stack")

	w = doPost(r, "/enquiry", url.Values{"first_name": {"Neha"}, "email": {"neha@example.com"}, "phone": {"9000000002"}})
	assert.Equal(t, "/enquiry", w.Header().Get("Location"))
	assert.Contains(t, flashesAfter(r, w), "success: Thank you!")
}
