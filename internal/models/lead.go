package models

import "time"

// LeadStatus tracks a prospect through the sales pipeline.
type LeadStatus string

const (
	LeadStatusNew        LeadStatus = "NEW"
	LeadStatusContacted  LeadStatus = "CONTACTED"
	LeadStatusInterested LeadStatus = "INTERESTED"
	LeadStatusConverted  LeadStatus = "CONVERTED"
	LeadStatusLost       LeadStatus = "LOST"
	LeadStatusJunk       LeadStatus = "JUNK"
)

// LeadStatuses lists statuses in pipeline order.
var LeadStatuses = []LeadStatus{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusInterested,
	LeadStatusConverted,
	LeadStatusLost,
	LeadStatusJunk,
}

// Valid reports whether s is a known status.
func (s LeadStatus) Valid() bool {
	for _, known := range LeadStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Lead is a prospective customer captured before enrollment.
type Lead struct {
	ID                 string     `db:"id" json:"id"`
	FirstName          string     `db:"first_name" json:"first_name"`
	LastName           string     `db:"last_name" json:"last_name"`
	Email              string     `db:"email" json:"email"`
	Phone              string     `db:"phone" json:"phone"`
	City               string     `db:"city" json:"city"`
	Age                *int       `db:"age" json:"age,omitempty"`
	Gender             *string    `db:"gender" json:"gender,omitempty"`
	Qualification      *string    `db:"qualification" json:"qualification,omitempty"`
	PaymentType        *string    `db:"payment_type" json:"payment_type,omitempty"`
	CourseInterestedID *string    `db:"course_interested_id" json:"course_interested_id,omitempty"`
	SourceID           *string    `db:"source_id" json:"source_id,omitempty"`
	AssignedTo         *string    `db:"assigned_to" json:"assigned_to,omitempty"`
	Status             LeadStatus `db:"status" json:"status"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// FullName joins the lead's names.
func (l Lead) FullName() string {
	if l.LastName == "" {
		return l.FirstName
	}
	return l.FirstName + " " + l.LastName
}

// LeadDetail enriches a lead with its course and counselor names.
type LeadDetail struct {
	Lead
	CourseName   *string `db:"course_name" json:"course_name,omitempty"`
	SourceName   *string `db:"source_name" json:"source_name,omitempty"`
	AssigneeName *string `db:"assignee_name" json:"assignee_name,omitempty"`
}

// LeadFilter provides filters for listing leads.
type LeadFilter struct {
	Status   LeadStatus
	Search   string
	Page     int
	PageSize int
}

// LeadSource records where a lead came from.
type LeadSource struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	IsActive bool   `db:"is_active" json:"is_active"`
}

// InteractionType classifies a counseling touchpoint.
type InteractionType string

const (
	InteractionCall     InteractionType = "CALL"
	InteractionWhatsApp InteractionType = "WHATSAPP"
	InteractionEmail    InteractionType = "EMAIL"
	InteractionMeeting  InteractionType = "MEETING"
	InteractionOther    InteractionType = "OTHER"
)

// Interaction logs a call, chat or meeting with a lead.
type Interaction struct {
	ID              string          `db:"id" json:"id"`
	LeadID          string          `db:"lead_id" json:"lead_id"`
	CounselorID     *string         `db:"counselor_id" json:"counselor_id,omitempty"`
	InteractionType InteractionType `db:"interaction_type" json:"interaction_type"`
	Notes           string          `db:"notes" json:"notes"`
	InteractionDate time.Time       `db:"interaction_date" json:"interaction_date"`
	NextFollowUp    *time.Time      `db:"next_follow_up" json:"next_follow_up,omitempty"`
	CounselorName   *string         `db:"counselor_name" json:"counselor_name,omitempty"`
}

// CreateLeadRequest is the staff form for adding a lead manually.
type CreateLeadRequest struct {
	FirstName     string `form:"first_name" validate:"required,max=100"`
	LastName      string `form:"last_name" validate:"max=100"`
	Email         string `form:"email" validate:"required,email"`
	Phone         string `form:"phone" validate:"required,min=7,max=20"`
	City          string `form:"city" validate:"max=100"`
	Age           string `form:"age"`
	Gender        string `form:"gender"`
	Qualification string `form:"qualification"`
	PaymentType   string `form:"payment_type"`
	CourseID      string `form:"course_id"`
	SourceID      string `form:"source_id"`
	Status        string `form:"status"`
}

// EnquiryRequest is the public enquiry form.
type EnquiryRequest struct {
	FirstName string `form:"first_name" validate:"required,max=100"`
	LastName  string `form:"last_name" validate:"max=100"`
	Email     string `form:"email" validate:"required,email"`
	Phone     string `form:"phone" validate:"required,min=7,max=20"`
	City      string `form:"city" validate:"max=100"`
	CourseID  string `form:"course_id"`
}

// InteractionRequest logs a touchpoint.
type InteractionRequest struct {
	InteractionType string `form:"interaction_type" validate:"required,oneof=CALL WHATSAPP EMAIL MEETING OTHER"`
	Notes           string `form:"notes" validate:"required"`
	NextFollowUp    string `form:"next_follow_up" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateLeadStatusRequest changes a lead's pipeline status.
type UpdateLeadStatusRequest struct {
	Status string `form:"status" validate:"required"`
}
