package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Student is created exactly once per successful lead conversion.
type Student struct {
	ID                 string          `db:"id" json:"id"`
	UserID             string          `db:"user_id" json:"user_id"`
	StudentCode        string          `db:"student_code" json:"student_code"`
	LeadID             *string         `db:"lead_id" json:"lead_id,omitempty"`
	CourseID           *string         `db:"course_id" json:"course_id,omitempty"`
	BatchID            *string         `db:"batch_id" json:"batch_id,omitempty"`
	FeeTotal           decimal.Decimal `db:"fee_total" json:"fee_total"`
	Phone              string          `db:"phone" json:"phone"`
	Address            string          `db:"address" json:"address"`
	DateOfBirth        *time.Time      `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender             string          `db:"gender" json:"gender"`
	IsFeePaid          bool            `db:"is_fee_paid" json:"is_fee_paid"`
	DocumentsVerified  bool            `db:"documents_verified" json:"documents_verified"`
	IDCardIssued       bool            `db:"id_card_issued" json:"id_card_issued"`
	LMSAccessGranted   bool            `db:"lms_access_granted" json:"lms_access_granted"`
	WelcomeKitGiven    bool            `db:"welcome_kit_given" json:"welcome_kit_given"`
	WhatsAppGroupAdded bool            `db:"whatsapp_group_added" json:"whatsapp_group_added"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
}

// AdmissionSummary is a student row with its fee position.
type AdmissionSummary struct {
	StudentID   string          `db:"student_id" json:"student_id"`
	StudentCode string          `db:"student_code" json:"student_code"`
	FullName    string          `db:"full_name" json:"full_name"`
	Email       string          `db:"email" json:"email"`
	CourseName  *string         `db:"course_name" json:"course_name,omitempty"`
	BatchName   *string         `db:"batch_name" json:"batch_name,omitempty"`
	FeeTotal    decimal.Decimal `db:"fee_total" json:"fee_total"`
	PaidAmount  decimal.Decimal `db:"paid_amount" json:"paid_amount"`
	IsFeePaid   bool            `db:"is_fee_paid" json:"is_fee_paid"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// Balance is the outstanding fee; negative when overpaid.
func (a AdmissionSummary) Balance() decimal.Decimal {
	return a.FeeTotal.Sub(a.PaidAmount)
}

// Status is "Paid" once nothing is outstanding.
func (a AdmissionSummary) Status() string {
	if a.Balance().LessThanOrEqual(decimal.Zero) {
		return "Paid"
	}
	return "Pending"
}

// AdmissionFilter narrows the admissions list.
type AdmissionFilter struct {
	Search   string
	Page     int
	PageSize int
}
