package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMode is how a payment was made.
type PaymentMode string

const (
	PaymentModeCash         PaymentMode = "CASH"
	PaymentModeUPI          PaymentMode = "UPI"
	PaymentModeCard         PaymentMode = "CARD"
	PaymentModeBankTransfer PaymentMode = "BANK_TRANSFER"
	PaymentModeFull         PaymentMode = "FULL"
	PaymentModeEMI          PaymentMode = "EMI"
	PaymentModeLoan         PaymentMode = "LOAN"
)

// PaymentModes lists accepted modes in display order.
var PaymentModes = []PaymentMode{
	PaymentModeCash,
	PaymentModeUPI,
	PaymentModeCard,
	PaymentModeBankTransfer,
	PaymentModeFull,
	PaymentModeEMI,
	PaymentModeLoan,
}

// Valid reports whether m is an accepted mode.
func (m PaymentMode) Valid() bool {
	for _, known := range PaymentModes {
		if m == known {
			return true
		}
	}
	return false
}

// Payment is an immutable ledger entry.
type Payment struct {
	ID         string          `db:"id" json:"id"`
	StudentID  string          `db:"student_id" json:"student_id"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	Mode       PaymentMode     `db:"mode" json:"mode"`
	PaidOn     time.Time       `db:"paid_on" json:"paid_on"`
	RecordedBy *string         `db:"recorded_by" json:"recorded_by,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// Installment is one scheduled EMI. Rows sharing a ScheduleID were generated together.
type Installment struct {
	ID         string          `db:"id" json:"id"`
	StudentID  string          `db:"student_id" json:"student_id"`
	ScheduleID string          `db:"schedule_id" json:"schedule_id"`
	Sequence   int             `db:"sequence" json:"sequence"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	DueDate    time.Time       `db:"due_date" json:"due_date"`
	IsPaid     bool            `db:"is_paid" json:"is_paid"`
	PaidAt     *time.Time      `db:"paid_at" json:"paid_at,omitempty"`
}

// IsOverdue reports whether an unpaid installment's due date is before the given day.
func (i Installment) IsOverdue(today time.Time) bool {
	y, m, d := today.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return !i.IsPaid && i.DueDate.Before(start)
}

// PaymentDetail joins a payment with its student for ledger views.
type PaymentDetail struct {
	Payment
	StudentCode string  `db:"student_code" json:"student_code"`
	StudentName string  `db:"student_name" json:"student_name"`
	CourseName  *string `db:"course_name" json:"course_name,omitempty"`
}

// PaymentFilter narrows the payment ledger.
type PaymentFilter struct {
	Search   string
	Mode     PaymentMode
	PaidOn   *time.Time
	Page     int
	PageSize int
}

// InstallmentDetail joins an installment with its student.
type InstallmentDetail struct {
	Installment
	StudentCode string  `db:"student_code" json:"student_code"`
	StudentName string  `db:"student_name" json:"student_name"`
	CourseName  *string `db:"course_name" json:"course_name,omitempty"`
}

// InstallmentFilter narrows the pending EMI list.
type InstallmentFilter struct {
	Search   string
	CourseID string
}

// InstallmentTotals aggregates unpaid installments.
type InstallmentTotals struct {
	PendingAmount decimal.Decimal `json:"pending_amount"`
	PendingCount  int             `json:"pending_count"`
	OverdueAmount decimal.Decimal `json:"overdue_amount"`
	OverdueCount  int             `json:"overdue_count"`
}

// FinanceSummary is the headline numbers on the BDM dashboard.
type FinanceSummary struct {
	TotalIncome      decimal.Decimal `db:"total_income" json:"total_income"`
	ExpectedRevenue  decimal.Decimal `db:"expected_revenue" json:"expected_revenue"`
	PendingIncome    decimal.Decimal `db:"pending_income" json:"pending_income"`
	PendingEMIAmount decimal.Decimal `db:"pending_emi_amount" json:"pending_emi_amount"`
	PendingEMICount  int             `db:"pending_emi_count" json:"pending_emi_count"`
	TotalStudents    int             `db:"total_students" json:"total_students"`
	FeePaidStudents  int             `db:"fee_paid_students" json:"fee_paid_students"`
	ConvertedLeads   int             `db:"converted_leads" json:"converted_leads"`
	OpenLeads        int             `db:"open_leads" json:"open_leads"`
	GeneratedAt      time.Time       `json:"generated_at"`
}

// StudentStatement is the complete fee position for one student.
type StudentStatement struct {
	Student      Student         `json:"student"`
	FullName     string          `json:"full_name"`
	CourseName   string          `json:"course_name"`
	FeeTotal     decimal.Decimal `json:"fee_total"`
	PaidAmount   decimal.Decimal `json:"paid_amount"`
	Balance      decimal.Decimal `json:"balance"`
	Payments     []Payment       `json:"payments"`
	Installments []Installment   `json:"installments"`
}

// BDMDashboard combines the cached finance summary with the live lead pipeline.
type BDMDashboard struct {
	Finance  FinanceSummary     `json:"finance"`
	Pipeline map[LeadStatus]int `json:"pipeline"`
	Cached   bool               `json:"cached"`
}
