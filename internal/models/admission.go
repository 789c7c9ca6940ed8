package models

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ConvertLeadRequest carries the operator-supplied fields of the registration form.
// Amount and Installments stay raw strings because they are parsed permissively.
type ConvertLeadRequest struct {
	Password     string `form:"password" validate:"required,min=6"`
	BatchID      string `form:"batch"`
	Address      string `form:"address" validate:"max=255"`
	DateOfBirth  string `form:"dob" validate:"omitempty,datetime=2006-01-02"`
	Gender       string `form:"gender" validate:"omitempty,oneof=Male Female Other"`
	Amount       string `form:"amount"`
	Mode         string `form:"mode"`
	Installments string `form:"installments"`
}

// ConversionResult reports what a conversion created.
type ConversionResult struct {
	AlreadyConverted bool          `json:"already_converted"`
	Student          *Student      `json:"student,omitempty"`
	Username         string        `json:"username,omitempty"`
	Payment          *Payment      `json:"payment,omitempty"`
	Installments     []Installment `json:"installments,omitempty"`
	FeePaid          bool          `json:"fee_paid"`
	Warnings         []string      `json:"warnings,omitempty"`
}

// RecordPaymentRequest is the payment form posted against an admission.
type RecordPaymentRequest struct {
	Amount       string `form:"amount"`
	Mode         string `form:"mode" validate:"required"`
	Installments string `form:"installments"`
}

// PaymentResult reports the rows written by a payment.
type PaymentResult struct {
	Payment      *Payment      `json:"payment,omitempty"`
	Installments []Installment `json:"installments,omitempty"`
	FeePaid      bool          `json:"fee_paid"`
	Warnings     []string      `json:"warnings,omitempty"`
}

// ParseAmount reads a money field permissively: blank or unparsable input is zero.
func ParseAmount(raw string) decimal.Decimal {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseInstallmentCount reads an installment count permissively: blank or unparsable input is 1.
// Out-of-range integers saturate so callers can still reject them as too large or too small.
func ParseInstallmentCount(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 1
	}
	return n
}
