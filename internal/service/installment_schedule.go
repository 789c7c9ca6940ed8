package service

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScheduledInstallment is one computed EMI before it is persisted.
type ScheduledInstallment struct {
	Sequence int
	Amount   decimal.Decimal
	DueDate  time.Time
}

// ScheduleInstallments splits balance into count equal monthly installments, the first due one
// calendar month after start. Amounts are rounded to currency precision.
func ScheduleInstallments(balance decimal.Decimal, count int, start time.Time) []ScheduledInstallment {
	if count < 1 || !balance.IsPositive() {
		return nil
	}
	amount := balance.Div(decimal.NewFromInt(int64(count))).Round(2)
	items := make([]ScheduledInstallment, 0, count)
	for i := 1; i <= count; i++ {
		items = append(items, ScheduledInstallment{
			Sequence: i,
			Amount:   amount,
			DueDate:  AddMonths(start, i),
		})
	}
	return items
}

// AddMonths moves a date forward by n calendar months, clamping to the last day of the target
// month when the day does not exist there (Jan 31 + 1 month is Feb 28 or 29). Time of day is dropped.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}
