package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Course is a sellable program. Price is copied onto a student at enrollment.
type Course struct {
	ID          string          `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Description string          `db:"description" json:"description"`
	TrainerID   *string         `db:"trainer_id" json:"trainer_id,omitempty"`
}

// Batch is a scheduled offering of a course.
type Batch struct {
	ID        string     `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	CourseID  string     `db:"course_id" json:"course_id"`
	TrainerID *string    `db:"trainer_id" json:"trainer_id,omitempty"`
	StartDate *time.Time `db:"start_date" json:"start_date,omitempty"`
	TimeSlot  string     `db:"time_slot" json:"time_slot"`
}
