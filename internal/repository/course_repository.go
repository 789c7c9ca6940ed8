package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/studylab-api/internal/models"
)

// CourseRepository reads the course catalogue and its batches.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns every course ordered by name.
func (r *CourseRepository) List(ctx context.Context) ([]models.Course, error) {
	const query = `SELECT id, name, price, description, trainer_id FROM courses ORDER BY name`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindByID returns a course.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	return findCourse(ctx, r.db, id)
}

// ListBatches returns the batches of a course, or every batch when courseID is empty.
func (r *CourseRepository) ListBatches(ctx context.Context, courseID string) ([]models.Batch, error) {
	query := `SELECT id, name, course_id, trainer_id, start_date, time_slot FROM batches`
	var args []interface{}
	if courseID != "" {
		query += ` WHERE course_id = $1`
		args = append(args, courseID)
	}
	query += ` ORDER BY start_date DESC NULLS LAST, name`
	var batches []models.Batch
	if err := r.db.SelectContext(ctx, &batches, query, args...); err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return batches, nil
}

func findCourse(ctx context.Context, q sqlx.QueryerContext, id string) (*models.Course, error) {
	const query = `SELECT id, name, price, description, trainer_id FROM courses WHERE id = $1`
	var course models.Course
	if err := sqlx.GetContext(ctx, q, &course, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	return &course, nil
}

func findBatch(ctx context.Context, q sqlx.QueryerContext, id string) (*models.Batch, error) {
	const query = `SELECT id, name, course_id, trainer_id, start_date, time_slot FROM batches WHERE id = $1`
	var batch models.Batch
	if err := sqlx.GetContext(ctx, q, &batch, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find batch: %w", err)
	}
	return &batch, nil
}
