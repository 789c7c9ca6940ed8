package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/studylab-api/internal/models"
)

const leadColumns = `l.id, l.first_name, l.last_name, l.email, l.phone, l.city, l.age, l.gender, l.qualification, l.payment_type, l.course_interested_id, l.source_id, l.assigned_to, l.status, l.created_at, l.updated_at`

// LeadRepository persists prospects and their interaction history.
type LeadRepository struct {
	db *sqlx.DB
}

// NewLeadRepository constructs the repository.
func NewLeadRepository(db *sqlx.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// Create inserts a lead.
func (r *LeadRepository) Create(ctx context.Context, lead *models.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = now
	}
	lead.UpdatedAt = now
	if lead.Status == "" {
		lead.Status = models.LeadStatusNew
	}

	const query = `INSERT INTO leads (id, first_name, last_name, email, phone, city, age, gender, qualification, payment_type, course_interested_id, source_id, assigned_to, status, created_at, updated_at)
VALUES (:id, :first_name, :last_name, :email, :phone, :city, :age, :gender, :qualification, :payment_type, :course_interested_id, :source_id, :assigned_to, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, lead); err != nil {
		return fmt.Errorf("create lead: %w", err)
	}
	return nil
}

// FindByID returns a lead with its related names.
func (r *LeadRepository) FindByID(ctx context.Context, id string) (*models.LeadDetail, error) {
	query := `SELECT ` + leadColumns + `, c.name AS course_name, s.name AS source_name, NULLIF(TRIM(u.first_name || ' ' || u.last_name), '') AS assignee_name
FROM leads l
LEFT JOIN courses c ON c.id = l.course_interested_id
LEFT JOIN lead_sources s ON s.id = l.source_id
LEFT JOIN users u ON u.id = l.assigned_to
WHERE l.id = $1`
	var lead models.LeadDetail
	if err := r.db.GetContext(ctx, &lead, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find lead: %w", err)
	}
	return &lead, nil
}

// List returns leads filtered by status and a free-text search, newest first.
func (r *LeadRepository) List(ctx context.Context, filter models.LeadFilter) ([]models.LeadDetail, int, error) {
	base := `FROM leads l
LEFT JOIN courses c ON c.id = l.course_interested_id
LEFT JOIN lead_sources s ON s.id = l.source_id
LEFT JOIN users u ON u.id = l.assigned_to`
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("l.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		idx := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(LOWER(l.first_name) LIKE $%d OR LOWER(l.last_name) LIKE $%d OR LOWER(l.email) LIKE $%d OR l.phone LIKE $%d)", idx, idx, idx, idx))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page, size := normalizePage(filter.Page, filter.PageSize)
	offset := (page - 1) * size

	listQuery := fmt.Sprintf(`SELECT %s, c.name AS course_name, s.name AS source_name, NULLIF(TRIM(u.first_name || ' ' || u.last_name), '') AS assignee_name %s%s ORDER BY l.created_at DESC LIMIT %d OFFSET %d`, leadColumns, base, clause, size, offset)
	var leads []models.LeadDetail
	if err := r.db.SelectContext(ctx, &leads, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s%s", base, clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}
	return leads, total, nil
}

// UpdateStatus sets a lead's pipeline status. Converted leads are never touched.
func (r *LeadRepository) UpdateStatus(ctx context.Context, id string, status models.LeadStatus) error {
	const query = `UPDATE leads SET status = $2, updated_at = $3 WHERE id = $1 AND status <> 'CONVERTED'`
	res, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update lead status rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CreateInteraction logs a touchpoint against a lead.
func (r *LeadRepository) CreateInteraction(ctx context.Context, interaction *models.Interaction) error {
	if interaction.ID == "" {
		interaction.ID = uuid.NewString()
	}
	if interaction.InteractionDate.IsZero() {
		interaction.InteractionDate = time.Now().UTC()
	}
	const query = `INSERT INTO interactions (id, lead_id, counselor_id, interaction_type, notes, interaction_date, next_follow_up)
VALUES (:id, :lead_id, :counselor_id, :interaction_type, :notes, :interaction_date, :next_follow_up)`
	if _, err := r.db.NamedExecContext(ctx, query, interaction); err != nil {
		return fmt.Errorf("create interaction: %w", err)
	}
	return nil
}

// ListInteractions returns a lead's history, most recent first.
func (r *LeadRepository) ListInteractions(ctx context.Context, leadID string) ([]models.Interaction, error) {
	const query = `SELECT i.id, i.lead_id, i.counselor_id, i.interaction_type, i.notes, i.interaction_date, i.next_follow_up,
NULLIF(TRIM(u.first_name || ' ' || u.last_name), '') AS counselor_name
FROM interactions i
LEFT JOIN users u ON u.id = i.counselor_id
WHERE i.lead_id = $1
ORDER BY i.interaction_date DESC`
	var items []models.Interaction
	if err := r.db.SelectContext(ctx, &items, query, leadID); err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	return items, nil
}

// ListSources returns the active lead sources.
func (r *LeadRepository) ListSources(ctx context.Context) ([]models.LeadSource, error) {
	const query = `SELECT id, name, is_active FROM lead_sources WHERE is_active = TRUE ORDER BY name`
	var sources []models.LeadSource
	if err := r.db.SelectContext(ctx, &sources, query); err != nil {
		return nil, fmt.Errorf("list lead sources: %w", err)
	}
	return sources, nil
}

// CountByStatus returns the number of leads per status.
func (r *LeadRepository) CountByStatus(ctx context.Context) (map[models.LeadStatus]int, error) {
	const query = `SELECT status, COUNT(*) AS total FROM leads GROUP BY status`
	var rows []struct {
		Status models.LeadStatus `db:"status"`
		Total  int               `db:"total"`
	}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count leads by status: %w", err)
	}
	counts := make(map[models.LeadStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return page, size
}
