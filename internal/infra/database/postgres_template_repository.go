package database

import (
	"context"
	"database/sql"
	"fmt"

	"coach_outreach_service/internal/domain/template"
)

type PostgresTemplateRepository struct {
	db *sql.DB
}

func NewPostgresTemplateRepository(db *sql.DB) *PostgresTemplateRepository {
	return &PostgresTemplateRepository{db: db}
}

const templateColumns = `id, name, subject, body, kind, email_type, coach_type, is_active, created_at, updated_at`

func scanTemplate(row interface {
	Scan(dest ...interface{}) error
}) (*template.Template, error) {
	t := template.Template{}
	err := row.Scan(&t.ID, &t.Name, &t.Subject, &t.Body, &t.Kind, &t.EmailType, &t.CoachType,
		&t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PostgresTemplateRepository) Create(ctx context.Context, t *template.Template) error {
	query := `INSERT INTO templates (name, subject, body, kind, email_type, coach_type, is_active)
              VALUES ($1, $2, $3, $4, $5, $6, $7)
              RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, t.Name, t.Subject, t.Body, t.Kind, t.EmailType, t.CoachType, t.IsActive).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating template: %w", err)
	}
	return nil
}

func (r *PostgresTemplateRepository) GetByID(ctx context.Context, id int64) (*template.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates WHERE id = $1`
	t, err := scanTemplate(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("error getting template: %w", err)
	}
	return t, nil
}

func (r *PostgresTemplateRepository) Update(ctx context.Context, t *template.Template) error {
	query := `UPDATE templates
              SET name = $1, subject = $2, body = $3, kind = $4, email_type = $5, coach_type = $6,
                  is_active = $7, updated_at = NOW()
              WHERE id = $8
              RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, t.Name, t.Subject, t.Body, t.Kind, t.EmailType, t.CoachType,
		t.IsActive, t.ID).Scan(&t.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrTemplateNotFound
		}
		return fmt.Errorf("error updating template: %w", err)
	}
	return nil
}

func (r *PostgresTemplateRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting template: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected deleting template: %w", err)
	}
	if n == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

func (r *PostgresTemplateRepository) List(ctx context.Context, kind template.Kind) ([]*template.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates WHERE kind = $1 ORDER BY email_type, coach_type, id`
	rows, err := r.db.QueryContext(ctx, query, kind)
	if err != nil {
		return nil, fmt.Errorf("error listing templates: %w", err)
	}
	defer rows.Close()

	templates := make([]*template.Template, 0)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning template row: %w", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating template rows: %w", err)
	}
	return templates, nil
}

func (r *PostgresTemplateRepository) FindActive(ctx context.Context, kind template.Kind, emailType, coachType string) (*template.Template, error) {
	// Exact coach_type match wins over the 'any' fallback.
	query := `SELECT ` + templateColumns + ` FROM templates
              WHERE kind = $1 AND email_type = $2 AND coach_type IN ($3, 'any') AND is_active
              ORDER BY CASE WHEN coach_type = $3 THEN 0 ELSE 1 END
              LIMIT 1`
	t, err := scanTemplate(r.db.QueryRowContext(ctx, query, kind, emailType, coachType))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("error finding active template: %w", err)
	}
	return t, nil
}
