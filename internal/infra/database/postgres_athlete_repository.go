package database

import (
	"context"
	"database/sql"
	"fmt"

	"coach_outreach_service/internal/domain/athlete"
)

type PostgresAthleteRepository struct {
	db *sql.DB
}

func NewPostgresAthleteRepository(db *sql.DB) *PostgresAthleteRepository {
	return &PostgresAthleteRepository{db: db}
}

const athleteColumns = `id, name, email, grad_year, position, height_inches, weight_lbs, highlight_url, is_active, created_at, updated_at`

func scanAthlete(row interface {
	Scan(dest ...interface{}) error
}) (*athlete.Athlete, error) {
	a := athlete.Athlete{}
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.GradYear, &a.Position, &a.HeightInches, &a.WeightLbs,
		&a.HighlightURL, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PostgresAthleteRepository) Create(ctx context.Context, a *athlete.Athlete) error {
	query := `INSERT INTO athletes (name, email, grad_year, position, height_inches, weight_lbs, highlight_url, is_active)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
              RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, a.Name, a.Email, a.GradYear, a.Position, a.HeightInches,
		a.WeightLbs, a.HighlightURL, a.IsActive).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating athlete: %w", err)
	}
	return nil
}

func (r *PostgresAthleteRepository) GetByID(ctx context.Context, id int64) (*athlete.Athlete, error) {
	query := `SELECT ` + athleteColumns + ` FROM athletes WHERE id = $1`
	a, err := scanAthlete(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAthleteNotFound
		}
		return nil, fmt.Errorf("error getting athlete by ID: %w", err)
	}
	return a, nil
}

func (r *PostgresAthleteRepository) GetByEmail(ctx context.Context, email string) (*athlete.Athlete, error) {
	query := `SELECT ` + athleteColumns + ` FROM athletes WHERE email = $1`
	a, err := scanAthlete(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAthleteNotFound
		}
		return nil, fmt.Errorf("error getting athlete by email: %w", err)
	}
	return a, nil
}

func (r *PostgresAthleteRepository) Update(ctx context.Context, a *athlete.Athlete) error {
	query := `UPDATE athletes
              SET name = $1, email = $2, grad_year = $3, position = $4, height_inches = $5,
                  weight_lbs = $6, highlight_url = $7, is_active = $8, updated_at = NOW()
              WHERE id = $9
              RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, a.Name, a.Email, a.GradYear, a.Position, a.HeightInches,
		a.WeightLbs, a.HighlightURL, a.IsActive, a.ID).Scan(&a.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrAthleteNotFound
		}
		return fmt.Errorf("error updating athlete: %w", err)
	}
	return nil
}

func (r *PostgresAthleteRepository) ListActive(ctx context.Context) ([]*athlete.Athlete, error) {
	query := `SELECT ` + athleteColumns + ` FROM athletes WHERE is_active ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing active athletes: %w", err)
	}
	defer rows.Close()

	athletes := make([]*athlete.Athlete, 0)
	for rows.Next() {
		a, err := scanAthlete(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning athlete row: %w", err)
		}
		athletes = append(athletes, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating athlete rows: %w", err)
	}
	return athletes, nil
}

// --- Settings methods ---

func (r *PostgresAthleteRepository) GetSettings(ctx context.Context, athleteID int64) (*athlete.Settings, error) {
	query := `SELECT athlete_id, auto_send_enabled, auto_send_count, paused_until, days_between_emails,
                     max_followups, days_between_followups, send_hour, timezone_offset, updated_at
              FROM settings WHERE athlete_id = $1`
	s := athlete.Settings{}
	err := r.db.QueryRowContext(ctx, query, athleteID).Scan(
		&s.AthleteID, &s.AutoSendEnabled, &s.AutoSendCount, &s.PausedUntil, &s.DaysBetweenEmails,
		&s.MaxFollowups, &s.DaysBetweenFollowups, &s.SendHour, &s.TimezoneOffset, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("error getting settings: %w", err)
	}
	return &s, nil
}

func (r *PostgresAthleteRepository) SaveSettings(ctx context.Context, s *athlete.Settings) error {
	query := `INSERT INTO settings
              (athlete_id, auto_send_enabled, auto_send_count, paused_until, days_between_emails,
               max_followups, days_between_followups, send_hour, timezone_offset)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
              ON CONFLICT (athlete_id) DO UPDATE SET
                auto_send_enabled = EXCLUDED.auto_send_enabled,
                auto_send_count = EXCLUDED.auto_send_count,
                paused_until = EXCLUDED.paused_until,
                days_between_emails = EXCLUDED.days_between_emails,
                max_followups = EXCLUDED.max_followups,
                days_between_followups = EXCLUDED.days_between_followups,
                send_hour = EXCLUDED.send_hour,
                timezone_offset = EXCLUDED.timezone_offset,
                updated_at = NOW()
              RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, s.AthleteID, s.AutoSendEnabled, s.AutoSendCount, s.PausedUntil,
		s.DaysBetweenEmails, s.MaxFollowups, s.DaysBetweenFollowups, s.SendHour, s.TimezoneOffset).
		Scan(&s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error saving settings: %w", err)
	}
	return nil
}

// --- School selection methods ---

func (r *PostgresAthleteRepository) AddSchoolSelection(ctx context.Context, sel *athlete.SchoolSelection) error {
	query := `INSERT INTO athlete_schools (athlete_id, school_id, coach_preference)
              VALUES ($1, $2, $3)
              ON CONFLICT (athlete_id, school_id) DO UPDATE SET coach_preference = EXCLUDED.coach_preference
              RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, sel.AthleteID, sel.SchoolID, sel.Preference).Scan(&sel.CreatedAt)
	if err != nil {
		return fmt.Errorf("error adding school selection: %w", err)
	}
	return nil
}

func (r *PostgresAthleteRepository) RemoveSchoolSelection(ctx context.Context, athleteID, schoolID int64) error {
	query := `DELETE FROM athlete_schools WHERE athlete_id = $1 AND school_id = $2`
	if _, err := r.db.ExecContext(ctx, query, athleteID, schoolID); err != nil {
		return fmt.Errorf("error removing school selection: %w", err)
	}
	return nil
}

func (r *PostgresAthleteRepository) ListSchoolSelections(ctx context.Context, athleteID int64) ([]*athlete.SchoolSelection, error) {
	query := `SELECT athlete_id, school_id, coach_preference, created_at
              FROM athlete_schools WHERE athlete_id = $1 ORDER BY school_id`
	rows, err := r.db.QueryContext(ctx, query, athleteID)
	if err != nil {
		return nil, fmt.Errorf("error listing school selections: %w", err)
	}
	defer rows.Close()

	selections := make([]*athlete.SchoolSelection, 0)
	for rows.Next() {
		sel := athlete.SchoolSelection{}
		if err := rows.Scan(&sel.AthleteID, &sel.SchoolID, &sel.Preference, &sel.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning school selection row: %w", err)
		}
		selections = append(selections, &sel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating school selection rows: %w", err)
	}
	return selections, nil
}
