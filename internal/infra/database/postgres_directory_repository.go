package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"coach_outreach_service/internal/domain/directory"

	"github.com/lib/pq"
)

type PostgresDirectoryRepository struct {
	db *sql.DB
}

func NewPostgresDirectoryRepository(db *sql.DB) *PostgresDirectoryRepository {
	return &PostgresDirectoryRepository{db: db}
}

// --- School methods ---

func (r *PostgresDirectoryRepository) CreateSchool(ctx context.Context, s *directory.School) error {
	query := `INSERT INTO schools (name, division, conference, state, staff_url, priority_tier)
              VALUES ($1, $2, $3, $4, $5, $6)
              RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, s.Name, s.Division, s.Conference, s.State, s.StaffURL, s.PriorityTier).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "schools_name_key") {
			return ErrDuplicateSchool
		}
		return fmt.Errorf("error creating school: %w", err)
	}
	return nil
}

func (r *PostgresDirectoryRepository) GetSchoolByID(ctx context.Context, id int64) (*directory.School, error) {
	query := `SELECT id, name, division, conference, state, staff_url, priority_tier, created_at, updated_at
              FROM schools WHERE id = $1`
	return r.scanSchool(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresDirectoryRepository) GetSchoolByName(ctx context.Context, name string) (*directory.School, error) {
	query := `SELECT id, name, division, conference, state, staff_url, priority_tier, created_at, updated_at
              FROM schools WHERE name = $1`
	return r.scanSchool(r.db.QueryRowContext(ctx, query, name))
}

func (r *PostgresDirectoryRepository) scanSchool(row *sql.Row) (*directory.School, error) {
	s := directory.School{}
	err := row.Scan(&s.ID, &s.Name, &s.Division, &s.Conference, &s.State, &s.StaffURL, &s.PriorityTier, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSchoolNotFound
		}
		return nil, fmt.Errorf("error getting school: %w", err)
	}
	return &s, nil
}

func (r *PostgresDirectoryRepository) UpdateSchool(ctx context.Context, s *directory.School) error {
	query := `UPDATE schools
              SET name = $1, division = $2, conference = $3, state = $4, staff_url = $5, priority_tier = $6, updated_at = NOW()
              WHERE id = $7
              RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, s.Name, s.Division, s.Conference, s.State, s.StaffURL, s.PriorityTier, s.ID).
		Scan(&s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrSchoolNotFound
		}
		return fmt.Errorf("error updating school: %w", err)
	}
	return nil
}

func (r *PostgresDirectoryRepository) ListSchools(ctx context.Context, filter directory.SchoolFilter) ([]*directory.School, error) {
	query := `SELECT id, name, division, conference, state, staff_url, priority_tier, created_at, updated_at
              FROM schools WHERE 1=1`
	args := []interface{}{}
	idx := 1
	if filter.Query != "" {
		query += fmt.Sprintf(" AND name ILIKE $%d", idx)
		args = append(args, "%"+filter.Query+"%")
		idx++
	}
	if filter.Division != "" {
		query += fmt.Sprintf(" AND division = $%d", idx)
		args = append(args, filter.Division)
		idx++
	}
	if filter.State != "" {
		query += fmt.Sprintf(" AND state = $%d", idx)
		args = append(args, filter.State)
		idx++
	}
	query += " ORDER BY name"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", idx)
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing schools: %w", err)
	}
	defer rows.Close()

	schools := make([]*directory.School, 0)
	for rows.Next() {
		s := directory.School{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Division, &s.Conference, &s.State, &s.StaffURL, &s.PriorityTier, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning school row: %w", err)
		}
		schools = append(schools, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating school rows: %w", err)
	}
	return schools, nil
}

// --- Coach methods ---

const coachColumns = `id, school_id, name, role, title, email, twitter, verified,
       last_contacted_at, responded, response_sentiment, created_at, updated_at`

func (r *PostgresDirectoryRepository) CreateCoach(ctx context.Context, c *directory.Coach) error {
	query := `INSERT INTO coaches (school_id, name, role, title, email, twitter, verified)
              VALUES ($1, $2, $3, $4, $5, $6, $7)
              RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, c.SchoolID, c.Name, c.Role, c.Title, c.Email, c.Twitter, c.Verified).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "coaches_school_name_unique") {
			return ErrDuplicateCoach
		}
		return fmt.Errorf("error creating coach: %w", err)
	}
	return nil
}

func (r *PostgresDirectoryRepository) GetCoachByID(ctx context.Context, id int64) (*directory.Coach, error) {
	query := `SELECT ` + coachColumns + ` FROM coaches WHERE id = $1`
	return r.scanCoach(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresDirectoryRepository) GetCoachByEmail(ctx context.Context, email string) (*directory.Coach, error) {
	query := `SELECT ` + coachColumns + ` FROM coaches WHERE email = $1 LIMIT 1`
	return r.scanCoach(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresDirectoryRepository) scanCoach(row *sql.Row) (*directory.Coach, error) {
	c := directory.Coach{}
	err := row.Scan(&c.ID, &c.SchoolID, &c.Name, &c.Role, &c.Title, &c.Email, &c.Twitter, &c.Verified,
		&c.LastContactedAt, &c.Responded, &c.ResponseSentiment, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCoachNotFound
		}
		return nil, fmt.Errorf("error getting coach: %w", err)
	}
	return &c, nil
}

func (r *PostgresDirectoryRepository) UpdateCoach(ctx context.Context, c *directory.Coach) error {
	query := `UPDATE coaches
              SET name = $1, role = $2, title = $3, email = $4, twitter = $5, verified = $6,
                  last_contacted_at = $7, responded = $8, response_sentiment = $9, updated_at = NOW()
              WHERE id = $10
              RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, c.Name, c.Role, c.Title, c.Email, c.Twitter, c.Verified,
		c.LastContactedAt, c.Responded, c.ResponseSentiment, c.ID).Scan(&c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrCoachNotFound
		}
		return fmt.Errorf("error updating coach: %w", err)
	}
	return nil
}

func (r *PostgresDirectoryRepository) ListCoachesBySchool(ctx context.Context, schoolID int64) ([]*directory.Coach, error) {
	query := `SELECT ` + coachColumns + ` FROM coaches WHERE school_id = $1 ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, schoolID)
	if err != nil {
		return nil, fmt.Errorf("error listing coaches by school: %w", err)
	}
	defer rows.Close()

	coaches := make([]*directory.Coach, 0)
	for rows.Next() {
		c := directory.Coach{}
		if err := rows.Scan(&c.ID, &c.SchoolID, &c.Name, &c.Role, &c.Title, &c.Email, &c.Twitter, &c.Verified,
			&c.LastContactedAt, &c.Responded, &c.ResponseSentiment, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning coach row: %w", err)
		}
		coaches = append(coaches, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating coach rows: %w", err)
	}
	return coaches, nil
}

func (r *PostgresDirectoryRepository) ListContactableCoaches(ctx context.Context, schoolIDs []int64) ([]*directory.CoachWithSchool, error) {
	query := `SELECT c.id, c.school_id, c.name, c.role, c.title, c.email, c.twitter, c.verified,
                     c.last_contacted_at, c.responded, c.response_sentiment, c.created_at, c.updated_at,
                     s.name, COALESCE(s.division, ''), s.priority_tier
              FROM coaches c
              JOIN schools s ON s.id = c.school_id
              WHERE (c.email IS NOT NULL AND c.email != '') OR (c.twitter IS NOT NULL AND c.twitter != '')`
	args := []interface{}{}
	if len(schoolIDs) > 0 {
		query += ` AND c.school_id = ANY($1::bigint[])`
		args = append(args, pq.Array(schoolIDs))
	}
	// Ordering must be deterministic so repeated eligibility queries over
	// unchanged state return identical output.
	query += ` ORDER BY NULLIF(s.priority_tier, 0) ASC NULLS LAST,
                        c.last_contacted_at ASC NULLS FIRST,
                        c.id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing contactable coaches: %w", err)
	}
	defer rows.Close()

	results := make([]*directory.CoachWithSchool, 0)
	for rows.Next() {
		cw := directory.CoachWithSchool{}
		if err := rows.Scan(&cw.ID, &cw.SchoolID, &cw.Name, &cw.Role, &cw.Title, &cw.Email, &cw.Twitter, &cw.Verified,
			&cw.LastContactedAt, &cw.Responded, &cw.ResponseSentiment, &cw.CreatedAt, &cw.UpdatedAt,
			&cw.SchoolName, &cw.SchoolDivision, &cw.SchoolTier); err != nil {
			return nil, fmt.Errorf("error scanning contactable coach row: %w", err)
		}
		results = append(results, &cw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contactable coach rows: %w", err)
	}
	return results, nil
}
