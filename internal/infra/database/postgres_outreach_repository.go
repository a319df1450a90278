package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"coach_outreach_service/internal/domain/outreach"
)

type PostgresOutreachRepository struct {
	db *sql.DB
}

func NewPostgresOutreachRepository(db *sql.DB) *PostgresOutreachRepository {
	return &PostgresOutreachRepository{db: db}
}

const recordColumns = `id, athlete_id, coach_id, school_id, coach_name, coach_email, school_name, coach_role,
       email_type, subject, body, status, tracking_id, sent_at,
       opened, opened_at, open_count, replied, replied_at, reply_sentiment, failure_reason,
       created_at, updated_at`

func scanRecord(row interface {
	Scan(dest ...interface{}) error
}) (*outreach.Record, error) {
	rec := outreach.Record{}
	err := row.Scan(&rec.ID, &rec.AthleteID, &rec.CoachID, &rec.SchoolID,
		&rec.CoachName, &rec.CoachEmail, &rec.SchoolName, &rec.CoachRole,
		&rec.EmailType, &rec.Subject, &rec.Body, &rec.Status, &rec.TrackingID, &rec.SentAt,
		&rec.Opened, &rec.OpenedAt, &rec.OpenCount, &rec.Replied, &rec.RepliedAt, &rec.ReplySentiment, &rec.FailureReason,
		&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *PostgresOutreachRepository) Create(ctx context.Context, rec *outreach.Record) error {
	// The partial unique index outreach_one_in_flight guards the mutual
	// exclusion invariant: at most one pending/queued record per
	// (athlete_id, coach_id) pair.
	query := `INSERT INTO outreach_records
              (athlete_id, coach_id, school_id, coach_name, coach_email, school_name, coach_role,
               email_type, subject, body, status, tracking_id)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
              RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		rec.AthleteID, rec.CoachID, rec.SchoolID, rec.CoachName, rec.CoachEmail, rec.SchoolName, rec.CoachRole,
		rec.EmailType, rec.Subject, rec.Body, rec.Status, rec.TrackingID).
		Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "outreach_one_in_flight") {
			return ErrInFlightExists
		}
		return fmt.Errorf("error creating outreach record: %w", err)
	}
	return nil
}

func (r *PostgresOutreachRepository) GetByID(ctx context.Context, id int64) (*outreach.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM outreach_records WHERE id = $1`
	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("error getting outreach record by ID: %w", err)
	}
	return rec, nil
}

func (r *PostgresOutreachRepository) GetByTrackingID(ctx context.Context, trackingID string) (*outreach.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM outreach_records WHERE tracking_id = $1`
	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, trackingID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("error getting outreach record by tracking ID: %w", err)
	}
	return rec, nil
}

// transition performs a compare-and-swap status update. The WHERE clause on
// the expected status makes a lost race surface as ErrStatusConflict rather
// than a double transition.
func (r *PostgresOutreachRepository) transition(ctx context.Context, id int64, from []outreach.Status, set string, args ...interface{}) error {
	placeholders := make([]string, len(from))
	queryArgs := append([]interface{}{id}, args...)
	base := len(queryArgs)
	for i, s := range from {
		placeholders[i] = fmt.Sprintf("$%d", base+i+1)
		queryArgs = append(queryArgs, s)
	}
	query := fmt.Sprintf(`UPDATE outreach_records SET %s, updated_at = NOW()
              WHERE id = $1 AND status IN (%s)`, set, strings.Join(placeholders, ", "))

	res, err := r.db.ExecContext(ctx, query, queryArgs...)
	if err != nil {
		return fmt.Errorf("error transitioning outreach record %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected for record %d: %w", id, err)
	}
	if n == 0 {
		// Distinguish a missing row from a state race.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return ErrStatusConflict
	}
	return nil
}

func (r *PostgresOutreachRepository) UpdateContent(ctx context.Context, id int64, subject, body string) error {
	return r.transition(ctx, id, []outreach.Status{outreach.StatusPending},
		`subject = $2, body = $3`, subject, body)
}

func (r *PostgresOutreachRepository) ClaimPending(ctx context.Context, id int64) error {
	return r.transition(ctx, id, []outreach.Status{outreach.StatusPending},
		`status = 'queued'`)
}

func (r *PostgresOutreachRepository) MarkSent(ctx context.Context, id int64, sentAt time.Time) error {
	return r.transition(ctx, id, []outreach.Status{outreach.StatusQueued},
		`status = 'sent', sent_at = $2`, sentAt)
}

func (r *PostgresOutreachRepository) MarkFailed(ctx context.Context, id int64, reason string) error {
	return r.transition(ctx, id, []outreach.Status{outreach.StatusQueued},
		`status = 'failed', failure_reason = $2`, reason)
}

func (r *PostgresOutreachRepository) MarkBounced(ctx context.Context, id int64) error {
	return r.transition(ctx, id, []outreach.Status{outreach.StatusQueued, outreach.StatusSent},
		`status = 'bounced'`)
}

func (r *PostgresOutreachRepository) ApplyOpen(ctx context.Context, trackingID string, now time.Time) (*outreach.Record, error) {
	// open_count counts every hit; opened/opened_at are first-open-only.
	query := `UPDATE outreach_records
              SET open_count = open_count + 1,
                  opened = TRUE,
                  opened_at = COALESCE(opened_at, $2),
                  updated_at = NOW()
              WHERE tracking_id = $1
              RETURNING ` + recordColumns
	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, trackingID, now))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("error applying open for tracking ID %s: %w", trackingID, err)
	}
	return rec, nil
}

func (r *PostgresOutreachRepository) ApplyReply(ctx context.Context, id int64, sentiment outreach.Sentiment, now time.Time) error {
	// First classification wins: replied_at and reply_sentiment are written
	// only when the record has not replied yet.
	query := `UPDATE outreach_records
              SET replied = TRUE,
                  replied_at = COALESCE(replied_at, $2),
                  reply_sentiment = COALESCE(reply_sentiment, $3),
                  updated_at = NOW()
              WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, now, string(sentiment))
	if err != nil {
		return fmt.Errorf("error applying reply for record %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected applying reply: %w", err)
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *PostgresOutreachRepository) GetLatestSentByCoachEmail(ctx context.Context, athleteID int64, coachEmail string) (*outreach.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM outreach_records
              WHERE athlete_id = $1 AND coach_email = $2 AND status = 'sent'
              ORDER BY sent_at DESC LIMIT 1`
	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, athleteID, coachEmail))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("error getting latest sent record for %s: %w", coachEmail, err)
	}
	return rec, nil
}

func (r *PostgresOutreachRepository) queryRecords(ctx context.Context, query string, args ...interface{}) ([]*outreach.Record, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying outreach records: %w", err)
	}
	defer rows.Close()

	records := make([]*outreach.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning outreach record row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outreach record rows: %w", err)
	}
	return records, nil
}

func (r *PostgresOutreachRepository) ListByAthlete(ctx context.Context, athleteID int64) ([]*outreach.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM outreach_records
              WHERE athlete_id = $1 ORDER BY created_at DESC`
	return r.queryRecords(ctx, query, athleteID)
}

func (r *PostgresOutreachRepository) ListHistory(ctx context.Context, athleteID, coachID int64) ([]*outreach.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM outreach_records
              WHERE athlete_id = $1 AND coach_id = $2 ORDER BY created_at ASC`
	return r.queryRecords(ctx, query, athleteID, coachID)
}

func (r *PostgresOutreachRepository) ListPending(ctx context.Context, athleteID int64, limit int) ([]*outreach.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM outreach_records
              WHERE athlete_id = $1 AND status = 'pending' ORDER BY created_at ASC LIMIT $2`
	return r.queryRecords(ctx, query, athleteID, limit)
}

func (r *PostgresOutreachRepository) CountSentSince(ctx context.Context, athleteID int64, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM outreach_records
              WHERE athlete_id = $1 AND status = 'sent' AND sent_at >= $2`
	var count int
	if err := r.db.QueryRowContext(ctx, query, athleteID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting sent records: %w", err)
	}
	return count, nil
}

func (r *PostgresOutreachRepository) ReclaimStaleQueued(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `UPDATE outreach_records
              SET status = 'failed', failure_reason = 'reclaimed: stuck in queued', updated_at = NOW()
              WHERE status = 'queued' AND updated_at < $1`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("error reclaiming stale queued records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error reading rows affected reclaiming queued records: %w", err)
	}
	return n, nil
}

func (r *PostgresOutreachRepository) Stats(ctx context.Context, athleteID int64) (*outreach.Stats, error) {
	query := `SELECT COUNT(*),
                     COUNT(*) FILTER (WHERE status = 'pending'),
                     COUNT(*) FILTER (WHERE status = 'sent'),
                     COUNT(*) FILTER (WHERE opened),
                     COUNT(*) FILTER (WHERE replied),
                     COUNT(*) FILTER (WHERE status = 'failed')
              FROM outreach_records WHERE athlete_id = $1`
	st := outreach.Stats{}
	err := r.db.QueryRowContext(ctx, query, athleteID).
		Scan(&st.Total, &st.Pending, &st.Sent, &st.Opened, &st.Replied, &st.Failed)
	if err != nil {
		return nil, fmt.Errorf("error computing outreach stats: %w", err)
	}
	if st.Sent > 0 {
		st.OpenRate = float64(st.Opened) / float64(st.Sent) * 100
		st.ReplyRate = float64(st.Replied) / float64(st.Sent) * 100
	}
	return &st, nil
}

func (r *PostgresOutreachRepository) ListHotLeads(ctx context.Context, athleteID int64, limit int) ([]*outreach.HotLead, error) {
	query := `SELECT coach_name, coach_email, school_name, open_count, replied, COALESCE(reply_sentiment, '')
              FROM outreach_records
              WHERE athlete_id = $1 AND status = 'sent' AND opened
              ORDER BY open_count DESC, replied_at DESC NULLS LAST
              LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, athleteID, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing hot leads: %w", err)
	}
	defer rows.Close()

	leads := make([]*outreach.HotLead, 0)
	for rows.Next() {
		l := outreach.HotLead{}
		if err := rows.Scan(&l.CoachName, &l.CoachEmail, &l.SchoolName, &l.OpenCount, &l.Replied, &l.ReplySentiment); err != nil {
			return nil, fmt.Errorf("error scanning hot lead row: %w", err)
		}
		leads = append(leads, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hot lead rows: %w", err)
	}
	return leads, nil
}

// --- DM queue methods ---

const dmColumns = `id, athlete_id, coach_id, coach_name, coach_twitter, school_name,
       message, status, notes, sent_at, created_at, updated_at`

func scanDM(row interface {
	Scan(dest ...interface{}) error
}) (*outreach.DMRecord, error) {
	d := outreach.DMRecord{}
	err := row.Scan(&d.ID, &d.AthleteID, &d.CoachID, &d.CoachName, &d.CoachTwitter, &d.SchoolName,
		&d.Message, &d.Status, &d.Notes, &d.SentAt, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *PostgresOutreachRepository) CreateDM(ctx context.Context, d *outreach.DMRecord) error {
	query := `INSERT INTO dm_queue (athlete_id, coach_id, coach_name, coach_twitter, school_name, message, status, notes)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
              RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		d.AthleteID, d.CoachID, d.CoachName, d.CoachTwitter, d.SchoolName, d.Message, d.Status, d.Notes).
		Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating dm record: %w", err)
	}
	return nil
}

func (r *PostgresOutreachRepository) GetDMByID(ctx context.Context, id int64) (*outreach.DMRecord, error) {
	query := `SELECT ` + dmColumns + ` FROM dm_queue WHERE id = $1`
	d, err := scanDM(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrDMNotFound
		}
		return nil, fmt.Errorf("error getting dm record: %w", err)
	}
	return d, nil
}

func (r *PostgresOutreachRepository) FindDMByTwitter(ctx context.Context, athleteID int64, twitter string) (*outreach.DMRecord, error) {
	query := `SELECT ` + dmColumns + ` FROM dm_queue
              WHERE athlete_id = $1 AND coach_twitter = $2
              ORDER BY created_at DESC LIMIT 1`
	d, err := scanDM(r.db.QueryRowContext(ctx, query, athleteID, twitter))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrDMNotFound
		}
		return nil, fmt.Errorf("error finding dm record by twitter: %w", err)
	}
	return d, nil
}

func (r *PostgresOutreachRepository) ListDMsByStatus(ctx context.Context, athleteID int64, status outreach.DMStatus, limit int) ([]*outreach.DMRecord, error) {
	query := `SELECT ` + dmColumns + ` FROM dm_queue
              WHERE athlete_id = $1 AND status = $2 ORDER BY created_at ASC LIMIT $3`
	rows, err := r.db.QueryContext(ctx, query, athleteID, status, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing dm records: %w", err)
	}
	defer rows.Close()

	dms := make([]*outreach.DMRecord, 0)
	for rows.Next() {
		d, err := scanDM(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning dm row: %w", err)
		}
		dms = append(dms, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dm rows: %w", err)
	}
	return dms, nil
}

func (r *PostgresOutreachRepository) UpdateDMStatus(ctx context.Context, id int64, status outreach.DMStatus, notes string) error {
	query := `UPDATE dm_queue
              SET status = $2,
                  notes = CASE WHEN $3 = '' THEN notes ELSE $3 END,
                  sent_at = CASE WHEN $2 = 'sent' THEN COALESCE(sent_at, NOW()) ELSE sent_at END,
                  updated_at = NOW()
              WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, notes)
	if err != nil {
		return fmt.Errorf("error updating dm status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected updating dm status: %w", err)
	}
	if n == 0 {
		return ErrDMNotFound
	}
	return nil
}
