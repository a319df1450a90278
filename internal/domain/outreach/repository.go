package outreach

import (
	"context"
	"time"
)

// Stats is the dashboard rollup for one athlete's ledger.
type Stats struct {
	Total    int
	Pending  int
	Sent     int
	Opened   int
	Replied  int
	Failed   int
	OpenRate  float64
	ReplyRate float64
}

// HotLead is a sent record with engagement, ordered by open count.
type HotLead struct {
	CoachName      string
	CoachEmail     string
	SchoolName     string
	OpenCount      int
	Replied        bool
	ReplySentiment string
}

// Repository defines the operations on the outreach ledger. Every status
// write is a conditional update keyed on the expected prior status, so a
// race between the background loop and a manual send degrades to a
// failed-precondition error instead of a duplicate send.
type Repository interface {
	// Create inserts a new record in its initial status. It fails with
	// ErrInFlightExists when the (athlete, coach) pair already has a
	// pending or queued record.
	Create(ctx context.Context, r *Record) error
	GetByID(ctx context.Context, id int64) (*Record, error)
	GetByTrackingID(ctx context.Context, trackingID string) (*Record, error)

	// UpdateContent writes the rendered subject and body onto a record that
	// is still pending, keeping the ledger row a faithful copy of what goes
	// out. ErrStatusConflict once the record has been claimed.
	UpdateContent(ctx context.Context, id int64, subject, body string) error

	// ClaimPending transitions pending -> queued. ErrStatusConflict when the
	// record is no longer pending (another claimer won).
	ClaimPending(ctx context.Context, id int64) error
	// MarkSent transitions queued -> sent and stamps sent_at.
	MarkSent(ctx context.Context, id int64, sentAt time.Time) error
	// MarkFailed transitions queued -> failed with a reason. Failed records
	// are never resurrected; a retry is a fresh record.
	MarkFailed(ctx context.Context, id int64, reason string) error
	// MarkBounced transitions queued or sent -> bounced.
	MarkBounced(ctx context.Context, id int64) error

	// ApplyOpen increments open_count unconditionally and sets
	// opened/opened_at on the first open only. Returns the updated record.
	ApplyOpen(ctx context.Context, trackingID string, now time.Time) (*Record, error)
	// ApplyReply sets replied/replied_at/reply_sentiment on the first reply
	// only; later calls are no-ops on the flag and sentiment.
	ApplyReply(ctx context.Context, id int64, sentiment Sentiment, now time.Time) error

	// GetLatestSentByCoachEmail finds the most recent sent record to the
	// given coach email for the athlete, for reply attribution.
	GetLatestSentByCoachEmail(ctx context.Context, athleteID int64, coachEmail string) (*Record, error)

	// ListByAthlete returns the athlete's full ledger, newest first.
	ListByAthlete(ctx context.Context, athleteID int64) ([]*Record, error)
	// ListHistory returns every record for one (athlete, coach) pair.
	ListHistory(ctx context.Context, athleteID, coachID int64) ([]*Record, error)
	// ListPending returns up to limit pending records for the athlete,
	// oldest first.
	ListPending(ctx context.Context, athleteID int64, limit int) ([]*Record, error)
	// CountSentSince counts records the athlete sent at or after the instant,
	// for daily cap accounting.
	CountSentSince(ctx context.Context, athleteID int64, since time.Time) (int, error)

	// ReclaimStaleQueued sweeps records stuck in queued since before the
	// cutoff back to failed, so a crash mid-send cannot block a coach
	// forever. Returns the number of reclaimed records.
	ReclaimStaleQueued(ctx context.Context, cutoff time.Time) (int64, error)

	Stats(ctx context.Context, athleteID int64) (*Stats, error)
	ListHotLeads(ctx context.Context, athleteID int64, limit int) ([]*HotLead, error)

	// DM queue operations.
	CreateDM(ctx context.Context, d *DMRecord) error
	GetDMByID(ctx context.Context, id int64) (*DMRecord, error)
	FindDMByTwitter(ctx context.Context, athleteID int64, twitter string) (*DMRecord, error)
	ListDMsByStatus(ctx context.Context, athleteID int64, status DMStatus, limit int) ([]*DMRecord, error)
	UpdateDMStatus(ctx context.Context, id int64, status DMStatus, notes string) error
}
