package outreach

import (
	"database/sql"
	"time"
)

// DMStatus is the lifecycle state of a social-channel outreach item. The DM
// queue is simpler than the email ledger: an operator (or automation) works
// the queue and marks the outcome directly.
type DMStatus string

const (
	DMPending     DMStatus = "pending"
	DMSent        DMStatus = "sent"
	DMSkipped     DMStatus = "skipped"
	DMFollowed    DMStatus = "followed"
	DMWrongHandle DMStatus = "wrong_handle"
)

// ValidDMStatus reports whether s is a known DM status.
func ValidDMStatus(s DMStatus) bool {
	switch s {
	case DMPending, DMSent, DMSkipped, DMFollowed, DMWrongHandle:
		return true
	}
	return false
}

// DMRecord is one planned-or-done social outreach to a coach. Same
// audit-trail rule as Record: coach identity is a copied snapshot and the
// row is never deleted.
type DMRecord struct {
	ID        int64
	AthleteID int64
	CoachID   sql.NullInt64

	CoachName    string
	CoachTwitter string
	SchoolName   string

	Message string
	Status  DMStatus
	Notes   sql.NullString

	SentAt    sql.NullTime
	CreatedAt time.Time
	UpdatedAt time.Time
}
