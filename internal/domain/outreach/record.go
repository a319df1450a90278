package outreach

import (
	"database/sql"
	"time"
)

// Status is the lifecycle state of an outreach record.
//
// pending -> queued -> sent | failed
// bounced is terminal, reached from queued (synchronous bounce) or via the
// bounce webhook on a sent record. Opens and replies are flags on a sent
// record, not separate states.
type Status string

const (
	StatusPending Status = "pending"
	StatusQueued  Status = "queued"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
	StatusBounced Status = "bounced"
)

// InFlight reports whether the status blocks a new send to the same
// (athlete, coach) pair.
func (s Status) InFlight() bool {
	return s == StatusPending || s == StatusQueued
}

// Terminal reports whether the record can never transition again.
func (s Status) Terminal() bool {
	return s == StatusFailed || s == StatusBounced
}

// EmailType is the position of a record within the outreach cadence.
type EmailType string

const (
	TypeIntro     EmailType = "intro"
	TypeFollowup1 EmailType = "followup_1"
	TypeFollowup2 EmailType = "followup_2"
	TypeFollowup3 EmailType = "followup_3"
	TypeCustom    EmailType = "custom"
)

// followupSequence maps each follow-up type to its sequence number.
// Intro and custom emails are sequence 0.
var followupSequence = map[EmailType]int{
	TypeFollowup1: 1,
	TypeFollowup2: 2,
	TypeFollowup3: 3,
}

// Sequence returns the follow-up sequence number of the email type, or 0
// for intro/custom.
func (t EmailType) Sequence() int {
	return followupSequence[t]
}

// FollowupType returns the email type for follow-up number n (1-3).
func FollowupType(n int) (EmailType, bool) {
	switch n {
	case 1:
		return TypeFollowup1, true
	case 2:
		return TypeFollowup2, true
	case 3:
		return TypeFollowup3, true
	}
	return "", false
}

// Sentiment classifies a coach's reply. The first classification wins;
// later replies never overwrite it.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Record is one planned-or-sent communication to one coach on behalf of one
// athlete. Records are never deleted, only transitioned, so the audit trail
// survives coach edits: the coach fields are copied snapshots, and CoachID
// goes null if the coach is later removed from the directory.
type Record struct {
	ID        int64
	AthleteID int64
	CoachID   sql.NullInt64
	SchoolID  sql.NullInt64

	// Ownership snapshot, copied at creation time.
	CoachName  string
	CoachEmail string
	SchoolName string
	CoachRole  string

	EmailType  EmailType
	Subject    string
	Body       string
	Status     Status
	TrackingID string // unique, embedded in the tracking pixel URL

	SentAt         sql.NullTime
	Opened         bool
	OpenedAt       sql.NullTime
	OpenCount      int
	Replied        bool
	RepliedAt      sql.NullTime
	ReplySentiment sql.NullString
	FailureReason  sql.NullString

	CreatedAt time.Time
	UpdatedAt time.Time
}
