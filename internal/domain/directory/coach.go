package directory

import (
	"database/sql"
	"time"
)

// CoachRole classifies a staff member into the closed set of roles the
// scheduler understands. Free-text titles are normalized to one of these
// at ingestion time.
type CoachRole string

const (
	RoleRecruitingCoordinator CoachRole = "recruiting_coordinator"
	RoleOffensiveLine         CoachRole = "offensive_line"
	RoleHeadCoach             CoachRole = "head_coach"
	RoleOffensiveCoordinator  CoachRole = "offensive_coordinator"
	RoleDefensiveCoordinator  CoachRole = "defensive_coordinator"
	RolePositionCoach         CoachRole = "position_coach"
	RoleOther                 CoachRole = "other"
)

// IsPositionRole reports whether the role counts as a position coach for
// the purposes of an athlete's coach preference.
func (r CoachRole) IsPositionRole() bool {
	switch r {
	case RoleOffensiveLine, RolePositionCoach, RoleOffensiveCoordinator, RoleDefensiveCoordinator:
		return true
	}
	return false
}

// Coach is a contact at a School and the target of outreach.
type Coach struct {
	ID       int64
	SchoolID int64
	Name     string
	Role     CoachRole
	Title    sql.NullString // original scraped title, kept for display
	Email    sql.NullString
	Twitter  sql.NullString
	Verified bool

	// Response-tracking summary, denormalized from the outreach ledger.
	LastContactedAt   sql.NullTime
	Responded         bool
	ResponseSentiment sql.NullString

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasEmail reports whether the coach can be reached by email.
func (c *Coach) HasEmail() bool {
	return c.Email.Valid && c.Email.String != ""
}

// HasTwitter reports whether the coach can be reached by DM.
func (c *Coach) HasTwitter() bool {
	return c.Twitter.Valid && c.Twitter.String != ""
}

// Inert reports whether the coach has no usable contact channel at all.
// Inert coaches are excluded from every eligibility query.
func (c *Coach) Inert() bool {
	return !c.HasEmail() && !c.HasTwitter()
}
