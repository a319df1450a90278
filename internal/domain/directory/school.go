package directory

import (
	"database/sql"
	"time"
)

// School is a program in the contact directory. Schools are reference data:
// created by scraping or admin input, refreshed periodically, never hard-deleted
// while outreach history references them.
type School struct {
	ID         int64
	Name       string // unique
	Division   sql.NullString
	Conference sql.NullString
	State      sql.NullString
	StaffURL   sql.NullString
	// PriorityTier orders schools in eligibility results. 0 means unset;
	// lower non-zero tiers are contacted first.
	PriorityTier int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
