package athlete

import (
	"database/sql"
	"time"
)

// Athlete is the tenant of the system: the person whose recruiting outreach
// is being managed. Athletes are never deleted while outreach history exists;
// deactivation removes them from scheduling.
type Athlete struct {
	ID           int64
	Name         string
	Email        string
	GradYear     int
	Position     sql.NullString
	HeightInches sql.NullInt64
	WeightLbs    sql.NullInt64
	HighlightURL sql.NullString
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
