package directory

import "context"

// SchoolFilter narrows school listings for admin queries.
type SchoolFilter struct {
	Query    string
	Division string
	State    string
	Limit    int
}

// Repository defines the operations for persisting and retrieving Schools
// and Coaches.
type Repository interface {
	CreateSchool(ctx context.Context, s *School) error
	GetSchoolByID(ctx context.Context, id int64) (*School, error)
	GetSchoolByName(ctx context.Context, name string) (*School, error)
	UpdateSchool(ctx context.Context, s *School) error
	ListSchools(ctx context.Context, filter SchoolFilter) ([]*School, error)

	CreateCoach(ctx context.Context, c *Coach) error
	GetCoachByID(ctx context.Context, id int64) (*Coach, error)
	GetCoachByEmail(ctx context.Context, email string) (*Coach, error)
	UpdateCoach(ctx context.Context, c *Coach) error
	ListCoachesBySchool(ctx context.Context, schoolID int64) ([]*Coach, error)

	// ListContactableCoaches returns every coach with at least one contact
	// channel, joined with its school, ordered by school priority tier,
	// then last-contacted ascending (never-contacted first), then coach ID.
	// When schoolIDs is non-empty the result is restricted to those schools.
	ListContactableCoaches(ctx context.Context, schoolIDs []int64) ([]*CoachWithSchool, error)
}

// CoachWithSchool is a coach joined with the school fields the eligibility
// filter and email rendering need.
type CoachWithSchool struct {
	Coach
	SchoolName     string
	SchoolDivision string
	SchoolTier     int
}
