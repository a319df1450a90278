package athlete

import "context"

// Repository defines the operations for persisting and retrieving Athletes,
// their Settings, and their school selections.
type Repository interface {
	Create(ctx context.Context, a *Athlete) error
	GetByID(ctx context.Context, id int64) (*Athlete, error)
	GetByEmail(ctx context.Context, email string) (*Athlete, error)
	Update(ctx context.Context, a *Athlete) error
	ListActive(ctx context.Context) ([]*Athlete, error)

	GetSettings(ctx context.Context, athleteID int64) (*Settings, error)
	SaveSettings(ctx context.Context, s *Settings) error

	AddSchoolSelection(ctx context.Context, sel *SchoolSelection) error
	RemoveSchoolSelection(ctx context.Context, athleteID, schoolID int64) error
	ListSchoolSelections(ctx context.Context, athleteID int64) ([]*SchoolSelection, error)
}
