package template

import "context"

// Repository defines the operations for persisting and retrieving Templates.
type Repository interface {
	Create(ctx context.Context, t *Template) error
	GetByID(ctx context.Context, id int64) (*Template, error)
	Update(ctx context.Context, t *Template) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, kind Kind) ([]*Template, error)
	// FindActive returns the active template for the given kind, email type,
	// and coach type, falling back to coach_type 'any' when no exact match
	// exists.
	FindActive(ctx context.Context, kind Kind, emailType, coachType string) (*Template, error)
}
