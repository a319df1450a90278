package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"coach_outreach_service/internal/domain/athlete"
	"coach_outreach_service/internal/domain/directory"
	"coach_outreach_service/internal/domain/outreach"
	"coach_outreach_service/internal/domain/template"
	idb "coach_outreach_service/internal/infra/database"
)

var (
	ErrAthleteAlreadyExists = errors.New("athlete with this email already exists")
	ErrInvalidCoachRole     = errors.New("unknown coach role")
	ErrInvalidDMStatus      = errors.New("unknown dm status")
	ErrDMAlreadyQueued      = errors.New("a dm for this handle is already queued")
)

// AdminService handles the management surface: athletes, settings, the
// contact directory, templates, and the DM queue.
type AdminService struct {
	athleteRepo   athlete.Repository
	directoryRepo directory.Repository
	outreachRepo  outreach.Repository
	templateRepo  template.Repository
}

func NewAdminService(
	ar athlete.Repository,
	dr directory.Repository,
	or outreach.Repository,
	tr template.Repository,
) *AdminService {
	return &AdminService{
		athleteRepo:   ar,
		directoryRepo: dr,
		outreachRepo:  or,
		templateRepo:  tr,
	}
}

// CreateAthlete registers a new tenant with default settings.
func (s *AdminService) CreateAthlete(ctx context.Context, a *athlete.Athlete) error {
	_, err := s.athleteRepo.GetByEmail(ctx, a.Email)
	if err == nil {
		return ErrAthleteAlreadyExists
	}
	if err != idb.ErrAthleteNotFound {
		return fmt.Errorf("failed to check existing athlete: %w", err)
	}

	a.IsActive = true
	if err := s.athleteRepo.Create(ctx, a); err != nil {
		return fmt.Errorf("failed to create athlete: %w", err)
	}
	if err := s.athleteRepo.SaveSettings(ctx, athlete.DefaultSettings(a.ID)); err != nil {
		return fmt.Errorf("failed to create default settings: %w", err)
	}
	return nil
}

func (s *AdminService) GetAthlete(ctx context.Context, id int64) (*athlete.Athlete, error) {
	return s.athleteRepo.GetByID(ctx, id)
}

func (s *AdminService) ListActiveAthletes(ctx context.Context) ([]*athlete.Athlete, error) {
	return s.athleteRepo.ListActive(ctx)
}

// DeactivateAthlete removes the athlete from scheduling without deleting
// outreach history.
func (s *AdminService) DeactivateAthlete(ctx context.Context, id int64) (*athlete.Athlete, error) {
	a, err := s.athleteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.IsActive {
		return a, nil
	}
	a.IsActive = false
	if err := s.athleteRepo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to deactivate athlete: %w", err)
	}
	return a, nil
}

// GetSettings returns the athlete's settings, falling back to defaults when
// none have been saved yet.
func (s *AdminService) GetSettings(ctx context.Context, athleteID int64) (*athlete.Settings, error) {
	settings, err := s.athleteRepo.GetSettings(ctx, athleteID)
	if err == idb.ErrSettingsNotFound {
		return athlete.DefaultSettings(athleteID), nil
	}
	return settings, err
}

// UpdateSettings validates and persists new send behavior for the athlete.
func (s *AdminService) UpdateSettings(ctx context.Context, settings *athlete.Settings) error {
	if _, err := s.athleteRepo.GetByID(ctx, settings.AthleteID); err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return s.athleteRepo.SaveSettings(ctx, settings)
}

// PauseAthlete pauses sending until the given instant. The pause takes
// effect on the next scheduling tick; an in-flight batch drains.
func (s *AdminService) PauseAthlete(ctx context.Context, athleteID int64, until time.Time) error {
	settings, err := s.GetSettings(ctx, athleteID)
	if err != nil {
		return err
	}
	settings.PausedUntil = sql.NullTime{Time: until, Valid: true}
	return s.athleteRepo.SaveSettings(ctx, settings)
}

// --- Directory management ---

func (s *AdminService) AddSchool(ctx context.Context, school *directory.School) error {
	return s.directoryRepo.CreateSchool(ctx, school)
}

func (s *AdminService) ListSchools(ctx context.Context, filter directory.SchoolFilter) ([]*directory.School, error) {
	return s.directoryRepo.ListSchools(ctx, filter)
}

func (s *AdminService) AddCoach(ctx context.Context, coach *directory.Coach) error {
	switch coach.Role {
	case directory.RoleRecruitingCoordinator, directory.RoleOffensiveLine, directory.RoleHeadCoach,
		directory.RoleOffensiveCoordinator, directory.RoleDefensiveCoordinator, directory.RolePositionCoach,
		directory.RoleOther:
	default:
		return ErrInvalidCoachRole
	}
	if _, err := s.directoryRepo.GetSchoolByID(ctx, coach.SchoolID); err != nil {
		return err
	}
	return s.directoryRepo.CreateCoach(ctx, coach)
}

func (s *AdminService) ListCoaches(ctx context.Context, schoolID int64) ([]*directory.Coach, error) {
	return s.directoryRepo.ListCoachesBySchool(ctx, schoolID)
}

// SelectSchool adds a school to the athlete's outreach scope.
func (s *AdminService) SelectSchool(ctx context.Context, athleteID, schoolID int64, pref athlete.CoachPreference) error {
	switch pref {
	case athlete.PreferPositionOnly, athlete.PreferRecruitingOnly, athlete.PreferBoth:
	default:
		return fmt.Errorf("%w: unknown coach preference %q", ErrConfig, pref)
	}
	if _, err := s.athleteRepo.GetByID(ctx, athleteID); err != nil {
		return err
	}
	if _, err := s.directoryRepo.GetSchoolByID(ctx, schoolID); err != nil {
		return err
	}
	return s.athleteRepo.AddSchoolSelection(ctx, &athlete.SchoolSelection{
		AthleteID:  athleteID,
		SchoolID:   schoolID,
		Preference: pref,
	})
}

func (s *AdminService) UnselectSchool(ctx context.Context, athleteID, schoolID int64) error {
	return s.athleteRepo.RemoveSchoolSelection(ctx, athleteID, schoolID)
}

// --- Templates ---

func (s *AdminService) CreateTemplate(ctx context.Context, t *template.Template) error {
	if t.Body == "" {
		return fmt.Errorf("%w: template body must not be empty", ErrConfig)
	}
	return s.templateRepo.Create(ctx, t)
}

func (s *AdminService) UpdateTemplate(ctx context.Context, t *template.Template) error {
	return s.templateRepo.Update(ctx, t)
}

func (s *AdminService) DeleteTemplate(ctx context.Context, id int64) error {
	return s.templateRepo.Delete(ctx, id)
}

func (s *AdminService) ListTemplates(ctx context.Context, kind template.Kind) ([]*template.Template, error) {
	return s.templateRepo.List(ctx, kind)
}

// --- DM queue ---

// EnqueueDM adds a social outreach item, deduplicated by handle: a coach is
// DMed at most once per athlete.
func (s *AdminService) EnqueueDM(ctx context.Context, d *outreach.DMRecord) error {
	if _, err := s.outreachRepo.FindDMByTwitter(ctx, d.AthleteID, d.CoachTwitter); err == nil {
		return ErrDMAlreadyQueued
	} else if err != idb.ErrDMNotFound {
		return fmt.Errorf("failed to check dm history: %w", err)
	}
	d.Status = outreach.DMPending
	return s.outreachRepo.CreateDM(ctx, d)
}

func (s *AdminService) ListDMQueue(ctx context.Context, athleteID int64, status outreach.DMStatus, limit int) ([]*outreach.DMRecord, error) {
	if !outreach.ValidDMStatus(status) {
		return nil, ErrInvalidDMStatus
	}
	return s.outreachRepo.ListDMsByStatus(ctx, athleteID, status, limit)
}

// MarkDM records the outcome of working a DM queue item.
func (s *AdminService) MarkDM(ctx context.Context, id int64, status outreach.DMStatus, notes string) error {
	if !outreach.ValidDMStatus(status) || status == outreach.DMPending {
		return ErrInvalidDMStatus
	}
	return s.outreachRepo.UpdateDMStatus(ctx, id, status, notes)
}

// --- Reporting ---

func (s *AdminService) OutreachStats(ctx context.Context, athleteID int64) (*outreach.Stats, error) {
	return s.outreachRepo.Stats(ctx, athleteID)
}

func (s *AdminService) HotLeads(ctx context.Context, athleteID int64, limit int) ([]*outreach.HotLead, error) {
	return s.outreachRepo.ListHotLeads(ctx, athleteID, limit)
}
