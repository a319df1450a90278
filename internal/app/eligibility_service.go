package app

import (
	"context"
	"fmt"
	"time"

	"coach_outreach_service/internal/domain/athlete"
	"coach_outreach_service/internal/domain/directory"
	"coach_outreach_service/internal/domain/outreach"
	idb "coach_outreach_service/internal/infra/database"

	"github.com/sirupsen/logrus"
)

// Channel selects which contact channel an eligibility query targets.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelDM    Channel = "dm"
)

// Candidate is a coach the scheduler may legally contact now, together with
// the cadence stage the next message should use.
type Candidate struct {
	Coach     *directory.CoachWithSchool
	NextType  outreach.EmailType
	Selection athlete.CoachPreference
}

// EligibilityService computes, for one athlete, the ordered set of coaches
// eligible for contact right now. It is a pure query over the directory,
// the ledger, and the athlete's settings; it never writes.
type EligibilityService struct {
	athleteRepo   athlete.Repository
	directoryRepo directory.Repository
	outreachRepo  outreach.Repository
	logger        *logrus.Logger
	now           func() time.Time
}

func NewEligibilityService(
	ar athlete.Repository,
	dr directory.Repository,
	or outreach.Repository,
	logger *logrus.Logger,
) *EligibilityService {
	return &EligibilityService{
		athleteRepo:   ar,
		directoryRepo: dr,
		outreachRepo:  or,
		logger:        logger,
		now:           time.Now,
	}
}

// EligibleCoaches returns up to limit coaches the athlete may email now.
// daysBetween is the minimum cooldown in days since the last sent email to
// the same coach. The ordering is deterministic (school priority tier, then
// last-contacted ascending with never-contacted first, then coach ID), so
// repeated calls over unchanged state return identical output.
func (s *EligibilityService) EligibleCoaches(ctx context.Context, athleteID int64, limit, daysBetween int) ([]*Candidate, error) {
	return s.eligible(ctx, athleteID, limit, daysBetween, ChannelEmail)
}

// EligibleForDM is the social-channel variant: coaches with a handle, no
// prior DM, and no preference/scope violations.
func (s *EligibilityService) EligibleForDM(ctx context.Context, athleteID int64, limit int) ([]*Candidate, error) {
	return s.eligible(ctx, athleteID, limit, 0, ChannelDM)
}

func (s *EligibilityService) eligible(ctx context.Context, athleteID int64, limit, daysBetween int, channel Channel) ([]*Candidate, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}
	if daysBetween < 0 {
		return nil, fmt.Errorf("days_between must be non-negative, got %d", daysBetween)
	}

	ath, err := s.athleteRepo.GetByID(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	if !ath.IsActive {
		return nil, ErrAthleteInactive
	}

	settings, err := s.athleteRepo.GetSettings(ctx, athleteID)
	if err != nil {
		if err == idb.ErrSettingsNotFound {
			settings = athlete.DefaultSettings(athleteID)
		} else {
			return nil, fmt.Errorf("failed to load settings for athlete %d: %w", athleteID, err)
		}
	}

	// Scope: the athlete's school selection, or the full directory when no
	// selection exists (single-tenant mode).
	selections, err := s.athleteRepo.ListSchoolSelections(ctx, athleteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list school selections: %w", err)
	}
	var schoolIDs []int64
	prefBySchool := make(map[int64]athlete.CoachPreference, len(selections))
	for _, sel := range selections {
		schoolIDs = append(schoolIDs, sel.SchoolID)
		prefBySchool[sel.SchoolID] = sel.Preference
	}

	coaches, err := s.directoryRepo.ListContactableCoaches(ctx, schoolIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list contactable coaches: %w", err)
	}

	records, err := s.outreachRepo.ListByAthlete(ctx, athleteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list outreach records: %w", err)
	}
	history := groupByCoach(records)

	cooldown := time.Duration(daysBetween) * 24 * time.Hour
	now := s.now()

	candidates := make([]*Candidate, 0, limit)
	for _, coach := range coaches {
		pref := athlete.PreferBoth
		if p, ok := prefBySchool[coach.SchoolID]; ok {
			pref = p
		}
		if !matchesPreference(coach.Role, pref) {
			continue
		}

		switch channel {
		case ChannelEmail:
			if !coach.HasEmail() {
				continue
			}
		case ChannelDM:
			if !coach.HasTwitter() {
				continue
			}
		}

		coachHistory := history[coach.ID]
		if channel == ChannelEmail {
			if excluded, reason := s.excludedByLedger(coachHistory, cooldown, now); excluded {
				s.logger.WithFields(logrus.Fields{
					"athlete_id": athleteID,
					"coach_id":   coach.ID,
					"reason":     reason,
				}).Debug("coach excluded from eligibility")
				continue
			}
		} else {
			// One DM per handle, ever.
			if _, err := s.outreachRepo.FindDMByTwitter(ctx, athleteID, coach.Twitter.String); err == nil {
				continue
			} else if err != idb.ErrDMNotFound {
				return nil, fmt.Errorf("failed to check dm history: %w", err)
			}
		}

		nextType := outreach.TypeIntro
		if channel == ChannelEmail {
			nextType = outreach.NextStage(coachHistory, settings.MaxFollowups)
			if nextType == "" {
				continue
			}
		}

		candidates = append(candidates, &Candidate{Coach: coach, NextType: nextType, Selection: pref})
		if len(candidates) >= limit {
			break
		}
	}

	return candidates, nil
}

// excludedByLedger applies the ledger-derived exclusions: in-flight record,
// reply received, cooldown not elapsed, or cadence exhausted.
func (s *EligibilityService) excludedByLedger(coachHistory []*outreach.Record, cooldown time.Duration, now time.Time) (bool, string) {
	var latestSent *outreach.Record
	for _, r := range coachHistory {
		if r.Status.InFlight() {
			return true, "in_flight"
		}
		if r.Replied {
			return true, "replied"
		}
		if r.Status == outreach.StatusSent && r.SentAt.Valid {
			if latestSent == nil || r.SentAt.Time.After(latestSent.SentAt.Time) {
				latestSent = r
			}
		}
	}
	if latestSent != nil && now.Sub(latestSent.SentAt.Time) < cooldown {
		return true, "cooldown"
	}
	return false, ""
}

func matchesPreference(role directory.CoachRole, pref athlete.CoachPreference) bool {
	switch pref {
	case athlete.PreferPositionOnly:
		return role.IsPositionRole()
	case athlete.PreferRecruitingOnly:
		return role == directory.RoleRecruitingCoordinator
	default:
		return true
	}
}

func groupByCoach(records []*outreach.Record) map[int64][]*outreach.Record {
	grouped := make(map[int64][]*outreach.Record)
	for _, r := range records {
		if !r.CoachID.Valid {
			continue
		}
		grouped[r.CoachID.Int64] = append(grouped[r.CoachID.Int64], r)
	}
	return grouped
}
