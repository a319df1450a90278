package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"coach_outreach_service/internal/domain/athlete"
	"coach_outreach_service/internal/domain/directory"
	"coach_outreach_service/internal/domain/outreach"
	idb "coach_outreach_service/internal/infra/database"
	"coach_outreach_service/internal/infra/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// queuedGracePeriod is how long a record may sit in queued before the
// reclaim sweep decides the sender crashed mid-send and fails it.
const queuedGracePeriod = 10 * time.Minute

// CadenceService owns the outreach record lifecycle: it creates records when
// an intro is first queued or a follow-up becomes due, and it sweeps stuck
// records back to failed so a crash cannot block a coach forever.
type CadenceService struct {
	athleteRepo   athlete.Repository
	directoryRepo directory.Repository
	outreachRepo  outreach.Repository
	logger        *logrus.Logger
	now           func() time.Time
}

func NewCadenceService(
	ar athlete.Repository,
	dr directory.Repository,
	or outreach.Repository,
	logger *logrus.Logger,
) *CadenceService {
	return &CadenceService{
		athleteRepo:   ar,
		directoryRepo: dr,
		outreachRepo:  or,
		logger:        logger,
		now:           time.Now,
	}
}

// NewTrackingID returns a fresh unique tracking identifier for a record.
func NewTrackingID() string {
	return uuid.NewString()
}

// CreatePending inserts a new pending record for the candidate. The coach
// identity is copied into the record so the audit trail survives later coach
// edits. ErrInFlightExists surfaces unchanged: the caller treats it as a
// benign skip, never a user-facing error.
func (s *CadenceService) CreatePending(ctx context.Context, athleteID int64, cand *Candidate, subject, body string) (*outreach.Record, error) {
	coach := cand.Coach
	rec := &outreach.Record{
		AthleteID:  athleteID,
		CoachID:    sql.NullInt64{Int64: coach.ID, Valid: true},
		SchoolID:   sql.NullInt64{Int64: coach.SchoolID, Valid: true},
		CoachName:  coach.Name,
		CoachEmail: coach.Email.String,
		SchoolName: coach.SchoolName,
		CoachRole:  string(coach.Role),
		EmailType:  cand.NextType,
		Subject:    subject,
		Body:       body,
		Status:     outreach.StatusPending,
		TrackingID: NewTrackingID(),
	}
	if err := s.outreachRepo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// RunFollowUpSweep derives due follow-ups for every coach in the athlete's
// ledger and creates the next pending record for each. The derivation is a
// pure function of the history, and creation is guarded by the in-flight
// index, so invoking the sweep twice on unchanged state creates nothing the
// second time.
func (s *CadenceService) RunFollowUpSweep(ctx context.Context, athleteID int64) (int, error) {
	settings, err := s.athleteRepo.GetSettings(ctx, athleteID)
	if err != nil {
		if err == idb.ErrSettingsNotFound {
			settings = athlete.DefaultSettings(athleteID)
		} else {
			return 0, fmt.Errorf("failed to load settings for athlete %d: %w", athleteID, err)
		}
	}
	if err := settings.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	records, err := s.outreachRepo.ListByAthlete(ctx, athleteID)
	if err != nil {
		return 0, fmt.Errorf("failed to list outreach records: %w", err)
	}

	policy := outreach.CadencePolicy{
		MaxFollowups:         settings.MaxFollowups,
		DaysBetweenFollowups: settings.DaysBetweenFollowups,
	}
	now := s.now()

	created := 0
	for coachID, history := range groupByCoach(records) {
		step := outreach.NextFollowUp(history, policy, now)
		if !step.Due {
			continue
		}
		ok, err := s.createFollowUp(ctx, athleteID, coachID, history, step.Type)
		if err != nil {
			if err == idb.ErrInFlightExists {
				continue // another sweep got there first
			}
			s.logger.WithError(err).WithFields(logrus.Fields{
				"athlete_id": athleteID,
				"coach_id":   coachID,
			}).Error("failed to create follow-up record")
			continue
		}
		if ok {
			created++
			metrics.FollowupsCreated.Inc()
		}
	}

	if created > 0 {
		s.logger.WithFields(logrus.Fields{
			"athlete_id": athleteID,
			"created":    created,
		}).Info("follow-up sweep created records")
	}
	return created, nil
}

func (s *CadenceService) createFollowUp(ctx context.Context, athleteID, coachID int64, history []*outreach.Record, emailType outreach.EmailType) (bool, error) {
	// The derivation guarantees no record of this sequence exists in the
	// history we read; this guards the same read being acted on twice.
	for _, r := range history {
		if r.EmailType == emailType {
			return false, nil
		}
	}

	rec := &outreach.Record{
		AthleteID:  athleteID,
		CoachID:    sql.NullInt64{Int64: coachID, Valid: true},
		EmailType:  emailType,
		Status:     outreach.StatusPending,
		TrackingID: NewTrackingID(),
	}

	// Refresh the snapshot from the live coach when possible; fall back to
	// the previous record's snapshot if the coach has been deleted.
	coach, err := s.directoryRepo.GetCoachByID(ctx, coachID)
	switch {
	case err == nil:
		rec.CoachName = coach.Name
		rec.CoachEmail = coach.Email.String
		rec.CoachRole = string(coach.Role)
		rec.SchoolID = sql.NullInt64{Int64: coach.SchoolID, Valid: true}
		if school, serr := s.directoryRepo.GetSchoolByID(ctx, coach.SchoolID); serr == nil {
			rec.SchoolName = school.Name
		}
	case err == idb.ErrCoachNotFound && len(history) > 0:
		prev := history[len(history)-1]
		rec.CoachName = prev.CoachName
		rec.CoachEmail = prev.CoachEmail
		rec.SchoolName = prev.SchoolName
		rec.CoachRole = prev.CoachRole
		rec.SchoolID = prev.SchoolID
	default:
		return false, fmt.Errorf("failed to load coach %d for follow-up: %w", coachID, err)
	}

	if rec.CoachEmail == "" {
		return false, nil // coach lost their email channel; nothing to schedule
	}

	if err := s.outreachRepo.Create(ctx, rec); err != nil {
		return false, err
	}
	return true, nil
}

// ReclaimStuckRecords fails any record stuck in queued past the grace
// period. The coach becomes schedulable again on a later pass via a fresh
// pending record; the failed one is never resurrected.
func (s *CadenceService) ReclaimStuckRecords(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-queuedGracePeriod)
	n, err := s.outreachRepo.ReclaimStaleQueued(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to reclaim stale queued records: %w", err)
	}
	if n > 0 {
		s.logger.WithField("count", n).Warn("reclaimed records stuck in queued")
	}
	return n, nil
}
