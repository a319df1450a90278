package app

import (
	"context"
	"fmt"
	"time"

	"coach_outreach_service/internal/domain/directory"
	"coach_outreach_service/internal/domain/outreach"
	idb "coach_outreach_service/internal/infra/database"
	"coach_outreach_service/internal/infra/metrics"

	"github.com/sirupsen/logrus"
)

// TrackingService applies asynchronous open/reply/bounce events to the
// ledger. Counts are exact (every pixel hit increments), flags are
// first-event-only. Callers at the HTTP boundary swallow its errors: the
// endpoints are hit by unauthenticated mail clients and must always answer
// success.
type TrackingService struct {
	outreachRepo  outreach.Repository
	directoryRepo directory.Repository
	logger        *logrus.Logger
	now           func() time.Time
}

func NewTrackingService(or outreach.Repository, dr directory.Repository, logger *logrus.Logger) *TrackingService {
	return &TrackingService{
		outreachRepo:  or,
		directoryRepo: dr,
		logger:        logger,
		now:           time.Now,
	}
}

// RecordOpen registers one tracking pixel hit. open_count grows on every
// call (it counts real opens); opened/opened_at are set on the first call
// only. Unknown tracking IDs yield ErrRecordNotFound.
func (s *TrackingService) RecordOpen(ctx context.Context, trackingID string) (*outreach.Record, error) {
	rec, err := s.outreachRepo.ApplyOpen(ctx, trackingID, s.now())
	if err != nil {
		return nil, err
	}
	metrics.OpensTracked.Inc()
	s.logger.WithFields(logrus.Fields{
		"tracking_id": trackingID,
		"open_count":  rec.OpenCount,
	}).Debug("open recorded")
	return rec, nil
}

// RecordReply attributes a reply to the athlete's most recent sent email to
// that coach. The replied flag, timestamp, and sentiment are set once; the
// first classification wins and later replies never overwrite it. The coach's
// directory entry is updated so eligibility sees the response immediately.
func (s *TrackingService) RecordReply(ctx context.Context, athleteID int64, coachEmail string, sentiment outreach.Sentiment) error {
	rec, err := s.outreachRepo.GetLatestSentByCoachEmail(ctx, athleteID, coachEmail)
	if err != nil {
		return err
	}
	if err := s.outreachRepo.ApplyReply(ctx, rec.ID, sentiment, s.now()); err != nil {
		return fmt.Errorf("failed to apply reply to record %d: %w", rec.ID, err)
	}
	metrics.RepliesTracked.Inc()

	s.markCoachResponded(ctx, coachEmail, sentiment)

	s.logger.WithFields(logrus.Fields{
		"athlete_id":  athleteID,
		"coach_email": coachEmail,
		"sentiment":   sentiment,
	}).Info("reply recorded")
	return nil
}

// RecordReplyByTrackingID applies a reply to the exact record a tracking ID
// names. Used when the inbound event carries the ID instead of the coach's
// address.
func (s *TrackingService) RecordReplyByTrackingID(ctx context.Context, trackingID string, sentiment outreach.Sentiment) error {
	rec, err := s.outreachRepo.GetByTrackingID(ctx, trackingID)
	if err != nil {
		return err
	}
	if err := s.outreachRepo.ApplyReply(ctx, rec.ID, sentiment, s.now()); err != nil {
		return fmt.Errorf("failed to apply reply to record %d: %w", rec.ID, err)
	}
	metrics.RepliesTracked.Inc()

	s.markCoachResponded(ctx, rec.CoachEmail, sentiment)

	s.logger.WithFields(logrus.Fields{
		"tracking_id": trackingID,
		"sentiment":   sentiment,
	}).Info("reply recorded")
	return nil
}

// RecordBounce moves the record to bounced and flags the coach's email as
// unverified so future eligibility passes deprioritize it.
func (s *TrackingService) RecordBounce(ctx context.Context, trackingID string) error {
	rec, err := s.outreachRepo.GetByTrackingID(ctx, trackingID)
	if err != nil {
		return err
	}
	if err := s.outreachRepo.MarkBounced(ctx, rec.ID); err != nil {
		if err == idb.ErrStatusConflict {
			return nil // already terminal
		}
		return fmt.Errorf("failed to mark record %d bounced: %w", rec.ID, err)
	}

	if rec.CoachID.Valid {
		coach, err := s.directoryRepo.GetCoachByID(ctx, rec.CoachID.Int64)
		if err == nil {
			coach.Verified = false
			if err := s.directoryRepo.UpdateCoach(ctx, coach); err != nil {
				s.logger.WithError(err).WithField("coach_id", coach.ID).Warn("failed to unverify bounced coach")
			}
		}
	}

	s.logger.WithField("tracking_id", trackingID).Info("bounce recorded")
	return nil
}

func (s *TrackingService) markCoachResponded(ctx context.Context, coachEmail string, sentiment outreach.Sentiment) {
	coach, err := s.directoryRepo.GetCoachByEmail(ctx, coachEmail)
	if err != nil {
		return // snapshot-only coach; ledger already has the reply
	}
	coach.Responded = true
	if !coach.ResponseSentiment.Valid {
		coach.ResponseSentiment.String = string(sentiment)
		coach.ResponseSentiment.Valid = true
	}
	if err := s.directoryRepo.UpdateCoach(ctx, coach); err != nil {
		s.logger.WithError(err).WithField("coach_id", coach.ID).Warn("failed to update coach response summary")
	}
}
