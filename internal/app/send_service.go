package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coach_outreach_service/internal/domain/athlete"
	"coach_outreach_service/internal/domain/directory"
	"coach_outreach_service/internal/domain/mail"
	"coach_outreach_service/internal/domain/outreach"
	"coach_outreach_service/internal/domain/template"
	idb "coach_outreach_service/internal/infra/database"
	"coach_outreach_service/internal/infra/metrics"

	"github.com/sirupsen/logrus"
)

// AdminNotifier pushes operational alerts to whoever runs the system.
type AdminNotifier interface {
	Notify(text string)
}

// BatchSummary reports the outcome of one send batch.
type BatchSummary struct {
	Attempted int    `json:"attempted"`
	Sent      int    `json:"sent"`
	Failed    int    `json:"failed"`
	Skipped   int    `json:"skipped"`
	Paused    bool   `json:"paused"`
	Reason    string `json:"reason,omitempty"`
}

const (
	ReasonOutsideWindow = "outside_window"
	ReasonDailyCap      = "daily_cap_reached"
	ReasonAutoSendOff   = "auto_send_disabled"
)

// sendTimeout bounds one transport call so a hung send cannot stall the
// batch; the record fails and is reclaimed rather than sitting in queued.
const sendTimeout = 30 * time.Second

// SendService consumes eligible candidates, enforces caps and pacing, calls
// the mail transport, and commits ledger transitions. Batches for distinct
// athletes may run concurrently; within one batch everything is strictly
// sequential so the in-flight invariant needs no locking.
type SendService struct {
	athleteRepo   athlete.Repository
	directoryRepo directory.Repository
	outreachRepo  outreach.Repository
	templateRepo  template.Repository
	eligibility   *EligibilityService
	cadence       *CadenceService
	transport     mail.Transport
	credentials   mail.CredentialStore
	notifier      AdminNotifier
	logger        *logrus.Logger

	trackingBaseURL string
	pacingDelay     time.Duration
	now             func() time.Time
	sleep           func(context.Context, time.Duration)
}

func NewSendService(
	ar athlete.Repository,
	dr directory.Repository,
	or outreach.Repository,
	tr template.Repository,
	eligibility *EligibilityService,
	cadence *CadenceService,
	transport mail.Transport,
	credentials mail.CredentialStore,
	notifier AdminNotifier,
	logger *logrus.Logger,
	trackingBaseURL string,
	pacingDelay time.Duration,
) *SendService {
	return &SendService{
		athleteRepo:     ar,
		directoryRepo:   dr,
		outreachRepo:    or,
		templateRepo:    tr,
		eligibility:     eligibility,
		cadence:         cadence,
		transport:       transport,
		credentials:     credentials,
		notifier:        notifier,
		logger:          logger,
		trackingBaseURL: trackingBaseURL,
		pacingDelay:     pacingDelay,
		now:             time.Now,
		sleep:           sleepWithContext,
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// RunScheduledBatch is the cron entry point. It honors the athlete's
// auto-send switch; a manual RunSendBatch call bypasses it.
func (s *SendService) RunScheduledBatch(ctx context.Context, athleteID int64, maxCount int) (*BatchSummary, error) {
	settings, err := s.athleteRepo.GetSettings(ctx, athleteID)
	if err != nil {
		if err == idb.ErrSettingsNotFound {
			// Defaults ship with auto-send off.
			return &BatchSummary{Reason: ReasonAutoSendOff}, nil
		}
		return &BatchSummary{}, fmt.Errorf("failed to load settings: %w", err)
	}
	if !settings.AutoSendEnabled {
		return &BatchSummary{Reason: ReasonAutoSendOff}, nil
	}
	return s.RunSendBatch(ctx, athleteID, maxCount)
}

// RunSendBatch executes one send batch for the athlete, bounded by maxCount
// and the athlete's remaining daily budget. A paused athlete or a closed
// send window yields an empty summary, not an error; per-candidate transport
// failures are contained in the loop. Only credential and configuration
// failures abort the batch.
func (s *SendService) RunSendBatch(ctx context.Context, athleteID int64, maxCount int) (*BatchSummary, error) {
	summary := &BatchSummary{}
	log := s.logger.WithField("athlete_id", athleteID)

	ath, err := s.athleteRepo.GetByID(ctx, athleteID)
	if err != nil {
		return summary, err
	}
	if !ath.IsActive {
		return summary, ErrAthleteInactive
	}

	settings, err := s.athleteRepo.GetSettings(ctx, athleteID)
	if err != nil {
		if err == idb.ErrSettingsNotFound {
			settings = athlete.DefaultSettings(athleteID)
		} else {
			return summary, fmt.Errorf("failed to load settings: %w", err)
		}
	}
	if err := settings.Validate(); err != nil {
		return summary, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	now := s.now()
	if settings.IsPaused(now) {
		summary.Paused = true
		log.WithField("paused_until", settings.PausedUntil.Time).Info("athlete paused, batch skipped")
		return summary, nil
	}
	if !settings.InSendWindow(now) {
		summary.Reason = ReasonOutsideWindow
		return summary, nil
	}

	budget := maxCount
	if settings.AutoSendCount < budget {
		budget = settings.AutoSendCount
	}
	sentToday, err := s.outreachRepo.CountSentSince(ctx, athleteID, localMidnight(now, settings.TimezoneOffset))
	if err != nil {
		return summary, fmt.Errorf("failed to count today's sends: %w", err)
	}
	if remaining := settings.AutoSendCount - sentToday; remaining < budget {
		budget = remaining
	}
	if budget <= 0 {
		summary.Reason = ReasonDailyCap
		return summary, nil
	}

	creds, err := s.credentials.ForAthlete(ctx, athleteID)
	if err != nil {
		metrics.AuthFailures.Inc()
		s.alert(fmt.Sprintf("Credentials unavailable for athlete %d (%s): %v", athleteID, ath.Name, err))
		return summary, fmt.Errorf("%w: %v", mail.ErrAuth, err)
	}

	metrics.BatchesRun.Inc()

	// Follow-up records created by the cadence sweep go first; they are the
	// oldest obligations. Fresh eligible candidates fill the rest.
	pending, err := s.outreachRepo.ListPending(ctx, athleteID, budget)
	if err != nil {
		return summary, fmt.Errorf("failed to list pending records: %w", err)
	}
	for _, rec := range pending {
		if summary.Sent >= budget {
			break
		}
		if err := s.renderIfEmpty(ctx, ath, rec); err != nil {
			log.WithError(err).WithField("record_id", rec.ID).Error("failed to render pending record")
			summary.Skipped++
			continue
		}
		if halt := s.sendOne(ctx, creds, rec, summary, log); halt != nil {
			return summary, halt
		}
	}

	if remaining := budget - summary.Sent; remaining > 0 {
		candidates, err := s.eligibility.EligibleCoaches(ctx, athleteID, remaining, settings.DaysBetweenEmails)
		if err != nil {
			return summary, fmt.Errorf("failed to compute eligible coaches: %w", err)
		}
		for _, cand := range candidates {
			if summary.Sent >= budget {
				break
			}
			rec, err := s.createRendered(ctx, ath, athleteID, cand)
			if err != nil {
				if err == idb.ErrInFlightExists {
					summary.Skipped++
					continue
				}
				log.WithError(err).WithField("coach_id", cand.Coach.ID).Error("failed to create outreach record")
				summary.Skipped++
				continue
			}
			if halt := s.sendOne(ctx, creds, rec, summary, log); halt != nil {
				return summary, halt
			}
		}
	}

	log.WithFields(logrus.Fields{
		"attempted": summary.Attempted,
		"sent":      summary.Sent,
		"failed":    summary.Failed,
		"skipped":   summary.Skipped,
	}).Info("send batch finished")
	return summary, nil
}

// sendOne drives one record through queued -> sent|failed. The returned
// error is non-nil only for batch-halting failures (auth); transport errors
// are recorded and absorbed.
func (s *SendService) sendOne(ctx context.Context, creds mail.Credentials, rec *outreach.Record, summary *BatchSummary, log *logrus.Entry) error {
	// Mutual-exclusion point: losing the claim race is a benign skip.
	if err := s.outreachRepo.ClaimPending(ctx, rec.ID); err != nil {
		if err == idb.ErrStatusConflict || err == idb.ErrRecordNotFound {
			summary.Skipped++
			return nil
		}
		return fmt.Errorf("failed to claim record %d: %w", rec.ID, err)
	}
	summary.Attempted++

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	msg := mail.Message{
		To:      rec.CoachEmail,
		Subject: rec.Subject,
		Body:    s.withTrackingPixel(rec.Body, rec.TrackingID),
	}
	messageID, err := s.transport.Send(sendCtx, creds, msg)
	cancel()

	if err != nil {
		if markErr := s.outreachRepo.MarkFailed(ctx, rec.ID, err.Error()); markErr != nil {
			log.WithError(markErr).WithField("record_id", rec.ID).Error("failed to mark record failed")
		}
		if errors.Is(err, mail.ErrAuth) {
			metrics.AuthFailures.Inc()
			s.alert(fmt.Sprintf("Mail authentication failed for athlete %d; batch halted: %v", rec.AthleteID, err))
			return err
		}
		metrics.SendFailures.Inc()
		summary.Failed++
		log.WithError(err).WithFields(logrus.Fields{
			"record_id":   rec.ID,
			"coach_email": rec.CoachEmail,
		}).Warn("transport failure, continuing batch")
		return nil
	}

	if err := s.outreachRepo.MarkSent(ctx, rec.ID, s.now()); err != nil {
		// The mail went out; a conflict here means the reclaim sweep raced
		// us. Log loudly, nothing to undo.
		log.WithError(err).WithField("record_id", rec.ID).Error("failed to mark record sent")
	}
	summary.Sent++
	metrics.EmailsSent.Inc()
	s.markCoachContacted(ctx, rec)
	log.WithFields(logrus.Fields{
		"record_id":   rec.ID,
		"coach_email": rec.CoachEmail,
		"email_type":  rec.EmailType,
		"message_id":  messageID,
	}).Info("email sent")

	s.sleep(ctx, s.pacingDelay)
	return nil
}

func (s *SendService) createRendered(ctx context.Context, ath *athlete.Athlete, athleteID int64, cand *Candidate) (*outreach.Record, error) {
	subject, body, err := s.render(ctx, ath, cand.Coach, string(cand.NextType), string(cand.Coach.Role))
	if err != nil {
		return nil, err
	}
	return s.cadence.CreatePending(ctx, athleteID, cand, subject, body)
}

// renderIfEmpty fills in subject and body for records the follow-up sweep
// created without content. The rendered content is persisted before the
// claim so the ledger row carries exactly what the transport will send.
func (s *SendService) renderIfEmpty(ctx context.Context, ath *athlete.Athlete, rec *outreach.Record) error {
	if rec.Body != "" {
		return nil
	}
	coach := &directory.CoachWithSchool{
		Coach:      directory.Coach{Name: rec.CoachName, Role: directory.CoachRole(rec.CoachRole)},
		SchoolName: rec.SchoolName,
	}
	subject, body, err := s.render(ctx, ath, coach, string(rec.EmailType), rec.CoachRole)
	if err != nil {
		return err
	}
	if err := s.outreachRepo.UpdateContent(ctx, rec.ID, subject, body); err != nil {
		return fmt.Errorf("failed to store rendered content for record %d: %w", rec.ID, err)
	}
	rec.Subject = subject
	rec.Body = body
	return nil
}

func (s *SendService) render(ctx context.Context, ath *athlete.Athlete, coach *directory.CoachWithSchool, emailType, coachType string) (string, string, error) {
	tmpl, err := s.templateRepo.FindActive(ctx, template.KindEmail, emailType, coachType)
	if err != nil {
		return "", "", fmt.Errorf("no active template for %s/%s: %w", emailType, coachType, err)
	}
	vars := map[string]string{
		"coach_name":       coach.Name,
		"coach_first_name": firstName(coach.Name),
		"school":           coach.SchoolName,
		"athlete_name":     ath.Name,
		"grad_year":        fmt.Sprintf("%d", ath.GradYear),
		"position":         ath.Position.String,
		"highlight_url":    ath.HighlightURL.String,
	}
	subject, body := tmpl.Render(vars)
	return subject, body, nil
}

func (s *SendService) withTrackingPixel(body, trackingID string) string {
	if s.trackingBaseURL == "" {
		return body
	}
	return body + fmt.Sprintf(`<img src="%s/t/%s.gif" width="1" height="1" alt="" style="display:none">`, s.trackingBaseURL, trackingID)
}

func (s *SendService) markCoachContacted(ctx context.Context, rec *outreach.Record) {
	if !rec.CoachID.Valid {
		return
	}
	coach, err := s.directoryRepo.GetCoachByID(ctx, rec.CoachID.Int64)
	if err != nil {
		return
	}
	coach.LastContactedAt.Time = s.now()
	coach.LastContactedAt.Valid = true
	if err := s.directoryRepo.UpdateCoach(ctx, coach); err != nil {
		s.logger.WithError(err).WithField("coach_id", coach.ID).Warn("failed to update coach last_contacted_at")
	}
}

func (s *SendService) alert(text string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(text)
}

func firstName(full string) string {
	for i, r := range full {
		if r == ' ' {
			return full[:i]
		}
	}
	return full
}

// localMidnight returns the UTC instant of the athlete's local midnight for
// daily cap accounting.
func localMidnight(now time.Time, tzOffset int) time.Time {
	local := now.UTC().Add(time.Duration(tzOffset) * time.Hour)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.Add(-time.Duration(tzOffset) * time.Hour)
}
