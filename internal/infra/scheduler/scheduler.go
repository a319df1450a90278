package scheduler

import (
	"context"
	"errors"
	"time"

	"coach_outreach_service/internal/app"
	"coach_outreach_service/internal/domain/athlete"
	"coach_outreach_service/internal/domain/mail"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	sweepTimeout   = 2 * time.Minute
	minTickTimeout = 10 * time.Minute
	tickTimeoutPad = 5 * time.Minute
)

// tickTimeoutFor bounds one send tick. The worst case is a full batch paced
// end to end, so the timeout scales with pacing times batch size plus slack
// for transport and database time.
func tickTimeoutFor(batchLimit int, pacing time.Duration) time.Duration {
	timeout := time.Duration(batchLimit)*pacing + tickTimeoutPad
	if timeout < minTickTimeout {
		return minTickTimeout
	}
	return timeout
}

// OutreachScheduler drives the background loops: periodic send batches per
// active athlete, the follow-up derivation sweep, and the stuck-queued
// reclaim sweep. Ticks for different athletes run concurrently (their record
// sets are disjoint); everything within one athlete's batch is sequential.
type OutreachScheduler struct {
	cronEngine  *cron.Cron
	athleteRepo athlete.Repository
	sendService *app.SendService
	cadence     *app.CadenceService
	logger      *logrus.Logger

	cronSpecSendTick      string
	cronSpecFollowupSweep string
	cronSpecReclaimSweep  string
	batchLimit            int
	tickTimeout           time.Duration
}

func NewOutreachScheduler(
	ar athlete.Repository,
	sendService *app.SendService,
	cadence *app.CadenceService,
	logger *logrus.Logger,
	cronSpecSendTick string,
	cronSpecFollowupSweep string,
	cronSpecReclaimSweep string,
	batchLimit int,
	pacingDelay time.Duration,
) *OutreachScheduler {
	return &OutreachScheduler{
		cronEngine:            cron.New(cron.WithLocation(time.UTC)),
		athleteRepo:           ar,
		sendService:           sendService,
		cadence:               cadence,
		logger:                logger,
		cronSpecSendTick:      cronSpecSendTick,
		cronSpecFollowupSweep: cronSpecFollowupSweep,
		cronSpecReclaimSweep:  cronSpecReclaimSweep,
		batchLimit:            batchLimit,
		tickTimeout:           tickTimeoutFor(batchLimit, pacingDelay),
	}
}

func (s *OutreachScheduler) Start() error {
	if _, err := s.cronEngine.AddFunc(s.cronSpecSendTick, s.runSendTick); err != nil {
		return err
	}
	if _, err := s.cronEngine.AddFunc(s.cronSpecFollowupSweep, s.runFollowupSweep); err != nil {
		return err
	}
	if _, err := s.cronEngine.AddFunc(s.cronSpecReclaimSweep, s.runReclaimSweep); err != nil {
		return err
	}
	s.cronEngine.Start()
	s.logger.Info("outreach scheduler started")
	return nil
}

// runSendTick runs one send batch per active athlete. Each athlete gets its
// own goroutine and its own error containment: an auth or config failure
// halts that athlete only, never the tick.
func (s *OutreachScheduler) runSendTick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.tickTimeout)
	defer cancel()

	athletes, err := s.athleteRepo.ListActive(ctx)
	if err != nil {
		s.logger.WithError(err).Error("send tick: failed to list active athletes")
		return
	}

	done := make(chan struct{})
	for _, a := range athletes {
		go func(athleteID int64, name string) {
			defer func() { done <- struct{}{} }()
			summary, err := s.sendService.RunScheduledBatch(ctx, athleteID, s.batchLimit)
			log := s.logger.WithFields(logrus.Fields{"athlete_id": athleteID, "athlete": name})
			switch {
			case err == nil:
				if summary.Attempted > 0 {
					log.WithFields(logrus.Fields{
						"sent":   summary.Sent,
						"failed": summary.Failed,
					}).Info("send tick batch complete")
				}
			case errors.Is(err, mail.ErrAuth):
				log.WithError(err).Error("send tick: credentials invalid, athlete batch halted")
			case errors.Is(err, app.ErrConfig):
				log.WithError(err).Error("send tick: invalid settings, athlete skipped")
			default:
				log.WithError(err).Error("send tick: batch failed")
			}
		}(a.ID, a.Name)
	}
	for range athletes {
		<-done
	}
}

func (s *OutreachScheduler) runFollowupSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	athletes, err := s.athleteRepo.ListActive(ctx)
	if err != nil {
		s.logger.WithError(err).Error("follow-up sweep: failed to list active athletes")
		return
	}
	for _, a := range athletes {
		created, err := s.cadence.RunFollowUpSweep(ctx, a.ID)
		if err != nil {
			s.logger.WithError(err).WithField("athlete_id", a.ID).Error("follow-up sweep failed for athlete")
			continue
		}
		if created > 0 {
			s.logger.WithFields(logrus.Fields{"athlete_id": a.ID, "created": created}).Info("follow-up sweep done")
		}
	}
}

func (s *OutreachScheduler) runReclaimSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	if _, err := s.cadence.ReclaimStuckRecords(ctx); err != nil {
		s.logger.WithError(err).Error("reclaim sweep failed")
	}
}

func (s *OutreachScheduler) Stop() {
	s.logger.Info("stopping outreach scheduler...")
	ctx := s.cronEngine.Stop() // waits for running jobs
	<-ctx.Done()
	s.logger.Info("outreach scheduler stopped")
}
