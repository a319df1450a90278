package main

import (
	"os"
	"os/signal"
	"syscall"

	"coach_outreach_service/internal/app"
	"coach_outreach_service/internal/domain/mail"
	"coach_outreach_service/internal/infra/config"
	"coach_outreach_service/internal/infra/credentials"
	idb "coach_outreach_service/internal/infra/database"
	"coach_outreach_service/internal/infra/httpapi"
	applog "coach_outreach_service/internal/infra/logger"
	"coach_outreach_service/internal/infra/mailer"
	"coach_outreach_service/internal/infra/metrics"
	"coach_outreach_service/internal/infra/notifier"
	"coach_outreach_service/internal/infra/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger config is part of what failed to load; stderr is all we have.
		os.Stderr.WriteString("FATAL: could not load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := applog.New(cfg.LogLevel, cfg.Environment)
	log.WithFields(map[string]interface{}{
		"environment": cfg.Environment,
		"log_level":   cfg.LogLevel,
	}).Info("coach outreach service starting")

	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("could not connect to database")
	}
	defer db.Close()
	log.Info("database connection established")

	metrics.Register()

	athleteRepo := idb.NewPostgresAthleteRepository(db)
	directoryRepo := idb.NewPostgresDirectoryRepository(db)
	outreachRepo := idb.NewPostgresOutreachRepository(db)
	templateRepo := idb.NewPostgresTemplateRepository(db)

	fallbackCreds := mail.Credentials{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}
	credStore, err := credentials.NewStore(db, cfg.CredentialsKey, fallbackCreds)
	if err != nil {
		log.WithError(err).Fatal("could not initialize credential store")
	}

	adminNotifier, err := notifier.New(cfg.TelegramToken, cfg.AdminTelegramID, log)
	if err != nil {
		log.WithError(err).Fatal("could not initialize telegram notifier")
	}

	transport := mailer.NewSMTPTransport(log)

	eligibility := app.NewEligibilityService(athleteRepo, directoryRepo, outreachRepo, log)
	cadence := app.NewCadenceService(athleteRepo, directoryRepo, outreachRepo, log)
	sendService := app.NewSendService(
		athleteRepo, directoryRepo, outreachRepo, templateRepo,
		eligibility, cadence, transport, credStore, adminNotifier, log,
		cfg.TrackingBaseURL, cfg.PacingDelay,
	)
	trackingService := app.NewTrackingService(outreachRepo, directoryRepo, log)
	adminService := app.NewAdminService(athleteRepo, directoryRepo, outreachRepo, templateRepo)

	outreachScheduler := scheduler.NewOutreachScheduler(
		athleteRepo, sendService, cadence, log,
		cfg.CronSpecSendTick, cfg.CronSpecFollowupSweep, cfg.CronSpecReclaimSweep,
		cfg.BatchLimit, cfg.PacingDelay,
	)
	if err := outreachScheduler.Start(); err != nil {
		log.WithError(err).Fatal("could not start scheduler")
	}

	trackingHandler := httpapi.NewTrackingHandler(trackingService, log)
	adminHandler := httpapi.NewAdminHandler(adminService, eligibility, sendService, credStore, log, cfg.BatchLimit)
	server := httpapi.NewServer(cfg.HTTPAddr, cfg.Environment, trackingHandler, adminHandler, log)

	go func() {
		if err := server.Run(); err != nil {
			log.WithError(err).Fatal("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")
	outreachScheduler.Stop()
	if err := server.Shutdown(); err != nil {
		log.WithError(err).Error("http server shutdown failed")
	}
	log.Info("shut down gracefully")
}
