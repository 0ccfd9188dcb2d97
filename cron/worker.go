package cron

import (
	"context"
	"log"
	"time"

	"radbook/config"
	schedulerRepo "radbook/database/repository/scheduler"
	"radbook/models"
	"radbook/services/notification"
	"radbook/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	TypeDraftSweep   = "draft:sweep"
	TypeReminderScan = "reminder:scan"
)

// InitMaintenanceWorker starts the background worker and its schedules:
// the periodic draft sweep (expired and orphaned drafts) and the daily
// appointment reminder scan.
func InitMaintenanceWorker(repo schedulerRepo.SchedulerRepository, notifSvc notification.NotificationService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeDraftSweep, handleDraftSweep(repo))
	mux.HandleFunc(TypeReminderScan, handleReminderScan(repo, notifSvc))

	scheduler := asynq.NewScheduler(redisOpts, nil)
	if _, err := scheduler.Register("@every 5m", asynq.NewTask(TypeDraftSweep, nil)); err != nil {
		log.Fatalf("[MaintenanceWorker] failed to register draft sweep: %v", err)
	}
	if _, err := scheduler.Register("0 8 * * *", asynq.NewTask(TypeReminderScan, nil)); err != nil {
		log.Fatalf("[MaintenanceWorker] failed to register reminder scan: %v", err)
	}

	go func() {
		log.Println("[MaintenanceWorker] starting scheduler...")
		if err := scheduler.Run(); err != nil {
			log.Fatalf("[MaintenanceWorker] scheduler stopped: %v", err)
		}
	}()

	go func() {
		log.Println("[MaintenanceWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[MaintenanceWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[MaintenanceWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

// handleDraftSweep removes abandoned drafts past their TTL, then reconciles
// drafts whose promotion inserted the appointment but failed to delete them.
func handleDraftSweep(repo schedulerRepo.SchedulerRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()

		cutoff := time.Now().UTC().Add(-time.Duration(config.AppConfig.DraftTTLMinutes) * time.Minute)
		expired, err := repo.DeleteExpiredDrafts(ctx, cutoff)
		if err != nil {
			logger.Error("draft sweep: expiry pass failed", zap.Error(err))
			return err
		}

		orphaned, err := repo.DeleteOrphanedDrafts(ctx, time.Minute)
		if err != nil {
			logger.Error("draft sweep: reconciliation pass failed", zap.Error(err))
			return err
		}

		if expired > 0 || orphaned > 0 {
			logger.Info("draft sweep done",
				zap.Int64("expired", expired),
				zap.Int64("orphaned", orphaned))
		}
		return nil
	}
}

// handleReminderScan fires a reminder notification for every scheduled
// appointment starting tomorrow.
func handleReminderScan(repo schedulerRepo.SchedulerRepository, notifSvc notification.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()

		now := time.Now().UTC()
		from := now.Truncate(24 * time.Hour).Add(24 * time.Hour)
		to := from.Add(24 * time.Hour)

		appts, err := repo.FindAppointmentsStartingBetween(from, to)
		if err != nil {
			logger.Error("reminder scan failed", zap.Error(err))
			return err
		}

		for i := range appts {
			notifSvc.NotifyAppointment(ctx, models.NotifyReminder, &appts[i], "")
		}

		logger.Info("reminder scan done", zap.Int("appointments", len(appts)))
		return nil
	}
}
