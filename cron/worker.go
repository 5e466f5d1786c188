package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"medichat/config"
	"medichat/models"
	"medichat/services/notification"
	"medichat/services/tasks"

	"github.com/hibiken/asynq"
)

// InitReminderWorker runs the async reminder worker in background.
func InitReminderWorker(sender notification.Sender) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendReminder, handleReminderTask(sender))

	// Start async worker with retry logic
	go func() {
		log.Println("[ReminderWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ReminderWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ReminderWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleReminderTask(sender notification.Sender) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ReminderHandler] invalid payload: %v", err)
			return err
		}

		data := map[string]string{
			"doctorName": p.DoctorName,
			"dateSlot":   p.DateSlot,
		}

		if err := sender.Send(ctx, p.UserID, p.Title, p.Body, data); err != nil {
			log.Printf("[ReminderHandler] failed to send reminder: %v", err)
			return err
		}
		return nil
	}
}
