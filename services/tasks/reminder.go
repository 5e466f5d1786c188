package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"medichat/config"
	"medichat/models"

	"github.com/hibiken/asynq"
)

const TypeSendReminder = "reminder:send"

// ReminderScheduler stages an appointment reminder for later delivery.
// Scheduling is best-effort from the caller's point of view: a failure here
// must never fail the booking that triggered it.
type ReminderScheduler interface {
	ScheduleAppointmentReminder(ctx context.Context, payload models.ReminderPayload) error
}

func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}

// AsynqReminderScheduler enqueues reminder tasks on the Redis-backed queue,
// timed REMINDER_LEAD_MINUTES before the appointment.
type AsynqReminderScheduler struct {
	client *asynq.Client
}

func NewAsynqReminderScheduler() *AsynqReminderScheduler {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	})
	return &AsynqReminderScheduler{client: client}
}

func (s *AsynqReminderScheduler) ScheduleAppointmentReminder(ctx context.Context, payload models.ReminderPayload) error {
	when, err := time.Parse(models.DateSlotLayout, payload.DateSlot)
	if err != nil {
		return fmt.Errorf("invalid date slot %q: %w", payload.DateSlot, err)
	}

	fireAt := when.Add(-time.Duration(config.AppConfig.ReminderLeadMinutes) * time.Minute)
	if fireAt.Before(time.Now()) {
		// Appointment is closer than the lead time; remind immediately.
		fireAt = time.Now()
	}

	task, opts, err := NewReminderTask(payload, fireAt)
	if err != nil {
		return fmt.Errorf("failed to build reminder task: %w", err)
	}
	if _, err := s.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue reminder: %w", err)
	}
	return nil
}
