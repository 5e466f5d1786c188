package notification

import (
	"context"

	"go.uber.org/zap"
)

// Sender delivers a reminder to a patient. The transport is pluggable; the
// default sender writes to the service log.
type Sender interface {
	Send(ctx context.Context, userID int, title, body string, data map[string]string) error
}

// LogSender is the default Sender, emitting reminders as structured log
// entries.
type LogSender struct {
	Logger *zap.Logger
}

func (s *LogSender) Send(ctx context.Context, userID int, title, body string, data map[string]string) error {
	s.Logger.Info("delivering reminder",
		zap.Int("userID", userID),
		zap.String("title", title),
		zap.String("body", body),
		zap.Any("data", data),
	)
	return nil
}
