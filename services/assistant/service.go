// File: services/assistant/service.go
package assistant

import (
	"context"
	"time"

	slotRepo "medichat/database/repository/slot"
	"medichat/models"
	"medichat/services/intelligence"
	"medichat/services/tasks"
	"medichat/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const apologyMessage = "I encountered an error processing your request. Please try again."

// DefaultAssistantService implements AssistantService. Every turn is
// stateless at the transport level: all session state is reloaded from the
// context store at the start of the turn and persisted before the response
// is returned, so any instance can serve any turn.
type DefaultAssistantService struct {
	Slots     slotRepo.SlotRepository
	Contexts  ContextStore
	Chat      intelligence.ChatModel  // optional; small-talk fallback only
	Reminders tasks.ReminderScheduler // optional
	Logger    *zap.Logger
	Now       func() time.Time // test hook; defaults to time.Now
}

func (s *DefaultAssistantService) ProcessTurn(ctx context.Context, req models.TurnRequest) models.TurnResponse {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	sc, err := s.Contexts.Get(ctx, sessionID)
	if err != nil {
		s.logger().Error("failed to load session context",
			zap.String("sessionID", sessionID), zap.Error(err))
		return apologize(sessionID)
	}
	sc.SessionID = sessionID
	sc.UserID = req.UserID

	it := Resolve(req.Message, sc)

	res, err := s.execute(ctx, it, sc)
	if err != nil {
		s.logger().Error("turn execution failed",
			zap.String("sessionID", sessionID),
			zap.Int("intent", int(it.Kind)),
			zap.Error(err))
		return apologize(sessionID)
	}

	return models.TurnResponse{
		SessionID:            sessionID,
		Action:               res.Action,
		Message:              res.Message,
		RequiresConfirmation: res.RequiresConfirmation,
	}
}

// apologize is the catch-all outbound turn: the fault stays behind the turn
// boundary and the session id is still returned so the client can retry.
func apologize(sessionID string) models.TurnResponse {
	return models.TurnResponse{
		SessionID: sessionID,
		Action:    models.ActionError,
		Message:   apologyMessage,
	}
}

func (s *DefaultAssistantService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultAssistantService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return utils.GetLogger()
}
