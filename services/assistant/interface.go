package assistant

import (
	"context"

	"medichat/models"
)

// AssistantService processes one conversational turn. Implementations must
// never propagate a fault to the caller: every turn, including an internal
// failure, produces a well-formed TurnResponse carrying a session id the
// client can retry on.
type AssistantService interface {
	ProcessTurn(ctx context.Context, req models.TurnRequest) models.TurnResponse
}
