package models

// TurnRequest is the payload coming from the frontend into
// /api/assistant/execute. SessionID is optional; the orchestrator generates
// one when absent so the client can continue the conversation.
type TurnRequest struct {
	SessionID string `json:"session_id,omitempty"`
	UserID    int    `json:"user_id"`
	Message   string `json:"message"`
}

// Action tags returned on TurnResponse. The frontend branches on these to
// decide how to render the message.
const (
	ActionShowAvailability         = "show_availability"
	ActionShowAppointments         = "show_appointments"
	ActionBookingConfirmation      = "booking_confirmation"
	ActionBookingCompleted         = "booking_completed"
	ActionBookingCancelled         = "booking_cancelled"
	ActionCancellationConfirmation = "cancellation_confirmation"
	ActionCancellationCompleted    = "cancellation_completed"
	ActionCancellationCancelled    = "cancellation_cancelled"
	ActionError                    = "error"
	ActionGeneral                  = "general"
)

// TurnResponse is what the assistant returns for one conversational turn.
type TurnResponse struct {
	SessionID            string `json:"session_id"`
	Action               string `json:"action"`
	Message              string `json:"message"`
	RequiresConfirmation bool   `json:"requires_confirmation"`
}
