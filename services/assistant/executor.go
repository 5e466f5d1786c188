// File: services/assistant/executor.go
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	slotRepo "medichat/database/repository/slot"
	"medichat/models"

	"go.uber.org/zap"
)

// turnResult is the executor's half of a TurnResponse; the orchestrator
// attaches the session id.
type turnResult struct {
	Action               string
	Message              string
	RequiresConfirmation bool
}

const generalHelpMessage = "I'm here to help you with appointment booking and cancellation. What would you like to do?"

// execute dispatches a resolved intent. Each branch performs at most one
// slot-store mutation and at most one context persist, at the end of the
// branch, so no partial state is visible if an earlier step fails.
func (s *DefaultAssistantService) execute(ctx context.Context, it Intent, sc *models.SessionContext) (turnResult, error) {
	switch it.Kind {
	case IntentCheckAvailability:
		return s.checkAvailability(ctx, it)
	case IntentBook:
		return s.stageBooking(ctx, it, sc)
	case IntentCancel:
		return s.stageCancellation(ctx, it, sc)
	case IntentConfirm:
		return s.confirmPending(ctx, sc)
	case IntentDecline:
		return s.declinePending(ctx, sc)
	case IntentView:
		return s.viewAppointments(ctx, sc)
	default:
		return s.generalResponse(ctx), nil
	}
}

func (s *DefaultAssistantService) checkAvailability(ctx context.Context, it Intent) (turnResult, error) {
	if len(it.Missing) > 0 {
		return turnResult{
			Action: models.ActionError,
			Message: "I need both the doctor name and date to check availability. Please try again.\n\n" +
				"Example: 'Check availability for Dr. John Doe on 18-09-2025'",
		}, nil
	}

	times, err := s.Slots.QueryAvailable(ctx, it.Doctor, it.Date)
	if err != nil {
		return turnResult{}, NewUpstreamError(fmt.Sprintf("availability lookup failed: %v", err))
	}
	if len(times) == 0 {
		return turnResult{
			Action: models.ActionError,
			Message: fmt.Sprintf("**❌ No availability found for Dr. %s on %s**\n\nPlease try a different date or doctor.",
				titleCase(it.Doctor), it.Date),
		}, nil
	}

	return turnResult{
		Action: models.ActionShowAvailability,
		Message: fmt.Sprintf("**📅 Available time slots for %s on %s:**\n\nThis availability for %s\nAvailable slots: %s",
			titleCase(it.Doctor), it.Date, it.Date, strings.Join(times, ", ")),
	}, nil
}

func (s *DefaultAssistantService) stageBooking(ctx context.Context, it Intent, sc *models.SessionContext) (turnResult, error) {
	if len(it.Missing) > 0 {
		return turnResult{
			Action: models.ActionError,
			Message: fmt.Sprintf("I need doctor name, date, and slot number to book an appointment. Missing: %s.\n\n"+
				"Example: 'Book slot 1 with Dr. John Doe on 15-09-2025'", strings.Join(it.Missing, ", ")),
		}, nil
	}

	// The ordinal resolves against the same ordered availability list a
	// CheckAvailability for this doctor+date would produce.
	times, err := s.Slots.QueryAvailable(ctx, it.Doctor, it.Date)
	if err != nil {
		return turnResult{}, NewUpstreamError(fmt.Sprintf("availability lookup failed: %v", err))
	}
	if len(times) == 0 {
		return turnResult{
			Action:  models.ActionError,
			Message: fmt.Sprintf("No availability found for Dr. %s on %s", titleCase(it.Doctor), it.Date),
		}, nil
	}
	if it.SlotIndex < 1 || it.SlotIndex > len(times) {
		return turnResult{
			Action:  models.ActionError,
			Message: fmt.Sprintf("Invalid slot number. Please select between 1 and %d", len(times)),
		}, nil
	}
	timeSlot := times[it.SlotIndex-1]

	// Stage only; the slot store is not touched until the user confirms.
	// A fresh request overwrites any prior pending action.
	sc.PendingAction = models.PendingBook
	sc.DoctorName = it.Doctor
	sc.Date = it.Date
	sc.Time = timeSlot
	sc.AppointmentRef = ""
	if err := s.Contexts.Set(ctx, sc.SessionID, sc); err != nil {
		return turnResult{}, NewUpstreamError(fmt.Sprintf("failed to persist session context: %v", err))
	}

	return turnResult{
		Action:               models.ActionBookingConfirmation,
		RequiresConfirmation: true,
		Message: fmt.Sprintf(`**🛡️ Booking Confirmation Required**

**Appointment Details:**
• Doctor: %s
• Date: %s
• Time: %s
• Patient ID: %d

**Do you want to book this appointment?**

**Please respond:**
• **'yes'** to confirm booking
• **'no'** to cancel booking`, titleCase(it.Doctor), it.Date, timeSlot, sc.UserID),
	}, nil
}

func (s *DefaultAssistantService) stageCancellation(ctx context.Context, it Intent, sc *models.SessionContext) (turnResult, error) {
	rows, err := s.Slots.ListForUser(ctx, sc.UserID)
	if err != nil {
		return turnResult{}, NewUpstreamError(fmt.Sprintf("appointment lookup failed: %v", err))
	}
	entries := buildListing(rows, sc.UserID, s.now())

	if it.Reference == "" {
		// Bare cancellation request: show the letter-indexed list.
		return turnResult{
			Action: models.ActionShowAppointments,
			Message: fmt.Sprintf("**Your Appointments:**\n\n%s\n\n**To cancel an appointment, please tell me which one (a, b, c, etc.)**",
				renderListing(sc.UserID, entries)),
		}, nil
	}

	entry, err := resolveReference(entries, it.Reference)
	if err != nil {
		var ae *AssistantError
		if errors.As(err, &ae) {
			return turnResult{
				Action:  models.ActionError,
				Message: fmt.Sprintf("**❌ Error:** %s", ae.Message),
			}, nil
		}
		return turnResult{}, err
	}

	sc.PendingAction = models.PendingCancel
	sc.DoctorName = entry.Row.DoctorName
	sc.Date = entry.Row.Date()
	sc.Time = entry.Row.Time()
	sc.AppointmentRef = it.Reference
	if err := s.Contexts.Set(ctx, sc.SessionID, sc); err != nil {
		return turnResult{}, NewUpstreamError(fmt.Sprintf("failed to persist session context: %v", err))
	}

	return turnResult{
		Action:               models.ActionCancellationConfirmation,
		RequiresConfirmation: true,
		Message: fmt.Sprintf(`**🛡️ Cancellation Confirmation Required**

**Appointment Details:**
• Doctor: %s
• Date: %s
• Patient ID: %d

**Do you want to cancel this appointment?**

**Please respond:**
• **'yes'** to confirm cancellation
• **'no'** to keep the appointment`, titleCase(entry.Row.DoctorName), entry.Row.DateSlot, sc.UserID),
	}, nil
}

func (s *DefaultAssistantService) confirmPending(ctx context.Context, sc *models.SessionContext) (turnResult, error) {
	switch sc.PendingAction {
	case models.PendingBook:
		return s.commitBooking(ctx, sc)
	case models.PendingCancel:
		return s.commitCancellation(ctx, sc)
	default:
		return turnResult{
			Action:  models.ActionError,
			Message: "No pending action to confirm",
		}, nil
	}
}

func (s *DefaultAssistantService) commitBooking(ctx context.Context, sc *models.SessionContext) (turnResult, error) {
	err := s.Slots.Reserve(ctx, sc.DoctorName, sc.DateSlot(), sc.UserID)
	if errors.Is(err, slotRepo.ErrNoMatchingSlot) {
		// Lost the race for the row. Keep doctor/date so the user can
		// retry, but drop the staged action.
		sc.PendingAction = models.PendingNone
		if perr := s.Contexts.Set(ctx, sc.SessionID, sc); perr != nil {
			return turnResult{}, NewUpstreamError(fmt.Sprintf("failed to persist session context: %v", perr))
		}
		return turnResult{
			Action:  models.ActionError,
			Message: "**❌ Booking Failed:** No available appointments for that particular case",
		}, nil
	}
	if err != nil {
		return turnResult{}, NewUpstreamError(fmt.Sprintf("reserve failed: %v", err))
	}

	s.scheduleReminder(ctx, sc)

	result := turnResult{
		Action: models.ActionBookingCompleted,
		Message: fmt.Sprintf(`**✅ Appointment booked successfully!**

**Booked Appointment:**
• Doctor: %s
• Date: %s
• Time: %s
• Patient ID: %d`, titleCase(sc.DoctorName), sc.Date, sc.Time, sc.UserID),
	}
	if err := s.Contexts.Clear(ctx, sc.SessionID); err != nil {
		return turnResult{}, NewUpstreamError(fmt.Sprintf("failed to clear session context: %v", err))
	}
	return result, nil
}

func (s *DefaultAssistantService) commitCancellation(ctx context.Context, sc *models.SessionContext) (turnResult, error) {
	err := s.Slots.Release(ctx, sc.DoctorName, sc.DateSlot(), sc.UserID)
	if errors.Is(err, slotRepo.ErrNoMatchingSlot) {
		sc.PendingAction = models.PendingNone
		if perr := s.Contexts.Set(ctx, sc.SessionID, sc); perr != nil {
			return turnResult{}, NewUpstreamError(fmt.Sprintf("failed to persist session context: %v", perr))
		}
		return turnResult{
			Action:  models.ActionError,
			Message: "**❌ Cancellation Failed:** You don't have any appointment with that specifications",
		}, nil
	}
	if err != nil {
		return turnResult{}, NewUpstreamError(fmt.Sprintf("release failed: %v", err))
	}

	result := turnResult{
		Action: models.ActionCancellationCompleted,
		Message: fmt.Sprintf(`**✅ Appointment cancelled successfully!**

**Cancelled Appointment:**
• Doctor: %s
• Date: %s
• Patient ID: %d`, titleCase(sc.DoctorName), sc.DateSlot(), sc.UserID),
	}
	if err := s.Contexts.Clear(ctx, sc.SessionID); err != nil {
		return turnResult{}, NewUpstreamError(fmt.Sprintf("failed to clear session context: %v", err))
	}
	return result, nil
}

func (s *DefaultAssistantService) declinePending(ctx context.Context, sc *models.SessionContext) (turnResult, error) {
	switch sc.PendingAction {
	case models.PendingBook:
		if err := s.Contexts.Clear(ctx, sc.SessionID); err != nil {
			return turnResult{}, NewUpstreamError(fmt.Sprintf("failed to clear session context: %v", err))
		}
		return turnResult{
			Action:  models.ActionBookingCancelled,
			Message: "**✅ Booking Cancelled**\n\nNo appointment was booked. Is there anything else I can help you with?",
		}, nil
	case models.PendingCancel:
		if err := s.Contexts.Clear(ctx, sc.SessionID); err != nil {
			return turnResult{}, NewUpstreamError(fmt.Sprintf("failed to clear session context: %v", err))
		}
		return turnResult{
			Action:  models.ActionCancellationCancelled,
			Message: "**✅ Cancellation Cancelled**\n\nYour appointment has been kept. Is there anything else I can help you with?",
		}, nil
	default:
		return turnResult{
			Action:  models.ActionError,
			Message: "No pending action to cancel",
		}, nil
	}
}

func (s *DefaultAssistantService) viewAppointments(ctx context.Context, sc *models.SessionContext) (turnResult, error) {
	rows, err := s.Slots.ListForUser(ctx, sc.UserID)
	if err != nil {
		return turnResult{}, NewUpstreamError(fmt.Sprintf("appointment lookup failed: %v", err))
	}
	entries := buildListing(rows, sc.UserID, s.now())
	return turnResult{
		Action:  models.ActionShowAppointments,
		Message: renderListing(sc.UserID, entries),
	}, nil
}

// generalResponse answers utterances no rule recognized. The chat model is
// optional and best-effort; any failure falls back to the static help text.
func (s *DefaultAssistantService) generalResponse(ctx context.Context) turnResult {
	if s.Chat != nil {
		prompt := "You are a scheduling assistant for doctor appointments. " +
			"Briefly tell the user you can check availability, book, view, and cancel appointments."
		if reply, err := s.Chat.Generate(ctx, prompt); err == nil && strings.TrimSpace(reply) != "" {
			return turnResult{Action: models.ActionGeneral, Message: strings.TrimSpace(reply)}
		} else if err != nil {
			s.logger().Warn("chat model fallback failed", zap.Error(err))
		}
	}
	return turnResult{Action: models.ActionGeneral, Message: generalHelpMessage}
}

// scheduleReminder is best-effort: a queue failure must not fail the booking.
func (s *DefaultAssistantService) scheduleReminder(ctx context.Context, sc *models.SessionContext) {
	if s.Reminders == nil {
		return
	}
	payload := models.ReminderPayload{
		UserID:     sc.UserID,
		DoctorName: sc.DoctorName,
		DateSlot:   sc.DateSlot(),
		Title:      "Upcoming appointment",
		Body:       fmt.Sprintf("You have an appointment with Dr. %s at %s.", titleCase(sc.DoctorName), sc.DateSlot()),
	}
	if err := s.Reminders.ScheduleAppointmentReminder(ctx, payload); err != nil {
		s.logger().Warn("failed to schedule appointment reminder",
			zap.Int("userID", sc.UserID),
			zap.String("dateSlot", sc.DateSlot()),
			zap.Error(err))
	}
}
