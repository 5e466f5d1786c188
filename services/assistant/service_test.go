package assistant

import (
	"context"
	"testing"
	"time"

	slotRepo "medichat/database/repository/slot"
	"medichat/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(repo *slotRepo.MemorySlotRepo) *DefaultAssistantService {
	return &DefaultAssistantService{
		Slots:    repo,
		Contexts: NewMemoryContextStore(),
		Logger:   zap.NewNop(),
		Now: func() time.Time {
			return time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
		},
	}
}

func freeRow(doctor, dateSlot string) models.SlotRow {
	return models.SlotRow{
		DoctorName:     doctor,
		DateSlot:       dateSlot,
		Specialization: "general_dentist",
		IsAvailable:    true,
	}
}

func heldRow(doctor, dateSlot string, userID int) models.SlotRow {
	uid := userID
	return models.SlotRow{
		DoctorName:      doctor,
		DateSlot:        dateSlot,
		Specialization:  "general_dentist",
		IsAvailable:     false,
		PatientToAttend: &uid,
		PatientHistory:  []int{userID},
	}
}

func turn(t *testing.T, svc *DefaultAssistantService, sessionID string, userID int, msg string) models.TurnResponse {
	t.Helper()
	resp := svc.ProcessTurn(context.Background(), models.TurnRequest{
		SessionID: sessionID,
		UserID:    userID,
		Message:   msg,
	})
	require.NotEmpty(t, resp.SessionID)
	return resp
}

func TestAvailabilityScenario(t *testing.T) {
	repo := slotRepo.NewMemorySlotRepo()
	repo.AddRow(freeRow("john doe", "15-09-2025 09:00"))
	repo.AddRow(heldRow("john doe", "15-09-2025 10:00", 555))
	repo.AddRow(freeRow("jane smith", "15-09-2025 09:00"))
	svc := newTestService(repo)

	resp := turn(t, svc, "", 1234567, "Check availability for Dr. John Doe on 15-09-2025")
	assert.Equal(t, models.ActionShowAvailability, resp.Action)
	assert.Contains(t, resp.Message, "Available slots: 09:00")
	assert.NotContains(t, resp.Message, "10:00")
}

func TestAvailabilityNoneFound(t *testing.T) {
	svc := newTestService(slotRepo.NewMemorySlotRepo())

	resp := turn(t, svc, "", 1234567, "Check availability for Dr. John Doe on 15-09-2025")
	assert.Equal(t, models.ActionError, resp.Action)
	assert.Contains(t, resp.Message, "No availability found for Dr. John Doe on 15-09-2025")
}

func TestFullBookingFlow(t *testing.T) {
	repo := slotRepo.NewMemorySlotRepo()
	repo.AddRow(freeRow("john doe", "15-09-2025 09:00"))
	svc := newTestService(repo)

	resp := turn(t, svc, "", 7777, "Book slot 1 with Dr. John Doe on 15-09-2025")
	require.Equal(t, models.ActionBookingConfirmation, resp.Action)
	assert.True(t, resp.RequiresConfirmation)
	assert.Contains(t, resp.Message, "John Doe")
	assert.Contains(t, resp.Message, "15-09-2025")
	assert.Contains(t, resp.Message, "09:00")
	assert.Contains(t, resp.Message, "7777")

	// No mutation before confirmation.
	assert.True(t, repo.Row(0).IsAvailable)

	session := resp.SessionID
	resp = turn(t, svc, session, 7777, "yes")
	assert.Equal(t, models.ActionBookingCompleted, resp.Action)
	assert.Contains(t, resp.Message, "Appointment booked successfully!")

	row := repo.Row(0)
	assert.False(t, row.IsAvailable)
	require.NotNil(t, row.PatientToAttend)
	assert.Equal(t, 7777, *row.PatientToAttend)

	// Context was cleared; a second confirm has nothing to act on.
	resp = turn(t, svc, session, 7777, "yes")
	assert.Equal(t, models.ActionError, resp.Action)
	assert.Equal(t, "No pending action to confirm", resp.Message)
}

func TestBookingInvalidSlotNumber(t *testing.T) {
	repo := slotRepo.NewMemorySlotRepo()
	repo.AddRow(freeRow("john doe", "15-09-2025 09:00"))
	svc := newTestService(repo)

	resp := turn(t, svc, "", 7777, "Book slot 5 with Dr. John Doe on 15-09-2025")
	assert.Equal(t, models.ActionError, resp.Action)
	assert.Contains(t, resp.Message, "Please select between 1 and 1")
	assert.True(t, repo.Row(0).IsAvailable)
}

func TestBookingMissingFields(t *testing.T) {
	svc := newTestService(slotRepo.NewMemorySlotRepo())

	resp := turn(t, svc, "", 7777, "book a slot with dr. john doe")
	assert.Equal(t, models.ActionError, resp.Action)
	assert.Contains(t, resp.Message, "Missing: date, slot number")
	assert.Contains(t, resp.Message, "Example: 'Book slot 1 with Dr. John Doe on 15-09-2025'")
}

func TestDeclineLeavesStoreUnchanged(t *testing.T) {
	repo := slotRepo.NewMemorySlotRepo()
	repo.AddRow(freeRow("john doe", "15-09-2025 09:00"))
	svc := newTestService(repo)

	resp := turn(t, svc, "", 7777, "Book slot 1 with Dr. John Doe on 15-09-2025")
	session := resp.SessionID

	resp = turn(t, svc, session, 7777, "no")
	assert.Equal(t, models.ActionBookingCancelled, resp.Action)
	assert.Contains(t, resp.Message, "No appointment was booked")
	assert.True(t, repo.Row(0).IsAvailable)

	resp = turn(t, svc, session, 7777, "yes")
	assert.Equal(t, "No pending action to confirm", resp.Message)
}

func TestDeclineWithoutPendingAction(t *testing.T) {
	svc := newTestService(slotRepo.NewMemorySlotRepo())

	resp := turn(t, svc, "", 7777, "no")
	assert.Equal(t, models.ActionError, resp.Action)
	assert.Equal(t, "No pending action to cancel", resp.Message)
}

func TestConfirmBookConflict(t *testing.T) {
	repo := slotRepo.NewMemorySlotRepo()
	repo.AddRow(freeRow("john doe", "15-09-2025 09:00"))
	svc := newTestService(repo)

	respA := turn(t, svc, "", 111, "Book slot 1 with Dr. John Doe on 15-09-2025")
	respB := turn(t, svc, "", 222, "Book slot 1 with Dr. John Doe on 15-09-2025")
	require.Equal(t, models.ActionBookingConfirmation, respA.Action)
	require.Equal(t, models.ActionBookingConfirmation, respB.Action)

	resp := turn(t, svc, respA.SessionID, 111, "yes")
	assert.Equal(t, models.ActionBookingCompleted, resp.Action)

	resp = turn(t, svc, respB.SessionID, 222, "yes")
	assert.Equal(t, models.ActionError, resp.Action)
	assert.Contains(t, resp.Message, "Booking Failed")

	row := repo.Row(0)
	require.NotNil(t, row.PatientToAttend)
	assert.Equal(t, 111, *row.PatientToAttend)

	// Conflict cleared the pending action; a retried confirm is a no-op.
	resp = turn(t, svc, respB.SessionID, 222, "yes")
	assert.Equal(t, "No pending action to confirm", resp.Message)
}

func TestCancellationFlow(t *testing.T) {
	repo := slotRepo.NewMemorySlotRepo()
	repo.AddRow(heldRow("john doe", "15-09-2025 09:00", 42))
	svc := newTestService(repo)

	resp := turn(t, svc, "", 42, "Cancel appointment a")
	require.Equal(t, models.ActionCancellationConfirmation, resp.Action)
	assert.True(t, resp.RequiresConfirmation)
	assert.Contains(t, resp.Message, "John Doe")
	assert.Contains(t, resp.Message, "15-09-2025 09:00")

	resp = turn(t, svc, resp.SessionID, 42, "yes")
	assert.Equal(t, models.ActionCancellationCompleted, resp.Action)
	assert.Contains(t, resp.Message, "Appointment cancelled successfully!")

	row := repo.Row(0)
	assert.True(t, row.IsAvailable)
	assert.Nil(t, row.PatientToAttend)
}

func TestCancellationDeclineKeepsAppointment(t *testing.T) {
	repo := slotRepo.NewMemorySlotRepo()
	repo.AddRow(heldRow("john doe", "15-09-2025 09:00", 42))
	svc := newTestService(repo)

	resp := turn(t, svc, "", 42, "Cancel appointment a")
	require.Equal(t, models.ActionCancellationConfirmation, resp.Action)

	resp = turn(t, svc, resp.SessionID, 42, "no")
	assert.Equal(t, models.ActionCancellationCancelled, resp.Action)
	assert.Contains(t, resp.Message, "Your appointment has been kept")

	row := repo.Row(0)
	assert.False(t, row.IsAvailable)
	require.NotNil(t, row.PatientToAttend)
	assert.Equal(t, 42, *row.PatientToAttend)
}

func TestConfirmCancelRowAlreadyReleased(t *testing.T) {
	repo := slotRepo.NewMemorySlotRepo()
	repo.AddRow(heldRow("john doe", "15-09-2025 09:00", 42))
	svc := newTestService(repo)

	resp := turn(t, svc, "", 42, "Cancel appointment a")
	require.Equal(t, models.ActionCancellationConfirmation, resp.Action)
	session := resp.SessionID

	// The row is released out-of-band before the user confirms.
	require.NoError(t, repo.Release(context.Background(), "john doe", "15-09-2025 09:00", 42))

	resp = turn(t, svc, session, 42, "yes")
	assert.Equal(t, models.ActionError, resp.Action)
	assert.Contains(t, resp.Message, "Cancellation Failed")

	// The failure dropped the staged action.
	resp = turn(t, svc, session, 42, "yes")
	assert.Equal(t, "No pending action to confirm", resp.Message)
}

func TestCancellationWithoutReferenceShowsList(t *testing.T) {
	repo := slotRepo.NewMemorySlotRepo()
	repo.AddRow(heldRow("john doe", "15-09-2025 09:00", 42))
	svc := newTestService(repo)

	for _, msg := range []string{"cancel my appointment", "cancel my appointments"} {
		resp := turn(t, svc, "", 42, msg)
		assert.Equal(t, models.ActionShowAppointments, resp.Action, msg)
		assert.Contains(t, resp.Message, "Your Appointments:")
		assert.Contains(t, resp.Message, "a. 🟢 Dr. John Doe")
		assert.Contains(t, resp.Message, "please tell me which one (a, b, c, etc.)")
	}
}

func TestCancellationInvalidLetter(t *testing.T) {
	repo := slotRepo.NewMemorySlotRepo()
	repo.AddRow(heldRow("john doe", "15-09-2025 09:00", 42))
	svc := newTestService(repo)

	resp := turn(t, svc, "", 42, "cancel appointment b")
	assert.Equal(t, models.ActionError, resp.Action)
	assert.Contains(t, resp.Message, "Invalid appointment letter. Please select between a and a")
}

// A view then a cancellation by letter, with no intervening mutation, must
// target the same row for any history size.
func TestStableReferenceMapping(t *testing.T) {
	repo := slotRepo.NewMemorySlotRepo()
	repo.AddRow(heldRow("jane smith", "20-09-2025 10:00", 42))
	repo.AddRow(heldRow("john doe", "15-09-2025 09:00", 42))
	repo.AddRow(heldRow("susan davis", "25-09-2025 14:00", 42))
	svc := newTestService(repo)

	resp := turn(t, svc, "", 42, "view appointments")
	require.Equal(t, models.ActionShowAppointments, resp.Action)
	// Descending order: susan davis (a), jane smith (b), john doe (c).
	assert.Contains(t, resp.Message, "a. 🟢 Dr. Susan Davis")
	assert.Contains(t, resp.Message, "b. 🟢 Dr. Jane Smith")
	assert.Contains(t, resp.Message, "c. 🟢 Dr. John Doe")

	resp = turn(t, svc, resp.SessionID, 42, "cancel appointment b")
	require.Equal(t, models.ActionCancellationConfirmation, resp.Action)
	assert.Contains(t, resp.Message, "Jane Smith")

	resp = turn(t, svc, resp.SessionID, 42, "yes")
	assert.Equal(t, models.ActionCancellationCompleted, resp.Action)

	assert.True(t, repo.Row(0).IsAvailable)  // jane smith released
	assert.False(t, repo.Row(1).IsAvailable) // john doe untouched
	assert.False(t, repo.Row(2).IsAvailable) // susan davis untouched
}

// A fresh booking request silently replaces a still-pending action.
func TestPendingActionOverwrite(t *testing.T) {
	repo := slotRepo.NewMemorySlotRepo()
	repo.AddRow(heldRow("jane smith", "20-09-2025 10:00", 42))
	repo.AddRow(freeRow("john doe", "15-09-2025 09:00"))
	svc := newTestService(repo)

	resp := turn(t, svc, "", 42, "Cancel appointment a")
	require.Equal(t, models.ActionCancellationConfirmation, resp.Action)
	session := resp.SessionID

	resp = turn(t, svc, session, 42, "Book slot 1 with Dr. John Doe on 15-09-2025")
	require.Equal(t, models.ActionBookingConfirmation, resp.Action)

	resp = turn(t, svc, session, 42, "yes")
	assert.Equal(t, models.ActionBookingCompleted, resp.Action)

	// The booking committed; the staged cancellation was discarded.
	row := repo.Row(1)
	assert.False(t, row.IsAvailable)
	require.NotNil(t, row.PatientToAttend)
	assert.Equal(t, 42, *row.PatientToAttend)
	assert.False(t, repo.Row(0).IsAvailable)
}

func TestViewAppointmentsEmpty(t *testing.T) {
	svc := newTestService(slotRepo.NewMemorySlotRepo())

	resp := turn(t, svc, "", 42, "show appointments")
	assert.Equal(t, models.ActionShowAppointments, resp.Action)
	assert.Equal(t, "No appointments found for user 42", resp.Message)
}

func TestUnrecognizedFallsBackToHelp(t *testing.T) {
	svc := newTestService(slotRepo.NewMemorySlotRepo())

	resp := turn(t, svc, "", 42, "tell me a joke")
	assert.Equal(t, models.ActionGeneral, resp.Action)
	assert.Equal(t, generalHelpMessage, resp.Message)
}

func TestGeneratedSessionID(t *testing.T) {
	svc := newTestService(slotRepo.NewMemorySlotRepo())

	resp := turn(t, svc, "", 42, "hello there")
	assert.NotEmpty(t, resp.SessionID)

	other := turn(t, svc, "", 42, "hello there")
	assert.NotEqual(t, resp.SessionID, other.SessionID)
}
