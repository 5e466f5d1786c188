package models

// PendingAction tags the mutating operation staged in a session context,
// awaiting user confirmation before it is committed to the slot store.
type PendingAction string

const (
	PendingNone   PendingAction = ""
	PendingBook   PendingAction = "book"
	PendingCancel PendingAction = "cancel"
)

// SessionContext is the per-session scratch state for a single in-flight
// operation. Fields are overwritten as the user supplies more detail and the
// whole context is cleared on completion or explicit decline. PendingAction
// is non-empty exactly when a confirmation is outstanding.
type SessionContext struct {
	SessionID      string        `json:"session_id"`
	UserID         int           `json:"user_id"`
	PendingAction  PendingAction `json:"pending_action,omitempty"`
	DoctorName     string        `json:"doctor_name,omitempty"` // normalized lower-case
	Date           string        `json:"date,omitempty"`        // DD-MM-YYYY
	Time           string        `json:"time,omitempty"`        // HH:MM
	AppointmentRef string        `json:"appointment_ref,omitempty"`
}

// DateSlot joins the date and time fields into the canonical slot key.
func (c SessionContext) DateSlot() string {
	if c.Time == "" {
		return c.Date
	}
	return c.Date + " " + c.Time
}
