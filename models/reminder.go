package models

// ReminderPayload is the asynq task payload for an appointment reminder.
type ReminderPayload struct {
	UserID     int    `json:"user_id"`
	DoctorName string `json:"doctor_name"`
	DateSlot   string `json:"date_slot"` // DD-MM-YYYY HH:MM
	Title      string `json:"title"`
	Body       string `json:"body"`
}
