package models

import (
	"strings"
	"time"
)

// DateSlotLayout is the canonical "DD-MM-YYYY HH:MM" format used across the
// availability collection and all user-facing dates.
const DateSlotLayout = "02-01-2006 15:04"

// DateLayout is the calendar-day half of DateSlotLayout.
const DateLayout = "02-01-2006"

// SlotRow is a single bookable doctor/date/time unit. A row is either free
// (IsAvailable true, PatientToAttend nil) or held (IsAvailable false,
// PatientToAttend set). Rows are never deleted; releasing a held row flips
// it back to free and records the holder in PatientHistory so the row stays
// visible in that patient's appointment history.
type SlotRow struct {
	DoctorName      string `bson:"doctor_name" json:"doctor_name"`
	DateSlot        string `bson:"date_slot" json:"date_slot"` // DD-MM-YYYY HH:MM
	Specialization  string `bson:"specialization" json:"specialization"`
	IsAvailable     bool   `bson:"is_available" json:"is_available"`
	PatientToAttend *int   `bson:"patient_to_attend,omitempty" json:"patient_to_attend,omitempty"`
	PatientHistory  []int  `bson:"patient_history,omitempty" json:"patient_history,omitempty"`
}

// Date returns the calendar-day half of the date slot.
func (s SlotRow) Date() string {
	parts := strings.SplitN(s.DateSlot, " ", 2)
	return parts[0]
}

// Time returns the clock-time half of the date slot.
func (s SlotRow) Time() string {
	parts := strings.SplitN(s.DateSlot, " ", 2)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// ParseDateSlot parses the row's date slot into a time.Time.
func (s SlotRow) ParseDateSlot() (time.Time, error) {
	return time.Parse(DateSlotLayout, s.DateSlot)
}

// HeldBy reports whether the row is currently held by the given patient.
func (s SlotRow) HeldBy(userID int) bool {
	return !s.IsAvailable && s.PatientToAttend != nil && *s.PatientToAttend == userID
}
