// File: services/assistant/listing.go
package assistant

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"medichat/models"
)

// Appointment statuses as rendered in the history listing.
const (
	StatusUpcoming  = "UPCOMING"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
	StatusActive    = "ACTIVE" // held row whose date slot failed to parse
)

var statusEmojis = map[string]string{
	StatusUpcoming:  "🟢",
	StatusCompleted: "✅",
	StatusCancelled: "❌",
	StatusActive:    "🟢",
}

// listingEntry is one row of a user's appointment history with its stable
// letter reference. Letters are assigned over the FULL history sorted by
// date-time descending, never over a status-filtered view, so the mapping
// is identical between showing the list and resolving a cancellation letter.
type listingEntry struct {
	Row    models.SlotRow
	Letter rune
	Status string
	When   time.Time
}

// buildListing sorts the user's full history most-recent-first and assigns
// letters by position. The sort is stable so rows sharing a date-time keep
// the repository's arrival order and letters stay deterministic.
func buildListing(rows []models.SlotRow, userID int, now time.Time) []listingEntry {
	entries := make([]listingEntry, 0, len(rows))
	for _, row := range rows {
		when, err := row.ParseDateSlot()
		entries = append(entries, listingEntry{
			Row:    row,
			Status: rowStatus(row, userID, now, err == nil, when),
			When:   when,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].When.After(entries[j].When)
	})
	for i := range entries {
		entries[i].Letter = rune('a' + i)
	}
	return entries
}

func rowStatus(row models.SlotRow, userID int, now time.Time, parsed bool, when time.Time) string {
	if row.IsAvailable {
		return StatusCancelled
	}
	if row.PatientToAttend != nil && *row.PatientToAttend != userID {
		// Released by this user and since taken by another patient.
		return StatusCancelled
	}
	if !parsed {
		return StatusActive
	}
	if when.Before(now) {
		return StatusCompleted
	}
	return StatusUpcoming
}

// renderListing produces the letter-prefixed appointment history. The
// "Summary:" trailer and the per-row letter prefix are parsed by downstream
// consumers and must not change shape.
func renderListing(userID int, entries []listingEntry) string {
	if len(entries) == 0 {
		return fmt.Sprintf("No appointments found for user %d", userID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 Appointment History for User %d:\n\n", userID)

	var upcoming, completed, cancelled int
	for _, e := range entries {
		fmt.Fprintf(&b, "%c. %s Dr. %s\n", e.Letter, statusEmojis[e.Status], titleCase(e.Row.DoctorName))
		fmt.Fprintf(&b, "   📅 Date & Time: %s\n", friendlyDateTime(e.Row.DateSlot, e.When))
		fmt.Fprintf(&b, "   🏥 Specialization: %s\n", titleCase(e.Row.Specialization))
		fmt.Fprintf(&b, "   📊 Status: %s\n\n", e.Status)

		switch e.Status {
		case StatusUpcoming:
			upcoming++
		case StatusCompleted:
			completed++
		case StatusCancelled:
			cancelled++
		}
	}

	b.WriteString("📊 Summary:\n")
	fmt.Fprintf(&b, "   🟢 Upcoming: %d\n", upcoming)
	fmt.Fprintf(&b, "   ✅ Completed: %d\n", completed)
	fmt.Fprintf(&b, "   ❌ Cancelled: %d\n", cancelled)
	return b.String()
}

// resolveReference maps a letter to its listing entry. The index runs over
// the full listing; letters out of range or pointing at a non-upcoming row
// are rejected with a user-facing message.
func resolveReference(entries []listingEntry, letter string) (listingEntry, error) {
	if len(entries) == 0 {
		return listingEntry{}, NewNotFoundError("You have no appointments to cancel")
	}
	idx := int(letter[0] - 'a')
	if idx < 0 || idx >= len(entries) {
		return listingEntry{}, NewValidationError(fmt.Sprintf(
			"Invalid appointment letter. Please select between a and %c", rune('a'+len(entries)-1)))
	}
	entry := entries[idx]
	if entry.Status != StatusUpcoming {
		return listingEntry{}, NewConflictError(fmt.Sprintf(
			"Appointment '%c' is not upcoming; only upcoming appointments can be cancelled", entry.Letter))
	}
	return entry, nil
}

// friendlyDateTime renders "Monday, September 15, 2025 at 09:00 AM"; raw
// date slots that failed to parse are shown as-is.
func friendlyDateTime(raw string, when time.Time) string {
	if when.IsZero() {
		return raw
	}
	return when.Format("Monday, January 02, 2006 at 03:04 PM")
}

func titleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
