package slotRepo

import (
	"context"
	"errors"

	"medichat/models"
)

// ErrNoMatchingSlot is returned by Reserve when no free row matches the
// requested doctor/date-time, and by Release when the user holds no matching
// row. For Reserve this covers the lost-race case: the row existed when the
// confirmation prompt was issued but another booking took it first.
var ErrNoMatchingSlot = errors.New("no matching slot row")

// SlotRepository is the boundary contract with the appointment ledger.
// Implementations must make Reserve's availability check and write atomic
// relative to other writers on the same row.
type SlotRepository interface {
	// QueryAvailable returns the clock times of all free rows for the
	// doctor on the given DD-MM-YYYY date, in stable arrival order.
	QueryAvailable(ctx context.Context, doctorName, date string) ([]string, error)

	// Reserve flips a free row to held for the given patient. Returns
	// ErrNoMatchingSlot if the row is missing or no longer free.
	Reserve(ctx context.Context, doctorName, dateSlot string, userID int) error

	// Release flips a row held by the given patient back to free, keeping
	// the patient in the row's history. Returns ErrNoMatchingSlot if the
	// user holds no such row.
	Release(ctx context.Context, doctorName, dateSlot string, userID int) error

	// ListForUser returns every row the user currently holds or has ever
	// held, in stable arrival order.
	ListForUser(ctx context.Context, userID int) ([]models.SlotRow, error)
}
