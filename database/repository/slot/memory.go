package slotRepo

import (
	"context"
	"strings"
	"sync"

	"medichat/models"
)

// MemorySlotRepo is a mutex-guarded in-memory slot repository for tests and
// single-node development. The store-wide lock makes Reserve's check and
// write atomic relative to other writers.
type MemorySlotRepo struct {
	mu   sync.Mutex
	rows []models.SlotRow
}

// NewMemorySlotRepo returns an empty in-memory repository. Seed rows with
// AddRow before use.
func NewMemorySlotRepo() *MemorySlotRepo {
	return &MemorySlotRepo{}
}

// AddRow appends a row to the ledger in arrival order.
func (repo *MemorySlotRepo) AddRow(row models.SlotRow) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.rows = append(repo.rows, row)
}

// Row returns a copy of the row at the given arrival index.
func (repo *MemorySlotRepo) Row(i int) models.SlotRow {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return repo.rows[i]
}

func (repo *MemorySlotRepo) QueryAvailable(ctx context.Context, doctorName, date string) ([]string, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var times []string
	for _, row := range repo.rows {
		if row.DoctorName == doctorName && row.IsAvailable && strings.HasPrefix(row.DateSlot, date+" ") {
			times = append(times, row.Time())
		}
	}
	return times, nil
}

func (repo *MemorySlotRepo) Reserve(ctx context.Context, doctorName, dateSlot string, userID int) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for i := range repo.rows {
		row := &repo.rows[i]
		if row.DoctorName == doctorName && row.DateSlot == dateSlot && row.IsAvailable {
			uid := userID
			row.IsAvailable = false
			row.PatientToAttend = &uid
			if !containsInt(row.PatientHistory, userID) {
				row.PatientHistory = append(row.PatientHistory, userID)
			}
			return nil
		}
	}
	return ErrNoMatchingSlot
}

func (repo *MemorySlotRepo) Release(ctx context.Context, doctorName, dateSlot string, userID int) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for i := range repo.rows {
		row := &repo.rows[i]
		if row.DoctorName == doctorName && row.DateSlot == dateSlot && row.HeldBy(userID) {
			row.IsAvailable = true
			row.PatientToAttend = nil
			return nil
		}
	}
	return ErrNoMatchingSlot
}

func (repo *MemorySlotRepo) ListForUser(ctx context.Context, userID int) ([]models.SlotRow, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var rows []models.SlotRow
	for _, row := range repo.rows {
		if (row.PatientToAttend != nil && *row.PatientToAttend == userID) || containsInt(row.PatientHistory, userID) {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
