package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

// SeatStore claims single seats.  Claim must be one atomic write that fails
// with ErrSeatTaken when the seat is already recorded.
type SeatStore interface {
	Claim(ctx context.Context, q repository.DBTX, showID uint64, seatNumber string, bookingID uint64) error
	Occupied(ctx context.Context, showID uint64) ([]string, error)
}

// SeatAllocator hands out seats.  It keeps no state of its own: exclusivity
// comes from the unique key behind SeatStore.Claim, which holds across every
// API instance sharing the database.
type SeatAllocator struct {
	store SeatStore
}

func NewSeatAllocator(store SeatStore) *SeatAllocator {
	return &SeatAllocator{store: store}
}

// Allocate claims one seat for a booking.
func (a *SeatAllocator) Allocate(ctx context.Context, q repository.DBTX, showID uint64, seatNumber string, bookingID uint64) error {
	seatNumber = strings.TrimSpace(seatNumber)
	if seatNumber == "" {
		return validationf("seat number is required")
	}
	err := a.store.Claim(ctx, q, showID, seatNumber, bookingID)
	if errors.Is(err, ErrSeatTaken) {
		return &SeatTakenError{Seats: []Seat{{ShowID: showID, SeatNumber: seatNumber}}}
	}
	return err
}

const seatSavepoint = "seat_batch"

// AllocateAll claims every seat or none.  The batch runs under a savepoint
// of tx: every seat is attempted so the error can name all conflicts, then
// the savepoint is rolled back if any seat was taken.  Seats are claimed in
// sorted order so two overlapping batches lock rows in the same order.
func (a *SeatAllocator) AllocateAll(ctx context.Context, tx *sql.Tx, showID, bookingID uint64, seats []string) error {
	if len(seats) == 0 {
		return validationf("no seats requested for show %d", showID)
	}
	ordered := make([]string, 0, len(seats))
	dup := make(map[string]bool, len(seats))
	for _, s := range seats {
		s = strings.TrimSpace(s)
		if s == "" {
			return validationf("seat number is required")
		}
		if dup[s] {
			return validationf("seat %s requested twice for show %d", s, showID)
		}
		dup[s] = true
		ordered = append(ordered, s)
	}
	sort.Strings(ordered)

	if _, err := tx.ExecContext(ctx, "SAVEPOINT "+seatSavepoint); err != nil {
		return fmt.Errorf("seat savepoint: %w", err)
	}
	var taken []Seat
	for _, s := range ordered {
		err := a.store.Claim(ctx, tx, showID, s, bookingID)
		if errors.Is(err, ErrSeatTaken) {
			taken = append(taken, Seat{ShowID: showID, SeatNumber: s})
			continue
		}
		if err != nil {
			_, _ = tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+seatSavepoint)
			return err
		}
	}
	if len(taken) > 0 {
		if _, err := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+seatSavepoint); err != nil {
			return fmt.Errorf("seat savepoint rollback: %w", err)
		}
		return &SeatTakenError{Seats: taken}
	}
	if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+seatSavepoint); err != nil {
		return fmt.Errorf("seat savepoint release: %w", err)
	}
	return nil
}

// normalizeItems returns a copy of items with seat numbers trimmed.  Pricing,
// the duplicate check, the seat claim and the ticket row all see the same
// seat string.
func normalizeItems(items []model.CartItem) []model.CartItem {
	out := make([]model.CartItem, len(items))
	for i, it := range items {
		it.SeatNumber = strings.TrimSpace(it.SeatNumber)
		out[i] = it
	}
	return out
}

// Occupied lists the taken seats of a show for seat map display.
func (a *SeatAllocator) Occupied(ctx context.Context, showID uint64) ([]string, error) {
	return a.store.Occupied(ctx, showID)
}
