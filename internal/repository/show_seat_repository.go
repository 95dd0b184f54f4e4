package repository // repository for seat occupancy per show

import (
    "context"
    "database/sql"
)

// ShowSeatRepo records which seats of a show are taken.  A row exists only
// for claimed seats; the seat map itself is implicit.  The unique key on
// (show_id, seat_number) is what keeps two bookings off the same seat.
type ShowSeatRepo struct {
    db *sql.DB
}

// NewShowSeatRepo constructs a ShowSeatRepo given a DB handle.
func NewShowSeatRepo(db *sql.DB) *ShowSeatRepo {
    return &ShowSeatRepo{db: db}
}

// Claim inserts the occupancy row for one seat.  There is no prior read:
// the insert either wins the unique key or fails with ErrSeatTaken.
// Inside a transaction a failed insert only undoes itself, so the caller
// may keep claiming other seats and decide afterwards.
func (r *ShowSeatRepo) Claim(ctx context.Context, q DBTX, showID uint64, seatNumber string, bookingID uint64) error {
    const ins = `INSERT INTO show_seats (show_id, seat_number, booking_id) VALUES (?, ?, ?)`
    if _, err := q.ExecContext(ctx, ins, showID, seatNumber, bookingID); err != nil {
        if isDuplicateKey(err) {
            return ErrSeatTaken
        }
        return err
    }
    return nil
}

// Occupied lists the taken seat numbers of a show.  It is advisory (seat map
// display); allocation never relies on it.
func (r *ShowSeatRepo) Occupied(ctx context.Context, showID uint64) ([]string, error) {
    rows, err := r.db.QueryContext(ctx, `SELECT seat_number FROM show_seats WHERE show_id = ? ORDER BY seat_number`, showID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    seats := []string{}
    for rows.Next() {
        var s string
        if err := rows.Scan(&s); err != nil {
            return nil, err
        }
        seats = append(seats, s)
    }
    return seats, rows.Err()
}
