package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/iliyamo/cinema-booking/internal/model"
)

// BookingRepo persists bookings and their tickets.  Writes only happen
// inside the checkout transaction, so the write methods take a DBTX.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// CreateTx inserts the booking header and sets b.ID.
func (r *BookingRepo) CreateTx(ctx context.Context, q DBTX, b *model.Booking) error {
    const ins = `INSERT INTO bookings (user_id, card_four, booking_date, total_amount, payment_status, charge_id)
                 VALUES (?, ?, ?, ?, ?, ?)`
    res, err := q.ExecContext(ctx, ins, b.UserID, b.CardFour, b.BookingDate, b.TotalAmount, b.PaymentStatus, b.ChargeID)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    b.ID = uint64(id)
    return nil
}

// CreateTicketsTx inserts all tickets of a booking in one statement and sets
// their ID and BookingID.  A single multi-row insert gets consecutive
// auto-increment values starting at LastInsertId.  Passing an empty slice has
// no effect.
func (r *BookingRepo) CreateTicketsTx(ctx context.Context, q DBTX, bookingID uint64, tickets []model.Ticket) error {
    if len(tickets) == 0 {
        return nil
    }
    var sb strings.Builder
    sb.WriteString(`INSERT INTO tickets (booking_id, show_id, ticket_type, price, seat_number) VALUES `)
    args := make([]any, 0, len(tickets)*5)
    for i, t := range tickets {
        if i > 0 {
            sb.WriteString(", ")
        }
        sb.WriteString(placeholders(5))
        args = append(args, bookingID, t.ShowID, t.TicketType, t.Price, t.SeatNumber)
    }
    res, err := q.ExecContext(ctx, sb.String(), args...)
    if err != nil {
        return err
    }
    first, err := res.LastInsertId()
    if err != nil {
        return err
    }
    for i := range tickets {
        tickets[i].ID = uint64(first) + uint64(i)
        tickets[i].BookingID = bookingID
    }
    return nil
}

// ListByUser returns the user's bookings, newest first, each with its
// tickets.  Tickets carry the movie title and show start for display.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
    const q = `SELECT id, user_id, card_four, booking_date, total_amount, payment_status, charge_id
               FROM bookings WHERE user_id = ? ORDER BY booking_date DESC, id DESC`
    rows, err := r.db.QueryContext(ctx, q, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    bookings := make([]model.Booking, 0)
    index := make(map[uint64]int)
    for rows.Next() {
        var b model.Booking
        if err := rows.Scan(&b.ID, &b.UserID, &b.CardFour, &b.BookingDate, &b.TotalAmount, &b.PaymentStatus, &b.ChargeID); err != nil {
            return nil, err
        }
        b.Tickets = []model.Ticket{}
        index[b.ID] = len(bookings)
        bookings = append(bookings, b)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    if len(bookings) == 0 {
        return bookings, nil
    }

    // one query for the tickets of every booking
    ids := make([]any, 0, len(bookings))
    for _, b := range bookings {
        ids = append(ids, b.ID)
    }
    tq := `SELECT t.id, t.booking_id, t.show_id, t.ticket_type, t.price, t.seat_number,
                  COALESCE(m.title, ''), s.start_time
           FROM tickets t
           JOIN shows s ON s.id = t.show_id
           LEFT JOIN movies m ON m.id = s.movie_id
           WHERE t.booking_id IN ` + placeholders(len(ids)) + `
           ORDER BY t.booking_id, t.id`
    trows, err := r.db.QueryContext(ctx, tq, ids...)
    if err != nil {
        return nil, err
    }
    defer trows.Close()
    for trows.Next() {
        var t model.Ticket
        if err := trows.Scan(&t.ID, &t.BookingID, &t.ShowID, &t.TicketType, &t.Price, &t.SeatNumber, &t.MovieTitle, &t.ShowStart); err != nil {
            return nil, err
        }
        if i, ok := index[t.BookingID]; ok {
            bookings[i].Tickets = append(bookings[i].Tickets, t)
        }
    }
    return bookings, trows.Err()
}
