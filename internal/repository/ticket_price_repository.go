package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/shopspring/decimal"

    "github.com/iliyamo/cinema-booking/internal/model"
)

// TicketPriceRepo holds the authoritative price list.  Prices are only
// changed by administrators through SetPrice; the booking core only reads.
type TicketPriceRepo struct {
    db *sql.DB
}

func NewTicketPriceRepo(db *sql.DB) *TicketPriceRepo { return &TicketPriceRepo{db: db} }

// PriceFor returns the current price of a ticket type or ErrPriceNotFound.
func (r *TicketPriceRepo) PriceFor(ctx context.Context, ticketType string) (decimal.Decimal, error) {
    const q = `SELECT price FROM ticket_type_prices WHERE ticket_type = ?`
    var price decimal.Decimal
    if err := r.db.QueryRowContext(ctx, q, ticketType).Scan(&price); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return decimal.Zero, ErrPriceNotFound
        }
        return decimal.Zero, err
    }
    return price, nil
}

// List returns the whole price list ordered by ticket type.
func (r *TicketPriceRepo) List(ctx context.Context) ([]model.TicketPrice, error) {
    rows, err := r.db.QueryContext(ctx, `SELECT ticket_type, price FROM ticket_type_prices ORDER BY ticket_type`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.TicketPrice
    for rows.Next() {
        var tp model.TicketPrice
        if err := rows.Scan(&tp.TicketType, &tp.Price); err != nil {
            return nil, err
        }
        out = append(out, tp)
    }
    return out, rows.Err()
}

// SetPrice replaces the price of an existing ticket type.  Unknown types
// return ErrPriceNotFound; new types are never created here.
func (r *TicketPriceRepo) SetPrice(ctx context.Context, ticketType string, price decimal.Decimal) error {
    res, err := r.db.ExecContext(ctx, `UPDATE ticket_type_prices SET price = ? WHERE ticket_type = ?`, price, ticketType)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n > 0 {
        return nil
    }
    // MySQL reports 0 affected rows when the price is unchanged
    var one int
    err = r.db.QueryRowContext(ctx, `SELECT 1 FROM ticket_type_prices WHERE ticket_type = ?`, ticketType).Scan(&one)
    if errors.Is(err, sql.ErrNoRows) {
        return ErrPriceNotFound
    }
    return err
}
