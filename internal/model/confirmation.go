package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// Confirmation is everything a booking confirmation mail needs, gathered at
// checkout so the sender never has to query the database.
type Confirmation struct {
    UserID        uint64               `json:"user_id"`
    Email         string               `json:"email"`
    FirstName     string               `json:"first_name"`
    BookingID     uint64               `json:"booking_id"`
    BookingDate   int64                `json:"booking_date"`
    TotalAmount   decimal.Decimal      `json:"total_amount"`
    PaymentStatus string               `json:"payment_status"`
    MaskedCard    string               `json:"masked_card"` // "**** **** **** 4242"
    Tickets       []ConfirmationTicket `json:"tickets"`
}

type ConfirmationTicket struct {
    ShowID     uint64          `json:"show_id"`
    MovieTitle string          `json:"movie_title"`
    ShowStart  time.Time       `json:"show_start"`
    TicketType string          `json:"ticket_type"`
    Price      decimal.Decimal `json:"price"`
    SeatNumber string          `json:"seat_number"`
}
