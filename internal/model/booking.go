package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// Payment statuses stored on bookings.  Only successful checkouts create a
// booking, so Paid is the only value written today.
const (
    PaymentPaid = "Paid"
)

// Booking is the durable record of a completed purchase.  It is written once
// by checkout and never updated.
//
// Fields:
//  CardFour   : masked card descriptor, e.g. "Visa****4242".
//  BookingDate: creation time in epoch seconds.
//  ChargeID   : processor reference of the captured payment.
type Booking struct {
    ID            uint64          // bookings.id
    UserID        uint64          // bookings.user_id
    CardFour      string          // bookings.card_four
    BookingDate   int64           // bookings.booking_date
    TotalAmount   decimal.Decimal // bookings.total_amount
    PaymentStatus string          // bookings.payment_status
    ChargeID      string          // bookings.charge_id
    Tickets       []Ticket
}

// Ticket is one line of a booking.  A ticket for (ShowID, SeatNumber) is
// what makes the seat occupied.
type Ticket struct {
    ID         uint64          // tickets.id
    BookingID  uint64          // tickets.booking_id
    ShowID     uint64          // tickets.show_id
    TicketType string          // tickets.ticket_type
    Price      decimal.Decimal // tickets.price
    SeatNumber string          // tickets.seat_number

    // filled by history reads only
    MovieTitle string
    ShowStart  time.Time
}
