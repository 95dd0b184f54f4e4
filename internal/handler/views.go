package handler

import (
    "time"

    "github.com/shopspring/decimal"

    "github.com/iliyamo/cinema-booking/internal/model"
)

// Money is always rendered with two decimals, as a JSON string.
func money(d decimal.Decimal) string { return d.StringFixed(2) }

type cartItemView struct {
    ShowID     uint64 `json:"show_id"`
    TicketType string `json:"ticket_type"`
    Price      string `json:"price"`
    SeatNumber string `json:"seat_number"`
}

type promotionView struct {
    Description        string `json:"description"`
    DiscountPercentage string `json:"discount_percentage"`
}

type pricedCartView struct {
    Items      []cartItemView `json:"items"`
    Quantity   int            `json:"quantity"`
    Promotion  *promotionView `json:"promotion"`
    Subtotal   string         `json:"subtotal"`
    Discount   string         `json:"discount"`
    SaleTax    string         `json:"sale_tax"`
    OnlineFee  string         `json:"online_fee"`
    TotalPrice string         `json:"total_price"`
}

func newPricedCartView(p *model.PricedCart, fee decimal.Decimal) pricedCartView {
    v := pricedCartView{
        Items:      make([]cartItemView, len(p.Items)),
        Quantity:   p.Quantity,
        Subtotal:   money(p.Subtotal),
        Discount:   money(p.Discount),
        SaleTax:    money(p.SaleTax),
        OnlineFee:  money(decimal.Zero),
        TotalPrice: money(p.TotalPrice),
    }
    for i, it := range p.Items {
        v.Items[i] = cartItemView{ShowID: it.ShowID, TicketType: it.TicketType, Price: money(it.Price), SeatNumber: it.SeatNumber}
    }
    if p.Quantity > 0 {
        v.OnlineFee = money(fee)
    }
    if p.Promotion != nil {
        pv := newPromotionView(p.Promotion)
        v.Promotion = &pv
    }
    return v
}

func newPromotionView(p *model.Promotion) promotionView {
    return promotionView{Description: p.Description, DiscountPercentage: p.DiscountPercentage.String()}
}

type ticketView struct {
    TicketID   uint64     `json:"ticket_id"`
    ShowID     uint64     `json:"show_id"`
    TicketType string     `json:"ticket_type"`
    Price      string     `json:"price"`
    SeatNumber string     `json:"seat_number"`
    MovieTitle string     `json:"movie_title,omitempty"`
    ShowStart  *time.Time `json:"show_start,omitempty"`
}

type bookingView struct {
    BookingID     uint64       `json:"booking_id"`
    BookingDate   int64        `json:"booking_date"`
    CardFour      string       `json:"card_four"`
    TotalAmount   string       `json:"total_amount"`
    PaymentStatus string       `json:"payment_status"`
    Tickets       []ticketView `json:"tickets"`
}

func newBookingView(b *model.Booking) bookingView {
    v := bookingView{
        BookingID:     b.ID,
        BookingDate:   b.BookingDate,
        CardFour:      b.CardFour,
        TotalAmount:   money(b.TotalAmount),
        PaymentStatus: b.PaymentStatus,
        Tickets:       make([]ticketView, len(b.Tickets)),
    }
    for i, t := range b.Tickets {
        tv := ticketView{
            TicketID:   t.ID,
            ShowID:     t.ShowID,
            TicketType: t.TicketType,
            Price:      money(t.Price),
            SeatNumber: t.SeatNumber,
            MovieTitle: t.MovieTitle,
        }
        if !t.ShowStart.IsZero() {
            start := t.ShowStart
            tv.ShowStart = &start
        }
        v.Tickets[i] = tv
    }
    return v
}
