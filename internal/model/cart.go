package model

import "github.com/shopspring/decimal"

// CartItem is one desired ticket: a seat in a show at a ticket type.  Price
// is what the client believes the ticket costs and is checked against the
// server price list, never used on its own.
type CartItem struct {
    ShowID     uint64          `json:"show_id" validate:"required"`
    TicketType string          `json:"ticket_type" validate:"required,max=20"`
    Price      decimal.Decimal `json:"price"`
    SeatNumber string          `json:"seat_number" validate:"required,max=10"`
}

// PromotionRef names a promotion by its code.  The code column is called
// description in storage and in the public API.
type PromotionRef struct {
    Description string `json:"description" validate:"required,max=64"`
}

// Cart is the client-held proposal.  It is not stored between requests; the
// client sends it again at checkout.
type Cart struct {
    UserID    uint64        `json:"user_id"`
    Items     []CartItem    `json:"items" validate:"dive"`
    Promotion *PromotionRef `json:"promotion,omitempty"`
}

// PromotionCode returns the attached code or "" when none is attached.
func (c Cart) PromotionCode() string {
    if c.Promotion == nil {
        return ""
    }
    return c.Promotion.Description
}

// PricedCart is the server's view of a cart after every price was checked.
type PricedCart struct {
    Items      []CartItem
    Quantity   int
    Promotion  *Promotion
    Subtotal   decimal.Decimal
    Discount   decimal.Decimal
    SaleTax    decimal.Decimal
    TotalPrice decimal.Decimal
}
