package model

import "github.com/shopspring/decimal"

// TicketPrice is one row of the server price list (Adult, Child, Senior).
type TicketPrice struct {
    TicketType string          // ticket_type_prices.ticket_type
    Price      decimal.Decimal // ticket_type_prices.price
}
