package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// Promotion is a discount code.  Description holds the code users type in;
// it is unique.  IsSent and SendTime schedule the promotional mail blast and
// have nothing to do with redeeming the code at checkout.
type Promotion struct {
    ID                 uint64          // promotions.id
    Title              string          // promotions.title
    Description        string          // promotions.description (the code)
    DiscountPercentage decimal.Decimal // promotions.discount_percentage, 0..100
    IsSent             bool            // promotions.is_sent
    SendTime           string          // promotions.send_time, HH:MM:SS
    CreatedAt          time.Time       // promotions.created_at
}

// DefaultSendTime is used when a promotion is created without a send time.
const DefaultSendTime = "10:00:00"

// Redemption records that a user consumed a code.  (UserID, PromoCode) is
// the primary key.
type Redemption struct {
    UserID    uint64 // promotion_redemptions.user_id
    PromoCode string // promotion_redemptions.promo_code
    UsedDate  int64  // promotion_redemptions.used_date, epoch seconds
}
