package model

// PaymentCard is a card saved on a user's profile.  CardNumber is the
// decrypted number and only lives in memory during checkout; the table keeps
// it sealed.  ProcessorRef is the processor's handle for the card (a Stripe
// PaymentMethod id) and is what actually gets charged.
type PaymentCard struct {
    ID             uint64 // payment_cards.id
    UserID         uint64 // payment_cards.user_id
    CardType       string // payment_cards.card_type (Visa, MasterCard, Amex)
    CardHolderName string // payment_cards.card_holder_name
    CardNumber     string // decrypted payment_cards.card_number_enc
    ExpirationDate string // payment_cards.expiration_date, MM/YY
    ProcessorRef   string // payment_cards.processor_ref
}

// Last4 returns the final four digits of the card number.
func (c PaymentCard) Last4() string {
    if len(c.CardNumber) < 4 {
        return c.CardNumber
    }
    return c.CardNumber[len(c.CardNumber)-4:]
}
