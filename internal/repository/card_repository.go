package repository

import (
    "context"
    "database/sql"
    "errors"
    "fmt"

    "github.com/iliyamo/cinema-booking/internal/model"
)

// Opener turns a sealed card number back into digits.
type Opener interface {
    Open(sealed string) (string, error)
}

// CardRepo reads saved payment cards.  Cards are created by the profile
// service; checkout only resolves them.
type CardRepo struct {
    db    *sql.DB
    vault Opener
}

func NewCardRepo(db *sql.DB, vault Opener) *CardRepo { return &CardRepo{db: db, vault: vault} }

// GetForUser returns the card with the given ID if it belongs to the user.
// A card owned by someone else is reported as ErrCardNotFound so IDs do not
// leak across accounts.
func (r *CardRepo) GetForUser(ctx context.Context, userID, cardID uint64) (*model.PaymentCard, error) {
    const q = `SELECT id, user_id, card_type, card_holder_name, card_number_enc, expiration_date, processor_ref
               FROM payment_cards WHERE id = ? AND user_id = ?`
    var (
        c      model.PaymentCard
        sealed string
    )
    err := r.db.QueryRowContext(ctx, q, cardID, userID).Scan(
        &c.ID, &c.UserID, &c.CardType, &c.CardHolderName, &sealed, &c.ExpirationDate, &c.ProcessorRef,
    )
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrCardNotFound
        }
        return nil, err
    }
    if c.CardNumber, err = r.vault.Open(sealed); err != nil {
        return nil, fmt.Errorf("open card %d: %w", c.ID, err)
    }
    return &c, nil
}
