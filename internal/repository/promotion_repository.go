package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/iliyamo/cinema-booking/internal/model"
)

// PromotionRepo stores promotions and their redemptions.
type PromotionRepo struct {
    db *sql.DB
}

func NewPromotionRepo(db *sql.DB) *PromotionRepo { return &PromotionRepo{db: db} }

const promotionColumns = `id, title, description, discount_percentage, is_sent, send_time, created_at`

func scanPromotion(row interface{ Scan(...any) error }) (*model.Promotion, error) {
    var p model.Promotion
    if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.DiscountPercentage, &p.IsSent, &p.SendTime, &p.CreatedAt); err != nil {
        return nil, err
    }
    return &p, nil
}

// FindByCode looks a promotion up by the code users type (the description
// column).  ErrPromotionNotFound when no promotion has that code.
func (r *PromotionRepo) FindByCode(ctx context.Context, code string) (*model.Promotion, error) {
    q := `SELECT ` + promotionColumns + ` FROM promotions WHERE description = ?`
    p, err := scanPromotion(r.db.QueryRowContext(ctx, q, code))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrPromotionNotFound
    }
    return p, err
}

// HasRedeemed reports whether the user already consumed the code.  It is a
// read for display and early rejection only; Redeem is the real guard.
func (r *PromotionRepo) HasRedeemed(ctx context.Context, userID uint64, code string) (bool, error) {
    const q = `SELECT 1 FROM promotion_redemptions WHERE user_id = ? AND promo_code = ? LIMIT 1`
    var one int
    err := r.db.QueryRowContext(ctx, q, userID, code).Scan(&one)
    if errors.Is(err, sql.ErrNoRows) {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    return true, nil
}

// RedeemTx inserts the redemption row.  The (user_id, promo_code) primary
// key makes the insert itself the uniqueness check; a collision comes back
// as ErrDuplicateRedemption.
func (r *PromotionRepo) RedeemTx(ctx context.Context, q DBTX, userID uint64, code string, at time.Time) error {
    const ins = `INSERT INTO promotion_redemptions (user_id, promo_code, used_date) VALUES (?, ?, ?)`
    if _, err := q.ExecContext(ctx, ins, userID, code, at.Unix()); err != nil {
        if isDuplicateKey(err) {
            return ErrDuplicateRedemption
        }
        return err
    }
    return nil
}

// Create inserts a new promotion and fills in its generated ID.  A code
// that already exists yields ErrConflict.
func (r *PromotionRepo) Create(ctx context.Context, p *model.Promotion) error {
    if p.SendTime == "" {
        p.SendTime = model.DefaultSendTime
    }
    const q = `INSERT INTO promotions (title, description, discount_percentage, send_time) VALUES (?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, p.Title, p.Description, p.DiscountPercentage, p.SendTime)
    if err != nil {
        if isDuplicateKey(err) {
            return ErrConflict
        }
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    p.ID = uint64(id)
    p.IsSent = false
    p.CreatedAt = time.Now().UTC()
    return nil
}

// Delete removes an unsent promotion.  Once its mail blast went out a
// promotion is kept forever and ErrPromotionSent is returned.
func (r *PromotionRepo) Delete(ctx context.Context, id uint64) error {
    res, err := r.db.ExecContext(ctx, `DELETE FROM promotions WHERE id = ? AND is_sent = 0`, id)
    if err != nil {
        return err
    }
    if n, err := res.RowsAffected(); err != nil {
        return err
    } else if n == 1 {
        return nil
    }
    var sent bool
    err = r.db.QueryRowContext(ctx, `SELECT is_sent FROM promotions WHERE id = ?`, id).Scan(&sent)
    switch {
    case errors.Is(err, sql.ErrNoRows):
        return ErrPromotionNotFound
    case err != nil:
        return err
    case sent:
        return ErrPromotionSent
    }
    // deleted by someone else between the two statements
    return ErrPromotionNotFound
}

// List returns every promotion, newest first.
func (r *PromotionRepo) List(ctx context.Context) ([]model.Promotion, error) {
    return r.query(ctx, `SELECT `+promotionColumns+` FROM promotions ORDER BY id DESC`)
}

// ListDue returns unsent promotions whose send time (HH:MM:SS) is at or
// before clock.
func (r *PromotionRepo) ListDue(ctx context.Context, clock string) ([]model.Promotion, error) {
    return r.query(ctx, `SELECT `+promotionColumns+` FROM promotions WHERE is_sent = 0 AND send_time <= ? ORDER BY id`, clock)
}

func (r *PromotionRepo) query(ctx context.Context, q string, args ...any) ([]model.Promotion, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []model.Promotion{}
    for rows.Next() {
        p, err := scanPromotion(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *p)
    }
    return out, rows.Err()
}

// MarkSent flips is_sent.  It returns false when another worker already
// marked the promotion, so only one blast goes out.
func (r *PromotionRepo) MarkSent(ctx context.Context, id uint64) (bool, error) {
    res, err := r.db.ExecContext(ctx, `UPDATE promotions SET is_sent = 1 WHERE id = ? AND is_sent = 0`, id)
    if err != nil {
        return false, err
    }
    n, err := res.RowsAffected()
    return n == 1, err
}
