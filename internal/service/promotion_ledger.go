package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

// PromotionStore is the persistence the ledger needs.
type PromotionStore interface {
	FindByCode(ctx context.Context, code string) (*model.Promotion, error)
	HasRedeemed(ctx context.Context, userID uint64, code string) (bool, error)
	RedeemTx(ctx context.Context, q repository.DBTX, userID uint64, code string, at time.Time) error
}

// PromotionLedger validates codes and records who used them.  A code is
// redeemed when the booking that used it commits, in the same transaction,
// so an abandoned cart never burns the user's single use.
type PromotionLedger struct {
	store PromotionStore
	now   func() time.Time
}

func NewPromotionLedger(store PromotionStore) *PromotionLedger {
	return &PromotionLedger{store: store, now: time.Now}
}

// FindByCode returns the promotion or ErrPromotionNotFound.
func (l *PromotionLedger) FindByCode(ctx context.Context, code string) (*model.Promotion, error) {
	return l.store.FindByCode(ctx, strings.TrimSpace(code))
}

func (l *PromotionLedger) HasRedeemed(ctx context.Context, userID uint64, code string) (bool, error) {
	return l.store.HasRedeemed(ctx, userID, strings.TrimSpace(code))
}

// Redeem records the redemption through q, the checkout transaction or the
// pool.  The insert is the uniqueness check: of two concurrent redemptions
// exactly one succeeds and the other gets ErrDuplicateRedemption.
func (l *PromotionLedger) Redeem(ctx context.Context, q repository.DBTX, userID uint64, code string) error {
	return l.store.RedeemTx(ctx, q, userID, strings.TrimSpace(code), l.now())
}

// Preview answers the apply-promotion request: the code must exist and the
// user must not have used it yet.  Nothing is written.
func (l *PromotionLedger) Preview(ctx context.Context, userID uint64, code string) (*model.Promotion, error) {
	code = strings.TrimSpace(code)
	if userID == 0 || code == "" {
		return nil, validationf("user ID and promotion code are required")
	}
	promo, err := l.store.FindByCode(ctx, code)
	if errors.Is(err, ErrPromotionNotFound) {
		return nil, ErrInvalidPromotion
	}
	if err != nil {
		return nil, err
	}
	used, err := l.store.HasRedeemed(ctx, userID, code)
	if err != nil {
		return nil, err
	}
	if used {
		return nil, ErrDuplicateRedemption
	}
	return promo, nil
}

// DiscountAmount is subtotal * pct / 100 rounded to cents.
func DiscountAmount(subtotal, pct decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(pct).Div(hundred).Round(centPrecision)
}
