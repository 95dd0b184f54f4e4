package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// Money rules.  Discount and tax are rounded to cents half away from zero
// as soon as they are computed; totals are sums of cent values.
var (
	SalesTaxRate  = decimal.RequireFromString("0.07")
	OnlineFee     = decimal.RequireFromString("3.00")
	hundred       = decimal.NewFromInt(100)
	centPrecision = int32(2)
)

// PriceOracle is the authoritative price list.  Unknown ticket types
// yield ErrPriceNotFound.
type PriceOracle interface {
	PriceFor(ctx context.Context, ticketType string) (decimal.Decimal, error)
}

// PromotionFinder resolves promotion codes, ErrPromotionNotFound when
// the code does not exist.
type PromotionFinder interface {
	FindByCode(ctx context.Context, code string) (*model.Promotion, error)
}

// CartPricer prices carts against server prices.  The cart preview
// endpoint and checkout both go through Calculate, so what the buyer saw is
// recomputed, never trusted.
type CartPricer struct {
	prices PriceOracle
	promos PromotionFinder
}

func NewCartPricer(prices PriceOracle, promos PromotionFinder) *CartPricer {
	return &CartPricer{prices: prices, promos: promos}
}

// Calculate checks every item price and returns the totals.  It only reads.
func (p *CartPricer) Calculate(ctx context.Context, cart model.Cart) (*model.PricedCart, error) {
	if len(cart.Items) == 0 {
		return &model.PricedCart{
			Items:      []model.CartItem{},
			Subtotal:   decimal.Zero,
			Discount:   decimal.Zero,
			SaleTax:    decimal.Zero,
			TotalPrice: decimal.Zero,
		}, nil
	}

	cart.Items = normalizeItems(cart.Items)

	seen := make(map[string]decimal.Decimal, 3)
	subtotal := decimal.Zero
	for _, item := range cart.Items {
		price, ok := seen[item.TicketType]
		if !ok {
			var err error
			price, err = p.prices.PriceFor(ctx, item.TicketType)
			if errors.Is(err, ErrPriceNotFound) {
				return nil, &PricingError{Err: ErrPriceNotFound, ShowID: item.ShowID, TicketType: item.TicketType}
			}
			if err != nil {
				return nil, err
			}
			seen[item.TicketType] = price
		}
		if !item.Price.Equal(price) {
			return nil, &PricingError{Err: ErrPriceMismatch, ShowID: item.ShowID, TicketType: item.TicketType}
		}
		subtotal = subtotal.Add(price)
	}

	out := &model.PricedCart{
		Items:    cart.Items,
		Quantity: len(cart.Items),
		Subtotal: subtotal,
		Discount: decimal.Zero,
	}

	if code := strings.TrimSpace(cart.PromotionCode()); code != "" {
		promo, err := p.promos.FindByCode(ctx, code)
		if errors.Is(err, ErrPromotionNotFound) {
			return nil, ErrInvalidPromotion
		}
		if err != nil {
			return nil, err
		}
		out.Promotion = promo
		out.Discount = DiscountAmount(subtotal, promo.DiscountPercentage)
	}

	final := subtotal.Sub(out.Discount)
	out.SaleTax = final.Mul(SalesTaxRate).Round(centPrecision)
	out.TotalPrice = final.Add(out.SaleTax).Add(OnlineFee)
	return out, nil
}
