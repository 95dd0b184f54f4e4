package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

func quietLogger() *log.Logger {
	l := log.New("test")
	l.SetOutput(io.Discard)
	return l
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// priceList is an in-memory PriceOracle that counts lookups.
type priceList struct {
	mu      sync.Mutex
	prices  map[string]decimal.Decimal
	lookups int
}

func defaultPrices() *priceList {
	return &priceList{prices: map[string]decimal.Decimal{
		"Adult":  dec("12.00"),
		"Child":  dec("8.00"),
		"Senior": dec("9.00"),
	}}
}

func (p *priceList) PriceFor(_ context.Context, ticketType string) (decimal.Decimal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lookups++
	price, ok := p.prices[ticketType]
	if !ok {
		return decimal.Zero, repository.ErrPriceNotFound
	}
	return price, nil
}

// promoBook is an in-memory PromotionStore.  Its redemption set behaves
// like the composite primary key: inserts are atomic under the mutex.
type promoBook struct {
	mu        sync.Mutex
	promos    map[string]model.Promotion
	redeemed  map[string]bool
	redeemErr error
}

func newPromoBook(promos ...model.Promotion) *promoBook {
	b := &promoBook{promos: map[string]model.Promotion{}, redeemed: map[string]bool{}}
	for _, p := range promos {
		b.promos[p.Description] = p
	}
	return b
}

func save10() model.Promotion {
	return model.Promotion{ID: 1, Title: "Ten off", Description: "SAVE10", DiscountPercentage: dec("10")}
}

func redemptionKey(userID uint64, code string) string {
	return fmt.Sprintf("%d|%s", userID, code)
}

func (b *promoBook) FindByCode(_ context.Context, code string) (*model.Promotion, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.promos[code]
	if !ok {
		return nil, repository.ErrPromotionNotFound
	}
	return &p, nil
}

func (b *promoBook) HasRedeemed(_ context.Context, userID uint64, code string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.redeemed[redemptionKey(userID, code)], nil
}

func (b *promoBook) RedeemTx(_ context.Context, _ repository.DBTX, userID uint64, code string, _ time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.redeemErr != nil {
		return b.redeemErr
	}
	k := redemptionKey(userID, code)
	if b.redeemed[k] {
		return repository.ErrDuplicateRedemption
	}
	b.redeemed[k] = true
	return nil
}

// seatTable mimics the unique key on (show_id, seat_number).
type seatTable struct {
	mu    sync.Mutex
	rows  map[Seat]uint64
	delay time.Duration
}

func newSeatTable() *seatTable { return &seatTable{rows: map[Seat]uint64{}} }

func (s *seatTable) Claim(_ context.Context, _ repository.DBTX, showID uint64, seat string, bookingID uint64) error {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	k := Seat{ShowID: showID, SeatNumber: seat}
	if _, ok := s.rows[k]; ok {
		return repository.ErrSeatTaken
	}
	s.rows[k] = bookingID
	return nil
}

func (s *seatTable) Occupied(_ context.Context, showID uint64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for k := range s.rows {
		if k.ShowID == showID {
			out = append(out, k.SeatNumber)
		}
	}
	return out, nil
}

type cardBook map[uint64]model.PaymentCard

func (c cardBook) GetForUser(_ context.Context, userID, cardID uint64) (*model.PaymentCard, error) {
	card, ok := c[cardID]
	if !ok || card.UserID != userID {
		return nil, repository.ErrCardNotFound
	}
	return &card, nil
}

type showBook map[uint64]model.Show

func (s showBook) GetByID(_ context.Context, id uint64) (*model.Show, error) {
	show, ok := s[id]
	if !ok {
		return nil, repository.ErrShowNotFound
	}
	return &show, nil
}

type userBook map[uint64]model.User

func (u userBook) GetByID(_ context.Context, id uint64) (*model.User, error) {
	user, ok := u[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &user, nil
}

// fakeProcessor records captures and voids.
type fakeProcessor struct {
	mu         sync.Mutex
	captureErr error
	captured   []decimal.Decimal
	voided     []string
	voidErr    error
}

func (f *fakeProcessor) Validate(model.PaymentCard) bool { return true }

func (f *fakeProcessor) Capture(_ context.Context, _ model.PaymentCard, amount decimal.Decimal) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.captureErr != nil {
		return "", f.captureErr
	}
	f.captured = append(f.captured, amount)
	return "ch_test", nil
}

func (f *fakeProcessor) Void(_ context.Context, chargeID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.voided = append(f.voided, chargeID)
	return f.voidErr
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []model.Confirmation
	err  error
}

func (f *fakeNotifier) SendBookingConfirmation(_ context.Context, c model.Confirmation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, c)
	return nil
}

var errBoom = errors.New("boom")
