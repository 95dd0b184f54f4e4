package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/payment"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

// State is where a checkout request is in its lifecycle.
type State string

const (
	StatePriced           State = "PRICED"
	StatePaymentCaptured  State = "PAYMENT_CAPTURED"
	StateSeatsAllocated   State = "SEATS_ALLOCATED"
	StatePersisted        State = "PERSISTED"
	StateNotified         State = "NOTIFIED"
	StateFailed           State = "FAILED"
	StateFailedRolledBack State = "FAILED_ROLLED_BACK"
)

type CardResolver interface {
	GetForUser(ctx context.Context, userID, cardID uint64) (*model.PaymentCard, error)
}

type ShowReader interface {
	GetByID(ctx context.Context, id uint64) (*model.Show, error)
}

type UserReader interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

type BookingStore interface {
	CreateTx(ctx context.Context, q repository.DBTX, b *model.Booking) error
	CreateTicketsTx(ctx context.Context, q repository.DBTX, bookingID uint64, tickets []model.Ticket) error
	ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error)
}

// CheckoutRequest is a cart submitted for purchase with the saved card to
// charge.  UserID comes from the authenticated caller.
type CheckoutRequest struct {
	UserID uint64
	Cart   model.Cart
	CardID uint64
}

// BookingDeps lists the collaborators of a BookingCoordinator.  Notifier
// may be nil, in which case confirmations are only logged.
type BookingDeps struct {
	DB        *sql.DB
	Pricer    *CartPricer
	Ledger    *PromotionLedger
	Seats     *SeatAllocator
	Cards     CardResolver
	Shows     ShowReader
	Users     UserReader
	Bookings  BookingStore
	Processor payment.Processor
	Notifier  Notifier
	Logger    *log.Logger
}

// BookingCoordinator runs checkout: price, capture payment, claim seats and
// persist in one transaction, then dispatch the confirmation.  Payment is
// captured before the seats are claimed, so any failure after capture voids
// the charge.
type BookingCoordinator struct {
	BookingDeps
	now           func() time.Time
	voidTimeout   time.Duration
	notifyTimeout time.Duration
}

func NewBookingCoordinator(d BookingDeps) *BookingCoordinator {
	if d.DB == nil || d.Pricer == nil || d.Ledger == nil || d.Seats == nil || d.Cards == nil ||
		d.Shows == nil || d.Users == nil || d.Bookings == nil || d.Processor == nil || d.Logger == nil {
		panic("service: NewBookingCoordinator requires all dependencies")
	}
	if d.Notifier == nil {
		d.Notifier = NewLogNotifier(d.Logger)
	}
	return &BookingCoordinator{
		BookingDeps:   d,
		now:           time.Now,
		voidTimeout:   15 * time.Second,
		notifyTimeout: 5 * time.Second,
	}
}

// checkout follows one request through the state machine.
type checkout struct {
	userID uint64
	state  State
	logger *log.Logger
}

func (c *checkout) advance(s State) {
	c.logger.Debugj(log.JSON{"msg": "checkout state", "user_id": c.userID, "from": c.state, "to": s})
	c.state = s
}

// Checkout turns a cart into a booking.  Any error before payment capture
// leaves nothing behind.  After capture, failures roll the transaction back
// and void the charge, so no booking, ticket or seat row survives.
func (bc *BookingCoordinator) Checkout(ctx context.Context, req CheckoutRequest) (*model.Booking, error) {
	req.Cart.Items = normalizeItems(req.Cart.Items)
	if err := validateCheckout(req); err != nil {
		return nil, err
	}
	co := &checkout{userID: req.UserID, logger: bc.Logger}

	priced, err := bc.Pricer.Calculate(ctx, req.Cart)
	if err != nil {
		co.advance(StateFailed)
		return nil, err
	}
	co.advance(StatePriced)

	shows, err := bc.loadShows(ctx, priced.Items)
	if err != nil {
		co.advance(StateFailed)
		return nil, err
	}
	if priced.Promotion != nil {
		used, err := bc.Ledger.HasRedeemed(ctx, req.UserID, priced.Promotion.Description)
		if err != nil {
			co.advance(StateFailed)
			return nil, err
		}
		if used {
			co.advance(StateFailed)
			return nil, ErrDuplicateRedemption
		}
	}
	card, err := bc.Cards.GetForUser(ctx, req.UserID, req.CardID)
	if err != nil {
		co.advance(StateFailed)
		return nil, err
	}

	chargeID, err := bc.Processor.Capture(ctx, *card, priced.TotalPrice)
	if err != nil {
		co.advance(StateFailed)
		return nil, err
	}
	co.advance(StatePaymentCaptured)

	booking := &model.Booking{
		UserID:        req.UserID,
		CardFour:      payment.Mask(*card),
		BookingDate:   bc.now().Unix(),
		TotalAmount:   priced.TotalPrice,
		PaymentStatus: model.PaymentPaid,
		ChargeID:      chargeID,
	}
	if err := bc.persist(ctx, co, booking, priced); err != nil {
		bc.void(ctx, co, chargeID, err)
		co.advance(StateFailedRolledBack)
		return nil, err
	}
	co.advance(StatePersisted)

	for i := range booking.Tickets {
		if s, ok := shows[booking.Tickets[i].ShowID]; ok {
			booking.Tickets[i].MovieTitle = s.MovieTitle
			booking.Tickets[i].ShowStart = s.StartTime
		}
	}
	bc.notify(ctx, co, booking, card)
	return booking, nil
}

// ListForUser returns a user's bookings with their tickets.
func (bc *BookingCoordinator) ListForUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	return bc.Bookings.ListByUser(ctx, userID)
}

func validateCheckout(req CheckoutRequest) error {
	if req.UserID == 0 {
		return validationf("user ID is required")
	}
	if req.CardID == 0 {
		return validationf("card ID is required")
	}
	if len(req.Cart.Items) == 0 {
		return validationf("cart is empty")
	}
	if req.Cart.UserID != 0 && req.Cart.UserID != req.UserID {
		return validationf("cart belongs to another user")
	}
	seen := make(map[Seat]bool, len(req.Cart.Items))
	for _, it := range req.Cart.Items {
		if it.SeatNumber == "" {
			return validationf("seat number is required for show %d", it.ShowID)
		}
		k := Seat{ShowID: it.ShowID, SeatNumber: it.SeatNumber}
		if seen[k] {
			return validationf("seat %s of show %d is in the cart twice", it.SeatNumber, it.ShowID)
		}
		seen[k] = true
	}
	return nil
}

func (bc *BookingCoordinator) loadShows(ctx context.Context, items []model.CartItem) (map[uint64]*model.Show, error) {
	shows := make(map[uint64]*model.Show)
	for _, it := range items {
		if _, ok := shows[it.ShowID]; ok {
			continue
		}
		s, err := bc.Shows.GetByID(ctx, it.ShowID)
		if err != nil {
			return nil, fmt.Errorf("show %d: %w", it.ShowID, err)
		}
		shows[it.ShowID] = s
	}
	return shows, nil
}

// persist writes the booking, claims its seats, writes its tickets and
// redeems the promotion in a single transaction.
func (bc *BookingCoordinator) persist(ctx context.Context, co *checkout, b *model.Booking, priced *model.PricedCart) error {
	tx, err := bc.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin checkout: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := bc.Bookings.CreateTx(ctx, tx, b); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	seatsByShow := make(map[uint64][]string)
	var showIDs []uint64
	for _, it := range priced.Items {
		if _, ok := seatsByShow[it.ShowID]; !ok {
			showIDs = append(showIDs, it.ShowID)
		}
		seatsByShow[it.ShowID] = append(seatsByShow[it.ShowID], it.SeatNumber)
	}
	sort.Slice(showIDs, func(i, j int) bool { return showIDs[i] < showIDs[j] })

	var taken *SeatTakenError
	for _, showID := range showIDs {
		err := bc.Seats.AllocateAll(ctx, tx, showID, b.ID, seatsByShow[showID])
		var ste *SeatTakenError
		if errors.As(err, &ste) {
			if taken == nil {
				taken = &SeatTakenError{}
			}
			taken.merge(ste)
			continue
		}
		if err != nil {
			return err
		}
	}
	if taken != nil {
		return taken
	}
	co.advance(StateSeatsAllocated)

	tickets := make([]model.Ticket, len(priced.Items))
	for i, it := range priced.Items {
		tickets[i] = model.Ticket{
			BookingID:  b.ID,
			ShowID:     it.ShowID,
			TicketType: it.TicketType,
			Price:      it.Price,
			SeatNumber: it.SeatNumber,
		}
	}
	if err := bc.Bookings.CreateTicketsTx(ctx, tx, b.ID, tickets); err != nil {
		return fmt.Errorf("insert tickets: %w", err)
	}
	if priced.Promotion != nil {
		if err := bc.Ledger.Redeem(ctx, tx, b.UserID, priced.Promotion.Description); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit checkout: %w", err)
	}
	committed = true
	b.Tickets = tickets
	return nil
}

// void reverses the capture after a failed persist.  It runs on its own
// deadline so a cancelled request still gets its money back.
func (bc *BookingCoordinator) void(ctx context.Context, co *checkout, chargeID string, cause error) {
	vctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), bc.voidTimeout)
	defer cancel()
	if err := bc.Processor.Void(vctx, chargeID); err != nil {
		bc.Logger.Errorj(log.JSON{
			"msg":       "payment void failed, refund manually",
			"charge_id": chargeID,
			"user_id":   co.userID,
			"cause":     cause.Error(),
			"error":     err.Error(),
		})
		return
	}
	bc.Logger.Warnj(log.JSON{"msg": "payment voided", "charge_id": chargeID, "user_id": co.userID, "cause": cause.Error()})
}

// notify sends the confirmation.  The booking is already committed, so
// failures are logged and dropped.
func (bc *BookingCoordinator) notify(ctx context.Context, co *checkout, b *model.Booking, card *model.PaymentCard) {
	user, err := bc.Users.GetByID(ctx, b.UserID)
	if err != nil {
		bc.Logger.Errorj(log.JSON{"msg": "confirmation skipped: user lookup failed", "booking_id": b.ID, "error": err.Error()})
		return
	}
	conf := model.Confirmation{
		UserID:        user.ID,
		Email:         user.Email,
		FirstName:     user.FirstName,
		BookingID:     b.ID,
		BookingDate:   b.BookingDate,
		TotalAmount:   b.TotalAmount,
		PaymentStatus: b.PaymentStatus,
		MaskedCard:    payment.MaskForEmail(card.Last4()),
		Tickets:       make([]model.ConfirmationTicket, len(b.Tickets)),
	}
	for i, t := range b.Tickets {
		title := t.MovieTitle
		if title == "" {
			title = "Unknown Movie"
		}
		conf.Tickets[i] = model.ConfirmationTicket{
			ShowID:     t.ShowID,
			MovieTitle: title,
			ShowStart:  t.ShowStart,
			TicketType: t.TicketType,
			Price:      t.Price,
			SeatNumber: t.SeatNumber,
		}
	}

	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), bc.notifyTimeout)
	defer cancel()
	if err := bc.Notifier.SendBookingConfirmation(nctx, conf); err != nil {
		bc.Logger.Errorj(log.JSON{"msg": "confirmation not sent", "booking_id": b.ID, "error": err.Error()})
		return
	}
	co.advance(StateNotified)
}
