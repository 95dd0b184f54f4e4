package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/suite"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/payment"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

var checkoutTime = time.Date(2026, 5, 1, 18, 30, 0, 0, time.UTC)

type CheckoutSuite struct {
	suite.Suite
	db       *sql.DB
	mock     sqlmock.Sqlmock
	promos   *promoBook
	proc     *fakeProcessor
	notifier *fakeNotifier
	coord    *BookingCoordinator
}

func TestCheckoutSuite(t *testing.T) {
	suite.Run(t, new(CheckoutSuite))
}

func (s *CheckoutSuite) SetupTest() {
	db, mock, err := sqlmock.New()
	s.Require().NoError(err)
	s.db, s.mock = db, mock
	s.promos = newPromoBook(save10())
	s.proc = &fakeProcessor{}
	s.notifier = &fakeNotifier{}

	start := time.Date(2026, 5, 2, 20, 0, 0, 0, time.UTC)
	s.coord = NewBookingCoordinator(BookingDeps{
		DB:     db,
		Pricer: NewCartPricer(defaultPrices(), s.promos),
		Ledger: NewPromotionLedger(s.promos),
		Seats:  NewSeatAllocator(repository.NewShowSeatRepo(db)),
		Cards: cardBook{3: {
			ID: 3, UserID: 1, CardType: "Visa", CardHolderName: "Ada Lovelace",
			CardNumber: "4242424242424242", ExpirationDate: "12/29", ProcessorRef: "pm_1",
		}},
		Shows: showBook{
			5: {ID: 5, MovieID: 1, RoomID: 1, MovieTitle: "Metropolis", StartTime: start, EndTime: start.Add(2 * time.Hour)},
			6: {ID: 6, MovieID: 2, RoomID: 2, MovieTitle: "Nosferatu", StartTime: start, EndTime: start.Add(90 * time.Minute)},
		},
		Users:     userBook{1: {ID: 1, Email: "ada@example.com", FirstName: "Ada"}},
		Bookings:  repository.NewBookingRepo(db),
		Processor: s.proc,
		Notifier:  s.notifier,
		Logger:    quietLogger(),
	})
	s.coord.now = func() time.Time { return checkoutTime }
}

func (s *CheckoutSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	s.db.Close()
}

func (s *CheckoutSuite) request(cart model.Cart) CheckoutRequest {
	return CheckoutRequest{UserID: 1, Cart: cart, CardID: 3}
}

func (s *CheckoutSuite) expectBookingInsert(id int64) {
	s.mock.ExpectBegin()
	s.mock.ExpectExec("INSERT INTO bookings").
		WithArgs(1, "Visa****4242", checkoutTime.Unix(), sqlmock.AnyArg(), model.PaymentPaid, "ch_test").
		WillReturnResult(sqlmock.NewResult(id, 1))
}

func (s *CheckoutSuite) expectSeats(showID, bookingID int64, seats ...string) {
	s.mock.ExpectExec("^SAVEPOINT seat_batch$").WillReturnResult(sqlmock.NewResult(0, 0))
	for _, seat := range seats {
		s.mock.ExpectExec("INSERT INTO show_seats").WithArgs(showID, seat, bookingID).WillReturnResult(sqlmock.NewResult(0, 1))
	}
	s.mock.ExpectExec("^RELEASE SAVEPOINT seat_batch$").WillReturnResult(sqlmock.NewResult(0, 0))
}

func (s *CheckoutSuite) assertNoCharge() {
	s.Empty(s.proc.captured)
	s.Empty(s.proc.voided)
	s.Empty(s.notifier.sent)
}

func (s *CheckoutSuite) TestCheckoutPersistsAndNotifies() {
	s.expectBookingInsert(42)
	s.expectSeats(5, 42, "A1", "A2")
	s.mock.ExpectExec("INSERT INTO tickets").WillReturnResult(sqlmock.NewResult(1, 2))
	s.mock.ExpectCommit()

	b, err := s.coord.Checkout(context.Background(), s.request(familyCart()))
	s.Require().NoError(err)

	s.Equal(uint64(42), b.ID)
	s.Equal("Visa****4242", b.CardFour)
	s.Equal(checkoutTime.Unix(), b.BookingDate)
	s.Equal("24.40", b.TotalAmount.StringFixed(2))
	s.Equal(model.PaymentPaid, b.PaymentStatus)
	s.Require().Len(b.Tickets, 2)
	s.Equal("A1", b.Tickets[0].SeatNumber)
	s.Equal(uint64(1), b.Tickets[0].ID)
	s.Equal(uint64(2), b.Tickets[1].ID)
	s.Equal("Metropolis", b.Tickets[1].MovieTitle)

	s.Require().Len(s.proc.captured, 1)
	s.Equal("24.40", s.proc.captured[0].StringFixed(2))
	s.Empty(s.proc.voided)

	s.Require().Len(s.notifier.sent, 1)
	conf := s.notifier.sent[0]
	s.Equal("ada@example.com", conf.Email)
	s.Equal("**** **** **** 4242", conf.MaskedCard)
	s.Len(conf.Tickets, 2)
}

func (s *CheckoutSuite) TestSeatNumbersAreTrimmedBeforeClaimAndTicket() {
	cart := familyCart()
	cart.Items[0].SeatNumber = " A1"
	cart.Items[1].SeatNumber = "A2\t "

	s.expectBookingInsert(42)
	s.expectSeats(5, 42, "A1", "A2")
	s.mock.ExpectExec("INSERT INTO tickets").
		WithArgs(42, 5, "Adult", sqlmock.AnyArg(), "A1", 42, 5, "Child", sqlmock.AnyArg(), "A2").
		WillReturnResult(sqlmock.NewResult(1, 2))
	s.mock.ExpectCommit()

	b, err := s.coord.Checkout(context.Background(), s.request(cart))
	s.Require().NoError(err)
	s.Require().Len(b.Tickets, 2)
	s.Equal("A1", b.Tickets[0].SeatNumber)
	s.Equal("A2", b.Tickets[1].SeatNumber)
	s.Equal(" A1", cart.Items[0].SeatNumber)
}

func (s *CheckoutSuite) TestPromotionRedeemedWithBooking() {
	cart := familyCart()
	cart.Promotion = &model.PromotionRef{Description: "SAVE10"}

	s.expectBookingInsert(43)
	s.expectSeats(5, 43, "A1", "A2")
	s.mock.ExpectExec("INSERT INTO tickets").WillReturnResult(sqlmock.NewResult(1, 2))
	s.mock.ExpectCommit()

	b, err := s.coord.Checkout(context.Background(), s.request(cart))
	s.Require().NoError(err)
	s.Equal("22.26", b.TotalAmount.StringFixed(2))
	s.Equal("22.26", s.proc.captured[0].StringFixed(2))

	used, _ := s.promos.HasRedeemed(context.Background(), 1, "SAVE10")
	s.True(used)
}

func (s *CheckoutSuite) TestSeatConflictVoidsPayment() {
	s.expectBookingInsert(44)
	s.mock.ExpectExec("^SAVEPOINT seat_batch$").WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectExec("INSERT INTO show_seats").WithArgs(5, "A1", 44).WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectExec("INSERT INTO show_seats").WithArgs(5, "A2", 44).WillReturnError(dupEntry())
	s.mock.ExpectExec("^ROLLBACK TO SAVEPOINT seat_batch$").WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectRollback()

	b, err := s.coord.Checkout(context.Background(), s.request(familyCart()))
	s.Nil(b)
	s.ErrorIs(err, ErrSeatTaken)
	var ste *SeatTakenError
	s.Require().True(errors.As(err, &ste))
	s.Equal([]Seat{{ShowID: 5, SeatNumber: "A2"}}, ste.Seats)

	s.Len(s.proc.captured, 1)
	s.Equal([]string{"ch_test"}, s.proc.voided)
	s.Empty(s.notifier.sent)
}

func (s *CheckoutSuite) TestConflictsAcrossShowsAreAllReported() {
	cart := familyCart()
	cart.Items = append(cart.Items, model.CartItem{ShowID: 6, TicketType: "Senior", Price: dec("9.00"), SeatNumber: "C4"})

	s.expectBookingInsert(45)
	s.mock.ExpectExec("^SAVEPOINT seat_batch$").WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectExec("INSERT INTO show_seats").WithArgs(5, "A1", 45).WillReturnError(dupEntry())
	s.mock.ExpectExec("INSERT INTO show_seats").WithArgs(5, "A2", 45).WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectExec("^ROLLBACK TO SAVEPOINT seat_batch$").WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectExec("^SAVEPOINT seat_batch$").WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectExec("INSERT INTO show_seats").WithArgs(6, "C4", 45).WillReturnError(dupEntry())
	s.mock.ExpectExec("^ROLLBACK TO SAVEPOINT seat_batch$").WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectRollback()

	_, err := s.coord.Checkout(context.Background(), s.request(cart))
	var ste *SeatTakenError
	s.Require().True(errors.As(err, &ste))
	s.Equal([]Seat{{ShowID: 5, SeatNumber: "A1"}, {ShowID: 6, SeatNumber: "C4"}}, ste.Seats)
	s.Equal([]string{"ch_test"}, s.proc.voided)
}

func (s *CheckoutSuite) TestTicketFailureRollsBackAndVoids() {
	s.expectBookingInsert(46)
	s.expectSeats(5, 46, "A1", "A2")
	s.mock.ExpectExec("INSERT INTO tickets").WillReturnError(errBoom)
	s.mock.ExpectRollback()

	_, err := s.coord.Checkout(context.Background(), s.request(familyCart()))
	s.ErrorIs(err, errBoom)
	s.Equal([]string{"ch_test"}, s.proc.voided)
}

func (s *CheckoutSuite) TestRedemptionRaceRollsBackAndVoids() {
	cart := familyCart()
	cart.Promotion = &model.PromotionRef{Description: "SAVE10"}
	// another checkout redeemed the code after this one's early check
	s.promos.redeemErr = repository.ErrDuplicateRedemption

	s.expectBookingInsert(47)
	s.expectSeats(5, 47, "A1", "A2")
	s.mock.ExpectExec("INSERT INTO tickets").WillReturnResult(sqlmock.NewResult(1, 2))
	s.mock.ExpectRollback()

	_, err := s.coord.Checkout(context.Background(), s.request(cart))
	s.ErrorIs(err, ErrDuplicateRedemption)
	s.Equal([]string{"ch_test"}, s.proc.voided)
}

func (s *CheckoutSuite) TestVoidFailureStillReportsCause() {
	s.proc.voidErr = errBoom
	s.expectBookingInsert(48)
	s.mock.ExpectExec("^SAVEPOINT seat_batch$").WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectExec("INSERT INTO show_seats").WithArgs(5, "A1", 48).WillReturnError(dupEntry())
	s.mock.ExpectExec("INSERT INTO show_seats").WithArgs(5, "A2", 48).WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectExec("^ROLLBACK TO SAVEPOINT seat_batch$").WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectRollback()

	_, err := s.coord.Checkout(context.Background(), s.request(familyCart()))
	s.ErrorIs(err, ErrSeatTaken)
	s.Equal([]string{"ch_test"}, s.proc.voided)
}

func (s *CheckoutSuite) TestBeginFailureVoids() {
	s.mock.ExpectBegin().WillReturnError(errBoom)

	_, err := s.coord.Checkout(context.Background(), s.request(familyCart()))
	s.ErrorIs(err, errBoom)
	s.Equal([]string{"ch_test"}, s.proc.voided)
}

func (s *CheckoutSuite) TestNotificationFailureDoesNotFailCheckout() {
	s.notifier.err = errBoom
	s.expectBookingInsert(49)
	s.expectSeats(5, 49, "A1", "A2")
	s.mock.ExpectExec("INSERT INTO tickets").WillReturnResult(sqlmock.NewResult(1, 2))
	s.mock.ExpectCommit()

	b, err := s.coord.Checkout(context.Background(), s.request(familyCart()))
	s.Require().NoError(err)
	s.Equal(uint64(49), b.ID)
	s.Empty(s.proc.voided)
}

func (s *CheckoutSuite) TestPriceMismatchHasNoSideEffects() {
	cart := familyCart()
	cart.Items[0].Price = dec("1.00")

	_, err := s.coord.Checkout(context.Background(), s.request(cart))
	s.ErrorIs(err, ErrPriceMismatch)
	s.assertNoCharge()
}

func (s *CheckoutSuite) TestUnknownShowHasNoSideEffects() {
	cart := familyCart()
	cart.Items[0].ShowID = 77

	_, err := s.coord.Checkout(context.Background(), s.request(cart))
	s.ErrorIs(err, ErrShowNotFound)
	s.assertNoCharge()
}

func (s *CheckoutSuite) TestCardNotFound() {
	req := s.request(familyCart())
	req.CardID = 99

	_, err := s.coord.Checkout(context.Background(), req)
	s.ErrorIs(err, ErrCardNotFound)
	s.assertNoCharge()
}

func (s *CheckoutSuite) TestCardOfAnotherUserIsNotFound() {
	req := s.request(familyCart())
	req.UserID = 2
	req.Cart.UserID = 2

	_, err := s.coord.Checkout(context.Background(), req)
	s.ErrorIs(err, ErrCardNotFound)
	s.assertNoCharge()
}

func (s *CheckoutSuite) TestDeclinedPaymentHasNoSideEffects() {
	s.proc.captureErr = fmt.Errorf("%w: card refused", payment.ErrDeclined)

	_, err := s.coord.Checkout(context.Background(), s.request(familyCart()))
	s.ErrorIs(err, ErrPaymentDeclined)
	s.assertNoCharge()
}

func (s *CheckoutSuite) TestAlreadyRedeemedCodeRejectedBeforeCapture() {
	s.Require().NoError(s.promos.RedeemTx(context.Background(), nil, 1, "SAVE10", checkoutTime))
	cart := familyCart()
	cart.Promotion = &model.PromotionRef{Description: "SAVE10"}

	_, err := s.coord.Checkout(context.Background(), s.request(cart))
	s.ErrorIs(err, ErrDuplicateRedemption)
	s.assertNoCharge()
}

func (s *CheckoutSuite) TestValidation() {
	dupSeat := familyCart()
	dupSeat.Items[1].SeatNumber = "A1"
	paddedDup := familyCart()
	paddedDup.Items[1].SeatNumber = "A1 "
	blankSeat := familyCart()
	blankSeat.Items[0].SeatNumber = "   "
	otherUser := familyCart()
	otherUser.UserID = 2

	cases := map[string]CheckoutRequest{
		"empty cart":     {UserID: 1, CardID: 3},
		"no card":        {UserID: 1, Cart: familyCart()},
		"no user":        {Cart: familyCart(), CardID: 3},
		"seat twice":     {UserID: 1, Cart: dupSeat, CardID: 3},
		"padded twice":   {UserID: 1, Cart: paddedDup, CardID: 3},
		"blank seat":     {UserID: 1, Cart: blankSeat, CardID: 3},
		"someone's cart": {UserID: 1, Cart: otherUser, CardID: 3},
	}
	for name, req := range cases {
		_, err := s.coord.Checkout(context.Background(), req)
		s.ErrorIs(err, ErrValidation, name)
	}
	s.assertNoCharge()
}
