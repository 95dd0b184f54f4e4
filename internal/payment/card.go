package payment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// Supported card brands.
const (
	CardVisa       = "Visa"
	CardMasterCard = "MasterCard"
	CardAmex       = "Amex"
)

const cardNumberLen = 16

var (
	ErrCardType   = errors.New("unsupported card type")
	ErrCardNumber = errors.New("invalid card number")
	ErrCardExpiry = errors.New("invalid or expired card")
	ErrCardHolder = errors.New("card holder name is required")
)

// ValidateCard checks brand, number length and checksum, expiry (MM/YY,
// valid through the end of that month) and holder name.  Stored numbers are
// 16 digits for every brand.
func ValidateCard(c model.PaymentCard, now time.Time) error {
	switch c.CardType {
	case CardVisa, CardMasterCard, CardAmex:
	default:
		return ErrCardType
	}
	if len(c.CardNumber) != cardNumberLen || !luhn(c.CardNumber) {
		return ErrCardNumber
	}
	if err := checkExpiry(c.ExpirationDate, now); err != nil {
		return err
	}
	if strings.TrimSpace(c.CardHolderName) == "" {
		return ErrCardHolder
	}
	return nil
}

func checkExpiry(mmyy string, now time.Time) error {
	parts := strings.Split(mmyy, "/")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return ErrCardExpiry
	}
	month, err1 := strconv.Atoi(parts[0])
	year, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || month < 1 || month > 12 {
		return ErrCardExpiry
	}
	// first instant of the month after expiry
	end := time.Date(2000+year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	if !now.UTC().Before(end) {
		return ErrCardExpiry
	}
	return nil
}

// luhn reports whether the digit string passes the mod 10 checksum.
func luhn(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		ch := number[i]
		if ch < '0' || ch > '9' {
			return false
		}
		d := int(ch - '0')
		if double {
			if d *= 2; d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// Mask is the receipt descriptor stored on bookings, e.g. "Visa****4242".
// The full number never leaves checkout.
func Mask(c model.PaymentCard) string {
	return c.CardType + "****" + c.Last4()
}

// MaskForEmail renders the last four digits the way confirmation mails
// show them.
func MaskForEmail(last4 string) string {
	return fmt.Sprintf("**** **** **** %s", last4)
}
