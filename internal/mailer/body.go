package mailer

import (
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// ConfirmationBody renders the plain-text receipt.
func ConfirmationBody(c model.Confirmation) string {
	var b strings.Builder
	name := c.FirstName
	if name == "" {
		name = "there"
	}
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	fmt.Fprintf(&b, "Thanks for your purchase. Booking #%d on %s.\n\n",
		c.BookingID, time.Unix(c.BookingDate, 0).UTC().Format("Jan 2, 2006 15:04 MST"))
	for _, t := range c.Tickets {
		fmt.Fprintf(&b, "  %s  %s  seat %s  %s  $%s\n",
			t.MovieTitle, t.ShowStart.UTC().Format("Mon Jan 2 15:04"), t.SeatNumber, t.TicketType, t.Price.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal charged: $%s (%s)\n", c.TotalAmount.StringFixed(2), c.PaymentStatus)
	fmt.Fprintf(&b, "Card: %s\n\n", c.MaskedCard)
	b.WriteString("Show this mail or your booking number at the entrance. Enjoy the movie!\n")
	return b.String()
}

// PromotionBody renders a promotion announcement.
func PromotionBody(to model.User, p model.Promotion) string {
	name := to.FirstName
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf("Hi %s,\n\n%s\n\nUse code %s at checkout to get %s%% off your tickets.\nEach code can be used once per account.\n",
		name, p.Title, p.Description, p.DiscountPercentage.String())
}
