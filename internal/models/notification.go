package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/streamtip/donatio/internal/ranks"
)

// DonationNotification is the alert shown once per completed payment.
type DonationNotification struct {
	// ID is a unique token generated when the notification is built.
	ID string `json:"id"`
	// Donor is the display name of the donor.
	Donor string `json:"donor"`
	// Amount is the paid amount, always positive.
	Amount float64 `json:"amount"`
	// Message is the optional donor message, nil when the donor left it empty.
	Message *string `json:"message,omitempty"`
	// Timestamp is when the payment completed.
	Timestamp time.Time `json:"timestamp"`
	// Rank is the tier of this single donation amount.
	Rank ranks.Rank `json:"rank"`
}

func (n *DonationNotification) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "New donation! %s [%s] donated %s ₽", n.Donor, strings.ToUpper(n.Rank.String()), FormatAmount(n.Amount))
	if n.Message != nil {
		fmt.Fprintf(&b, "\n\"%s\"", *n.Message)
	}
	return b.String()
}

// FormatAmount prints whole amounts without decimals and fractional ones with two.
func FormatAmount(amount float64) string {
	if amount == float64(int64(amount)) {
		return fmt.Sprintf("%d", int64(amount))
	}
	return fmt.Sprintf("%.2f", amount)
}
