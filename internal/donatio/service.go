package donatio

import (
	"github.com/streamtip/donatio/internal/alert"
	"github.com/streamtip/donatio/internal/form"
	"github.com/streamtip/donatio/internal/models"
	"github.com/streamtip/donatio/internal/ranks"
)

// DonatioI is what the HTTP layer needs from the application.
type DonatioI interface {
	Ranks() []ranks.Tier
	ResolveRank(amount float64) ranks.Standing
	PaymentMethods() []models.PaymentMethod
	QuickAmounts() []float64

	// Leaderboard returns donors by total with derived rank and progress.
	Leaderboard(limit int) ([]DonorStanding, error)
	RecentDonations(limit int) ([]*models.DonationRecord, error)

	NewForm() *form.Form
	GetForm(id string) (*form.Form, error)

	CurrentAlert() (alert.Snapshot, error)
	DismissAlert() (bool, error)
	SubscribeAlerts() (<-chan alert.Event, func(), error)
}

var _ DonatioI = (*Donatio)(nil)
