package form

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/streamtip/donatio/internal/metrics"
	"github.com/streamtip/donatio/internal/models"
	"github.com/streamtip/donatio/internal/ranks"
	"github.com/streamtip/donatio/pkg/logger"
	"github.com/streamtip/donatio/pkg/validation"
)

// AnonymousDonor is the display name used when the donor gives none.
const AnonymousDonor = "Anonymous"

// QuickAmounts are the preset amounts offered by the form.
var QuickAmounts = []float64{100, 250, 500, 1000, 2500, 5000}

var (
	ErrNotPreset       = errors.New("amount is not one of the preset amounts")
	ErrAmountTooLow    = errors.New("amount is below the minimum donation")
	ErrPaymentNotOpen  = errors.New("payment panel is not open")
	ErrPaymentInFlight = errors.New("a payment is already in progress")
)

// Presenter puts a notification into the alert slot.
type Presenter interface {
	Present(n *models.DonationNotification) (uint64, error)
}

// Recorder stores a completed donation.
type Recorder interface {
	RecordDonation(n *models.DonationNotification, completion *models.PaymentCompletion) error
}

type Deps struct {
	Ranks     *ranks.Table
	Gateway   models.PaymentGateway
	Presenter Presenter
	Recorder  Recorder
	Clock     clock.Clock
}

// State is a read-only view of a form.
type State struct {
	ID            string    `json:"id"`
	Amount        float64   `json:"amount"`
	Message       string    `json:"message"`
	MessageLength int       `json:"message_length"`
	DonorName     string    `json:"donor_name"`
	PaymentOpen   bool      `json:"payment_open"`
	Processing    bool      `json:"processing"`
	CanSubmit     bool      `json:"can_submit"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Form is the donation page state machine: amount and message entry, the
// payment panel, and hand-off of completed payments to the alert slot.
type Form struct {
	id     string
	logger *logger.Logger
	deps   Deps

	mu          sync.Mutex
	amount      float64
	message     string
	donorName   string
	paymentOpen bool
	processing  bool
	updatedAt   time.Time
}

func New(id string, logger *logger.Logger, deps Deps) *Form {
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	if deps.Ranks == nil {
		deps.Ranks = ranks.DefaultTable()
	}
	return &Form{
		id:        id,
		logger:    logger.With("form", id),
		deps:      deps,
		updatedAt: deps.Clock.Now(),
	}
}

func (f *Form) ID() string { return f.id }

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stateLocked()
}

func (f *Form) stateLocked() State {
	return State{
		ID:            f.id,
		Amount:        f.amount,
		Message:       f.message,
		MessageLength: len([]rune(f.message)),
		DonorName:     f.displayNameLocked(),
		PaymentOpen:   f.paymentOpen,
		Processing:    f.processing,
		CanSubmit:     canSubmit(f.amount),
		UpdatedAt:     f.updatedAt,
	}
}

// IdleSince reports the last change and whether the form may be discarded.
// Forms with a payment in flight are never idle.
func (f *Form) IdleSince() (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updatedAt, !f.processing
}

func (f *Form) touchLocked() {
	f.updatedAt = f.deps.Clock.Now()
}

func (f *Form) SelectQuickAmount(value float64) (State, error) {
	for _, preset := range QuickAmounts {
		if preset == value {
			return f.SetCustomAmount(value)
		}
	}
	return f.State(), fmt.Errorf("%w: %v", ErrNotPreset, value)
}

// SetCustomAmount stores any entered amount. Submission stays disabled until
// the amount is at least 1.
func (f *Form) SetCustomAmount(value float64) (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.processing {
		return f.stateLocked(), ErrPaymentInFlight
	}
	f.amount = value
	f.touchLocked()
	return f.stateLocked(), nil
}

func (f *Form) SetMessage(message string) (State, error) {
	if err := validation.ValidateMessage(message); err != nil {
		return f.State(), err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.message = message
	f.touchLocked()
	return f.stateLocked(), nil
}

func (f *Form) SetDonorName(name string) (State, error) {
	if err := validation.ValidateDonorName(name); err != nil {
		return f.State(), err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.donorName = strings.TrimSpace(name)
	f.touchLocked()
	return f.stateLocked(), nil
}

// OpenPayment opens the payment panel. It refuses amounts below 1.
func (f *Form) OpenPayment() (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !canSubmit(f.amount) {
		return f.stateLocked(), fmt.Errorf("%w: %v", ErrAmountTooLow, f.amount)
	}
	f.paymentOpen = true
	f.touchLocked()
	return f.stateLocked(), nil
}

func (f *Form) ClosePayment() (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.processing {
		return f.stateLocked(), ErrPaymentInFlight
	}
	f.paymentOpen = false
	f.touchLocked()
	return f.stateLocked(), nil
}

// Pay charges the current amount through the gateway and, once it resolves,
// completes the donation. Only one payment may be in flight per form.
func (f *Form) Pay(ctx context.Context, method, phone string) (*models.DonationNotification, error) {
	f.mu.Lock()
	if !f.paymentOpen {
		f.mu.Unlock()
		return nil, ErrPaymentNotOpen
	}
	if f.processing {
		f.mu.Unlock()
		return nil, ErrPaymentInFlight
	}
	if !canSubmit(f.amount) {
		f.mu.Unlock()
		return nil, fmt.Errorf("%w: %v", ErrAmountTooLow, f.amount)
	}
	f.processing = true
	amount := f.amount
	f.touchLocked()
	f.mu.Unlock()

	started := f.deps.Clock.Now()
	completion, err := f.deps.Gateway.Initiate(ctx, models.PaymentRequest{
		Method: method,
		Amount: amount,
		Phone:  phone,
	})
	if err != nil {
		f.mu.Lock()
		f.processing = false
		f.touchLocked()
		f.mu.Unlock()
		metrics.PaymentsFailed.WithLabelValues(method).Inc()
		f.logger.Warn("Payment failed", "method", method, "amount", amount, "error", err)
		return nil, err
	}
	metrics.PaymentDuration.Observe(f.deps.Clock.Since(started).Seconds())

	return f.OnPaymentComplete(completion)
}

// OnPaymentComplete builds the notification for a resolved payment, records
// it, presents it and resets the form.
func (f *Form) OnPaymentComplete(completion *models.PaymentCompletion) (*models.DonationNotification, error) {
	tier := f.deps.Ranks.TierFor(completion.Amount)

	f.mu.Lock()
	timestamp := completion.CompletedAt
	if timestamp.IsZero() {
		timestamp = f.deps.Clock.Now()
	}
	notification := &models.DonationNotification{
		ID:        uuid.NewString(),
		Donor:     f.displayNameLocked(),
		Amount:    completion.Amount,
		Timestamp: timestamp,
		Rank:      tier.Rank,
	}
	if f.message != "" {
		message := f.message
		notification.Message = &message
	}
	f.paymentOpen = false
	f.processing = false
	f.amount = 0
	f.message = ""
	f.touchLocked()
	f.mu.Unlock()

	metrics.DonationsCompleted.WithLabelValues(completion.Method, tier.Rank.String()).Inc()
	metrics.DonationAmount.WithLabelValues(completion.Method).Observe(completion.Amount)

	if f.deps.Recorder != nil {
		if err := f.deps.Recorder.RecordDonation(notification, completion); err != nil {
			f.logger.Error("Failed to record donation", "notification", notification.ID, "error", err)
		}
	}

	if _, err := f.deps.Presenter.Present(notification); err != nil {
		return notification, fmt.Errorf("failed to present notification: %w", err)
	}
	f.logger.Info("Donation completed", "notification", notification.ID, "amount", notification.Amount, "rank", tier.Rank.String(), "method", completion.Method)
	return notification, nil
}

// canSubmit reports whether amount is finite and at least the minimum.
// Written positively so NaN fails it.
func canSubmit(amount float64) bool {
	return amount >= validation.MinAmount && !math.IsInf(amount, 1)
}

func (f *Form) displayNameLocked() string {
	if f.donorName == "" {
		return AnonymousDonor
	}
	return f.donorName
}
