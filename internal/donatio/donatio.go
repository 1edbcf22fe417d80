package donatio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/streamtip/donatio/internal/alert"
	"github.com/streamtip/donatio/internal/config"
	"github.com/streamtip/donatio/internal/form"
	"github.com/streamtip/donatio/internal/metrics"
	"github.com/streamtip/donatio/internal/models"
	"github.com/streamtip/donatio/internal/notificator"
	"github.com/streamtip/donatio/internal/ranks"
	"github.com/streamtip/donatio/internal/repository"
	"github.com/streamtip/donatio/pkg/logger"
)

const sweepInterval = time.Minute

var ErrFormNotFound = errors.New("donation form not found")

// DonorStanding is one leaderboard row.
type DonorStanding struct {
	Position int            `json:"position"`
	Donor    *models.Donor  `json:"donor"`
	Standing ranks.Standing `json:"standing"`
}

// Donatio is the main struct for the Donatio application
// It owns the alert slot and the open donation forms
// and serves all business logic
type Donatio struct {
	logger *logger.Logger
	config *config.Config
	clock  clock.Clock

	repo        models.Repository
	ranks       *ranks.Table
	gateway     models.PaymentGateway
	slot        *alert.Slot
	notificator *notificator.Notificator

	formsMu sync.RWMutex
	forms   map[string]*form.Form

	wg sync.WaitGroup
}

// NewDonatio creates a new Donatio instance
func NewDonatio(
	repo models.Repository,
	table *ranks.Table,
	gateway models.PaymentGateway,
	slot *alert.Slot,
	notificator *notificator.Notificator,
	logger *logger.Logger,
	config *config.Config,
	clk clock.Clock,
) *Donatio {
	if clk == nil {
		clk = clock.New()
	}
	return &Donatio{
		repo:        repo,
		ranks:       table,
		gateway:     gateway,
		slot:        slot,
		notificator: notificator,
		logger:      logger,
		config:      config,
		clock:       clk,
		forms:       make(map[string]*form.Form),
	}
}

// Start seeds the leaderboard and starts the relay and form sweeper goroutines.
// They stop when ctx is cancelled.
func (d *Donatio) Start(ctx context.Context) error {
	if d.config.SeedDonors {
		if err := d.repo.SeedDonors(repository.IllustrativeDonors(d.clock.Now())); err != nil {
			return fmt.Errorf("failed to seed donors: %w", err)
		}
	}

	events, cancel, err := d.slot.Subscribe()
	if err != nil {
		return fmt.Errorf("failed to subscribe to alerts: %w", err)
	}
	d.wg.Add(2)
	go func() {
		defer d.wg.Done()
		defer cancel()
		d.notificator.Run(ctx, events)
	}()
	go func() {
		defer d.wg.Done()
		ticker := d.clock.Ticker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				d.logger.Debug("Removing idle donation forms")
				d.SweepIdleForms()
			}
		}
	}()
	d.logger.Info("Donatio started", "relays", d.notificator.Relays())
	return nil
}

// Stop closes the alert slot and waits for background goroutines. The
// context passed to Start must be cancelled first.
func (d *Donatio) Stop() error {
	d.slot.Close()
	d.wg.Wait()
	return d.repo.Close()
}

func (d *Donatio) Ranks() []ranks.Tier {
	return d.ranks.Tiers()
}

func (d *Donatio) ResolveRank(amount float64) ranks.Standing {
	return d.ranks.Standing(amount)
}

func (d *Donatio) PaymentMethods() []models.PaymentMethod {
	return d.gateway.Methods()
}

func (d *Donatio) QuickAmounts() []float64 {
	return append([]float64(nil), form.QuickAmounts...)
}

// Leaderboard returns donors by total with their derived rank and progress.
func (d *Donatio) Leaderboard(limit int) ([]DonorStanding, error) {
	donors, err := d.repo.ListDonors(limit)
	if err != nil {
		d.logger.Error("Failed to list donors", "error", err)
		return nil, err
	}
	out := make([]DonorStanding, 0, len(donors))
	for i, donor := range donors {
		out = append(out, DonorStanding{
			Position: i + 1,
			Donor:    donor,
			Standing: d.ranks.Standing(donor.TotalDonated),
		})
	}
	return out, nil
}

func (d *Donatio) RecentDonations(limit int) ([]*models.DonationRecord, error) {
	return d.repo.ListDonations(limit)
}

// RecordDonation stores a completed donation and adds it to the donor's
// total. Anonymous donations are not attributed to a donor.
func (d *Donatio) RecordDonation(n *models.DonationNotification, completion *models.PaymentCompletion) error {
	record := &models.DonationRecord{
		ID:        n.ID,
		Donor:     n.Donor,
		Amount:    n.Amount,
		Method:    completion.Method,
		Rank:      n.Rank.String(),
		Reference: completion.Reference,
		Timestamp: n.Timestamp.Unix(),
	}
	if n.Message != nil {
		record.Message = *n.Message
	}
	if err := d.repo.AddDonation(record); err != nil {
		return err
	}
	if n.Donor == form.AnonymousDonor {
		return nil
	}
	donor, err := d.repo.AddToDonorTotal(n.Donor, n.Amount, record.Timestamp)
	if err != nil {
		return err
	}
	d.logger.Debug("Donor total updated", "donor", donor.Name, "total", donor.TotalDonated, "rank", d.ranks.TierFor(donor.TotalDonated).Rank.String())
	return nil
}

// NewForm opens a donation form session.
func (d *Donatio) NewForm() *form.Form {
	f := form.New(uuid.NewString(), d.logger, form.Deps{
		Ranks:     d.ranks,
		Gateway:   d.gateway,
		Presenter: d.slot,
		Recorder:  d,
		Clock:     d.clock,
	})
	d.formsMu.Lock()
	d.forms[f.ID()] = f
	count := len(d.forms)
	d.formsMu.Unlock()
	metrics.ActiveForms.Set(float64(count))
	return f
}

func (d *Donatio) GetForm(id string) (*form.Form, error) {
	d.formsMu.RLock()
	defer d.formsMu.RUnlock()
	f, ok := d.forms[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFormNotFound, id)
	}
	return f, nil
}

// SweepIdleForms drops forms untouched for longer than the idle timeout.
// It returns how many were removed.
func (d *Donatio) SweepIdleForms() int {
	cutoff := d.clock.Now().Add(-d.config.FormIdleTimeout)
	d.formsMu.Lock()
	removed := 0
	for id, f := range d.forms {
		since, idle := f.IdleSince()
		if idle && since.Before(cutoff) {
			delete(d.forms, id)
			removed++
		}
	}
	count := len(d.forms)
	d.formsMu.Unlock()
	metrics.ActiveForms.Set(float64(count))
	if removed > 0 {
		d.logger.Info("Removed idle donation forms", "removed", removed, "remaining", count)
	}
	return removed
}

func (d *Donatio) CurrentAlert() (alert.Snapshot, error) {
	return d.slot.Snapshot()
}

func (d *Donatio) DismissAlert() (bool, error) {
	return d.slot.Dismiss()
}

func (d *Donatio) SubscribeAlerts() (<-chan alert.Event, func(), error) {
	return d.slot.Subscribe()
}
