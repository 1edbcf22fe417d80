package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/streamtip/donatio/internal/models"
	"github.com/streamtip/donatio/pkg/logger"
	"github.com/streamtip/donatio/pkg/validation"
)

// DefaultDelay is how long a simulated payment takes to resolve.
const DefaultDelay = 2 * time.Second

// Simulator stands in for a payment gateway: every valid request succeeds
// once after a fixed delay. It does not guard against concurrent requests.
type Simulator struct {
	logger  *logger.Logger
	catalog *Catalog
	clock   clock.Clock
	delay   time.Duration
}

func NewSimulator(logger *logger.Logger, catalog *Catalog, clk clock.Clock, delay time.Duration) *Simulator {
	if clk == nil {
		clk = clock.New()
	}
	if delay < 0 {
		delay = DefaultDelay
	}
	return &Simulator{
		logger:  logger,
		catalog: catalog,
		clock:   clk,
		delay:   delay,
	}
}

func (s *Simulator) Methods() []models.PaymentMethod {
	return s.catalog.Methods()
}

// Initiate validates the request, waits for the simulated processing delay
// and returns the completion. A cancelled context aborts the wait.
func (s *Simulator) Initiate(ctx context.Context, req models.PaymentRequest) (*models.PaymentCompletion, error) {
	method, err := s.catalog.Lookup(req.Method)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateAmount(req.Amount); err != nil {
		return nil, err
	}
	if method.RequiresPhone {
		if err := validation.ValidatePhone(req.Phone); err != nil {
			return nil, fmt.Errorf("%s requires a phone number: %w", method.DisplayName, err)
		}
	}

	reference := uuid.NewString()
	s.logger.Debug("Simulating payment", "method", method.ID, "amount", req.Amount, "reference", reference)

	timer := s.clock.Timer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		s.logger.Warn("Payment aborted", "method", method.ID, "reference", reference, "error", ctx.Err())
		return nil, ctx.Err()
	case <-timer.C:
	}

	s.logger.Info("Payment completed", "method", method.ID, "amount", req.Amount, "reference", reference)
	return &models.PaymentCompletion{
		Method:      method.ID,
		Amount:      req.Amount,
		Reference:   reference,
		CompletedAt: s.clock.Now(),
	}, nil
}
