package form

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamtip/donatio/internal/models"
	"github.com/streamtip/donatio/internal/ranks"
	"github.com/streamtip/donatio/pkg/logger"
	"github.com/streamtip/donatio/pkg/validation"
)

// blockingGateway resolves each Initiate when release is closed.
type blockingGateway struct {
	release  chan struct{}
	started  chan models.PaymentRequest
	err      error
	mu       sync.Mutex
	requests []models.PaymentRequest
}

func newBlockingGateway() *blockingGateway {
	return &blockingGateway{release: make(chan struct{}), started: make(chan models.PaymentRequest, 4)}
}

func (g *blockingGateway) Initiate(ctx context.Context, req models.PaymentRequest) (*models.PaymentCompletion, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	g.mu.Unlock()
	g.started <- req
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-g.release:
	}
	if g.err != nil {
		return nil, g.err
	}
	return &models.PaymentCompletion{Method: req.Method, Amount: req.Amount, Reference: "ref", CompletedAt: time.Now()}, nil
}

func (g *blockingGateway) Methods() []models.PaymentMethod { return nil }

type instantGateway struct{ err error }

func (g instantGateway) Initiate(_ context.Context, req models.PaymentRequest) (*models.PaymentCompletion, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &models.PaymentCompletion{Method: req.Method, Amount: req.Amount, Reference: "ref", CompletedAt: time.Now()}, nil
}

func (instantGateway) Methods() []models.PaymentMethod { return nil }

type fakePresenter struct {
	mu        sync.Mutex
	presented []*models.DonationNotification
	err       error
}

func (p *fakePresenter) Present(n *models.DonationNotification) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return 0, p.err
	}
	p.presented = append(p.presented, n)
	return uint64(len(p.presented)), nil
}

func (p *fakePresenter) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.presented)
}

type fakeRecorder struct {
	mu      sync.Mutex
	records []*models.DonationNotification
	err     error
}

func (r *fakeRecorder) RecordDonation(n *models.DonationNotification, _ *models.PaymentCompletion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, n)
	return r.err
}

func newTestForm(t *testing.T, gateway models.PaymentGateway) (*Form, *fakePresenter, *fakeRecorder) {
	presenter := &fakePresenter{}
	recorder := &fakeRecorder{}
	f := New("form-1", logger.NewTestLogger(t), Deps{
		Ranks:     ranks.DefaultTable(),
		Gateway:   gateway,
		Presenter: presenter,
		Recorder:  recorder,
	})
	return f, presenter, recorder
}

func TestForm_Defaults(t *testing.T) {
	f, _, _ := newTestForm(t, instantGateway{})

	state := f.State()
	assert.Equal(t, "form-1", state.ID)
	assert.Zero(t, state.Amount)
	assert.Empty(t, state.Message)
	assert.Equal(t, AnonymousDonor, state.DonorName)
	assert.False(t, state.PaymentOpen)
	assert.False(t, state.CanSubmit)
}

func TestForm_SelectQuickAmount(t *testing.T) {
	f, _, _ := newTestForm(t, instantGateway{})

	state, err := f.SelectQuickAmount(2500)
	require.NoError(t, err)
	assert.Equal(t, 2500.0, state.Amount)
	assert.True(t, state.CanSubmit)

	state, err = f.SelectQuickAmount(300)
	assert.ErrorIs(t, err, ErrNotPreset)
	assert.Equal(t, 2500.0, state.Amount)
}

func TestForm_CustomAmountGatesSubmit(t *testing.T) {
	f, _, _ := newTestForm(t, instantGateway{})

	for _, tt := range []struct {
		amount    float64
		canSubmit bool
	}{
		{0, false},
		{0.99, false},
		{-100, false},
		{1, true},
		{777.5, true},
		{math.NaN(), false},
		{math.Inf(1), false},
		{math.Inf(-1), false},
	} {
		state, err := f.SetCustomAmount(tt.amount)
		require.NoError(t, err)
		assert.Equal(t, tt.canSubmit, state.CanSubmit, "amount %v", tt.amount)
	}
}

func TestForm_MessageLimit(t *testing.T) {
	f, _, _ := newTestForm(t, instantGateway{})

	state, err := f.SetMessage(strings.Repeat("ж", 200))
	require.NoError(t, err)
	assert.Equal(t, 200, state.MessageLength)

	_, err = f.SetMessage(strings.Repeat("ж", 201))
	assert.ErrorIs(t, err, validation.ErrMessageTooLong)
	assert.Equal(t, 200, f.State().MessageLength)
}

func TestForm_ZeroAmountNeverOpensPayment(t *testing.T) {
	f, presenter, recorder := newTestForm(t, instantGateway{})

	state, err := f.OpenPayment()
	assert.ErrorIs(t, err, ErrAmountTooLow)
	assert.False(t, state.PaymentOpen)

	_, err = f.Pay(context.Background(), "sberbank", "")
	assert.ErrorIs(t, err, ErrPaymentNotOpen)

	assert.Zero(t, presenter.count())
	assert.Empty(t, recorder.records)
}

func TestForm_NonFiniteAmountNeverPays(t *testing.T) {
	for _, amount := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		f, presenter, _ := newTestForm(t, instantGateway{})

		_, err := f.SetCustomAmount(amount)
		require.NoError(t, err)
		state, err := f.OpenPayment()
		assert.ErrorIs(t, err, ErrAmountTooLow, "amount %v", amount)
		assert.False(t, state.PaymentOpen)

		_, err = f.SelectQuickAmount(100)
		require.NoError(t, err)
		_, err = f.OpenPayment()
		require.NoError(t, err)
		_, err = f.SetCustomAmount(amount)
		require.NoError(t, err)

		_, err = f.Pay(context.Background(), "sberbank", "")
		assert.ErrorIs(t, err, ErrAmountTooLow, "amount %v", amount)
		assert.False(t, f.State().Processing)
		assert.Zero(t, presenter.count())
	}
}

func TestForm_PayCompletesDonation(t *testing.T) {
	f, presenter, recorder := newTestForm(t, instantGateway{})

	_, err := f.SetDonorName("  SupportKing ")
	require.NoError(t, err)
	_, err = f.SelectQuickAmount(1000)
	require.NoError(t, err)
	_, err = f.SetMessage("hello stream")
	require.NoError(t, err)
	_, err = f.OpenPayment()
	require.NoError(t, err)

	n, err := f.Pay(context.Background(), "tinkoff", "")
	require.NoError(t, err)

	assert.NotEmpty(t, n.ID)
	assert.Equal(t, "SupportKing", n.Donor)
	assert.Equal(t, 1000.0, n.Amount)
	require.NotNil(t, n.Message)
	assert.Equal(t, "hello stream", *n.Message)
	assert.Equal(t, ranks.Silver, n.Rank)

	require.Equal(t, 1, presenter.count())
	assert.Same(t, n, presenter.presented[0])
	require.Len(t, recorder.records, 1)

	state := f.State()
	assert.Zero(t, state.Amount)
	assert.Empty(t, state.Message)
	assert.False(t, state.PaymentOpen)
	assert.False(t, state.Processing)
	assert.Equal(t, "SupportKing", state.DonorName)
}

func TestForm_OnPaymentCompleteRanksByAmount(t *testing.T) {
	f, _, _ := newTestForm(t, instantGateway{})

	tests := []struct {
		amount float64
		rank   ranks.Rank
	}{
		{100, ranks.Bronze},
		{1500, ranks.Gold},
		{20000, ranks.Diamond},
	}
	for _, tt := range tests {
		n, err := f.OnPaymentComplete(&models.PaymentCompletion{Method: "sberbank", Amount: tt.amount})
		require.NoError(t, err)
		assert.Equal(t, tt.rank, n.Rank)
		assert.Nil(t, n.Message, "empty message must become nil")
		assert.False(t, n.Timestamp.IsZero())
	}
}

func TestForm_UniqueNotificationIDs(t *testing.T) {
	f, _, _ := newTestForm(t, instantGateway{})

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		n, err := f.OnPaymentComplete(&models.PaymentCompletion{Method: "sberbank", Amount: 100})
		require.NoError(t, err)
		assert.False(t, seen[n.ID])
		seen[n.ID] = true
	}
}

func TestForm_RejectsReentryWhileProcessing(t *testing.T) {
	gateway := newBlockingGateway()
	f, presenter, _ := newTestForm(t, gateway)

	_, err := f.SetCustomAmount(500)
	require.NoError(t, err)
	_, err = f.OpenPayment()
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := f.Pay(context.Background(), "sberbank", "")
		done <- err
	}()
	<-gateway.started

	assert.True(t, f.State().Processing)

	_, err = f.Pay(context.Background(), "sberbank", "")
	assert.ErrorIs(t, err, ErrPaymentInFlight)
	_, err = f.ClosePayment()
	assert.ErrorIs(t, err, ErrPaymentInFlight)
	_, err = f.SetCustomAmount(5000)
	assert.ErrorIs(t, err, ErrPaymentInFlight)

	_, idle := f.IdleSince()
	assert.False(t, idle)

	close(gateway.release)
	require.NoError(t, <-done)

	assert.Equal(t, 1, presenter.count())
	assert.Len(t, gateway.requests, 1)
	assert.Equal(t, 500.0, gateway.requests[0].Amount)
}

func TestForm_FailedPaymentKeepsPanelOpen(t *testing.T) {
	f, presenter, _ := newTestForm(t, instantGateway{err: errors.New("declined")})

	_, err := f.SetCustomAmount(250)
	require.NoError(t, err)
	_, err = f.OpenPayment()
	require.NoError(t, err)

	_, err = f.Pay(context.Background(), "sberbank", "")
	assert.EqualError(t, err, "declined")

	state := f.State()
	assert.True(t, state.PaymentOpen)
	assert.False(t, state.Processing)
	assert.Equal(t, 250.0, state.Amount)
	assert.Zero(t, presenter.count())
}

func TestForm_RecorderFailureStillPresents(t *testing.T) {
	f, presenter, recorder := newTestForm(t, instantGateway{})
	recorder.err = errors.New("db down")

	_, err := f.OnPaymentComplete(&models.PaymentCompletion{Method: "sberbank", Amount: 100})
	require.NoError(t, err)
	assert.Equal(t, 1, presenter.count())
}

func TestForm_PresenterFailureIsReturned(t *testing.T) {
	f, presenter, _ := newTestForm(t, instantGateway{})
	presenter.err = errors.New("slot closed")

	n, err := f.OnPaymentComplete(&models.PaymentCompletion{Method: "sberbank", Amount: 100})
	assert.Error(t, err)
	assert.NotNil(t, n)
}

func TestForm_ClosePayment(t *testing.T) {
	f, _, _ := newTestForm(t, instantGateway{})

	_, err := f.SetCustomAmount(100)
	require.NoError(t, err)
	state, err := f.OpenPayment()
	require.NoError(t, err)
	assert.True(t, state.PaymentOpen)

	state, err = f.ClosePayment()
	require.NoError(t, err)
	assert.False(t, state.PaymentOpen)
	assert.Equal(t, 100.0, state.Amount)
}
