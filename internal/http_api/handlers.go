package http_api

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/streamtip/donatio/internal/donatio"
	"github.com/streamtip/donatio/internal/form"
	"github.com/streamtip/donatio/internal/payment"
	"github.com/streamtip/donatio/pkg/validation"
)

const (
	defaultDonorLimit    = 10
	defaultDonationLimit = 20
	maxListLimit         = 100
)

// AmountRequest selects a preset amount or enters a custom one. Exactly one
// of the fields must be set.
type AmountRequest struct {
	Preset *float64 `json:"preset"`
	Custom *float64 `json:"custom"`
}

// MessageRequest represents the JSON body for setting the donor message
type MessageRequest struct {
	Message string `json:"message"`
}

// DonorRequest represents the JSON body for setting the donor name
type DonorRequest struct {
	Name string `json:"name"`
}

// PayRequest represents the JSON body for submitting a payment
type PayRequest struct {
	Method string `json:"method" binding:"required"`
	Phone  string `json:"phone"`
}

// FormResponse is the form state plus the presets it offers.
type FormResponse struct {
	form.State
	QuickAmounts []float64 `json:"quick_amounts"`
}

// errorStatus maps domain errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, donatio.ErrFormNotFound):
		return http.StatusNotFound
	case errors.Is(err, form.ErrPaymentInFlight),
		errors.Is(err, form.ErrPaymentNotOpen):
		return http.StatusConflict
	case errors.Is(err, form.ErrNotPreset),
		errors.Is(err, form.ErrAmountTooLow),
		errors.Is(err, payment.ErrUnknownMethod),
		errors.Is(err, validation.ErrInvalidAmount),
		errors.Is(err, validation.ErrInvalidPhone),
		errors.Is(err, validation.ErrMessageTooLong),
		errors.Is(err, validation.ErrDonorNameTooLong),
		errors.Is(err, validation.ErrInvalidDonorName):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	}
	return http.StatusInternalServerError
}

func (s *HTTPServer) fail(c *gin.Context, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "path", c.FullPath(), "error", err)
	} else {
		s.logger.Debug("Request rejected", "path", c.FullPath(), "status", status, "error", err)
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

func (s *HTTPServer) badRequest(c *gin.Context, err error) {
	s.logger.Debug("Invalid request body", "error", err)
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   "Invalid request body: " + err.Error(),
	})
}

func queryLimit(c *gin.Context, def int) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		return def
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func (s *HTTPServer) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *HTTPServer) listRanks(c *gin.Context) {
	c.JSON(http.StatusOK, s.donatio.Ranks())
}

// resolveRank is a handler for the /ranks/resolve endpoint.
// It returns the tier, next tier and progress for ?amount=.
func (s *HTTPServer) resolveRank(c *gin.Context) {
	raw := c.Query("amount")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "amount is required"})
		return
	}
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "amount must be a finite number"})
		return
	}
	c.JSON(http.StatusOK, s.donatio.ResolveRank(amount))
}

func (s *HTTPServer) listPaymentMethods(c *gin.Context) {
	c.JSON(http.StatusOK, s.donatio.PaymentMethods())
}

func (s *HTTPServer) leaderboard(c *gin.Context) {
	standings, err := s.donatio.Leaderboard(queryLimit(c, defaultDonorLimit))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, standings)
}

func (s *HTTPServer) recentDonations(c *gin.Context) {
	donations, err := s.donatio.RecentDonations(queryLimit(c, defaultDonationLimit))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, donations)
}

func (s *HTTPServer) formResponse(state form.State) FormResponse {
	return FormResponse{State: state, QuickAmounts: s.donatio.QuickAmounts()}
}

func (s *HTTPServer) createForm(c *gin.Context) {
	f := s.donatio.NewForm()
	s.logger.Debug("Donation form opened", "form", f.ID())
	c.JSON(http.StatusCreated, s.formResponse(f.State()))
}

// lookupForm resolves :id, writing the error response when it is unknown.
func (s *HTTPServer) lookupForm(c *gin.Context) (*form.Form, bool) {
	f, err := s.donatio.GetForm(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	return f, true
}

func (s *HTTPServer) respondState(c *gin.Context, state form.State, err error) {
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.formResponse(state))
}

func (s *HTTPServer) getForm(c *gin.Context) {
	f, ok := s.lookupForm(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.formResponse(f.State()))
}

func (s *HTTPServer) setAmount(c *gin.Context) {
	f, ok := s.lookupForm(c)
	if !ok {
		return
	}
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	switch {
	case req.Preset != nil && req.Custom == nil:
		state, err := f.SelectQuickAmount(*req.Preset)
		s.respondState(c, state, err)
	case req.Custom != nil && req.Preset == nil:
		state, err := f.SetCustomAmount(*req.Custom)
		s.respondState(c, state, err)
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "exactly one of preset or custom is required",
		})
	}
}

func (s *HTTPServer) setMessage(c *gin.Context) {
	f, ok := s.lookupForm(c)
	if !ok {
		return
	}
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	state, err := f.SetMessage(req.Message)
	s.respondState(c, state, err)
}

func (s *HTTPServer) setDonor(c *gin.Context) {
	f, ok := s.lookupForm(c)
	if !ok {
		return
	}
	var req DonorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	state, err := f.SetDonorName(req.Name)
	s.respondState(c, state, err)
}

func (s *HTTPServer) openPayment(c *gin.Context) {
	f, ok := s.lookupForm(c)
	if !ok {
		return
	}
	state, err := f.OpenPayment()
	s.respondState(c, state, err)
}

func (s *HTTPServer) closePayment(c *gin.Context) {
	f, ok := s.lookupForm(c)
	if !ok {
		return
	}
	state, err := f.ClosePayment()
	s.respondState(c, state, err)
}

// pay is a handler for the /forms/:id/pay endpoint.
// It blocks until the payment resolves and returns the presented notification.
func (s *HTTPServer) pay(c *gin.Context) {
	f, ok := s.lookupForm(c)
	if !ok {
		return
	}
	var req PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	notification, err := f.Pay(c.Request.Context(), req.Method, req.Phone)
	if err != nil && notification == nil {
		s.fail(c, err)
		return
	}
	if err != nil {
		// Payment went through; only the alert could not be shown.
		s.logger.Warn("Donation completed without alert", "form", f.ID(), "error", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"notification": notification,
		"form":         s.formResponse(f.State()),
	})
}

func (s *HTTPServer) currentAlert(c *gin.Context) {
	snapshot, err := s.donatio.CurrentAlert()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (s *HTTPServer) dismissAlert(c *gin.Context) {
	dismissed, err := s.donatio.DismissAlert()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "dismissed": dismissed})
}

// streamAlerts is a handler for the /alerts/stream endpoint.
// It sends the current snapshot, then every slot event as a server-sent event.
func (s *HTTPServer) streamAlerts(c *gin.Context) {
	events, cancel, err := s.donatio.SubscribeAlerts()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": err.Error()})
		return
	}
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	if snapshot, err := s.donatio.CurrentAlert(); err == nil {
		c.SSEvent("snapshot", snapshot)
		c.Writer.Flush()
	}

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case event, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(string(event.Kind), event)
			return true
		}
	})
}
