package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DonationsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "donatio_donations_completed_total",
			Help: "Total number of completed donations",
		},
		[]string{"method", "rank"},
	)

	DonationAmount = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "donatio_donation_amount_rub",
			Help:    "Amount of completed donations in rubles",
			Buckets: []float64{100, 250, 500, 1000, 1500, 2500, 5000, 15000},
		},
		[]string{"method"},
	)

	PaymentsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "donatio_payments_failed_total",
			Help: "Total number of payments that did not complete",
		},
		[]string{"method"},
	)

	PaymentDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "donatio_payment_duration_seconds",
			Help: "Time from payment initiation to completion",
		},
	)

	AlertEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "donatio_alert_events_total",
			Help: "Notification slot events by kind",
		},
		[]string{"kind"},
	)

	RelayFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "donatio_relay_failures_total",
			Help: "Failed alert relay deliveries",
		},
		[]string{"relay"},
	)

	ActiveForms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "donatio_active_forms",
			Help: "Number of open donation form sessions",
		},
	)
)
