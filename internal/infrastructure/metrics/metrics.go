package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LedgerApplyTotal counts ledger applications by type, currency and result
	LedgerApplyTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ed_rewards_ledger_apply_total",
			Help: "Total number of ledger apply calls",
		},
		[]string{"type", "currency", "result"},
	)

	// ReconciliationDrift counts users whose stored balance drifted from the ledger
	ReconciliationDrift = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ed_rewards_reconciliation_drift_total",
			Help: "Total number of balance drifts corrected by reconciliation",
		},
		[]string{"currency"},
	)

	// PaymentIntentsTotal counts purchase intents by result
	PaymentIntentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ed_rewards_payment_intents_total",
			Help: "Total number of payment intents",
		},
		[]string{"result"},
	)

	// PaymentConfirmationsTotal counts confirmations by outcome
	PaymentConfirmationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ed_rewards_payment_confirmations_total",
			Help: "Total number of payment confirmations",
		},
		[]string{"source", "outcome"},
	)

	// ProviderRequestDuration tracks provider call latency
	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ed_rewards_provider_request_duration_seconds",
			Help:    "Payment provider request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "status"},
	)

	// ClaimsTotal counts earning claims by result
	ClaimsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ed_rewards_claims_total",
			Help: "Total number of machine earning claims",
		},
		[]string{"result"},
	)

	// AdRewardsTotal counts ad reward events by result
	AdRewardsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ed_rewards_ad_rewards_total",
			Help: "Total number of ad reward events",
		},
		[]string{"result"},
	)

	// ReferralEvaluationsTotal counts referral evaluations by reason
	ReferralEvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ed_rewards_referral_evaluations_total",
			Help: "Total number of referral bonus evaluations",
		},
		[]string{"reason"},
	)

	// OutboxEventsTotal counts processed outbox events by type and result
	OutboxEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ed_rewards_outbox_events_total",
			Help: "Total number of outbox events handled",
		},
		[]string{"type", "result"},
	)

	// HTTPRequestsTotal counts API requests
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ed_rewards_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration tracks API latency
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ed_rewards_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
