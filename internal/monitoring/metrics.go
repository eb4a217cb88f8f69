package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticketsMinted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_minted_total",
			Help: "Tickets minted per event",
		},
		[]string{"event_id"},
	)

	resales = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_resales_total",
			Help: "Completed marketplace purchases per event",
		},
		[]string{"event_id"},
	)

	redemptions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_redemptions_total",
			Help: "Redemption attempts by outcome",
		},
		[]string{"status"},
	)

	paymentDeclines = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payment_declines_total",
			Help: "Charges rejected by the payment gateway",
		},
	)

	ledgerCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_call_duration_seconds",
			Help:    "Latency of chain gateway calls",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
		[]string{"path"},
	)

	inventoryDiscrepancies = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inventory_discrepancies_total",
			Help: "Confirmed mints whose inventory decrement failed",
		},
	)
)

func RecordMint(eventID string) {
	ticketsMinted.WithLabelValues(eventID).Inc()
}

func RecordResale(eventID string) {
	resales.WithLabelValues(eventID).Inc()
}

// RecordRedemption tracks outcomes: granted, replay, contended, mismatch,
// not_found, error.
func RecordRedemption(status string) {
	redemptions.WithLabelValues(status).Inc()
}

func RecordPaymentDecline() {
	paymentDeclines.Inc()
}

func RecordInventoryDiscrepancy() {
	inventoryDiscrepancies.Inc()
}

func ObserveLedgerCall(path string, d time.Duration) {
	ledgerCallDuration.WithLabelValues(path).Observe(d.Seconds())
}
