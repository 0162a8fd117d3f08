package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation results recorded on counters.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

var (
	// AdmissionsTotal counts booking attempts by kind (individual/group) and result.
	AdmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillbridge_admissions_total",
		Help: "Booking admission attempts by kind and result",
	}, []string{"kind", "result"})

	// WaitlistJoinsTotal counts waitlist join attempts by result.
	WaitlistJoinsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillbridge_waitlist_joins_total",
		Help: "Waitlist join attempts by result",
	}, []string{"result"})

	// PromotionsTotal counts bookings promoted from the waitlist.
	PromotionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skillbridge_waitlist_promotions_total",
		Help: "Bookings promoted from waiting to confirmed",
	})

	// CancellationsTotal counts cancellations by booking kind and result.
	CancellationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillbridge_cancellations_total",
		Help: "Cancellation attempts by booking kind and result",
	}, []string{"kind", "result"})

	// LedgerTransfersTotal counts applied ledger movements by transaction kind.
	LedgerTransfersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillbridge_ledger_transfers_total",
		Help: "Applied SkillCoin movements by transaction kind",
	}, []string{"kind"})

	// OperationDuration observes end-to-end latency of core operations.
	OperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skillbridge_operation_duration_seconds",
		Help:    "Latency distribution of core booking operations",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"operation"})
)
