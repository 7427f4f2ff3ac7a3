package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// to prevent metrics from being initialized multiple times
	isMetricsInitVar uint32 = 0

	// Number of user operations submitted to the relay
	OperationsSubmittedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "user_operations_submitted_total",
		Help: "The total number of user operations submitted to the relay",
	})

	// Number of inclusion receipts fetched from the relay
	ReceiptsFetchedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "user_operation_receipts_fetched_total",
		Help: "The total number of user operation receipts fetched",
	})

	// Number of receipt polls that ran out of budget
	ReceiptPollTimeoutsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "user_operation_receipt_timeouts_total",
		Help: "The total number of receipt polls that timed out",
	})

	// Number of gas estimations that fell back to defaults
	GasEstimateFallbacksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gas_estimate_fallbacks_total",
		Help: "The total number of gas estimations that fell back to default limits",
	})
)

func setIsMetricsInit() {
	atomic.StoreUint32(&isMetricsInitVar, 1)
}

func isMetricsInit() bool {
	return atomic.LoadUint32(&isMetricsInitVar) == 1
}

func InitMetrics() {
	if !isMetricsInit() {
		setIsMetricsInit()

		// Metrics have to be registered to be exposed
		prometheus.MustRegister(OperationsSubmittedTotal)
		prometheus.MustRegister(ReceiptsFetchedTotal)
		prometheus.MustRegister(ReceiptPollTimeoutsTotal)
		prometheus.MustRegister(GasEstimateFallbacksTotal)
	}
}
